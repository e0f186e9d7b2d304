package trackercfg

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultUsesBuiltinFolderAndPrefix(t *testing.T) {
	cfg := Default()
	if cfg.FolderName != DefaultFolderName {
		t.Errorf("FolderName = %q, want %q", cfg.FolderName, DefaultFolderName)
	}
	if cfg.IssuePrefix != DefaultIssuePrefix {
		t.Errorf("IssuePrefix = %q, want %q", cfg.IssuePrefix, DefaultIssuePrefix)
	}
}

func TestLoadMissingConfigReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg := Load(dir, "")
	if cfg.IssuePrefix != DefaultIssuePrefix {
		t.Errorf("IssuePrefix = %q, want default %q", cfg.IssuePrefix, DefaultIssuePrefix)
	}
}

func TestLoadOverlaysIssuePrefix(t *testing.T) {
	dir := t.TempDir()
	folder := filepath.Join(dir, DefaultFolderName)
	if err := os.MkdirAll(folder, 0o750); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(folder, "config.yaml"), []byte("issue-prefix: proj\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg := Load(dir, "")
	if cfg.IssuePrefix != "proj" {
		t.Errorf("IssuePrefix = %q, want %q", cfg.IssuePrefix, "proj")
	}
}

func TestLoadMalformedConfigFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	folder := filepath.Join(dir, DefaultFolderName)
	if err := os.MkdirAll(folder, 0o750); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(folder, "config.yaml"), []byte("not: valid: yaml: ["), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg := Load(dir, "")
	if cfg.IssuePrefix != DefaultIssuePrefix {
		t.Errorf("IssuePrefix = %q, want default %q on malformed config", cfg.IssuePrefix, DefaultIssuePrefix)
	}
}

func TestLoadRespectsExplicitFolderOverride(t *testing.T) {
	dir := t.TempDir()
	folder := filepath.Join(dir, "custom")
	if err := os.MkdirAll(folder, 0o750); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(folder, "config.yaml"), []byte("issue-prefix: custom-prefix\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg := Load(dir, "custom")
	if cfg.FolderName != "custom" {
		t.Errorf("FolderName = %q, want %q", cfg.FolderName, "custom")
	}
	if cfg.IssuePrefix != "custom-prefix" {
		t.Errorf("IssuePrefix = %q, want %q", cfg.IssuePrefix, "custom-prefix")
	}
}
