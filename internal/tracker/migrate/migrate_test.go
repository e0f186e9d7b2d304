package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opensrc/tracker/internal/tracker"
	"github.com/opensrc/tracker/internal/tracker/storage/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "tracker.db")
	store, err := sqlite.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

const legacyIssueLine = `{"id":"bd-a1b2","title":"legacy issue","status":"open","priority":2,"issue_type":"task","created_at":"2024-01-01 00:00:00","created_by":"alice","updated_at":"2024-01-01 00:00:00"}` + "\n"

func TestFromBeadsImportsIssuesAndExports(t *testing.T) {
	legacyDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(legacyDir, "issues.jsonl"), []byte(legacyIssueLine), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	trackerDir := filepath.Join(t.TempDir(), ".tracker")
	jsonlPath := filepath.Join(trackerDir, "issues.jsonl")
	store := newTestStore(t)

	result, err := FromBeads(context.Background(), store, legacyDir, trackerDir, jsonlPath)
	if err != nil {
		t.Fatalf("FromBeads: %v", err)
	}
	if result.Issues.Inserted != 1 {
		t.Fatalf("Issues = %+v, want 1 inserted", result.Issues)
	}

	got, err := store.Get(context.Background(), "bd-a1b2")
	if err != nil {
		t.Fatalf("Get after migrate: %v", err)
	}
	if got.Title != "legacy issue" {
		t.Errorf("Title = %q, want %q", got.Title, "legacy issue")
	}

	if _, err := os.Stat(jsonlPath); err != nil {
		t.Errorf("post-migration export file missing: %v", err)
	}
}

func TestFromBeadsMissingSourceReturnsNotFound(t *testing.T) {
	legacyDir := t.TempDir()
	trackerDir := filepath.Join(t.TempDir(), ".tracker")
	store := newTestStore(t)

	_, err := FromBeads(context.Background(), store, legacyDir, trackerDir, filepath.Join(trackerDir, "issues.jsonl"))
	if !tracker.Is(err, tracker.KindNotFound) {
		t.Fatalf("FromBeads on empty legacy dir: err = %v, want KindNotFound", err)
	}
}

func TestFromBeadsCopiesAttachmentsAndSkipsExisting(t *testing.T) {
	legacyDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(legacyDir, "issues.jsonl"), []byte(legacyIssueLine), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	attachSrc := filepath.Join(legacyDir, "attachments")
	if err := os.MkdirAll(attachSrc, 0o750); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(attachSrc, "new.txt"), []byte("fresh"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(attachSrc, "dup.txt"), []byte("fresh dup"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	trackerDir := filepath.Join(t.TempDir(), ".tracker")
	attachDst := filepath.Join(trackerDir, "attachments")
	if err := os.MkdirAll(attachDst, 0o750); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(attachDst, "dup.txt"), []byte("already here"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	store := newTestStore(t)
	result, err := FromBeads(context.Background(), store, legacyDir, trackerDir, filepath.Join(trackerDir, "issues.jsonl"))
	if err != nil {
		t.Fatalf("FromBeads: %v", err)
	}
	if result.AttachmentsCopied != 1 {
		t.Errorf("AttachmentsCopied = %d, want 1", result.AttachmentsCopied)
	}
	if result.AttachmentsSkipped != 1 {
		t.Errorf("AttachmentsSkipped = %d, want 1", result.AttachmentsSkipped)
	}

	dupContent, err := os.ReadFile(filepath.Join(attachDst, "dup.txt"))
	if err != nil {
		t.Fatalf("ReadFile dup.txt: %v", err)
	}
	if string(dupContent) != "already here" {
		t.Errorf("dup.txt content = %q, want destination copy preserved", dupContent)
	}
}

func TestFromBeadsExtractsIssuePrefixFromConfig(t *testing.T) {
	legacyDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(legacyDir, "issues.jsonl"), []byte(legacyIssueLine), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(legacyDir, "config.yaml"), []byte("# a comment\nissue-prefix: \"legacy\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	trackerDir := filepath.Join(t.TempDir(), ".tracker")
	store := newTestStore(t)
	result, err := FromBeads(context.Background(), store, legacyDir, trackerDir, filepath.Join(trackerDir, "issues.jsonl"))
	if err != nil {
		t.Fatalf("FromBeads: %v", err)
	}
	if !result.ConfigMigrated {
		t.Fatalf("ConfigMigrated = false, want true")
	}

	content, err := os.ReadFile(filepath.Join(trackerDir, "config.yaml"))
	if err != nil {
		t.Fatalf("ReadFile config.yaml: %v", err)
	}
	if !strings.Contains(string(content), "legacy") {
		t.Errorf("migrated config.yaml = %q, want it to mention prefix %q", content, "legacy")
	}
}
