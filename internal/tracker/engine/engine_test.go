package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/opensrc/tracker/internal/tracker"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	dir := t.TempDir()
	e, err := Init(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestInitCreatesTrackerDirAndTemplates(t *testing.T) {
	dir := t.TempDir()
	e, err := Init(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer e.Close()

	trackerDir := filepath.Join(dir, e.Config().FolderName)
	for _, name := range []string{".gitignore", "AGENTS.md"} {
		if _, err := os.Stat(filepath.Join(trackerDir, name)); err != nil {
			t.Errorf("Init did not create %s: %v", name, err)
		}
	}
}

func TestInitDoesNotOverwriteExistingTemplates(t *testing.T) {
	dir := t.TempDir()
	e, err := Init(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	e.Close()

	agentsPath := filepath.Join(dir, e.Config().FolderName, "AGENTS.md")
	if err := os.WriteFile(agentsPath, []byte("custom content"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	e2, err := Init(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("second Init: %v", err)
	}
	defer e2.Close()

	content, err := os.ReadFile(agentsPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(content) != "custom content" {
		t.Errorf("AGENTS.md = %q, want preserved custom content", content)
	}
}

func TestOpenReopensExistingProject(t *testing.T) {
	dir := t.TempDir()
	e, err := Init(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	issue, err := e.CreateIssue(context.Background(), tracker.CreateParams{Title: "persisted"})
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Store().Get(context.Background(), issue.ID)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.Title != "persisted" {
		t.Errorf("Title = %q, want %q", got.Title, "persisted")
	}
}

func TestCreateIssueExportsJSONL(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.CreateIssue(context.Background(), tracker.CreateParams{Title: "exported"}); err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	if _, err := os.Stat(e.JSONLPath()); err != nil {
		t.Fatalf("issues.jsonl was not written: %v", err)
	}
}

func TestAddCommentDefaultsAuthorToConfiguredActor(t *testing.T) {
	e := newTestEngine(t)
	e.config.Actor = "default-actor"

	issue, err := e.CreateIssue(context.Background(), tracker.CreateParams{Title: "t"})
	if err != nil {
		t.Fatalf("CreateIssue: %v", err)
	}

	c, err := e.AddComment(context.Background(), issue.ID, "", "no author given")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if c.Author != "default-actor" {
		t.Errorf("Author = %q, want %q", c.Author, "default-actor")
	}
}

func TestResolveConflictRequiresExistingConflict(t *testing.T) {
	e := newTestEngine(t)
	err := e.ResolveConflict(context.Background(), 999, "local")
	if !tracker.Is(err, tracker.KindNotFound) {
		t.Fatalf("ResolveConflict on missing id: err = %v, want KindNotFound", err)
	}
}
