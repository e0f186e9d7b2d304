package sqlite

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/opensrc/tracker/internal/tracker"
)

const sqliteTimeLayout = "2006-01-02 15:04:05"

func TestExportImportRoundTrip(t *testing.T) {
	src := newTestStore(t)
	ctx := context.Background()

	issue, err := src.Create(ctx, "bd", tracker.CreateParams{
		Title:  "round trip me",
		Body:   "has labels and comments",
		Author: "alice",
		Labels: []string{"bug"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := src.AddComment(ctx, issue.ID, "bob", "confirmed"); err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	path := filepath.Join(t.TempDir(), "issues.jsonl")
	if err := src.Export(ctx, path); err != nil {
		t.Fatalf("Export: %v", err)
	}

	dst := newTestStore(t)
	result, err := dst.Import(ctx, path)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Inserted != 1 {
		t.Fatalf("Import result = %+v, want 1 inserted", result)
	}

	got, err := dst.Get(ctx, issue.ID)
	if err != nil {
		t.Fatalf("Get after import: %v", err)
	}
	if got.Title != "round trip me" {
		t.Errorf("Title = %q, want %q", got.Title, "round trip me")
	}
	if len(got.Labels) != 1 || got.Labels[0] != "bug" {
		t.Errorf("Labels = %v, want [bug]", got.Labels)
	}
	if len(got.Comments) != 1 || got.Comments[0].Body != "confirmed" {
		t.Errorf("Comments = %+v, want one comment %q", got.Comments, "confirmed")
	}
}

func TestImportNewerRowUpdatesExisting(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	issue, err := store.Create(ctx, "bd", tracker.CreateParams{Title: "original"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	before, err := store.Get(ctx, issue.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	ji := jsonlIssue{
		ID:        issue.ID,
		Title:     "edited elsewhere",
		Status:    string(tracker.StatusOpen),
		Priority:  2,
		IssueType: "task",
		CreatedAt: before.CreatedAt.Format(sqliteTimeLayout),
		CreatedBy: "alice",
		UpdatedAt: laterTimestamp(before.UpdatedAt.Format(sqliteTimeLayout)),
	}
	path := writeJSONL(t, ji)

	result, err := store.Import(ctx, path)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Updated != 1 {
		t.Fatalf("Import result = %+v, want 1 updated", result)
	}

	got, err := store.Get(ctx, issue.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "edited elsewhere" {
		t.Errorf("Title = %q, want %q", got.Title, "edited elsewhere")
	}
}

func TestImportOlderRowSkipped(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	issue, err := store.Create(ctx, "bd", tracker.CreateParams{Title: "original"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	before, err := store.Get(ctx, issue.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	ji := jsonlIssue{
		ID:        issue.ID,
		Title:     "stale write",
		Status:    string(tracker.StatusOpen),
		Priority:  2,
		IssueType: "task",
		CreatedAt: before.CreatedAt.Format(sqliteTimeLayout),
		CreatedBy: "alice",
		UpdatedAt: "0000-01-01 00:00:00",
	}
	path := writeJSONL(t, ji)

	result, err := store.Import(ctx, path)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Skipped != 1 {
		t.Fatalf("Import result = %+v, want 1 skipped", result)
	}

	got, err := store.Get(ctx, issue.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "original" {
		t.Errorf("Title = %q, want unchanged %q", got.Title, "original")
	}
}

func TestImportMalformedLineCountedAsError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	good := jsonlIssue{
		ID:        "bd-good",
		Title:     "well formed",
		Status:    string(tracker.StatusOpen),
		Priority:  2,
		IssueType: "task",
		CreatedAt: "2024-01-01 00:00:00",
		CreatedBy: "alice",
		UpdatedAt: "2024-01-01 00:00:00",
	}
	line, err := json.Marshal(good)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	content := string(line) + "\n{not json\n"
	path := filepath.Join(t.TempDir(), "issues.jsonl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	result, err := store.Import(ctx, path)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.Inserted != 1 || result.Errors != 1 {
		t.Fatalf("Import result = %+v, want 1 inserted and 1 error", result)
	}
}

func writeJSONL(t *testing.T, ji jsonlIssue) string {
	t.Helper()
	line, err := json.Marshal(ji)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "issues.jsonl")
	if err := os.WriteFile(path, append(line, '\n'), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

// laterTimestamp returns a string that compares greater than ts under plain
// lexicographic ordering, matching the datetime('now') format stored in the
// issues table.
func laterTimestamp(ts string) string {
	return ts + "1"
}
