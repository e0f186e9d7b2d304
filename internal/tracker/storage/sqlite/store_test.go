package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/opensrc/tracker/internal/tracker"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "tracker.db")
	store, err := Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	issue, err := store.Create(ctx, "bd", tracker.CreateParams{
		Title:  "fix the thing",
		Body:   "it is broken",
		Author: "alice",
		Labels: []string{"bug", "urgent"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if issue.Type != "task" {
		t.Errorf("default Type = %q, want %q", issue.Type, "task")
	}
	if issue.Status != tracker.StatusOpen {
		t.Errorf("default Status = %q, want %q", issue.Status, tracker.StatusOpen)
	}
	if issue.Priority != "p2" {
		t.Errorf("default Priority = %q, want %q", issue.Priority, "p2")
	}

	got, err := store.Get(ctx, issue.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "fix the thing" {
		t.Errorf("Title = %q, want %q", got.Title, "fix the thing")
	}
	if len(got.Labels) != 2 {
		t.Errorf("Labels = %v, want 2 entries", got.Labels)
	}
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get(context.Background(), "bd-zzzz")
	if !tracker.Is(err, tracker.KindNotFound) {
		t.Fatalf("Get on missing id: err = %v, want KindNotFound", err)
	}
}

func TestUpdateTriState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	issue, err := store.Create(ctx, "bd", tracker.CreateParams{Title: "t", Assignee: "bob"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := store.Update(ctx, issue.ID, tracker.UpdateParams{
		Title:    tracker.SetOpt("new title"),
		Assignee: tracker.Null[string](),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "new title" {
		t.Errorf("Title = %q, want %q", updated.Title, "new title")
	}
	if updated.Assignee != "" {
		t.Errorf("Assignee = %q, want cleared", updated.Assignee)
	}

	// A field left Unset must not change.
	again, err := store.Update(ctx, issue.ID, tracker.UpdateParams{Body: tracker.SetOpt("b")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if again.Title != "new title" {
		t.Errorf("unrelated Update changed Title to %q", again.Title)
	}
}

func TestUpdateMissingReturnsNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Update(context.Background(), "bd-zzzz", tracker.UpdateParams{Title: tracker.SetOpt("x")})
	if !tracker.Is(err, tracker.KindNotFound) {
		t.Fatalf("Update on missing id: err = %v, want KindNotFound", err)
	}
}

func TestCloseIssue(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	issue, _ := store.Create(ctx, "bd", tracker.CreateParams{Title: "t"})
	closed, err := store.CloseIssue(ctx, issue.ID)
	if err != nil {
		t.Fatalf("CloseIssue: %v", err)
	}
	if closed.Status != tracker.StatusClosed {
		t.Errorf("Status = %q, want closed", closed.Status)
	}
	if closed.ClosedAt == nil {
		t.Error("ClosedAt is nil, want set")
	}
}

func TestDeleteSoftAndHard(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	soft, _ := store.Create(ctx, "bd", tracker.CreateParams{Title: "soft"})
	if err := store.Delete(ctx, soft.ID, false); err != nil {
		t.Fatalf("Delete(soft): %v", err)
	}
	got, err := store.Get(ctx, soft.ID)
	if err != nil {
		t.Fatalf("Get after soft delete: %v", err)
	}
	if got.Status != tracker.StatusTombstone {
		t.Errorf("Status after soft delete = %q, want tombstone", got.Status)
	}

	hard, _ := store.Create(ctx, "bd", tracker.CreateParams{Title: "hard"})
	if err := store.Delete(ctx, hard.ID, true); err != nil {
		t.Fatalf("Delete(hard): %v", err)
	}
	if _, err := store.Get(ctx, hard.ID); !tracker.Is(err, tracker.KindNotFound) {
		t.Fatalf("Get after hard delete: err = %v, want KindNotFound", err)
	}
}

func TestCommentsLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	issue, _ := store.Create(ctx, "bd", tracker.CreateParams{Title: "t"})
	c, err := store.AddComment(ctx, issue.ID, "carol", "looks good")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	got, err := store.Get(ctx, issue.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Comments) != 1 || got.Comments[0].Body != "looks good" {
		t.Fatalf("Comments = %+v, want one comment with body %q", got.Comments, "looks good")
	}

	if err := store.DeleteComment(ctx, c.ID); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	got, _ = store.Get(ctx, issue.ID)
	if len(got.Comments) != 0 {
		t.Fatalf("Comments after delete = %+v, want none", got.Comments)
	}
}

func TestLabelsLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	issue, _ := store.Create(ctx, "bd", tracker.CreateParams{Title: "t", Labels: []string{"urgent"}})
	if err := store.AddLabel(ctx, issue.ID, "bug"); err != nil {
		t.Fatalf("AddLabel: %v", err)
	}
	// Adding the same label twice must stay idempotent.
	if err := store.AddLabel(ctx, issue.ID, "bug"); err != nil {
		t.Fatalf("AddLabel (repeat): %v", err)
	}

	got, _ := store.Get(ctx, issue.ID)
	want := []string{"bug", "urgent"}
	if diff := cmp.Diff(want, got.Labels); diff != "" {
		t.Fatalf("Labels mismatch (-want +got):\n%s", diff)
	}

	if err := store.RemoveLabel(ctx, issue.ID, "bug"); err != nil {
		t.Fatalf("RemoveLabel: %v", err)
	}
	got, _ = store.Get(ctx, issue.ID)
	if diff := cmp.Diff([]string{"urgent"}, got.Labels); diff != "" {
		t.Fatalf("Labels after remove mismatch (-want +got):\n%s", diff)
	}
}

func TestDependenciesBlocksAndReady(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	blocker, _ := store.Create(ctx, "bd", tracker.CreateParams{Title: "blocker"})
	blocked, _ := store.Create(ctx, "bd", tracker.CreateParams{Title: "blocked"})

	if err := store.AddDependency(ctx, blocker.ID, blocked.ID, string(tracker.DepBlocks)); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}

	ready, err := store.Ready(ctx)
	if err != nil {
		t.Fatalf("Ready: %v", err)
	}
	for _, r := range ready {
		if r.ID == blocked.ID {
			t.Fatalf("blocked issue %s appeared in Ready list", blocked.ID)
		}
	}

	got, _ := store.Get(ctx, blocked.ID)
	if len(got.BlockedBy) != 1 || got.BlockedBy[0] != blocker.ID {
		t.Fatalf("BlockedBy = %v, want [%s]", got.BlockedBy, blocker.ID)
	}

	if _, err := store.CloseIssue(ctx, blocker.ID); err != nil {
		t.Fatalf("CloseIssue: %v", err)
	}
	ready, err = store.Ready(ctx)
	if err != nil {
		t.Fatalf("Ready: %v", err)
	}
	found := false
	for _, r := range ready {
		if r.ID == blocked.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("blocked issue %s should be ready once its blocker is closed", blocked.ID)
	}

	if err := store.RemoveDependency(ctx, blocker.ID, blocked.ID); err != nil {
		t.Fatalf("RemoveDependency: %v", err)
	}
	got, _ = store.Get(ctx, blocked.ID)
	if len(got.BlockedBy) != 0 {
		t.Fatalf("BlockedBy after remove = %v, want none", got.BlockedBy)
	}
}

func TestChildren(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	parent, _ := store.Create(ctx, "bd", tracker.CreateParams{Title: "epic"})
	parentID := parent.ID
	child, err := store.Create(ctx, "bd", tracker.CreateParams{Title: "task", Parent: &parentID})
	if err != nil {
		t.Fatalf("Create child: %v", err)
	}

	children, err := store.Children(ctx, parent.ID)
	if err != nil {
		t.Fatalf("Children: %v", err)
	}
	if len(children) != 1 || children[0].ID != child.ID {
		t.Fatalf("Children = %+v, want [%s]", children, child.ID)
	}
}

func TestSearchFindsByTitle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	issue, err := store.Create(ctx, "bd", tracker.CreateParams{
		Title: "authentication bug in login flow",
		Body:  "users cannot sign in with OAuth",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	results, err := store.Search(ctx, "authentication", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].IssueID != issue.ID {
		t.Fatalf("Search results = %+v, want one hit for %s", results, issue.ID)
	}
}

func TestSearchBlankQueryReturnsNil(t *testing.T) {
	store := newTestStore(t)
	results, err := store.Search(context.Background(), "AND OR", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results != nil {
		t.Fatalf("Search(keywords-only) = %v, want nil", results)
	}
}
