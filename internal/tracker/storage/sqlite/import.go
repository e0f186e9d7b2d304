package sqlite

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"strings"

	"github.com/opensrc/tracker/internal/tracker"
)

// ImportResult tallies the outcome of an Import pass.
type ImportResult struct {
	Inserted int
	Updated  int
	Skipped  int
	Errors   int
}

// Import reads NDJSON from path and applies last-write-wins merge against
// the database: a JSONL issue newer (by string-compared updated_at) than
// the stored row replaces it; older or equal rows only contribute their
// comments (append-only merge). Labels and dependencies are replaced
// wholesale on insert/update. Malformed lines are counted as errors and
// skipped rather than aborting the whole import. Foreign keys are
// deferred for the transaction so a dependency edge can reference an
// issue appearing later in the file.
func (s *Store) Import(ctx context.Context, path string) (ImportResult, error) {
	var result ImportResult

	f, err := os.Open(path)
	if err != nil {
		return result, tracker.NewError(tracker.KindIO, "Import", err)
	}
	defer f.Close()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, tracker.NewError(tracker.KindIO, "Import", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `PRAGMA defer_foreign_keys = ON`); err != nil {
		return result, tracker.NewError(tracker.KindIO, "Import", err)
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var ji jsonlIssue
		if err := json.Unmarshal([]byte(line), &ji); err != nil {
			result.Errors++
			continue
		}
		action, err := importOneIssue(ctx, tx, &ji)
		if err != nil {
			return result, tracker.NewError(tracker.KindIO, "Import", err)
		}
		switch action {
		case actionInserted:
			result.Inserted++
		case actionUpdated:
			result.Updated++
		case actionSkipped:
			result.Skipped++
		}
	}
	if err := scanner.Err(); err != nil {
		return result, tracker.NewError(tracker.KindIO, "Import", err)
	}

	if err := tx.Commit(); err != nil {
		return result, tracker.NewError(tracker.KindIO, "Import", err)
	}
	return result, nil
}

type importAction int

const (
	actionInserted importAction = iota
	actionUpdated
	actionSkipped
)

func importOneIssue(ctx context.Context, tx *sql.Tx, ji *jsonlIssue) (importAction, error) {
	var dbUpdatedAt string
	err := tx.QueryRowContext(ctx, `SELECT updated_at FROM issues WHERE id = ?`, ji.ID).Scan(&dbUpdatedAt)

	switch {
	case err == sql.ErrNoRows:
		if err := upsertIssue(ctx, tx, ji, false); err != nil {
			return 0, err
		}
		if err := replaceLabels(ctx, tx, ji.ID, ji.Labels); err != nil {
			return 0, err
		}
		if err := replaceDependencies(ctx, tx, ji.ID, ji.Dependencies); err != nil {
			return 0, err
		}
		if err := mergeComments(ctx, tx, ji.ID, ji.Comments); err != nil {
			return 0, err
		}
		if err := ftsInsert(ctx, tx, ji.ID); err != nil {
			return 0, err
		}
		return actionInserted, nil
	case err != nil:
		return 0, err
	}

	if ji.UpdatedAt > dbUpdatedAt {
		if err := upsertIssue(ctx, tx, ji, true); err != nil {
			return 0, err
		}
		if err := replaceLabels(ctx, tx, ji.ID, ji.Labels); err != nil {
			return 0, err
		}
		if err := replaceDependencies(ctx, tx, ji.ID, ji.Dependencies); err != nil {
			return 0, err
		}
		if err := mergeComments(ctx, tx, ji.ID, ji.Comments); err != nil {
			return 0, err
		}
		if err := ftsDelete(ctx, tx, ji.ID); err != nil {
			return 0, err
		}
		if err := ftsInsert(ctx, tx, ji.ID); err != nil {
			return 0, err
		}
		return actionUpdated, nil
	}

	if err := mergeComments(ctx, tx, ji.ID, ji.Comments); err != nil {
		return 0, err
	}
	return actionSkipped, nil
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func derefInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

// derefOrEmpty is like deref but for columns declared NOT NULL DEFAULT
// '' (design, acceptance_criteria, notes): a JSON line that simply
// omits the optional field must not try to write a SQL NULL into one
// of these.
func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func upsertIssue(ctx context.Context, tx *sql.Tx, ji *jsonlIssue, update bool) error {
	priority := tracker.IntToPriority(ji.Priority)
	author := ji.CreatedBy
	if author == "" {
		author = "unknown"
	}

	if update {
		_, err := tx.ExecContext(ctx, `
			UPDATE issues SET
				title = ?, body = ?, issue_type = ?, status = ?, priority = ?,
				assignee = ?, author = ?, created_at = ?, updated_at = ?, closed_at = ?,
				external_ref = ?, estimate_minutes = ?, design = ?, acceptance_criteria = ?,
				notes = ?, parent = ?, metadata = ?, spec_id = ?
			WHERE id = ?`,
			ji.Title, ji.Description, ji.IssueType, ji.Status, priority,
			deref(ji.Owner), author, ji.CreatedAt, ji.UpdatedAt, deref(ji.ClosedAt),
			deref(ji.ExternalRef), derefInt(ji.EstimateMinutes), derefOrEmpty(ji.Design), derefOrEmpty(ji.AcceptanceCriteria),
			derefOrEmpty(ji.Notes), deref(ji.Parent), deref(ji.Metadata), deref(ji.SpecID),
			ji.ID,
		)
		return err
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO issues (
			id, title, body, issue_type, status, priority,
			assignee, author, created_at, updated_at, closed_at,
			external_ref, estimate_minutes, design, acceptance_criteria,
			notes, parent, metadata, spec_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ji.ID, ji.Title, ji.Description, ji.IssueType, ji.Status, priority,
		deref(ji.Owner), author, ji.CreatedAt, ji.UpdatedAt, deref(ji.ClosedAt),
		deref(ji.ExternalRef), derefInt(ji.EstimateMinutes), derefOrEmpty(ji.Design), derefOrEmpty(ji.AcceptanceCriteria),
		derefOrEmpty(ji.Notes), deref(ji.Parent), deref(ji.Metadata), deref(ji.SpecID),
	)
	return err
}

// mergeComments inserts comments keyed by (issue_id, author, created_at)
// that aren't already present; it never updates or removes existing ones.
func mergeComments(ctx context.Context, tx *sql.Tx, issueID string, comments []jsonlComment) error {
	for _, c := range comments {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM comments WHERE issue_id = ? AND author = ? AND created_at = ?)`,
			issueID, c.Author, c.CreatedAt).Scan(&exists)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		id := c.ID
		if id == "" {
			id = tracker.GenerateCommentID()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO comments (id, issue_id, author, body, created_at) VALUES (?, ?, ?, ?, ?)`,
			id, issueID, c.Author, c.Text, c.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func replaceLabels(ctx context.Context, tx *sql.Tx, issueID string, labels []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM labels WHERE issue_id = ?`, issueID); err != nil {
		return err
	}
	for _, l := range labels {
		if _, err := tx.ExecContext(ctx, `INSERT INTO labels (issue_id, label) VALUES (?, ?)`, issueID, l); err != nil {
			return err
		}
	}
	return nil
}

func replaceDependencies(ctx context.Context, tx *sql.Tx, issueID string, deps []jsonlDependency) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM dependencies WHERE from_id = ?`, issueID); err != nil {
		return err
	}
	for _, d := range deps {
		if _, err := tx.ExecContext(ctx, `INSERT INTO dependencies (from_id, to_id, dep_type) VALUES (?, ?, ?)`, d.IssueID, d.DependsOnID, d.Type); err != nil {
			return err
		}
	}
	return nil
}
