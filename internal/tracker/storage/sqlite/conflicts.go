package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/opensrc/tracker/internal/tracker"
)

// RecordConflict stores a pending conflict between the local row and a
// remote NDJSON line for the same issue, for later resolution via
// ResolveConflict or DismissConflict.
func (s *Store) RecordConflict(ctx context.Context, issueID string, localJSON, remoteJSON []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conflicts (issue_id, local_json, remote_json) VALUES (?, ?, ?)`,
		issueID, string(localJSON), string(remoteJSON))
	if err != nil {
		return tracker.NewError(tracker.KindIO, "RecordConflict", err)
	}
	return nil
}

// ListConflicts returns unresolved conflicts, most recently detected first.
func (s *Store) ListConflicts(ctx context.Context) ([]tracker.Conflict, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, issue_id, local_json, remote_json, detected_at FROM conflicts ORDER BY detected_at DESC`)
	if err != nil {
		return nil, tracker.NewError(tracker.KindIO, "ListConflicts", err)
	}
	defer rows.Close()

	var out []tracker.Conflict
	for rows.Next() {
		var c tracker.Conflict
		if err := rows.Scan(&c.ID, &c.IssueID, &c.LocalJSON, &c.RemoteJSON, &c.DetectedAt); err != nil {
			return nil, tracker.NewError(tracker.KindIO, "ListConflicts", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountConflicts returns the number of unresolved conflicts.
func (s *Store) CountConflicts(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM conflicts`).Scan(&n); err != nil {
		return 0, tracker.NewError(tracker.KindIO, "CountConflicts", err)
	}
	return n, nil
}

// ResolveConflict applies the chosen side and clears the conflict record.
// resolution "local" keeps the current row as-is; "remote" replaces the
// issue's fields, labels, and dependencies with the stored remote JSON.
// Either way, synced_at is stamped to updated_at so the next sync does
// not re-flag the issue.
func (s *Store) ResolveConflict(ctx context.Context, conflictID int64, resolution string) error {
	var rec tracker.Conflict
	err := s.db.QueryRowContext(ctx,
		`SELECT id, issue_id, local_json, remote_json, detected_at FROM conflicts WHERE id = ?`, conflictID).
		Scan(&rec.ID, &rec.IssueID, &rec.LocalJSON, &rec.RemoteJSON, &rec.DetectedAt)
	if err == sql.ErrNoRows {
		return tracker.NewError(tracker.KindNotFound, "ResolveConflict", tracker.ErrNotFound)
	}
	if err != nil {
		return tracker.NewError(tracker.KindIO, "ResolveConflict", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return tracker.NewError(tracker.KindIO, "ResolveConflict", err)
	}
	defer func() { _ = tx.Rollback() }()

	if resolution == "remote" {
		var ji jsonlIssue
		if err := json.Unmarshal([]byte(rec.RemoteJSON), &ji); err != nil {
			return tracker.NewError(tracker.KindParse, "ResolveConflict", err)
		}
		if err := upsertIssue(ctx, tx, &ji, true); err != nil {
			return tracker.NewError(tracker.KindIO, "ResolveConflict", err)
		}
		if err := replaceLabels(ctx, tx, ji.ID, ji.Labels); err != nil {
			return tracker.NewError(tracker.KindIO, "ResolveConflict", err)
		}
		if err := replaceDependencies(ctx, tx, ji.ID, ji.Dependencies); err != nil {
			return tracker.NewError(tracker.KindIO, "ResolveConflict", err)
		}
		if err := ftsDelete(ctx, tx, ji.ID); err != nil {
			return err
		}
		if err := ftsInsert(ctx, tx, ji.ID); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE issues SET synced_at = updated_at WHERE id = ?`, rec.IssueID); err != nil {
		return tracker.NewError(tracker.KindIO, "ResolveConflict", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM conflicts WHERE id = ?`, conflictID); err != nil {
		return tracker.NewError(tracker.KindIO, "ResolveConflict", err)
	}

	if err := tx.Commit(); err != nil {
		return tracker.NewError(tracker.KindIO, "ResolveConflict", err)
	}
	return nil
}

// DismissConflict discards a conflict record, keeping the local row as
// the resolved state, and stamps synced_at the same as ResolveConflict's
// "local" path.
func (s *Store) DismissConflict(ctx context.Context, conflictID int64) error {
	var issueID string
	if err := s.db.QueryRowContext(ctx, `SELECT issue_id FROM conflicts WHERE id = ?`, conflictID).Scan(&issueID); err != nil {
		if err == sql.ErrNoRows {
			return tracker.NewError(tracker.KindNotFound, "DismissConflict", tracker.ErrNotFound)
		}
		return tracker.NewError(tracker.KindIO, "DismissConflict", err)
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE issues SET synced_at = updated_at WHERE id = ?`, issueID); err != nil {
		return tracker.NewError(tracker.KindIO, "DismissConflict", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM conflicts WHERE id = ?`, conflictID); err != nil {
		return tracker.NewError(tracker.KindIO, "DismissConflict", err)
	}
	return nil
}
