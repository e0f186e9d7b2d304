package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/opensrc/tracker/internal/tracker"
)

const issueColumns = `id, title, body, issue_type, status, priority, assignee, author,
	created_at, updated_at, closed_at, external_ref, estimate_minutes,
	design, acceptance_criteria, notes, parent, metadata, spec_id, synced_at,
	(SELECT COUNT(*) FROM comments c WHERE c.issue_id = i.id),
	(SELECT COUNT(*) FROM dependencies d WHERE d.to_id = i.id AND d.dep_type = 'blocks'),
	(SELECT COUNT(*) FROM dependencies d WHERE d.from_id = i.id AND d.dep_type = 'blocks')`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanIssue(row rowScanner) (*tracker.Issue, error) {
	var iss tracker.Issue
	var assignee, extRef, design, accept, notes, parent, metadata, specID sql.NullString
	var estimate sql.NullInt64
	var closedAt, syncedAt sql.NullTime
	var issueType, status, priority string

	err := row.Scan(
		&iss.ID, &iss.Title, &iss.Body, &issueType, &status, &priority,
		&assignee, &iss.Author, &iss.CreatedAt, &iss.UpdatedAt, &closedAt,
		&extRef, &estimate, &design, &accept, &notes, &parent, &metadata, &specID, &syncedAt,
		&iss.CommentCount, &iss.DependencyCount, &iss.DependentCount,
	)
	if err != nil {
		return nil, err
	}

	iss.Type = issueType
	iss.Status = tracker.Status(status)
	iss.Priority = priority
	iss.Design = design.String
	iss.AcceptanceCriteria = accept.String
	iss.Notes = notes.String
	if assignee.Valid {
		iss.Assignee = assignee.String
	}
	if extRef.Valid {
		v := extRef.String
		iss.ExternalRef = &v
	}
	if estimate.Valid {
		v := int(estimate.Int64)
		iss.EstimateMinutes = &v
	}
	if parent.Valid {
		v := parent.String
		iss.Parent = &v
	}
	if metadata.Valid {
		v := metadata.String
		iss.Metadata = &v
	}
	if specID.Valid {
		v := specID.String
		iss.SpecID = &v
	}
	if closedAt.Valid {
		v := closedAt.Time
		iss.ClosedAt = &v
	}
	if syncedAt.Valid {
		v := syncedAt.Time
		iss.SyncedAt = &v
	}
	return &iss, nil
}

func (s *Store) idExists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM issues WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create inserts a new issue, generating a collision-checked ID from
// prefix, writes its labels, and indexes it into FTS, all within one
// transaction.
func (s *Store) Create(ctx context.Context, prefix string, p tracker.CreateParams) (*tracker.Issue, error) {
	id, err := tracker.GenerateIssueID(ctx, prefix, s.idExists)
	if err != nil {
		return nil, err
	}

	issueType := p.Type
	if issueType == "" {
		issueType = "task"
	}
	status := p.Status
	if status == "" {
		status = string(tracker.StatusOpen)
	}
	priority := p.Priority
	if priority == "" {
		priority = "p2"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, tracker.NewError(tracker.KindIO, "Create", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO issues (id, title, body, issue_type, status, priority, assignee, author,
			external_ref, estimate_minutes, design, acceptance_criteria, notes, parent, metadata, spec_id)
		VALUES (?, ?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.Title, p.Body, issueType, status, priority, p.Assignee, p.Author,
		p.ExternalRef, p.EstimateMinutes, p.Design, p.AcceptanceCriteria, p.Notes, p.Parent, p.Metadata, p.SpecID,
	)
	if err != nil {
		return nil, tracker.NewError(tracker.KindIO, "Create", err)
	}

	for _, l := range p.Labels {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO labels (issue_id, label) VALUES (?, ?)`, id, l); err != nil {
			return nil, tracker.NewError(tracker.KindIO, "Create", err)
		}
	}

	if err := ftsInsert(ctx, tx, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, tracker.NewError(tracker.KindIO, "Create", err)
	}

	return s.Get(ctx, id)
}

// Get retrieves a single issue with labels, comments, and dependency
// relations fully populated.
func (s *Store) Get(ctx context.Context, id string) (*tracker.Issue, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+issueColumns+` FROM issues i WHERE i.id = ?`, id)
	iss, err := scanIssue(row)
	if err == sql.ErrNoRows {
		return nil, tracker.NewError(tracker.KindNotFound, "Get", tracker.ErrNotFound)
	}
	if err != nil {
		return nil, tracker.NewError(tracker.KindIO, "Get", err)
	}

	if iss.Labels, err = s.fetchLabels(ctx, id); err != nil {
		return nil, err
	}
	if iss.Comments, err = s.fetchComments(ctx, id); err != nil {
		return nil, err
	}
	if err := s.fetchRelations(ctx, id, iss); err != nil {
		return nil, err
	}
	return iss, nil
}

// List returns lightweight issues (counts, no inlined comments) ordered
// newest-first, optionally filtered to a single status.
func (s *Store) List(ctx context.Context, filter tracker.ListFilter) ([]*tracker.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues i`
	var args []any
	if filter.Status != "" && filter.Status != "all" {
		query += ` WHERE i.status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY i.created_at DESC`

	return s.queryIssueList(ctx, query, args...)
}

// Ready returns open/in_progress issues with no unresolved "blocks"
// dependency.
func (s *Store) Ready(ctx context.Context) ([]*tracker.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues i
		WHERE i.status IN ('open', 'in_progress')
		  AND NOT EXISTS (
			SELECT 1 FROM dependencies d
			JOIN issues blocker ON blocker.id = d.from_id
			WHERE d.to_id = i.id AND d.dep_type = 'blocks'
			  AND blocker.status NOT IN ('closed', 'tombstone')
		  )
		ORDER BY i.created_at DESC`
	return s.queryIssueList(ctx, query)
}

// Children returns direct children of parentID.
func (s *Store) Children(ctx context.Context, parentID string) ([]*tracker.Issue, error) {
	query := `SELECT ` + issueColumns + ` FROM issues i WHERE i.parent = ? ORDER BY i.created_at DESC`
	return s.queryIssueList(ctx, query, parentID)
}

func (s *Store) queryIssueList(ctx context.Context, query string, args ...any) ([]*tracker.Issue, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, tracker.NewError(tracker.KindIO, "queryIssueList", err)
	}
	defer rows.Close()

	var out []*tracker.Issue
	for rows.Next() {
		iss, err := scanIssue(rows)
		if err != nil {
			return nil, tracker.NewError(tracker.KindIO, "queryIssueList", err)
		}
		out = append(out, iss)
	}
	if err := rows.Err(); err != nil {
		return nil, tracker.NewError(tracker.KindIO, "queryIssueList", err)
	}

	for _, iss := range out {
		iss.Labels, err = s.fetchLabels(ctx, iss.ID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) fetchLabels(ctx context.Context, issueID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT label FROM labels WHERE issue_id = ? ORDER BY label`, issueID)
	if err != nil {
		return nil, tracker.NewError(tracker.KindIO, "fetchLabels", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, tracker.NewError(tracker.KindIO, "fetchLabels", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) fetchComments(ctx context.Context, issueID string) ([]tracker.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, body, author, created_at FROM comments WHERE issue_id = ? ORDER BY created_at`, issueID)
	if err != nil {
		return nil, tracker.NewError(tracker.KindIO, "fetchComments", err)
	}
	defer rows.Close()
	var out []tracker.Comment
	for rows.Next() {
		var c tracker.Comment
		c.IssueID = issueID
		if err := rows.Scan(&c.ID, &c.Body, &c.Author, &c.CreatedAt); err != nil {
			return nil, tracker.NewError(tracker.KindIO, "fetchComments", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// fetchRelations populates BlockedBy/Blocks ("blocks" dep type) and
// Relations (every other dep type) on iss.
func (s *Store) fetchRelations(ctx context.Context, issueID string, iss *tracker.Issue) error {
	rows, err := s.db.QueryContext(ctx, `SELECT from_id, to_id, dep_type FROM dependencies WHERE from_id = ? OR to_id = ?`, issueID, issueID)
	if err != nil {
		return tracker.NewError(tracker.KindIO, "fetchRelations", err)
	}
	defer rows.Close()
	for rows.Next() {
		var from, to, depType string
		if err := rows.Scan(&from, &to, &depType); err != nil {
			return tracker.NewError(tracker.KindIO, "fetchRelations", err)
		}
		if depType == string(tracker.DepBlocks) {
			if from == issueID {
				iss.Blocks = append(iss.Blocks, to)
			} else {
				iss.BlockedBy = append(iss.BlockedBy, from)
			}
			continue
		}
		if from == issueID {
			iss.Relations = append(iss.Relations, tracker.Relation{ID: to, DepType: depType, Direction: tracker.DirectionDependent})
		} else {
			iss.Relations = append(iss.Relations, tracker.Relation{ID: from, DepType: depType, Direction: tracker.DirectionDependency})
		}
	}
	return rows.Err()
}

// allowed column names for Update's dynamic SET clause, keyed by the
// UpdateParams field they correspond to. Whitelisting prevents the
// dynamic SQL builder from ever interpolating caller-controlled column
// names.
var updateColumns = map[string]string{
	"title": "title", "body": "body", "type": "issue_type", "status": "status",
	"priority": "priority", "assignee": "assignee", "author": "author",
	"external_ref": "external_ref", "estimate_minutes": "estimate_minutes",
	"design": "design", "acceptance_criteria": "acceptance_criteria", "notes": "notes",
	"parent": "parent", "metadata": "metadata", "spec_id": "spec_id",
}

// Update applies only the tri-state fields that are Set or Null in p,
// re-indexes FTS whenever any column changed, and optionally replaces
// the label set.
func (s *Store) Update(ctx context.Context, id string, p tracker.UpdateParams) (*tracker.Issue, error) {
	var sets []string
	var args []any

	appendField := func(col string, unset, isNull bool, val any) {
		if unset {
			return
		}
		sets = append(sets, col+" = ?")
		if isNull {
			args = append(args, nil)
		} else {
			args = append(args, val)
		}
	}

	appendField(updateColumns["title"], p.Title.IsUnset(), p.Title.IsNull(), p.Title.Value())
	appendField(updateColumns["body"], p.Body.IsUnset(), p.Body.IsNull(), p.Body.Value())
	appendField(updateColumns["type"], p.Type.IsUnset(), p.Type.IsNull(), p.Type.Value())
	appendField(updateColumns["status"], p.Status.IsUnset(), p.Status.IsNull(), p.Status.Value())
	appendField(updateColumns["priority"], p.Priority.IsUnset(), p.Priority.IsNull(), p.Priority.Value())
	appendField(updateColumns["assignee"], p.Assignee.IsUnset(), p.Assignee.IsNull(), p.Assignee.Value())
	appendField(updateColumns["author"], p.Author.IsUnset(), p.Author.IsNull(), p.Author.Value())
	appendField(updateColumns["external_ref"], p.ExternalRef.IsUnset(), p.ExternalRef.IsNull(), p.ExternalRef.Value())
	appendField(updateColumns["estimate_minutes"], p.EstimateMinutes.IsUnset(), p.EstimateMinutes.IsNull(), p.EstimateMinutes.Value())
	// design, acceptance_criteria and notes are NOT NULL columns: Null
	// clears them to '' (Value() is the zero string) instead of writing NULL.
	appendField(updateColumns["design"], p.Design.IsUnset(), false, p.Design.Value())
	appendField(updateColumns["acceptance_criteria"], p.AcceptanceCriteria.IsUnset(), false, p.AcceptanceCriteria.Value())
	appendField(updateColumns["notes"], p.Notes.IsUnset(), false, p.Notes.Value())
	appendField(updateColumns["parent"], p.Parent.IsUnset(), p.Parent.IsNull(), p.Parent.Value())
	appendField(updateColumns["metadata"], p.Metadata.IsUnset(), p.Metadata.IsNull(), p.Metadata.Value())
	appendField(updateColumns["spec_id"], p.SpecID.IsUnset(), p.SpecID.IsNull(), p.SpecID.Value())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, tracker.NewError(tracker.KindIO, "Update", err)
	}
	defer func() { _ = tx.Rollback() }()

	if len(sets) > 0 {
		sets = append(sets, "updated_at = datetime('now')")
		query := fmt.Sprintf(`UPDATE issues SET %s WHERE id = ?`, strings.Join(sets, ", "))
		args = append(args, id)
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return nil, tracker.NewError(tracker.KindIO, "Update", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, tracker.NewError(tracker.KindNotFound, "Update", tracker.ErrNotFound)
		}
		if err := ftsDelete(ctx, tx, id); err != nil {
			return nil, err
		}
		if err := ftsInsert(ctx, tx, id); err != nil {
			return nil, err
		}
	}

	if p.Labels != nil || p.ReplaceLabels {
		if _, err := tx.ExecContext(ctx, `DELETE FROM labels WHERE issue_id = ?`, id); err != nil {
			return nil, tracker.NewError(tracker.KindIO, "Update", err)
		}
		for _, l := range p.Labels {
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO labels (issue_id, label) VALUES (?, ?)`, id, l); err != nil {
				return nil, tracker.NewError(tracker.KindIO, "Update", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, tracker.NewError(tracker.KindIO, "Update", err)
	}
	return s.Get(ctx, id)
}

// CloseIssue sets status=closed and stamps closed_at/updated_at.
func (s *Store) CloseIssue(ctx context.Context, id string) (*tracker.Issue, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE issues SET status = 'closed', closed_at = datetime('now'), updated_at = datetime('now') WHERE id = ?`, id)
	if err != nil {
		return nil, tracker.NewError(tracker.KindIO, "CloseIssue", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, tracker.NewError(tracker.KindNotFound, "CloseIssue", tracker.ErrNotFound)
	}
	return s.Get(ctx, id)
}

// Delete removes an issue. hard=true deletes the row (cascading via FK);
// hard=false tombstones it in place, matching the sync-safe soft-delete
// path the export/import round trip relies on.
func (s *Store) Delete(ctx context.Context, id string, hard bool) error {
	if hard {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return tracker.NewError(tracker.KindIO, "Delete", err)
		}
		defer func() { _ = tx.Rollback() }()
		if err := ftsDelete(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM issues WHERE id = ?`, id); err != nil {
			return tracker.NewError(tracker.KindIO, "Delete", err)
		}
		if err := tx.Commit(); err != nil {
			return tracker.NewError(tracker.KindIO, "Delete", err)
		}
		return nil
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE issues SET status = 'tombstone', updated_at = datetime('now') WHERE id = ?`, id)
	if err != nil {
		return tracker.NewError(tracker.KindIO, "Delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tracker.NewError(tracker.KindNotFound, "Delete", tracker.ErrNotFound)
	}
	return nil
}

func (s *Store) touchUpdatedAt(ctx context.Context, ex execer, issueID string) error {
	_, err := ex.ExecContext(ctx, `UPDATE issues SET updated_at = datetime('now') WHERE id = ?`, issueID)
	return err
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// AddComment appends a comment and touches the issue's updated_at.
func (s *Store) AddComment(ctx context.Context, issueID, author, body string) (*tracker.Comment, error) {
	id := tracker.GenerateCommentID()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, tracker.NewError(tracker.KindIO, "AddComment", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `INSERT INTO comments (id, issue_id, body, author) VALUES (?, ?, ?, ?)`, id, issueID, body, author); err != nil {
		return nil, tracker.NewError(tracker.KindIO, "AddComment", err)
	}
	if err := s.touchUpdatedAt(ctx, tx, issueID); err != nil {
		return nil, tracker.NewError(tracker.KindIO, "AddComment", err)
	}
	var createdAt time.Time
	if err := tx.QueryRowContext(ctx, `SELECT created_at FROM comments WHERE id = ?`, id).Scan(&createdAt); err != nil {
		return nil, tracker.NewError(tracker.KindIO, "AddComment", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, tracker.NewError(tracker.KindIO, "AddComment", err)
	}
	return &tracker.Comment{ID: id, IssueID: issueID, Body: body, Author: author, CreatedAt: createdAt}, nil
}

// DeleteComment removes a comment and touches its parent issue.
func (s *Store) DeleteComment(ctx context.Context, commentID string) error {
	var issueID string
	if err := s.db.QueryRowContext(ctx, `SELECT issue_id FROM comments WHERE id = ?`, commentID).Scan(&issueID); err != nil {
		if err == sql.ErrNoRows {
			return tracker.NewError(tracker.KindNotFound, "DeleteComment", tracker.ErrNotFound)
		}
		return tracker.NewError(tracker.KindIO, "DeleteComment", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, commentID); err != nil {
		return tracker.NewError(tracker.KindIO, "DeleteComment", err)
	}
	return s.touchUpdatedAt(ctx, s.db, issueID)
}

// AddLabel attaches a label to an issue (idempotent).
func (s *Store) AddLabel(ctx context.Context, issueID, label string) error {
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO labels (issue_id, label) VALUES (?, ?)`, issueID, label); err != nil {
		return tracker.NewError(tracker.KindIO, "AddLabel", err)
	}
	return s.touchUpdatedAt(ctx, s.db, issueID)
}

// RemoveLabel detaches a label from an issue.
func (s *Store) RemoveLabel(ctx context.Context, issueID, label string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM labels WHERE issue_id = ? AND label = ?`, issueID, label); err != nil {
		return tracker.NewError(tracker.KindIO, "RemoveLabel", err)
	}
	return s.touchUpdatedAt(ctx, s.db, issueID)
}

// AddDependency upserts a dependency edge and touches both endpoints.
func (s *Store) AddDependency(ctx context.Context, fromID, toID, depType string) error {
	if depType == "" {
		depType = string(tracker.DepBlocks)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return tracker.NewError(tracker.KindIO, "AddDependency", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO dependencies (from_id, to_id, dep_type) VALUES (?, ?, ?)`, fromID, toID, depType); err != nil {
		return tracker.NewError(tracker.KindIO, "AddDependency", err)
	}
	if err := s.touchUpdatedAt(ctx, tx, fromID); err != nil {
		return tracker.NewError(tracker.KindIO, "AddDependency", err)
	}
	if err := s.touchUpdatedAt(ctx, tx, toID); err != nil {
		return tracker.NewError(tracker.KindIO, "AddDependency", err)
	}
	if err := tx.Commit(); err != nil {
		return tracker.NewError(tracker.KindIO, "AddDependency", err)
	}
	return nil
}

// RemoveDependency deletes a dependency edge and touches both endpoints.
func (s *Store) RemoveDependency(ctx context.Context, fromID, toID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return tracker.NewError(tracker.KindIO, "RemoveDependency", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM dependencies WHERE from_id = ? AND to_id = ?`, fromID, toID); err != nil {
		return tracker.NewError(tracker.KindIO, "RemoveDependency", err)
	}
	if err := s.touchUpdatedAt(ctx, tx, fromID); err != nil {
		return tracker.NewError(tracker.KindIO, "RemoveDependency", err)
	}
	if err := s.touchUpdatedAt(ctx, tx, toID); err != nil {
		return tracker.NewError(tracker.KindIO, "RemoveDependency", err)
	}
	return tx.Commit()
}

func ftsInsert(ctx context.Context, ex execer, issueID string) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO issues_fts(issue_id, title, body, notes)
		SELECT id, title, body, COALESCE(notes, '') FROM issues WHERE id = ?`, issueID)
	if err != nil {
		return tracker.NewError(tracker.KindIO, "ftsInsert", err)
	}
	return nil
}

func ftsDelete(ctx context.Context, ex execer, issueID string) error {
	_, err := ex.ExecContext(ctx, `DELETE FROM issues_fts WHERE issue_id = ?`, issueID)
	if err != nil {
		return tracker.NewError(tracker.KindIO, "ftsDelete", err)
	}
	return nil
}
