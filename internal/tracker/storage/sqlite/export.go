package sqlite

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/opensrc/tracker/internal/tracker"
)

// jsonlIssue is the NDJSON wire representation of an issue, compatible
// with the bd/br interchange format: unknown extra fields are ignored on
// import, and every optional field is omitted entirely rather than
// written as null.
type jsonlIssue struct {
	ID                 string             `json:"id"`
	Title              string             `json:"title"`
	Description        string             `json:"description,omitempty"`
	Status             string             `json:"status"`
	Priority           int                `json:"priority"`
	IssueType          string             `json:"issue_type"`
	CreatedAt          string             `json:"created_at"`
	CreatedBy          string             `json:"created_by"`
	UpdatedAt          string             `json:"updated_at"`
	ClosedAt           *string            `json:"closed_at,omitempty"`
	CloseReason        *string            `json:"close_reason,omitempty"`
	Owner              *string            `json:"owner,omitempty"`
	SourceRepo         string             `json:"source_repo"`
	CompactionLevel    int                `json:"compaction_level"`
	OriginalSize       int                `json:"original_size"`
	ExternalRef        *string            `json:"external_ref,omitempty"`
	EstimateMinutes    *int               `json:"estimate_minutes,omitempty"`
	Design             *string            `json:"design,omitempty"`
	AcceptanceCriteria *string            `json:"acceptance_criteria,omitempty"`
	Notes              *string            `json:"notes,omitempty"`
	Parent             *string            `json:"parent,omitempty"`
	Metadata           *string            `json:"metadata,omitempty"`
	SpecID             *string            `json:"spec_id,omitempty"`
	Labels             []string           `json:"labels,omitempty"`
	Comments           []jsonlComment     `json:"comments,omitempty"`
	Dependencies       []jsonlDependency  `json:"dependencies,omitempty"`
}

type jsonlComment struct {
	ID        string `json:"id,omitempty"`
	IssueID   string `json:"issue_id"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

type jsonlDependency struct {
	IssueID     string `json:"issue_id"`
	DependsOnID string `json:"depends_on_id"`
	Type        string `json:"type"`
}

func omitEmpty(s string) *string {
	if s == "" {
		return nil
	}
	v := s
	return &v
}

// Export writes every issue (including tombstones) to path as NDJSON,
// one object per line ordered by created_at, via a write-to-tmp then
// rename so a crash mid-write never leaves a truncated file in place.
func (s *Store) Export(ctx context.Context, path string) error {
	comments, err := s.allCommentsByIssue(ctx)
	if err != nil {
		return err
	}
	deps, err := s.allDependenciesByFrom(ctx)
	if err != nil {
		return err
	}
	labels, err := s.allLabelsByIssue(ctx)
	if err != nil {
		return err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, body, issue_type, status, priority,
		       assignee, author, created_at, updated_at, closed_at,
		       external_ref, estimate_minutes, design, acceptance_criteria,
		       notes, parent, metadata, spec_id
		FROM issues ORDER BY created_at`)
	if err != nil {
		return tracker.NewError(tracker.KindIO, "Export", err)
	}
	defer rows.Close()

	var buf []byte
	for rows.Next() {
		var id, title, body, issueType, status, priority, author, createdAt, updatedAt string
		var assignee, closedAt, externalRef, design, accept, notes, parent, metadata, specID nullString
		var estimate nullInt
		if err := rows.Scan(&id, &title, &body, &issueType, &status, &priority,
			&assignee, &author, &createdAt, &updatedAt, &closedAt,
			&externalRef, &estimate, &design, &accept, &notes, &parent, &metadata, &specID); err != nil {
			return tracker.NewError(tracker.KindIO, "Export", err)
		}

		var closeReason *string
		if status == "closed" {
			v := "done"
			closeReason = &v
		}
		createdBy := author
		if createdBy == "" {
			createdBy = "unknown"
		}

		ji := jsonlIssue{
			ID: id, Title: title, Description: body, Status: status,
			Priority: tracker.PriorityToInt(priority), IssueType: issueType,
			CreatedAt: createdAt, CreatedBy: createdBy, UpdatedAt: updatedAt,
			ClosedAt: closedAt.ptr(), CloseReason: closeReason, Owner: assignee.ptr(),
			SourceRepo: ".", CompactionLevel: 0, OriginalSize: 0,
			ExternalRef: externalRef.ptr(), EstimateMinutes: estimate.intPtr(),
			Design: omitEmpty(design.String), AcceptanceCriteria: omitEmpty(accept.String), Notes: omitEmpty(notes.String),
			Parent: parent.ptr(), Metadata: metadata.ptr(), SpecID: specID.ptr(),
			Labels: labels[id], Comments: comments[id], Dependencies: deps[id],
		}

		line, err := json.Marshal(ji)
		if err != nil {
			return tracker.NewError(tracker.KindIO, "Export", err)
		}
		buf = append(buf, line...)
		buf = append(buf, '\n')
	}
	if err := rows.Err(); err != nil {
		return tracker.NewError(tracker.KindIO, "Export", err)
	}

	dir := filepath.Dir(path)
	tmp := path + ".tmp"
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return tracker.NewError(tracker.KindIO, "Export", err)
	}
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return tracker.NewError(tracker.KindIO, "Export", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return tracker.NewError(tracker.KindIO, "Export", err)
	}
	return nil
}

func (s *Store) allCommentsByIssue(ctx context.Context) (map[string][]jsonlComment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, issue_id, author, body, created_at FROM comments ORDER BY created_at`)
	if err != nil {
		return nil, tracker.NewError(tracker.KindIO, "allCommentsByIssue", err)
	}
	defer rows.Close()
	out := make(map[string][]jsonlComment)
	for rows.Next() {
		var c jsonlComment
		if err := rows.Scan(&c.ID, &c.IssueID, &c.Author, &c.Text, &c.CreatedAt); err != nil {
			return nil, tracker.NewError(tracker.KindIO, "allCommentsByIssue", err)
		}
		out[c.IssueID] = append(out[c.IssueID], c)
	}
	return out, rows.Err()
}

func (s *Store) allDependenciesByFrom(ctx context.Context) (map[string][]jsonlDependency, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT from_id, to_id, dep_type FROM dependencies`)
	if err != nil {
		return nil, tracker.NewError(tracker.KindIO, "allDependenciesByFrom", err)
	}
	defer rows.Close()
	out := make(map[string][]jsonlDependency)
	for rows.Next() {
		var from, to, depType string
		if err := rows.Scan(&from, &to, &depType); err != nil {
			return nil, tracker.NewError(tracker.KindIO, "allDependenciesByFrom", err)
		}
		out[from] = append(out[from], jsonlDependency{IssueID: from, DependsOnID: to, Type: depType})
	}
	return out, rows.Err()
}

func (s *Store) allLabelsByIssue(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT issue_id, label FROM labels ORDER BY label`)
	if err != nil {
		return nil, tracker.NewError(tracker.KindIO, "allLabelsByIssue", err)
	}
	defer rows.Close()
	out := make(map[string][]string)
	for rows.Next() {
		var issueID, label string
		if err := rows.Scan(&issueID, &label); err != nil {
			return nil, tracker.NewError(tracker.KindIO, "allLabelsByIssue", err)
		}
		out[issueID] = append(out[issueID], label)
	}
	return out, rows.Err()
}
