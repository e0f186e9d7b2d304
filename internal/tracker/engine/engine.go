// Package engine is the façade a CLI or any other caller drives: it
// owns the project's configuration, the open store connection, and the
// best-effort export-after-write behavior every mutation gets.
package engine

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/opensrc/tracker/internal/tracker"
	"github.com/opensrc/tracker/internal/tracker/migrate"
	"github.com/opensrc/tracker/internal/tracker/storage/sqlite"
	"github.com/opensrc/tracker/internal/tracker/sync"
	"github.com/opensrc/tracker/internal/tracker/trackercfg"
	"github.com/opensrc/tracker/internal/tracker/trklog"
)

const gitignoreContent = `# SQLite database (local cache, rebuilt from issues.jsonl)
*.db
*.db-wal
*.db-shm
*.db-journal
`

// Engine binds a SQLite store to a single project directory and
// re-exports to issues.jsonl after every successful write.
type Engine struct {
	store       *sqlite.Store
	config      trackercfg.ProjectConfig
	projectPath string
	log         *slog.Logger
}

func dbPath(projectPath string, cfg trackercfg.ProjectConfig) string {
	return filepath.Join(projectPath, cfg.FolderName, "tracker.db")
}

func jsonlPath(projectPath string, cfg trackercfg.ProjectConfig) string {
	return filepath.Join(projectPath, cfg.FolderName, "issues.jsonl")
}

// Open opens an existing tracker database under projectPath, applying
// schema migrations if needed. The project must already have been
// initialized with Init.
func Open(ctx context.Context, projectPath string, log *slog.Logger) (*Engine, error) {
	if log == nil {
		log = trklog.Discard()
	}
	cfg := trackercfg.Load(projectPath, "")
	store, err := sqlite.Open(ctx, dbPath(projectPath, cfg))
	if err != nil {
		return nil, err
	}
	return &Engine{store: store, config: cfg, projectPath: projectPath, log: log}, nil
}

// Init creates <projectPath>/.tracker/ (always the default folder name),
// writes .gitignore and AGENTS.md if absent, and opens a fresh store.
func Init(ctx context.Context, projectPath string, log *slog.Logger) (*Engine, error) {
	if log == nil {
		log = trklog.Discard()
	}
	cfg := trackercfg.Default()
	trackerDir := filepath.Join(projectPath, cfg.FolderName)
	if err := os.MkdirAll(trackerDir, 0o750); err != nil {
		return nil, tracker.NewError(tracker.KindIO, "Init", err)
	}

	gitignorePath := filepath.Join(trackerDir, ".gitignore")
	if _, err := os.Stat(gitignorePath); os.IsNotExist(err) {
		if err := os.WriteFile(gitignorePath, []byte(gitignoreContent), 0o644); err != nil {
			log.Warn("failed to write .gitignore", "error", err)
		}
	}

	agentsPath := filepath.Join(trackerDir, "AGENTS.md")
	if _, err := os.Stat(agentsPath); os.IsNotExist(err) {
		if err := os.WriteFile(agentsPath, []byte(agentsMDContent), 0o644); err != nil {
			log.Warn("failed to write AGENTS.md", "error", err)
		}
	}

	store, err := sqlite.Open(ctx, dbPath(projectPath, cfg))
	if err != nil {
		return nil, err
	}
	return &Engine{store: store, config: cfg, projectPath: projectPath, log: log}, nil
}

// Close releases the underlying database connection.
func (e *Engine) Close() error { return e.store.Close() }

// Store exposes the underlying store for read-only operations (List,
// Get, Search, Ready, Children, conflict inspection) that don't trigger
// an export.
func (e *Engine) Store() *sqlite.Store { return e.store }

// Config returns the resolved project configuration.
func (e *Engine) Config() trackercfg.ProjectConfig { return e.config }

// ProjectPath returns the directory the engine was opened against.
func (e *Engine) ProjectPath() string { return e.projectPath }

func (e *Engine) exportJSONL(ctx context.Context) {
	if err := e.store.Export(ctx, jsonlPath(e.projectPath, e.config)); err != nil {
		e.log.Warn("issues.jsonl export failed", "error", err)
	}
}

// CreateIssue creates an issue using the project's configured prefix
// and re-exports on success.
func (e *Engine) CreateIssue(ctx context.Context, p tracker.CreateParams) (*tracker.Issue, error) {
	issue, err := e.store.Create(ctx, e.config.IssuePrefix, p)
	if err != nil {
		return nil, err
	}
	e.exportJSONL(ctx)
	return issue, nil
}

// UpdateIssue applies p to id and re-exports on success.
func (e *Engine) UpdateIssue(ctx context.Context, id string, p tracker.UpdateParams) (*tracker.Issue, error) {
	issue, err := e.store.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	e.exportJSONL(ctx)
	return issue, nil
}

// CloseIssue closes id and re-exports on success.
func (e *Engine) CloseIssue(ctx context.Context, id string) (*tracker.Issue, error) {
	issue, err := e.store.CloseIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	e.exportJSONL(ctx)
	return issue, nil
}

// DeleteIssue removes or tombstones id and re-exports on success.
func (e *Engine) DeleteIssue(ctx context.Context, id string, hard bool) error {
	if err := e.store.Delete(ctx, id, hard); err != nil {
		return err
	}
	e.exportJSONL(ctx)
	return nil
}

// AddComment adds a comment, defaulting author to the configured actor
// when empty, and re-exports on success.
func (e *Engine) AddComment(ctx context.Context, issueID, author, body string) (*tracker.Comment, error) {
	if author == "" {
		author = e.config.Actor
	}
	c, err := e.store.AddComment(ctx, issueID, author, body)
	if err != nil {
		return nil, err
	}
	e.exportJSONL(ctx)
	return c, nil
}

// DeleteComment removes a comment and re-exports on success.
func (e *Engine) DeleteComment(ctx context.Context, commentID string) error {
	if err := e.store.DeleteComment(ctx, commentID); err != nil {
		return err
	}
	e.exportJSONL(ctx)
	return nil
}

// AddLabel attaches label to issueID and re-exports on success.
func (e *Engine) AddLabel(ctx context.Context, issueID, label string) error {
	if err := e.store.AddLabel(ctx, issueID, label); err != nil {
		return err
	}
	e.exportJSONL(ctx)
	return nil
}

// RemoveLabel detaches label from issueID and re-exports on success.
func (e *Engine) RemoveLabel(ctx context.Context, issueID, label string) error {
	if err := e.store.RemoveLabel(ctx, issueID, label); err != nil {
		return err
	}
	e.exportJSONL(ctx)
	return nil
}

// AddDependency records a dependency edge and re-exports on success.
func (e *Engine) AddDependency(ctx context.Context, fromID, toID, depType string) error {
	if err := e.store.AddDependency(ctx, fromID, toID, depType); err != nil {
		return err
	}
	e.exportJSONL(ctx)
	return nil
}

// RemoveDependency removes a dependency edge and re-exports on success.
func (e *Engine) RemoveDependency(ctx context.Context, fromID, toID string) error {
	if err := e.store.RemoveDependency(ctx, fromID, toID); err != nil {
		return err
	}
	e.exportJSONL(ctx)
	return nil
}

// ListConflicts returns unresolved sync conflicts.
func (e *Engine) ListConflicts(ctx context.Context) ([]tracker.Conflict, error) {
	return e.store.ListConflicts(ctx)
}

// ResolveConflict applies "local" or "remote" and re-exports on success.
func (e *Engine) ResolveConflict(ctx context.Context, conflictID int64, resolution string) error {
	if err := e.store.ResolveConflict(ctx, conflictID, resolution); err != nil {
		return err
	}
	e.exportJSONL(ctx)
	return nil
}

// DismissConflict discards a conflict record, keeping the local row.
func (e *Engine) DismissConflict(ctx context.Context, conflictID int64) error {
	return e.store.DismissConflict(ctx, conflictID)
}

// Sync runs the git-assisted export/commit/pull/import/push cycle.
func (e *Engine) Sync(ctx context.Context) (sync.Result, error) {
	runner := &sync.Runner{Dir: e.projectPath}
	rel := filepath.Join(e.config.FolderName, "issues.jsonl")
	return sync.Sync(ctx, e.store, runner, rel, jsonlPath(e.projectPath, e.config))
}

// MigrateFromBeads runs a one-shot migration from a sibling legacy
// .beads/ directory into this engine's own tracker directory.
func (e *Engine) MigrateFromBeads(ctx context.Context, legacyDir string) (migrate.Result, error) {
	trackerDir := filepath.Join(e.projectPath, e.config.FolderName)
	return migrate.FromBeads(ctx, e.store, legacyDir, trackerDir, jsonlPath(e.projectPath, e.config))
}

// JSONLPath returns the absolute path to this project's issues.jsonl.
func (e *Engine) JSONLPath() string { return jsonlPath(e.projectPath, e.config) }
