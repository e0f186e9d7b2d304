// Package sync orchestrates the git-assisted synchronization loop:
// export the store to NDJSON, stage and commit it, pull with rebase,
// import whatever came back, re-export to normalize, and push.
package sync

import (
	"context"
	"os/exec"
	"strings"

	"github.com/opensrc/tracker/internal/tracker"
	"github.com/opensrc/tracker/internal/tracker/storage/sqlite"
)

// Result reports which phases of a sync cycle ran and what the importer
// saw, mirroring the engine's JSON sync response shape.
type Result struct {
	Exported     bool
	Committed    bool
	Pulled       bool
	Pushed       bool
	Conflict     bool
	ImportResult *sqlite.ImportResult
}

// Runner drives `git` as a subprocess rooted at Dir.
type Runner struct {
	Dir string
}

func (r *Runner) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir
	out, err := cmd.Output()
	if err != nil {
		stderr := ""
		if ee, ok := err.(*exec.ExitError); ok {
			stderr = strings.TrimSpace(string(ee.Stderr))
		}
		return "", tracker.NewError(tracker.KindExternal, "git "+strings.Join(args, " "), errJoin(err, stderr))
	}
	return strings.TrimSpace(string(out)), nil
}

type joinedErr struct {
	err    error
	stderr string
}

func (j *joinedErr) Error() string {
	if j.stderr == "" {
		return j.err.Error()
	}
	return j.stderr
}

func (j *joinedErr) Unwrap() error { return j.err }

func errJoin(err error, stderr string) error { return &joinedErr{err: err, stderr: stderr} }

func (r *Runner) isGitRepo(ctx context.Context) bool {
	out, err := r.run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

func (r *Runner) hasRemote(ctx context.Context) bool {
	out, err := r.run(ctx, "remote")
	return err == nil && out != ""
}

func isConflict(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "conflict")
}

// Sync runs the full export → stage → commit → pull --rebase → import →
// re-export → push cycle. If projectPath is not inside a git work tree,
// it no-ops and returns a zero Result. Pull and push failures that are
// not conflicts are neither returned nor logged; Sync carries on, so an
// offline machine can still commit locally.
func Sync(ctx context.Context, store *sqlite.Store, runner *Runner, jsonlRelPath, jsonlAbsPath string) (Result, error) {
	var res Result

	if !runner.isGitRepo(ctx) {
		return res, nil
	}

	if err := store.Export(ctx, jsonlAbsPath); err != nil {
		return res, err
	}
	res.Exported = true

	if _, err := runner.run(ctx, "add", jsonlRelPath); err != nil {
		return res, err
	}

	_, diffErr := runner.run(ctx, "diff", "--cached", "--quiet", jsonlRelPath)
	if diffErr != nil {
		if _, err := runner.run(ctx, "commit", "-m", "sync: update issues.jsonl"); err != nil {
			return res, err
		}
		res.Committed = true
	}

	if !runner.hasRemote(ctx) {
		return res, nil
	}

	if _, err := runner.run(ctx, "pull", "--rebase"); err != nil {
		if isConflict(err) {
			res.Conflict = true
			return res, nil
		}
		// Other failures (offline, etc.) are recoverable; still try to push.
	} else {
		res.Pulled = true
	}

	if res.Pulled {
		ir, err := store.Import(ctx, jsonlAbsPath)
		if err == nil {
			res.ImportResult = &ir
			_ = store.Export(ctx, jsonlAbsPath)
		}
	}

	if res.Committed || res.Pulled {
		if _, err := runner.run(ctx, "push"); err == nil {
			res.Pushed = true
		}
	}

	return res, nil
}
