package engine

// agentsMDContent is written to .tracker/AGENTS.md on Init so that an AI
// coding agent working in this repository knows the tracker exists and
// how to drive it from the shell.
const agentsMDContent = `# tracker (beads-tracker compatible)

This project tracks its work items in ` + "`.tracker/`" + ` using the trkr CLI, an
embedded, single-user issue tracker. The database (` + "`tracker.db`" + `) is local
and git-ignored; ` + "`issues.jsonl`" + ` is the source of truth committed to
version control.

## Conventions

- Issue IDs look like ` + "`<prefix>-xxxx`" + ` (e.g. ` + "`tracker-a1b2`" + `).
- Status is one of ` + "`open`" + `, ` + "`in_progress`" + `, ` + "`closed`" + `, ` + "`tombstone`" + `.
- Priority is ` + "`p0`" + ` (highest) through ` + "`p4`" + ` (lowest); default ` + "`p2`" + `.
- A "blocks" dependency from A to B means B cannot be considered ready
  until A is closed (or tombstoned). Other dependency types are
  informational relations.

## Commands an agent will commonly want

` + "```" + `
trkr list --status open
trkr ready
trkr show <id>
trkr create "<title>" --body "..." --priority p1
trkr update <id> --status in_progress
trkr comments add <id> --body "..."
trkr close <id>
trkr search "<query>"
trkr sync
` + "```" + `

Run any command with ` + "`--json`" + ` for machine-readable output. Every command
exits 0 on success and 1 on error, printing the error message to stderr.

After every write, the tool re-exports ` + "`issues.jsonl`" + ` automatically — commit
that file, never ` + "`tracker.db`" + `.
`
