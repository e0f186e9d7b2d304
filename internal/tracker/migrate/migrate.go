// Package migrate performs the one-shot, non-destructive copy from a
// legacy sibling `.beads/` directory into the tracker's own directory.
package migrate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/opensrc/tracker/internal/tracker"
	"github.com/opensrc/tracker/internal/tracker/storage/sqlite"
)

// Result reports the outcome of a migration.
type Result struct {
	Issues              sqlite.ImportResult
	AttachmentsCopied   int
	AttachmentsSkipped  int
	ConfigMigrated      bool
	Warnings            []string
}

// FromBeads imports legacyDir/issues.jsonl into store, copies
// legacyDir/attachments into trackerDir/attachments (skipping files that
// already exist at the destination), best-effort extracts
// `issue-prefix:` from legacyDir/config.yaml into a fresh
// trackerDir/config.yaml, and re-exports to normalize
// trackerDir/issues.jsonl. It never writes to legacyDir.
func FromBeads(ctx context.Context, store *sqlite.Store, legacyDir, trackerDir, jsonlPath string) (Result, error) {
	var res Result

	srcJSONL := filepath.Join(legacyDir, "issues.jsonl")
	if _, err := os.Stat(srcJSONL); err != nil {
		return res, tracker.NewError(tracker.KindNotFound, "FromBeads", fmt.Errorf("no %s found — nothing to migrate", srcJSONL))
	}

	if err := os.MkdirAll(trackerDir, 0o750); err != nil {
		return res, tracker.NewError(tracker.KindIO, "FromBeads", err)
	}

	ir, err := store.Import(ctx, srcJSONL)
	if err != nil {
		return res, err
	}
	res.Issues = ir
	if ir.Errors > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%d malformed lines skipped during import", ir.Errors))
	}

	res.AttachmentsCopied, res.AttachmentsSkipped = copyAttachments(
		filepath.Join(legacyDir, "attachments"),
		filepath.Join(trackerDir, "attachments"),
		&res.Warnings,
	)

	res.ConfigMigrated = extractConfig(
		filepath.Join(legacyDir, "config.yaml"),
		filepath.Join(trackerDir, "config.yaml"),
		&res.Warnings,
	)

	if err := store.Export(ctx, jsonlPath); err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("post-migration export failed: %v", err))
	}

	return res, nil
}

func copyAttachments(src, dst string, warnings *[]string) (copied, skipped int) {
	info, err := os.Stat(src)
	if err != nil || !info.IsDir() {
		return 0, 0
	}
	if err := copyDirRecursive(src, dst, &copied, &skipped, warnings); err != nil {
		*warnings = append(*warnings, fmt.Sprintf("attachment copy error: %v", err))
	}
	return copied, skipped
}

func copyDirRecursive(src, dst string, copied, skipped *int, warnings *[]string) error {
	if err := os.MkdirAll(dst, 0o750); err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := copyDirRecursive(srcPath, dstPath, copied, skipped, warnings); err != nil {
				return err
			}
			continue
		}
		if _, err := os.Stat(dstPath); err == nil {
			*skipped++
			continue
		}
		if err := copyFile(srcPath, dstPath); err != nil {
			*warnings = append(*warnings, fmt.Sprintf("failed to copy %s: %v", srcPath, err))
			continue
		}
		*copied++
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

// extractConfig best-effort parses `issue-prefix:` out of srcConfig and
// writes a minimal dstConfig. It refuses to overwrite an existing
// destination config.
func extractConfig(srcConfig, dstConfig string, warnings *[]string) bool {
	content, err := os.ReadFile(srcConfig)
	if err != nil {
		return false
	}

	var prefix string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if val, ok := strings.CutPrefix(line, "issue-prefix:"); ok {
			val = strings.Trim(strings.TrimSpace(val), `"'`)
			if val != "" {
				prefix = val
			}
		}
	}

	if _, err := os.Stat(dstConfig); err == nil {
		return false
	}

	var body string
	if prefix != "" {
		body = fmt.Sprintf("# Tracker configuration (migrated from .beads/config.yaml)\nissue-prefix: %q\n", prefix)
	} else {
		body = "# Tracker configuration (migrated from .beads/config.yaml)\n# issue-prefix not set in source\n"
	}

	if err := os.WriteFile(dstConfig, []byte(body), 0o644); err != nil {
		*warnings = append(*warnings, fmt.Sprintf("failed to write %s: %v", dstConfig, err))
		return false
	}
	return true
}
