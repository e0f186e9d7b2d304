package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watchDebounce absorbs the burst of WRITE events a single `git checkout`
// or editor save produces, so one filesystem change triggers one import.
const watchDebounce = 300 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch issues.jsonl for external changes and import them automatically",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		jsonlPath := e.JSONLPath()
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		defer watcher.Close()

		// Watch the parent directory rather than the file itself: a sync
		// pull or git checkout typically replaces issues.jsonl wholesale,
		// which some platforms report as a remove-then-create rather than
		// a write to the original inode.
		if err := watcher.Add(filepath.Dir(jsonlPath)); err != nil {
			return fmt.Errorf("watch: %w", err)
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		fmt.Printf("Watching %s for changes (Ctrl+C to stop)\n", jsonlPath)

		var timer *time.Timer
		importNow := func() {
			result, err := e.Store().Import(ctx, jsonlPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s import failed: %v\n", colorRed("✗"), err)
				return
			}
			if result.Inserted == 0 && result.Updated == 0 && result.Skipped == 0 && result.Errors == 0 {
				return
			}
			fmt.Printf("%s imported %s: inserted=%d updated=%d skipped=%d errors=%d\n",
				colorGreen("✓"), jsonlPath, result.Inserted, result.Updated, result.Skipped, result.Errors)
		}

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(event.Name) != filepath.Clean(jsonlPath) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(watchDebounce, importNow)

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fmt.Fprintf(os.Stderr, "%s watcher error: %v\n", colorRed("✗"), err)

			case <-sigCh:
				if timer != nil {
					timer.Stop()
				}
				fmt.Println("Stopping watch")
				return nil

			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				return ctx.Err()
			}
		}
	},
}
