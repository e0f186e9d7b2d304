// Command trkr is the CLI front end for the embedded tracker engine.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/opensrc/tracker/internal/tracker/engine"
	"github.com/opensrc/tracker/internal/tracker/trackercfg"
	"github.com/opensrc/tracker/internal/tracker/trklog"
)

var (
	projectDir string
	jsonOutput bool
	actorFlag  string
)

var rootCmd = &cobra.Command{
	Use:           "trkr",
	Short:         "Embedded, git-syncable issue tracker",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "C", ".", "project directory")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit JSON output")
	rootCmd.PersistentFlags().StringVar(&actorFlag, "actor", "", "override the actor recorded on writes")

	rootCmd.AddCommand(
		initCmd,
		listCmd,
		showCmd,
		createCmd,
		updateCmd,
		closeCmd,
		deleteCmd,
		searchCmd,
		readyCmd,
		commentsCmd,
		labelCmd,
		depCmd,
		syncCmd,
		migrateCmd,
		conflictCmd,
		watchCmd,
	)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openEngine opens (but does not initialize) the tracker at projectDir,
// logging to .tracker/tracker.log and applying the TRACKER_ACTOR
// environment override when --actor was not passed.
func openEngine(ctx context.Context) (*engine.Engine, error) {
	settings := trackercfg.NewCLISettings()
	log, _ := trklog.New(trklog.Options{Dir: filepath.Join(projectDir, trackercfg.DefaultFolderName)})

	e, err := engine.Open(ctx, projectDir, log)
	if err != nil {
		return nil, err
	}
	if actorFlag == "" && settings.Actor() != "" {
		actorFlag = settings.Actor()
	}
	return e, nil
}

func actorOrDefault(e *engine.Engine) string {
	if actorFlag != "" {
		return actorFlag
	}
	return e.Config().Actor
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printOK() error {
	return printJSON(map[string]bool{"ok": true})
}
