package main

import (
	"github.com/spf13/cobra"

	"github.com/opensrc/tracker/internal/tracker/engine"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new tracker in the project directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := engine.Init(ctx, projectDir, nil)
		if err != nil {
			return err
		}
		defer e.Close()

		if jsonOutput {
			return printJSON(map[string]string{
				"tracker_dir":  e.Config().FolderName,
				"issue_prefix": e.Config().IssuePrefix,
			})
		}
		cmd.Printf("Initialized tracker in %s/%s\n", projectDir, e.Config().FolderName)
		return nil
	},
}
