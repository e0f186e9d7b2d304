package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var closeCmd = &cobra.Command{
	Use:   "close <id>",
	Short: "Close an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		issue, err := e.CloseIssue(ctx, args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(issue)
		}
		fmt.Printf("%s Closed %s\n", colorGreen("✓"), issue.ID)
		return nil
	},
}
