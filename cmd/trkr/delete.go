package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an issue (soft tombstone by default)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hard, _ := cmd.Flags().GetBool("hard")

		ctx := cmd.Context()
		e, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.DeleteIssue(ctx, args[0], hard); err != nil {
			return err
		}

		if jsonOutput {
			return printOK()
		}
		fmt.Printf("%s Deleted %s\n", colorGreen("✓"), args[0])
		return nil
	},
}

func init() {
	deleteCmd.Flags().Bool("hard", false, "permanently remove the row instead of tombstoning it")
}
