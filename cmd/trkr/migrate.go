package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate <legacy-dir>",
	Short: "One-shot migration from a legacy .beads/ directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		result, err := e.MigrateFromBeads(ctx, args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(result)
		}
		fmt.Printf("Imported %d, updated %d, skipped %d, errors %d\n",
			result.Issues.Inserted, result.Issues.Updated, result.Issues.Skipped, result.Issues.Errors)
		fmt.Printf("Attachments copied %d, skipped %d\n", result.AttachmentsCopied, result.AttachmentsSkipped)
		for _, w := range result.Warnings {
			fmt.Printf("warning: %s\n", w)
		}
		return nil
	},
}
