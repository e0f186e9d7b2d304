package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over titles, bodies, and notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		ctx := cmd.Context()
		e, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		results, err := e.Store().Search(ctx, args[0], limit)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(results)
		}
		for _, r := range results {
			fmt.Printf("%-14s %-6.2f %s\n  %s\n", r.IssueID, -r.Rank, r.Title, r.Snippet)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().Int("limit", 50, "maximum number of results")
}
