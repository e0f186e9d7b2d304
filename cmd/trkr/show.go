package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show full details for an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		issue, err := e.Store().Get(ctx, args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(issue)
		}

		fmt.Printf("%s  %s\n", colorCyan(issue.ID), issue.Title)
		fmt.Printf("status=%s priority=%s type=%s assignee=%s\n", colorizeStatus(string(issue.Status)), colorizePriority(issue.Priority), issue.Type, issue.Assignee)
		if issue.Body != "" {
			fmt.Printf("\n%s\n", issue.Body)
		}
		if len(issue.Labels) > 0 {
			fmt.Printf("\nlabels: %v\n", issue.Labels)
		}
		if len(issue.BlockedBy) > 0 {
			fmt.Printf("blocked by: %v\n", issue.BlockedBy)
		}
		if len(issue.Blocks) > 0 {
			fmt.Printf("blocks: %v\n", issue.Blocks)
		}
		for _, c := range issue.Comments {
			fmt.Printf("\n-- %s (%s)\n%s\n", c.Author, c.CreatedAt.Format("2006-01-02 15:04"), c.Body)
		}
		return nil
	},
}
