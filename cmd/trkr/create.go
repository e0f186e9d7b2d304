package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opensrc/tracker/internal/tracker"
)

var createCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, _ := cmd.Flags().GetString("body")
		issueType, _ := cmd.Flags().GetString("type")
		status, _ := cmd.Flags().GetString("status")
		priority, _ := cmd.Flags().GetString("priority")
		assignee, _ := cmd.Flags().GetString("assignee")
		design, _ := cmd.Flags().GetString("design")
		acceptance, _ := cmd.Flags().GetString("acceptance")
		notes, _ := cmd.Flags().GetString("notes")
		parent, _ := cmd.Flags().GetString("parent")
		labels, _ := cmd.Flags().GetStringSlice("labels")

		ctx := cmd.Context()
		e, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		params := tracker.CreateParams{
			Title:              args[0],
			Body:               body,
			Type:               issueType,
			Status:             status,
			Priority:           priority,
			Assignee:           assignee,
			Author:             actorOrDefault(e),
			Labels:             labels,
			Design:             design,
			AcceptanceCriteria: acceptance,
			Notes:              notes,
		}
		if parent != "" {
			params.Parent = &parent
		}

		issue, err := e.CreateIssue(ctx, params)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(issue)
		}
		fmt.Printf("%s Created %s: %s\n", colorGreen("✓"), colorCyan(issue.ID), issue.Title)
		return nil
	},
}

func init() {
	createCmd.Flags().String("body", "", "issue body")
	createCmd.Flags().String("type", "", "issue type (default task)")
	createCmd.Flags().String("status", "", "initial status (default open)")
	createCmd.Flags().String("priority", "", "priority p0-p4 (default p2)")
	createCmd.Flags().String("assignee", "", "assignee")
	createCmd.Flags().String("design", "", "design notes")
	createCmd.Flags().String("acceptance", "", "acceptance criteria")
	createCmd.Flags().String("notes", "", "free-form notes")
	createCmd.Flags().String("parent", "", "parent issue id")
	createCmd.Flags().StringSlice("labels", nil, "comma-separated labels")
}
