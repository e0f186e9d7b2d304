package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opensrc/tracker/internal/tracker"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		issueType, _ := cmd.Flags().GetString("type")
		priority, _ := cmd.Flags().GetString("priority")
		assignee, _ := cmd.Flags().GetString("assignee")
		all, _ := cmd.Flags().GetBool("all")
		limit, _ := cmd.Flags().GetInt("limit")
		if all {
			status = "all"
		}

		ctx := cmd.Context()
		e, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		issues, err := e.Store().List(ctx, tracker.ListFilter{Status: status})
		if err != nil {
			return err
		}

		issues = filterIssues(issues, issueType, priority, assignee)
		if limit > 0 && len(issues) > limit {
			issues = issues[:limit]
		}

		if jsonOutput {
			return printJSON(issues)
		}
		for _, iss := range issues {
			fmt.Printf("%-14s %-19s %-13s %s\n", colorCyan(iss.ID), colorizeStatus(string(iss.Status)), colorizePriority(iss.Priority), iss.Title)
		}
		return nil
	},
}

func filterIssues(issues []*tracker.Issue, issueType, priority, assignee string) []*tracker.Issue {
	if issueType == "" && priority == "" && assignee == "" {
		return issues
	}
	out := issues[:0]
	for _, iss := range issues {
		if issueType != "" && iss.Type != issueType {
			continue
		}
		if priority != "" && iss.Priority != priority {
			continue
		}
		if assignee != "" && iss.Assignee != assignee {
			continue
		}
		out = append(out, iss)
	}
	return out
}

func init() {
	listCmd.Flags().String("status", "", "filter by status (open, in_progress, closed, tombstone, all)")
	listCmd.Flags().String("type", "", "filter by issue type")
	listCmd.Flags().String("priority", "", "filter by priority (p0-p4)")
	listCmd.Flags().String("assignee", "", "filter by assignee")
	listCmd.Flags().Bool("all", false, "include every status")
	listCmd.Flags().Int("limit", 0, "limit the number of results (0 = no limit)")
}
