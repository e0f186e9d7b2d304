package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opensrc/tracker/internal/tracker"
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields on an existing issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var p tracker.UpdateParams

		setString := func(flag string, dst *tracker.Opt[string]) {
			if !cmd.Flags().Changed(flag) {
				return
			}
			v, _ := cmd.Flags().GetString(flag)
			*dst = tracker.SetOpt(v)
		}
		// setNullableString handles fields where an explicitly-empty flag
		// value means "clear this field" (assignee, design, acceptance,
		// notes, parent): assignee and parent become NULL, while the
		// NOT NULL design/acceptance/notes columns are cleared to ''.
		setNullableString := func(flag string, dst *tracker.Opt[string]) {
			if !cmd.Flags().Changed(flag) {
				return
			}
			v, _ := cmd.Flags().GetString(flag)
			if v == "" {
				*dst = tracker.Null[string]()
				return
			}
			*dst = tracker.SetOpt(v)
		}
		setString("title", &p.Title)
		setString("body", &p.Body)
		setString("type", &p.Type)
		setString("status", &p.Status)
		setString("priority", &p.Priority)
		setNullableString("assignee", &p.Assignee)
		setNullableString("design", &p.Design)
		setNullableString("acceptance", &p.AcceptanceCriteria)
		setNullableString("notes", &p.Notes)
		setNullableString("parent", &p.Parent)

		if cmd.Flags().Changed("labels") {
			labels, _ := cmd.Flags().GetStringSlice("labels")
			p.Labels = labels
			p.ReplaceLabels = true
		}

		ctx := cmd.Context()
		e, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		issue, err := e.UpdateIssue(ctx, args[0], p)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(issue)
		}
		fmt.Printf("%s Updated %s\n", colorGreen("✓"), issue.ID)
		return nil
	},
}

func init() {
	updateCmd.Flags().String("title", "", "new title")
	updateCmd.Flags().String("body", "", "new body")
	updateCmd.Flags().String("type", "", "new issue type")
	updateCmd.Flags().String("status", "", "new status")
	updateCmd.Flags().String("priority", "", "new priority p0-p4")
	updateCmd.Flags().String("assignee", "", "new assignee")
	updateCmd.Flags().String("design", "", "new design notes")
	updateCmd.Flags().String("acceptance", "", "new acceptance criteria")
	updateCmd.Flags().String("notes", "", "new notes")
	updateCmd.Flags().String("parent", "", "new parent issue id")
	updateCmd.Flags().StringSlice("labels", nil, "replace the full label set")
}
