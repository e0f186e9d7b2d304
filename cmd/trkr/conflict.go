package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var conflictCmd = &cobra.Command{
	Use:   "conflict",
	Short: "Inspect and resolve pending sync conflicts",
}

var conflictListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending conflicts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		conflicts, err := e.ListConflicts(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(conflicts)
		}
		for _, c := range conflicts {
			fmt.Printf("#%d  %s  detected %s\n", c.ID, c.IssueID, c.DetectedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var conflictResolveCmd = &cobra.Command{
	Use:   "resolve <conflict-id> <local|remote>",
	Short: "Resolve a conflict by keeping the local or remote version",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid conflict id %q", args[0])
		}
		if args[1] != "local" && args[1] != "remote" {
			return fmt.Errorf("resolution must be \"local\" or \"remote\", got %q", args[1])
		}

		ctx := cmd.Context()
		e, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.ResolveConflict(ctx, id, args[1]); err != nil {
			return err
		}
		if jsonOutput {
			return printOK()
		}
		fmt.Printf("Resolved conflict #%d (%s)\n", id, args[1])
		return nil
	},
}

var conflictDismissCmd = &cobra.Command{
	Use:   "dismiss <conflict-id>",
	Short: "Discard a conflict record, keeping the local row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid conflict id %q", args[0])
		}

		ctx := cmd.Context()
		e, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.DismissConflict(ctx, id); err != nil {
			return err
		}
		if jsonOutput {
			return printOK()
		}
		fmt.Printf("Dismissed conflict #%d\n", id)
		return nil
	},
}

func init() {
	conflictCmd.AddCommand(conflictListCmd, conflictResolveCmd, conflictDismissCmd)
}
