package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Manage labels on an issue",
}

var labelAddCmd = &cobra.Command{
	Use:   "add <id> <label>",
	Short: "Attach a label to an issue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.AddLabel(ctx, args[0], args[1]); err != nil {
			return err
		}
		if jsonOutput {
			return printOK()
		}
		fmt.Printf("Added label %q to %s\n", args[1], args[0])
		return nil
	},
}

var labelRemoveCmd = &cobra.Command{
	Use:   "remove <id> <label>",
	Short: "Detach a label from an issue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.RemoveLabel(ctx, args[0], args[1]); err != nil {
			return err
		}
		if jsonOutput {
			return printOK()
		}
		fmt.Printf("Removed label %q from %s\n", args[1], args[0])
		return nil
	},
}

func init() {
	labelCmd.AddCommand(labelAddCmd, labelRemoveCmd)
}
