package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var readyCmd = &cobra.Command{
	Use:   "ready",
	Short: "List open/in_progress issues with no unresolved blocker",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		issues, err := e.Store().Ready(ctx)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(issues)
		}
		for _, iss := range issues {
			fmt.Printf("%-14s %-4s %s\n", iss.ID, iss.Priority, iss.Title)
		}
		return nil
	},
}
