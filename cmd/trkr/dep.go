package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opensrc/tracker/internal/tracker"
)

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Manage dependency edges between issues",
}

var depAddCmd = &cobra.Command{
	Use:   "add <from-id> <to-id>",
	Short: "Add a dependency edge (default type: blocks)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		depType, _ := cmd.Flags().GetString("type")
		if depType == "" {
			depType = string(tracker.DepBlocks)
		}

		ctx := cmd.Context()
		e, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.AddDependency(ctx, args[0], args[1], depType); err != nil {
			return err
		}
		if jsonOutput {
			return printOK()
		}
		fmt.Printf("%s --%s--> %s\n", args[0], depType, args[1])
		return nil
	},
}

var depRemoveCmd = &cobra.Command{
	Use:   "remove <from-id> <to-id>",
	Short: "Remove a dependency edge",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.RemoveDependency(ctx, args[0], args[1]); err != nil {
			return err
		}
		if jsonOutput {
			return printOK()
		}
		fmt.Printf("Removed dependency %s -> %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	depAddCmd.Flags().String("type", "", "dependency type (default blocks)")
	depCmd.AddCommand(depAddCmd, depRemoveCmd)
}
