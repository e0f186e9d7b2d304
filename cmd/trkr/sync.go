package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Export, commit, pull --rebase, import, and push via git",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		result, err := e.Sync(ctx)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(result)
		}
		if result.Conflict {
			fmt.Println("Sync stopped: conflict detected on pull --rebase. Run `trkr conflict list`.")
			return nil
		}
		fmt.Printf("exported=%v committed=%v pulled=%v pushed=%v\n",
			result.Exported, result.Committed, result.Pulled, result.Pushed)
		return nil
	},
}
