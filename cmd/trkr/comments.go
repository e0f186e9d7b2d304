package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Manage comments on an issue",
}

var commentsAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add a comment to an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, _ := cmd.Flags().GetString("body")
		if body == "" {
			return fmt.Errorf("--body is required")
		}

		ctx := cmd.Context()
		e, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		c, err := e.AddComment(ctx, args[0], actorOrDefault(e), body)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(c)
		}
		fmt.Printf("%s Added comment %s to %s\n", colorGreen("✓"), c.ID, args[0])
		return nil
	},
}

var commentsDeleteCmd = &cobra.Command{
	Use:   "delete <comment-id>",
	Short: "Delete a comment by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEngine(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.DeleteComment(ctx, args[0]); err != nil {
			return err
		}

		if jsonOutput {
			return printOK()
		}
		fmt.Printf("%s Deleted comment %s\n", colorGreen("✓"), args[0])
		return nil
	},
}

func init() {
	commentsAddCmd.Flags().String("body", "", "comment text")
	commentsCmd.AddCommand(commentsAddCmd, commentsDeleteCmd)
}
