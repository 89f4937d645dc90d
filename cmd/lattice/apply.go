package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latticelabs/lattice/pkg/diff"
)

// applyCmd patches a scene file with a SEARCH/REPLACE diff, without any
// model involvement. Useful for replaying or debugging diffs.
var applyCmd = &cobra.Command{
	Use:   "apply <scene-file> <diff-file>",
	Short: "Apply a SEARCH/REPLACE diff to a scene file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		scene, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read scene: %w", err)
		}
		diffText, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read diff: %w", err)
		}

		patched, err := diff.Apply(string(scene), string(diffText))
		if err != nil {
			return err
		}

		write, _ := cmd.Flags().GetBool("write")
		if write {
			if err := os.WriteFile(args[0], []byte(patched), 0o644); err != nil {
				return fmt.Errorf("failed to write scene: %w", err)
			}
		} else {
			fmt.Fprint(cmd.OutOrStdout(), patched)
		}

		summary := diff.Summarize(string(scene), patched)
		fmt.Fprintf(cmd.ErrOrStderr(), "applied: +%d -%d lines\n", summary.Added, summary.Removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().BoolP("write", "w", false, "Write the patched scene back to the scene file")
}
