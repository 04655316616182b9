package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nao1215/forskolor/internal/report"
)

// defaultHistoryLimit is the number of runs listed by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived harvest runs",
		Long: `History lists the runs saved in the run archive, newest first.

Examples:
  # Show the latest runs
  forskolor history

  # Show every archived run
  forskolor history --limit 0`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs to list (0 lists all)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	dbDir, err := getDBDir(cmd)
	if err != nil {
		return err
	}

	archive, err := openExistingArchive(dbDir)
	if err != nil {
		return err
	}
	defer archive.Close()

	runs, err := archive.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if _, err := report.WriteHistory(out, runs); err != nil {
		return err
	}
	if len(runs) == 0 {
		writeNoRunsHint(out)
	}
	return nil
}

// writeNoRunsHint prints how to create the first archived run.
func writeNoRunsHint(w io.Writer) {
	fmt.Fprintln(w, "\nUse 'forskolor --archive' to harvest the directory and archive a run.")
}
