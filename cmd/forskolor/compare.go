package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/forskolor/internal/database"
	"github.com/nao1215/forskolor/internal/model"
)

// errNotEnoughRuns is returned when the archive holds fewer than two runs.
var errNotEnoughRuns = errors.New("at least two archived runs are required to compare")

// NewCompareCmd creates the compare command.
// It diffs the contacts of two archived runs.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the contacts of two archived runs",
		Long: `Compare shows which contacts changed between two harvest runs.

By default the two most recent runs are compared. Each e-mail address is
reported as added, removed, or changed (different preschool, name or role).

Examples:
  # Compare the latest two runs
  forskolor compare

  # Compare the latest run with run 3
  forskolor compare --with-run-id 3

  # Output the comparison as Markdown
  forskolor compare --markdown`,
		Args: cobra.NoArgs,
		RunE: runCompareCmd,
	}

	cmd.Flags().Int64P("with-run-id", "i", 0,
		"Compare the latest run with this run (use 'forskolor history' to see IDs)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, _ []string) error {
	withRunID, err := cmd.Flags().GetInt64("with-run-id")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
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

	diff, err := compareRuns(cmd.Context(), archive, withRunID)
	if err != nil {
		return err
	}

	_, err = newReportWriter(cmd.OutOrStdout(), jsonOutput, markdownOutput, getVerboseFlag(cmd)).WriteDiff(diff)
	return err
}

// openExistingArchive opens the archive in dbDir without creating it.
func openExistingArchive(dbDir string) (*database.Archive, error) {
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false

	archive, err := database.Open(dbDir, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open run archive (run forskolor --archive at least once): %w", err)
	}
	return archive, nil
}

// compareRuns diffs the latest run against withRunID, or against the run
// before it when withRunID is zero.
func compareRuns(ctx context.Context, archive *database.Archive, withRunID int64) (*model.ContactDiff, error) {
	ids, err := archive.LatestRunIDs(ctx, 2)
	if err != nil {
		return nil, err
	}

	var oldID, newID int64
	switch {
	case withRunID != 0:
		if len(ids) == 0 {
			return nil, errNotEnoughRuns
		}
		newID = ids[0]
		oldID = withRunID
		if oldID == newID {
			return nil, fmt.Errorf("run %d is the latest run; choose an older run ID", withRunID)
		}
	case len(ids) < 2:
		return nil, errNotEnoughRuns
	default:
		newID, oldID = ids[0], ids[1]
	}

	oldRows, err := archive.GetRunContacts(ctx, oldID)
	if err != nil {
		return nil, err
	}
	newRows, err := archive.GetRunContacts(ctx, newID)
	if err != nil {
		return nil, err
	}

	diff := model.CompareContacts(oldRows, newRows)
	diff.OldRunID = oldID
	diff.NewRunID = newID
	return diff, nil
}
