package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/forskolor/internal/config"
)

// NewRootCmd creates the root command for forskolor.
// Running it without a subcommand performs a harvest.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forskolor",
		Short: "Harvest preschool contact e-mails from the Stockholm directory",
		Long: `forskolor walks the listing pages of the Stockholm municipal preschool
directory, visits every preschool's page, and writes the contact e-mail
addresses it finds to a CSV file with the columns Email, Förskola, Namn, Roll.

Each e-mail address appears once. When the same address is listed by several
preschools, the first preschool in listing order wins.

Examples:
  # Harvest into forskolor.csv in the current directory
  forskolor

  # Harvest into a custom file and print a Markdown report
  forskolor --filename contacts.csv --markdown

  # Try a short run against the first two listing pages
  forskolor --pages 2

  # Keep the run in the archive for "forskolor compare" and "forskolor history"
  forskolor --archive

The run archive is off by default. With --archive, every harvested e-mail
address is stored in a SQLite file under --db-dir until you delete it.`,
		Version:       getVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runHarvestCmd,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("db-dir", config.XDGDataDir(),
		"Directory holding the run archive")

	addHarvestFlags(cmd)

	// Add subcommands
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
