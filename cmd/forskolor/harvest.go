package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/forskolor/internal/config"
	"github.com/nao1215/forskolor/internal/database"
	"github.com/nao1215/forskolor/internal/log"
	"github.com/nao1215/forskolor/internal/model"
	"github.com/nao1215/forskolor/internal/pipeline"
	"github.com/nao1215/forskolor/internal/report"
)

// addHarvestFlags registers the flags of a harvest run on cmd.
func addHarvestFlags(cmd *cobra.Command) {
	// Output flags
	cmd.Flags().StringP("filename", "f", config.DefaultFilename,
		"CSV file to write (overwritten if it exists)")

	// Crawl behavior flags
	cmd.Flags().IntP("pages", "p", config.DefaultPageCount,
		"Number of listing pages to walk")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	cmd.Flags().Duration("max-duration", 0,
		"Abort the whole run after this long (0 disables the limit)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .forskolor in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Archive flags
	cmd.Flags().Bool("archive", false,
		"Save the run, including every harvested e-mail address, in the run archive")
}

// runHarvestCmd executes a harvest run.
func runHarvestCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)

	maxDuration, err := cmd.Flags().GetDuration("max-duration")
	if err != nil {
		return err
	}

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	if maxDuration > 0 {
		var cancelDeadline context.CancelFunc
		ctx, cancelDeadline = context.WithTimeout(ctx, maxDuration)
		defer cancelDeadline()
	}

	return runHarvest(ctx, cfg, logger, cmd.OutOrStdout())
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getDBDir retrieves the archive directory from the persistent flags.
func getDBDir(cmd *cobra.Command) (string, error) {
	dir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		dir, err = cmd.Root().PersistentFlags().GetString("db-dir")
		if err != nil {
			return "", err
		}
	}
	if dir == "" {
		return config.XDGDataDir(), nil
	}
	return dir, nil
}

// buildConfig creates a Config from the defaults, the configuration file and
// the command flags, in that order of precedence (flags win).
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly named config file must exist; a missing default one is fine.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(file)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	cfg.Filename, err = flags.GetString("filename")
	if err != nil {
		return nil, err
	}

	if flags.Changed("pages") {
		if cfg.PageCount, err = flags.GetInt("pages"); err != nil {
			return nil, err
		}
	}

	cfg.Timeout, err = flags.GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = flags.GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = flags.GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = flags.GetString("output")
	if err != nil {
		return nil, err
	}

	if flags.Changed("archive") {
		if cfg.SaveToDB, err = flags.GetBool("archive"); err != nil {
			return nil, err
		}
	}

	cfg.DBDir, err = getDBDir(cmd)
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// setupLogger creates the structured logger for a run.
// Progress is logged at Info; --verbose adds per-request Debug lines.
func setupLogger(w io.Writer, verbose bool) *slog.Logger {
	return log.NewSecureLogger(w, verbose)
}

// runHarvest executes one harvest run and prints its report.
func runHarvest(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	logger.Info("starting harvest",
		"root", cfg.RootURL,
		"pages", cfg.PageCount,
		"filename", cfg.Filename,
		"archive", cfg.SaveToDB,
	)

	// Keep the interface nil when archiving is disabled; a typed nil
	// *database.Archive would still add the archive step.
	var archiver pipeline.Archiver
	if cfg.SaveToDB {
		// The CSV does not depend on the archive, so an unusable data
		// directory only costs the archive step.
		archive, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			logger.Warn("run archive unavailable, continuing without it",
				"dir", cfg.DBDir,
				"error", err,
			)
		} else {
			defer archive.Close()
			logger.Debug("run archive opened", "path", archive.Path())
			archiver = archive
		}
	}

	p, err := pipeline.HarvestPipeline(cfg, archiver, logger)
	if err != nil {
		return err
	}
	logger.Debug("pipeline ready", "steps", p.StepNames())

	runReport := model.NewRunReport(cfg.RootURL)
	startTime := time.Now()

	if err := p.Execute(ctx, runReport); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("harvest timed out after %s: %w", time.Since(startTime).Round(time.Second), err)
		}
		return fmt.Errorf("harvest failed: %w", err)
	}

	fmt.Fprintf(out, "Wrote %d contacts from %d preschools to %s in %s\n\n",
		len(runReport.Rows), len(runReport.Preschools), runReport.CSVPath,
		time.Since(startTime).Round(time.Millisecond))

	return outputReport(cfg, runReport, out)
}

// outputReport writes the run report in the requested format, to the report
// file when one is configured and to out otherwise.
func outputReport(cfg *config.Config, runReport *model.RunReport, out io.Writer) error {
	output := out
	if cfg.ReportFile != "" {
		f, err := createReportFile(cfg.ReportFile)
		if err != nil {
			return err
		}
		defer f.Close()
		output = f
	}

	_, err := newReportWriter(output, cfg.JSONReport, cfg.MarkdownReport, cfg.Verbose).Write(runReport)
	return err
}

// createReportFile creates path and its parent directories.
func createReportFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // user-chosen report path
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// newReportWriter returns the report writer for the selected format.
// Text tables are the default.
func newReportWriter(output io.Writer, asJSON, asMarkdown, verbose bool) report.Writer {
	switch {
	case asJSON:
		return report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case asMarkdown:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output,
			report.WithVerbose(verbose),
			report.WithShowEmpty(verbose),
		)
	}
}
