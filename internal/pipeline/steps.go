package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/forskolor/internal/config"
	"github.com/nao1215/forskolor/internal/export"
	"github.com/nao1215/forskolor/internal/httpclient"
	"github.com/nao1215/forskolor/internal/model"
	"github.com/nao1215/forskolor/internal/scrape"
)

// Scraper is what CrawlStep needs from scrape.Scraper.
type Scraper interface {
	FetchListing(ctx context.Context, page int) ([]model.ServiceUnit, error)
	ScrapeUnit(ctx context.Context, unit model.ServiceUnit) (*model.Preschool, error)
}

// Archiver stores a finished run and returns its ID.
// *database.Archive satisfies it.
type Archiver interface {
	SaveRun(ctx context.Context, report *model.RunReport) (int64, error)
}

// CrawlStep walks the listing pages 1..pageCount and scrapes every unit.
//
// The walk always covers every page: an empty page does not end it. A
// listing failure aborts the step. A unit failure is logged with the unit's
// name, recorded in the report, and the walk continues.
type CrawlStep struct {
	scraper   Scraper
	pageCount int
	logger    *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates a crawl step over pageCount listing pages.
func NewCrawlStep(scraper Scraper, pageCount int, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		scraper:   scraper,
		pageCount: pageCount,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl step.
func (s *CrawlStep) Do(ctx context.Context, report *model.RunReport) error {
	for page := 1; page <= s.pageCount; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		units, err := s.scraper.FetchListing(ctx, page)
		if err != nil {
			return err
		}

		report.PagesFetched++
		report.UnitsSeen += len(units)
		if len(units) == 0 {
			report.EmptyPages++
			continue
		}

		for _, unit := range units {
			p, err := s.scraper.ScrapeUnit(ctx, unit)
			if err != nil {
				// an interrupt is not the unit's fault
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.logger.Warn("failed to scrape preschool",
					"name", unit.Name,
					"error", err,
				)
				report.AddFailedUnit(unit.Name, unit.SelfLink, err)
				continue
			}
			report.AddPreschool(*p)
		}
	}

	s.logger.Info("crawl finished",
		"pages", report.PagesFetched,
		"units", report.UnitsSeen,
		"scraped", len(report.Preschools),
		"failed", len(report.FailedUnits),
	)
	return nil
}

// ExportStep deduplicates the scraped contacts and writes the CSV file.
type ExportStep struct {
	filename string
	logger   *slog.Logger
}

// NewExportStep creates an export step writing to filename.
func NewExportStep(filename string, logger *slog.Logger) *ExportStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportStep{filename: filename, logger: logger}
}

// Name returns the step name.
func (s *ExportStep) Name() string {
	return "export"
}

// Do executes the export step.
func (s *ExportStep) Do(_ context.Context, report *model.RunReport) error {
	res, err := export.WriteFile(s.filename, report.Preschools)
	if err != nil {
		return err
	}

	report.Rows = res.Rows
	report.CSVPath = s.filename
	report.CSVDigest = res.Digest

	s.logger.Info("wrote csv",
		"file", s.filename,
		"rows", len(res.Rows),
		"bytes", res.Size,
	)
	return nil
}

// ArchiveStep saves the finished run to the archive.
// A failure here is logged and does not fail the run: the CSV file has
// already been written.
type ArchiveStep struct {
	archive Archiver
	logger  *slog.Logger
}

// NewArchiveStep creates an archive step.
func NewArchiveStep(archive Archiver, logger *slog.Logger) *ArchiveStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArchiveStep{archive: archive, logger: logger}
}

// Name returns the step name.
func (s *ArchiveStep) Name() string {
	return "archive"
}

// Do executes the archive step.
func (s *ArchiveStep) Do(ctx context.Context, report *model.RunReport) error {
	report.FinishedAt = time.Now()

	id, err := s.archive.SaveRun(ctx, report)
	if err != nil {
		s.logger.Warn("failed to archive run", "error", err)
		return nil
	}
	report.RunID = id

	s.logger.Debug("archived run", "run_id", id)
	return nil
}

// HarvestPipeline builds the standard pipeline for cfg: crawl, export and,
// when archive is non-nil, archive.
func HarvestPipeline(cfg *config.Config, archive Archiver, logger *slog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := httpclient.NewClient(httpclient.Options{
		UserAgent:   cfg.UserAgent,
		Cookie:      cfg.Cookie,
		Headers:     cfg.Headers,
		Timeout:     cfg.Timeout,
		MaxBodySize: cfg.MaxBodySize,
		Logger:      logger,
	})
	scraper := scrape.NewScraper(cfg, client, scrape.WithLogger(logger))

	p := New(WithLogger(logger))
	p.AddSteps(
		NewCrawlStep(scraper, cfg.PageCount, WithCrawlLogger(logger)),
		NewExportStep(cfg.Filename, logger),
	)
	if archive != nil {
		p.AddStep(NewArchiveStep(archive, logger))
	}

	return p, nil
}
