package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/forskolor/internal/model"
)

// DBFileName is the archive file name inside the database directory.
const DBFileName = "forskolor.db"

// ErrRunNotFound is returned when a run ID does not exist in the archive.
var ErrRunNotFound = errors.New("run not found")

// Archive provides SQLite-based storage for finished harvest runs.
// Each run stores its summary and the exact rows written to the CSV file,
// so later runs can be compared against it.
type Archive struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Archive behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an Archive in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*Archive, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("archive not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check archive path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	a := &Archive{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := a.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return a, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Path returns the path of the database file.
func (a *Archive) Path() string {
	return a.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (a *Archive) createTables() error {
	schema := `
	-- One row per finished harvest run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		root_url TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		csv_path TEXT,
		csv_digest TEXT,
		pages_fetched INTEGER DEFAULT 0,
		units_seen INTEGER DEFAULT 0,
		units_scraped INTEGER DEFAULT 0,
		units_failed INTEGER DEFAULT 0,
		row_count INTEGER DEFAULT 0,
		summary_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Deduplicated rows of each run, in file order
	CREATE TABLE IF NOT EXISTS contacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		email TEXT NOT NULL,
		preschool TEXT NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT '',
		region TEXT NOT NULL DEFAULT '',
		link TEXT NOT NULL DEFAULT '',
		UNIQUE(run_id, email)
	);

	CREATE INDEX IF NOT EXISTS idx_contacts_run ON contacts(run_id);
	CREATE INDEX IF NOT EXISTS idx_contacts_email ON contacts(email);
	`

	_, err := a.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is the archived metadata of one run.
type RunRecord struct {
	ID           int64
	RootURL      string
	StartedAt    time.Time
	FinishedAt   time.Time
	CSVPath      string
	CSVDigest    string
	PagesFetched int
	UnitsSeen    int
	UnitsScraped int
	UnitsFailed  int
	RowCount     int

	// Summary is the run summary as archived. Nil if it could not be decoded.
	Summary *model.RunSummary
}

// SaveRun stores report and its rows in a single transaction and returns
// the new run ID.
func (a *Archive) SaveRun(ctx context.Context, report *model.RunReport) (int64, error) {
	summaryJSON, err := json.Marshal(model.NewRunSummary(report))
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op after Commit
	}()

	finished := report.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}

	res, err := tx.ExecContext(ctx, `
	INSERT INTO runs (root_url, started_at, finished_at, csv_path, csv_digest,
		pages_fetched, units_seen, units_scraped, units_failed, row_count, summary_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.RootURL,
		formatTimestamp(report.StartedAt),
		formatTimestamp(finished),
		report.CSVPath,
		report.CSVDigest,
		report.PagesFetched,
		report.UnitsSeen,
		len(report.Preschools),
		len(report.FailedUnits),
		len(report.Rows),
		string(summaryJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO contacts (run_id, position, email, preschool, name, role, region, link)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare contact insert: %w", err)
	}
	defer stmt.Close()

	for i, row := range report.Rows {
		if _, err := stmt.ExecContext(ctx, runID, i, row.Email, row.Preschool, row.Name, row.Role, row.Region, row.Link); err != nil {
			return 0, fmt.Errorf("failed to insert contact %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	return runID, nil
}

// runColumns is the column list scanned by scanRun.
const runColumns = `id, root_url, started_at, finished_at, csv_path, csv_digest,
	pages_fetched, units_seen, units_scraped, units_failed, row_count, summary_json`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (*RunRecord, error) {
	var (
		rec                RunRecord
		started, finished  string
		csvPath, csvDigest sql.NullString
		summaryJSON        sql.NullString
	)
	if err := s.Scan(&rec.ID, &rec.RootURL, &started, &finished, &csvPath, &csvDigest,
		&rec.PagesFetched, &rec.UnitsSeen, &rec.UnitsScraped, &rec.UnitsFailed, &rec.RowCount, &summaryJSON); err != nil {
		return nil, err
	}

	rec.StartedAt = parseTimestamp(started)
	rec.FinishedAt = parseTimestamp(finished)
	rec.CSVPath = csvPath.String
	rec.CSVDigest = csvDigest.String

	if summaryJSON.Valid && summaryJSON.String != "" {
		var summary model.RunSummary
		if err := json.Unmarshal([]byte(summaryJSON.String), &summary); err == nil {
			summary.RunID = rec.ID
			rec.Summary = &summary
		}
	}

	return &rec, nil
}

// ListRuns returns archived runs, newest first.
// A limit of zero or less returns every run.
func (a *Archive) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		results = append(results, *rec)
	}

	return results, rows.Err()
}

// GetRun returns the run with the given ID.
func (a *Archive) GetRun(ctx context.Context, id int64) (*RunRecord, error) {
	row := a.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return rec, nil
}

// GetRunContacts returns the rows of a run in file order.
func (a *Archive) GetRunContacts(ctx context.Context, runID int64) ([]model.CsvRow, error) {
	if _, err := a.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := a.db.QueryContext(ctx, `
	SELECT email, preschool, name, role, region, link
	FROM contacts
	WHERE run_id = ?
	ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contacts: %w", err)
	}
	defer rows.Close()

	results := make([]model.CsvRow, 0)
	for rows.Next() {
		var r model.CsvRow
		if err := rows.Scan(&r.Email, &r.Preschool, &r.Name, &r.Role, &r.Region, &r.Link); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// LatestRunIDs returns up to n run IDs, newest first.
func (a *Archive) LatestRunIDs(ctx context.Context, n int) ([]int64, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT id FROM runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to list run IDs: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run ID: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // what formatTimestamp writes
	time.RFC3339,              // Full RFC3339 format
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// formatTimestamp renders t for storage.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
