package export

import (
	"bytes"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/forskolor/internal/model"
)

// Header is the CSV header row.
var Header = []string{"Email", "Förskola", "Namn", "Roll"}

// filePerm is the permission used for new CSV files.
const filePerm = 0o644

// Dedupe flattens preschools into rows keyed by e-mail.
// The first row seen for an address is kept; rows keep first-encounter order.
func Dedupe(preschools []model.Preschool) []model.CsvRow {
	seen := make(map[string]struct{})
	rows := make([]model.CsvRow, 0)

	for _, p := range preschools {
		for _, e := range p.Emails {
			if _, ok := seen[e.Email]; ok {
				continue
			}
			seen[e.Email] = struct{}{}
			rows = append(rows, model.CsvRow{
				Email:     e.Email,
				Preschool: p.Name,
				Name:      e.Name,
				Role:      e.Role,
				Region:    p.Region,
				Link:      p.Link,
			})
		}
	}

	return rows
}

// WriteCSV writes the header and rows to w.
func WriteCSV(w io.Writer, rows []model.CsvRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.Record()); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// Result describes a written file.
type Result struct {
	// Rows are the deduplicated rows in file order.
	Rows []model.CsvRow

	// Digest is the hex SHA3-256 digest of the file contents.
	Digest string

	// Size is the file size in bytes.
	Size int
}

// WriteFile deduplicates preschools and writes them to filename,
// replacing any existing file.
func WriteFile(filename string, preschools []model.Preschool) (*Result, error) {
	rows := Dedupe(preschools)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		return nil, err
	}

	if err := os.WriteFile(filename, buf.Bytes(), filePerm); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", filename, err)
	}

	return &Result{
		Rows:   rows,
		Digest: Digest(buf.Bytes()),
		Size:   buf.Len(),
	}, nil
}

// Digest returns the hex SHA3-256 digest of data.
func Digest(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
