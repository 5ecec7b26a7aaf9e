// Package summarizer implements the summarizer stage (C3): flattening an
// EntityResponse into a per-document SummaryTable and persisting it as CSV.
package summarizer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/brightwellhealth/clinicscribe/internal/domain"
)

var csvHeader = []string{"Text", "Category", "Type", "Score", "Attributes"}

// BuildTable emits one row per entity in source order (spec §4.4).
func BuildTable(resp domain.EntityResponse) domain.SummaryTable {
	rows := make(domain.SummaryTable, 0, len(resp.Entities))
	for _, e := range resp.Entities {
		rows = append(rows, domain.SummaryRow{
			Text:       e.Text,
			Category:   e.Category,
			Type:       e.Type,
			Score:      e.Score,
			Attributes: Flatten(e.Attributes),
		})
	}
	return rows
}

// SummaryPath returns the fixed per-document summary file path (spec §6):
// data/processed_medical_data/<DocumentId>_summary.csv.
func SummaryPath(dir string, id domain.DocumentId) string {
	return filepath.Join(dir, id+"_summary.csv")
}

// Persist writes table to path in the fixed Text,Category,Type,Score,
// Attributes column order.
func Persist(path string, table domain.SummaryTable) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("summarizer: mkdir for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("summarizer: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range table {
		attrs := ""
		if row.Attributes != nil {
			attrs = *row.Attributes
		}
		record := []string{
			row.Text,
			row.Category,
			row.Type,
			strconv.FormatFloat(row.Score, 'f', -1, 64),
			attrs,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ExistingSummaries enumerates the DocumentIds that already have a
// <DocumentId>_summary.csv file in dir, forming C3's downstream key set D
// for the work-set diff.
func ExistingSummaries(dir string) (map[string]struct{}, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]struct{}{}, nil
		}
		return nil, err
	}
	out := map[string]struct{}{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		const suffix = "_summary.csv"
		if strings.HasSuffix(e.Name(), suffix) {
			out[strings.TrimSuffix(e.Name(), suffix)] = struct{}{}
		}
	}
	return out, nil
}
