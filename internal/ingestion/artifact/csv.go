package artifact

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/brightwellhealth/clinicscribe/internal/domain"
)

// LoadCSV reads a SummaryTable back from the fixed Text,Category,Type,
// Score,Attributes column order a summary file was persisted in.
func LoadCSV(path string) (domain.SummaryTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("artifact: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("artifact: read csv %s: %w", path, err)
	}
	if len(records) == 0 {
		return domain.SummaryTable{}, nil
	}

	table := make(domain.SummaryTable, 0, len(records)-1)
	for _, rec := range records[1:] { // skip header
		if len(rec) < 5 {
			continue
		}
		score, _ := strconv.ParseFloat(rec[3], 64)
		row := domain.SummaryRow{Text: rec[0], Category: rec[1], Type: rec[2], Score: score}
		if rec[4] != "" {
			attrs := rec[4]
			row.Attributes = &attrs
		}
		table = append(table, row)
	}
	return table, nil
}
