// Command ingest runs the offline ingestion pipeline (C1-C6) to completion
// against the configured working directory, then exits.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/brightwellhealth/clinicscribe/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ingest: failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	report, err := a.Ingest(context.Background())
	if err != nil {
		a.Log.Error("ingest: pipeline failed", "error", err.Error())
		os.Exit(1)
	}

	if report.NothingToDo {
		a.Log.Info("ingest: nothing to do")
		return
	}
	a.Log.Info("ingest: complete",
		"ocr_processed", len(report.OCRProcessed),
		"entity_processed", len(report.EntityProcessed),
		"summary_processed", len(report.SummaryProcessed),
		"structured_processed", len(report.StructuredProcessed),
		"indexed_docs", report.IndexedDocCount,
	)
}
