// Package structurer implements the structurer stage (C4): rendering a
// SummaryTable as a clinical note, asking the LLM collaborator to distill it
// into a StructuredRecord, and persisting the result as the idempotence
// marker C6 consults for this stage.
package structurer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brightwellhealth/clinicscribe/internal/clients/llm"
	"github.com/brightwellhealth/clinicscribe/internal/domain"
	"github.com/brightwellhealth/clinicscribe/internal/ingestion/artifact"
	"github.com/brightwellhealth/clinicscribe/internal/platform/clinicerr"
	"github.com/brightwellhealth/clinicscribe/internal/platform/logger"
)

const systemPrompt = `You distill a clinical note made of extracted medical facts into a single structured record.
Deduplicate repeated facts. Correct obvious medical spelling. Normalize units. On conflict, prefer the most
specific and internally consistent value. Emit exactly the four requested fields. No extra fields, no commentary.`

var recordSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"patient":    map[string]any{"type": "string"},
		"diagnosis":  map[string]any{"type": "string"},
		"treatment":  map[string]any{"type": "string"},
		"follow_up":  map[string]any{"type": "string"},
	},
	"required":             []string{"patient", "diagnosis", "treatment", "follow_up"},
	"additionalProperties": false,
}

// RenderNote concatenates one line per row in table order (spec §4.5).
func RenderNote(table domain.SummaryTable) string {
	var b strings.Builder
	for _, row := range table {
		fmt.Fprintf(&b, "%s (%s): %s", row.Category, row.Type, row.Text)
		if row.Attributes != nil {
			fmt.Fprintf(&b, " | %s", *row.Attributes)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Structure asks the LLM collaborator for a StructuredRecord distilled from
// table. A schema violation is wrapped with clinicerr.Schema and the caller
// is expected to log-and-skip per spec §4.5.
func Structure(ctx context.Context, client llm.Client, id domain.DocumentId, table domain.SummaryTable) (domain.StructuredRecord, error) {
	note := RenderNote(table)
	obj, err := client.GenerateJSON(ctx, systemPrompt, note, "structured_record", recordSchema)
	if err != nil {
		return domain.StructuredRecord{}, clinicerr.PerItem(id, err)
	}

	rec := domain.StructuredRecord{
		Patient:   stringField(obj, "patient"),
		Diagnosis: stringField(obj, "diagnosis"),
		Treatment: stringField(obj, "treatment"),
		FollowUp:  stringField(obj, "follow_up"),
	}
	if !rec.Valid() {
		return domain.StructuredRecord{}, clinicerr.Schema(id, fmt.Errorf("missing or empty required field in %+v", obj))
	}
	return rec, nil
}

func stringField(obj map[string]any, key string) string {
	v, ok := obj[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// RecordPath returns the fixed per-document structured record path (spec
// §6): data/structured_json/<DocumentId_stem>.json. The stem drops the
// source extension.
func RecordPath(dir string, id domain.DocumentId) string {
	stem := strings.TrimSuffix(id, filepath.Ext(id))
	return filepath.Join(dir, stem+".json")
}

// Persist writes rec to path; its presence is the idempotence marker C6
// consults for this stage (spec §4.5).
func Persist(path string, rec domain.StructuredRecord) error {
	return artifact.PersistOne(path, rec)
}

// ExistingRecords enumerates the DocumentId stems that already have a
// structured record file in dir, forming C4's downstream key set D.
func ExistingRecords(dir string) (map[string]struct{}, error) {
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
		if strings.HasSuffix(e.Name(), ".json") {
			out[strings.TrimSuffix(e.Name(), ".json")] = struct{}{}
		}
	}
	return out, nil
}
