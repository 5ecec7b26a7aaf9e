// Package entitystage implements the entity stage (C2): medical-NLP
// detection over RawText, producing EntityRecord.
package entitystage

import (
	"context"

	"github.com/brightwellhealth/clinicscribe/internal/clients/medical"
	"github.com/brightwellhealth/clinicscribe/internal/domain"
	"github.com/brightwellhealth/clinicscribe/internal/ingestion/artifact"
	"github.com/brightwellhealth/clinicscribe/internal/platform/logger"
)

// Detect restricts textData to toProcess and calls the medical-NLP
// collaborator per document, storing its full response keyed by DocumentId.
// Per-document failures are logged and skipped (spec §4.3).
func Detect(ctx context.Context, log *logger.Logger, client medical.Client, textData domain.RawText, toProcess []domain.DocumentId) domain.EntityRecord {
	out := make(domain.EntityRecord, len(toProcess))
	for _, id := range toProcess {
		text, ok := textData[id]
		if !ok {
			continue
		}
		resp, err := client.DetectEntities(ctx, text)
		if err != nil {
			log.Warn("entity: detect failed", "document_id", id, "error", err.Error())
			continue
		}
		out[id] = resp
	}
	return out
}

// Persist merges new entries into the EntityRecord artifact at path,
// last-write-wins on overlapping keys (spec §4.3).
func Persist(path string, newEntities domain.EntityRecord) error {
	existing, err := artifact.Load[domain.EntityResponse](path)
	if err != nil {
		return err
	}
	artifact.Merge(existing, newEntities)
	return artifact.Persist(path, existing)
}
