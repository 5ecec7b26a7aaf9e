// Package indexbuilder implements the index builder (C5): rendering
// StructuredRecords into IndexedDocs and driving the vector index's build
// and retrieve operations.
package indexbuilder

import (
	"context"
	"fmt"

	"github.com/brightwellhealth/clinicscribe/internal/clients/llm"
	"github.com/brightwellhealth/clinicscribe/internal/domain"
	"github.com/brightwellhealth/clinicscribe/internal/vectorstore/sqlitevec"
)

// Render produces an IndexedDoc's content string. Exact casing, fallbacks
// and spelling are the contract (spec §4.6): future embeddings are keyed
// against this literal text.
func Render(id domain.DocumentId, rec domain.StructuredRecord) domain.IndexedDoc {
	patient := orDefault(rec.Patient, "Not given")
	diagnosis := orDefault(rec.Diagnosis, "Not given")
	treatment := orDefault(rec.Treatment, "Not Given")
	followUp := orDefault(rec.FollowUp, "Not Given")

	content := fmt.Sprintf(
		"Name of the patient is %s. The Patient's diagnosed detail is %s and the suggested treatment is %s and the followup is %s",
		patient, diagnosis, treatment, followUp,
	)
	return domain.IndexedDoc{
		Content: content,
		Metadata: domain.IndexedDocMetadata{
			SourceFile:  id,
			PatientName: patient,
		},
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// BuildIndex computes embeddings for docs via the LLM collaborator's Embed
// call and rebuilds the on-disk vector index from scratch (spec §4.6).
func BuildIndex(ctx context.Context, embedder llm.Client, index *sqlitevec.Index, docs []domain.IndexedDoc) error {
	if len(docs) == 0 {
		return index.Rebuild(ctx, nil, nil)
	}
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("indexbuilder: embed: %w", err)
	}
	return index.Rebuild(ctx, docs, vectors)
}

// UpsertDocs embeds each of docs and upserts it into index individually,
// the incremental counterpart to BuildIndex: used when the work-set diff
// against the index's existing source_file keys (spec §4.1) reports only a
// handful of newly-structured documents, so a rerun does not re-embed and
// rewrite every previously indexed document.
func UpsertDocs(ctx context.Context, embedder llm.Client, index *sqlitevec.Index, docs []domain.IndexedDoc) error {
	if len(docs) == 0 {
		return nil
	}
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("indexbuilder: embed: %w", err)
	}
	for i, d := range docs {
		if err := index.Upsert(ctx, d, vectors[i]); err != nil {
			return fmt.Errorf("indexbuilder: upsert %q: %w", d.Metadata.SourceFile, err)
		}
	}
	return nil
}

// Retrieve embeds query and returns the k nearest IndexedDocs.
func Retrieve(ctx context.Context, embedder llm.Client, index *sqlitevec.Index, query string, k int) ([]sqlitevec.Result, error) {
	vectors, err := embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("indexbuilder: embed query: %w", err)
	}
	return index.Retrieve(ctx, vectors[0], k)
}
