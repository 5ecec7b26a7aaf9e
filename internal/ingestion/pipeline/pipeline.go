// Package pipeline wires the ingestion stages (C1-C6) into the end-to-end,
// incremental offline run described by spec §6's persisted layout.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/brightwellhealth/clinicscribe/internal/clients/llm"
	"github.com/brightwellhealth/clinicscribe/internal/clients/medical"
	"github.com/brightwellhealth/clinicscribe/internal/clients/ocr"
	"github.com/brightwellhealth/clinicscribe/internal/domain"
	"github.com/brightwellhealth/clinicscribe/internal/ingestion/artifact"
	"github.com/brightwellhealth/clinicscribe/internal/ingestion/entitystage"
	"github.com/brightwellhealth/clinicscribe/internal/ingestion/indexbuilder"
	"github.com/brightwellhealth/clinicscribe/internal/ingestion/ocrstage"
	"github.com/brightwellhealth/clinicscribe/internal/ingestion/structurer"
	"github.com/brightwellhealth/clinicscribe/internal/ingestion/summarizer"
	"github.com/brightwellhealth/clinicscribe/internal/ingestion/workset"
	"github.com/brightwellhealth/clinicscribe/internal/platform/logger"
	"github.com/brightwellhealth/clinicscribe/internal/vectorstore/sqlitevec"
)

// Layout is the directory layout spec §6 fixes. RawImagesDir holds source
// images; the rest are stage output locations under a shared working
// directory.
type Layout struct {
	RawImagesDir        string
	ProcessedTextFile    string
	ProcessedEntityFile  string
	SummaryDir           string
	StructuredDir        string
	IndexDir             string
}

// DefaultLayout returns the canonical layout rooted at workDir, matching
// spec §6's tree verbatim.
func DefaultLayout(workDir string) Layout {
	join := func(parts ...string) string {
		p := workDir
		for _, part := range parts {
			p = p + "/" + part
		}
		return p
	}
	return Layout{
		RawImagesDir:       join("data", "raw_images"),
		ProcessedTextFile:  join("data", "processed_images", "processed_text.json"),
		ProcessedEntityFile: join("data", "processed_medical", "processed_entities.json"),
		SummaryDir:         join("data", "processed_medical_data"),
		StructuredDir:      join("data", "structured_json"),
		IndexDir:           join("vector_index"),
	}
}

// Report summarizes one Run invocation for logging/testing.
type Report struct {
	OCRProcessed        []domain.DocumentId
	EntityProcessed     []domain.DocumentId
	SummaryProcessed    []domain.DocumentId
	StructuredProcessed []domain.DocumentId
	IndexedDocCount     int
	NothingToDo         bool
}

// Pipeline holds the collaborator clients the ingestion stages depend on.
type Pipeline struct {
	Log         *logger.Logger
	OCR         ocr.Client
	Medical     medical.Client
	LLM         llm.Client
	ImageSource ocrstage.ImageSource
	Layout      Layout
	EmbedDim    int
}

// Run executes C1 through C6 end to end, processing only what each stage's
// work-set diff reports as to_process (spec §4.1).
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	var report Report

	sourceIDs, err := ocrstage.ListSourceDocuments(p.ImageSource)
	if err != nil {
		p.Log.Warn("pipeline: no raw images source", "error", err.Error())
		report.NothingToDo = true
		return report, nil
	}
	if len(sourceIDs) == 0 {
		report.NothingToDo = true
		return report, nil
	}

	if err := p.runOCR(ctx, sourceIDs, &report); err != nil {
		return report, err
	}
	if err := p.runEntities(ctx, sourceIDs, &report); err != nil {
		return report, err
	}
	if err := p.runSummaries(ctx, sourceIDs, &report); err != nil {
		return report, err
	}
	structuredIDs, err := p.runStructurer(ctx, sourceIDs, &report)
	if err != nil {
		return report, err
	}
	if err := p.runIndex(ctx, structuredIDs, &report); err != nil {
		return report, err
	}
	return report, nil
}

func (p *Pipeline) runOCR(ctx context.Context, sourceIDs []domain.DocumentId, report *Report) error {
	existing, err := artifact.Load[string](p.Layout.ProcessedTextFile)
	if err != nil {
		return fmt.Errorf("pipeline: load processed text: %w", err)
	}
	toProcess, _, _ := workset.Diff(sourceIDs, workset.KeysOf(existing))
	if len(toProcess) == 0 {
		return nil
	}
	newText := ocrstage.Extract(ctx, p.Log, p.OCR, p.ImageSource, toProcess)
	if err := ocrstage.Persist(p.Layout.ProcessedTextFile, newText); err != nil {
		return err
	}
	report.OCRProcessed = toProcess
	return nil
}

func (p *Pipeline) runEntities(ctx context.Context, sourceIDs []domain.DocumentId, report *Report) error {
	textData, err := artifact.Load[string](p.Layout.ProcessedTextFile)
	if err != nil {
		return fmt.Errorf("pipeline: load processed text: %w", err)
	}
	existing, err := artifact.Load[domain.EntityResponse](p.Layout.ProcessedEntityFile)
	if err != nil {
		return fmt.Errorf("pipeline: load processed entities: %w", err)
	}
	textKeys := workset.KeysOf(textData)
	var sourceKeys []string
	for _, id := range sourceIDs {
		if _, ok := textKeys[id]; ok {
			sourceKeys = append(sourceKeys, id)
		}
	}
	toProcess, _, _ := workset.Diff(sourceKeys, workset.KeysOf(existing))
	if len(toProcess) == 0 {
		return nil
	}
	restricted := workset.RestrictToKeys(textData, toProcess)
	newEntities := entitystage.Detect(ctx, p.Log, p.Medical, restricted, toProcess)
	if err := entitystage.Persist(p.Layout.ProcessedEntityFile, newEntities); err != nil {
		return err
	}
	report.EntityProcessed = toProcess
	return nil
}

func (p *Pipeline) runSummaries(ctx context.Context, sourceIDs []domain.DocumentId, report *Report) error {
	entities, err := artifact.Load[domain.EntityResponse](p.Layout.ProcessedEntityFile)
	if err != nil {
		return fmt.Errorf("pipeline: load processed entities: %w", err)
	}
	existing, err := summarizer.ExistingSummaries(p.Layout.SummaryDir)
	if err != nil {
		return fmt.Errorf("pipeline: list summaries: %w", err)
	}
	entityKeys := workset.KeysOf(entities)
	var sourceKeys []string
	for _, id := range sourceIDs {
		if _, ok := entityKeys[id]; ok {
			sourceKeys = append(sourceKeys, id)
		}
	}
	toProcess, _, _ := workset.Diff(sourceKeys, existing)
	for _, id := range toProcess {
		table := summarizer.BuildTable(entities[id])
		if err := summarizer.Persist(summarizer.SummaryPath(p.Layout.SummaryDir, id), table); err != nil {
			p.Log.Warn("pipeline: persist summary failed", "document_id", id, "error", err.Error())
			continue
		}
		report.SummaryProcessed = append(report.SummaryProcessed, id)
	}
	return nil
}

func (p *Pipeline) runStructurer(ctx context.Context, sourceIDs []domain.DocumentId, report *Report) ([]domain.DocumentId, error) {
	existing, err := structurer.ExistingRecords(p.Layout.StructuredDir)
	if err != nil {
		return nil, fmt.Errorf("pipeline: list structured records: %w", err)
	}
	summaryKeys, err := summarizer.ExistingSummaries(p.Layout.SummaryDir)
	if err != nil {
		return nil, fmt.Errorf("pipeline: list summaries: %w", err)
	}
	var sourceKeys []string
	for _, id := range sourceIDs {
		if _, ok := summaryKeys[id]; ok {
			sourceKeys = append(sourceKeys, id)
		}
	}
	// ExistingRecords keys are record-file stems (a.png -> a), so map each
	// source DocumentId to its stem before diffing.
	done := make(map[string]struct{}, len(existing))
	for _, id := range sourceKeys {
		if _, ok := existing[strings.TrimSuffix(id, filepath.Ext(id))]; ok {
			done[id] = struct{}{}
		}
	}
	toProcess, alreadyProcessed, _ := workset.Diff(sourceKeys, done)

	for _, id := range toProcess {
		table, err := loadSummary(p.Layout.SummaryDir, id)
		if err != nil {
			p.Log.Warn("pipeline: load summary failed", "document_id", id, "error", err.Error())
			continue
		}
		rec, err := structurer.Structure(ctx, p.LLM, id, table)
		if err != nil {
			p.Log.Warn("pipeline: structure failed", "document_id", id, "error", err.Error())
			continue
		}
		if err := structurer.Persist(structurer.RecordPath(p.Layout.StructuredDir, id), rec); err != nil {
			p.Log.Warn("pipeline: persist structured record failed", "document_id", id, "error", err.Error())
			continue
		}
		report.StructuredProcessed = append(report.StructuredProcessed, id)
	}
	return append(alreadyProcessed, report.StructuredProcessed...), nil
}

// runIndex gates C5 behind its own work-set diff against the index's
// existing source_file keys (spec §4.1), so a rerun with no newly
// structured documents touches the index not at all, and an incremental
// add only embeds and upserts the documents that are actually new.
func (p *Pipeline) runIndex(ctx context.Context, structuredIDs []domain.DocumentId, report *Report) error {
	index, err := sqlitevec.New(p.Log, p.Layout.IndexDir, p.EmbedDim)
	if err != nil {
		return fmt.Errorf("pipeline: open index: %w", err)
	}
	defer index.Close()

	existing, err := index.SourceFiles(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: list indexed source files: %w", err)
	}
	ids := make([]string, len(structuredIDs))
	for i, id := range structuredIDs {
		ids[i] = string(id)
	}
	toProcess, _, ok := workset.Diff(ids, existing)
	if !ok || len(toProcess) == 0 {
		return nil
	}

	var docs []domain.IndexedDoc
	for _, idStr := range toProcess {
		id := domain.DocumentId(idStr)
		var rec domain.StructuredRecord
		if err := artifact.LoadOne(structurer.RecordPath(p.Layout.StructuredDir, id), &rec); err != nil {
			p.Log.Warn("pipeline: load structured record failed", "document_id", id, "error", err.Error())
			continue
		}
		docs = append(docs, indexbuilder.Render(id, rec))
	}
	if err := indexbuilder.UpsertDocs(ctx, p.LLM, index, docs); err != nil {
		return err
	}
	report.IndexedDocCount = len(docs)
	return nil
}

func loadSummary(dir string, id domain.DocumentId) (domain.SummaryTable, error) {
	return artifact.LoadCSV(summarizer.SummaryPath(dir, id))
}
