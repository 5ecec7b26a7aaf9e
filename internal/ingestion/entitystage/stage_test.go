package entitystage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/brightwellhealth/clinicscribe/internal/domain"
	"github.com/brightwellhealth/clinicscribe/internal/ingestion/artifact"
	"github.com/brightwellhealth/clinicscribe/internal/platform/logger"
)

type fakeMedical struct {
	responses map[string]domain.EntityResponse
	errs      map[string]error
}

func (f fakeMedical) Close() error { return nil }

func (f fakeMedical) DetectEntities(ctx context.Context, text string) (domain.EntityResponse, error) {
	if err, ok := f.errs[text]; ok {
		return domain.EntityResponse{}, err
	}
	return f.responses[text], nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestDetectSkipsMissingText(t *testing.T) {
	client := fakeMedical{}
	out := Detect(context.Background(), testLogger(t), client, domain.RawText{}, []domain.DocumentId{"missing.png"})
	if len(out) != 0 {
		t.Errorf("expected empty output, got %v", out)
	}
}

func TestDetectSkipsFailedItems(t *testing.T) {
	text := domain.RawText{"good.png": "patient has a fever", "bad.png": "broken text"}
	client := fakeMedical{
		responses: map[string]domain.EntityResponse{
			"patient has a fever": {Entities: []domain.EntityItem{{Text: "fever", Category: "MEDICAL_CONDITION"}}},
		},
		errs: map[string]error{"broken text": errors.New("nlp failure")},
	}

	out := Detect(context.Background(), testLogger(t), client, text, []domain.DocumentId{"good.png", "bad.png"})
	if _, ok := out["bad.png"]; ok {
		t.Error("expected bad.png to be skipped")
	}
	if len(out["good.png"].Entities) != 1 {
		t.Errorf("expected one entity for good.png, got %+v", out["good.png"])
	}
}

func TestPersistMergesLastWriteWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_entities.json")
	first := domain.EntityRecord{"a.png": {Entities: []domain.EntityItem{{Text: "old"}}}}
	if err := Persist(path, first); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	second := domain.EntityRecord{
		"a.png": {Entities: []domain.EntityItem{{Text: "new"}}},
		"b.png": {Entities: []domain.EntityItem{{Text: "fresh"}}},
	}
	if err := Persist(path, second); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	got, err := artifact.Load[domain.EntityResponse](path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got["a.png"].Entities[0].Text != "new" {
		t.Errorf("a.png entity = %q, want new", got["a.png"].Entities[0].Text)
	}
	if got["b.png"].Entities[0].Text != "fresh" {
		t.Errorf("b.png entity = %q, want fresh", got["b.png"].Entities[0].Text)
	}
}
