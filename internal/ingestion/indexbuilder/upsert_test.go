//go:build cgo

package indexbuilder

import (
	"context"
	"testing"

	"github.com/brightwellhealth/clinicscribe/internal/domain"
	"github.com/brightwellhealth/clinicscribe/internal/platform/logger"
	"github.com/brightwellhealth/clinicscribe/internal/vectorstore/sqlitevec"
)

type fakeEmbedder struct {
	vectors [][]float32
}

func (f *fakeEmbedder) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	return f.vectors, nil
}

func (f *fakeEmbedder) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	panic("not used")
}

func (f *fakeEmbedder) GenerateText(ctx context.Context, system, user string) (string, error) {
	panic("not used")
}

func newTestIndex(t *testing.T) *sqlitevec.Index {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	ix, err := sqlitevec.New(log, t.TempDir(), 2)
	if err != nil {
		t.Fatalf("sqlitevec.New: %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

func TestUpsertDocsAddsOnlyGivenDocs(t *testing.T) {
	ix := newTestIndex(t)
	ctx := context.Background()

	a := Render("a.png", domain.StructuredRecord{Patient: "Jane"})
	embedder := &fakeEmbedder{vectors: [][]float32{{1, 0}}}
	if err := UpsertDocs(ctx, embedder, ix, []domain.IndexedDoc{a}); err != nil {
		t.Fatalf("UpsertDocs: %v", err)
	}

	existing, err := ix.SourceFiles(ctx)
	if err != nil {
		t.Fatalf("SourceFiles: %v", err)
	}
	if _, ok := existing["a.png"]; !ok || len(existing) != 1 {
		t.Fatalf("source files = %v, want exactly {a.png}", existing)
	}

	// Incrementally add b.png: a.png's row must be untouched, not rewritten.
	b := Render("b.png", domain.StructuredRecord{Patient: "John"})
	embedder.vectors = [][]float32{{0, 1}}
	if err := UpsertDocs(ctx, embedder, ix, []domain.IndexedDoc{b}); err != nil {
		t.Fatalf("UpsertDocs: %v", err)
	}

	existing, err = ix.SourceFiles(ctx)
	if err != nil {
		t.Fatalf("SourceFiles: %v", err)
	}
	if len(existing) != 2 {
		t.Fatalf("source files = %v, want 2 entries", existing)
	}
	if _, ok := existing["a.png"]; !ok {
		t.Error("a.png missing after incremental upsert of b.png")
	}
	if _, ok := existing["b.png"]; !ok {
		t.Error("b.png missing after incremental upsert")
	}
}

func TestUpsertDocsNoopOnEmpty(t *testing.T) {
	ix := newTestIndex(t)
	if err := UpsertDocs(context.Background(), &fakeEmbedder{}, ix, nil); err != nil {
		t.Fatalf("UpsertDocs: %v", err)
	}
}
