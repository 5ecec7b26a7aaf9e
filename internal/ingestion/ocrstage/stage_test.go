package ocrstage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/brightwellhealth/clinicscribe/internal/clients/ocr"
	"github.com/brightwellhealth/clinicscribe/internal/domain"
	"github.com/brightwellhealth/clinicscribe/internal/ingestion/artifact"
	"github.com/brightwellhealth/clinicscribe/internal/platform/logger"
)

type memSource struct {
	files map[string][]byte
}

func (m memSource) List(ctx context.Context) ([]domain.DocumentId, error) {
	var ids []domain.DocumentId
	for id := range m.files {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m memSource) Read(ctx context.Context, id domain.DocumentId) ([]byte, error) {
	b, ok := m.files[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return b, nil
}

type fakeOCR struct {
	lines map[string][]string
	err   map[string]error
}

func (f fakeOCR) Close() error { return nil }

func (f fakeOCR) DetectLines(ctx context.Context, imageBytes []byte) (ocr.Document, error) {
	key := string(imageBytes)
	if err, ok := f.err[key]; ok {
		return ocr.Document{}, err
	}
	var blocks []ocr.Block
	for _, line := range f.lines[key] {
		blocks = append(blocks, ocr.Block{BlockType: ocr.BlockTypeLine, Text: line})
	}
	return ocr.Document{Blocks: blocks}, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestExtractJoinsLinesAndTrims(t *testing.T) {
	source := memSource{files: map[string][]byte{"a.png": []byte("a-bytes")}}
	client := fakeOCR{lines: map[string][]string{"a-bytes": {"Hello", "World"}}}

	out := Extract(context.Background(), testLogger(t), client, source, []domain.DocumentId{"a.png"})
	if out["a.png"] != "Hello World" {
		t.Errorf("got %q, want %q", out["a.png"], "Hello World")
	}
}

func TestExtractSkipsFailedImages(t *testing.T) {
	source := memSource{files: map[string][]byte{
		"good.png": []byte("good-bytes"),
		"bad.png":  []byte("bad-bytes"),
	}}
	client := fakeOCR{
		lines: map[string][]string{"good-bytes": {"ok"}},
		err:   map[string]error{"bad-bytes": errors.New("ocr failure")},
	}

	out := Extract(context.Background(), testLogger(t), client, source, []domain.DocumentId{"good.png", "bad.png"})
	if _, ok := out["bad.png"]; ok {
		t.Error("expected bad.png to be skipped")
	}
	if out["good.png"] != "ok" {
		t.Errorf("got %q, want ok", out["good.png"])
	}
}

func TestExtractSkipsUnreadableImage(t *testing.T) {
	source := memSource{files: map[string][]byte{}}
	client := fakeOCR{}

	out := Extract(context.Background(), testLogger(t), client, source, []domain.DocumentId{"missing.png"})
	if len(out) != 0 {
		t.Errorf("expected empty output, got %v", out)
	}
}

func TestPersistMergesLastWriteWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_text.json")
	if err := Persist(path, domain.RawText{"a.png": "first"}); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if err := Persist(path, domain.RawText{"a.png": "second", "b.png": "new"}); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	got, err := artifact.Load[string](path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got["a.png"] != "second" {
		t.Errorf("a.png = %q, want second (last write wins)", got["a.png"])
	}
	if got["b.png"] != "new" {
		t.Errorf("b.png = %q, want new", got["b.png"])
	}
}

func TestLocalDirListFiltersByExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.png"), "x")
	writeFile(t, filepath.Join(dir, "b.jpg"), "x")
	writeFile(t, filepath.Join(dir, "notes.txt"), "x")

	ids, err := LocalDir(dir).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("got %v, want 2 image files", ids)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}
