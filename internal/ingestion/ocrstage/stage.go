// Package ocrstage implements the OCR stage (C1): turn source images into
// RawText, the pipeline's first persisted artifact.
package ocrstage

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/brightwellhealth/clinicscribe/internal/clients/ocr"
	"github.com/brightwellhealth/clinicscribe/internal/domain"
	"github.com/brightwellhealth/clinicscribe/internal/ingestion/artifact"
	"github.com/brightwellhealth/clinicscribe/internal/platform/logger"
)

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

// ImageSource abstracts where raw images live: a local directory (the
// default) or a Cloud Storage bucket (internal/clients/gcsimages).
type ImageSource interface {
	List(ctx context.Context) ([]domain.DocumentId, error)
	Read(ctx context.Context, id domain.DocumentId) ([]byte, error)
}

// LocalDir is the directory-backed ImageSource: every file directly under
// it whose extension (case-insensitive) is .png, .jpg, or .jpeg.
type LocalDir string

func (d LocalDir) List(ctx context.Context) ([]domain.DocumentId, error) {
	entries, err := os.ReadDir(string(d))
	if err != nil {
		return nil, err
	}
	var ids []domain.DocumentId
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}

func (d LocalDir) Read(ctx context.Context, id domain.DocumentId) ([]byte, error) {
	return os.ReadFile(filepath.Join(string(d), id))
}

// ListSourceDocuments enumerates the source key set S for C1's work-set
// diff.
func ListSourceDocuments(source ImageSource) ([]domain.DocumentId, error) {
	return source.List(context.Background())
}

// Extract OCRs every id in toProcess, reading its image bytes from source,
// joining all LINE blocks with single spaces, and trimming the result. A
// per-image failure is logged and the image is skipped; it stays in the
// next run's to_process (spec §4.2).
func Extract(ctx context.Context, log *logger.Logger, client ocr.Client, source ImageSource, toProcess []domain.DocumentId) domain.RawText {
	out := make(domain.RawText, len(toProcess))
	for _, id := range toProcess {
		imageBytes, err := source.Read(ctx, id)
		if err != nil {
			log.Warn("ocr: read image failed", "document_id", id, "error", err.Error())
			continue
		}
		doc, err := client.DetectLines(ctx, imageBytes)
		if err != nil {
			log.Warn("ocr: detect lines failed", "document_id", id, "error", err.Error())
			continue
		}
		var lines []string
		for _, b := range doc.Blocks {
			if b.BlockType != ocr.BlockTypeLine {
				continue
			}
			lines = append(lines, b.Text)
		}
		out[id] = strings.TrimSpace(strings.Join(lines, " "))
	}
	return out
}

// Persist merges newText into the RawText artifact at path, last-write-wins
// on overlapping keys (spec §4.2).
func Persist(path string, newText domain.RawText) error {
	existing, err := artifact.Load[string](path)
	if err != nil {
		return err
	}
	artifact.Merge(existing, newText)
	return artifact.Persist(path, existing)
}
