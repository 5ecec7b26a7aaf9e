// Package ocr wraps the external OCR engine the ingestion pipeline treats as
// a collaborator (spec §6). The wire shape is intentionally Textract-style
// ({Blocks:[{BlockType,Text}]}) because that is the contract the core
// consumes; the underlying call is made against Google Cloud Vision's
// document text detection, adapted into that shape the way the teacher
// repo's gcp.Vision service adapts its own provider's response into a
// normalized Segment list.
package ocr

import (
	"context"
	"fmt"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/brightwellhealth/clinicscribe/internal/platform/logger"
)

// BlockType mirrors the vocabulary the spec names: only LINE blocks are
// consumed by the extractor (spec §4.2).
const BlockTypeLine = "LINE"

type Block struct {
	BlockType string
	Text      string
}

// Document is the normalized OCR response for one image.
type Document struct {
	Blocks []Block
}

// Client is the OCR collaborator interface the extractor depends on.
type Client interface {
	DetectLines(ctx context.Context, imageBytes []byte) (Document, error)
	Close() error
}

type visionClient struct {
	log *logger.Logger
	c   *vision.ImageAnnotatorClient
}

// New constructs a Client backed by Cloud Vision's document text detection.
// Requires standard Google application-default credentials to be available
// in the environment.
func New(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("ocr: logger required")
	}
	ctx := context.Background()
	c, err := vision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("ocr: vision client: %w", err)
	}
	return &visionClient{log: log.With("service", "ocr.Client"), c: c}, nil
}

func (v *visionClient) Close() error {
	if v == nil || v.c == nil {
		return nil
	}
	return v.c.Close()
}

func (v *visionClient) DetectLines(ctx context.Context, imageBytes []byte) (Document, error) {
	if len(imageBytes) == 0 {
		return Document{}, fmt.Errorf("ocr: empty image")
	}
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	req := &visionpb.AnnotateImageRequest{
		Image:    &visionpb.Image{Content: imageBytes},
		Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
	}
	resp, err := v.c.BatchAnnotateImages(ctx, &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{req},
	})
	if err != nil {
		return Document{}, fmt.Errorf("ocr: annotate: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return Document{}, nil
	}
	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return Document{}, fmt.Errorf("ocr: annotate error: %s", r0.Error.Message)
	}
	fta := r0.FullTextAnnotation
	if fta == nil {
		return Document{}, nil
	}

	// Flatten pages/blocks/paragraphs into one LINE block per paragraph, in
	// document order; line breaks inside a paragraph become spaces.
	var blocks []Block
	for _, page := range fta.Pages {
		if page == nil {
			continue
		}
		for _, pb := range page.Blocks {
			if pb == nil {
				continue
			}
			for _, para := range pb.Paragraphs {
				if para == nil {
					continue
				}
				for _, word := range para.Words {
					_ = word // words are joined at paragraph level below
				}
				line := paragraphText(para)
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				blocks = append(blocks, Block{BlockType: BlockTypeLine, Text: line})
			}
		}
	}
	return Document{Blocks: blocks}, nil
}

func paragraphText(para *visionpb.Paragraph) string {
	var b strings.Builder
	for _, word := range para.GetWords() {
		var wb strings.Builder
		for _, sym := range word.GetSymbols() {
			wb.WriteString(sym.GetText())
			if brk := sym.GetProperty().GetDetectedBreak(); brk != nil {
				switch brk.Type {
				case visionpb.TextAnnotation_DetectedBreak_SPACE,
					visionpb.TextAnnotation_DetectedBreak_SURE_SPACE:
					wb.WriteString(" ")
				case visionpb.TextAnnotation_DetectedBreak_EOL_SURE_SPACE,
					visionpb.TextAnnotation_DetectedBreak_LINE_BREAK:
					wb.WriteString(" ")
				}
			}
		}
		b.WriteString(wb.String())
	}
	return b.String()
}
