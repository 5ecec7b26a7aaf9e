// Package gcsimages lets the OCR stage source raw images from a Cloud
// Storage bucket instead of a local directory, grounded on the teacher
// repo's platform/gcp bucket wrapper (env-driven bucket name, constructor
// validates config up front, object listing via an iterator).
package gcsimages

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/brightwellhealth/clinicscribe/internal/domain"
)

// Source is the bucket-backed analogue of a local raw_images directory.
type Source struct {
	client *storage.Client
	bucket string
	prefix string
}

// New constructs a Source over the given bucket/prefix. Standard Google
// application-default credentials must be available in the environment.
func New(ctx context.Context, bucket, prefix string) (*Source, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcsimages: bucket required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcsimages: storage client: %w", err)
	}
	return &Source{client: client, bucket: bucket, prefix: prefix}, nil
}

func (s *Source) Close() error { return s.client.Close() }

var imageSuffixes = []string{".png", ".jpg", ".jpeg"}

// List enumerates the bucket's objects under prefix with an image
// extension, mirroring ocrstage.LocalDir.List's filter.
func (s *Source) List(ctx context.Context) ([]domain.DocumentId, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: s.prefix})
	var ids []domain.DocumentId
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gcsimages: list: %w", err)
		}
		name := strings.TrimPrefix(attrs.Name, s.prefix)
		lower := strings.ToLower(name)
		for _, suffix := range imageSuffixes {
			if strings.HasSuffix(lower, suffix) {
				ids = append(ids, name)
				break
			}
		}
	}
	return ids, nil
}

// Read downloads one object's bytes.
func (s *Source) Read(ctx context.Context, id domain.DocumentId) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(s.prefix + id).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcsimages: open %q: %w", id, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gcsimages: read %q: %w", id, err)
	}
	return data, nil
}
