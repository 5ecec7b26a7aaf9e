// Package clinicerr defines the error-kind taxonomy the core distinguishes
// (spec §7). Callers use errors.Is / errors.As against these sentinels
// rather than matching on strings.
package clinicerr

import (
	"errors"
	"fmt"
)

var (
	// ErrInputMissing: a stage's upstream artifact/source is absent. The
	// caller logs and returns an empty work-set; the run still exits 0.
	ErrInputMissing = errors.New("clinicscribe: input missing")

	// ErrPerItemFailure: a single document failed OCR/entity/LLM processing.
	// The stage logs it against that DocumentId and continues.
	ErrPerItemFailure = errors.New("clinicscribe: per-item failure")

	// ErrSchemaViolation: structured LLM output didn't validate against
	// StructuredRecord. Treated as a PerItemFailure by the structurer stage.
	ErrSchemaViolation = errors.New("clinicscribe: schema violation")

	// ErrIndexAbsent: a retrieve call was made before any index was built
	// or loaded.
	ErrIndexAbsent = errors.New("clinicscribe: vector index absent")

	// ErrCheckpointUnavailable: the conversation store could not be reached;
	// the request fails before any graph node runs.
	ErrCheckpointUnavailable = errors.New("clinicscribe: checkpoint store unavailable")
)

// PerItem wraps err with the DocumentId it failed on, while preserving
// errors.Is(_, ErrPerItemFailure).
func PerItem(docID string, err error) error {
	return fmt.Errorf("document %q: %w: %w", docID, ErrPerItemFailure, err)
}

// Schema wraps a validation failure for docID, preserving both
// errors.Is(_, ErrSchemaViolation) and errors.Is(_, ErrPerItemFailure).
func Schema(docID string, err error) error {
	return fmt.Errorf("document %q: %w: %w: %w", docID, ErrPerItemFailure, ErrSchemaViolation, err)
}
