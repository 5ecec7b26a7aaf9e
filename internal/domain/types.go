// Package domain holds the core entities shared across ingestion stages and
// the agent graph. Every artifact the pipeline persists to disk is an
// explicit, serializable type here rather than a dynamic map — see DESIGN.md
// for the rationale.
package domain

// DocumentId is the stable, opaque identifier for one source image: its
// basename (e.g. "patient_042.png"). It is the join key across every stage.
type DocumentId = string

// RawText is the persisted C1 artifact: DocumentId -> OCR'd, whitespace
// trimmed text.
type RawText map[DocumentId]string

// EntityAttribute is one {type,text} pair attached to an EntityItem.
type EntityAttribute struct {
	Type string `json:"Type"`
	Text string `json:"Text"`
}

// EntityItem is one medical entity detected in a document's text.
type EntityItem struct {
	Text       string            `json:"Text"`
	Category   string            `json:"Category"`
	Type       string            `json:"Type"`
	Score      float64           `json:"Score"`
	Attributes []EntityAttribute `json:"Attributes,omitempty"`
}

// EntityResponse is the normalized form of the medical-NLP collaborator's
// response for one document.
type EntityResponse struct {
	Entities []EntityItem `json:"Entities"`
}

// EntityRecord is the persisted C2 artifact: DocumentId -> normalized
// detection response. entitystage.Persist merges last-write-wins; the
// pipeline only detects documents whose key is absent from the artifact, so
// a change to a document's upstream text does not cause it to be re-detected.
type EntityRecord map[DocumentId]EntityResponse

// SummaryRow is one row of a per-document SummaryTable (C3 output). It is
// also the fixed CSV column order: Text, Category, Type, Score, Attributes.
type SummaryRow struct {
	Text       string
	Category   string
	Type       string
	Score      float64
	Attributes *string // nil renders as an empty CSV cell / JSON null.
}

// SummaryTable is one document's ordered sequence of SummaryRows.
type SummaryTable []SummaryRow

// StructuredRecord is the four-field canonical clinical record produced by
// C4. All four fields are non-empty once validated; no other fields exist.
type StructuredRecord struct {
	Patient   string `json:"patient"`
	Diagnosis string `json:"diagnosis"`
	Treatment string `json:"treatment"`
	FollowUp  string `json:"follow_up"`
}

// Valid reports whether every field is non-empty, per invariant 4.
func (r StructuredRecord) Valid() bool {
	return r.Patient != "" && r.Diagnosis != "" && r.Treatment != "" && r.FollowUp != ""
}

// IndexedDocMetadata is the metadata carried alongside an IndexedDoc's
// rendered content in the vector store.
type IndexedDocMetadata struct {
	SourceFile  DocumentId `json:"source_file"`
	PatientName string     `json:"patient_name"`
}

// IndexedDoc is a StructuredRecord rendered to a deterministic string plus
// retrieval metadata (spec §4.6).
type IndexedDoc struct {
	Content  string              `json:"content"`
	Metadata IndexedDocMetadata  `json:"metadata"`
}
