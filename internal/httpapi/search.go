package httpapi

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/brightwellhealth/clinicscribe/internal/domain"
	"github.com/brightwellhealth/clinicscribe/internal/ingestion/artifact"
	"github.com/brightwellhealth/clinicscribe/internal/platform/logger"
)

const defaultSearchLimit = 10

// SearchHandler serves GET /search (spec §6): a case-insensitive substring
// search over the union of all persisted SummaryTables.
type SearchHandler struct {
	Log        *logger.Logger
	SummaryDir string
}

type searchRow struct {
	DocumentId domain.DocumentId `json:"document_id"`
	Text       string            `json:"Text"`
	Category   string            `json:"Category"`
	Type       string            `json:"Type"`
	Score      *float64          `json:"Score"`
	Attributes *string           `json:"Attributes"`
}

type searchResponse struct {
	Query        string      `json:"query"`
	TotalResults int         `json:"total_results"`
	Results      []searchRow `json:"results"`
}

func (h *SearchHandler) Handle(c *gin.Context) {
	query := c.Query("query")
	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	needle := strings.ToLower(query)
	var matches []searchRow

	entries, err := os.ReadDir(h.SummaryDir)
	if err != nil {
		RespondOK(c, searchResponse{Query: query, TotalResults: 0, Results: []searchRow{}})
		return
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), "_summary.csv") {
			continue
		}
		docID := strings.TrimSuffix(e.Name(), "_summary.csv")
		table, err := artifact.LoadCSV(filepath.Join(h.SummaryDir, e.Name()))
		if err != nil {
			h.Log.Warn("search: load summary failed", "document_id", docID, "error", err.Error())
			continue
		}
		for _, row := range table {
			if !rowMatches(row, needle) {
				continue
			}
			matches = append(matches, searchRow{
				DocumentId: docID,
				Text:       row.Text,
				Category:   row.Category,
				Type:       row.Type,
				Score:      sanitizeScore(row.Score),
				Attributes: row.Attributes,
			})
			if len(matches) >= limit {
				break
			}
		}
		if len(matches) >= limit {
			break
		}
	}
	if matches == nil {
		matches = []searchRow{}
	}

	RespondOK(c, searchResponse{Query: query, TotalResults: len(matches), Results: matches})
}

func rowMatches(row domain.SummaryRow, needle string) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(row.Text), needle) ||
		strings.Contains(strings.ToLower(row.Category), needle) ||
		strings.Contains(strings.ToLower(row.Type), needle) {
		return true
	}
	if row.Attributes != nil && strings.Contains(strings.ToLower(*row.Attributes), needle) {
		return true
	}
	return false
}

// sanitizeScore renders NaN/+-Inf as null (spec §6).
func sanitizeScore(score float64) *float64 {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return nil
	}
	v := score
	return &v
}
