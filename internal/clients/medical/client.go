// Package medical wraps the external medical-NLP engine the entity stage
// treats as a collaborator (spec §6). The wire shape is intentionally
// Comprehend-Medical-style ({Entities:[{Text,Category,Type,Score,Attributes}]})
// because that is the contract the core consumes; the underlying call is made
// against Cloud Healthcare API's NLP service (projects.locations.services.nlp),
// the GCP analogue of AWS Comprehend Medical, adapted into that shape the way
// internal/clients/ocr adapts Cloud Vision into a Textract-shaped Document.
package medical

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/healthcare/v1"
	"google.golang.org/api/option"

	"github.com/brightwellhealth/clinicscribe/internal/domain"
	"github.com/brightwellhealth/clinicscribe/internal/platform/logger"
)

// Client is the medical-NLP collaborator interface the entity stage depends on.
type Client interface {
	DetectEntities(ctx context.Context, text string) (domain.EntityResponse, error)
	Close() error
}

type healthcareClient struct {
	log         *logger.Logger
	svc         *healthcare.Service
	nlpService  string // projects/{p}/locations/{l}/services/nlp
	minScore    float64
}

// New constructs a Client backed by Cloud Healthcare API's NLP service.
// NLP_SERVICE_NAME must be the fully-qualified nlp service resource name
// (projects/{project}/locations/{location}/services/nlp); standard Google
// application-default credentials must be available in the environment.
func New(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("medical: logger required")
	}
	nlpService := strings.TrimSpace(os.Getenv("NLP_SERVICE_NAME"))
	if nlpService == "" {
		return nil, fmt.Errorf("medical: missing NLP_SERVICE_NAME")
	}
	minScore := 0.0
	if v := strings.TrimSpace(os.Getenv("MEDICAL_MIN_SCORE")); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			minScore = parsed
		}
	}

	ctx := context.Background()
	svc, err := healthcare.NewService(ctx, option.WithScopes(healthcare.CloudPlatformScope))
	if err != nil {
		return nil, fmt.Errorf("medical: healthcare service: %w", err)
	}
	return &healthcareClient{
		log:        log.With("service", "medical.Client"),
		svc:        svc,
		nlpService: nlpService,
		minScore:   minScore,
	}, nil
}

func (h *healthcareClient) Close() error { return nil }

func (h *healthcareClient) DetectEntities(ctx context.Context, text string) (domain.EntityResponse, error) {
	if strings.TrimSpace(text) == "" {
		return domain.EntityResponse{Entities: []domain.EntityItem{}}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	req := &healthcare.AnalyzeEntitiesRequest{DocumentContent: text}
	call := h.svc.Projects.Locations.Services.Nlp.AnalyzeEntities(h.nlpService, req)
	resp, err := call.Context(ctx).Do()
	if err != nil {
		return domain.EntityResponse{}, fmt.Errorf("medical: analyze entities: %w", err)
	}

	items := make([]domain.EntityItem, 0, len(resp.EntityMentions))
	for _, mention := range resp.EntityMentions {
		if mention == nil {
			continue
		}
		score := mention.Confidence
		if score < h.minScore {
			continue
		}
		item := domain.EntityItem{
			Category: mentionCategory(mention.Type),
			Type:     mention.Type,
			Score:    score,
		}
		if mention.Text != nil {
			item.Text = mention.Text.Content
		}
		item.Attributes = mentionAttributes(mention)
		items = append(items, item)
	}
	return domain.EntityResponse{Entities: items}, nil
}

// mentionCategory collapses the NLP service's fine-grained mention types into
// the coarser category vocabulary Comprehend Medical exposes (MEDICATION,
// MEDICAL_CONDITION, ..., PROTECTED_HEALTH_INFORMATION).
func mentionCategory(mentionType string) string {
	switch mentionType {
	case "MEDICINE", "MED_DOSE", "MED_FREQUENCY", "MED_ROUTE", "MED_STRENGTH", "MED_UNIT", "MED_FORM", "MED_TOTALDOSE", "MED_DURATION", "MED_INDICATION", "MED_STATUS", "MED_OTHER":
		return "MEDICATION"
	case "PROBLEM":
		return "MEDICAL_CONDITION"
	case "PROCEDURE", "PROCEDURE_RESULT", "BODY_PART_OR_ORGAN", "ANATOMICAL_STRUCTURE":
		return "TEST_TREATMENT_PROCEDURE"
	case "LAB_VALUE", "LABORATORY_DATA":
		return "TEST_TREATMENT_PROCEDURE"
	case "FAMILY_NAME", "PATIENT", "DOCTOR", "DATE", "AGE":
		return "PROTECTED_HEALTH_INFORMATION"
	default:
		return "OTHER"
	}
}

// mentionAttributes flattens the NLP service's certainty/subject/temporal
// assessments into the {Type,Text} attribute pairs the spec's Attributes
// vocabulary expects.
func mentionAttributes(mention *healthcare.EntityMention) []domain.EntityAttribute {
	var attrs []domain.EntityAttribute
	if ca := mention.CertaintyAssessment; ca != nil && ca.Value != "" {
		attrs = append(attrs, domain.EntityAttribute{Type: "CERTAINTY", Text: ca.Value})
	}
	if subj := mention.Subject; subj != nil && subj.Value != "" {
		attrs = append(attrs, domain.EntityAttribute{Type: "SUBJECT", Text: subj.Value})
	}
	if temporal := mention.Temporal; temporal != nil && temporal.Value != "" {
		attrs = append(attrs, domain.EntityAttribute{Type: "TEMPORAL", Text: temporal.Value})
	}
	return attrs
}
