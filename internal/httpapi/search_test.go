package httpapi

import (
	"math"
	"testing"

	"github.com/brightwellhealth/clinicscribe/internal/domain"
)

func TestSanitizeScore(t *testing.T) {
	if got := sanitizeScore(0.87); got == nil || *got != 0.87 {
		t.Errorf("sanitizeScore(0.87) = %v, want 0.87", got)
	}
	if got := sanitizeScore(math.NaN()); got != nil {
		t.Errorf("sanitizeScore(NaN) = %v, want nil", *got)
	}
	if got := sanitizeScore(math.Inf(1)); got != nil {
		t.Errorf("sanitizeScore(+Inf) = %v, want nil", *got)
	}
	if got := sanitizeScore(math.Inf(-1)); got != nil {
		t.Errorf("sanitizeScore(-Inf) = %v, want nil", *got)
	}
}

func TestRowMatches(t *testing.T) {
	attrs := "DOSAGE: 200mg"
	row := domain.SummaryRow{Text: "Ibuprofen", Category: "MEDICATION", Type: "NAME", Attributes: &attrs}

	cases := []struct {
		needle string
		want   bool
	}{
		{"", true},
		{"ibuprofen", true},
		{"medication", true},
		{"name", true},
		{"200mg", true},
		{"nonexistent", false},
	}
	for _, tc := range cases {
		if got := rowMatches(row, tc.needle); got != tc.want {
			t.Errorf("rowMatches(%q) = %v, want %v", tc.needle, got, tc.want)
		}
	}
}

func TestRowMatchesNilAttributes(t *testing.T) {
	row := domain.SummaryRow{Text: "fever", Category: "MEDICAL_CONDITION", Type: "DX_NAME"}
	if rowMatches(row, "dosage") {
		t.Error("expected no match against nil attributes")
	}
}
