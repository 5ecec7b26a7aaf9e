package summarizer

import (
	"strings"

	"github.com/brightwellhealth/clinicscribe/internal/domain"
)

// Flatten normalizes an entity's attribute list into the pipe-joined display
// string the Attributes CSV column holds, or nil if nothing survives (spec
// §4.4 step 2).
func Flatten(attrs []domain.EntityAttribute) *string {
	if len(attrs) == 0 {
		return nil
	}
	var parts []string
	for _, a := range attrs {
		t := strings.TrimSpace(a.Type)
		txt := strings.TrimSpace(a.Text)
		if t == "" || txt == "" {
			continue
		}
		parts = append(parts, t+": "+txt)
	}
	if len(parts) == 0 {
		return nil
	}
	joined := strings.Join(parts, " | ")
	return &joined
}

// Parse permissively reverses Flatten's "Type: Text | Type: Text" format,
// for the attribute round-trip property (spec §8 P7, §9: Attributes is
// opaque display text, but must still survive a flatten/parse round-trip).
// A malformed or empty input yields nil, never an error (spec §9:
// stringified-attribute tolerance).
func Parse(raw *string) []domain.EntityAttribute {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil
	}
	var out []domain.EntityAttribute
	for _, seg := range strings.Split(s, " | ") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		idx := strings.Index(seg, ": ")
		if idx < 0 {
			continue
		}
		t := strings.TrimSpace(seg[:idx])
		txt := strings.TrimSpace(seg[idx+2:])
		if t == "" || txt == "" {
			continue
		}
		out = append(out, domain.EntityAttribute{Type: t, Text: txt})
	}
	return out
}
