package agentgraph

import (
	"testing"

	"github.com/brightwellhealth/clinicscribe/internal/domain"
)

func TestNoRelevantDocs(t *testing.T) {
	cases := []struct {
		name  string
		state domain.AgentState
		want  Route
	}{
		{
			name: "proceed with documents routes to generate",
			state: domain.AgentState{
				ProceedToGenerate: true,
				Documents:         []domain.IndexedDoc{{Content: "x"}},
			},
			want: RouteGenerateAnswer,
		},
		{
			name: "proceed with no documents falls back",
			state: domain.AgentState{
				ProceedToGenerate: true,
				Documents:         nil,
			},
			want: RouteFallback,
		},
		{
			name: "documents present but not proceeding falls back",
			state: domain.AgentState{
				ProceedToGenerate: false,
				Documents:         []domain.IndexedDoc{{Content: "x"}},
			},
			want: RouteFallback,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NoRelevantDocs(tc.state); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}
