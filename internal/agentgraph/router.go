package agentgraph

import "github.com/brightwellhealth/clinicscribe/internal/domain"

// Route is the destination a router predicate selects.
type Route string

const (
	RouteGenerateAnswer Route = "generate_answer"
	RouteFallback       Route = "fallback"
)

// NoRelevantDocs implements C9's single router predicate: it routes to
// generate_answer iff the grader retained at least one document (spec
// §4.9, property P5).
func NoRelevantDocs(state domain.AgentState) Route {
	if state.ProceedToGenerate && len(state.Documents) > 0 {
		return RouteGenerateAnswer
	}
	return RouteFallback
}
