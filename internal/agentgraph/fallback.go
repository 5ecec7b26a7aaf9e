package agentgraph

import (
	"context"

	"github.com/brightwellhealth/clinicscribe/internal/domain"
)

const fallbackApologyMessage = "I'm sorry, but I couldn't find anything in the records that answers that question."

// NewFallbackAgent builds the fallback_agent node. It writes the fixed
// apology message and does not update conversation: failed-to-ground turns
// are not remembered, to avoid poisoning future memory context (spec §4.7).
func NewFallbackAgent() Node {
	return func(ctx context.Context, state domain.AgentState) (domain.AgentState, error) {
		answer := fallbackApologyMessage
		state.GeneratedAnswer = &answer
		return state, nil
	}
}
