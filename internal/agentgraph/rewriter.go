package agentgraph

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/brightwellhealth/clinicscribe/internal/clients/llm"
	"github.com/brightwellhealth/clinicscribe/internal/domain"
	"github.com/brightwellhealth/clinicscribe/internal/platform/logger"
)

const rewriterSystemPrompt = `You rewrite a user's question into a self-contained, standalone question.
Preserve its original meaning. Resolve any pronouns or references using the conversation history provided.
Also decide whether answering requires listing, counting, filtering, or comparing across multiple records.`

var rewriterSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"rephrased_question": map[string]any{"type": "string"},
		"tool_flag":           map[string]any{"type": "boolean"},
	},
	"required":             []string{"rephrased_question", "tool_flag"},
	"additionalProperties": false,
}

// NewQueryRewriter builds the query_rewriter node (spec §4.7).
func NewQueryRewriter(log *logger.Logger, client llm.Client) Node {
	return func(ctx context.Context, state domain.AgentState) (domain.AgentState, error) {
		state.RephrasedQuestion = nil
		state.ToolFlag = false
		state.GeneratedAnswer = nil
		if state.Conversation == nil {
			state.Conversation = domain.RecentChats{}
		}

		user := renderMemoryPrompt(state.UserQuery, state.Conversation)
		obj, err := client.GenerateJSON(ctx, rewriterSystemPrompt, user, "query_rewrite", rewriterSchema)
		if err != nil {
			log.Warn("rewriter: llm failed, degrading", "error", err.Error())
			rephrased := state.UserQuery
			state.RephrasedQuestion = &rephrased
			state.ToolFlag = false
			return state, nil
		}

		rephrased, _ := obj["rephrased_question"].(string)
		rephrased = strings.TrimSpace(rephrased)
		if rephrased == "" {
			rephrased = state.UserQuery
		}
		state.RephrasedQuestion = &rephrased
		if flag, ok := obj["tool_flag"].(bool); ok {
			state.ToolFlag = flag
		}
		return state, nil
	}
}

func renderMemoryPrompt(query string, conversation domain.RecentChats) string {
	var b strings.Builder
	b.WriteString("Current question: ")
	b.WriteString(query)
	if conversation.Len() > 0 {
		b.WriteString("\n\nConversation history (oldest to newest):\n")
		history := orderedTurns(conversation)
		encoded, _ := json.Marshal(history)
		b.Write(encoded)
	}
	return b.String()
}
