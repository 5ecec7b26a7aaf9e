package agentgraph

import (
	"context"
	"strconv"
	"strings"

	"github.com/brightwellhealth/clinicscribe/internal/clients/llm"
	"github.com/brightwellhealth/clinicscribe/internal/domain"
)

const generatorSystemPrompt = `Answer the question using only the information in the provided documents.
Do not use any outside knowledge. If the documents do not fully answer the question, say so using only what they contain.`

// NewAnswerGeneration builds the answer_generation node: prompts the LLM
// grounded only in the retained documents, then updates the rolling memory
// window via C10 (spec §4.7).
func NewAnswerGeneration(client llm.Client, maxChats int) Node {
	return func(ctx context.Context, state domain.AgentState) (domain.AgentState, error) {
		query := state.UserQuery
		if state.RephrasedQuestion != nil {
			query = *state.RephrasedQuestion
		}

		var b strings.Builder
		b.WriteString("Question: ")
		b.WriteString(query)
		b.WriteString("\n\nDocuments:\n")
		for i, doc := range state.Documents {
			b.WriteString(strconv.Itoa(i + 1))
			b.WriteString(". ")
			b.WriteString(doc.Content)
			b.WriteByte('\n')
		}

		answer, err := client.GenerateText(ctx, generatorSystemPrompt, b.String())
		if err != nil {
			return state, err
		}
		answer = strings.TrimSpace(answer)
		state.GeneratedAnswer = &answer
		state.Conversation = UpdateMemory(state.Conversation, query, answer, maxChats)
		return state, nil
	}
}
