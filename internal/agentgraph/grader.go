package agentgraph

import (
	"context"
	"fmt"
	"strings"

	"github.com/brightwellhealth/clinicscribe/internal/clients/llm"
	"github.com/brightwellhealth/clinicscribe/internal/domain"
	"github.com/brightwellhealth/clinicscribe/internal/platform/logger"
)

const graderSystemPrompt = `You decide whether a retrieved document is relevant to a question.
Respond with a single word: Yes if the document could help answer the question, No otherwise.`

var graderSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"relevance": map[string]any{"type": "string", "enum": []string{"Yes", "No"}},
	},
	"required":             []string{"relevance"},
	"additionalProperties": false,
}

// NewDocGrader builds the doc_grader node: one LLM call per retrieved
// document, retaining only those graded Yes (spec §4.7). An LLM failure on
// any document is not a per-item skip here: spec §7 treats LLMFailure in
// nodes 2-4 as a graph failure that propagates and leaves state uncommitted,
// unlike the rewriter's graceful degrade.
func NewDocGrader(log *logger.Logger, client llm.Client) Node {
	return func(ctx context.Context, state domain.AgentState) (domain.AgentState, error) {
		query := state.UserQuery
		if state.RephrasedQuestion != nil {
			query = *state.RephrasedQuestion
		}

		var retained []domain.IndexedDoc
		for _, doc := range state.Documents {
			user := "Question: " + query + "\n\nDocument:\n" + doc.Content
			obj, err := client.GenerateJSON(ctx, graderSystemPrompt, user, "relevance_grade", graderSchema)
			if err != nil {
				return state, fmt.Errorf("grader: source_file %q: %w", doc.Metadata.SourceFile, err)
			}
			relevance, _ := obj["relevance"].(string)
			if strings.EqualFold(strings.TrimSpace(relevance), "yes") {
				retained = append(retained, doc)
			}
		}
		state.Documents = retained
		state.ProceedToGenerate = len(retained) > 0
		return state, nil
	}
}
