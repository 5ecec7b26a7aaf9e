package agentgraph

import (
	"context"

	"github.com/brightwellhealth/clinicscribe/internal/clients/llm"
	"github.com/brightwellhealth/clinicscribe/internal/domain"
	"github.com/brightwellhealth/clinicscribe/internal/ingestion/indexbuilder"
	"github.com/brightwellhealth/clinicscribe/internal/vectorstore/sqlitevec"
)

// DefaultRetrieveK is the retrieve() default k (spec §4.7).
const DefaultRetrieveK = 1

// NewDocRetriever builds the doc_retriever node. An empty result is not an
// error (spec §4.7); a missing index is, and propagates as IndexAbsent
// (spec §7).
func NewDocRetriever(embedder llm.Client, index *sqlitevec.Lazy, k int) Node {
	if k <= 0 {
		k = DefaultRetrieveK
	}
	return func(ctx context.Context, state domain.AgentState) (domain.AgentState, error) {
		query := state.UserQuery
		if state.RephrasedQuestion != nil {
			query = *state.RephrasedQuestion
		}
		idx, err := index.Get()
		if err != nil {
			return state, err
		}
		results, err := indexbuilder.Retrieve(ctx, embedder, idx, query, k)
		if err != nil {
			return state, err
		}
		docs := make([]domain.IndexedDoc, 0, len(results))
		for _, r := range results {
			docs = append(docs, r.Doc)
		}
		state.Documents = docs
		return state, nil
	}
}
