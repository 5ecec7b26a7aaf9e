package agentgraph

import (
	"context"
	"testing"

	"github.com/brightwellhealth/clinicscribe/internal/domain"
)

type memCheckpointer struct {
	states map[string]domain.AgentState
}

func newMemCheckpointer() *memCheckpointer {
	return &memCheckpointer{states: map[string]domain.AgentState{}}
}

func (m *memCheckpointer) Load(ctx context.Context, threadID string) (domain.AgentState, error) {
	if s, ok := m.states[threadID]; ok {
		return s, nil
	}
	return domain.NewAgentState(""), nil
}

func (m *memCheckpointer) Save(ctx context.Context, threadID string, state domain.AgentState) error {
	m.states[threadID] = state
	return nil
}

func (m *memCheckpointer) WithLease(ctx context.Context, threadID string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func passthroughRewriter(ctx context.Context, state domain.AgentState) (domain.AgentState, error) {
	return state, nil
}

func withOneDoc(ctx context.Context, state domain.AgentState) (domain.AgentState, error) {
	state.Documents = []domain.IndexedDoc{{Content: "relevant note"}}
	return state, nil
}

func noDocs(ctx context.Context, state domain.AgentState) (domain.AgentState, error) {
	state.Documents = nil
	return state, nil
}

func graderRetainsAll(ctx context.Context, state domain.AgentState) (domain.AgentState, error) {
	state.ProceedToGenerate = len(state.Documents) > 0
	return state, nil
}

func answerGenerated(ctx context.Context, state domain.AgentState) (domain.AgentState, error) {
	ans := "grounded answer"
	state.GeneratedAnswer = &ans
	return state, nil
}

func fallbackApology(ctx context.Context, state domain.AgentState) (domain.AgentState, error) {
	ans := fallbackApologyMessage
	state.GeneratedAnswer = &ans
	return state, nil
}

func TestGraphHappyPathGeneratesAnswer(t *testing.T) {
	g := New(newMemCheckpointer(), passthroughRewriter, withOneDoc, graderRetainsAll, answerGenerated, fallbackApology)

	final, err := g.Invoke(context.Background(), "thread-1", "what is the diagnosis?")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if final.GeneratedAnswer == nil || *final.GeneratedAnswer != "grounded answer" {
		t.Errorf("expected grounded answer, got %v", final.GeneratedAnswer)
	}
}

func TestGraphNoDocsFallsBack(t *testing.T) {
	g := New(newMemCheckpointer(), passthroughRewriter, noDocs, graderRetainsAll, answerGenerated, fallbackApology)

	final, err := g.Invoke(context.Background(), "thread-2", "irrelevant question")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if final.GeneratedAnswer == nil || *final.GeneratedAnswer != fallbackApologyMessage {
		t.Errorf("expected fallback apology, got %v", final.GeneratedAnswer)
	}
}

func TestGraphCheckpointsStateAcrossInvocations(t *testing.T) {
	ckpt := newMemCheckpointer()
	g := New(ckpt, passthroughRewriter, withOneDoc, graderRetainsAll, answerGenerated, fallbackApology)

	if _, err := g.Invoke(context.Background(), "thread-3", "first question"); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	saved, ok := ckpt.states["thread-3"]
	if !ok {
		t.Fatal("expected state to be checkpointed")
	}
	if saved.GeneratedAnswer == nil {
		t.Error("expected checkpointed state to carry the generated answer")
	}
}
