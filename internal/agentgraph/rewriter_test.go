package agentgraph

import (
	"errors"
	"testing"

	"context"

	"github.com/brightwellhealth/clinicscribe/internal/domain"
)

func TestQueryRewriterSuccess(t *testing.T) {
	log := testLogger(t)
	fake := &fakeLLM{jsonResult: map[string]any{
		"rephrased_question": "What medication was prescribed for the patient's migraine?",
		"tool_flag":           true,
	}}
	node := NewQueryRewriter(log, fake)

	state := domain.NewAgentState("what medication?")
	got, err := node(context.Background(), state)
	if err != nil {
		t.Fatalf("node: %v", err)
	}
	if got.RephrasedQuestion == nil || *got.RephrasedQuestion != "What medication was prescribed for the patient's migraine?" {
		t.Errorf("rephrased question = %v", got.RephrasedQuestion)
	}
	if !got.ToolFlag {
		t.Error("expected tool flag true")
	}
}

func TestQueryRewriterDegradesOnFailure(t *testing.T) {
	log := testLogger(t)
	fake := &fakeLLM{jsonErr: errors.New("boom")}
	node := NewQueryRewriter(log, fake)

	state := domain.NewAgentState("raw question")
	got, err := node(context.Background(), state)
	if err != nil {
		t.Fatalf("node: %v", err)
	}
	if got.RephrasedQuestion == nil || *got.RephrasedQuestion != "raw question" {
		t.Errorf("expected degrade to raw query, got %v", got.RephrasedQuestion)
	}
	if got.ToolFlag {
		t.Error("expected tool flag false on degrade")
	}
}

func TestQueryRewriterResetsTransientFields(t *testing.T) {
	log := testLogger(t)
	fake := &fakeLLM{jsonResult: map[string]any{"rephrased_question": "q", "tool_flag": false}}
	node := NewQueryRewriter(log, fake)

	prevAnswer := "stale answer"
	state := domain.NewAgentState("q")
	state.GeneratedAnswer = &prevAnswer

	got, err := node(context.Background(), state)
	if err != nil {
		t.Fatalf("node: %v", err)
	}
	if got.GeneratedAnswer != nil {
		t.Error("expected GeneratedAnswer reset to nil")
	}
}
