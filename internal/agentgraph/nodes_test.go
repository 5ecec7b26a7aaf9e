package agentgraph

import (
	"context"
	"errors"
	"testing"

	"github.com/brightwellhealth/clinicscribe/internal/domain"
	"github.com/brightwellhealth/clinicscribe/internal/platform/logger"
)

type fakeLLM struct {
	jsonResult map[string]any
	jsonErr    error
	text       string
	textErr    error
}

func (f *fakeLLM) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	panic("not used")
}

func (f *fakeLLM) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	return f.jsonResult, f.jsonErr
}

func (f *fakeLLM) GenerateText(ctx context.Context, system, user string) (string, error) {
	return f.text, f.textErr
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestFallbackAgentWritesFixedApology(t *testing.T) {
	node := NewFallbackAgent()
	state := domain.NewAgentState("anything")
	state.Conversation = domain.RecentChats{1: {Question: "q", Answer: "a"}}

	got, err := node(context.Background(), state)
	if err != nil {
		t.Fatalf("node: %v", err)
	}
	if got.GeneratedAnswer == nil || *got.GeneratedAnswer != fallbackApologyMessage {
		t.Errorf("answer = %v, want fixed apology", got.GeneratedAnswer)
	}
	if got.Conversation.Len() != 1 {
		t.Errorf("conversation should be untouched, got len %d", got.Conversation.Len())
	}
}

func TestAnswerGenerationUpdatesMemory(t *testing.T) {
	fake := &fakeLLM{text: "  the diagnosis is migraine  "}
	node := NewAnswerGeneration(fake, 3)

	state := domain.NewAgentState("what is the diagnosis?")
	state.Documents = []domain.IndexedDoc{{Content: "patient has migraine"}}

	got, err := node(context.Background(), state)
	if err != nil {
		t.Fatalf("node: %v", err)
	}
	if got.GeneratedAnswer == nil || *got.GeneratedAnswer != "the diagnosis is migraine" {
		t.Errorf("answer = %v, want trimmed text", got.GeneratedAnswer)
	}
	if got.Conversation.Len() != 1 {
		t.Fatalf("expected memory to be updated, len = %d", got.Conversation.Len())
	}
	if got.Conversation[1].Question != "what is the diagnosis?" {
		t.Errorf("question = %q", got.Conversation[1].Question)
	}
}

func TestAnswerGenerationPropagatesLLMError(t *testing.T) {
	fake := &fakeLLM{textErr: errors.New("boom")}
	node := NewAnswerGeneration(fake, 3)

	state := domain.NewAgentState("q")
	_, err := node(context.Background(), state)
	if err == nil {
		t.Fatal("expected error to propagate")
	}
}

func TestDocGraderRetainsOnlyYes(t *testing.T) {
	log := testLogger(t)
	fake := &fakeLLM{jsonResult: map[string]any{"relevance": "Yes"}}
	graderNode := NewDocGrader(log, fake)

	state := domain.NewAgentState("q")
	state.Documents = []domain.IndexedDoc{
		{Content: "relevant", Metadata: domain.IndexedDocMetadata{SourceFile: "a.png"}},
		{Content: "also relevant", Metadata: domain.IndexedDocMetadata{SourceFile: "b.png"}},
	}

	got, err := graderNode(context.Background(), state)
	if err != nil {
		t.Fatalf("node: %v", err)
	}
	if len(got.Documents) != 2 {
		t.Fatalf("expected both documents retained, got %d", len(got.Documents))
	}
	if !got.ProceedToGenerate {
		t.Error("expected ProceedToGenerate = true")
	}
}

func TestDocGraderDropsNo(t *testing.T) {
	log := testLogger(t)
	fake := &fakeLLM{jsonResult: map[string]any{"relevance": "No"}}
	graderNode := NewDocGrader(log, fake)

	state := domain.NewAgentState("q")
	state.Documents = []domain.IndexedDoc{{Content: "irrelevant"}}

	got, err := graderNode(context.Background(), state)
	if err != nil {
		t.Fatalf("node: %v", err)
	}
	if len(got.Documents) != 0 {
		t.Errorf("expected no documents retained, got %d", len(got.Documents))
	}
	if got.ProceedToGenerate {
		t.Error("expected ProceedToGenerate = false")
	}
}

func TestDocGraderPropagatesLLMFailure(t *testing.T) {
	log := testLogger(t)
	fake := &fakeLLM{jsonErr: errors.New("boom")}
	graderNode := NewDocGrader(log, fake)

	state := domain.NewAgentState("q")
	state.Documents = []domain.IndexedDoc{{Content: "doc"}}

	_, err := graderNode(context.Background(), state)
	if err == nil {
		t.Fatal("expected error to propagate per spec §7 (LLMFailure in nodes 2-4 is a graph failure)")
	}
}
