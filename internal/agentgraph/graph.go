// Package agentgraph implements the conversational agent graph (C7): an
// explicit state machine over AgentState with a tagged NodeId and a
// transition function, replacing the framework-level graph-decorator magic
// the spec's design notes (§9) call out. Nodes are values in a registry, not
// closures captured by a builder DSL.
package agentgraph

import (
	"context"
	"fmt"

	"github.com/brightwellhealth/clinicscribe/internal/domain"
)

// NodeId tags one node in the graph.
type NodeId string

const (
	NodeQueryRewriter  NodeId = "query_rewriter"
	NodeDocRetriever   NodeId = "doc_retriever"
	NodeDocGrader      NodeId = "doc_grader"
	NodeAnswerGenerate NodeId = "answer_generation"
	NodeFallback       NodeId = "fallback_agent"
	nodeEnd            NodeId = ""
)

// Node is one async AgentState -> AgentState step (spec §4.7).
type Node func(ctx context.Context, state domain.AgentState) (domain.AgentState, error)

// Checkpointer is the C8 collaborator: it snapshots AgentState at every node
// boundary and serializes concurrent invocations per ThreadId.
type Checkpointer interface {
	Load(ctx context.Context, threadID string) (domain.AgentState, error)
	Save(ctx context.Context, threadID string, state domain.AgentState) error
	// WithLease runs fn while holding the at-most-one-in-flight lease for
	// threadID (spec §4.8).
	WithLease(ctx context.Context, threadID string, fn func(ctx context.Context) error) error
}

// Graph is the registry of nodes plus the transition function deciding the
// next NodeId after each one runs.
type Graph struct {
	nodes    map[NodeId]Node
	next     func(current NodeId, state domain.AgentState) NodeId
	Checkpoint Checkpointer
}

// New builds the graph described by spec §4.7:
//
//	START -> query_rewriter -> doc_retriever -> doc_grader
//	doc_grader --[proceed_to_generate]--> answer_generation -> END
//	doc_grader --[!proceed_to_generate]--> fallback_agent   -> END
func New(checkpoint Checkpointer, rewriter, retriever, grader, generator, fallback Node) *Graph {
	nodes := map[NodeId]Node{
		NodeQueryRewriter:  rewriter,
		NodeDocRetriever:   retriever,
		NodeDocGrader:      grader,
		NodeAnswerGenerate: generator,
		NodeFallback:       fallback,
	}
	next := func(current NodeId, state domain.AgentState) NodeId {
		switch current {
		case NodeQueryRewriter:
			return NodeDocRetriever
		case NodeDocRetriever:
			return NodeDocGrader
		case NodeDocGrader:
			if NoRelevantDocs(state) == RouteGenerateAnswer {
				return NodeAnswerGenerate
			}
			return NodeFallback
		case NodeAnswerGenerate, NodeFallback:
			return nodeEnd
		default:
			return nodeEnd
		}
	}
	return &Graph{nodes: nodes, next: next, Checkpoint: checkpoint}
}

// Invoke runs the graph for threadID starting from userQuery, resuming from
// the last committed checkpoint and serializing concurrent invocations on
// the same thread (spec §4.8).
func (g *Graph) Invoke(ctx context.Context, threadID, userQuery string) (domain.AgentState, error) {
	var final domain.AgentState
	err := g.Checkpoint.WithLease(ctx, threadID, func(ctx context.Context) error {
		state, err := g.Checkpoint.Load(ctx, threadID)
		if err != nil {
			return err
		}
		state.UserQuery = userQuery

		current := NodeQueryRewriter
		for current != nodeEnd {
			node, ok := g.nodes[current]
			if !ok {
				return fmt.Errorf("agentgraph: unknown node %q", current)
			}
			nextState, err := node(ctx, state)
			if err != nil {
				// Cancellation/failure: the currently-running node is
				// allowed to complete but its commit is skipped (spec §5).
				return fmt.Errorf("agentgraph: node %q: %w", current, err)
			}
			state = nextState
			if err := g.Checkpoint.Save(ctx, threadID, state); err != nil {
				return fmt.Errorf("agentgraph: checkpoint node %q: %w", current, err)
			}
			current = g.next(current, state)
		}
		final = state
		return nil
	})
	return final, err
}
