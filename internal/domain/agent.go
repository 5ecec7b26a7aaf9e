package domain

// ChatTurn is one remembered {question, answer} pair.
type ChatTurn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// RecentChats is the bounded, contiguously-keyed rolling memory window
// (spec §3, invariant 3): keys 1..N, newest at N, N <= MAX_CHATS.
type RecentChats map[int]ChatTurn

// Len returns the number of remembered turns.
func (r RecentChats) Len() int { return len(r) }

// AgentState flows through the agent graph (C7), checkpointed at every node
// boundary by the Conversation Store (C8).
type AgentState struct {
	UserQuery string `json:"user_query"`

	RephrasedQuestion *string     `json:"rephrased_question"`
	Conversation      RecentChats `json:"conversation"`
	ToolFlag          bool        `json:"tool_flag"`
	Documents         []IndexedDoc `json:"documents"`
	ProceedToGenerate bool        `json:"proceed_to_generate"`
	GeneratedAnswer   *string     `json:"generated_answer"`
}

// NewAgentState seeds a fresh state for a new invocation; transient fields
// are left unset until query_rewriter initializes them (spec §4.7).
func NewAgentState(userQuery string) AgentState {
	return AgentState{UserQuery: userQuery}
}
