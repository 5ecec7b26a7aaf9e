package agentgraph

import (
	"strings"

	"github.com/brightwellhealth/clinicscribe/internal/domain"
)

// DefaultMaxChats is the rolling memory window size (spec §4.10's max=3).
const DefaultMaxChats = 3

// UpdateMemory appends {question,answer} to recent, truncates to the last
// max entries, and reassigns keys 1..N contiguously, oldest to newest (spec
// §4.10, invariant 3, property P4).
func UpdateMemory(recent domain.RecentChats, question, answer string, max int) domain.RecentChats {
	if recent == nil {
		recent = domain.RecentChats{}
	}
	if max <= 0 {
		max = DefaultMaxChats
	}

	ordered := orderedTurns(recent)
	ordered = append(ordered, domain.ChatTurn{
		Question: strings.TrimSpace(question),
		Answer:   strings.TrimSpace(answer),
	})
	if len(ordered) > max {
		ordered = ordered[len(ordered)-max:]
	}

	out := make(domain.RecentChats, len(ordered))
	for i, turn := range ordered {
		out[i+1] = turn
	}
	return out
}

// orderedTurns returns recent's turns in insertion order (ascending key),
// since RecentChats' invariant already guarantees contiguous 1..N keys.
func orderedTurns(recent domain.RecentChats) []domain.ChatTurn {
	out := make([]domain.ChatTurn, 0, len(recent))
	for i := 1; i <= len(recent); i++ {
		if turn, ok := recent[i]; ok {
			out = append(out, turn)
		}
	}
	return out
}
