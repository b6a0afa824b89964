// Package conversation holds the ordered, append-only record of turns owned
// by a single dashboard session.
package conversation

import (
	"time"

	"github.com/papercomputeco/lifeboat/pkg/llm"
)

// Role tags who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message unit in the conversation. Turns are never mutated
// after they are appended.
type Turn struct {
	Role    Role
	Content string

	// Fallback marks an assistant turn whose content was synthesized locally
	// because the answer service was unavailable.
	Fallback bool

	// Hash chains the turn to its predecessor, see merkle.Chain.
	Hash       string
	ParentHash *string
	CreatedAt  time.Time
}

// hashed is the part of a turn that its hash commits to.
type hashed struct {
	Role     Role   `json:"role"`
	Content  string `json:"content"`
	Fallback bool   `json:"fallback,omitempty"`
}

// Payload converts the turn to its JSON wire shape.
func (t Turn) Payload() llm.TurnPayload {
	return llm.TurnPayload{
		Role:       string(t.Role),
		Content:    t.Content,
		Fallback:   t.Fallback,
		Hash:       t.Hash,
		ParentHash: t.ParentHash,
		CreatedAt:  t.CreatedAt,
	}
}

// Payloads converts a sequence of turns to their wire shape.
func Payloads(turns []Turn) []llm.TurnPayload {
	out := make([]llm.TurnPayload, len(turns))
	for i, t := range turns {
		out[i] = t.Payload()
	}
	return out
}
