package llm

import "time"

// RevealChunk is a single NDJSON line streamed to dashboard clients while an
// answer is revealed.
type RevealChunk struct {
	Text        string `json:"text"`
	Placeholder bool   `json:"placeholder,omitempty"`
	Done        bool   `json:"done"`

	// Final chunk carries the stored assistant turn
	Turn *TurnPayload `json:"turn,omitempty"`
}

// TurnPayload is the JSON shape of a conversation turn.
type TurnPayload struct {
	Role       string    `json:"role"`               // "user", "assistant"
	Content    string    `json:"content"`            // The turn text
	Fallback   bool      `json:"fallback,omitempty"` // Assistant turn synthesized because the service was unavailable
	Hash       string    `json:"hash"`
	ParentHash *string   `json:"parent_hash,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
