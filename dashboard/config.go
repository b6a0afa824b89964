package dashboard

import (
	"time"

	"github.com/papercomputeco/lifeboat/pkg/reveal"
)

// Config is the dashboard server configuration.
type Config struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string

	// SessionTTL is how long an idle session keeps its conversation.
	// Zero disables pruning.
	SessionTTL time.Duration

	// Placeholder is the first reveal frame streamed for every answer.
	Placeholder string

	// Pacer spaces out streamed reveal frames.
	Pacer reveal.Pacer
}
