package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/papercomputeco/lifeboat/pkg/dispatch"
	"github.com/papercomputeco/lifeboat/pkg/session"
)

// Message types
type dispatchedMsg struct{ outcome dispatch.Outcome }
type frameMsg struct{ index int }

// dispatchCmd sends the query off the UI goroutine. The outcome is kept by
// the exchange; the message only signals that it is ready.
func dispatchCmd(ctx context.Context, ex *session.Exchange) tea.Cmd {
	return func() tea.Msg {
		return dispatchedMsg{outcome: ex.Dispatch(ctx)}
	}
}

// frameTick shows frame index once d has passed.
func frameTick(d time.Duration, index int) tea.Cmd {
	if d <= 0 {
		return func() tea.Msg { return frameMsg{index: index} }
	}
	return tea.Tick(d, func(time.Time) tea.Msg {
		return frameMsg{index: index}
	})
}
