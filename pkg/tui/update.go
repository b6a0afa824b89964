package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/papercomputeco/lifeboat/pkg/chart"
	"github.com/papercomputeco/lifeboat/pkg/session"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		// The spinner only runs while an answer is pending
		if !m.Pending() {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd

	case dispatchedMsg:
		if m.exchange == nil {
			return m, nil
		}
		m.seq = m.exchange.Reveal()
		m.revealing = true
		m.frame = 0
		m.refresh()

		if m.seq.Len() == 1 {
			return m, m.finish()
		}
		return m, frameTick(m.opts.Pacer.Delay(0), 1)

	case frameMsg:
		if !m.revealing {
			return m, nil
		}
		m.frame = msg.index
		m.refresh()

		if m.frame >= m.seq.Len()-1 {
			return m, m.finish()
		}
		return m, frameTick(m.opts.Pacer.Delay(m.frame), m.frame+1)
	}

	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize(m.width, m.height)
		return m, nil

	case key.Matches(msg, m.keys.NextChart):
		m.chart = m.chart.Next()
		return m, nil

	case key.Matches(msg, m.keys.PrevChart):
		m.chart = m.chart.Prev()
		return m, nil

	case key.Matches(msg, m.keys.Chart1):
		m.chart = chart.Kinds[0]
		return m, nil

	case key.Matches(msg, m.keys.Chart2):
		m.chart = chart.Kinds[1]
		return m, nil

	case key.Matches(msg, m.keys.Chart3):
		m.chart = chart.Kinds[2]
		return m, nil

	case key.Matches(msg, m.keys.PageUp, m.keys.PageDown):
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keys.Clear):
		if err := m.session.Clear(); err != nil {
			m.status = "Wait for the answer before clearing the chat"
			return m, nil
		}
		m.status = ""
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}

	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts an exchange for the typed query. Submissions made while an
// answer is pending, and blank ones, are ignored.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.Pending() {
		return m, nil
	}

	ex, err := m.session.Begin(m.input.Value())
	switch {
	case errors.Is(err, session.ErrEmptyQuery), errors.Is(err, session.ErrBusy):
		return m, nil
	case err != nil:
		m.logger.Error("failed to begin exchange", zap.Error(err))
		m.status = "Could not record the question"
		return m, nil
	}

	m.exchange = ex
	m.revealing = false
	m.status = ""
	m.input.Reset()
	m.refresh()

	return m, tea.Batch(m.spinner.Tick, dispatchCmd(m.ctx, ex))
}

// finish records the assistant turn and releases the session.
func (m *Model) finish() tea.Cmd {
	turn, err := m.exchange.Finish()
	if err != nil {
		m.logger.Error("failed to record answer", zap.Error(err))
		m.status = "Could not record the answer"
	} else {
		m.logger.Debug("answer revealed",
			zap.Int("chars", m.seq.Len()-1),
			zap.Bool("fallback", turn.Fallback),
		)
	}

	m.exchange = nil
	m.revealing = false
	m.refresh()
	return nil
}
