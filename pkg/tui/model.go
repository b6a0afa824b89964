// Package tui is the terminal rendition of the passenger dashboard: headline
// figures, a chat with the answer service, and the three charts.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/papercomputeco/lifeboat/pkg/chart"
	"github.com/papercomputeco/lifeboat/pkg/passenger"
	"github.com/papercomputeco/lifeboat/pkg/reveal"
	"github.com/papercomputeco/lifeboat/pkg/session"
	"github.com/papercomputeco/lifeboat/pkg/stats"
)

const (
	defaultWidth  = 100
	defaultHeight = 30

	// minimum widths of the two body panes
	minChatWidth  = 30
	minChartWidth = 28
)

// Options configure the terminal dashboard.
type Options struct {
	Pacer       reveal.Pacer
	Placeholder string

	// MarkdownStyle is a glamour standard style name such as "dark" or
	// "notty". Empty selects a style from the terminal background.
	MarkdownStyle string
}

// Model is the bubbletea model of the terminal dashboard.
type Model struct {
	session *session.Session
	summary stats.Summary
	charts  map[chart.Kind]chart.Chart
	chart   chart.Kind
	opts    Options
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	keys    KeyMap
	help    help.Model
	input   textinput.Model
	chat    viewport.Model
	spinner spinner.Model

	markdown *glamour.TermRenderer
	rendered map[string]string // assistant turn hash -> rendered markdown

	// In-flight exchange. seq is only meaningful once revealing is set.
	exchange  *session.Exchange
	revealing bool
	seq       reveal.Sequence
	frame     int

	status string
	width  int
	height int
}

// New creates the dashboard model for sess over ds. Statistics and charts
// are computed once since the dataset never changes.
func New(sess *session.Session, ds *passenger.Dataset, opts Options, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Placeholder == "" {
		opts.Placeholder = reveal.DefaultPlaceholder
	}

	charts := make(map[chart.Kind]chart.Chart, len(chart.Kinds))
	for _, k := range chart.Kinds {
		c, err := chart.Build(k, ds)
		if err != nil {
			logger.Error("failed to build chart", zap.String("kind", string(k)), zap.Error(err))
			continue
		}
		charts[k] = c
	}

	input := textinput.New()
	input.Placeholder = "Ask about the passengers..."
	input.Prompt = "> "
	input.CharLimit = 500
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		session:  sess,
		summary:  stats.Summarize(ds),
		charts:   charts,
		chart:    chart.Kinds[0],
		opts:     opts,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		keys:     NewKeyMap(),
		help:     help.New(),
		input:    input,
		chat:     viewport.New(defaultWidth, defaultHeight),
		spinner:  sp,
		rendered: make(map[string]string),
	}
	m.resize(defaultWidth, defaultHeight)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Pending reports whether an answer is being fetched or revealed.
func (m Model) Pending() bool {
	return m.exchange != nil
}

// Chart returns the selected chart kind.
func (m Model) Chart() chart.Kind {
	return m.chart
}

// resize recomputes pane sizes and the markdown renderer for a new window.
func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width

	chatWidth, _ := m.paneWidths()
	m.chat.Width = chatWidth - chatStyle.GetHorizontalFrameSize()
	m.chat.Height = max(m.bodyHeight()-chatStyle.GetVerticalFrameSize(), 3)
	m.input.Width = max(width-len(m.input.Prompt)-2, 10)

	m.markdown = m.newRenderer(m.chat.Width)
	clear(m.rendered)
	m.refresh()
}

func (m Model) newRenderer(width int) *glamour.TermRenderer {
	style := glamour.WithAutoStyle()
	if m.opts.MarkdownStyle != "" {
		style = glamour.WithStandardStyle(m.opts.MarkdownStyle)
	}

	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(max(width-2, 10)))
	if err != nil {
		m.logger.Warn("markdown rendering disabled", zap.Error(err))
		return nil
	}
	return r
}

func (m Model) paneWidths() (chat, charts int) {
	charts = max(m.width*2/5, minChartWidth)
	chat = max(m.width-charts, minChatWidth)
	return chat, charts
}

func (m Model) bodyHeight() int {
	// header, input and help lines
	reserved := headerHeight + 2 + 1
	if m.help.ShowAll {
		reserved += 3
	}
	return max(m.height-reserved, 5)
}

// refresh rebuilds the chat from the session log plus the live frame and
// keeps the newest line in view.
func (m *Model) refresh() {
	m.chat.SetContent(m.renderChat())
	m.chat.GotoBottom()
}
