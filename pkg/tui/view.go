package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/papercomputeco/lifeboat/pkg/chart"
	"github.com/papercomputeco/lifeboat/pkg/conversation"
)

// boxed KPI cards: border plus one line of text
const headerHeight = 4

var (
	accent = lipgloss.Color("39")
	muted  = lipgloss.Color("241")
	warn   = lipgloss.Color("214")

	kpiStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2)
	kpiLabelStyle = lipgloss.NewStyle().Foreground(muted)
	kpiValueStyle = lipgloss.NewStyle().Bold(true)

	chatStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(muted)
	chartPaneStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(muted).
			Padding(0, 1)

	userLabelStyle      = lipgloss.NewStyle().Bold(true).Foreground(accent)
	assistantLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	fallbackStyle       = lipgloss.NewStyle().Foreground(warn)
	placeholderStyle    = lipgloss.NewStyle().Italic(true).Foreground(muted)
	spinnerStyle        = lipgloss.NewStyle().Foreground(accent)
	statusStyle         = lipgloss.NewStyle().Foreground(warn)

	tabStyle         = lipgloss.NewStyle().Foreground(muted).Padding(0, 1)
	selectedTabStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).Underline(true).Padding(0, 1)
)

// View implements tea.Model.
func (m Model) View() string {
	chatWidth, chartWidth := m.paneWidths()
	height := m.bodyHeight()

	chat := chatStyle.
		Width(chatWidth - chatStyle.GetHorizontalBorderSize()).
		Height(height - chatStyle.GetVerticalBorderSize()).
		Render(m.chat.View())

	charts := chartPaneStyle.
		Width(chartWidth - chartPaneStyle.GetHorizontalBorderSize()).
		Height(height - chartPaneStyle.GetVerticalBorderSize()).
		Render(m.renderChartPane(chartWidth - chartPaneStyle.GetHorizontalFrameSize()))

	footer := m.input.View()
	if m.status != "" {
		footer = statusStyle.Render(m.status)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		lipgloss.JoinHorizontal(lipgloss.Top, chat, charts),
		footer,
		m.help.View(m.keys),
	)
}

func (m Model) renderHeader() string {
	cards := []string{
		kpi("Total Passengers", fmt.Sprintf("%d", m.summary.Count)),
		kpi("Survival Rate", formatFigure(m.summary.SurvivalPercent(), "%.2f%%")),
		kpi("Average Age", formatFigure(m.summary.AverageAgeRounded(), "%.1f")),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func kpi(label, value string) string {
	return kpiStyle.Render(kpiLabelStyle.Render(label) + " " + kpiValueStyle.Render(value))
}

// formatFigure renders v with format, or "n/a" when there was nothing to
// compute it from.
func formatFigure(v float64, format string) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf(format, v)
}

func (m Model) renderChartPane(width int) string {
	tabs := make([]string, len(chart.Kinds))
	for i, k := range chart.Kinds {
		label := fmt.Sprintf("%d", i+1)
		if k == m.chart {
			tabs[i] = selectedTabStyle.Render(label)
		} else {
			tabs[i] = tabStyle.Render(label)
		}
	}

	body := placeholderStyle.Render("no data")
	if c, ok := m.charts[m.chart]; ok {
		body = chart.RenderText(c, width)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n\n" + body
}

// renderChat lays out every stored turn followed by the live reveal frame.
func (m Model) renderChat() string {
	turns := m.session.Turns()
	if len(turns) == 0 && !m.Pending() {
		return placeholderStyle.Render("Ask a question about the Titanic passengers.")
	}

	var b strings.Builder
	for _, turn := range turns {
		b.WriteString(m.renderTurn(turn))
		b.WriteString("\n\n")
	}

	if m.Pending() {
		b.WriteString(assistantLabelStyle.Render("AI"))
		b.WriteString("\n")
		b.WriteString(m.renderLive())
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderTurn(turn conversation.Turn) string {
	if turn.Role == conversation.RoleUser {
		return userLabelStyle.Render("You") + "\n" + turn.Content
	}

	label := assistantLabelStyle.Render("AI")
	if turn.Fallback {
		return label + "\n" + fallbackStyle.Render(turn.Content)
	}
	return label + "\n" + m.renderMarkdown(turn)
}

// renderMarkdown renders an assistant turn through glamour, caching by hash.
// Raw text is shown if rendering fails.
func (m Model) renderMarkdown(turn conversation.Turn) string {
	if out, ok := m.rendered[turn.Hash]; ok {
		return out
	}
	if m.markdown == nil {
		return turn.Content
	}

	out, err := m.markdown.Render(turn.Content)
	if err != nil {
		return turn.Content
	}
	out = strings.Trim(out, "\n")
	m.rendered[turn.Hash] = out
	return out
}

// renderLive shows the spinner with the placeholder until characters start
// to appear, then the revealed prefix.
func (m Model) renderLive() string {
	if !m.revealing {
		return m.spinner.View() + " " + placeholderStyle.Render(m.opts.Placeholder)
	}

	f := m.seq.At(m.frame)
	if f.Placeholder {
		return m.spinner.View() + " " + placeholderStyle.Render(f.Text)
	}
	return f.Text
}
