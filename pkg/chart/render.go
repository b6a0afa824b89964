package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	curveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	emptyStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241"))
)

const (
	maxLabelWidth = 12
	barRune       = "█"
	curveRune     = "•"
)

// RenderText draws c as horizontal bars fitting in width columns. Charts with
// no finite values render a "no data" line.
func RenderText(c Chart, width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(c.Title))
	b.WriteString("\n")

	peak := 0.0
	for i, bar := range c.Bars {
		if finite(bar.Value) {
			peak = math.Max(peak, bar.Value)
		}
		if i < len(c.Curve) && finite(c.Curve[i]) {
			peak = math.Max(peak, c.Curve[i])
		}
	}
	if len(c.Bars) == 0 || peak <= 0 {
		b.WriteString(emptyStyle.Render("no data"))
		return b.String()
	}

	labelWidth := 0
	for _, bar := range c.Bars {
		labelWidth = max(labelWidth, min(ansi.StringWidth(bar.Label), maxLabelWidth))
	}

	valueWidth := 8
	barWidth := max(width-labelWidth-valueWidth-3, 1)

	for i, bar := range c.Bars {
		label := ansi.Truncate(bar.Label, labelWidth, "…")
		label += strings.Repeat(" ", labelWidth-ansi.StringWidth(label))

		n := scale(bar.Value, peak, barWidth)
		line := strings.Repeat(barRune, n)

		// Overlay the smoothed curve as a marker at its scaled position
		if i < len(c.Curve) && finite(c.Curve[i]) {
			pos := scale(c.Curve[i], peak, barWidth)
			if pos > 0 {
				line = overlay(line, pos-1)
			}
		}

		fmt.Fprintf(&b, "%s │%s %s\n",
			labelStyle.Render(label),
			barStyle.Render(line),
			formatValue(bar.Value),
		)
	}

	return strings.TrimRight(b.String(), "\n")
}

// overlay places the curve marker at column pos, padding the bar if needed.
func overlay(line string, pos int) string {
	cells := []rune(line)
	for len(cells) <= pos {
		cells = append(cells, ' ')
	}
	cells[pos] = []rune(curveRune)[0]

	// Colour only the marker
	before := string(cells[:pos])
	after := string(cells[pos+1:])
	return before + curveStyle.Render(curveRune) + after
}

func scale(v, peak float64, width int) int {
	if !finite(v) || v <= 0 {
		return 0
	}
	return int(math.Round(v / peak * float64(width)))
}

func formatValue(v float64) string {
	switch {
	case !finite(v):
		return "n/a"
	case v == math.Trunc(v):
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
