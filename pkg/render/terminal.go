package render

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	cellFull  = "█"
	cellEmpty = "·"
)

var styleEmpty = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

// RenderTerminal draws b as two lines, labels above segments. The bar must
// have been built in cells, see [TerminalOptions].
func RenderTerminal(b Bar, p Palette) string {
	cols := int(b.Width)
	if cols <= 0 {
		return ""
	}
	return renderLabelLine(b, p, cols) + "\n" + renderSegmentLine(b, p, cols)
}

func renderSegmentLine(b Bar, p Palette, cols int) string {
	var sb strings.Builder
	cursor := 0
	for _, s := range b.Segments {
		from := min(cellAt(s.Start, cols), cols)
		to := min(cellAt(s.Start+s.Width, cols), cols)
		if from > cursor {
			sb.WriteString(styleEmpty.Render(strings.Repeat(cellEmpty, from-cursor)))
			cursor = from
		}
		if to > cursor {
			sb.WriteString(p.Style(s.Mode).Render(strings.Repeat(cellFull, to-cursor)))
			cursor = to
		}
	}
	if cursor < cols {
		sb.WriteString(styleEmpty.Render(strings.Repeat(cellEmpty, cols-cursor)))
	}
	return sb.String()
}

func renderLabelLine(b Bar, p Palette, cols int) string {
	labels := slices.Clone(b.Labels)
	slices.SortStableFunc(labels, func(x, y Label) int { return cmp.Compare(x.Left, y.Left) })

	var sb strings.Builder
	cursor := 0
	for _, l := range labels {
		col := max(int(math.Round(l.Left)), cursor)
		width := lipgloss.Width(l.Text)
		if col+width > cols {
			continue
		}
		sb.WriteString(strings.Repeat(" ", col-cursor))
		sb.WriteString(p.Style(l.Mode).Bold(true).Render(l.Text))
		cursor = col + width
	}
	return sb.String()
}

func cellAt(pct float64, cols int) int {
	return int(math.Round(pct * float64(cols) / 100))
}
