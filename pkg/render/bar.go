package render

import (
	"context"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/worktime/pkg/arrange"
	"github.com/matzehuels/worktime/pkg/worktime"
)

// DefaultGlyphWidth is the advance of one character of the label font in
// pixels.
const DefaultGlyphWidth = 7.0

const defaultLabelPadding = 6.0

// Measurer returns the natural width of a label.
type Measurer interface {
	Measure(text string) float64
}

// MeasureFunc adapts a function to a Measurer.
type MeasureFunc func(text string) float64

func (f MeasureFunc) Measure(text string) float64 { return f(text) }

// GlyphWidth measures text assuming every character is px wide.
func GlyphWidth(px float64) Measurer {
	return MeasureFunc(func(text string) float64 {
		return px * float64(utf8.RuneCountInString(text))
	})
}

// CellWidth measures text in terminal cells.
func CellWidth() Measurer {
	return MeasureFunc(func(text string) float64 {
		return float64(lipgloss.Width(text))
	})
}

// Segment is one history period on the bar. Start and Width are
// percentages of the bar width.
type Segment struct {
	Mode     string
	Timespan string
	Start    float64
	Width    float64
}

// Label is one adjustment annotation. Anchor is the percentage the label
// points at; Left and Width are in the bar's units and Offset is Left as a
// percentage.
type Label struct {
	Text   string
	Mode   string
	Anchor float64
	Left   float64
	Width  float64
	Offset float64
}

// Percent returns the label offset as a CSS percentage.
func (l Label) Percent() string { return arrange.FormatPercent(l.Offset) }

// Bar is a history ready to be drawn.
type Bar struct {
	Width     float64
	Timespan  string
	Segments  []Segment
	Labels    []Label
	Passes    int
	Converged bool
}

// BarOption configures NewBar.
type BarOption func(*barBuilder)

type barBuilder struct {
	measure Measurer
	padding float64
	arrange []arrange.Option
}

// WithMeasurer sets how label widths are measured.
func WithMeasurer(m Measurer) BarOption {
	return func(b *barBuilder) {
		if m != nil {
			b.measure = m
		}
	}
}

// WithPadding sets the space added to every label's measured width.
func WithPadding(px float64) BarOption {
	return func(b *barBuilder) { b.padding = max(px, 0) }
}

// WithArrangeOptions passes options to the layout engine.
func WithArrangeOptions(opts ...arrange.Option) BarOption {
	return func(b *barBuilder) { b.arrange = append(b.arrange, opts...) }
}

// TerminalOptions returns the options for a bar measured in terminal cells.
func TerminalOptions() []BarOption {
	return []BarOption{
		WithMeasurer(CellWidth()),
		WithPadding(1),
		WithArrangeOptions(arrange.WithMinSpace(1)),
	}
}

// NewBar lays out h on a bar width units wide.
//
// Periods are placed back to back so that the last one ends at the right
// edge; the part of the window before the first period stays empty.
func NewBar(ctx context.Context, h worktime.History, width float64, opts ...BarOption) Bar {
	bb := barBuilder{measure: GlyphWidth(DefaultGlyphWidth), padding: defaultLabelPadding}
	for _, opt := range opts {
		opt(&bb)
	}

	bar := Bar{Width: width, Timespan: h.Timespan, Converged: true}

	var used float64
	for _, p := range h.Periods {
		used += p.Width
	}
	start := max(100-used, 0)
	for _, p := range h.Periods {
		bar.Segments = append(bar.Segments, Segment{
			Mode:     p.Mode,
			Timespan: p.Timespan,
			Start:    start,
			Width:    p.Width,
		})
		start += p.Width
	}

	if len(h.Adjustments) == 0 {
		return bar
	}
	boxes := make([]arrange.Box, len(h.Adjustments))
	for i, a := range h.Adjustments {
		boxes[i] = arrange.NewBox(a.X, bb.measure.Measure(a.Label())+bb.padding, width)
	}
	res := arrange.ArrangeContext(ctx, boxes, width, bb.arrange...)
	for i, a := range h.Adjustments {
		bar.Labels = append(bar.Labels, Label{
			Text:   a.Label(),
			Mode:   a.Mode,
			Anchor: a.X,
			Left:   res.Boxes[i].Left,
			Width:  res.Boxes[i].Width,
			Offset: res.Offsets[i],
		})
	}
	bar.Passes, bar.Converged = res.Passes, res.Converged
	return bar
}
