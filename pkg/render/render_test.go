package render

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestRenderSVG(t *testing.T) {
	bar := NewBar(context.Background(), testHistory(), 1000)
	svg := string(RenderSVG(bar, NewPalette([]string{"w", "p"}), WithTitle()))

	checks := []string{
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 1000.0 48.0" width="1000" height="48">`,
		`<title>last 12 hours</title>`,
		`data-mode="p" x="875.00"`,
		`<rect class="adjustment" x="466.50" y="0" width="41.00"`,
		`>p +20</text>`,
		`</svg>`,
	}
	for _, want := range checks {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q:\n%s", want, svg)
		}
	}
	if got := strings.Count(svg, `class="period"`); got != 3 {
		t.Errorf("period rects = %d, want 3", got)
	}
}

func TestRenderSVG_Escapes(t *testing.T) {
	bar := Bar{Width: 100, Timespan: "<1h>", Labels: []Label{{Text: "a&b", Width: 20}}}
	svg := string(RenderSVG(bar, NewPalette(nil), WithTitle(), WithBarHeight(10)))
	if !strings.Contains(svg, "a&amp;b") || !strings.Contains(svg, "&lt;1h&gt;") {
		t.Errorf("SVG not escaped:\n%s", svg)
	}
	if !strings.Contains(svg, `height="34"`) {
		t.Errorf("WithBarHeight not applied:\n%s", svg)
	}
}

func TestRenderPNG(t *testing.T) {
	bar := NewBar(context.Background(), testHistory(), 300, WithMeasurer(GGMeasurer()))
	data, err := RenderPNG(bar, NewPalette([]string{"w", "p"}), WithScale(1))
	if err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 48 {
		t.Errorf("image size = %dx%d, want 300x48", b.Dx(), b.Dy())
	}
}

func TestRenderTerminal(t *testing.T) {
	bar := NewBar(context.Background(), testHistory(), 40, TerminalOptions()...)
	out := RenderTerminal(bar, NewPalette([]string{"w", "p"}))

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("RenderTerminal() = %d lines, want 2:\n%s", len(lines), out)
	}
	if w := lipgloss.Width(lines[1]); w != 40 {
		t.Errorf("segment line width = %d, want 40", w)
	}
	if w := lipgloss.Width(lines[0]); w > 40 {
		t.Errorf("label line width = %d, want <= 40", w)
	}
	for _, label := range []string{"p +20", "w -15"} {
		if !strings.Contains(lines[0], label) {
			t.Errorf("label line %q missing %q", lines[0], label)
		}
	}
	if got := strings.Count(lines[1], cellFull); got != 12 {
		t.Errorf("filled cells = %d, want 12", got)
	}
}

func TestRenderTerminal_ZeroWidth(t *testing.T) {
	if got := RenderTerminal(Bar{}, NewPalette(nil)); got != "" {
		t.Errorf("RenderTerminal(zero) = %q, want empty", got)
	}
}
