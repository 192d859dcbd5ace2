package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

const (
	labelHeight  = 18.0
	labelGap     = 6.0
	barHeight    = 24.0
	labelRadius  = 3.0
	fontSize     = 11.0
	barBackColor = "#f4f4f4"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	barHeight float64
	title     bool
}

// WithBarHeight sets the height of the segment row in pixels.
func WithBarHeight(h float64) SVGOption {
	return func(r *svgRenderer) {
		if h > 0 {
			r.barHeight = h
		}
	}
}

// WithTitle adds the history timespan as the document title.
func WithTitle() SVGOption { return func(r *svgRenderer) { r.title = true } }

// RenderSVG renders b as an SVG document b.Width pixels wide.
func RenderSVG(b Bar, p Palette, opts ...SVGOption) []byte {
	r := svgRenderer{barHeight: barHeight}
	for _, opt := range opts {
		opt(&r)
	}

	barY := labelHeight + labelGap
	height := barY + r.barHeight

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		b.Width, height, b.Width, height)
	if r.title {
		fmt.Fprintf(&buf, "  <title>last %s</title>\n", escape(b.Timespan))
	}

	fmt.Fprintf(&buf, `  <rect class="bar" x="0" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
		barY, b.Width, r.barHeight, barBackColor)
	for _, s := range b.Segments {
		fmt.Fprintf(&buf, `  <rect class="period" data-mode="%s" x="%.2f" y="%.1f" width="%.2f" height="%.1f" fill="%s"><title>%s %s</title></rect>`+"\n",
			escape(s.Mode), s.Start*b.Width/100, barY, s.Width*b.Width/100, r.barHeight, p.Color(s.Mode),
			escape(s.Mode), escape(s.Timespan))
	}

	for _, l := range b.Labels {
		color := p.Color(l.Mode)
		anchor := l.Anchor * b.Width / 100
		fmt.Fprintf(&buf, `  <line x1="%.2f" y1="%.1f" x2="%.2f" y2="%.1f" stroke="%s"/>`+"\n",
			anchor, labelHeight, anchor, height, color)
		fmt.Fprintf(&buf, `  <rect class="adjustment" x="%.2f" y="0" width="%.2f" height="%.1f" rx="%.0f" fill="%s"/>`+"\n",
			l.Left, l.Width, labelHeight, labelRadius, color)
		fmt.Fprintf(&buf, `  <text x="%.2f" y="%.1f" text-anchor="middle" dominant-baseline="central" font-family="monospace" font-size="%.0f" fill="#fff">%s</text>`+"\n",
			l.Left+l.Width/2, labelHeight/2, fontSize, escape(l.Text))
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
