package render

import (
	"bytes"

	"github.com/fogleman/gg"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale     float64
	barHeight float64
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 {
			r.scale = s
		}
	}
}

// WithPNGBarHeight sets the height of the segment row in pixels.
func WithPNGBarHeight(h float64) PNGOption {
	return func(r *pngRenderer) {
		if h > 0 {
			r.barHeight = h
		}
	}
}

// GGMeasurer measures labels with gg's default face, the face RenderPNG
// draws with.
func GGMeasurer() Measurer {
	dc := gg.NewContext(1, 1)
	return MeasureFunc(func(text string) float64 {
		w, _ := dc.MeasureString(text)
		return w
	})
}

// RenderPNG rasterizes b. Build b with [GGMeasurer] for labels that fit
// their boxes exactly.
func RenderPNG(b Bar, p Palette, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0, barHeight: barHeight}
	for _, opt := range opts {
		opt(&r)
	}

	barY := labelHeight + labelGap
	height := barY + r.barHeight

	dc := gg.NewContext(int(b.Width*r.scale+0.5), int(height*r.scale+0.5))
	dc.Scale(r.scale, r.scale)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetHexColor(barBackColor)
	dc.DrawRectangle(0, barY, b.Width, r.barHeight)
	dc.Fill()
	for _, s := range b.Segments {
		dc.SetHexColor(p.Color(s.Mode))
		dc.DrawRectangle(s.Start*b.Width/100, barY, s.Width*b.Width/100, r.barHeight)
		dc.Fill()
	}

	for _, l := range b.Labels {
		anchor := l.Anchor * b.Width / 100
		dc.SetHexColor(p.Color(l.Mode))
		dc.SetLineWidth(1)
		dc.DrawLine(anchor, labelHeight, anchor, height)
		dc.Stroke()
		dc.DrawRoundedRectangle(l.Left, 0, l.Width, labelHeight, labelRadius)
		dc.Fill()
		dc.SetRGB(1, 1, 1)
		dc.DrawStringAnchored(l.Text, l.Left+l.Width/2, labelHeight/2, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
