package arrange

import (
	"context"
	"math"

	"github.com/matzehuels/worktime/pkg/errors"
)

// Request is the JSON form of an arrangement job, as accepted by the
// server's /api/arrange endpoint and the arrange command.
type Request struct {
	// TotalWidth is the container width in pixels.
	TotalWidth float64 `json:"total_width"`
	// Boxes are the annotations to place.
	Boxes []RequestBox `json:"boxes"`
	// MinSpace and MaxPasses override the engine defaults when set.
	MinSpace  *float64 `json:"min_space,omitempty"`
	MaxPasses *int     `json:"max_passes,omitempty"`
}

// RequestBox is one box of a Request. Position is the anchor as a
// percentage (0-100) of the total width.
type RequestBox struct {
	Position float64 `json:"position"`
	Width    float64 `json:"width"`
}

// Response is the JSON form of a Result.
type Response struct {
	Offsets   []string  `json:"offsets"`
	Lefts     []float64 `json:"lefts"`
	Passes    int       `json:"passes"`
	Converged bool      `json:"converged"`
}

// Validate checks the request for values the engine cannot place.
func (r Request) Validate() error {
	if !finite(r.TotalWidth) || r.TotalWidth <= 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "total_width must be a positive number")
	}
	for i, b := range r.Boxes {
		if !finite(b.Position) || b.Position < 0 || b.Position > 100 {
			return errors.New(errors.ErrCodeInvalidLayout, "box %d: position must be between 0 and 100", i)
		}
		if !finite(b.Width) || b.Width < 0 {
			return errors.New(errors.ErrCodeInvalidLayout, "box %d: width must not be negative", i)
		}
	}
	if r.MinSpace != nil && (!finite(*r.MinSpace) || *r.MinSpace < 0) {
		return errors.New(errors.ErrCodeInvalidLayout, "min_space must not be negative")
	}
	if r.MaxPasses != nil && *r.MaxPasses < 0 {
		return errors.New(errors.ErrCodeInvalidLayout, "max_passes must not be negative")
	}
	return nil
}

// Options returns opts followed by the request's own overrides.
func (r Request) Options(opts ...Option) []Option {
	if r.MinSpace != nil {
		opts = append(opts, WithMinSpace(*r.MinSpace))
	}
	if r.MaxPasses != nil {
		opts = append(opts, WithMaxPasses(*r.MaxPasses))
	}
	return opts
}

// Solve validates and arranges the request.
func (r Request) Solve(ctx context.Context, opts ...Option) (Response, error) {
	if err := r.Validate(); err != nil {
		return Response{}, err
	}
	boxes := make([]Box, len(r.Boxes))
	for i, b := range r.Boxes {
		boxes[i] = NewBox(b.Position, b.Width, r.TotalWidth)
	}
	res := ArrangeContext(ctx, boxes, r.TotalWidth, r.Options(opts...)...)

	lefts := make([]float64, len(res.Boxes))
	for i, b := range res.Boxes {
		lefts[i] = b.Left
	}
	return Response{
		Offsets:   res.Percents(),
		Lefts:     lefts,
		Passes:    res.Passes,
		Converged: res.Converged,
	}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
