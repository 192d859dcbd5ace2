package arrange

import (
	"cmp"
	"context"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/worktime/pkg/observability"
)

const (
	// DefaultMinSpace is the gap in pixels enforced between separated boxes.
	DefaultMinSpace = 5.0

	// DefaultMaxPasses bounds the number of overlap removal passes.
	DefaultMaxPasses = 10
)

// Option configures Arrange.
type Option func(*arranger)

// WithMinSpace sets the minimum gap between boxes that had to be separated.
func WithMinSpace(px float64) Option {
	return func(a *arranger) { a.minSpace = max(px, 0) }
}

// WithMaxPasses sets the maximum number of overlap removal passes.
func WithMaxPasses(n int) Option {
	return func(a *arranger) { a.maxPasses = max(n, 0) }
}

// WithLogger sets the logger that receives the non-convergence warning.
func WithLogger(l *log.Logger) Option {
	return func(a *arranger) {
		if l != nil {
			a.logger = l
		}
	}
}

type arranger struct {
	minSpace  float64
	maxPasses int
	logger    *log.Logger
}

func newArranger(opts []Option) *arranger {
	a := &arranger{
		minSpace:  DefaultMinSpace,
		maxPasses: DefaultMaxPasses,
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Result is the outcome of an arrangement. Slices are in input order.
type Result struct {
	// Boxes holds the final geometry in pixels.
	Boxes []Box
	// Offsets holds each box's left edge as a percentage of the total width,
	// rounded to one decimal place.
	Offsets []float64
	// Passes is the number of overlap removal passes that moved boxes.
	Passes int
	// Converged is false when overlaps remained after the last allowed pass.
	Converged bool
}

// Percent returns the i-th offset formatted as a CSS percentage.
func (r Result) Percent(i int) string { return FormatPercent(r.Offsets[i]) }

// Percents returns all offsets formatted as CSS percentages.
func (r Result) Percents() []string {
	out := make([]string, len(r.Offsets))
	for i, v := range r.Offsets {
		out[i] = FormatPercent(v)
	}
	return out
}

// Arrange positions boxes inside a container of totalWidth pixels.
// The input slice is not modified.
//
// Boxes wider than the container cannot be contained; they are pinned to the
// right edge and end up with a negative Left. A non-positive totalWidth
// yields zero offsets.
func Arrange(boxes []Box, totalWidth float64, opts ...Option) Result {
	return ArrangeContext(context.Background(), boxes, totalWidth, opts...)
}

// ArrangeContext is like Arrange and reports the run to the registered
// observability layout hooks with ctx.
func ArrangeContext(ctx context.Context, boxes []Box, totalWidth float64, opts ...Option) Result {
	start := time.Now()
	a := newArranger(opts)

	order := sortedOrder(boxes)
	work := make([]Box, len(boxes))
	for i, idx := range order {
		work[i] = boxes[idx]
	}

	for i := range work {
		work[i].Left = work[i].Position - work[i].Width/2
	}
	for i := range work {
		work[i].clamp(totalWidth)
	}

	passes, converged := a.resolve(work, totalWidth)
	if !converged {
		a.logger.Warn("could not remove overlaps", "boxes", len(work), "passes", passes)
	}

	res := Result{
		Boxes:     make([]Box, len(boxes)),
		Offsets:   make([]float64, len(boxes)),
		Passes:    passes,
		Converged: converged,
	}
	for i, idx := range order {
		res.Boxes[idx] = work[i]
		res.Offsets[idx] = Percent(work[i].Left, totalWidth)
	}

	observability.Layout().OnArrange(ctx, len(boxes), passes, converged, time.Since(start))
	return res
}

// resolve spaces out overlapping boxes in place. It returns the number of
// passes that moved boxes and whether the boxes ended up overlap-free.
func (a *arranger) resolve(boxes []Box, totalWidth float64) (int, bool) {
	if len(boxes) < 2 {
		return 0, true
	}
	for pass := range a.maxPasses {
		runs := overlapRuns(boxes)
		if len(runs) == 0 {
			return pass, true
		}
		a.shiftRuns(boxes, runs, totalWidth)
	}
	return a.maxPasses, len(overlapRuns(boxes)) == 0
}

// overlapRuns groups maximal chains of adjacent overlapping boxes. Runs are
// returned as index lists; every box belongs to at most one run.
func overlapRuns(boxes []Box) [][]int {
	var runs [][]int
	var current []int
	assigned := make([]bool, len(boxes))

	for i := 0; i < len(boxes)-1; i++ {
		if !boxes[i].Overlaps(boxes[i+1]) {
			if len(current) > 0 {
				runs = append(runs, current)
			}
			current = nil
			continue
		}
		for _, j := range [2]int{i, i + 1} {
			if !assigned[j] {
				current = append(current, j)
				assigned[j] = true
			}
		}
	}
	if len(current) > 0 {
		runs = append(runs, current)
	}
	return runs
}

// shiftRuns pushes the outer boxes of every run apart and clamps them back
// into the container.
func (a *arranger) shiftRuns(boxes []Box, runs [][]int, totalWidth float64) {
	for _, run := range runs {
		if len(run) < 2 {
			a.logger.Debug("skipping malformed overlap run", "length", len(run))
			return
		}
		first, last := run[0], run[len(run)-1]
		left, right := &boxes[first], &boxes[last]

		if len(run) == 2 {
			shift := (overlapWidth(*left, *right) + a.minSpace) / 2
			left.Left -= shift
			right.Left += shift
		} else {
			left.Left -= overlapWidth(*left, boxes[run[1]]) + a.minSpace
			right.Left += overlapWidth(boxes[run[len(run)-2]], *right) + a.minSpace
		}

		if left.Left < 0 {
			left.Left = 0
		}
		if right.Right() > totalWidth {
			right.Left = totalWidth - right.Width
		}
	}
}

// sortedOrder returns box indices ordered by ideal position. Ties keep their
// input order.
func sortedOrder(boxes []Box) []int {
	order := make([]int, len(boxes))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(boxes[a].Position, boxes[b].Position)
	})
	return order
}
