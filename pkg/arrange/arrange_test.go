package arrange

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
)

const eps = 1e-9

func TestArrangeSingleBox(t *testing.T) {
	tests := []struct {
		name     string
		position float64
		width    float64
		total    float64
		wantLeft float64
		wantPct  string
	}{
		{
			name:     "centered",
			position: 500, width: 100, total: 1000,
			wantLeft: 450, wantPct: "45.0%",
		},
		{
			name:     "pinned right",
			position: 990, width: 100, total: 1000,
			wantLeft: 900, wantPct: "90.0%",
		},
		{
			name:     "pinned left",
			position: 10, width: 100, total: 1000,
			wantLeft: 0, wantPct: "0.0%",
		},
		{
			name:     "exactly at right edge",
			position: 950, width: 100, total: 1000,
			wantLeft: 900, wantPct: "90.0%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Arrange([]Box{{Position: tt.position, Width: tt.width}}, tt.total)
			if got := res.Boxes[0].Left; math.Abs(got-tt.wantLeft) > eps {
				t.Errorf("Left = %v, want %v", got, tt.wantLeft)
			}
			if got := res.Percent(0); got != tt.wantPct {
				t.Errorf("Percent(0) = %q, want %q", got, tt.wantPct)
			}
			if !res.Converged || res.Passes != 0 {
				t.Errorf("Converged = %v, Passes = %d, want true, 0", res.Converged, res.Passes)
			}
		})
	}
}

func TestArrangeTwoOverlappingBoxes(t *testing.T) {
	boxes := []Box{
		{Position: 500, Width: 200},
		{Position: 520, Width: 200},
	}
	res := Arrange(boxes, 1000)

	if got, want := res.Boxes[0].Left, 307.5; got != want {
		t.Errorf("A.Left = %v, want %v", got, want)
	}
	if got, want := res.Boxes[1].Left, 512.5; got != want {
		t.Errorf("B.Left = %v, want %v", got, want)
	}
	if diff := cmp.Diff([]string{"30.8%", "51.3%"}, res.Percents()); diff != "" {
		t.Errorf("Percents() mismatch (-want +got):\n%s", diff)
	}
	if !res.Converged {
		t.Error("expected convergence")
	}
	if res.Passes != 1 {
		t.Errorf("Passes = %d, want 1", res.Passes)
	}
}

func TestArrangeDoesNotModifyInput(t *testing.T) {
	boxes := []Box{
		{Position: 500, Width: 200, Left: 1},
		{Position: 520, Width: 200, Left: 2},
	}
	_ = Arrange(boxes, 1000)
	if boxes[0].Left != 1 || boxes[1].Left != 2 {
		t.Errorf("input modified: %+v", boxes)
	}
}

func TestArrangeNoOverlapIsNoop(t *testing.T) {
	boxes := []Box{
		{Position: 100, Width: 50},
		{Position: 400, Width: 80},
		{Position: 990, Width: 40},
	}
	res := Arrange(boxes, 1000)

	want := []float64{75, 360, 960}
	for i, w := range want {
		if got := res.Boxes[i].Left; math.Abs(got-w) > eps {
			t.Errorf("box %d Left = %v, want %v", i, got, w)
		}
	}
	if res.Passes != 0 || !res.Converged {
		t.Errorf("Passes = %d, Converged = %v, want 0, true", res.Passes, res.Converged)
	}
}

func TestArrangeTouchingBoxesAreSeparated(t *testing.T) {
	// Centered intervals [0,100] and [100,200] touch.
	boxes := []Box{
		{Position: 50, Width: 100},
		{Position: 150, Width: 100},
	}
	res := Arrange(boxes, 1000)

	// The left box is pinned at 0, so only half the spacing is gained.
	if got := res.Boxes[0].Left; got != 0 {
		t.Errorf("A.Left = %v, want 0", got)
	}
	if got := res.Boxes[1].Left; got != 102.5 {
		t.Errorf("B.Left = %v, want 102.5", got)
	}
	if res.Passes != 1 || !res.Converged {
		t.Errorf("Passes = %d, Converged = %v, want 1, true", res.Passes, res.Converged)
	}
}

func TestArrangeMinSpaceAfterConvergence(t *testing.T) {
	const eps = 1e-9
	tests := []struct {
		name  string
		boxes []Box
		total float64
		// interior runs are never clamped, so the full minimum gap holds.
		interior bool
	}{
		{
			name:     "pair in the middle",
			boxes:    []Box{{Position: 400, Width: 120}, {Position: 430, Width: 90}},
			total:    1000,
			interior: true,
		},
		{
			name: "three in a row",
			boxes: []Box{
				{Position: 300, Width: 60},
				{Position: 320, Width: 60},
				{Position: 340, Width: 60},
			},
			total:    1000,
			interior: true,
		},
		{
			name: "pair against the left edge",
			boxes: []Box{
				{Position: 0, Width: 80},
				{Position: 20, Width: 80},
			},
			total: 1000,
		},
		{
			name: "cluster against the right edge",
			boxes: []Box{
				{Position: 960, Width: 50},
				{Position: 980, Width: 50},
				{Position: 995, Width: 50},
			},
			total: 1000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Arrange(tt.boxes, tt.total)
			if !res.Converged {
				t.Fatalf("did not converge after %d passes", res.Passes)
			}
			assertContained(t, res.Boxes, tt.total)
			for i := 0; i < len(res.Boxes)-1; i++ {
				gap := res.Boxes[i+1].Left - res.Boxes[i].Right()
				if gap <= 0 {
					t.Errorf("boxes %d and %d overlap (gap %v)", i, i+1, gap)
				}
				if tt.interior && gap < DefaultMinSpace-eps {
					t.Errorf("gap between boxes %d and %d = %v, want at least %v", i, i+1, gap, DefaultMinSpace)
				}
			}
		})
	}
}

func TestArrangePairGapIsMinSpace(t *testing.T) {
	res := Arrange([]Box{{Position: 400, Width: 120}, {Position: 430, Width: 90}}, 1000)
	gap := res.Boxes[1].Left - res.Boxes[0].Right()
	if math.Abs(gap-DefaultMinSpace) > 1e-6 {
		t.Errorf("gap = %v, want %v", gap, DefaultMinSpace)
	}
}

func TestArrangeThreeBoxRunMovesOnlyOuterBoxes(t *testing.T) {
	boxes := []Box{
		{Position: 300, Width: 60},
		{Position: 320, Width: 60},
		{Position: 340, Width: 60},
	}
	res := Arrange(boxes, 1000, WithMaxPasses(1))

	// Centered lefts are 270, 290, 310; each neighbour overlaps by 40.
	want := []float64{270 - 45, 290, 310 + 45}
	for i, w := range want {
		if got := res.Boxes[i].Left; math.Abs(got-w) > eps {
			t.Errorf("box %d Left = %v, want %v", i, got, w)
		}
	}
	if res.Passes != 1 {
		t.Errorf("Passes = %d, want 1", res.Passes)
	}
}

func TestArrangeIdempotent(t *testing.T) {
	const total = 1000.0
	boxes := []Box{
		{Position: 300, Width: 60},
		{Position: 320, Width: 60},
		{Position: 340, Width: 60},
		{Position: 700, Width: 100},
	}
	first := Arrange(boxes, total)
	if !first.Converged {
		t.Fatal("first arrangement did not converge")
	}

	again := make([]Box, len(first.Boxes))
	for i, b := range first.Boxes {
		again[i] = Box{Position: b.Center(), Width: b.Width}
	}
	second := Arrange(again, total)

	if diff := cmp.Diff(first.Offsets, second.Offsets); diff != "" {
		t.Errorf("offsets changed (-first +second):\n%s", diff)
	}
	if second.Passes != 0 {
		t.Errorf("second run Passes = %d, want 0", second.Passes)
	}
}

func TestArrangePassCap(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.WarnLevel})

	// Five 300px boxes cannot fit into 1000px.
	var boxes []Box
	for i := range 5 {
		boxes = append(boxes, Box{Position: 400 + float64(i)*20, Width: 300})
	}
	res := Arrange(boxes, 1000, WithLogger(logger))

	if res.Converged {
		t.Error("expected non-convergence")
	}
	if res.Passes != DefaultMaxPasses {
		t.Errorf("Passes = %d, want %d", res.Passes, DefaultMaxPasses)
	}
	if len(res.Offsets) != len(boxes) {
		t.Fatalf("got %d offsets, want %d", len(res.Offsets), len(boxes))
	}
	if !strings.Contains(buf.String(), "could not remove overlaps") {
		t.Errorf("expected warning, got %q", buf.String())
	}
	assertContained(t, res.Boxes, 1000)
}

func TestArrangeCustomOptions(t *testing.T) {
	boxes := []Box{
		{Position: 500, Width: 200},
		{Position: 520, Width: 200},
	}
	res := Arrange(boxes, 1000, WithMinSpace(15))

	gap := res.Boxes[1].Left - res.Boxes[0].Right()
	if math.Abs(gap-15) > eps {
		t.Errorf("gap = %v, want 15", gap)
	}

	res = Arrange(boxes, 1000, WithMaxPasses(0))
	if res.Converged || res.Passes != 0 {
		t.Errorf("WithMaxPasses(0): Converged = %v, Passes = %d", res.Converged, res.Passes)
	}
}

func TestArrangeUnsortedInput(t *testing.T) {
	sorted := []Box{
		{Position: 500, Width: 200},
		{Position: 520, Width: 200},
	}
	reversed := []Box{sorted[1], sorted[0]}

	a := Arrange(sorted, 1000)
	b := Arrange(reversed, 1000)

	if diff := cmp.Diff([]string{"51.3%", "30.8%"}, b.Percents()); diff != "" {
		t.Errorf("reversed input not reported in input order (-want +got):\n%s", diff)
	}
	if a.Offsets[0] != b.Offsets[1] || a.Offsets[1] != b.Offsets[0] {
		t.Errorf("offsets differ: %v vs %v", a.Offsets, b.Offsets)
	}
}

func TestArrangeEmptyAndDegenerate(t *testing.T) {
	res := Arrange(nil, 1000)
	if len(res.Boxes) != 0 || !res.Converged {
		t.Errorf("empty input: %+v", res)
	}

	res = Arrange([]Box{{Position: 10, Width: 50}}, 0)
	if res.Offsets[0] != 0 {
		t.Errorf("zero width container offset = %v, want 0", res.Offsets[0])
	}
}

func TestOverlapRuns(t *testing.T) {
	tests := []struct {
		name  string
		lefts []float64
		want  [][]int
	}{
		{name: "none", lefts: []float64{0, 20, 40}, want: nil},
		{name: "single pair", lefts: []float64{0, 5, 40}, want: [][]int{{0, 1}}},
		{name: "chain", lefts: []float64{0, 5, 10, 40}, want: [][]int{{0, 1, 2}}},
		{name: "two runs", lefts: []float64{0, 5, 40, 45}, want: [][]int{{0, 1}, {2, 3}}},
		{name: "touching", lefts: []float64{0, 10}, want: [][]int{{0, 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			boxes := make([]Box, len(tt.lefts))
			for i, l := range tt.lefts {
				boxes[i] = Box{Left: l, Width: 10}
			}
			if diff := cmp.Diff(tt.want, overlapRuns(boxes)); diff != "" {
				t.Errorf("overlapRuns mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		left, total float64
		want        string
	}{
		{307.5, 1000, "30.8%"},
		{512.5, 1000, "51.3%"},
		{900, 1000, "90.0%"},
		{0, 1000, "0.0%"},
		{1, 3, "33.3%"},
		{2, 3, "66.7%"},
		{0.25, 500, "0.1%"},
	}
	for _, tt := range tests {
		if got := FormatPercent(Percent(tt.left, tt.total)); got != tt.want {
			t.Errorf("Percent(%v, %v) = %q, want %q", tt.left, tt.total, got, tt.want)
		}
	}
}

func TestNewBox(t *testing.T) {
	b := NewBox(37.5, 80, 800)
	if b.Position != 300 || b.Left != 300 || b.Width != 80 {
		t.Errorf("NewBox = %+v", b)
	}
}

func assertContained(t *testing.T, boxes []Box, total float64) {
	t.Helper()
	for i, b := range boxes {
		if b.Left < -eps || b.Right() > total+eps {
			t.Errorf("box %d [%v, %v] outside [0, %v]", i, b.Left, b.Right(), total)
		}
	}
}
