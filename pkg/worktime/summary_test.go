package worktime

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/worktime/pkg/errors"
)

// scenario: 2h of work, 30m of play, then 1h of work still running.
func buildScenario(t *testing.T) *Tracker {
	t.Helper()
	ctx := context.Background()
	tr, clock := newTestTracker(t)

	steps := []struct {
		mode  string
		after time.Duration
	}{
		{"w", 2 * time.Hour},
		{"p", 30 * time.Minute},
		{"w", time.Hour},
	}
	for _, st := range steps {
		if _, err := tr.SwitchMode(ctx, st.mode); err != nil {
			t.Fatal(err)
		}
		clock.Advance(st.after)
	}
	return tr
}

func TestSummaryText(t *testing.T) {
	tr := buildScenario(t)

	s, err := tr.Summary(context.Background(), NumbersText)
	if err != nil {
		t.Fatal(err)
	}

	if s.CurrentMode != "w" || s.CurrentElapsed.String() != "1:00" {
		t.Errorf("current = %s %s, want w 1:00", s.CurrentMode, s.CurrentElapsed)
	}

	var totals []string
	for _, e := range s.Elapsed {
		totals = append(totals, e.Mode+"="+e.Time.String())
	}
	if diff := cmp.Diff([]string{"w=3:00", "p=30", "n=0"}, totals); diff != "" {
		t.Errorf("totals mismatch (-want +got):\n%s", diff)
	}

	if s.RatioStr != "p/w" {
		t.Errorf("RatioStr = %q, want p/w", s.RatioStr)
	}
	var ratios []string
	for _, r := range s.Ratios {
		ratios = append(ratios, r.Timespan+"="+r.Value.String())
	}
	want := []string{"all=0.17", "12 hours=0.17", "2 hours=0.33"}
	if diff := cmp.Diff(want, ratios); diff != "" {
		t.Errorf("ratios mismatch (-want +got):\n%s", diff)
	}

	wantHistory := History{
		Timespan: "12 hours",
		Periods: []HistoryPeriod{
			{Mode: "w", Timespan: "2:00", Width: 16.7},
			{Mode: "p", Timespan: "30", Width: 4.2},
			{Mode: "w", Timespan: "1:00", Width: 8.3},
		},
		Adjustments: []HistoryAdjustment{},
	}
	if diff := cmp.Diff(wantHistory, s.History); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestSummaryHistoryClipsToWindow(t *testing.T) {
	ctx := context.Background()
	tr, clock := newTestTracker(t)
	tr.cfg.HistoryTimespan = time.Hour

	if _, err := tr.SwitchMode(ctx, "w"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(3 * time.Hour)
	if _, err := tr.SwitchMode(ctx, "p"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(15 * time.Minute)

	s, err := tr.Summary(ctx, NumbersValues)
	if err != nil {
		t.Fatal(err)
	}
	want := []HistoryPeriod{
		{Mode: "w", Timespan: "45", Width: 75},
		{Mode: "p", Timespan: "15", Width: 25},
	}
	if diff := cmp.Diff(want, s.History.Periods); diff != "" {
		t.Errorf("periods mismatch (-want +got):\n%s", diff)
	}
	if s.History.Timespan != "1 hour" {
		t.Errorf("Timespan = %q, want %q", s.History.Timespan, "1 hour")
	}
}

func TestSummaryRatioWithoutDenominator(t *testing.T) {
	tr, _ := newTestTracker(t)

	text, err := tr.Summary(context.Background(), NumbersText)
	if err != nil {
		t.Fatal(err)
	}
	if got := text.Ratios[0].Value.String(); got != "-" {
		t.Errorf("ratio text = %q, want -", got)
	}

	values, err := tr.Summary(context.Background(), NumbersValues)
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(values.Ratios[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"timespan":"all","value":null}` {
		t.Errorf("ratio JSON = %s", data)
	}
}

func TestSummaryHidesModes(t *testing.T) {
	ctx := context.Background()
	tr, _ := newTestTracker(t)
	if _, err := tr.Adjust(ctx, "s", 480); err != nil {
		t.Fatal(err)
	}
	s, err := tr.Summary(ctx, NumbersText)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range s.Elapsed {
		if e.Mode == "s" {
			t.Error("hidden mode s listed in totals")
		}
	}
}

func TestSummaryJSON(t *testing.T) {
	tr := buildScenario(t)
	ctx := context.Background()

	for _, numbers := range []Numbers{NumbersText, NumbersValues} {
		t.Run(string(numbers), func(t *testing.T) {
			s, err := tr.Summary(ctx, numbers)
			if err != nil {
				t.Fatal(err)
			}
			data, err := json.Marshal(s)
			if err != nil {
				t.Fatal(err)
			}
			var raw map[string]any
			if err := json.Unmarshal(data, &raw); err != nil {
				t.Fatal(err)
			}
			for _, key := range []string{"era", "eras", "modes", "current_mode", "current_elapsed", "elapsed", "ratios", "ratio_str", "history", "settings"} {
				if _, ok := raw[key]; !ok {
					t.Errorf("summary JSON missing %q", key)
				}
			}
			elapsed := raw["current_elapsed"]
			switch numbers {
			case NumbersText:
				if elapsed != "1:00" {
					t.Errorf("current_elapsed = %v, want \"1:00\"", elapsed)
				}
			case NumbersValues:
				if elapsed != 3600.0 {
					t.Errorf("current_elapsed = %v, want 3600", elapsed)
				}
			}

			var back Summary
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatal(err)
			}
			if back.CurrentElapsed.String() != s.CurrentElapsed.String() {
				t.Errorf("round trip current_elapsed = %q, want %q", back.CurrentElapsed, s.CurrentElapsed)
			}
		})
	}
}

func TestParseNumbers(t *testing.T) {
	for _, in := range []string{"", "text", "values"} {
		if _, err := ParseNumbers(in); err != nil {
			t.Errorf("ParseNumbers(%q) error = %v", in, err)
		}
	}
	if _, err := ParseNumbers("hex"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ParseNumbers(hex) error = %v, want INVALID_FORMAT", err)
	}
}

func TestWritePlain(t *testing.T) {
	tr := buildScenario(t)
	s, err := tr.Summary(context.Background(), NumbersText)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WritePlain(&buf, s); err != nil {
		t.Fatal(err)
	}
	want := "status\tw\t1:00\n" +
		"total\tw\t3:00\n" +
		"total\tp\t30\n" +
		"total\tn\t0\n" +
		"ratio\tp/w\tall\t0.17\n" +
		"ratio\tp/w\t12 hours\t0.17\n" +
		"ratio\tp/w\t2 hours\t0.33"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("WritePlain() mismatch (-want +got):\n%s", diff)
	}
}

func TestHistoryAdjustmentLabel(t *testing.T) {
	a := HistoryAdjustment{Mode: "p", Sign: "+", Magnitude: "1:05"}
	if got := a.Label(); got != "p +1:05" {
		t.Errorf("Label() = %q, want %q", got, "p +1:05")
	}
}
