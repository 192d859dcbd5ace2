package worktime

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/matzehuels/worktime/pkg/arrange"
	"github.com/matzehuels/worktime/pkg/store"
)

// Summary is the complete state shown by front ends.
type Summary struct {
	Era            string          `json:"era"`
	Eras           []EraInfo       `json:"eras"`
	Modes          []string        `json:"modes"`
	CurrentMode    string          `json:"current_mode"`
	CurrentElapsed Number          `json:"current_elapsed"`
	Elapsed        []Total         `json:"elapsed"`
	Ratios         []Ratio         `json:"ratios"`
	RatioStr       string          `json:"ratio_str"`
	History        History         `json:"history"`
	Settings       map[string]bool `json:"settings"`
}

// Total is the accumulated time of one mode.
type Total struct {
	Mode string `json:"mode"`
	Time Number `json:"time"`
}

// Ratio is the ratio of the configured mode pair over one timespan.
type Ratio struct {
	Timespan string `json:"timespan"`
	Value    Number `json:"value"`
}

// History is the recent activity within the history window.
type History struct {
	Timespan    string              `json:"timespan"`
	Periods     []HistoryPeriod     `json:"periods"`
	Adjustments []HistoryAdjustment `json:"adjustments"`
}

// HistoryPeriod is a period clipped to the history window. Width is its
// share of the window in percent.
type HistoryPeriod struct {
	Mode     string  `json:"mode"`
	Timespan string  `json:"timespan"`
	Width    float64 `json:"width"`
}

// HistoryAdjustment is an adjustment within the history window. X is its
// position in percent of the window from the left.
type HistoryAdjustment struct {
	Mode      string  `json:"mode"`
	Sign      string  `json:"sign"`
	Magnitude string  `json:"magnitude"`
	X         float64 `json:"x"`
}

// Label returns the text shown in an adjustment box, e.g. "p +20".
func (a HistoryAdjustment) Label() string {
	return a.Mode + " " + a.Sign + a.Magnitude
}

// Summary assembles the current state of the tracker.
func (t *Tracker) Summary(ctx context.Context, numbers Numbers) (*Summary, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	era, err := t.currentEra(ctx, now)
	if err != nil {
		return nil, err
	}

	eras, err := t.Eras(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := t.Settings(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := t.store.Totals(ctx, era.ID)
	if err != nil {
		return nil, err
	}
	open, err := t.store.OpenPeriod(ctx, era.ID)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		Era:         era.Description,
		Eras:        eras,
		Modes:       slices.Clone(t.cfg.Modes),
		CurrentMode: NoMode,
		Settings:    settings,
	}

	var currentElapsed time.Duration
	if open != nil {
		currentElapsed = max(now.Sub(open.Start), 0)
		s.CurrentMode = displayMode(open.Mode)
		if open.Mode != "" {
			totals[open.Mode] += currentElapsed
		}
	}
	s.CurrentElapsed = durationNumber(currentElapsed, numbers)

	for _, mode := range t.visibleModes(totals) {
		s.Elapsed = append(s.Elapsed, Total{Mode: mode, Time: durationNumber(totals[mode], numbers)})
	}

	if err := t.addRatios(ctx, s, era.ID, totals, now, numbers); err != nil {
		return nil, err
	}
	if s.History, err = t.history(ctx, era.ID, now); err != nil {
		return nil, err
	}
	return s, nil
}

// visibleModes returns the configured modes followed by any other stored
// modes in name order, without hidden ones.
func (t *Tracker) visibleModes(totals map[string]time.Duration) []string {
	var extra []string
	for mode := range totals {
		if !slices.Contains(t.cfg.Modes, mode) {
			extra = append(extra, mode)
		}
	}
	sort.Strings(extra)

	var modes []string
	for _, mode := range append(slices.Clone(t.cfg.Modes), extra...) {
		if !t.cfg.hidden(mode) {
			modes = append(modes, mode)
		}
	}
	return modes
}

func (t *Tracker) addRatios(ctx context.Context, s *Summary, eraID int64, totals map[string]time.Duration, now time.Time, numbers Numbers) error {
	s.Ratios = []Ratio{}
	if len(t.cfg.Ratio) != 2 {
		return nil
	}
	num, den := t.cfg.Ratio[0], t.cfg.Ratio[1]
	s.RatioStr = num + "/" + den

	s.Ratios = append(s.Ratios, Ratio{Timespan: "all", Value: ratioNumber(totals[num], totals[den], numbers)})
	for _, span := range t.cfg.RatioTimespans {
		window, err := t.windowTotals(ctx, eraID, now.Add(-span), now)
		if err != nil {
			return err
		}
		s.Ratios = append(s.Ratios, Ratio{
			Timespan: HumanTimespan(span),
			Value:    ratioNumber(window[num], window[den], numbers),
		})
	}
	return nil
}

// windowTotals sums the time spent per mode within [since, now], including
// adjustments made within the window, clamped at zero.
func (t *Tracker) windowTotals(ctx context.Context, eraID int64, since, now time.Time) (map[string]time.Duration, error) {
	periods, err := t.store.PeriodsSince(ctx, eraID, since)
	if err != nil {
		return nil, err
	}
	adjs, err := t.store.AdjustmentsSince(ctx, eraID, since)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]time.Duration)
	for _, p := range periods {
		if p.Mode == "" {
			continue
		}
		start, end := clip(p, since, now)
		totals[p.Mode] += end.Sub(start)
	}
	for _, a := range adjs {
		totals[a.Mode] = max(totals[a.Mode]+a.Delta, 0)
	}
	return totals, nil
}

func (t *Tracker) history(ctx context.Context, eraID int64, now time.Time) (History, error) {
	span := t.cfg.HistoryTimespan
	since := now.Add(-span)
	h := History{
		Timespan:    HumanTimespan(span),
		Periods:     []HistoryPeriod{},
		Adjustments: []HistoryAdjustment{},
	}

	periods, err := t.store.PeriodsSince(ctx, eraID, since)
	if err != nil {
		return h, err
	}
	for _, p := range periods {
		start, end := clip(p, since, now)
		if !end.After(start) {
			continue
		}
		d := end.Sub(start)
		h.Periods = append(h.Periods, HistoryPeriod{
			Mode:     displayMode(p.Mode),
			Timespan: TimeString(d),
			Width:    arrange.Percent(d.Seconds(), span.Seconds()),
		})
	}

	adjs, err := t.store.AdjustmentsSince(ctx, eraID, since)
	if err != nil {
		return h, err
	}
	for _, a := range adjs {
		h.Adjustments = append(h.Adjustments, historyAdjustment(a, since, span))
	}
	return h, nil
}

func historyAdjustment(a store.Adjustment, since time.Time, span time.Duration) HistoryAdjustment {
	sign, magnitude := "+", a.Delta
	if a.Delta < 0 {
		sign, magnitude = "-", -a.Delta
	}
	return HistoryAdjustment{
		Mode:      displayMode(a.Mode),
		Sign:      sign,
		Magnitude: TimeString(magnitude),
		X:         arrange.Percent(a.Timestamp.Sub(since).Seconds(), span.Seconds()),
	}
}

// clip returns the part of p that lies within [since, now].
func clip(p store.Period, since, now time.Time) (time.Time, time.Time) {
	start, end := p.Start, p.End
	if p.IsOpen() || end.After(now) {
		end = now
	}
	if start.Before(since) {
		start = since
	}
	if end.Before(start) {
		end = start
	}
	return start, end
}

func durationNumber(d time.Duration, numbers Numbers) Number {
	return newNumber(d.Truncate(time.Second).Seconds(), TimeString(d), numbers)
}

func ratioNumber(num, den time.Duration, numbers Numbers) Number {
	if den <= 0 {
		return nullNumber("-", numbers)
	}
	v := num.Seconds() / den.Seconds()
	return newNumber(v, fmt.Sprintf("%0.2f", v), numbers)
}
