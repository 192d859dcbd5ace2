package worktime

import (
	"slices"
	"time"

	"github.com/matzehuels/worktime/pkg/config"
)

// Config describes the modes and timespans a Tracker reports on.
type Config struct {
	// Modes lists the valid modes in display order.
	Modes []string
	// Hidden modes are tracked but left out of totals.
	Hidden []string
	// Ratio names the numerator and denominator modes of the ratio rows.
	// Empty disables ratios.
	Ratio []string
	// RatioTimespans are the trailing windows reported next to the overall
	// ratio.
	RatioTimespans []time.Duration
	// HistoryTimespan is the length of the history window.
	HistoryTimespan time.Duration
}

// DefaultConfig returns the tracker configuration of config.Default.
func DefaultConfig() Config {
	return ConfigFrom(config.Default().Tracker)
}

// ConfigFrom converts the file configuration.
func ConfigFrom(c config.TrackerConfig) Config {
	cfg := Config{
		Modes:           slices.Clone(c.Modes),
		Hidden:          slices.Clone(c.Hidden),
		Ratio:           slices.Clone(c.Ratio),
		HistoryTimespan: c.HistoryTimespan.Duration,
	}
	for _, d := range c.RatioTimespans {
		cfg.RatioTimespans = append(cfg.RatioTimespans, d.Duration)
	}
	return cfg
}

func (c Config) hidden(mode string) bool {
	return slices.Contains(c.Hidden, mode)
}
