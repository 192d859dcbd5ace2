package worktime

import (
	"context"
	"io"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/worktime/pkg/errors"
	"github.com/matzehuels/worktime/pkg/observability"
	"github.com/matzehuels/worktime/pkg/store"
)

// NoMode is how the absence of a running mode is displayed and accepted.
const NoMode = "None"

// SettingAutoUpdate controls whether front ends poll for fresh summaries.
const SettingAutoUpdate = "autoupdate"

// defaultSettings holds every known setting and its default.
var defaultSettings = map[string]bool{
	SettingAutoUpdate: true,
}

// KnownSettings returns the names of all settings.
func KnownSettings() []string {
	return []string{SettingAutoUpdate}
}

// eraNameLength is the number of characters of an era description shown in
// era lists.
const eraNameLength = 22

// Tracker records mode switches and adjustments in a store.
// It is safe for concurrent use.
type Tracker struct {
	store  store.Store
	cfg    Config
	now    func() time.Time
	logger *log.Logger

	mu sync.Mutex
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock sets the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// New creates a Tracker backed by s.
func New(s store.Store, cfg Config, opts ...Option) *Tracker {
	t := &Tracker{
		store:  s,
		cfg:    cfg,
		now:    time.Now,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Config returns the tracker configuration.
func (t *Tracker) Config() Config { return t.cfg }

// Modes returns the configured modes.
func (t *Tracker) Modes() []string { return t.cfg.Modes }

// SwitchResult describes a completed mode switch.
type SwitchResult struct {
	// From is the mode that was running, empty if none.
	From string
	// To is the new mode, empty if none.
	To string
	// Elapsed is the time credited to From.
	Elapsed time.Duration
}

// SwitchMode ends the running period, credits it to its mode and starts a
// period in mode. An empty mode or NoMode stops tracking.
func (t *Tracker) SwitchMode(ctx context.Context, mode string) (SwitchResult, error) {
	if mode == NoMode {
		mode = ""
	}
	if mode != "" {
		if err := errors.ValidateMode(mode, t.cfg.Modes); err != nil {
			return SwitchResult{}, err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	era, err := t.currentEra(ctx, now)
	if err != nil {
		return SwitchResult{}, err
	}
	res := SwitchResult{To: mode}
	if res.From, res.Elapsed, err = t.closePeriod(ctx, era.ID, now); err != nil {
		return SwitchResult{}, err
	}
	if _, err := t.store.StartPeriod(ctx, era.ID, mode, now); err != nil {
		return SwitchResult{}, err
	}

	t.logger.Debug("switched mode", "from", displayMode(res.From), "to", displayMode(mode), "elapsed", res.Elapsed)
	observability.Tracker().OnSwitch(ctx, res.From, mode, res.Elapsed)
	return res, nil
}

// closePeriod ends the open period of an era and credits its mode. It
// returns the mode and length of the closed period.
func (t *Tracker) closePeriod(ctx context.Context, eraID int64, now time.Time) (string, time.Duration, error) {
	open, err := t.store.OpenPeriod(ctx, eraID)
	if err != nil || open == nil {
		return "", 0, err
	}
	elapsed := max(now.Sub(open.Start), 0)
	if err := t.store.EndPeriod(ctx, open.ID, now); err != nil {
		return "", 0, err
	}
	if open.Mode != "" {
		if _, err := t.store.AddElapsed(ctx, eraID, open.Mode, elapsed); err != nil {
			return "", 0, err
		}
	}
	return open.Mode, elapsed, nil
}

// AdjustResult describes a completed adjustment.
type AdjustResult struct {
	Mode  string
	Delta time.Duration
	// Total is the mode's stored total after the adjustment, clamped at zero.
	Total time.Duration
}

// Adjust adds minutes (negative to subtract) to the total of mode and
// records the adjustment in the history.
func (t *Tracker) Adjust(ctx context.Context, mode string, minutes int) (AdjustResult, error) {
	if err := errors.ValidateMode(mode, t.cfg.Modes); err != nil {
		return AdjustResult{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	era, err := t.currentEra(ctx, now)
	if err != nil {
		return AdjustResult{}, err
	}
	delta := time.Duration(minutes) * time.Minute
	total, err := t.store.AddElapsed(ctx, era.ID, mode, delta)
	if err != nil {
		return AdjustResult{}, err
	}
	if _, err := t.store.AddAdjustment(ctx, store.Adjustment{
		EraID:     era.ID,
		Mode:      mode,
		Delta:     delta,
		Timestamp: now,
	}); err != nil {
		return AdjustResult{}, err
	}

	t.logger.Info("adjusted total", "mode", mode, "minutes", minutes, "total", total)
	observability.Tracker().OnAdjust(ctx, mode, delta)
	return AdjustResult{Mode: mode, Delta: delta, Total: total}, nil
}

// ApplyAdjustments applies several parsed adjustments in order.
func (t *Tracker) ApplyAdjustments(ctx context.Context, specs []AdjustmentSpec) ([]AdjustResult, error) {
	results := make([]AdjustResult, 0, len(specs))
	for _, spec := range specs {
		res, err := t.Adjust(ctx, spec.Mode, spec.Minutes)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Clear archives the current era and starts a new one with description.
// No mode is running afterwards.
func (t *Tracker) Clear(ctx context.Context, description string) (*store.Era, error) {
	if err := errors.ValidateEraDescription(description); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	era, err := t.currentEra(ctx, now)
	if err != nil {
		return nil, err
	}
	if _, _, err := t.closePeriod(ctx, era.ID, now); err != nil {
		return nil, err
	}
	next, err := t.store.CreateEra(ctx, description, now)
	if err != nil {
		return nil, err
	}

	t.logger.Info("started new era", "id", next.ID, "archived", era.ID)
	observability.Tracker().OnClear(ctx, next.ID)
	return next, nil
}

// SwitchEra makes an archived era current. A running mode keeps running in
// the new era.
func (t *Tracker) SwitchEra(ctx context.Context, id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	era, err := t.currentEra(ctx, now)
	if err != nil {
		return err
	}
	if era.ID == id {
		return nil
	}
	eras, err := t.store.ListEras(ctx)
	if err != nil {
		return err
	}
	if !slices.ContainsFunc(eras, func(e store.Era) bool { return e.ID == id }) {
		return errors.New(errors.ErrCodeEraNotFound, "era %d not found", id)
	}

	// The current era only changes once the running mode has moved over.
	mode, _, err := t.closePeriod(ctx, era.ID, now)
	if err != nil {
		return err
	}
	if _, _, err := t.closePeriod(ctx, id, now); err != nil {
		return err
	}
	if _, err := t.store.StartPeriod(ctx, id, mode, now); err != nil {
		return err
	}
	if err := t.store.SetCurrentEra(ctx, id); err != nil {
		return err
	}

	t.logger.Info("switched era", "from", era.ID, "to", id, "mode", displayMode(mode))
	return nil
}

// EraInfo is an archived era as offered for switching.
type EraInfo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Eras returns the archived eras.
func (t *Tracker) Eras(ctx context.Context) ([]EraInfo, error) {
	eras, err := t.store.ListEras(ctx)
	if err != nil {
		return nil, err
	}
	infos := []EraInfo{}
	for _, e := range eras {
		if e.Current {
			continue
		}
		infos = append(infos, EraInfo{ID: e.ID, Name: eraName(e)})
	}
	return infos, nil
}

func eraName(e store.Era) string {
	if e.Description == "" {
		return strconv.FormatInt(e.ID, 10)
	}
	r := []rune(e.Description)
	if len(r) > eraNameLength {
		r = r[:eraNameLength]
	}
	return string(r)
}

// SetSetting stores a boolean setting.
func (t *Tracker) SetSetting(ctx context.Context, name string, on bool) error {
	if err := errors.ValidateSettingName(name, KnownSettings()); err != nil {
		return err
	}
	return t.store.SetSetting(ctx, name, on)
}

// Settings returns all known settings, with defaults for unset ones.
func (t *Tracker) Settings(ctx context.Context) (map[string]bool, error) {
	stored, err := t.store.Settings(ctx)
	if err != nil {
		return nil, err
	}
	settings := make(map[string]bool, len(defaultSettings))
	for name, def := range defaultSettings {
		settings[name] = def
		if v, ok := stored[name]; ok {
			settings[name] = v
		}
	}
	return settings, nil
}

// currentEra returns the current era, creating the first one on demand.
func (t *Tracker) currentEra(ctx context.Context, now time.Time) (*store.Era, error) {
	era, err := t.store.CurrentEra(ctx)
	if errors.Is(err, errors.ErrCodeEraNotFound) {
		t.logger.Debug("creating initial era")
		return t.store.CreateEra(ctx, "", now)
	}
	return era, err
}

func displayMode(mode string) string {
	if mode == "" {
		return NoMode
	}
	return mode
}
