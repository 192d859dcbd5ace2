// Package store persists eras, periods, totals, adjustments and settings.
//
// Two backends implement [Store]: [SQLiteStore] for the local single-user
// setup and [MongoStore] for a shared server deployment. [Open] selects one
// from configuration.
//
// All durations are persisted with millisecond precision.
package store

import (
	"context"
	"time"

	"github.com/matzehuels/worktime/pkg/config"
	"github.com/matzehuels/worktime/pkg/errors"
)

// Era is one archived or current tracking log.
type Era struct {
	ID          int64
	Description string
	Current     bool
	Created     time.Time
}

// Period is a contiguous stretch of time spent in one mode. An empty Mode
// means no mode was running. A zero End marks the open period.
type Period struct {
	ID    int64
	EraID int64
	Mode  string
	Start time.Time
	End   time.Time
}

// IsOpen reports whether the period is still running.
func (p Period) IsOpen() bool { return p.End.IsZero() }

// Duration returns the period's length, measured up to now if it is open.
func (p Period) Duration(now time.Time) time.Duration {
	if p.IsOpen() {
		return now.Sub(p.Start)
	}
	return p.End.Sub(p.Start)
}

// Adjustment is a manual change to a mode total.
type Adjustment struct {
	ID        int64
	EraID     int64
	Mode      string
	Delta     time.Duration
	Timestamp time.Time
}

// Store is the persistence interface used by the tracker.
//
// Lookups of missing records return an *errors.Error with code
// ErrCodeEraNotFound or ErrCodeNotFound. Backend failures are wrapped with
// ErrCodeStorage.
type Store interface {
	// CurrentEra returns the era marked current.
	CurrentEra(ctx context.Context) (*Era, error)
	// CreateEra creates a new era and makes it current.
	CreateEra(ctx context.Context, description string, created time.Time) (*Era, error)
	// SetCurrentEra marks the era with id current and all others archived.
	SetCurrentEra(ctx context.Context, id int64) error
	// ListEras returns all eras ordered by id.
	ListEras(ctx context.Context) ([]Era, error)

	// OpenPeriod returns the running period of an era, or nil if none.
	OpenPeriod(ctx context.Context, eraID int64) (*Period, error)
	// StartPeriod opens a new period.
	StartPeriod(ctx context.Context, eraID int64, mode string, start time.Time) (*Period, error)
	// EndPeriod closes the period with id at end.
	EndPeriod(ctx context.Context, id int64, end time.Time) error
	// MovePeriod reassigns a period to another era.
	MovePeriod(ctx context.Context, id, eraID int64) error
	// PeriodsSince returns periods of an era that are open or ended after
	// since, ordered by start.
	PeriodsSince(ctx context.Context, eraID int64, since time.Time) ([]Period, error)

	// AddElapsed adds delta to a mode total, clamping the result at zero,
	// and returns the new total.
	AddElapsed(ctx context.Context, eraID int64, mode string, delta time.Duration) (time.Duration, error)
	// Totals returns all mode totals of an era.
	Totals(ctx context.Context, eraID int64) (map[string]time.Duration, error)

	// AddAdjustment records an adjustment and returns it with its id set.
	AddAdjustment(ctx context.Context, adj Adjustment) (*Adjustment, error)
	// AdjustmentsSince returns adjustments of an era at or after since,
	// ordered by timestamp.
	AdjustmentsSince(ctx context.Context, eraID int64, since time.Time) ([]Adjustment, error)

	// Settings returns all stored boolean settings.
	Settings(ctx context.Context) (map[string]bool, error)
	// SetSetting stores a boolean setting.
	SetSetting(ctx context.Context, name string, value bool) error

	Close() error
}

// Open creates the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		return NewSQLiteStore(cfg.Path)
	case config.DriverMongo:
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown storage driver %q", cfg.Driver)
	}
}

func eraNotFound(id int64) error {
	return errors.New(errors.ErrCodeEraNotFound, "era %d not found", id)
}

func storageErr(err error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeStorage, err, format, args...)
}
