package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/worktime/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_CACHE_HOME", "/cache")

	if got, want := Path(), filepath.Join("/cfg", "worktime", "config.toml"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
	cfg := Default()
	if got, want := cfg.Storage.Path, filepath.Join("/data", "worktime", "worktime.db"); got != want {
		t.Errorf("Storage.Path = %q, want %q", got, want)
	}
	if got, want := cfg.Cache.Dir, filepath.Join("/cache", "worktime"); got != want {
		t.Errorf("Cache.Dir = %q, want %q", got, want)
	}
	if got, want := cfg.Cache.LayoutDir(), filepath.Join("/cache", "worktime", "layout"); got != want {
		t.Errorf("LayoutDir() = %q, want %q", got, want)
	}
	if got, want := cfg.Cache.HTTPDir(), filepath.Join("/cache", "worktime", "http"); got != want {
		t.Errorf("HTTPDir() = %q, want %q", got, want)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[tracker]
modes = ["work", "play"]
hidden = []
ratio = ["play", "work"]
ratio_timespans = ["1h"]

[arrange]
min_space = 8.5
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Default()
	want.Tracker.Modes = []string{"work", "play"}
	want.Tracker.Hidden = []string{}
	want.Tracker.Ratio = []string{"play", "work"}
	want.Tracker.RatioTimespans = []Duration{{time.Hour}}
	want.Arrange.MinSpace = 8.5

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Storage.Driver != DriverSQLite {
		t.Errorf("Storage.Driver = %q, want %q", cfg.Storage.Driver, DriverSQLite)
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load(missing) error = %v, want INVALID_CONFIG", err)
	}
}

func TestParseExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	cfg := Default()
	if err := Parse([]byte("[storage]\npath = \"~/wt.db\"\n"), cfg); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if want := filepath.Join(home, "wt.db"); cfg.Storage.Path != want {
		t.Errorf("Storage.Path = %q, want %q", cfg.Storage.Path, want)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "[tracker\nmodes = 1"},
		{"unknown key", "[server]\nport = 80"},
		{"bad duration", "[tracker]\nhistory_timespan = \"soon\""},
		{"empty modes", "[tracker]\nmodes = []"},
		{"bad mode name", "[tracker]\nmodes = [\"w+\"]"},
		{"duplicate mode", "[tracker]\nmodes = [\"w\", \"w\"]\nhidden = []\nratio = []"},
		{"hidden unknown", "[tracker]\nhidden = [\"x\"]"},
		{"ratio arity", "[tracker]\nratio = [\"p\"]"},
		{"ratio unknown", "[tracker]\nratio = [\"p\", \"x\"]"},
		{"zero history", "[tracker]\nhistory_timespan = \"0s\""},
		{"negative ratio span", "[tracker]\nratio_timespans = [\"-1h\"]"},
		{"unknown driver", "[storage]\ndriver = \"postgres\""},
		{"mongo without uri", "[storage]\ndriver = \"mongo\""},
		{"redis without addr", "[cache]\nbackend = \"redis\""},
		{"unknown cache", "[cache]\nbackend = \"memcached\""},
		{"bad server url", "[server]\nurl = \"ftp://host\""},
		{"negative min space", "[arrange]\nmin_space = -1.0"},
		{"zero passes", "[arrange]\nmax_passes = 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Parse([]byte(tt.data), Default())
			if err == nil {
				t.Fatal("Parse() = nil, want error")
			}
			if !errors.IsValidation(err) {
				t.Errorf("Parse() error code = %q, want a validation code", errors.GetCode(err))
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Tracker.HistoryTimespan = Duration{90 * time.Minute}

	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got := Default()
	if err := Parse([]byte(data), got); err != nil {
		t.Fatalf("Parse(Encode()) error = %v\n%s", err, data)
	}
	if got.Tracker.HistoryTimespan.Duration != 90*time.Minute {
		t.Errorf("HistoryTimespan = %v, want 1h30m0s", got.Tracker.HistoryTimespan)
	}
}

func TestArrangeOptions(t *testing.T) {
	if n := len(Default().Arrange.Options()); n != 2 {
		t.Errorf("len(Options()) = %d, want 2", n)
	}
}
