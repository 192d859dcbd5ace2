package cli

import (
	"strconv"
	"time"

	"github.com/matzehuels/worktime/pkg/errors"
	"github.com/matzehuels/worktime/pkg/worktime"
)

// displayMode shows the empty mode as None.
func displayMode(mode string) string {
	if mode == "" {
		return worktime.NoMode
	}
	return mode
}

// signedTime formats a duration with an explicit sign, e.g. "+20" or "-1:05".
func signedTime(d time.Duration) string {
	if d < 0 {
		return worktime.TimeString(d)
	}
	return "+" + worktime.TimeString(d)
}

func strconvID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseEraID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidEra, "invalid era id %q", s)
	}
	return id, nil
}

// parseSwitch parses on/off style setting values.
func parseSwitch(s string) (bool, error) {
	switch s {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, errors.New(errors.ErrCodeInvalidSetting, "value must be on or off, got %q", s)
}
