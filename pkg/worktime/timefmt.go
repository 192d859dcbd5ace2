package worktime

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// TimeString formats a duration as "H:MM", or as plain minutes when it is
// under an hour. Seconds are truncated.
func TimeString(d time.Duration) string {
	minutes := int64(d / time.Minute)
	neg := minutes < 0
	if neg {
		minutes = -minutes
	}
	var s string
	if hours := minutes / 60; hours > 0 {
		s = fmt.Sprintf("%d:%02d", hours, minutes%60)
	} else {
		s = strconv.FormatInt(minutes, 10)
	}
	if neg {
		return "-" + s
	}
	return s
}

type timeUnit struct {
	name  string
	below float64 // upper bound in seconds
	size  float64 // seconds per unit
}

var humanUnits = []timeUnit{
	{"second", 60, 1},
	{"minute", 60 * 60, 60},
	{"hour", 24 * 60 * 60, 60 * 60},
	{"day", 10 * 24 * 60 * 60, 24 * 60 * 60},
	{"week", 40 * 24 * 60 * 60, 7 * 24 * 60 * 60},
	{"month", 365 * 24 * 60 * 60, 30.5 * 24 * 60 * 60},
	{"year", math.Inf(1), 365 * 24 * 60 * 60},
}

// HumanTime formats a duration as e.g. "3.5 minutes" or "12 hours".
// Quantities under 10 keep one decimal.
func HumanTime(d time.Duration) string {
	seconds := roundHalfUp(d.Seconds())
	for _, u := range humanUnits {
		if seconds < u.below {
			return formatQuantity(seconds/u.size, u.name)
		}
	}
	return "" // unreachable
}

// HumanTimespan labels a history or ratio window, e.g. "12 hours".
func HumanTimespan(d time.Duration) string {
	return HumanTime(d)
}

func formatQuantity(q float64, unit string) string {
	var rounded float64
	if q < 10 {
		rounded = roundHalfUp(q*10) / 10
	} else {
		rounded = roundHalfUp(q)
	}
	s := strconv.FormatFloat(rounded, 'f', -1, 64) + " " + unit
	if rounded != 1 {
		s += "s"
	}
	return s
}

// Opacity fades a display as its data ages: 1 for anything under a minute,
// then decreasing ever more slowly down to a floor of 0.1 at about 1h45m.
func Opacity(age time.Duration) float64 {
	if age < time.Minute {
		return 1
	}
	raw := 11.0021 / math.Log(age.Seconds()*1000)
	opacity := 1 - 3*(1-raw)
	opacity = roundHalfUp(opacity*100) / 100
	return math.Max(0.1, math.Min(1, opacity))
}

func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
