package worktime

import (
	"regexp"
	"strconv"

	"github.com/matzehuels/worktime/pkg/errors"
)

var adjustmentRegex = regexp.MustCompile(`^(\w+)([+-])(\d+)$`)

// AdjustmentSpec is one parsed adjustment such as "p+20".
type AdjustmentSpec struct {
	Mode    string
	Minutes int
}

// IsAdjustment reports whether arg looks like an adjustment.
func IsAdjustment(arg string) bool {
	return adjustmentRegex.MatchString(arg)
}

// ParseAdjustment parses "<mode>+<minutes>" or "<mode>-<minutes>".
func ParseAdjustment(arg string, modes []string) (AdjustmentSpec, error) {
	m := adjustmentRegex.FindStringSubmatch(arg)
	if m == nil {
		return AdjustmentSpec{}, errors.New(errors.ErrCodeInvalidAdjustment,
			"adjustment syntax incorrect in %q (want e.g. p+20 or w-5)", arg)
	}
	if err := errors.ValidateMode(m[1], modes); err != nil {
		return AdjustmentSpec{}, errors.Wrap(errors.ErrCodeInvalidAdjustment, err, "invalid mode in adjustment %q", arg)
	}
	minutes, err := strconv.Atoi(m[3])
	if err != nil {
		return AdjustmentSpec{}, errors.Wrap(errors.ErrCodeInvalidAdjustment, err, "adjustment amount out of range in %q", arg)
	}
	if m[2] == "-" {
		minutes = -minutes
	}
	return AdjustmentSpec{Mode: m[1], Minutes: minutes}, nil
}

// ParseAdjustments parses every argument; it fails on the first bad one.
func ParseAdjustments(args []string, modes []string) ([]AdjustmentSpec, error) {
	specs := make([]AdjustmentSpec, 0, len(args))
	for _, arg := range args {
		spec, err := ParseAdjustment(arg, modes)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
