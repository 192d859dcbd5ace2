package worktime

import (
	"fmt"
	"io"
	"strings"
)

// WritePlain writes the tab-separated plain-text form of s:
//
//	status	<mode>	<elapsed>
//	total	<mode>	<time>
//	ratio	<pair>	<timespan>	<value>
func WritePlain(w io.Writer, s *Summary) error {
	lines := []string{fmt.Sprintf("status\t%s\t%s", s.CurrentMode, s.CurrentElapsed)}
	for _, e := range s.Elapsed {
		lines = append(lines, fmt.Sprintf("total\t%s\t%s", e.Mode, e.Time))
	}
	for _, r := range s.Ratios {
		lines = append(lines, fmt.Sprintf("ratio\t%s\t%s\t%s", s.RatioStr, r.Timespan, r.Value))
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}
