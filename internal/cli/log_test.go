package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLoggerLevelFilter(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		want  []string
	}{
		{name: "default", level: LogInfo, want: []string{"switched mode"}},
		{name: "verbose", level: LogDebug, want: []string{"opened store", "switched mode"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			logger.Debug("opened store", "driver", "sqlite")
			logger.Info("switched mode", "to", "w")

			var got []string
			for _, msg := range []string{"opened store", "switched mode"} {
				if strings.Contains(buf.String(), msg) {
					got = append(got, msg)
				}
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("logged %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoggerTimestamp(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, LogInfo).Info("served summary")

	if !regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} `).MatchString(buf.String()) {
		t.Errorf("line %q does not start with an HH:MM:SS.ms timestamp", buf.String())
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(newLogger(&buf, LogInfo))
	p.done("Rendered history bar")

	if !regexp.MustCompile(`Rendered history bar \(\d+(\.\d+)?m?s\)`).MatchString(buf.String()) {
		t.Errorf("line %q does not report the elapsed time", buf.String())
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext without a logger should return log.Default()")
	}

	var buf bytes.Buffer
	logger := newLogger(&buf, LogInfo)
	ctx := withLogger(context.Background(), logger)
	if loggerFromContext(ctx) != logger {
		t.Error("loggerFromContext should return the attached logger")
	}
}
