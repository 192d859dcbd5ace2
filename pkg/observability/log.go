package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug-level entries to
// a logger. Errors are logged at warn level.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks creates log-backed hooks. A nil logger uses log.Default().
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{Logger: l}
}

// Register installs h for all hook categories.
func (h *LogHooks) Register() {
	SetLayoutHooks(h)
	SetTrackerHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnArrange(_ context.Context, boxes, passes int, converged bool, d time.Duration) {
	h.Logger.Debug("arranged boxes", "boxes", boxes, "passes", passes, "converged", converged, "duration", d)
}

func (h *LogHooks) OnSwitch(_ context.Context, from, to string, elapsed time.Duration) {
	h.Logger.Debug("switched mode", "from", from, "to", to, "elapsed", elapsed)
}

func (h *LogHooks) OnAdjust(_ context.Context, mode string, delta time.Duration) {
	h.Logger.Debug("adjusted total", "mode", mode, "delta", delta)
}

func (h *LogHooks) OnClear(_ context.Context, eraID int64) {
	h.Logger.Debug("started era", "era", eraID)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Warn("request failed", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ LayoutHooks  = (*LogHooks)(nil)
	_ TrackerHooks = (*LogHooks)(nil)
	_ CacheHooks   = (*LogHooks)(nil)
	_ HTTPHooks    = (*LogHooks)(nil)
)
