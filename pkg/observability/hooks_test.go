package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Layout hooks
	l := NoopLayoutHooks{}
	l.OnArrange(ctx, 3, 2, true, time.Millisecond)

	// Tracker hooks
	tr := NoopTrackerHooks{}
	tr.OnSwitch(ctx, "w", "p", time.Minute)
	tr.OnAdjust(ctx, "p", -5*time.Minute)
	tr.OnClear(ctx, 2)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "arrange")
	c.OnCacheMiss(ctx, "arrange")
	c.OnCacheSet(ctx, "arrange", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "localhost", "/")
	h.OnResponse(ctx, "GET", "localhost", "/", 200, time.Second)
	h.OnError(ctx, "GET", "localhost", "/", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Layout() should return NoopLayoutHooks by default")
	}
	if _, ok := Tracker().(NoopTrackerHooks); !ok {
		t.Error("Tracker() should return NoopTrackerHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customLayout := &testLayoutHooks{}
	SetLayoutHooks(customLayout)
	if Layout() != customLayout {
		t.Error("SetLayoutHooks should set custom hooks")
	}

	customTracker := &testTrackerHooks{}
	SetTrackerHooks(customTracker)
	if Tracker() != customTracker {
		t.Error("SetTrackerHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Reset() should restore NoopLayoutHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testLayoutHooks{}
	SetLayoutHooks(custom)

	// Setting nil should be ignored
	SetLayoutHooks(nil)

	if Layout() != custom {
		t.Error("SetLayoutHooks(nil) should be ignored")
	}

	Reset()
}

func TestLogHooks(t *testing.T) {
	defer Reset()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogHooks(logger)
	h.Register()

	ctx := context.Background()
	Layout().OnArrange(ctx, 4, 10, false, time.Millisecond)
	Tracker().OnSwitch(ctx, "w", "p", time.Minute)
	HTTP().OnError(ctx, "GET", "localhost", "/", errors.New("boom"))

	out := buf.String()
	for _, want := range []string{"arranged boxes", "switched mode", "request failed", "boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

// Test implementations
type testLayoutHooks struct{ NoopLayoutHooks }
type testTrackerHooks struct{ NoopTrackerHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
