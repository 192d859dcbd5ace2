package httputil

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/worktime/pkg/arrange"
	"github.com/matzehuels/worktime/pkg/errors"
)

const summaryJSON = `{"era":"1","modes":["w","p"],"current_mode":"w","current_elapsed":"1:05",` +
	`"elapsed":[{"mode":"w","time":"3:00"},{"mode":"p","time":"30"}],"ratio_str":"p/w"}`

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cache, err := NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	c, err := NewClient(srv.URL+"/", cache)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.retryDelay = time.Millisecond
	return c
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"http://localhost:8080", false},
		{"https://worktime.example.com/", false},
		{"", true},
		{"localhost:8080", true},
		{"ftp://example.com", true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			_, err := NewClient(tt.url, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewClient(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestClient_Summary(t *testing.T) {
	var query url.Values
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		io.WriteString(w, summaryJSON)
	}))

	if _, _, ok := c.LastSummary(); ok {
		t.Fatal("LastSummary() before any fetch should miss")
	}

	s, err := c.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary() error: %v", err)
	}
	if query.Get("format") != "json" || query.Get("numbers") != "text" {
		t.Errorf("query = %v, want format=json numbers=text", query)
	}
	if s.CurrentMode != "w" || s.CurrentElapsed.String() != "1:05" {
		t.Errorf("Summary() = %q %q, want w 1:05", s.CurrentMode, s.CurrentElapsed)
	}
	if diff := cmp.Diff([]string{"w", "p"}, s.Modes); diff != "" {
		t.Errorf("Modes mismatch (-want +got):\n%s", diff)
	}

	last, at, ok := c.LastSummary()
	if !ok {
		t.Fatal("LastSummary() missed after a successful fetch")
	}
	if last.CurrentMode != "w" || at.IsZero() {
		t.Errorf("LastSummary() = %q at %v", last.CurrentMode, at)
	}
}

func TestClient_SummaryRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, summaryJSON)
	}))

	if _, err := c.Summary(context.Background()); err != nil {
		t.Fatalf("Summary() error: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server calls = %d, want 3", got)
	}
}

func TestClient_SummaryGivesUp(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := c.Summary(context.Background())
	if !IsRetryable(err) {
		t.Fatalf("Summary() error = %v, want retryable", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server calls = %d, want 3", got)
	}
}

func TestClient_ErrorResponses(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantCode  errors.Code
		retryable bool
	}{
		{"decoded", http.StatusBadRequest, `{"error":"unknown mode: x","code":"INVALID_MODE"}`, errors.ErrCodeInvalidMode, false},
		{"not found", http.StatusNotFound, `not found`, errors.ErrCodeNotFound, false},
		{"server error body", http.StatusInternalServerError, `{"error":"boom","code":"STORAGE_ERROR"}`, errors.ErrCodeStorage, true},
		{"teapot", http.StatusTeapot, ``, errors.ErrCodeNetwork, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))

			_, err := c.Switch(context.Background(), "x")
			if !errors.Is(err, tt.wantCode) {
				t.Fatalf("Switch() error = %v, want code %s", err, tt.wantCode)
			}
			if IsRetryable(err) != tt.retryable {
				t.Errorf("IsRetryable() = %v, want %v", IsRetryable(err), tt.retryable)
			}
			if calls.Load() != 1 {
				t.Errorf("POST was sent %d times, want 1", calls.Load())
			}
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c, err := NewClient(addr, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = c.Clear(context.Background())
	if !errors.Is(err, errors.ErrCodeNetwork) || !IsRetryable(err) {
		t.Errorf("Clear() error = %v, want retryable network error", err)
	}
}

func TestClient_Forms(t *testing.T) {
	type call struct {
		Path string
		Form url.Values
	}
	var got []call
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		got = append(got, call{r.URL.Path, r.PostForm})
		io.WriteString(w, summaryJSON)
	}))

	ctx := context.Background()
	steps := []func() error{
		func() error { _, err := c.Switch(ctx, "p"); return err },
		func() error { _, err := c.Switch(ctx, ""); return err },
		func() error { _, err := c.Adjust(ctx, "w", 20); return err },
		func() error { _, err := c.Adjust(ctx, "w", -15); return err },
		func() error { _, err := c.Clear(ctx); return err },
		func() error { _, err := c.NewEra(ctx, "project x"); return err },
		func() error { _, err := c.SwitchEra(ctx, 3); return err },
		func() error { _, err := c.SetSetting(ctx, "autoupdate", false); return err },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	want := []call{
		{"/switch", url.Values{"mode": {"p"}}},
		{"/switch", url.Values{"mode": {"None"}}},
		{"/adjust", url.Values{"mode": {"w"}, "add": {"20"}}},
		{"/adjust", url.Values{"mode": {"w"}, "subtract": {"15"}}},
		{"/clear", url.Values{}},
		{"/switchera", url.Values{"newEra": {"project x"}}},
		{"/switchera", url.Values{"era": {"3"}}},
		{"/settings", url.Values{"autoupdate": {"off"}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_Arrange(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/arrange" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req arrange.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		res, err := req.Solve(r.Context())
		if err != nil {
			t.Errorf("Solve: %v", err)
		}
		json.NewEncoder(w).Encode(res)
	}))

	res, err := c.Arrange(context.Background(), arrange.Request{
		TotalWidth: 1000,
		Boxes:      []arrange.RequestBox{{Position: 50, Width: 200}, {Position: 52, Width: 200}},
	})
	if err != nil {
		t.Fatalf("Arrange() error: %v", err)
	}
	if diff := cmp.Diff([]string{"30.8%", "51.3%"}, res.Offsets); diff != "" {
		t.Errorf("Offsets mismatch (-want +got):\n%s", diff)
	}
}
