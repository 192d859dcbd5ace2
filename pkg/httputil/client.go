package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/worktime/pkg/arrange"
	"github.com/matzehuels/worktime/pkg/errors"
	"github.com/matzehuels/worktime/pkg/observability"
	"github.com/matzehuels/worktime/pkg/worktime"
)

const httpTimeout = 10 * time.Second

const lastSummaryKey = "summary:last"

// ErrorResponse is the JSON body the server sends with error statuses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Client talks to a worktime server.
type Client struct {
	base  *url.URL
	http  *http.Client
	cache *Cache

	retryDelay time.Duration
}

// NewClient creates a Client for the server at baseURL. The cache, if not
// nil, keeps the last summary received for [Client.LastSummary].
func NewClient(baseURL string, cache *Cache) (*Client, error) {
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse server URL")
	}
	return &Client{
		base:       u,
		http:       &http.Client{Timeout: httpTimeout},
		cache:      cache,
		retryDelay: time.Second,
	}, nil
}

// BaseURL returns the server URL.
func (c *Client) BaseURL() string { return c.base.String() }

// Summary fetches the current summary with text numbers. Network errors
// and server errors are retried.
func (c *Client) Summary(ctx context.Context) (*worktime.Summary, error) {
	var s worktime.Summary
	err := Retry(ctx, 3, c.retryDelay, func() error {
		return c.do(ctx, http.MethodGet, "/?format=json&numbers=text", nil, "", &s)
	})
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		_ = c.cache.Set(lastSummaryKey, &s)
	}
	return &s, nil
}

// LastSummary returns the last summary fetched successfully and when it
// was received.
func (c *Client) LastSummary() (*worktime.Summary, time.Time, bool) {
	if c.cache == nil {
		return nil, time.Time{}, false
	}
	var s worktime.Summary
	at, ok, err := c.cache.GetStale(lastSummaryKey, &s)
	if !ok || err != nil {
		return nil, time.Time{}, false
	}
	return &s, at, true
}

// Switch switches to mode. An empty mode stops tracking.
func (c *Client) Switch(ctx context.Context, mode string) (*worktime.Summary, error) {
	if mode == "" {
		mode = worktime.NoMode
	}
	return c.post(ctx, "/switch", url.Values{"mode": {mode}})
}

// Adjust adds minutes (negative to subtract) to a mode total.
func (c *Client) Adjust(ctx context.Context, mode string, minutes int) (*worktime.Summary, error) {
	form := url.Values{"mode": {mode}}
	if minutes < 0 {
		form.Set("subtract", strconv.Itoa(-minutes))
	} else {
		form.Set("add", strconv.Itoa(minutes))
	}
	return c.post(ctx, "/adjust", form)
}

// Clear archives the current era and starts an unnamed one.
func (c *Client) Clear(ctx context.Context) (*worktime.Summary, error) {
	return c.post(ctx, "/clear", url.Values{})
}

// NewEra archives the current era and starts one with description.
func (c *Client) NewEra(ctx context.Context, description string) (*worktime.Summary, error) {
	return c.post(ctx, "/switchera", url.Values{"newEra": {description}})
}

// SwitchEra makes an archived era current.
func (c *Client) SwitchEra(ctx context.Context, id int64) (*worktime.Summary, error) {
	return c.post(ctx, "/switchera", url.Values{"era": {strconv.FormatInt(id, 10)}})
}

// SetSetting turns a setting on or off.
func (c *Client) SetSetting(ctx context.Context, name string, on bool) (*worktime.Summary, error) {
	value := "off"
	if on {
		value = "on"
	}
	return c.post(ctx, "/settings", url.Values{name: {value}})
}

// Arrange lays out boxes on the server.
func (c *Client) Arrange(ctx context.Context, req arrange.Request) (arrange.Response, error) {
	var resp arrange.Response
	body, err := json.Marshal(req)
	if err != nil {
		return resp, err
	}
	err = c.do(ctx, http.MethodPost, "/api/arrange", bytes.NewReader(body), "application/json", &resp)
	return resp, err
}

func (c *Client) post(ctx context.Context, path string, form url.Values) (*worktime.Summary, error) {
	var s worktime.Summary
	err := c.do(ctx, http.MethodPost, path, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &s)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, v any) error {
	target := c.base.String() + path
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, c.base.Host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, c.base.Host, path, err)
		return Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "%s %s", method, path))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, method, c.base.Host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "decode %s response", path)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	var body ErrorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(data, &body) == nil && body.Code != "" {
		err := errors.New(errors.Code(body.Code), "%s", body.Error)
		if resp.StatusCode >= 500 {
			return Retryable(err)
		}
		return err
	}

	err := errors.New(errors.ErrCodeNetwork, "server returned status %d", resp.StatusCode)
	switch {
	case resp.StatusCode == http.StatusNotFound:
		err.Code = errors.ErrCodeNotFound
	case resp.StatusCode >= 500:
		return Retryable(err)
	}
	return err
}
