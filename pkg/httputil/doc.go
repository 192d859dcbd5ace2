// Package httputil provides the HTTP client used to talk to a worktime
// server.
//
// # Overview
//
//   - [Client]: fetches summaries and posts mode switches, adjustments and
//     era changes to a running `worktime serve`
//   - [Cache]: file-based JSON cache holding the last summary received, so
//     a dashboard can show stale data while the server is unreachable
//   - [Retry]: automatic retry with exponential backoff
//
// # Retry
//
// Only idempotent requests are retried. [Client.Summary] retries network
// errors and 5xx responses:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    return fetch()
//	})
//
// Form posts are sent exactly once.
package httputil
