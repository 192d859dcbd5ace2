// Package pkg provides the core libraries of worktime, a tracker of time
// spent in work modes.
//
// # Overview
//
// Worktime records which mode is running (work, play, ...), keeps running
// totals per era and derives ratios and a recent history from them. The
// history is drawn as a bar with one label per manual adjustment; labels
// are spaced out by a small layout engine so they never overlap.
//
// # Architecture
//
// The typical data flow:
//
//	mode switches, adjustments
//	         ↓
//	    [worktime] package (tracker, summaries)
//	         ↓
//	    [store] package (SQLite or MongoDB)
//	         ↓
//	    [render] package (history bar) → [arrange] package (label layout)
//	         ↓
//	    terminal, SVG, PNG, HTML
//
// # Quick Start
//
// Record a switch and print the summary:
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/matzehuels/worktime/pkg/config"
//	    "github.com/matzehuels/worktime/pkg/store"
//	    "github.com/matzehuels/worktime/pkg/worktime"
//	)
//
//	cfg := config.Default()
//	s, _ := store.Open(ctx, cfg.Storage)
//	defer s.Close()
//
//	t := worktime.New(s, worktime.ConfigFrom(cfg.Tracker))
//	t.SwitchMode(ctx, "w")
//	summary, _ := t.Summary(ctx, worktime.NumbersText)
//	worktime.WritePlain(os.Stdout, summary)
//
// # Main Packages
//
// ## Domain Logic
//
// [arrange] - The adjustment layout engine. Places fixed-width boxes near
// their anchors inside a container and removes overlaps in bounded passes.
//
// [worktime] - The tracker: mode switches, adjustments, eras, settings and
// the summaries shown by every front end.
//
// [render] - Draws the history bar as SVG, PNG or terminal text.
//
// ## Infrastructure
//
// [store] - Persistence for eras, periods, totals, adjustments and
// settings. SQLite for local use, MongoDB for shared deployments.
//
// [cache] - Key/value cache for layout results with file, Redis and null
// backends.
//
// [httputil] - Client for a remote worktime server with retries and an
// offline copy of the last summary.
//
// [config] - TOML configuration with XDG paths.
//
// [errors] - Coded errors that map onto HTTP status codes.
//
// [observability] - Hooks for layout runs, tracker events, cache and HTTP
// traffic.
//
// [buildinfo] - Version information set at build time.
package pkg
