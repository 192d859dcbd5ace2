// Package server serves the worktime web front end and JSON API.
package server

import (
	"context"
	"errors"
	"html/template"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/worktime/pkg/arrange"
	"github.com/matzehuels/worktime/pkg/cache"
	"github.com/matzehuels/worktime/pkg/config"
	wterrors "github.com/matzehuels/worktime/pkg/errors"
	"github.com/matzehuels/worktime/pkg/render"
	"github.com/matzehuels/worktime/pkg/store"
	"github.com/matzehuels/worktime/pkg/worktime"
)

// Tracker is the part of *worktime.Tracker the server drives.
type Tracker interface {
	Summary(ctx context.Context, numbers worktime.Numbers) (*worktime.Summary, error)
	SwitchMode(ctx context.Context, mode string) (worktime.SwitchResult, error)
	Adjust(ctx context.Context, mode string, minutes int) (worktime.AdjustResult, error)
	Clear(ctx context.Context, description string) (*store.Era, error)
	SwitchEra(ctx context.Context, id int64) error
	SetSetting(ctx context.Context, name string, on bool) error
}

// Options configures a Server.
type Options struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
	// ShutdownTimeout bounds the graceful shutdown.
	ShutdownTimeout time.Duration
	// GlyphWidth is the estimated label character width in pixels used to
	// place adjustment labels on the HTML page.
	GlyphWidth float64
	// BarWidth is the width in pixels the history bar is laid out for.
	BarWidth float64

	// MinSpace and MaxPasses are the layout engine defaults. Requests to
	// /api/arrange may override them.
	MinSpace  float64
	MaxPasses int

	// Cache stores /api/arrange responses. Nil disables caching.
	Cache    cache.Cache
	Keyer    cache.Keyer
	CacheTTL time.Duration

	Logger *log.Logger
}

// OptionsFrom builds Options from the server and arrange config sections.
func OptionsFrom(cfg *config.Config) Options {
	return Options{
		Addr:            cfg.Server.Addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout.Duration,
		GlyphWidth:      cfg.Server.GlyphWidth,
		BarWidth:        cfg.Server.BarWidth,
		MinSpace:        cfg.Arrange.MinSpace,
		MaxPasses:       cfg.Arrange.MaxPasses,
		CacheTTL:        cfg.Cache.TTL.Duration,
	}
}

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	if o.Addr == "" {
		o.Addr = ":8080"
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = 5 * time.Second
	}
	if o.GlyphWidth <= 0 {
		o.GlyphWidth = render.DefaultGlyphWidth
	}
	if o.BarWidth <= 0 {
		o.BarWidth = 600
	}
	if o.MinSpace < 0 {
		o.MinSpace = arrange.DefaultMinSpace
	}
	if o.MaxPasses <= 0 {
		o.MaxPasses = arrange.DefaultMaxPasses
	}
	if o.Cache == nil {
		o.Cache = cache.NewNullCache()
	}
	if o.Keyer == nil {
		o.Keyer = cache.NewDefaultKeyer()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Server is the HTTP front end of a tracker.
type Server struct {
	tracker Tracker
	opts    Options
	cache   cache.Cache
	page    *template.Template
	router  chi.Router
}

// New creates a Server for t.
func New(t Tracker, opts Options) (*Server, error) {
	if t == nil {
		return nil, wterrors.New(wterrors.ErrCodeInvalidInput, "server needs a tracker")
	}
	opts.SetDefaults()

	page, err := parsePage()
	if err != nil {
		return nil, wterrors.Wrap(wterrors.ErrCodeInternal, err, "parse page template")
	}

	s := &Server{
		tracker: t,
		opts:    opts,
		cache:   cache.WithHooks(opts.Cache),
		page:    page,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.accessLog)
	r.Use(httpHooks)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleMain)
	r.Post("/switch", s.handleSwitch)
	r.Post("/adjust", s.handleAdjust)
	r.Post("/clear", s.handleClear)
	r.Post("/switchera", s.handleSwitchEra)
	r.Post("/settings", s.handleSettings)
	r.Post("/api/arrange", s.handleArrange)
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return wterrors.Wrap(wterrors.ErrCodeNetwork, err, "listen on %s", s.opts.Addr)
	}
	return s.Serve(ctx, ln)
}

// Serve is like ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.opts.Logger.Info("serving", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.opts.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
