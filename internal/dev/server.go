package dev

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/agreed/internal/build"
	"github.com/vango-dev/agreed/internal/config"
	"github.com/vango-dev/agreed/internal/errors"
	"github.com/vango-dev/agreed/internal/publish"
	"github.com/vango-dev/agreed/pkg/model"
	"github.com/vango-dev/agreed/pkg/router"
)

// APIPrefix is the path prefix of the dev HTTP API.
const APIPrefix = "/_agreed"

// ServerOptions configures the development server.
type ServerOptions struct {
	// Config is the project configuration.
	Config *config.Config

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Tracer is passed to the builder.
	Tracer trace.Tracer

	// Publisher is passed to the builder.
	Publisher publish.Publisher

	// Registry receives the watch metrics and backs /metrics. A fresh
	// registry is created when nil.
	Registry *prometheus.Registry

	// OnRebuild is called after every build, including the initial one.
	OnRebuild func(RebuildEvent)
}

// Status is the JSON body of GET /_agreed/status.
type Status struct {
	State     string    `json:"state"`
	Mode      string    `json:"mode,omitempty"`
	Hash      string    `json:"hash,omitempty"`
	Artifact  string    `json:"artifact"`
	LastError string    `json:"lastError,omitempty"`
	LastBuild time.Time `json:"lastBuild,omitempty"`
	Builds    int       `json:"builds"`
	Warnings  []string  `json:"warnings,omitempty"`
	Clients   int       `json:"clients"`
}

// Server is the development server: a watch session plus an HTTP API that
// serves the current route table.
type Server struct {
	config     *config.Config
	options    ServerOptions
	builder    *build.Builder
	resolver   *router.Resolver
	feed       *RouteFeed
	registry   *prometheus.Registry
	metrics    *Metrics
	logger     *slog.Logger
	httpServer *http.Server
	session    *Session

	mu      sync.RWMutex
	models  model.Registry
	navs    []router.NavItem
	status  Status
	running bool
}

// NewServer creates a new development server.
func NewServer(options ServerOptions) *Server {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := options.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
	}

	cfg := options.Config
	return &Server{
		config:  cfg,
		options: options,
		builder: build.New(cfg, build.Options{
			Logger:    logger,
			Tracer:    options.Tracer,
			Publisher: options.Publisher,
		}),
		resolver: router.NewResolver(nil),
		feed:     NewRouteFeed(),
		registry: registry,
		metrics:  NewMetrics(registry),
		logger:   logger,
		models:   model.Registry{},
		status: Status{
			State:    StateIdle.String(),
			Artifact: cfg.ArtifactPath(),
		},
	}
}

// Resolver returns the resolver holding the current route table.
func (s *Server) Resolver() *router.Resolver {
	return s.resolver
}

// Start runs the initial build, starts watching and serves HTTP on the
// configured address. It blocks until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	// Initial build
	start := time.Now()
	result, err := s.builder.Build(ctx)
	s.apply(RebuildEvent{Result: result, Err: err, Duration: time.Since(start)})

	debounce, err := s.config.DebounceDuration()
	if err != nil {
		return err
	}
	roots := []string{s.config.ViewsDir()}
	if s.config.HasModels() {
		roots = append(roots, s.config.ModelsDir())
	}

	session, err := Watch(ctx, WatchOptions{
		Roots:     roots,
		Ignore:    s.config.Ignore,
		Exclude:   []string{s.config.ArtifactPath()},
		Debounce:  debounce,
		Poll:      s.config.Dev.Poll,
		Rebuild:   s.builder.Build,
		OnRebuild: s.apply,
		Logger:    s.logger,
		Metrics:   s.metrics,
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.session = session
	s.status.Mode = string(session.Mode())
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:              s.config.Dev.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	s.logger.Info("dev server listening", "url", s.config.DevURL())

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		return errors.New("E207").Wrap(err).WithDetail(err.Error())
	}
}

// Stop stops the watch session and the HTTP server.
func (s *Server) Stop() {
	s.mu.Lock()
	session := s.session
	s.running = false
	s.mu.Unlock()

	if session != nil {
		session.Stop()
	}
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
	s.feed.Close()
}

// apply publishes the outcome of a build to the resolver and to the route
// feed. A failed build keeps the previous route table.
func (s *Server) apply(ev RebuildEvent) {
	s.mu.Lock()
	s.status.Builds++
	s.status.LastBuild = time.Now()
	hadError := s.status.LastError != ""

	if ev.Err != nil {
		var lines []string
		for _, e := range errors.ClassifyAll(ev.Err) {
			lines = append(lines, e.FormatCompact())
		}
		msg := strings.Join(lines, "\n")
		s.status.LastError = msg
		s.mu.Unlock()

		s.feed.PublishError(msg)
		s.notify(ev)
		return
	}

	result := ev.Result
	if result == nil || result.Skipped || result.Plan == nil {
		s.mu.Unlock()
		s.notify(ev)
		return
	}

	s.resolver.Load(result.Plan.Routes)
	s.models = result.Plan.Models
	s.navs = result.Plan.Navs
	s.status.LastError = ""
	s.status.Warnings = s.status.Warnings[:0]
	for _, w := range result.Warnings {
		s.status.Warnings = append(s.status.Warnings, w.String())
	}
	hash, status := "", ""
	if result.Emit != nil {
		hash, status = result.Emit.Hash, result.Emit.Status.String()
		s.status.Hash = hash
	}
	s.mu.Unlock()

	if hadError {
		s.feed.PublishClear()
	}
	s.feed.PublishRoutes(hash, status)
	s.notify(ev)
}

func (s *Server) notify(ev RebuildEvent) {
	if s.options.OnRebuild != nil {
		s.options.OnRebuild(ev)
	}
}

// Handler returns the HTTP handler of the dev API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route(APIPrefix, func(r chi.Router) {
		r.Get("/routes", s.handleRoutes)
		r.Get("/routes/*", s.handleRoute)
		r.Get("/match", s.handleMatch)
		r.Get("/models", s.handleModels)
		r.Get("/navs", s.handleNavs)
		r.Get("/status", s.handleStatus)
		r.Method(http.MethodGet, "/reload", s.feed)
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return r
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.resolver.Routes())
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	routes, ok := s.resolver.GetRoute(key)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "route not found", "key": key})
		return
	}
	writeJSON(w, http.StatusOK, routes)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Query().Get("path")
	if p == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing path parameter"})
		return
	}
	d, params, ok := s.resolver.Match(p)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no route matches", "path": p})
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Route  router.RouteDescriptor `json:"route"`
		Params map[string]string      `json:"params"`
	}{d, params})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	models := s.models.Sorted()
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, models)
}

func (s *Server) handleNavs(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	navs := s.navs
	s.mu.RUnlock()
	if navs == nil {
		navs = []router.NavItem{}
	}
	writeJSON(w, http.StatusOK, navs)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Status())
}

// Status returns a snapshot of the server status.
func (s *Server) Status() Status {
	s.mu.RLock()
	st := s.status
	st.Warnings = append([]string(nil), s.status.Warnings...)
	session := s.session
	s.mu.RUnlock()

	if session != nil {
		st.State = session.State().String()
	}
	st.Clients = s.feed.Subscribers()
	return st
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}
