// Package host embeds the router engine behind a small control-plane
// server: JSON endpoints to parse, navigate and inspect, Prometheus metrics,
// and a websocket endpoint that drives one engine per connected session with
// the rendering collaborator on the far side of the wire.
package host

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/sextant-dev/sextant/pkg/history"
	"github.com/sextant-dev/sextant/pkg/router"
	"github.com/sextant-dev/sextant/pkg/urltree"
)

// Config configures a Server.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Routes is the route configuration shared by the server engine and all
	// session engines.
	Routes []*router.Route

	// Loader resolves lazy route references. Optional.
	Loader router.RouteLoader

	// Journal, when set, records committed navigations of every engine and
	// backs the /api/journal endpoint. Optional.
	Journal *history.Journal

	// Observers are attached to every engine the host creates. Optional.
	Observers []router.Observer

	// Logger is the host logger. Default: slog.Default().
	Logger *slog.Logger
}

// Server is the control-plane server. It owns one engine for the HTTP API
// and creates one engine per websocket session.
type Server struct {
	config Config
	logger *slog.Logger
	mux    *chi.Mux
	engine *router.Router
}

// New creates a host server. The route configuration is validated here.
func New(config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{config: config, logger: logger}

	engine, err := s.newEngine(router.NopRenderer{}, nil)
	if err != nil {
		return nil, err
	}
	s.engine = engine

	mux := chi.NewRouter()
	mux.Use(chimw.Recoverer)
	mux.Get("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Post("/api/parse", s.handleParse)
	mux.Post("/api/match", s.handleMatch)
	mux.Post("/api/navigate", s.handleNavigate)
	mux.Get("/api/state", s.handleState)
	mux.Get("/api/routes", s.handleRoutes)
	mux.Get("/api/journal", s.handleJournal)
	mux.Get("/ws", s.handleWS)
	s.mux = mux
	return s, nil
}

// newEngine builds a router engine with the host's shared wiring.
func (s *Server) newEngine(renderer router.Renderer, extra []router.Observer) (*router.Router, error) {
	opts := []router.Option{
		router.WithLogger(s.logger),
		router.WithRenderer(renderer),
	}
	if s.config.Loader != nil {
		opts = append(opts, router.WithLoader(s.config.Loader))
	}
	if s.config.Journal != nil {
		opts = append(opts, router.WithObserver(s.config.Journal.Observer(func(err error) {
			s.logger.Error("journal append failed", "err", err)
		})))
	}
	for _, obs := range s.config.Observers {
		opts = append(opts, router.WithObserver(obs))
	}
	for _, obs := range extra {
		opts = append(opts, router.WithObserver(obs))
	}
	// Lazy loading merges children into the config tree, so engines must not
	// share route nodes.
	return router.New(cloneRoutes(s.config.Routes), opts...)
}

func cloneRoutes(routes []*router.Route) []*router.Route {
	if len(routes) == 0 {
		return nil
	}
	out := make([]*router.Route, 0, len(routes))
	for _, route := range routes {
		clone := *route
		clone.Children = cloneRoutes(route.Children)
		out = append(out, &clone)
	}
	return out
}

// Handler returns the HTTP handler, for embedding and tests.
func (s *Server) Handler() http.Handler { return s.mux }

// Serve runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{Addr: s.config.Addr, Handler: s.mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("host listening", "addr", s.config.Addr)
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type urlRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tree, err := urltree.Parse(req.URL)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, treeView(tree))
}

// handleMatch runs a navigation on a throwaway engine, so the URL can be
// checked against the configuration without touching the server's state.
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	// Bare engine: no journal or observers, so the check leaves no trace.
	opts := []router.Option{router.WithLogger(s.logger)}
	if s.config.Loader != nil {
		opts = append(opts, router.WithLoader(s.config.Loader))
	}
	engine, err := router.New(cloneRoutes(s.config.Routes), opts...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	ok, err := engine.NavigateByURL(r.Context(), req.URL)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"matched": false, "error": err.Error()})
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"matched": false})
		return
	}
	resp := map[string]any{"matched": true, "url": engine.URL()}
	if snap := engine.Snapshot(); snap != nil {
		resp["state"] = buildStateView(snap)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ok, err := s.engine.NavigateByURL(r.Context(), req.URL)
	resp := map[string]any{"committed": ok, "url": s.engine.URL()}
	if err != nil {
		resp["error"] = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot()
	if snap == nil {
		writeJSON(w, http.StatusOK, map[string]any{"url": nil})
		return
	}
	writeJSON(w, http.StatusOK, buildStateView(snap))
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, routesView(s.engine.Config()))
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if s.config.Journal == nil {
		writeError(w, http.StatusNotFound, errors.New("no journal configured"))
		return
	}
	entries, err := s.config.Journal.Entries(0, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
