// Package api serves the restaurant database over a read-only JSON HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"

	"github.com/nao1215/guidecrawl/internal/database"
	"github.com/nao1215/guidecrawl/internal/metrics"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = "127.0.0.1:8080"

// DefaultShutdownTimeout bounds graceful shutdown.
const DefaultShutdownTimeout = 10 * time.Second

// Querier is the read-only view of the restaurant database.
// *database.RestaurantDB implements it.
type Querier interface {
	Cities(ctx context.Context) ([]string, error)
	Cuisines(ctx context.Context) ([]string, error)
	RestaurantsByCity(ctx context.Context, city string) ([]string, error)
	RestaurantsByCuisine(ctx context.Context, cuisine string) ([]string, error)
	Details(ctx context.Context, name string) (*database.Details, error)
	Counts(ctx context.Context) (database.TableCounts, error)
}

// Server routes API requests to a Querier.
type Server struct {
	db              Querier
	metrics         *metrics.Metrics
	logger          *slog.Logger
	shutdownTimeout time.Duration
	router          *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics instance. By default each server creates its own.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithShutdownTimeout bounds how long in-flight requests may take on shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// NewServer builds the router for db.
func NewServer(db Querier, opts ...Option) *Server {
	s := &Server{
		db:              db,
		logger:          slog.Default(),
		shutdownTimeout: DefaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}

	r := mux.NewRouter()
	// Names may contain "/" once escaped.
	r.UseEncodedPath()
	r.Use(s.metrics.Middleware(routeTemplate))

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/cities", s.handleCities).Methods(http.MethodGet)
	api.HandleFunc("/cuisines", s.handleCuisines).Methods(http.MethodGet)
	api.HandleFunc("/cities/{city}/restaurants", s.handleByCity).Methods(http.MethodGet)
	api.HandleFunc("/cuisines/{cuisine}/restaurants", s.handleByCuisine).Methods(http.MethodGet)
	api.HandleFunc("/restaurants/{name}", s.handleDetails).Methods(http.MethodGet)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe listens on addr and serves until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info("api listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	s.logger.Info("api shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// routeTemplate labels metrics with the matched route rather than the raw path.
func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return ""
	}
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return ""
	}
	return tpl
}

// pathVar returns the unescaped route variable key.
func pathVar(r *http.Request, key string) (string, error) {
	return url.PathUnescape(mux.Vars(r)[key])
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		s.logger.Debug("failed to write response", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, database.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, database.ErrSchemaAbsent):
		status = http.StatusServiceUnavailable
	case errors.Is(err, errBadPath):
		status = http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to send.
		return
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("api request failed", "path", r.URL.Path, "error", err)
	}
	s.writeJSON(w, status, errorBody{Error: err.Error()})
}
