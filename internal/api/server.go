// Package api serves board layouts over HTTP. Every mutation runs through
// the same layout solver the interactive grid uses, so a board edited by a
// script obeys exactly the rules a board edited by hand does.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/Gaurav-Gosain/gridboard/internal/store"
	"github.com/Gaurav-Gosain/gridboard/internal/widget"
	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Origin is stamped on boards saved through the API.
const Origin = "api"

// Options configures a Server.
type Options struct {
	Store       store.Store
	Policy      widget.GridPolicy
	Constraints widget.ConstraintLookup
	Logger      *log.Logger
	// NewID generates ids for dropped widgets. Defaults to random UUIDs.
	NewID func() string
}

// Server is the HTTP layout API.
type Server struct {
	store  store.Store
	policy widget.GridPolicy
	lookup widget.ConstraintLookup
	logger *log.Logger
	newID  func() string

	// mu serializes read-modify-write cycles on boards.
	mu     sync.Mutex
	router chi.Router
}

// New builds the server and its routes.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	s := &Server{
		store:  opts.Store,
		policy: opts.Policy,
		lookup: opts.Constraints,
		logger: logger.WithPrefix("api"),
		newID:  newID,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/boards/{board}", func(r chi.Router) {
		r.Get("/", s.handleGetBoard)
		r.Post("/move", s.handleMove)
		r.Post("/resize", s.handleResize)
		r.Post("/widgets", s.handleAdd)
		r.Delete("/widgets/{id}", s.handleRemove)
	})
	s.router = r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("layout API listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
