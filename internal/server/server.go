// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the outreach pipeline as a JSON HTTP API for a
// browser front end.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/pdiddy/outreach/internal/dispatch"
	"github.com/pdiddy/outreach/internal/export"
	"github.com/pdiddy/outreach/internal/logging"
	"github.com/pdiddy/outreach/internal/outreach"
	"github.com/pdiddy/outreach/internal/session"
	"github.com/pdiddy/outreach/internal/store"
	"github.com/pdiddy/outreach/pkg/types"
)

// Service is the pipeline surface the handlers call. *outreach.Pipeline
// implements it.
type Service interface {
	Search(ctx context.Context, c types.Criteria) (session.State, error)
	State() session.State
	SaveCandidate(ctx context.Context, index int) (types.Lead, error)
	SaveAll(ctx context.Context) (outreach.SaveSummary, error)
	Lead(ctx context.Context, id string) (types.Lead, error)
	Leads(ctx context.Context, f store.Filter) ([]types.Lead, error)
	Stats(ctx context.Context) (store.Stats, error)
	GenerateDraft(ctx context.Context, id string) (outreach.DraftOutcome, error)
	UpdateLeadDraft(ctx context.Context, id string, d types.Draft) (types.Lead, error)
	UpdateLeadEmail(ctx context.Context, id, email string) (types.Lead, error)
	UpdateLeadStatus(ctx context.Context, id string, st types.Status) (types.Lead, error)
	Dispatch(ctx context.Context, id string, c dispatch.Channel) (outreach.DispatchOutcome, error)
	Export(ctx context.Context, w io.Writer, f export.Format, filter store.Filter) error
	Profile() types.UserProfile
	SetProfile(u types.UserProfile) (types.UserProfile, error)
}

// Server serves the API.
type Server struct {
	svc    Service
	cfg    types.ServerConfig
	logger *zap.Logger
	router chi.Router

	// now stamps export filenames.
	now func() time.Time
}

// New builds a server and its routes.
func New(svc Service, cfg types.ServerConfig, logger *zap.Logger) *Server {
	s := &Server{
		svc:    svc,
		cfg:    cfg,
		logger: logging.OrNop(logger),
		now:    time.Now,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Get("/search", s.handleState)

		r.Post("/candidates/save-all", s.handleSaveAll)
		r.Post("/candidates/{index}/save", s.handleSaveCandidate)

		r.Get("/leads", s.handleListLeads)
		r.Route("/leads/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetLead)
			r.Post("/draft", s.handleGenerateDraft)
			r.Put("/draft", s.handleUpdateDraft)
			r.Put("/email", s.handleUpdateEmail)
			r.Put("/status", s.handleUpdateStatus)
			r.Post("/dispatch", s.handleDispatch)
		})

		r.Get("/stats", s.handleStats)
		r.Get("/export", s.handleExport)

		r.Get("/profile", s.handleGetProfile)
		r.Put("/profile", s.handlePutProfile)
	})
	return r
}

// requestLogger logs one line per request with zap.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

// ListenAndServe serves on cfg.Addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) addr() string {
	if s.cfg.Addr == "" {
		return ":8080"
	}
	return s.cfg.Addr
}
