package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dgallion1/jarbas/internal/config"
	"github.com/dgallion1/jarbas/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReimbursementReader is the storage query surface the API serves.
type ReimbursementReader interface {
	List(ctx context.Context, f store.Filter, p store.Page) ([]*store.Reimbursement, int64, error)
	Get(ctx context.Context, year, applicantID, documentID int64) (*store.Reimbursement, error)
}

// Server is the read-only HTTP API over reimbursements.
type Server struct {
	router         chi.Router
	reimbursements ReimbursementReader
	log            *slog.Logger
	cfg            config.Config
	registry       *prometheus.Registry
	metrics        *metrics
}

// NewServer creates and configures the HTTP server.
func NewServer(reimbursements ReimbursementReader, log *slog.Logger, cfg config.Config) *Server {
	reg := prometheus.NewRegistry()
	s := &Server{
		reimbursements: reimbursements,
		log:            log,
		cfg:            cfg,
		registry:       reg,
		metrics:        newMetrics(reg),
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StripSlashes)
	r.Use(RequestLogger(s.log))
	r.Use(s.metrics.middleware)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api/reimbursement", func(r chi.Router) {
		r.Get("/", s.handleListReimbursements)
		r.Get("/{year}", s.handleListReimbursements)
		r.Get("/{year}/{applicantID}", s.handleListReimbursements)
		r.Get("/{year}/{applicantID}/{documentID}", s.handleGetReimbursement)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
