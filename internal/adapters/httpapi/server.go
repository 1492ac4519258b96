// Package httpapi exposes the ledger services as a JSON API. Actors are
// authenticated upstream and arrive in the X-Actor-ID and X-Actor-Role
// headers.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/malkhana/internal/ports/primary"
	"github.com/example/malkhana/internal/version"
)

// Services bundles the primary ports served over HTTP.
type Services struct {
	Cases         primary.CaseService
	Custody       primary.CustodyService
	Disposals     primary.DisposalService
	Audit         primary.AuditService
	Notifications primary.NotificationService
	Officers      primary.OfficerService
	Dashboard     primary.DashboardService
}

// Options configures ambient behaviour of the API.
type Options struct {
	Logger         *slog.Logger
	Health         func(ctx context.Context) error // nil reports healthy
	Metrics        http.Handler                    // served at /metrics when set
	SweepThreshold time.Duration                   // default for POST /v1/sweeps
}

// Server routes HTTP requests to the ledger services.
type Server struct {
	svc  Services
	opts Options
}

// New creates a Server.
func New(svc Services, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Server{svc: svc, opts: opts}
}

// Handler returns the routed handler wrapped in the standard middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.health)
	if s.opts.Metrics != nil {
		mux.Handle("GET /metrics", s.opts.Metrics)
	}

	mux.HandleFunc("POST /v1/cases", s.createCase)
	mux.HandleFunc("GET /v1/cases", s.listCases)
	mux.HandleFunc("GET /v1/cases/{id}", s.getCase)
	mux.HandleFunc("POST /v1/cases/{id}/close-check", s.closeCheck)

	mux.HandleFunc("POST /v1/properties", s.addProperty)
	mux.HandleFunc("GET /v1/properties", s.listProperties)
	mux.HandleFunc("GET /v1/properties/{id}", s.getProperty)
	mux.HandleFunc("POST /v1/properties/{id}/transfers", s.transfer)
	mux.HandleFunc("GET /v1/properties/{id}/custody", s.custodyHistory)
	mux.HandleFunc("POST /v1/properties/{id}/disposal", s.dispose)
	mux.HandleFunc("GET /v1/properties/{id}/disposal", s.getDisposal)
	mux.HandleFunc("GET /v1/disposals", s.listDisposals)

	mux.HandleFunc("GET /v1/audit", s.listAudit)

	mux.HandleFunc("GET /v1/notifications", s.listNotifications)
	mux.HandleFunc("POST /v1/notifications/{id}/read", s.markRead)
	mux.HandleFunc("POST /v1/sweeps", s.sweep)

	mux.HandleFunc("POST /v1/officers", s.addOfficer)
	mux.HandleFunc("GET /v1/officers", s.listOfficers)

	mux.HandleFunc("GET /v1/dashboard", s.dashboard)

	return Chain(mux,
		RequestID(),
		LogRequests(s.opts.Logger),
		RecoverPanic(s.opts.Logger),
		WithActor(),
	)
}

// NewHTTPServer wraps handler in an http.Server with conservative timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if s.opts.Health != nil {
		if err := s.opts.Health(r.Context()); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "version": version.Current()})
}
