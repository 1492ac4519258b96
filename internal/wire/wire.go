// Package wire assembles the ledger: store, services, telemetry and the
// output adapters used by the command tree.
package wire

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	cliadapter "github.com/example/malkhana/internal/adapters/cli"
	"github.com/example/malkhana/internal/adapters/httpapi"
	"github.com/example/malkhana/internal/adapters/sqlstore"
	"github.com/example/malkhana/internal/app"
	"github.com/example/malkhana/internal/config"
	"github.com/example/malkhana/internal/db"
	"github.com/example/malkhana/internal/ports/primary"
	"github.com/example/malkhana/internal/telemetry"
)

// App holds every wired component. Close releases the store.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *telemetry.Metrics
	Store   *sqlstore.Store
	Dialect db.Dialect

	Cases         primary.CaseService
	Custody       primary.CustodyService
	Disposals     primary.DisposalService
	Audit         primary.AuditService
	Notifications primary.NotificationService
	Officers      primary.OfficerService
	Dashboard     primary.DashboardService
}

// Build opens the configured store, applies migrations and creates the services.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	database, dialect, err := db.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	metrics := telemetry.NewMetrics()
	store := sqlstore.New(database, dialect, logger)

	// Create services (primary ports implementation)
	cases := app.NewCaseService(store, logger, metrics)

	return &App{
		Config:        cfg,
		Logger:        logger,
		Metrics:       metrics,
		Store:         store,
		Dialect:       dialect,
		Cases:         cases,
		Custody:       app.NewCustodyService(store, logger, metrics, cfg.Ledger.TransferMaxAttempts),
		Disposals:     app.NewDisposalService(store, cases, logger, metrics),
		Audit:         app.NewAuditService(store.Audit()),
		Notifications: app.NewNotificationService(store, logger, metrics),
		Officers:      app.NewOfficerService(store),
		Dashboard:     app.NewDashboardService(store),
	}, nil
}

// Close closes the store.
func (a *App) Close() error {
	return a.Store.Close()
}

// Seed inserts the development officer accounts.
func (a *App) Seed(ctx context.Context) (int, error) {
	return db.SeedFixtures(ctx, a.Store.DB(), a.Dialect, db.DefaultSeedUsers)
}

// HTTPHandler returns the JSON API with /metrics and /healthz mounted.
func (a *App) HTTPHandler() http.Handler {
	return httpapi.New(httpapi.Services{
		Cases:         a.Cases,
		Custody:       a.Custody,
		Disposals:     a.Disposals,
		Audit:         a.Audit,
		Notifications: a.Notifications,
		Officers:      a.Officers,
		Dashboard:     a.Dashboard,
	}, httpapi.Options{
		Logger:         a.Logger,
		Health:         a.Store.Ping,
		Metrics:        a.Metrics.Handler(),
		SweepThreshold: a.Config.Sweep.Threshold,
	}).Handler()
}

// CaseAdapter returns a CaseAdapter writing to out.
func (a *App) CaseAdapter(out io.Writer) *cliadapter.CaseAdapter {
	return cliadapter.NewCaseAdapter(a.Cases, out)
}

// CustodyAdapter returns a CustodyAdapter writing to out.
func (a *App) CustodyAdapter(out io.Writer) *cliadapter.CustodyAdapter {
	return cliadapter.NewCustodyAdapter(a.Custody, out)
}

// DisposalAdapter returns a DisposalAdapter writing to out.
func (a *App) DisposalAdapter(out io.Writer) *cliadapter.DisposalAdapter {
	return cliadapter.NewDisposalAdapter(a.Disposals, out)
}

// AuditAdapter returns an AuditAdapter writing to out.
func (a *App) AuditAdapter(out io.Writer) *cliadapter.AuditAdapter {
	return cliadapter.NewAuditAdapter(a.Audit, out)
}

// NotificationAdapter returns a NotificationAdapter writing to out.
func (a *App) NotificationAdapter(out io.Writer) *cliadapter.NotificationAdapter {
	return cliadapter.NewNotificationAdapter(a.Notifications, out)
}

// OfficerAdapter returns an OfficerAdapter writing to out.
func (a *App) OfficerAdapter(out io.Writer) *cliadapter.OfficerAdapter {
	return cliadapter.NewOfficerAdapter(a.Officers, out)
}

// DashboardAdapter returns a DashboardAdapter writing to out.
func (a *App) DashboardAdapter(out io.Writer) *cliadapter.DashboardAdapter {
	return cliadapter.NewDashboardAdapter(a.Dashboard, out)
}
