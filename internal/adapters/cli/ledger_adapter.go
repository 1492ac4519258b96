package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/example/malkhana/internal/ctxutil"
	"github.com/example/malkhana/internal/ports/primary"
)

// AuditAdapter prints the audit ledger.
type AuditAdapter struct {
	service primary.AuditService
	out     io.Writer
}

// NewAuditAdapter creates a new AuditAdapter.
func NewAuditAdapter(service primary.AuditService, out io.Writer) *AuditAdapter {
	return &AuditAdapter{service: service, out: out}
}

// List prints entries newest first.
func (a *AuditAdapter) List(ctx context.Context, query primary.AuditQuery, actor ctxutil.Actor) ([]*primary.AuditEntry, error) {
	entries, err := a.service.Query(ctx, query, actor)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No audit entries found.")
		return entries, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "WHEN\tACTION\tENTITY\tBY\tCHANGE")
	for _, e := range entries {
		change := string(e.NewValue)
		if len(e.OldValue) > 0 {
			change = string(e.OldValue) + " → " + change
		}
		fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\t%s\n", formatTime(e.Timestamp), e.ActionType, e.EntityType, e.EntityID, e.PerformedBy, orDash(change))
	}
	w.Flush()
	return entries, nil
}

// NotificationAdapter translates notification commands.
type NotificationAdapter struct {
	service primary.NotificationService
	out     io.Writer
}

// NewNotificationAdapter creates a new NotificationAdapter.
func NewNotificationAdapter(service primary.NotificationService, out io.Writer) *NotificationAdapter {
	return &NotificationAdapter{service: service, out: out}
}

// List prints a user's notifications; unread ones are flagged.
func (a *NotificationAdapter) List(ctx context.Context, userID string, limit int) ([]*primary.Notification, error) {
	list, err := a.service.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	if len(list) == 0 {
		fmt.Fprintln(a.out, "No notifications.")
		return list, nil
	}

	for _, n := range list {
		marker := " "
		if !n.Read {
			marker = alertColor.Sprint("●")
		}
		fmt.Fprintf(a.out, "%s %s  %s  %s\n", marker, n.ID, formatTime(n.CreatedAt), n.Message)
	}
	return list, nil
}

// Read marks a notification read.
func (a *NotificationAdapter) Read(ctx context.Context, notificationID string, actor ctxutil.Actor) error {
	if err := a.service.MarkRead(ctx, notificationID, actor); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Notification %s marked read\n", notificationID)
	return nil
}

// Sweep runs one pending-case sweep.
func (a *NotificationAdapter) Sweep(ctx context.Context, threshold time.Duration) (*primary.SweepResult, error) {
	result, err := a.service.Sweep(ctx, threshold)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "Sweep: %d stale case(s), %d recipient(s), %d new notification(s)\n",
		result.StaleCases, result.Recipients, result.Created)
	return result, nil
}

// OfficerAdapter translates officer commands.
type OfficerAdapter struct {
	service primary.OfficerService
	out     io.Writer
}

// NewOfficerAdapter creates a new OfficerAdapter.
func NewOfficerAdapter(service primary.OfficerService, out io.Writer) *OfficerAdapter {
	return &OfficerAdapter{service: service, out: out}
}

// Add creates an officer account.
func (a *OfficerAdapter) Add(ctx context.Context, req primary.AddOfficerRequest, actor ctxutil.Actor) (*primary.Officer, error) {
	o, err := a.service.AddOfficer(ctx, req, actor)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "✓ Added %s %s (%s) at %s\n", o.Role, o.OfficerID, o.Name, o.Station)
	return o, nil
}

// List prints officer accounts.
func (a *OfficerAdapter) List(ctx context.Context, role string) ([]*primary.Officer, error) {
	officers, err := a.service.ListOfficers(ctx, role)
	if err != nil {
		return nil, err
	}

	if len(officers) == 0 {
		fmt.Fprintln(a.out, "No officers found.")
		return officers, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tOFFICER ID\tNAME\tROLE\tSTATION")
	for _, o := range officers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", o.ID, o.OfficerID, o.Name, o.Role, o.Station)
	}
	w.Flush()
	return officers, nil
}

// DashboardAdapter prints ledger totals.
type DashboardAdapter struct {
	service primary.DashboardService
	out     io.Writer
	printer *message.Printer
}

// NewDashboardAdapter creates a new DashboardAdapter.
func NewDashboardAdapter(service primary.DashboardService, out io.Writer) *DashboardAdapter {
	return &DashboardAdapter{service: service, out: out, printer: message.NewPrinter(language.English)}
}

// Show prints the counts with thousands separators.
func (a *DashboardAdapter) Show(ctx context.Context) (*primary.DashboardMetrics, error) {
	m, err := a.service.Metrics(ctx)
	if err != nil {
		return nil, err
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	a.printer.Fprintf(w, "Total cases\t%d\t\n", m.TotalCases)
	a.printer.Fprintf(w, "Pending cases\t%d\t\n", m.PendingCases)
	a.printer.Fprintf(w, "Disposed cases\t%d\t\n", m.DisposedCases)
	a.printer.Fprintf(w, "Properties in custody\t%d\t\n", m.PropertiesInCustody)
	a.printer.Fprintf(w, "Properties disposed\t%d\t\n", m.PropertiesDisposed)
	w.Flush()
	return m, nil
}
