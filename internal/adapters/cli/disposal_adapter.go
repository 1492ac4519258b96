package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/example/malkhana/internal/ctxutil"
	"github.com/example/malkhana/internal/ports/primary"
)

// DisposalAdapter translates disposal commands to DisposalService calls.
type DisposalAdapter struct {
	service primary.DisposalService
	out     io.Writer
}

// NewDisposalAdapter creates a new DisposalAdapter.
func NewDisposalAdapter(service primary.DisposalService, out io.Writer) *DisposalAdapter {
	return &DisposalAdapter{service: service, out: out}
}

// Dispose records a disposal and reports whether the case closed.
func (a *DisposalAdapter) Dispose(ctx context.Context, req primary.DisposeRequest, actor ctxutil.Actor) (*primary.DisposeResult, error) {
	result, err := a.service.DisposeProperty(ctx, req, actor)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "✓ Property %s %s (%s)\n", result.Property.ID, statusLabel(result.Property.Status), result.Disposal.DisposalType)
	switch c := result.Closure; {
	case c == nil:
		fmt.Fprintf(a.out, "  %s case check failed; run `malkhana reconcile`\n", alertColor.Sprint("!"))
	case c.Closed:
		fmt.Fprintf(a.out, "  Case %s is now %s\n", c.CaseID, statusLabel(c.Status))
	default:
		fmt.Fprintf(a.out, "  Case %s: %d remaining in custody\n", c.CaseID, c.Remaining)
	}
	return result, nil
}

// List prints disposals as a table.
func (a *DisposalAdapter) List(ctx context.Context, filters primary.DisposalFilters) ([]*primary.Disposal, error) {
	disposals, err := a.service.ListDisposals(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list disposals: %w", err)
	}

	if len(disposals) == 0 {
		fmt.Fprintln(a.out, "No disposals found.")
		return disposals, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "PROPERTY\tTYPE\tCOURT ORDER\tBY\tWHEN")
	for _, d := range disposals {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.PropertyID, d.DisposalType, orDash(d.CourtOrderRef), d.DisposedBy, formatTime(d.Timestamp))
	}
	w.Flush()
	return disposals, nil
}
