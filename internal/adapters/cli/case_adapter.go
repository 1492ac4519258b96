package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/example/malkhana/internal/ctxutil"
	"github.com/example/malkhana/internal/ports/primary"
)

// CaseAdapter translates case commands to CaseService calls.
type CaseAdapter struct {
	service primary.CaseService
	out     io.Writer
}

// NewCaseAdapter creates a new CaseAdapter.
func NewCaseAdapter(service primary.CaseService, out io.Writer) *CaseAdapter {
	return &CaseAdapter{service: service, out: out}
}

// Create registers a case and prints its id.
func (a *CaseAdapter) Create(ctx context.Context, req primary.CreateCaseRequest, actor ctxutil.Actor) (*primary.Case, error) {
	c, err := a.service.CreateCase(ctx, req, actor)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "✓ Created case %s\n", c.ID)
	fmt.Fprintf(a.out, "  Crime number: %s/%d (%s)\n", c.CrimeNumber, c.Year, c.Station)
	fmt.Fprintf(a.out, "  Status:       %s\n", statusLabel(c.Status))
	return c, nil
}

// List prints cases as a table.
func (a *CaseAdapter) List(ctx context.Context, filters primary.CaseFilters) ([]*primary.Case, error) {
	cases, err := a.service.ListCases(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}

	if len(cases) == 0 {
		fmt.Fprintln(a.out, "No cases found.")
		return cases, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tCRIME NO\tYEAR\tSTATION\tSTATUS\tCREATED")
	for _, c := range cases {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n", c.ID, c.CrimeNumber, c.Year, c.Station, statusLabel(c.Status), formatTime(c.CreatedAt))
	}
	w.Flush()
	return cases, nil
}

// Show prints one case.
func (a *CaseAdapter) Show(ctx context.Context, caseID string) (*primary.Case, error) {
	c, err := a.service.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "\nCase: %s\n", c.ID)
	fmt.Fprintf(a.out, "Station:      %s\n", c.Station)
	fmt.Fprintf(a.out, "Crime number: %s\n", c.CrimeNumber)
	fmt.Fprintf(a.out, "Year:         %d\n", c.Year)
	fmt.Fprintf(a.out, "FIR date:     %s\n", c.FIRDate.Format("2006-01-02"))
	if c.SeizureDate != nil {
		fmt.Fprintf(a.out, "Seized:       %s\n", c.SeizureDate.Format("2006-01-02"))
	}
	if c.ActLaw != "" || len(c.Sections) > 0 {
		fmt.Fprintf(a.out, "Act/sections: %s %s\n", c.ActLaw, strings.Join(c.Sections, ", "))
	}
	fmt.Fprintf(a.out, "Officer:      %s\n", c.OfficerID)
	fmt.Fprintf(a.out, "Status:       %s\n", statusLabel(c.Status))
	fmt.Fprintf(a.out, "Created:      %s\n", formatTime(c.CreatedAt))
	fmt.Fprintln(a.out)
	return c, nil
}

// CloseCheck re-evaluates a case and reports the outcome.
func (a *CaseAdapter) CloseCheck(ctx context.Context, caseID string, actor ctxutil.Actor) (*primary.CloseResult, error) {
	result, err := a.service.CloseIfComplete(ctx, caseID, actor)
	if err != nil {
		return nil, err
	}

	switch {
	case result.Closed:
		fmt.Fprintf(a.out, "✓ Case %s closed (%s)\n", caseID, statusLabel(result.Status))
	case result.Status == "DISPOSED":
		fmt.Fprintf(a.out, "Case %s is already %s\n", caseID, statusLabel(result.Status))
	default:
		fmt.Fprintf(a.out, "Case %s stays %s: %d propert%s still in custody\n",
			caseID, statusLabel(result.Status), result.Remaining, plural(result.Remaining, "y", "ies"))
	}
	return result, nil
}

// Reconcile closes every case whose properties are all disposed.
func (a *CaseAdapter) Reconcile(ctx context.Context) (int, error) {
	closed, err := a.service.ReconcileClosures(ctx)
	fmt.Fprintf(a.out, "Reconciled %d case(s)\n", closed)
	return closed, err
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
