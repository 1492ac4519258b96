package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/example/malkhana/internal/ctxutil"
	"github.com/example/malkhana/internal/ports/primary"
)

// CustodyAdapter translates property and custody commands to CustodyService calls.
type CustodyAdapter struct {
	service primary.CustodyService
	out     io.Writer
}

// NewCustodyAdapter creates a new CustodyAdapter.
func NewCustodyAdapter(service primary.CustodyService, out io.Writer) *CustodyAdapter {
	return &CustodyAdapter{service: service, out: out}
}

// Add registers a property.
func (a *CustodyAdapter) Add(ctx context.Context, req primary.AddPropertyRequest, actor ctxutil.Actor) (*primary.Property, error) {
	p, err := a.service.AddProperty(ctx, req, actor)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "✓ Added property %s to case %s\n", p.ID, p.CaseID)
	fmt.Fprintf(a.out, "  Location: %s\n", p.Location)
	return p, nil
}

// List prints properties as a table.
func (a *CustodyAdapter) List(ctx context.Context, filters primary.PropertyFilters) ([]*primary.Property, error) {
	properties, err := a.service.ListProperties(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}

	if len(properties) == 0 {
		fmt.Fprintln(a.out, "No properties found.")
		return properties, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tCASE\tCATEGORY\tQUANTITY\tLOCATION\tSTATUS")
	for _, p := range properties {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.CaseID, orDash(p.Category), orDash(p.Quantity), p.Location, statusLabel(p.Status))
	}
	w.Flush()
	return properties, nil
}

// Show prints one property.
func (a *CustodyAdapter) Show(ctx context.Context, propertyID string) (*primary.Property, error) {
	p, err := a.service.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "\nProperty: %s\n", p.ID)
	fmt.Fprintf(a.out, "Case:        %s\n", p.CaseID)
	fmt.Fprintf(a.out, "Category:    %s\n", orDash(p.Category))
	fmt.Fprintf(a.out, "Nature:      %s\n", orDash(p.Nature))
	fmt.Fprintf(a.out, "Belongs to:  %s\n", orDash(p.BelongsTo))
	fmt.Fprintf(a.out, "Quantity:    %s\n", orDash(p.Quantity))
	fmt.Fprintf(a.out, "Location:    %s\n", p.Location)
	fmt.Fprintf(a.out, "Status:      %s\n", statusLabel(p.Status))
	if p.Description != "" {
		fmt.Fprintf(a.out, "Description: %s\n", p.Description)
	}
	fmt.Fprintln(a.out)
	return p, nil
}

// Transfer moves a property and prints the new chain link.
func (a *CustodyAdapter) Transfer(ctx context.Context, req primary.TransferRequest, actor ctxutil.Actor) (*primary.TransferResult, error) {
	result, err := a.service.TransferCustody(ctx, req, actor)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "✓ Property %s moved\n", result.Property.ID)
	fmt.Fprintf(a.out, "  %s → %s\n", result.Log.FromLocation, result.Log.ToLocation)
	if result.Attempts > 1 {
		fmt.Fprintf(a.out, "  (succeeded after %d attempts)\n", result.Attempts)
	}
	return result, nil
}

// History prints the custody chain of a property, oldest first.
func (a *CustodyAdapter) History(ctx context.Context, propertyID string) ([]*primary.CustodyLog, error) {
	logs, err := a.service.ListCustodyLogs(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	if len(logs) == 0 {
		fmt.Fprintf(a.out, "Property %s has not moved since registration.\n", propertyID)
		return logs, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "WHEN\tFROM\tTO\tPURPOSE\tHANDLED BY")
	for _, l := range logs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", formatTime(l.Timestamp), l.FromLocation, l.ToLocation, orDash(l.Purpose), l.HandledBy)
	}
	w.Flush()
	return logs, nil
}
