package primary

import (
	"context"
	"time"

	"github.com/example/malkhana/internal/ctxutil"
)

// DisposalService defines the primary port for disposing properties.
type DisposalService interface {
	// DisposeProperty records the terminal disposal of a property.
	DisposeProperty(ctx context.Context, req DisposeRequest, actor ctxutil.Actor) (*DisposeResult, error)

	// ListDisposals lists disposals, newest first.
	ListDisposals(ctx context.Context, filters DisposalFilters) ([]*Disposal, error)

	// GetDisposalForProperty returns the disposal of a property.
	GetDisposalForProperty(ctx context.Context, propertyID string) (*Disposal, error)
}

// DisposeRequest contains parameters for a disposal.
type DisposeRequest struct {
	PropertyID    string `json:"propertyId"`
	DisposalType  string `json:"disposalType"`
	CourtOrderRef string `json:"courtOrderRef,omitempty"`
	Remarks       string `json:"remarks,omitempty"`
}

// DisposeResult contains the disposal and the follow-up case check.
type DisposeResult struct {
	Disposal *Disposal    `json:"disposal"`
	Property *Property    `json:"property"`
	Closure  *CloseResult `json:"closure,omitempty"` // nil when the check failed; the reconcile sweep retries it
}

// Disposal is the public view of a disposal.
type Disposal struct {
	ID            string    `json:"id"`
	PropertyID    string    `json:"propertyId"`
	DisposalType  string    `json:"disposalType"`
	CourtOrderRef string    `json:"courtOrderRef,omitempty"`
	DisposedBy    string    `json:"disposedBy"`
	Timestamp     time.Time `json:"timestamp"`
	Remarks       string    `json:"remarks,omitempty"`
}

// DisposalFilters contains filter options for listing disposals.
type DisposalFilters struct {
	PropertyID string
	Limit      int
}
