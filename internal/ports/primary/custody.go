package primary

import (
	"context"
	"time"

	"github.com/example/malkhana/internal/ctxutil"
)

// CustodyService defines the primary port for property registration and movement.
type CustodyService interface {
	// AddProperty registers an IN_CUSTODY property under an existing case.
	AddProperty(ctx context.Context, req AddPropertyRequest, actor ctxutil.Actor) (*Property, error)

	// TransferCustody moves a property, recording the custody chain.
	TransferCustody(ctx context.Context, req TransferRequest, actor ctxutil.Actor) (*TransferResult, error)

	// GetProperty retrieves a property by ID.
	GetProperty(ctx context.Context, propertyID string) (*Property, error)

	// ListProperties lists properties filtered by case and/or status.
	ListProperties(ctx context.Context, filters PropertyFilters) ([]*Property, error)

	// ListCustodyLogs returns the transfer chain of a property, oldest first.
	ListCustodyLogs(ctx context.Context, propertyID string) ([]*CustodyLog, error)
}

// AddPropertyRequest contains parameters for registering a property.
type AddPropertyRequest struct {
	CaseID      string `json:"caseId"`
	Category    string `json:"category,omitempty"`
	BelongsTo   string `json:"belongsTo,omitempty"`
	Nature      string `json:"nature,omitempty"`
	Quantity    string `json:"quantity,omitempty"`
	Location    string `json:"location"`
	Description string `json:"description,omitempty"`
}

// Property is the public view of a property.
type Property struct {
	ID          string    `json:"id"`
	CaseID      string    `json:"caseId"`
	Category    string    `json:"category,omitempty"`
	BelongsTo   string    `json:"belongsTo,omitempty"`
	Nature      string    `json:"nature,omitempty"`
	Quantity    string    `json:"quantity,omitempty"`
	Location    string    `json:"location"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PropertyFilters contains filter options for listing properties.
type PropertyFilters struct {
	CaseID string
	Status string
	Limit  int
}

// TransferRequest contains parameters for a custody transfer.
type TransferRequest struct {
	PropertyID string `json:"propertyId"`
	ToLocation string `json:"toLocation"`
	Purpose    string `json:"purpose,omitempty"`
	Remarks    string `json:"remarks,omitempty"`
}

// TransferResult contains the moved property and its new log entry.
type TransferResult struct {
	Property *Property   `json:"property"`
	Log      *CustodyLog `json:"log"`
	Attempts int         `json:"attempts"`
}

// CustodyLog is the public view of one transfer.
type CustodyLog struct {
	ID           string    `json:"id"`
	PropertyID   string    `json:"propertyId"`
	FromLocation string    `json:"fromLocation"`
	ToLocation   string    `json:"toLocation"`
	Purpose      string    `json:"purpose,omitempty"`
	HandledBy    string    `json:"handledBy"`
	Timestamp    time.Time `json:"timestamp"`
	Remarks      string    `json:"remarks,omitempty"`
}
