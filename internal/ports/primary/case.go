package primary

import (
	"context"
	"time"

	"github.com/example/malkhana/internal/ctxutil"
)

// CaseService defines the primary port for the case lifecycle.
type CaseService interface {
	// CreateCase registers a new PENDING case owned by actor.
	CreateCase(ctx context.Context, req CreateCaseRequest, actor ctxutil.Actor) (*Case, error)

	// GetCase retrieves a case by ID.
	GetCase(ctx context.Context, caseID string) (*Case, error)

	// ListCases lists cases, newest first.
	ListCases(ctx context.Context, filters CaseFilters) ([]*Case, error)

	// CloseIfComplete flips the case to DISPOSED once every property is disposed.
	CloseIfComplete(ctx context.Context, caseID string, actor ctxutil.Actor) (*CloseResult, error)

	// ReconcileClosures closes every PENDING case whose properties are all disposed.
	ReconcileClosures(ctx context.Context) (int, error)
}

// CreateCaseRequest contains parameters for registering a case.
type CreateCaseRequest struct {
	Station     string     `json:"station"`
	CrimeNumber string     `json:"crimeNumber"`
	Year        int        `json:"year"`
	FIRDate     time.Time  `json:"firDate"`
	SeizureDate *time.Time `json:"seizureDate,omitempty"`
	ActLaw      string     `json:"actLaw,omitempty"`
	Sections    []string   `json:"sections,omitempty"`
}

// Case is the public view of a case.
type Case struct {
	ID          string     `json:"id"`
	Station     string     `json:"station"`
	CrimeNumber string     `json:"crimeNumber"`
	Year        int        `json:"year"`
	FIRDate     time.Time  `json:"firDate"`
	SeizureDate *time.Time `json:"seizureDate,omitempty"`
	ActLaw      string     `json:"actLaw,omitempty"`
	Sections    []string   `json:"sections"`
	OfficerID   string     `json:"officerId"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CaseFilters contains filter options for listing cases.
type CaseFilters struct {
	Search string
	Status string
	Limit  int
}

// CloseResult reports what CloseIfComplete did.
type CloseResult struct {
	CaseID    string `json:"caseId"`
	Closed    bool   `json:"closed"`    // this call made the PENDING -> DISPOSED transition
	Remaining int    `json:"remaining"` // properties still in custody
	Status    string `json:"status"`
}
