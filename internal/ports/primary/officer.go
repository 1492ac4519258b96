package primary

import (
	"context"
	"time"

	"github.com/example/malkhana/internal/ctxutil"
)

// OfficerService defines the primary port for officer accounts.
type OfficerService interface {
	// AddOfficer creates an officer account. Admin only.
	AddOfficer(ctx context.Context, req AddOfficerRequest, actor ctxutil.Actor) (*Officer, error)

	// ListOfficers lists accounts, optionally by role.
	ListOfficers(ctx context.Context, role string) ([]*Officer, error)
}

// AddOfficerRequest contains parameters for creating an officer account.
type AddOfficerRequest struct {
	Name      string `json:"name"`
	OfficerID string `json:"officerId"`
	Password  string `json:"password"`
	Role      string `json:"role,omitempty"` // defaults to OFFICER
	Station   string `json:"station"`
}

// Officer is the public view of an account. The password hash never leaves the store.
type Officer struct {
	ID        string    `json:"id"`
	OfficerID string    `json:"officerId"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Station   string    `json:"station"`
	CreatedAt time.Time `json:"createdAt"`
}
