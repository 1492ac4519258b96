package primary

import (
	"context"
	"time"

	"github.com/example/malkhana/internal/ctxutil"
)

// NotificationService defines the primary port for pending-case alerts.
type NotificationService interface {
	// Sweep creates one notification per (eligible user, stale case) pair that
	// does not have one yet, and returns how many were created.
	Sweep(ctx context.Context, threshold time.Duration) (*SweepResult, error)

	// ListForUser returns a user's notifications, newest first.
	ListForUser(ctx context.Context, userID string, limit int) ([]*Notification, error)

	// MarkRead marks one of the actor's notifications read.
	MarkRead(ctx context.Context, notificationID string, actor ctxutil.Actor) error
}

// SweepResult summarises one sweep.
type SweepResult struct {
	StaleCases int `json:"staleCases"`
	Recipients int `json:"recipients"`
	Created    int `json:"created"`
}

// Notification is the public view of a notification.
type Notification struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Type        string    `json:"type"`
	ReferenceID string    `json:"referenceId"`
	Message     string    `json:"message"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"createdAt"`
}
