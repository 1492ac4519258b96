package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/example/malkhana/internal/core/access"
	"github.com/example/malkhana/internal/core/alert"
	"github.com/example/malkhana/internal/ctxutil"
	"github.com/example/malkhana/internal/ledgererr"
	"github.com/example/malkhana/internal/ports/primary"
	"github.com/example/malkhana/internal/ports/secondary"
	"github.com/example/malkhana/internal/telemetry"
)

// DefaultNotificationLimit is the page size of ListForUser.
const DefaultNotificationLimit = 20

// NotificationServiceImpl implements the NotificationService interface.
type NotificationServiceImpl struct {
	store   secondary.Store
	logger  *slog.Logger
	metrics *telemetry.Metrics
	now     func() time.Time
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(store secondary.Store, logger *slog.Logger, metrics *telemetry.Metrics) *NotificationServiceImpl {
	return &NotificationServiceImpl{
		store:   store,
		logger:  logger,
		metrics: metrics,
		now:     systemNow,
	}
}

// Sweep raises one PENDING_CASE notification per (eligible user, stale case)
// pair. Inserts rely on the unique index to drop duplicates, so overlapping
// sweeps need no lock and never fail on an existing pair.
func (s *NotificationServiceImpl) Sweep(ctx context.Context, threshold time.Duration) (_ *primary.SweepResult, err error) {
	ctx, done := observe(ctx, s.metrics, "sweep")
	defer done(&err)

	now := s.now()
	stale, err := s.store.Cases().ListStale(ctx, alert.StaleCutoff(now, threshold))
	if err != nil {
		return nil, err
	}
	result := &primary.SweepResult{StaleCases: len(stale)}
	if len(stale) == 0 {
		return result, nil
	}

	users, err := s.store.Users().ListByRoles(ctx, access.EligibleForAlerts())
	if err != nil {
		return nil, err
	}
	result.Recipients = len(users)

	notifications := s.store.Notifications()
	for _, u := range users {
		for _, c := range stale {
			created, err := notifications.InsertIgnoreConflict(ctx, &secondary.NotificationRecord{
				ID:          newRecordID(),
				UserID:      u.ID,
				Type:        alert.TypePendingCase,
				ReferenceID: c.ID,
				Message:     alert.PendingCaseMessage(c.CrimeNumber, threshold),
				CreatedAt:   now,
			})
			if err != nil {
				s.metrics.NotificationsCreated(result.Created)
				return result, err
			}
			if created {
				result.Created++
			}
		}
	}

	s.metrics.NotificationsCreated(result.Created)
	s.logger.InfoContext(ctx, "pending-case sweep finished",
		"stale_cases", result.StaleCases, "recipients", result.Recipients, "created", result.Created)
	return result, nil
}

// ListForUser returns a user's notifications, newest first.
func (s *NotificationServiceImpl) ListForUser(ctx context.Context, userID string, limit int) ([]*primary.Notification, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	records, err := s.store.Notifications().ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	out := make([]*primary.Notification, len(records))
	for i, r := range records {
		out[i] = &primary.Notification{
			ID:          r.ID,
			UserID:      r.UserID,
			Type:        r.Type,
			ReferenceID: r.ReferenceID,
			Message:     r.Message,
			Read:        r.Read,
			CreatedAt:   r.CreatedAt,
		}
	}
	return out, nil
}

// MarkRead marks one of the actor's notifications read.
func (s *NotificationServiceImpl) MarkRead(ctx context.Context, notificationID string, actor ctxutil.Actor) error {
	repo := s.store.Notifications()

	n, err := repo.GetByID(ctx, notificationID)
	if err != nil && !errors.Is(err, ledgererr.ErrNotFound) {
		return err
	}

	guardCtx := alert.MarkReadContext{NotificationID: notificationID, ActorID: actor.ID}
	if n != nil {
		guardCtx.Exists = true
		guardCtx.OwnerID = n.UserID
	}
	if err := alert.CanMarkRead(guardCtx).Error(); err != nil {
		return err
	}

	if n.Read {
		return nil
	}
	return repo.MarkRead(ctx, notificationID)
}
