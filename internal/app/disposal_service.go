package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/example/malkhana/internal/core/access"
	"github.com/example/malkhana/internal/core/audit"
	"github.com/example/malkhana/internal/core/custody"
	"github.com/example/malkhana/internal/core/disposal"
	"github.com/example/malkhana/internal/ctxutil"
	"github.com/example/malkhana/internal/ledgererr"
	"github.com/example/malkhana/internal/ports/primary"
	"github.com/example/malkhana/internal/ports/secondary"
	"github.com/example/malkhana/internal/telemetry"
)

// caseCloser is the part of the case service the disposal workflow triggers.
type caseCloser interface {
	CloseIfComplete(ctx context.Context, caseID string, actor ctxutil.Actor) (*primary.CloseResult, error)
}

// DisposalServiceImpl implements the DisposalService interface.
type DisposalServiceImpl struct {
	store   secondary.Store
	cases   caseCloser
	logger  *slog.Logger
	metrics *telemetry.Metrics
	now     func() time.Time
}

// NewDisposalService creates a new DisposalService with injected dependencies.
func NewDisposalService(store secondary.Store, cases caseCloser, logger *slog.Logger, metrics *telemetry.Metrics) *DisposalServiceImpl {
	return &DisposalServiceImpl{
		store:   store,
		cases:   cases,
		logger:  logger,
		metrics: metrics,
		now:     systemNow,
	}
}

// DisposeProperty records the disposal and flips the property to DISPOSED in
// one transaction, then re-evaluates the owning case. A failed re-evaluation
// does not fail the disposal; ReconcileClosures picks it up.
func (s *DisposalServiceImpl) DisposeProperty(ctx context.Context, req primary.DisposeRequest, actor ctxutil.Actor) (_ *primary.DisposeResult, err error) {
	ctx, done := observe(ctx, s.metrics, "dispose_property")
	defer done(&err)

	if err := requireRole(actor, access.ActionDisposeProperty); err != nil {
		return nil, err
	}
	disposalType := strings.ToUpper(strings.TrimSpace(req.DisposalType))
	if err := disposal.ValidateRequest(req.PropertyID, disposalType).Error(); err != nil {
		return nil, err
	}

	now := s.now()
	record := &secondary.DisposalRecord{
		ID:            newRecordID(),
		PropertyID:    req.PropertyID,
		DisposalType:  disposalType,
		CourtOrderRef: strings.TrimSpace(req.CourtOrderRef),
		DisposedBy:    actor.ID,
		Timestamp:     now,
		Remarks:       strings.TrimSpace(req.Remarks),
	}

	var property *secondary.PropertyRecord
	err = s.store.RunInTransaction(ctx, func(tx secondary.Tx) error {
		p, err := tx.Properties().GetByID(ctx, req.PropertyID)
		if err != nil {
			return err
		}
		existing, err := tx.Disposals().CountByProperty(ctx, p.ID)
		if err != nil {
			return err
		}

		guardResult := disposal.CanDispose(disposal.DisposeContext{
			PropertyID:     p.ID,
			PropertyStatus: custody.Status(p.Status),
			HasDisposal:    existing > 0,
		})
		if err := guardResult.Error(); err != nil {
			return err
		}

		// The unique property_id index is the final arbiter between racing disposals.
		if err := tx.Disposals().Create(ctx, record); err != nil {
			return err
		}
		changed, err := tx.Properties().MarkDisposed(ctx, p.ID, now)
		if err != nil {
			return err
		}
		if !changed {
			return ledgererr.AlreadyDisposed(p.ID)
		}

		if err := tx.Audit().Append(ctx, auditRecord(audit.ActionPropertyDisposed, audit.EntityProperty, p.ID, actor.ID, now,
			disposal.Snapshot{Status: p.Status},
			disposal.Snapshot{Status: string(custody.StatusDisposed), DisposalType: disposalType, CourtOrderRef: record.CourtOrderRef})); err != nil {
			return err
		}

		p.Status = string(custody.StatusDisposed)
		p.Version++
		p.UpdatedAt = now
		property = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &primary.DisposeResult{
		Disposal: recordToDisposal(record),
		Property: recordToProperty(property),
	}

	closure, closeErr := s.cases.CloseIfComplete(ctx, property.CaseID, actor)
	if closeErr != nil {
		s.logger.ErrorContext(ctx, "case closure check failed after disposal; reconcile will retry",
			"case_id", property.CaseID, "property_id", property.ID, "error", closeErr)
		return result, nil
	}
	result.Closure = closure
	return result, nil
}

// ListDisposals lists disposals, newest first.
func (s *DisposalServiceImpl) ListDisposals(ctx context.Context, filters primary.DisposalFilters) ([]*primary.Disposal, error) {
	records, err := s.store.Disposals().List(ctx, secondary.DisposalFilters{
		PropertyID: filters.PropertyID,
		Limit:      filters.Limit,
	})
	if err != nil {
		return nil, err
	}

	disposals := make([]*primary.Disposal, len(records))
	for i, r := range records {
		disposals[i] = recordToDisposal(r)
	}
	return disposals, nil
}

// GetDisposalForProperty returns the disposal of a property.
func (s *DisposalServiceImpl) GetDisposalForProperty(ctx context.Context, propertyID string) (*primary.Disposal, error) {
	record, err := s.store.Disposals().GetByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return recordToDisposal(record), nil
}

func recordToDisposal(r *secondary.DisposalRecord) *primary.Disposal {
	return &primary.Disposal{
		ID:            r.ID,
		PropertyID:    r.PropertyID,
		DisposalType:  r.DisposalType,
		CourtOrderRef: r.CourtOrderRef,
		DisposedBy:    r.DisposedBy,
		Timestamp:     r.Timestamp,
		Remarks:       r.Remarks,
	}
}
