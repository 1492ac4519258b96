package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/malkhana/internal/core/access"
	"github.com/example/malkhana/internal/core/audit"
	"github.com/example/malkhana/internal/core/casefile"
	"github.com/example/malkhana/internal/ctxutil"
	"github.com/example/malkhana/internal/ports/primary"
	"github.com/example/malkhana/internal/ports/secondary"
	"github.com/example/malkhana/internal/telemetry"
)

// CaseServiceImpl implements the CaseService interface.
type CaseServiceImpl struct {
	store   secondary.Store
	logger  *slog.Logger
	metrics *telemetry.Metrics
	now     func() time.Time
}

// NewCaseService creates a new CaseService with injected dependencies.
func NewCaseService(store secondary.Store, logger *slog.Logger, metrics *telemetry.Metrics) *CaseServiceImpl {
	return &CaseServiceImpl{
		store:   store,
		logger:  logger,
		metrics: metrics,
		now:     systemNow,
	}
}

// CreateCase registers a new PENDING case.
func (s *CaseServiceImpl) CreateCase(ctx context.Context, req primary.CreateCaseRequest, actor ctxutil.Actor) (_ *primary.Case, err error) {
	ctx, done := observe(ctx, s.metrics, "create_case")
	defer done(&err)

	if err := requireRole(actor, access.ActionCreateCase); err != nil {
		return nil, err
	}

	now := s.now()
	guardResult := casefile.CanCreateCase(casefile.NewCaseContext{
		Station:     req.Station,
		CrimeNumber: req.CrimeNumber,
		Year:        req.Year,
		FIRDate:     req.FIRDate,
		SeizureDate: req.SeizureDate,
		Now:         now,
	})
	if err := guardResult.Error(); err != nil {
		return nil, err
	}

	record := &secondary.CaseRecord{
		ID:          newRecordID(),
		Station:     strings.TrimSpace(req.Station),
		CrimeNumber: strings.TrimSpace(req.CrimeNumber),
		Year:        req.Year,
		FIRDate:     req.FIRDate.UTC(),
		SeizureDate: req.SeizureDate,
		ActLaw:      strings.TrimSpace(req.ActLaw),
		Sections:    req.Sections,
		OfficerID:   actor.ID,
		Status:      string(casefile.InitialStatus()),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.store.RunInTransaction(ctx, func(tx secondary.Tx) error {
		if err := tx.Cases().Create(ctx, record); err != nil {
			return err
		}
		return tx.Audit().Append(ctx, auditRecord(audit.ActionCaseCreated, audit.EntityCase, record.ID, actor.ID, now, nil, recordToCase(record)))
	})
	if err != nil {
		return nil, err
	}

	return recordToCase(record), nil
}

// GetCase retrieves a case by ID.
func (s *CaseServiceImpl) GetCase(ctx context.Context, caseID string) (*primary.Case, error) {
	record, err := s.store.Cases().GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	return recordToCase(record), nil
}

// ListCases lists cases, newest first.
func (s *CaseServiceImpl) ListCases(ctx context.Context, filters primary.CaseFilters) ([]*primary.Case, error) {
	records, err := s.store.Cases().List(ctx, secondary.CaseFilters{
		Search: filters.Search,
		Status: strings.ToUpper(strings.TrimSpace(filters.Status)),
		Limit:  filters.Limit,
	})
	if err != nil {
		return nil, err
	}

	cases := make([]*primary.Case, len(records))
	for i, r := range records {
		cases[i] = recordToCase(r)
	}
	return cases, nil
}

// CloseIfComplete flips a PENDING case to DISPOSED when none of its
// properties remain in custody. Re-checking a closed case is a no-op and
// writes no audit entry.
func (s *CaseServiceImpl) CloseIfComplete(ctx context.Context, caseID string, actor ctxutil.Actor) (_ *primary.CloseResult, err error) {
	ctx, done := observe(ctx, s.metrics, "close_case")
	defer done(&err)

	result := &primary.CloseResult{CaseID: caseID}
	err = s.store.RunInTransaction(ctx, func(tx secondary.Tx) error {
		record, err := tx.Cases().GetByID(ctx, caseID)
		if err != nil {
			return err
		}
		total, remaining, err := tx.Properties().CountByCase(ctx, caseID)
		if err != nil {
			return err
		}

		result.Remaining = remaining
		result.Status = record.Status

		decision := casefile.EvaluateClosure(casefile.ClosureContext{
			CaseID:        caseID,
			CurrentStatus: casefile.Status(record.Status),
			PropertyCount: total,
			Remaining:     remaining,
		})
		if decision != casefile.ClosureTransition {
			return nil
		}

		now := s.now()
		changed, err := tx.Cases().MarkDisposed(ctx, caseID, now)
		if err != nil {
			return err
		}
		if !changed {
			// Closed concurrently; the other writer owns the audit entry.
			result.Status = string(casefile.StatusDisposed)
			return nil
		}

		result.Closed = true
		result.Status = string(casefile.StatusDisposed)
		return tx.Audit().Append(ctx, auditRecord(audit.ActionCaseDisposed, audit.EntityCase, caseID, actor.ID, now,
			audit.StatusSnapshot{Status: string(casefile.StatusPending)},
			audit.StatusSnapshot{Status: string(casefile.StatusDisposed)}))
	})
	if err != nil {
		return nil, err
	}

	if result.Closed {
		s.metrics.CaseClosed()
		s.logger.InfoContext(ctx, "case closed", "case_id", caseID)
	}
	return result, nil
}

// ReconcileClosures closes PENDING cases whose properties are all disposed.
// It recovers closures missed when a disposal's follow-up check failed.
func (s *CaseServiceImpl) ReconcileClosures(ctx context.Context) (int, error) {
	ids, err := s.store.Cases().ListClosable(ctx)
	if err != nil {
		return 0, err
	}

	closed := 0
	var errs []error
	for _, id := range ids {
		result, err := s.CloseIfComplete(ctx, id, ctxutil.Actor{ID: audit.SystemActor})
		if err != nil {
			s.logger.ErrorContext(ctx, "reconcile closure failed", "case_id", id, "error", err)
			errs = append(errs, fmt.Errorf("case %s: %w", id, err))
			continue
		}
		if result.Closed {
			closed++
		}
	}

	if closed > 0 {
		s.logger.InfoContext(ctx, "reconciled case closures", "closed", closed)
	}
	return closed, errors.Join(errs...)
}

func recordToCase(r *secondary.CaseRecord) *primary.Case {
	sections := r.Sections
	if sections == nil {
		sections = []string{}
	}
	return &primary.Case{
		ID:          r.ID,
		Station:     r.Station,
		CrimeNumber: r.CrimeNumber,
		Year:        r.Year,
		FIRDate:     r.FIRDate,
		SeizureDate: r.SeizureDate,
		ActLaw:      r.ActLaw,
		Sections:    sections,
		OfficerID:   r.OfficerID,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
