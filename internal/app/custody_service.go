package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/example/malkhana/internal/core/access"
	"github.com/example/malkhana/internal/core/audit"
	"github.com/example/malkhana/internal/core/custody"
	"github.com/example/malkhana/internal/ctxutil"
	"github.com/example/malkhana/internal/ledgererr"
	"github.com/example/malkhana/internal/ports/primary"
	"github.com/example/malkhana/internal/ports/secondary"
	"github.com/example/malkhana/internal/telemetry"
)

// errLostRace rolls back a transfer attempt whose compare-and-set matched no row.
var errLostRace = errors.New("custody compare-and-set lost")

// CustodyServiceImpl implements the CustodyService interface.
type CustodyServiceImpl struct {
	store       secondary.Store
	logger      *slog.Logger
	metrics     *telemetry.Metrics
	maxAttempts int
	now         func() time.Time
}

// NewCustodyService creates a new CustodyService. maxAttempts bounds the
// transfer retry loop; values below 1 use custody.DefaultMaxAttempts.
func NewCustodyService(store secondary.Store, logger *slog.Logger, metrics *telemetry.Metrics, maxAttempts int) *CustodyServiceImpl {
	if maxAttempts < 1 {
		maxAttempts = custody.DefaultMaxAttempts
	}
	return &CustodyServiceImpl{
		store:       store,
		logger:      logger,
		metrics:     metrics,
		maxAttempts: maxAttempts,
		now:         systemNow,
	}
}

// AddProperty registers an IN_CUSTODY property under an existing case.
func (s *CustodyServiceImpl) AddProperty(ctx context.Context, req primary.AddPropertyRequest, actor ctxutil.Actor) (_ *primary.Property, err error) {
	ctx, done := observe(ctx, s.metrics, "add_property")
	defer done(&err)

	if err := requireRole(actor, access.ActionAddProperty); err != nil {
		return nil, err
	}

	now := s.now()
	record := &secondary.PropertyRecord{
		ID:          newRecordID(),
		CaseID:      req.CaseID,
		Category:    strings.TrimSpace(req.Category),
		BelongsTo:   strings.ToUpper(strings.TrimSpace(req.BelongsTo)),
		Nature:      strings.TrimSpace(req.Nature),
		Quantity:    strings.TrimSpace(req.Quantity),
		Location:    strings.TrimSpace(req.Location),
		Description: strings.TrimSpace(req.Description),
		Status:      string(custody.StatusInCustody),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.store.RunInTransaction(ctx, func(tx secondary.Tx) error {
		caseExists := false
		if req.CaseID != "" {
			_, err := tx.Cases().GetByID(ctx, req.CaseID)
			switch {
			case err == nil:
				caseExists = true
			case !errors.Is(err, ledgererr.ErrNotFound):
				return err
			}
		}

		guardResult := custody.CanAddProperty(custody.AddPropertyContext{
			CaseID:     req.CaseID,
			CaseExists: caseExists,
			Location:   record.Location,
			BelongsTo:  record.BelongsTo,
		})
		if err := guardResult.Error(); err != nil {
			return err
		}

		if err := tx.Properties().Create(ctx, record); err != nil {
			return err
		}
		return tx.Audit().Append(ctx, auditRecord(audit.ActionPropertyAdded, audit.EntityProperty, record.ID, actor.ID, now, nil, recordToProperty(record)))
	})
	if err != nil {
		return nil, err
	}

	return recordToProperty(record), nil
}

// TransferCustody moves a property to toLocation.
//
// Each attempt reads the property and its version, then applies a
// compare-and-set on that version inside one transaction together with the
// custody log and the audit entry. A lost race rolls the attempt back and
// retries with a fresh read; after maxAttempts the caller gets CONFLICT.
func (s *CustodyServiceImpl) TransferCustody(ctx context.Context, req primary.TransferRequest, actor ctxutil.Actor) (_ *primary.TransferResult, err error) {
	ctx, done := observe(ctx, s.metrics, "transfer_custody")
	defer done(&err)

	if err := requireRole(actor, access.ActionTransferCustody); err != nil {
		return nil, err
	}
	if err := custody.ValidateTransfer(req.PropertyID, req.ToLocation).Error(); err != nil {
		return nil, err
	}
	to := strings.TrimSpace(req.ToLocation)

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		var result *primary.TransferResult
		err := s.store.RunInTransaction(ctx, func(tx secondary.Tx) error {
			property, err := tx.Properties().GetByID(ctx, req.PropertyID)
			if err != nil {
				return err
			}

			guardResult := custody.CanTransfer(custody.TransferContext{
				PropertyID: property.ID,
				Status:     custody.Status(property.Status),
			})
			if err := guardResult.Error(); err != nil {
				return err
			}

			now := s.now()
			changed, err := tx.Properties().CompareAndSetLocation(ctx, property.ID, property.Version, to, now)
			if err != nil {
				return err
			}
			if !changed {
				return errLostRace
			}

			entry := &secondary.CustodyLogRecord{
				ID:           newRecordID(),
				PropertyID:   property.ID,
				FromLocation: property.Location,
				ToLocation:   to,
				Purpose:      strings.TrimSpace(req.Purpose),
				HandledBy:    actor.ID,
				Timestamp:    now,
				Remarks:      strings.TrimSpace(req.Remarks),
			}
			if err := tx.CustodyLogs().Create(ctx, entry); err != nil {
				return err
			}
			if err := tx.Audit().Append(ctx, auditRecord(audit.ActionPropertyMoved, audit.EntityProperty, property.ID, actor.ID, now,
				custody.LocationSnapshot{Location: property.Location},
				custody.LocationSnapshot{Location: to})); err != nil {
				return err
			}

			property.Location = to
			property.Version++
			property.UpdatedAt = now
			result = &primary.TransferResult{
				Property: recordToProperty(property),
				Log:      recordToCustodyLog(entry),
			}
			return nil
		})
		if err == nil {
			result.Attempts = attempt
			return result, nil
		}
		if !errors.Is(err, errLostRace) {
			return nil, err
		}

		s.metrics.TransferConflict()
		s.logger.WarnContext(ctx, "custody transfer lost compare-and-set",
			"property_id", req.PropertyID, "attempt", attempt, "max_attempts", s.maxAttempts)
	}

	s.logger.WarnContext(ctx, "custody transfer retries exhausted",
		"property_id", req.PropertyID, "to_location", to, "attempts", s.maxAttempts)
	return nil, ledgererr.Conflict("property %s was moved concurrently; gave up after %d attempts", req.PropertyID, s.maxAttempts)
}

// GetProperty retrieves a property by ID.
func (s *CustodyServiceImpl) GetProperty(ctx context.Context, propertyID string) (*primary.Property, error) {
	record, err := s.store.Properties().GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return recordToProperty(record), nil
}

// ListProperties lists properties filtered by case and/or status.
func (s *CustodyServiceImpl) ListProperties(ctx context.Context, filters primary.PropertyFilters) ([]*primary.Property, error) {
	records, err := s.store.Properties().List(ctx, secondary.PropertyFilters{
		CaseID: filters.CaseID,
		Status: strings.ToUpper(filters.Status),
		Limit:  filters.Limit,
	})
	if err != nil {
		return nil, err
	}

	properties := make([]*primary.Property, len(records))
	for i, r := range records {
		properties[i] = recordToProperty(r)
	}
	return properties, nil
}

// ListCustodyLogs returns the transfer chain of a property, oldest first.
func (s *CustodyServiceImpl) ListCustodyLogs(ctx context.Context, propertyID string) ([]*primary.CustodyLog, error) {
	if _, err := s.store.Properties().GetByID(ctx, propertyID); err != nil {
		return nil, err
	}

	records, err := s.store.CustodyLogs().ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	logs := make([]*primary.CustodyLog, len(records))
	for i, r := range records {
		logs[i] = recordToCustodyLog(r)
	}
	return logs, nil
}

func recordToProperty(r *secondary.PropertyRecord) *primary.Property {
	return &primary.Property{
		ID:          r.ID,
		CaseID:      r.CaseID,
		Category:    r.Category,
		BelongsTo:   r.BelongsTo,
		Nature:      r.Nature,
		Quantity:    r.Quantity,
		Location:    r.Location,
		Description: r.Description,
		Status:      r.Status,
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func recordToCustodyLog(r *secondary.CustodyLogRecord) *primary.CustodyLog {
	return &primary.CustodyLog{
		ID:           r.ID,
		PropertyID:   r.PropertyID,
		FromLocation: r.FromLocation,
		ToLocation:   r.ToLocation,
		Purpose:      r.Purpose,
		HandledBy:    r.HandledBy,
		Timestamp:    r.Timestamp,
		Remarks:      r.Remarks,
	}
}
