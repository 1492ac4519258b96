package app

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/malkhana/internal/core/access"
	"github.com/example/malkhana/internal/core/audit"
	"github.com/example/malkhana/internal/core/guard"
	"github.com/example/malkhana/internal/ctxutil"
	"github.com/example/malkhana/internal/ledgererr"
	"github.com/example/malkhana/internal/ports/primary"
	"github.com/example/malkhana/internal/ports/secondary"
)

// OfficerServiceImpl implements the OfficerService interface.
type OfficerServiceImpl struct {
	store      secondary.Store
	bcryptCost int
	now        func() time.Time
}

// NewOfficerService creates a new OfficerService.
func NewOfficerService(store secondary.Store) *OfficerServiceImpl {
	return &OfficerServiceImpl{
		store:      store,
		bcryptCost: bcrypt.DefaultCost,
		now:        systemNow,
	}
}

// AddOfficer creates an officer account with a bcrypt password hash.
func (s *OfficerServiceImpl) AddOfficer(ctx context.Context, req primary.AddOfficerRequest, actor ctxutil.Actor) (*primary.Officer, error) {
	if err := requireRole(actor, access.ActionAddOfficer); err != nil {
		return nil, err
	}

	role := access.NormalizeRole(req.Role)
	if role == "" {
		role = access.RoleOfficer
	}

	var fields []ledgererr.FieldError
	fields = guard.Required(fields, "name", strings.TrimSpace(req.Name))
	fields = guard.Required(fields, "officerId", strings.TrimSpace(req.OfficerID))
	fields = guard.Required(fields, "password", req.Password)
	fields = guard.Required(fields, "station", strings.TrimSpace(req.Station))
	if !access.IsKnownRole(role) {
		fields = append(fields, ledgererr.FieldError{Field: "role", Message: "must be ADMIN or OFFICER"})
	}
	if err := guard.Invalid(fields).Error(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, ledgererr.Validation(ledgererr.FieldError{Field: "password", Message: err.Error()})
	}

	now := s.now()
	record := &secondary.UserRecord{
		ID:           newRecordID(),
		OfficerID:    strings.TrimSpace(req.OfficerID),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		Role:         role,
		Station:      strings.TrimSpace(req.Station),
		CreatedAt:    now,
	}

	err = s.store.RunInTransaction(ctx, func(tx secondary.Tx) error {
		if err := tx.Users().Create(ctx, record); err != nil {
			return err
		}
		return tx.Audit().Append(ctx, auditRecord(audit.ActionOfficerAdded, audit.EntityUser, record.ID, actor.ID, now, nil, recordToOfficer(record)))
	})
	if err != nil {
		return nil, err
	}

	return recordToOfficer(record), nil
}

// ListOfficers lists accounts, optionally restricted to one role.
func (s *OfficerServiceImpl) ListOfficers(ctx context.Context, role string) ([]*primary.Officer, error) {
	var roles []string
	if r := access.NormalizeRole(role); r != "" {
		roles = []string{r}
	}

	records, err := s.store.Users().ListByRoles(ctx, roles)
	if err != nil {
		return nil, err
	}

	officers := make([]*primary.Officer, len(records))
	for i, r := range records {
		officers[i] = recordToOfficer(r)
	}
	return officers, nil
}

func recordToOfficer(r *secondary.UserRecord) *primary.Officer {
	return &primary.Officer{
		ID:        r.ID,
		OfficerID: r.OfficerID,
		Name:      r.Name,
		Role:      r.Role,
		Station:   r.Station,
		CreatedAt: r.CreatedAt,
	}
}
