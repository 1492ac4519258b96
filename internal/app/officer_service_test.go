package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/example/malkhana/internal/ledgererr"
	"github.com/example/malkhana/internal/ports/primary"
)

func newTestOfficerService(f *fakeStore) *OfficerServiceImpl {
	svc := NewOfficerService(f)
	svc.bcryptCost = bcrypt.MinCost
	svc.now = fixedClock(testNow)
	return svc
}

func TestAddOfficer_Success(t *testing.T) {
	f := newFakeStore()

	o, err := newTestOfficerService(f).AddOfficer(context.Background(), primary.AddOfficerRequest{
		Name: "Inspector Rao", OfficerID: "OFF-042", Password: "s3cret", Station: "North",
	}, admin)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if o.Role != "OFFICER" {
		t.Errorf("expected default role OFFICER, got %q", o.Role)
	}

	stored := f.users[o.ID]
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cret")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}

	entries := f.auditFor(o.ID)
	if len(entries) != 1 || entries[0].ActionType != "OFFICER_ADDED" {
		t.Fatalf("expected OFFICER_ADDED entry, got %+v", entries)
	}
	if strings.Contains(entries[0].NewValue, stored.PasswordHash) {
		t.Error("audit snapshot must not carry the password hash")
	}
}

func TestAddOfficer_Errors(t *testing.T) {
	f := newFakeStore()
	svc := newTestOfficerService(f)
	valid := primary.AddOfficerRequest{Name: "A", OfficerID: "OFF-1", Password: "pw", Station: "Central"}

	if _, err := svc.AddOfficer(context.Background(), valid, officer); !errors.Is(err, ledgererr.ErrForbidden) {
		t.Errorf("expected FORBIDDEN for officer, got %v", err)
	}

	bad := valid
	bad.Role = "CLERK"
	bad.Password = ""
	_, err := svc.AddOfficer(context.Background(), bad, admin)
	if ledgererr.CodeOf(err) != ledgererr.CodeValidation || len(ledgererr.FieldsOf(err)) != 2 {
		t.Errorf("expected 2 validation fields, got %v", err)
	}

	if _, err := svc.AddOfficer(context.Background(), valid, admin); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := svc.AddOfficer(context.Background(), valid, admin); !errors.Is(err, ledgererr.ErrConflict) {
		t.Errorf("expected CONFLICT for duplicate officer id, got %v", err)
	}
	if len(f.users) != 1 || len(f.audit) != 1 {
		t.Errorf("duplicate must leave no trace: users=%d audit=%d", len(f.users), len(f.audit))
	}
}

func TestListOfficers_ByRole(t *testing.T) {
	f := newFakeStore()
	seedUser(f, "U-1", "ADMIN")
	seedUser(f, "U-2", "OFFICER")
	seedUser(f, "U-3", "OFFICER")
	svc := newTestOfficerService(f)

	all, err := svc.ListOfficers(context.Background(), "")
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 officers, got %d (%v)", len(all), err)
	}
	admins, err := svc.ListOfficers(context.Background(), "admin")
	if err != nil || len(admins) != 1 || admins[0].ID != "U-1" {
		t.Errorf("unexpected admins %+v (%v)", admins, err)
	}
}
