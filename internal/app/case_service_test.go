package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/malkhana/internal/ctxutil"
	"github.com/example/malkhana/internal/ledgererr"
	"github.com/example/malkhana/internal/ports/primary"
)

func newTestCaseService(f *fakeStore) *CaseServiceImpl {
	svc := NewCaseService(f, discardLogger(), nil)
	svc.now = fixedClock(testNow)
	return svc
}

func validCaseRequest() primary.CreateCaseRequest {
	return primary.CreateCaseRequest{
		Station:     "Central",
		CrimeNumber: "CR-101",
		Year:        2024,
		FIRDate:     testNow.Add(-48 * time.Hour),
		ActLaw:      "IPC",
		Sections:    []string{"379", "411"},
	}
}

// ============================================================================
// CreateCase Tests
// ============================================================================

func TestCreateCase_Success(t *testing.T) {
	f := newFakeStore()
	svc := newTestCaseService(f)

	c, err := svc.CreateCase(context.Background(), validCaseRequest(), officer)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Status != "PENDING" {
		t.Errorf("expected status PENDING, got %q", c.Status)
	}
	if c.OfficerID != officer.ID {
		t.Errorf("expected officer %q, got %q", officer.ID, c.OfficerID)
	}
	if !c.CreatedAt.Equal(testNow) {
		t.Errorf("expected createdAt %v, got %v", testNow, c.CreatedAt)
	}

	entries := f.auditFor(c.ID)
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	if entries[0].ActionType != "CASE_CREATED" || entries[0].PerformedBy != officer.ID {
		t.Errorf("unexpected audit entry %+v", entries[0])
	}
	if entries[0].OldValue != "" {
		t.Errorf("expected empty old value, got %q", entries[0].OldValue)
	}
}

func TestCreateCase_Validation(t *testing.T) {
	svc := newTestCaseService(newFakeStore())

	req := validCaseRequest()
	req.Station = " "
	req.Year = 1800

	_, err := svc.CreateCase(context.Background(), req, officer)
	if ledgererr.CodeOf(err) != ledgererr.CodeValidation {
		t.Fatalf("expected VALIDATION, got %v", err)
	}
	fields := ledgererr.FieldsOf(err)
	if len(fields) != 2 || fields[0].Field != "station" || fields[1].Field != "year" {
		t.Errorf("unexpected fields %+v", fields)
	}
}

func TestCreateCase_RequiresKnownRole(t *testing.T) {
	f := newFakeStore()
	svc := newTestCaseService(f)

	_, err := svc.CreateCase(context.Background(), validCaseRequest(), ctxutil.Actor{ID: "U-9", Role: "CLERK"})
	if !errors.Is(err, ledgererr.ErrForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
	if len(f.cases) != 0 {
		t.Errorf("expected no case stored, got %d", len(f.cases))
	}
}

func TestCreateCase_AuditFailureRollsBack(t *testing.T) {
	f := newFakeStore()
	f.appendErr = ledgererr.StoreUnavailable(errors.New("disk full"), "append audit")
	svc := newTestCaseService(f)

	_, err := svc.CreateCase(context.Background(), validCaseRequest(), officer)
	if !errors.Is(err, ledgererr.ErrStoreUnavailable) {
		t.Fatalf("expected STORE_UNAVAILABLE, got %v", err)
	}
	if len(f.cases) != 0 {
		t.Errorf("case should not survive a failed audit append")
	}
}

// ============================================================================
// CloseIfComplete Tests
// ============================================================================

func TestCloseIfComplete_NotReadyWhileInCustody(t *testing.T) {
	f := newFakeStore()
	seedCase(f, "C1", "CR-1", testNow)
	seedProperty(f, "P1", "C1", "Rack-1")
	seedProperty(f, "P2", "C1", "Rack-2")
	p := f.properties["P1"]
	p.Status = "DISPOSED"
	f.properties["P1"] = p

	result, err := newTestCaseService(f).CloseIfComplete(context.Background(), "C1", admin)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Closed || result.Remaining != 1 || result.Status != "PENDING" {
		t.Errorf("unexpected result %+v", result)
	}
	if len(f.auditFor("C1")) != 0 {
		t.Errorf("expected no audit entry")
	}
}

func TestCloseIfComplete_TransitionsOnce(t *testing.T) {
	f := newFakeStore()
	seedCase(f, "C1", "CR-1", testNow)
	seedProperty(f, "P1", "C1", "Rack-1")
	p := f.properties["P1"]
	p.Status = "DISPOSED"
	f.properties["P1"] = p
	svc := newTestCaseService(f)

	first, err := svc.CloseIfComplete(context.Background(), "C1", admin)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !first.Closed || first.Status != "DISPOSED" {
		t.Errorf("expected closure, got %+v", first)
	}

	second, err := svc.CloseIfComplete(context.Background(), "C1", admin)
	if err != nil {
		t.Fatalf("expected no error on re-check, got %v", err)
	}
	if second.Closed {
		t.Errorf("re-check must be a no-op")
	}

	entries := f.auditFor("C1")
	if len(entries) != 1 || entries[0].ActionType != "CASE_DISPOSED" {
		t.Fatalf("expected exactly one CASE_DISPOSED entry, got %+v", entries)
	}
	if entries[0].OldValue != `{"status":"PENDING"}` || entries[0].NewValue != `{"status":"DISPOSED"}` {
		t.Errorf("unexpected snapshots %q -> %q", entries[0].OldValue, entries[0].NewValue)
	}
}

func TestCloseIfComplete_EmptyCaseStaysPending(t *testing.T) {
	f := newFakeStore()
	seedCase(f, "C1", "CR-1", testNow)

	result, err := newTestCaseService(f).CloseIfComplete(context.Background(), "C1", admin)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Closed || f.cases["C1"].Status != "PENDING" {
		t.Errorf("a case without properties must not close")
	}
}

func TestCloseIfComplete_UnknownCase(t *testing.T) {
	_, err := newTestCaseService(newFakeStore()).CloseIfComplete(context.Background(), "C-404", admin)
	if !errors.Is(err, ledgererr.ErrNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestReconcileClosures(t *testing.T) {
	f := newFakeStore()
	seedCase(f, "C1", "CR-1", testNow)
	seedCase(f, "C2", "CR-2", testNow)
	seedProperty(f, "P1", "C1", "Rack-1")
	seedProperty(f, "P2", "C2", "Rack-1")
	p := f.properties["P1"]
	p.Status = "DISPOSED"
	f.properties["P1"] = p

	closed, err := newTestCaseService(f).ReconcileClosures(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if closed != 1 {
		t.Errorf("expected 1 closure, got %d", closed)
	}
	if f.cases["C1"].Status != "DISPOSED" || f.cases["C2"].Status != "PENDING" {
		t.Errorf("unexpected statuses C1=%s C2=%s", f.cases["C1"].Status, f.cases["C2"].Status)
	}
	if entries := f.auditFor("C1"); len(entries) != 1 || entries[0].PerformedBy != "system" {
		t.Errorf("expected one system audit entry, got %+v", entries)
	}
}

// ============================================================================
// Query Tests
// ============================================================================

func TestListCases_Search(t *testing.T) {
	f := newFakeStore()
	seedCase(f, "C1", "CR-101", testNow.Add(-time.Hour))
	seedCase(f, "C2", "CR-202", testNow)

	cases, err := newTestCaseService(f).ListCases(context.Background(), primary.CaseFilters{Search: "cr-2"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(cases) != 1 || cases[0].ID != "C2" {
		t.Errorf("unexpected result %+v", cases)
	}
	if cases[0].Sections == nil {
		t.Errorf("sections should never be nil")
	}
}

func TestListCases_StatusIsCaseInsensitive(t *testing.T) {
	f := newFakeStore()
	seedCase(f, "C1", "CR-101", testNow.Add(-time.Hour))
	seedCase(f, "C2", "CR-202", testNow)
	c := f.cases["C2"]
	c.Status = "DISPOSED"
	f.cases["C2"] = c

	service := newTestCaseService(f)
	for _, status := range []string{"pending", " Pending ", "PENDING"} {
		cases, err := service.ListCases(context.Background(), primary.CaseFilters{Status: status})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(cases) != 1 || cases[0].ID != "C1" {
			t.Errorf("status %q: unexpected result %+v", status, cases)
		}
	}
}
