package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"
	"sort"
	"strings"
	"time"

	"github.com/example/malkhana/internal/ctxutil"
	"github.com/example/malkhana/internal/ledgererr"
	"github.com/example/malkhana/internal/ports/secondary"
)

// Ensure fakeStore implements the interface
var _ secondary.Store = (*fakeStore)(nil)

// fakeStore is an in-memory secondary.Store. RunInTransaction snapshots the
// state and restores it when fn fails, so rollback behaviour is observable.
type fakeStore struct {
	state

	casMisses int   // next N compare-and-sets report a lost race
	appendErr error // returned by every audit Append
	txCount   int
}

type state struct {
	cases         map[string]secondary.CaseRecord
	properties    map[string]secondary.PropertyRecord
	custodyLogs   []secondary.CustodyLogRecord
	disposals     map[string]secondary.DisposalRecord // by property id
	audit         []secondary.AuditRecord
	notifications map[string]secondary.NotificationRecord
	users         map[string]secondary.UserRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{state: state{
		cases:         map[string]secondary.CaseRecord{},
		properties:    map[string]secondary.PropertyRecord{},
		disposals:     map[string]secondary.DisposalRecord{},
		notifications: map[string]secondary.NotificationRecord{},
		users:         map[string]secondary.UserRecord{},
	}}
}

func (s state) clone() state {
	return state{
		cases:         maps.Clone(s.cases),
		properties:    maps.Clone(s.properties),
		custodyLogs:   append([]secondary.CustodyLogRecord(nil), s.custodyLogs...),
		disposals:     maps.Clone(s.disposals),
		audit:         append([]secondary.AuditRecord(nil), s.audit...),
		notifications: maps.Clone(s.notifications),
		users:         maps.Clone(s.users),
	}
}

func (f *fakeStore) RunInTransaction(ctx context.Context, fn func(tx secondary.Tx) error) error {
	f.txCount++
	snapshot := f.state.clone()
	if err := fn(f); err != nil {
		f.state = snapshot
		return err
	}
	return nil
}

func (f *fakeStore) Cases() secondary.CaseRepository                 { return fakeCases{f} }
func (f *fakeStore) Properties() secondary.PropertyRepository        { return fakeProperties{f} }
func (f *fakeStore) CustodyLogs() secondary.CustodyLogRepository     { return fakeCustodyLogs{f} }
func (f *fakeStore) Disposals() secondary.DisposalRepository         { return fakeDisposals{f} }
func (f *fakeStore) Audit() secondary.AuditLedger                    { return fakeAudit{f} }
func (f *fakeStore) Users() secondary.UserRepository                 { return fakeUsers{f} }
func (f *fakeStore) Notifications() secondary.NotificationRepository { return fakeNotifications{f} }
func (f *fakeStore) Ping(ctx context.Context) error                  { return nil }
func (f *fakeStore) Close() error                                    { return nil }

// auditFor returns the audit entries of one entity in append order.
func (f *fakeStore) auditFor(entityID string) []secondary.AuditRecord {
	var out []secondary.AuditRecord
	for _, e := range f.audit {
		if e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out
}

// ---------------------------------------------------------------------------

type fakeCases struct{ f *fakeStore }

func (r fakeCases) Create(ctx context.Context, c *secondary.CaseRecord) error {
	r.f.cases[c.ID] = *c
	return nil
}

func (r fakeCases) GetByID(ctx context.Context, id string) (*secondary.CaseRecord, error) {
	c, ok := r.f.cases[id]
	if !ok {
		return nil, ledgererr.NotFound("case", id)
	}
	return &c, nil
}

func (r fakeCases) List(ctx context.Context, filters secondary.CaseFilters) ([]*secondary.CaseRecord, error) {
	var out []*secondary.CaseRecord
	search := strings.ToLower(filters.Search)
	for _, c := range r.f.cases {
		if filters.Status != "" && c.Status != filters.Status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.CrimeNumber), search) && !strings.Contains(strings.ToLower(c.Station), search) {
			continue
		}
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}

func (r fakeCases) MarkDisposed(ctx context.Context, id string, at time.Time) (bool, error) {
	c, ok := r.f.cases[id]
	if !ok || c.Status != "PENDING" {
		return false, nil
	}
	c.Status = "DISPOSED"
	c.UpdatedAt = at
	r.f.cases[id] = c
	return true, nil
}

func (r fakeCases) ListStale(ctx context.Context, cutoff time.Time) ([]*secondary.CaseRecord, error) {
	var out []*secondary.CaseRecord
	for _, c := range r.f.cases {
		if c.Status == "PENDING" && !c.CreatedAt.After(cutoff) {
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeCases) ListClosable(ctx context.Context) ([]string, error) {
	var ids []string
	for id, c := range r.f.cases {
		if c.Status != "PENDING" {
			continue
		}
		total, remaining, _ := fakeProperties(r).CountByCase(ctx, id)
		if total > 0 && remaining == 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r fakeCases) CountByStatus(ctx context.Context) (map[string]int, error) {
	counts := map[string]int{}
	for _, c := range r.f.cases {
		counts[c.Status]++
	}
	return counts, nil
}

// ---------------------------------------------------------------------------

type fakeProperties struct{ f *fakeStore }

func (r fakeProperties) Create(ctx context.Context, p *secondary.PropertyRecord) error {
	if _, ok := r.f.cases[p.CaseID]; !ok {
		return errors.New("FOREIGN KEY constraint failed")
	}
	r.f.properties[p.ID] = *p
	return nil
}

func (r fakeProperties) GetByID(ctx context.Context, id string) (*secondary.PropertyRecord, error) {
	p, ok := r.f.properties[id]
	if !ok {
		return nil, ledgererr.NotFound("property", id)
	}
	return &p, nil
}

func (r fakeProperties) List(ctx context.Context, filters secondary.PropertyFilters) ([]*secondary.PropertyRecord, error) {
	var out []*secondary.PropertyRecord
	for _, p := range r.f.properties {
		if filters.CaseID != "" && p.CaseID != filters.CaseID {
			continue
		}
		if filters.Status != "" && p.Status != filters.Status {
			continue
		}
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeProperties) CompareAndSetLocation(ctx context.Context, id string, expectedVersion int, location string, at time.Time) (bool, error) {
	if r.f.casMisses > 0 {
		r.f.casMisses--
		return false, nil
	}
	p, ok := r.f.properties[id]
	if !ok || p.Version != expectedVersion || p.Status != "IN_CUSTODY" {
		return false, nil
	}
	p.Location = location
	p.Version++
	p.UpdatedAt = at
	r.f.properties[id] = p
	return true, nil
}

func (r fakeProperties) MarkDisposed(ctx context.Context, id string, at time.Time) (bool, error) {
	p, ok := r.f.properties[id]
	if !ok || p.Status != "IN_CUSTODY" {
		return false, nil
	}
	p.Status = "DISPOSED"
	p.Version++
	p.UpdatedAt = at
	r.f.properties[id] = p
	return true, nil
}

func (r fakeProperties) CountByCase(ctx context.Context, caseID string) (int, int, error) {
	total, remaining := 0, 0
	for _, p := range r.f.properties {
		if p.CaseID != caseID {
			continue
		}
		total++
		if p.Status != "DISPOSED" {
			remaining++
		}
	}
	return total, remaining, nil
}

func (r fakeProperties) CountByStatus(ctx context.Context) (map[string]int, error) {
	counts := map[string]int{}
	for _, p := range r.f.properties {
		counts[p.Status]++
	}
	return counts, nil
}

// ---------------------------------------------------------------------------

type fakeCustodyLogs struct{ f *fakeStore }

func (r fakeCustodyLogs) Create(ctx context.Context, l *secondary.CustodyLogRecord) error {
	r.f.custodyLogs = append(r.f.custodyLogs, *l)
	return nil
}

func (r fakeCustodyLogs) ListByProperty(ctx context.Context, propertyID string) ([]*secondary.CustodyLogRecord, error) {
	var out []*secondary.CustodyLogRecord
	for _, l := range r.f.custodyLogs {
		if l.PropertyID == propertyID {
			out = append(out, &l)
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------

type fakeDisposals struct{ f *fakeStore }

func (r fakeDisposals) Create(ctx context.Context, d *secondary.DisposalRecord) error {
	if _, ok := r.f.disposals[d.PropertyID]; ok {
		return ledgererr.AlreadyDisposed(d.PropertyID)
	}
	r.f.disposals[d.PropertyID] = *d
	return nil
}

func (r fakeDisposals) GetByProperty(ctx context.Context, propertyID string) (*secondary.DisposalRecord, error) {
	d, ok := r.f.disposals[propertyID]
	if !ok {
		return nil, ledgererr.NotFound("disposal for property", propertyID)
	}
	return &d, nil
}

func (r fakeDisposals) List(ctx context.Context, filters secondary.DisposalFilters) ([]*secondary.DisposalRecord, error) {
	var out []*secondary.DisposalRecord
	for _, d := range r.f.disposals {
		if filters.PropertyID != "" && d.PropertyID != filters.PropertyID {
			continue
		}
		out = append(out, &d)
	}
	return out, nil
}

func (r fakeDisposals) CountByProperty(ctx context.Context, propertyID string) (int, error) {
	if _, ok := r.f.disposals[propertyID]; ok {
		return 1, nil
	}
	return 0, nil
}

// ---------------------------------------------------------------------------

type fakeAudit struct{ f *fakeStore }

func (r fakeAudit) Append(ctx context.Context, e *secondary.AuditRecord) error {
	if r.f.appendErr != nil {
		return r.f.appendErr
	}
	r.f.audit = append(r.f.audit, *e)
	return nil
}

func (r fakeAudit) List(ctx context.Context, filters secondary.AuditFilters) ([]*secondary.AuditRecord, error) {
	var out []*secondary.AuditRecord
	for i := len(r.f.audit) - 1; i >= 0; i-- {
		e := r.f.audit[i]
		if filters.EntityID != "" && e.EntityID != filters.EntityID {
			continue
		}
		if filters.EntityType != "" && e.EntityType != filters.EntityType {
			continue
		}
		out = append(out, &e)
		if filters.Limit > 0 && len(out) == filters.Limit {
			break
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------

type fakeNotifications struct{ f *fakeStore }

func (r fakeNotifications) InsertIgnoreConflict(ctx context.Context, n *secondary.NotificationRecord) (bool, error) {
	for _, existing := range r.f.notifications {
		if existing.UserID == n.UserID && existing.Type == n.Type && existing.ReferenceID == n.ReferenceID {
			return false, nil
		}
	}
	r.f.notifications[n.ID] = *n
	return true, nil
}

func (r fakeNotifications) GetByID(ctx context.Context, id string) (*secondary.NotificationRecord, error) {
	n, ok := r.f.notifications[id]
	if !ok {
		return nil, ledgererr.NotFound("notification", id)
	}
	return &n, nil
}

func (r fakeNotifications) ListForUser(ctx context.Context, userID string, limit int) ([]*secondary.NotificationRecord, error) {
	var out []*secondary.NotificationRecord
	for _, n := range r.f.notifications {
		if n.UserID == userID {
			out = append(out, &n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r fakeNotifications) MarkRead(ctx context.Context, id string) error {
	n, ok := r.f.notifications[id]
	if !ok {
		return ledgererr.NotFound("notification", id)
	}
	n.Read = true
	r.f.notifications[id] = n
	return nil
}

// ---------------------------------------------------------------------------

type fakeUsers struct{ f *fakeStore }

func (r fakeUsers) Create(ctx context.Context, u *secondary.UserRecord) error {
	for _, existing := range r.f.users {
		if existing.OfficerID == u.OfficerID {
			return ledgererr.Conflict("officer %s already exists", u.OfficerID)
		}
	}
	r.f.users[u.ID] = *u
	return nil
}

func (r fakeUsers) GetByID(ctx context.Context, id string) (*secondary.UserRecord, error) {
	u, ok := r.f.users[id]
	if !ok {
		return nil, ledgererr.NotFound("user", id)
	}
	return &u, nil
}

func (r fakeUsers) ListByRoles(ctx context.Context, roles []string) ([]*secondary.UserRecord, error) {
	var out []*secondary.UserRecord
	for _, u := range r.f.users {
		if len(roles) > 0 && !containsString(roles, u.Role) {
			continue
		}
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------

var (
	testNow = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	admin   = ctxutil.Actor{ID: "U-ADMIN", Role: "ADMIN"}
	officer = ctxutil.Actor{ID: "U-OFF", Role: "OFFICER"}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// seedCase stores a PENDING case created at createdAt.
func seedCase(f *fakeStore, id, crimeNumber string, createdAt time.Time) {
	f.cases[id] = secondary.CaseRecord{
		ID: id, Station: "Central", CrimeNumber: crimeNumber, Year: 2024, FIRDate: createdAt,
		OfficerID: officer.ID, Status: "PENDING", CreatedAt: createdAt, UpdatedAt: createdAt,
	}
}

// seedProperty stores an IN_CUSTODY property at version 1.
func seedProperty(f *fakeStore, id, caseID, location string) {
	f.properties[id] = secondary.PropertyRecord{
		ID: id, CaseID: caseID, Location: location, Status: "IN_CUSTODY", Version: 1,
		CreatedAt: testNow, UpdatedAt: testNow,
	}
}

func seedUser(f *fakeStore, id, role string) {
	f.users[id] = secondary.UserRecord{ID: id, OfficerID: id, Name: id, Role: role, Station: "Central", CreatedAt: testNow}
}
