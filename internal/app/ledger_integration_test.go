package app_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/example/malkhana/internal/adapters/sqlstore"
	"github.com/example/malkhana/internal/app"
	"github.com/example/malkhana/internal/config"
	"github.com/example/malkhana/internal/ctxutil"
	"github.com/example/malkhana/internal/db"
	"github.com/example/malkhana/internal/ledgererr"
	"github.com/example/malkhana/internal/logging"
	"github.com/example/malkhana/internal/ports/primary"
	"github.com/example/malkhana/internal/ports/secondary"
)

type ledger struct {
	store     *sqlstore.Store
	cases     *app.CaseServiceImpl
	custody   *app.CustodyServiceImpl
	disposals *app.DisposalServiceImpl
	alerts    *app.NotificationServiceImpl
}

var (
	adminActor   = ctxutil.Actor{ID: "ADMIN-001", Role: "ADMIN"}
	officerActor = ctxutil.Actor{ID: "OFF-001", Role: "OFFICER"}
)

func newLedger(t *testing.T) *ledger {
	t.Helper()
	ctx := context.Background()

	cfg := config.StoreConfig{Driver: config.DriverSQLite, DSN: filepath.Join(t.TempDir(), "ledger.db")}
	database, dialect, err := db.Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	_, err = db.SeedFixtures(ctx, database, dialect, db.DefaultSeedUsers)
	require.NoError(t, err)

	logger := logging.Discard()
	store := sqlstore.New(database, dialect, logger)
	cases := app.NewCaseService(store, logger, nil)
	return &ledger{
		store:     store,
		cases:     cases,
		custody:   app.NewCustodyService(store, logger, nil, 0),
		disposals: app.NewDisposalService(store, cases, logger, nil),
		alerts:    app.NewNotificationService(store, logger, nil),
	}
}

func (l *ledger) createCase(t *testing.T, crimeNumber string) *primary.Case {
	t.Helper()
	c, err := l.cases.CreateCase(context.Background(), primary.CreateCaseRequest{
		Station:     "X",
		CrimeNumber: crimeNumber,
		Year:        time.Now().Year(),
		FIRDate:     time.Now().UTC(),
	}, officerActor)
	require.NoError(t, err)
	return c
}

func (l *ledger) addProperty(t *testing.T, caseID, location string) *primary.Property {
	t.Helper()
	p, err := l.custody.AddProperty(context.Background(), primary.AddPropertyRequest{CaseID: caseID, Location: location}, officerActor)
	require.NoError(t, err)
	return p
}

// assertInvariants checks the cross-table rules that must hold after any
// sequence of operations.
func assertInvariants(t *testing.T, l *ledger) {
	t.Helper()
	ctx := context.Background()
	repos := secondary.Repositories(l.store)

	properties, err := repos.Properties().List(ctx, secondary.PropertyFilters{})
	require.NoError(t, err)
	for _, p := range properties {
		n, err := repos.Disposals().CountByProperty(ctx, p.ID)
		require.NoError(t, err)
		if p.Status == "DISPOSED" {
			assert.Equal(t, 1, n, "disposed property %s needs exactly one disposal", p.ID)
		} else {
			assert.Zero(t, n, "property %s in custody must have no disposal", p.ID)
		}

		logs, err := repos.CustodyLogs().ListByProperty(ctx, p.ID)
		require.NoError(t, err)
		for i := 1; i < len(logs); i++ {
			assert.Equal(t, logs[i-1].ToLocation, logs[i].FromLocation, "custody chain of %s is broken at %d", p.ID, i)
		}
		if len(logs) > 0 {
			assert.Equal(t, logs[len(logs)-1].ToLocation, p.Location, "location of %s must match its last log", p.ID)
		}
	}

	cases, err := repos.Cases().List(ctx, secondary.CaseFilters{})
	require.NoError(t, err)
	for _, c := range cases {
		total, remaining, err := repos.Properties().CountByCase(ctx, c.ID)
		require.NoError(t, err)
		closable := total > 0 && remaining == 0
		assert.Equal(t, closable, c.Status == "DISPOSED", "case %s status %s with %d/%d remaining", c.ID, c.Status, remaining, total)
	}
}

func auditActions(t *testing.T, l *ledger, entityID string) []string {
	t.Helper()
	entries, err := l.store.Audit().List(context.Background(), secondary.AuditFilters{EntityID: entityID})
	require.NoError(t, err)
	actions := make([]string, len(entries))
	for i, e := range entries {
		actions[len(entries)-1-i] = e.ActionType
	}
	return actions
}

func TestLedger_CaseLifecycle(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	c1 := l.createCase(t, "123/24")
	p1 := l.addProperty(t, c1.ID, "Rack-1")

	moved, err := l.custody.TransferCustody(ctx, primary.TransferRequest{PropertyID: p1.ID, ToLocation: "Court"}, officerActor)
	require.NoError(t, err)
	assert.Equal(t, "Rack-1", moved.Log.FromLocation)
	assert.Equal(t, "Court", moved.Log.ToLocation)

	disposed, err := l.disposals.DisposeProperty(ctx, primary.DisposeRequest{PropertyID: p1.ID, DisposalType: "RETURNED"}, adminActor)
	require.NoError(t, err)
	assert.Equal(t, "DISPOSED", disposed.Property.Status)
	require.NotNil(t, disposed.Closure)
	assert.True(t, disposed.Closure.Closed)

	got, err := l.cases.GetCase(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, "DISPOSED", got.Status)

	_, err = l.custody.TransferCustody(ctx, primary.TransferRequest{PropertyID: p1.ID, ToLocation: "Rack-2"}, officerActor)
	assert.ErrorIs(t, err, ledgererr.ErrAlreadyDisposed)

	assert.Equal(t, []string{"CASE_CREATED", "CASE_DISPOSED"}, auditActions(t, l, c1.ID))
	assert.Equal(t, []string{"PROPERTY_ADDED", "PROPERTY_MOVED", "PROPERTY_DISPOSED"}, auditActions(t, l, p1.ID))
	assertInvariants(t, l)
}

func TestLedger_ConcurrentTransfers(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	c := l.createCase(t, "200/24")
	p := l.addProperty(t, c.ID, "Rack-1")

	var succeeded, conflicts atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 4; i++ {
		to := fmt.Sprintf("Room-%d", i)
		g.Go(func() error {
			_, err := l.custody.TransferCustody(gctx, primary.TransferRequest{PropertyID: p.ID, ToLocation: to}, officerActor)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, ledgererr.ErrConflict):
				conflicts.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(4), succeeded.Load()+conflicts.Load())

	logs, err := l.custody.ListCustodyLogs(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, logs, int(succeeded.Load()))
	assert.Equal(t, "Rack-1", logs[0].FromLocation)

	got, err := l.custody.GetProperty(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int(succeeded.Load())+1, got.Version)
	assert.Len(t, auditActions(t, l, p.ID), 1+int(succeeded.Load()))
	assertInvariants(t, l)
}

func TestLedger_ConcurrentDisposals(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	c := l.createCase(t, "300/24")
	p := l.addProperty(t, c.ID, "Rack-1")

	var succeeded, rejected atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range []string{"RETURNED", "DESTROYED", "AUCTIONED"} {
		g.Go(func() error {
			_, err := l.disposals.DisposeProperty(gctx, primary.DisposeRequest{PropertyID: p.ID, DisposalType: kind}, adminActor)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, ledgererr.ErrAlreadyDisposed):
				rejected.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(2), rejected.Load())

	list, err := l.disposals.ListDisposals(ctx, primary.DisposalFilters{PropertyID: p.ID})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, []string{"CASE_CREATED", "CASE_DISPOSED"}, auditActions(t, l, c.ID))
	assertInvariants(t, l)
}

func TestLedger_PartialDisposalKeepsCasePending(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	c := l.createCase(t, "400/24")
	p1 := l.addProperty(t, c.ID, "Rack-1")
	l.addProperty(t, c.ID, "Rack-2")

	result, err := l.disposals.DisposeProperty(ctx, primary.DisposeRequest{PropertyID: p1.ID, DisposalType: "COURT_CUSTODY", CourtOrderRef: "ORD-1"}, adminActor)
	require.NoError(t, err)
	require.NotNil(t, result.Closure)
	assert.False(t, result.Closure.Closed)
	assert.Equal(t, 1, result.Closure.Remaining)

	got, err := l.cases.GetCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "PENDING", got.Status)
	assertInvariants(t, l)
}

func TestLedger_SweepDeduplicates(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	c := l.createCase(t, "500/24")

	first, err := l.alerts.Sweep(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created, "one notification per seeded user")

	second, err := l.alerts.Sweep(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, second.Created)

	users, err := l.store.Users().ListByRoles(ctx, nil)
	require.NoError(t, err)
	for _, u := range users {
		list, err := l.alerts.ListForUser(ctx, u.ID, 0)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, c.ID, list[0].ReferenceID)
		assert.Equal(t, "Case 500/24 has been pending for more than 0s", list[0].Message)
	}
}

func TestLedger_ConcurrentSweeps(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()

	l.createCase(t, "600/24")
	l.createCase(t, "601/24")

	var created atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < 3; i++ {
		g.Go(func() error {
			result, err := l.alerts.Sweep(gctx, 0)
			if err != nil {
				return err
			}
			created.Add(int32(result.Created))
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(4), created.Load(), "2 users x 2 cases, each pair exactly once")
}
