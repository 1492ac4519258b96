// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives the record store.
package secondary

import (
	"context"
	"time"
)

// Store is the record store handle. It is opened once at process start and
// closed at shutdown; services receive it by injection.
type Store interface {
	Repositories

	// RunInTransaction runs fn inside one store transaction. fn's error rolls
	// the transaction back; a nil return commits it.
	RunInTransaction(ctx context.Context, fn func(tx Tx) error) error

	// Notifications and Users are only written outside ledger transactions.
	Notifications() NotificationRepository

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// Tx exposes the repositories bound to one transaction.
type Tx interface {
	Repositories
}

// Repositories is the set of ledger repositories shared by Store and Tx.
type Repositories interface {
	Cases() CaseRepository
	Properties() PropertyRepository
	CustodyLogs() CustodyLogRepository
	Disposals() DisposalRepository
	Audit() AuditLedger
	Users() UserRepository
}

// CaseRepository defines the secondary port for case persistence.
type CaseRepository interface {
	// Create persists a new case.
	Create(ctx context.Context, c *CaseRecord) error

	// GetByID retrieves a case by its ID. Missing cases return a NOT_FOUND error.
	GetByID(ctx context.Context, id string) (*CaseRecord, error)

	// List retrieves cases matching the given filters, newest first.
	List(ctx context.Context, filters CaseFilters) ([]*CaseRecord, error)

	// MarkDisposed flips a PENDING case to DISPOSED. It reports whether a row
	// changed; an already DISPOSED case reports false.
	MarkDisposed(ctx context.Context, id string, at time.Time) (bool, error)

	// ListStale returns PENDING cases created at or before cutoff.
	ListStale(ctx context.Context, cutoff time.Time) ([]*CaseRecord, error)

	// ListClosable returns ids of PENDING cases that have properties and none
	// of them still in custody.
	ListClosable(ctx context.Context) ([]string, error)

	// CountByStatus returns the number of cases per status.
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// CaseRecord represents a case as stored in persistence.
type CaseRecord struct {
	ID          string
	Station     string
	CrimeNumber string
	Year        int
	FIRDate     time.Time
	SeizureDate *time.Time
	ActLaw      string
	Sections    []string
	OfficerID   string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CaseFilters contains filter options for querying cases.
type CaseFilters struct {
	Search string // case-insensitive substring of station or crime number
	Status string
	Limit  int
}

// PropertyRepository defines the secondary port for property persistence.
type PropertyRepository interface {
	// Create persists a new property.
	Create(ctx context.Context, p *PropertyRecord) error

	// GetByID retrieves a property by its ID.
	GetByID(ctx context.Context, id string) (*PropertyRecord, error)

	// List retrieves properties matching the given filters.
	List(ctx context.Context, filters PropertyFilters) ([]*PropertyRecord, error)

	// CompareAndSetLocation moves an IN_CUSTODY property iff its version still
	// equals expectedVersion, bumping the version. It reports whether a row changed.
	CompareAndSetLocation(ctx context.Context, id string, expectedVersion int, location string, at time.Time) (bool, error)

	// MarkDisposed flips an IN_CUSTODY property to DISPOSED. It reports whether a row changed.
	MarkDisposed(ctx context.Context, id string, at time.Time) (bool, error)

	// CountByCase returns the total and not-yet-disposed property counts of a case.
	CountByCase(ctx context.Context, caseID string) (total, remaining int, err error)

	// CountByStatus returns the number of properties per status.
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// PropertyRecord represents a property as stored in persistence.
type PropertyRecord struct {
	ID          string
	CaseID      string
	Category    string
	BelongsTo   string
	Nature      string
	Quantity    string
	Location    string
	Description string
	Status      string
	Version     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PropertyFilters contains filter options for querying properties.
type PropertyFilters struct {
	CaseID string
	Status string
	Limit  int
}

// CustodyLogRepository defines the secondary port for custody log persistence.
type CustodyLogRepository interface {
	// Create persists a new custody log entry.
	Create(ctx context.Context, l *CustodyLogRecord) error

	// ListByProperty returns the transfer chain of a property, oldest first.
	ListByProperty(ctx context.Context, propertyID string) ([]*CustodyLogRecord, error)
}

// CustodyLogRecord represents one transfer as stored in persistence.
type CustodyLogRecord struct {
	ID           string
	PropertyID   string
	FromLocation string
	ToLocation   string
	Purpose      string
	HandledBy    string
	Timestamp    time.Time
	Remarks      string
}

// DisposalRepository defines the secondary port for disposal persistence.
type DisposalRepository interface {
	// Create persists a disposal. A second disposal of the same property
	// returns an ALREADY_DISPOSED error.
	Create(ctx context.Context, d *DisposalRecord) error

	// GetByProperty returns the disposal of a property.
	GetByProperty(ctx context.Context, propertyID string) (*DisposalRecord, error)

	// List retrieves disposals, newest first.
	List(ctx context.Context, filters DisposalFilters) ([]*DisposalRecord, error)

	// CountByProperty returns how many disposals reference a property.
	CountByProperty(ctx context.Context, propertyID string) (int, error)
}

// DisposalRecord represents a disposal as stored in persistence.
type DisposalRecord struct {
	ID            string
	PropertyID    string
	DisposalType  string
	CourtOrderRef string
	DisposedBy    string
	Timestamp     time.Time
	Remarks       string
}

// DisposalFilters contains filter options for querying disposals.
type DisposalFilters struct {
	PropertyID string
	Limit      int
}

// AuditLedger is the append-only audit writer. It exposes no update or delete.
type AuditLedger interface {
	// Append writes a new entry. Reusing an entry id returns IMMUTABLE_RECORD.
	Append(ctx context.Context, entry *AuditRecord) error

	// List returns entries newest first.
	List(ctx context.Context, filters AuditFilters) ([]*AuditRecord, error)
}

// AuditRecord represents an audit entry as stored in persistence.
type AuditRecord struct {
	ID          string
	ActionType  string
	EntityType  string
	EntityID    string
	PerformedBy string
	Timestamp   time.Time
	OldValue    string // JSON snapshot, empty when absent
	NewValue    string
}

// AuditFilters contains filter options for querying the audit ledger.
type AuditFilters struct {
	EntityID   string
	EntityType string
	Limit      int
}

// NotificationRepository defines the secondary port for notification persistence.
type NotificationRepository interface {
	// InsertIgnoreConflict inserts n unless a notification with the same
	// (user, type, reference) exists. It reports whether a row was created.
	InsertIgnoreConflict(ctx context.Context, n *NotificationRecord) (bool, error)

	// GetByID retrieves a notification by its ID.
	GetByID(ctx context.Context, id string) (*NotificationRecord, error)

	// ListForUser returns a user's notifications, newest first.
	ListForUser(ctx context.Context, userID string, limit int) ([]*NotificationRecord, error)

	// MarkRead sets the read flag.
	MarkRead(ctx context.Context, id string) error
}

// NotificationRecord represents a notification as stored in persistence.
type NotificationRecord struct {
	ID          string
	UserID      string
	Type        string
	ReferenceID string
	Message     string
	Read        bool
	CreatedAt   time.Time
}

// UserRepository defines the secondary port for officer accounts.
type UserRepository interface {
	// Create persists a user. A duplicate officer id returns CONFLICT.
	Create(ctx context.Context, u *UserRecord) error

	// GetByID retrieves a user by its ID.
	GetByID(ctx context.Context, id string) (*UserRecord, error)

	// ListByRoles returns users whose role is in roles. An empty slice lists everyone.
	ListByRoles(ctx context.Context, roles []string) ([]*UserRecord, error)
}

// UserRecord represents an officer account as stored in persistence.
type UserRecord struct {
	ID           string
	OfficerID    string
	Name         string
	PasswordHash string
	Role         string
	Station      string
	CreatedAt    time.Time
}
