package member

import (
	"context"
	"database/sql"

	"github.com/ignite/audience-hub/internal/domain"
)

// Repository defines the data access contract for members and their label
// associations. Implementations must be safe for concurrent use.
//
// Mutating methods take the open transaction they must run in; the service
// layer owns the transaction boundary. Read methods that accept a tx treat
// a nil tx as "read outside any transaction".
type Repository interface {
	// Get returns a single member without labels loaded.
	// Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, tx *sql.Tx, id string) (*domain.Member, error)

	// List returns members matching the filter plus the unpaginated total.
	List(ctx context.Context, f ListFilter) ([]domain.Member, int, error)

	// Insert persists a new member. Returns ErrConflict on a duplicate
	// email or uuid.
	Insert(ctx context.Context, tx *sql.Tx, m *domain.Member) error

	// Update persists the member's mutable fields. Returns ErrNotFound if
	// the row is gone, ErrConflict on a duplicate email.
	Update(ctx context.Context, tx *sql.Tx, m *domain.Member) error

	// Delete removes the member row and its label associations. Historical
	// subscribe-event rows are retained.
	Delete(ctx context.Context, tx *sql.Tx, id string) error

	// Labels returns the member's labels ascending by sort order.
	Labels(ctx context.Context, tx *sql.Tx, memberID string) ([]domain.Label, error)

	// ReplaceLabels rewrites the member's label associations to exactly the
	// given list, creating labels that don't exist yet, and returns the
	// final stored labels in association order.
	ReplaceLabels(ctx context.Context, tx *sql.Tx, memberID string, labels []domain.Label) ([]domain.Label, error)

	// LookupLabels returns stored labels whose names match any of the given
	// names case-insensitively.
	LookupLabels(ctx context.Context, tx *sql.Tx, names []string) ([]domain.Label, error)

	// ListLabels returns all labels with member counts, ordered by name.
	ListLabels(ctx context.Context) ([]domain.Label, error)

	// InsertSubscribeEvent appends one row to the subscription event log.
	InsertSubscribeEvent(ctx context.Context, tx *sql.Tx, e *domain.SubscribeEvent) error
}

// Valid OrderBy values for ListFilter.
const (
	OrderCreatedAt = "created_at"
	OrderEmail     = "email"
	OrderName      = "name"
	OrderOpenRate  = "email_open_rate"
)

// ListFilter controls pagination, search, and ordering for member lists.
// Search matches case-insensitively as a substring against name OR email.
// Ordering by open rate places members without one last in both directions.
type ListFilter struct {
	Search     string
	OrderBy    string
	Descending bool
	Limit      int
	Offset     int
}
