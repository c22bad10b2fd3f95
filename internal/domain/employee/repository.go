package employee

import (
	"context"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Implementations live in infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository stores staff members.
type Repository interface {
	// Save inserts or updates s. Saving a manager also saves its roster.
	Save(ctx context.Context, s Staff) error

	// Get returns the staff member with the given ID.
	// Returns ErrStaffNotFound if there is none.
	Get(ctx context.Context, id string) (Staff, error)

	// List returns every stored staff member in insertion order.
	List(ctx context.Context) ([]Staff, error)

	// Delete removes the staff member and drops it from every roster.
	// Returns ErrStaffNotFound if there is none.
	Delete(ctx context.Context, id string) error
}

// GetManager loads id and asserts it is a manager.
func GetManager(ctx context.Context, repo Repository, id string) (*Manager, error) {
	s, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	m, ok := s.(*Manager)
	if !ok {
		return nil, ErrNotManager
	}
	return m, nil
}

// Fuller picks the value a repository keeps for one ID: next, unless next
// is only the bare Profile of stored, in which case stored keeps its kind.
func Fuller(stored, next Staff) Staff {
	if stored != nil && stored != next && next == Staff(stored.Profile()) {
		return stored
	}
	return next
}
