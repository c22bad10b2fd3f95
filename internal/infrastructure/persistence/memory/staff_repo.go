// Package memory implements the staff repository in process memory.
// Stored values are the live objects, so a manager's roster keeps pointing
// at the same staff members the repository hands out.
package memory

import (
	"context"
	"sync"

	"github.com/staffbook/staffbook/internal/domain/employee"
)

// StaffRepository is an in-memory employee.Repository.
type StaffRepository struct {
	mu    sync.RWMutex
	byID  map[string]employee.Staff
	order []string
}

var _ employee.Repository = (*StaffRepository)(nil)

// NewStaffRepository creates an empty repository.
func NewStaffRepository() *StaffRepository {
	return &StaffRepository{byID: make(map[string]employee.Staff)}
}

// Save stores s and, for a manager, every report on its roster.
func (r *StaffRepository) Save(ctx context.Context, s employee.Staff) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil {
		return employee.ErrUnknownKind
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.saveLocked(s, make(map[string]bool))
	return nil
}

func (r *StaffRepository) saveLocked(s employee.Staff, seen map[string]bool) {
	if seen[s.ID()] {
		return
	}
	seen[s.ID()] = true

	stored, ok := r.byID[s.ID()]
	if !ok {
		r.order = append(r.order, s.ID())
	}
	s = employee.Fuller(stored, s)
	r.byID[s.ID()] = s

	if m, ok := s.(*employee.Manager); ok {
		for _, report := range m.Managed() {
			r.saveLocked(report, seen)
		}
	}
}

// Get returns the stored staff member.
func (r *StaffRepository) Get(ctx context.Context, id string) (employee.Staff, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return nil, employee.ErrStaffNotFound
	}
	return s, nil
}

// List returns every staff member in first-saved order.
func (r *StaffRepository) List(ctx context.Context) ([]employee.Staff, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]employee.Staff, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out, nil
}

// Delete removes id and takes it off every roster.
func (r *StaffRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.byID[id]
	if !ok {
		return employee.ErrStaffNotFound
	}
	delete(r.byID, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	for _, other := range r.byID {
		if m, ok := other.(*employee.Manager); ok {
			m.RemoveManaged(s)
		}
	}
	return nil
}

// Len returns the number of stored staff members.
func (r *StaffRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
