// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/staffbook/staffbook/internal/domain/employee"
	"github.com/staffbook/staffbook/internal/domain/shared"
	"github.com/staffbook/staffbook/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// STAFF CARD QUERY
// Everything shown about one staff member: both display forms, derived
// fields, pay and, for managers, the roster.
// ══════════════════════════════════════════════════════════════════════════════

// StaffCardQuery selects one staff member.
type StaffCardQuery struct {
	StaffID string

	// SkipCache forces a repository read.
	SkipCache bool
}

// Validate validates the query.
func (q StaffCardQuery) Validate() error {
	if q.StaffID == "" {
		return errors.New("staff_id is required")
	}
	return nil
}

// StaffCardDTO is the read model of a staff member.
type StaffCardDTO struct {
	// ─────────────────────────────────────────────────────────────────────────
	// Identity
	// ─────────────────────────────────────────────────────────────────────────

	ID   string        `json:"id"`
	Kind employee.Kind `json:"kind"`

	// First and Last are null once the name is cleared.
	First *string `json:"first"`
	Last  *string `json:"last"`

	// ─────────────────────────────────────────────────────────────────────────
	// Derived
	// ─────────────────────────────────────────────────────────────────────────

	Fullname string `json:"fullname"`
	Email    string `json:"email"`

	// Repr is the developer-facing form, Display the end-user form.
	Repr    string `json:"repr"`
	Display string `json:"display"`

	// ─────────────────────────────────────────────────────────────────────────
	// Pay
	// ─────────────────────────────────────────────────────────────────────────

	Pay       int     `json:"pay"`
	RaiseRate float64 `json:"raise_rate"`

	// ─────────────────────────────────────────────────────────────────────────
	// Kind-specific
	// ─────────────────────────────────────────────────────────────────────────

	Language string `json:"language,omitempty"`

	// Reports are the fullnames of a manager's roster, in order.
	Reports []string `json:"reports,omitempty"`
}

// NewStaffCard builds the card for s.
func NewStaffCard(s employee.Staff) StaffCardDTO {
	snap := employee.TakeSnapshot(s)
	card := StaffCardDTO{
		ID:        s.ID(),
		Kind:      s.Kind(),
		First:     snap.First,
		Last:      snap.Last,
		Fullname:  s.Fullname(),
		Email:     s.Email(),
		Repr:      s.GoString(),
		Display:   employee.Display(s),
		Pay:       s.Pay(),
		RaiseRate: s.RaiseRate(),
		Language:  snap.Language,
	}
	if m, ok := s.(*employee.Manager); ok {
		card.Reports = slices.Collect(m.ListManaged())
	}
	return card
}

// ErrCacheMiss is returned by a CardCache that holds no entry.
var ErrCacheMiss = errors.New("staff card not cached")

// CardCache stores staff cards keyed by staff ID.
type CardCache interface {
	Get(ctx context.Context, id string) (*StaffCardDTO, error)
	Set(ctx context.Context, card StaffCardDTO) error
}

// StaffCardHandler answers StaffCardQuery, reading through an optional cache.
type StaffCardHandler struct {
	repo  employee.Repository
	cache CardCache
	log   *logger.Logger
}

// NewStaffCardHandler creates a new handler. cache and log may be nil.
func NewStaffCardHandler(repo employee.Repository, cache CardCache, log *logger.Logger) *StaffCardHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &StaffCardHandler{repo: repo, cache: cache, log: log.With(logger.Component("staff_card"))}
}

// Handle returns the card.
func (h *StaffCardHandler) Handle(ctx context.Context, q StaffCardQuery) (*StaffCardDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, shared.WrapError("query", "StaffCard", shared.ErrInvalidInput, err.Error(), err)
	}

	if h.cache != nil && !q.SkipCache {
		card, err := h.cache.Get(ctx, q.StaffID)
		switch {
		case err == nil:
			return card, nil
		case !errors.Is(err, ErrCacheMiss):
			h.log.Warn("card cache read failed", logger.StaffID(q.StaffID), logger.Err(err))
		}
	}

	s, err := h.repo.Get(ctx, q.StaffID)
	if err != nil {
		return nil, fmt.Errorf("staff card: %w", err)
	}

	card := NewStaffCard(s)
	if h.cache != nil {
		if err := h.cache.Set(ctx, card); err != nil {
			h.log.Warn("card cache write failed", logger.StaffID(card.ID), logger.Err(err))
		}
	}
	return &card, nil
}
