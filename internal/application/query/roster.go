package query

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/staffbook/staffbook/internal/domain/employee"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROSTER QUERY
// ══════════════════════════════════════════════════════════════════════════════

// RosterQuery selects a manager.
type RosterQuery struct {
	ManagerID string
}

// RosterResult lists the manager's reports in insertion order.
type RosterResult struct {
	ManagerID string   `json:"manager_id"`
	Manager   string   `json:"manager"`
	Reports   []string `json:"reports"`
}

// RosterHandler answers RosterQuery.
type RosterHandler struct {
	repo employee.Repository
}

// NewRosterHandler creates a new handler.
func NewRosterHandler(repo employee.Repository) *RosterHandler {
	return &RosterHandler{repo: repo}
}

// Handle returns the fullnames of every report.
func (h *RosterHandler) Handle(ctx context.Context, q RosterQuery) (*RosterResult, error) {
	if q.ManagerID == "" {
		return nil, errors.New("roster: manager_id is required")
	}

	m, err := employee.GetManager(ctx, h.repo, q.ManagerID)
	if err != nil {
		return nil, fmt.Errorf("roster: %w", err)
	}

	reports := slices.Collect(m.ListManaged())
	if reports == nil {
		reports = []string{}
	}
	return &RosterResult{
		ManagerID: m.ID(),
		Manager:   m.Fullname(),
		Reports:   reports,
	}, nil
}
