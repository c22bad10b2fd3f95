package query

import (
	"context"
	"fmt"

	"github.com/staffbook/staffbook/internal/domain/employee"
)

// HeadcountResult reports class-wide state.
type HeadcountResult struct {
	// Constructed counts every staff member built in this process.
	Constructed int64 `json:"constructed"`

	// Stored counts staff members in the repository, by kind.
	Stored map[employee.Kind]int `json:"stored,omitempty"`

	SharedRaiseRate float64 `json:"shared_raise_rate"`
}

// HeadcountHandler answers headcount queries. repo may be nil.
type HeadcountHandler struct {
	repo employee.Repository
}

// NewHeadcountHandler creates a new handler.
func NewHeadcountHandler(repo employee.Repository) *HeadcountHandler {
	return &HeadcountHandler{repo: repo}
}

// Handle returns the current counts.
func (h *HeadcountHandler) Handle(ctx context.Context) (*HeadcountResult, error) {
	result := &HeadcountResult{
		Constructed:     employee.EmployeeCount(),
		SharedRaiseRate: employee.SharedRaiseRate(),
	}
	if h.repo == nil {
		return result, nil
	}

	all, err := h.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("headcount: %w", err)
	}
	result.Stored = make(map[employee.Kind]int, 3)
	for _, s := range all {
		result.Stored[s.Kind()]++
	}
	return result, nil
}
