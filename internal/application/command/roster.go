package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/staffbook/staffbook/internal/domain/employee"
	"github.com/staffbook/staffbook/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROSTER COMMANDS
// Add or remove a report on a manager's roster. Both are idempotent.
// ══════════════════════════════════════════════════════════════════════════════

// RosterCommand names a manager and a report.
type RosterCommand struct {
	ManagerID     string
	ReportID      string
	CorrelationID string
}

// Validate validates the command.
func (c RosterCommand) Validate() error {
	if c.ManagerID == "" {
		return errors.New("roster: manager_id is required")
	}
	if c.ReportID == "" {
		return errors.New("roster: report_id is required")
	}
	return nil
}

// RosterResult reports whether the roster changed and its size afterwards.
type RosterResult struct {
	Changed     bool
	ReportCount int
}

// RosterHandler handles roster changes.
type RosterHandler struct {
	base
}

// NewRosterHandler creates a new RosterHandler.
func NewRosterHandler(deps Deps) *RosterHandler {
	return &RosterHandler{base: newBase(deps, "roster")}
}

// Add puts the report on the manager's roster.
func (h *RosterHandler) Add(ctx context.Context, cmd RosterCommand) (*RosterResult, error) {
	return h.apply(ctx, cmd, true)
}

// Remove takes the report off the manager's roster.
func (h *RosterHandler) Remove(ctx context.Context, cmd RosterCommand) (*RosterResult, error) {
	return h.apply(ctx, cmd, false)
}

func (h *RosterHandler) apply(ctx context.Context, cmd RosterCommand, add bool) (*RosterResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("roster: validation failed: %w", err)
	}

	m, err := employee.GetManager(ctx, h.Repo, cmd.ManagerID)
	if err != nil {
		return nil, fmt.Errorf("roster: failed to get manager: %w", err)
	}
	report, err := h.Repo.Get(ctx, cmd.ReportID)
	if err != nil {
		return nil, fmt.Errorf("roster: failed to get report: %w", err)
	}

	before := m.Managed()
	var changed bool
	if add {
		changed = m.AddManaged(report)
	} else {
		changed = m.RemoveManaged(report)
	}

	result := &RosterResult{Changed: changed, ReportCount: m.ReportCount()}
	if !changed {
		return result, nil
	}

	if err := h.Repo.Save(ctx, m); err != nil {
		m.RestoreManaged(before)
		return nil, fmt.Errorf("roster: failed to save manager: %w", err)
	}
	h.invalidate(ctx, m.ID())
	h.publish(cmd.CorrelationID, employee.NewReportEvent(m, report, add))

	h.Logger.Info("roster changed",
		logger.StaffID(m.ID()),
		logger.String("report_id", report.ID()),
		logger.Bool("added", add),
		logger.Int("report_count", result.ReportCount),
	)

	return result, nil
}
