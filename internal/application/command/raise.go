package command

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/staffbook/staffbook/internal/domain/employee"
	"github.com/staffbook/staffbook/internal/domain/shared"
	"github.com/staffbook/staffbook/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPLY RAISE COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// ApplyRaiseCommand raises one staff member by their own rate.
type ApplyRaiseCommand struct {
	StaffID       string
	CorrelationID string
}

// Validate validates the command.
func (c ApplyRaiseCommand) Validate() error {
	if c.StaffID == "" {
		return errors.New("apply_raise: staff_id is required")
	}
	return nil
}

// ApplyRaiseResult contains the result of a raise.
type ApplyRaiseResult struct {
	StaffID string
	OldPay  int
	NewPay  int
	Rate    float64
}

// ApplyRaiseHandler handles the ApplyRaiseCommand.
type ApplyRaiseHandler struct {
	base
}

// NewApplyRaiseHandler creates a new ApplyRaiseHandler.
func NewApplyRaiseHandler(deps Deps) *ApplyRaiseHandler {
	return &ApplyRaiseHandler{base: newBase(deps, "apply_raise")}
}

// Handle executes the raise. A failed save puts the old pay back, so a
// retried command raises from the same base.
func (h *ApplyRaiseHandler) Handle(ctx context.Context, cmd ApplyRaiseCommand) (*ApplyRaiseResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("apply_raise: validation failed: %w", err)
	}

	s, err := h.Repo.Get(ctx, cmd.StaffID)
	if err != nil {
		return nil, fmt.Errorf("apply_raise: failed to get staff: %w", err)
	}

	snap := employee.TakeSnapshot(s)
	oldPay := s.Pay()
	newPay := employee.ApplyRaise(s)

	if err := h.Repo.Save(ctx, s); err != nil {
		s.Profile().Revert(snap)
		return nil, fmt.Errorf("apply_raise: failed to save staff: %w", err)
	}
	h.invalidate(ctx, s.ID())
	h.publish(cmd.CorrelationID, employee.NewRaiseAppliedEvent(s, oldPay))

	h.Logger.Info("raise applied",
		logger.StaffID(s.ID()),
		logger.RaiseRate(s.RaiseRate()),
		logger.Int("old_pay", oldPay),
		logger.Pay(newPay),
	)

	return &ApplyRaiseResult{
		StaffID: s.ID(),
		OldPay:  oldPay,
		NewPay:  newPay,
		Rate:    s.RaiseRate(),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SET SHARED RATE COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// SetSharedRateCommand changes the raise rate shared by all plain employees.
type SetSharedRateCommand struct {
	Rate          float64
	CorrelationID string
}

// Validate validates the command.
func (c SetSharedRateCommand) Validate() error {
	if math.IsNaN(c.Rate) || math.IsInf(c.Rate, 0) || c.Rate <= 0 {
		return shared.NewDomainError("staff", "SetSharedRate", shared.ErrValueOutOfRange,
			fmt.Sprintf("rate %v must be a positive finite number", c.Rate))
	}
	return nil
}

// SetSharedRateResult contains the old and new rate.
type SetSharedRateResult struct {
	OldRate float64
	NewRate float64
}

// SetSharedRateHandler handles the SetSharedRateCommand.
type SetSharedRateHandler struct {
	base
}

// NewSetSharedRateHandler creates a new SetSharedRateHandler.
func NewSetSharedRateHandler(deps Deps) *SetSharedRateHandler {
	return &SetSharedRateHandler{base: newBase(deps, "set_shared_rate")}
}

// Handle changes the shared rate. Every cached plain employee card is stale
// afterwards, so the whole roster of plain employees is invalidated.
func (h *SetSharedRateHandler) Handle(ctx context.Context, cmd SetSharedRateCommand) (*SetSharedRateResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("set_shared_rate: validation failed: %w", err)
	}

	oldRate := employee.SharedRaiseRate()
	employee.SetSharedRaiseRate(cmd.Rate)

	if h.Invalidator != nil && h.Repo != nil {
		all, err := h.Repo.List(ctx)
		if err != nil {
			h.Logger.Warn("failed to list staff for invalidation", logger.Err(err))
		} else {
			ids := make([]string, 0, len(all))
			for _, s := range all {
				if s.Kind() == employee.KindEmployee {
					ids = append(ids, s.ID())
				}
			}
			h.invalidate(ctx, ids...)
		}
	}

	h.publish(cmd.CorrelationID, employee.NewSharedRateChangedEvent(oldRate, cmd.Rate))
	h.Logger.Info("shared raise rate changed",
		logger.Float64("old_rate", oldRate),
		logger.RaiseRate(cmd.Rate),
	)

	return &SetSharedRateResult{OldRate: oldRate, NewRate: cmd.Rate}, nil
}
