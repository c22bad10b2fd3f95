package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/staffbook/staffbook/internal/domain/employee"
	"github.com/staffbook/staffbook/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RENAME COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// RenameCommand replaces both name parts from a "first last" string.
type RenameCommand struct {
	StaffID       string
	Fullname      string
	CorrelationID string
}

// Validate validates the command.
func (c RenameCommand) Validate() error {
	if c.StaffID == "" {
		return errors.New("rename: staff_id is required")
	}
	return nil
}

// RenameResult contains the names before and after.
type RenameResult struct {
	StaffID string
	OldName string
	NewName string
	Email   string
}

// RenameHandler handles RenameCommand and ClearNameCommand.
type RenameHandler struct {
	base
}

// NewRenameHandler creates a new RenameHandler.
func NewRenameHandler(deps Deps) *RenameHandler {
	return &RenameHandler{base: newBase(deps, "rename")}
}

// Handle executes the rename. A malformed name or a failed save leaves the
// staff member as it was. The cards of managers listing the staff member
// are dropped along with its own.
func (h *RenameHandler) Handle(ctx context.Context, cmd RenameCommand) (*RenameResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("rename: validation failed: %w", err)
	}

	s, err := h.Repo.Get(ctx, cmd.StaffID)
	if err != nil {
		return nil, fmt.Errorf("rename: failed to get staff: %w", err)
	}

	snap := employee.TakeSnapshot(s)
	oldName := s.Fullname()
	if err := s.Profile().SetFullname(cmd.Fullname); err != nil {
		return nil, fmt.Errorf("rename: %w", err)
	}

	if err := h.Repo.Save(ctx, s); err != nil {
		s.Profile().Revert(snap)
		return nil, fmt.Errorf("rename: failed to save staff: %w", err)
	}
	h.invalidate(ctx, h.cardsShowing(ctx, s)...)
	h.publish(cmd.CorrelationID, employee.NewRenamedEvent(s, oldName))

	h.Logger.Info("staff renamed",
		logger.StaffID(s.ID()),
		logger.String("old_name", oldName),
		logger.Fullname(s.Fullname()),
	)

	return &RenameResult{
		StaffID: s.ID(),
		OldName: oldName,
		NewName: s.Fullname(),
		Email:   s.Email(),
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CLEAR NAME COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// ClearNameCommand removes both name parts.
type ClearNameCommand struct {
	StaffID       string
	CorrelationID string
}

// ClearNameResult lists the notices sent, in order.
type ClearNameResult struct {
	StaffID string
	Notices []employee.Notice
}

// HandleClear executes the clear. Each notice is logged and published as it
// happens, so subscribers see name_clearing while the name is still set.
// If the save fails the name is put back; the notices have already gone out.
func (h *RenameHandler) HandleClear(ctx context.Context, cmd ClearNameCommand) (*ClearNameResult, error) {
	if cmd.StaffID == "" {
		return nil, errors.New("clear_name: staff_id is required")
	}

	s, err := h.Repo.Get(ctx, cmd.StaffID)
	if err != nil {
		return nil, fmt.Errorf("clear_name: failed to get staff: %w", err)
	}

	snap := employee.TakeSnapshot(s)
	result := &ClearNameResult{StaffID: s.ID()}
	s.Profile().ClearName(employee.NotifierFunc(func(e *employee.Employee, notice employee.Notice) {
		result.Notices = append(result.Notices, notice)
		h.Logger.Info(string(notice), logger.StaffID(e.ID()), logger.Fullname(e.Fullname()))
		h.publish(cmd.CorrelationID, employee.NewNameNoticeEvent(e, notice))
	}))

	if err := h.Repo.Save(ctx, s); err != nil {
		s.Profile().Revert(snap)
		return nil, fmt.Errorf("clear_name: failed to save staff: %w", err)
	}
	h.invalidate(ctx, h.cardsShowing(ctx, s)...)

	return result, nil
}
