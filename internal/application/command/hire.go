package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/staffbook/staffbook/internal/domain/employee"
	"github.com/staffbook/staffbook/internal/domain/shared"
	"github.com/staffbook/staffbook/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HIRE COMMAND
// Constructs a staff member of any kind, or imports a first-last-pay record,
// stores it and announces it.
// ══════════════════════════════════════════════════════════════════════════════

// HireCommand contains the data to hire a staff member.
type HireCommand struct {
	// Kind selects the constructor. Ignored when Record is set.
	Kind employee.Kind

	First string
	Last  string
	Pay   int

	// Language is required for developers.
	Language string

	// ReportIDs are existing staff attached to a new manager, in order.
	ReportIDs []string

	// Record is a "first-last-pay" string; when set it overrides the fields above.
	Record string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c HireCommand) Validate() error {
	if c.Record != "" {
		return nil
	}
	if !c.Kind.IsValid() {
		return employee.ErrUnknownKind.With(fmt.Errorf("kind %q", c.Kind))
	}
	if c.Pay < 0 {
		return errors.New("hire: pay must not be negative")
	}
	if c.Kind == employee.KindDeveloper && c.Language == "" {
		return errors.New("hire: language is required for developers")
	}
	if c.Kind != employee.KindManager && len(c.ReportIDs) > 0 {
		return employee.ErrNotManager.With(errors.New("only managers take reports"))
	}
	return nil
}

// HireResult contains the result of a hire.
type HireResult struct {
	// Staff is the new staff member.
	Staff employee.Staff

	// Headcount is EmployeeCount after the hire.
	Headcount int64

	// Events contains domain events generated.
	Events []shared.Event
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// HireHandler handles the HireCommand.
type HireHandler struct {
	base
}

// NewHireHandler creates a new HireHandler.
func NewHireHandler(deps Deps) *HireHandler {
	return &HireHandler{base: newBase(deps, "hire")}
}

// Handle executes the hire command.
func (h *HireHandler) Handle(ctx context.Context, cmd HireCommand) (*HireResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("hire: validation failed: %w", err)
	}

	// Resolve reports before constructing so a bad ID does not bump the headcount.
	reports, err := h.resolve(ctx, cmd.ReportIDs)
	if err != nil {
		return nil, err
	}

	s, err := build(cmd, reports)
	if err != nil {
		return nil, fmt.Errorf("hire: %w", err)
	}

	if err := h.Repo.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("hire: failed to save staff: %w", err)
	}

	event := employee.NewHiredEvent(s)
	h.publish(cmd.CorrelationID, event)

	h.Logger.Info("staff hired",
		logger.StaffID(s.ID()),
		logger.StaffKind(s.Kind().String()),
		logger.Fullname(s.Fullname()),
		logger.Pay(s.Pay()),
	)

	return &HireResult{
		Staff:     s,
		Headcount: employee.EmployeeCount(),
		Events:    []shared.Event{event},
	}, nil
}

func (h *HireHandler) resolve(ctx context.Context, ids []string) ([]employee.Staff, error) {
	reports := make([]employee.Staff, 0, len(ids))
	for _, id := range ids {
		s, err := h.Repo.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("hire: failed to get report %s: %w", id, err)
		}
		reports = append(reports, s)
	}
	return reports, nil
}

func build(cmd HireCommand, reports []employee.Staff) (employee.Staff, error) {
	if cmd.Record != "" {
		e, err := employee.FromString(cmd.Record)
		if err != nil {
			return nil, err
		}
		return e, nil
	}
	switch cmd.Kind {
	case employee.KindDeveloper:
		return employee.NewDeveloper(cmd.First, cmd.Last, cmd.Pay, cmd.Language), nil
	case employee.KindManager:
		return employee.NewManager(cmd.First, cmd.Last, cmd.Pay, reports...), nil
	default:
		return employee.New(cmd.First, cmd.Last, cmd.Pay), nil
	}
}
