// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"

	"github.com/staffbook/staffbook/internal/domain/employee"
	"github.com/staffbook/staffbook/internal/domain/shared"
	"github.com/staffbook/staffbook/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// SHARED HANDLER PLUMBING
// ══════════════════════════════════════════════════════════════════════════════

// Invalidator drops cached read models for the given staff IDs.
type Invalidator interface {
	Invalidate(ctx context.Context, ids ...string) error
}

// Deps groups what every handler needs. Publisher and Invalidator are optional.
type Deps struct {
	Repo        employee.Repository
	Publisher   shared.EventPublisher
	Invalidator Invalidator
	Logger      *logger.Logger
}

type base struct {
	Deps
}

func newBase(deps Deps, component string) base {
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	deps.Logger = deps.Logger.With(logger.Component(component))
	return base{Deps: deps}
}

// publish sends events in order. Publish failures are logged, never returned:
// the write already happened.
func (b base) publish(correlationID string, events ...shared.Event) {
	if b.Publisher == nil {
		return
	}
	for _, event := range events {
		event = withCorrelation(event, correlationID)
		if err := b.Publisher.Publish(event); err != nil {
			b.Logger.Warn("failed to publish event",
				logger.EventType(string(event.EventType())),
				logger.Err(err),
			)
		}
	}
}

func (b base) invalidate(ctx context.Context, ids ...string) {
	if b.Invalidator == nil || len(ids) == 0 {
		return
	}
	if err := b.Invalidator.Invalidate(ctx, ids...); err != nil {
		b.Logger.Warn("failed to invalidate cache", logger.Any("staff_ids", ids), logger.Err(err))
	}
}

// cardsShowing returns s's ID followed by the IDs of managers whose roster
// holds s: their cards list s by name. A failed listing is logged and only
// s's own ID is returned.
func (b base) cardsShowing(ctx context.Context, s employee.Staff) []string {
	ids := []string{s.ID()}
	if b.Invalidator == nil {
		return ids
	}
	all, err := b.Repo.List(ctx)
	if err != nil {
		b.Logger.Warn("failed to list staff for invalidation", logger.StaffID(s.ID()), logger.Err(err))
		return ids
	}
	for _, other := range all {
		if m, ok := other.(*employee.Manager); ok && m.Manages(s) {
			ids = append(ids, m.ID())
		}
	}
	return ids
}

func withCorrelation(event shared.Event, id string) shared.Event {
	if id == "" {
		return event
	}
	switch e := event.(type) {
	case employee.HiredEvent:
		e.BaseEvent = e.BaseEvent.WithCorrelationID(id)
		return e
	case employee.RaiseAppliedEvent:
		e.BaseEvent = e.BaseEvent.WithCorrelationID(id)
		return e
	case employee.SharedRateChangedEvent:
		e.BaseEvent = e.BaseEvent.WithCorrelationID(id)
		return e
	case employee.RenamedEvent:
		e.BaseEvent = e.BaseEvent.WithCorrelationID(id)
		return e
	case employee.NameNoticeEvent:
		e.BaseEvent = e.BaseEvent.WithCorrelationID(id)
		return e
	case employee.ReportEvent:
		e.BaseEvent = e.BaseEvent.WithCorrelationID(id)
		return e
	default:
		return event
	}
}
