package shared

import (
	"time"
)

// EventType names a domain event as "<aggregate>.<what happened>".
type EventType string

// Staff events.
const (
	EventStaffHired        EventType = "staff.hired"
	EventRaiseApplied      EventType = "staff.raise_applied"
	EventSharedRateChanged EventType = "staff.shared_rate_changed"
	EventRenamed           EventType = "staff.renamed"
	EventNameClearing      EventType = "staff.name_clearing"
	EventNameCleared       EventType = "staff.name_cleared"
)

// Roster events.
const (
	EventReportAdded   EventType = "roster.report_added"
	EventReportRemoved EventType = "roster.report_removed"
)

// Event is something that happened to an aggregate.
type Event interface {
	EventType() EventType
	OccurredAt() time.Time

	// AggregateID is the staff ID, or a fixed ID for class-wide changes.
	AggregateID() string

	// Payload flattens the event for logs and serialization.
	Payload() map[string]interface{}
}

// BaseEvent carries the fields every event shares. Embed it and add Payload.
type BaseEvent struct {
	Type          EventType `json:"type"`
	At            time.Time `json:"occurred_at"`
	Aggregate     string    `json:"aggregate_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// NewBaseEvent stamps an event with the current UTC time.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:      eventType,
		At:        time.Now().UTC(),
		Aggregate: aggregateID,
	}
}

func (e BaseEvent) EventType() EventType  { return e.Type }
func (e BaseEvent) OccurredAt() time.Time { return e.At }
func (e BaseEvent) AggregateID() string   { return e.Aggregate }

// WithCorrelationID returns a copy tagged with the request that caused it.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// EventHandler reacts to one event.
type EventHandler func(event Event) error

// EventPublisher is what command handlers publish through.
type EventPublisher interface {
	Publish(event Event) error
}

// EventSubscriber registers handlers by type or for everything.
type EventSubscriber interface {
	Subscribe(eventType EventType, handler EventHandler) error
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
