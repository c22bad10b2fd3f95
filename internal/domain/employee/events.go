package employee

import (
	"github.com/staffbook/staffbook/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN EVENTS
// ══════════════════════════════════════════════════════════════════════════════

// SharedRateAggregateID is the aggregate ID used for class-wide rate changes.
const SharedRateAggregateID = "employee.shared_rate"

// HiredEvent - a staff member was constructed and stored.
type HiredEvent struct {
	shared.BaseEvent
	Kind     Kind
	Fullname string
	Pay      int
}

// NewHiredEvent creates a hire event for s.
func NewHiredEvent(s Staff) HiredEvent {
	return HiredEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventStaffHired, s.ID()),
		Kind:      s.Kind(),
		Fullname:  s.Fullname(),
		Pay:       s.Pay(),
	}
}

// Payload implements shared.Event.
func (e HiredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"kind":     string(e.Kind),
		"fullname": e.Fullname,
		"pay":      e.Pay,
	}
}

// RaiseAppliedEvent - pay was raised.
type RaiseAppliedEvent struct {
	shared.BaseEvent
	OldPay int
	NewPay int
	Rate   float64
}

// NewRaiseAppliedEvent creates a raise event.
func NewRaiseAppliedEvent(s Staff, oldPay int) RaiseAppliedEvent {
	return RaiseAppliedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventRaiseApplied, s.ID()),
		OldPay:    oldPay,
		NewPay:    s.Pay(),
		Rate:      s.RaiseRate(),
	}
}

// Payload implements shared.Event.
func (e RaiseAppliedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"old_pay": e.OldPay,
		"new_pay": e.NewPay,
		"rate":    e.Rate,
	}
}

// SharedRateChangedEvent - the class-wide raise rate changed.
type SharedRateChangedEvent struct {
	shared.BaseEvent
	OldRate float64
	NewRate float64
}

// NewSharedRateChangedEvent creates a rate change event.
func NewSharedRateChangedEvent(oldRate, newRate float64) SharedRateChangedEvent {
	return SharedRateChangedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventSharedRateChanged, SharedRateAggregateID),
		OldRate:   oldRate,
		NewRate:   newRate,
	}
}

// Payload implements shared.Event.
func (e SharedRateChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"old_rate": e.OldRate,
		"new_rate": e.NewRate,
	}
}

// RenamedEvent - both name parts were replaced.
type RenamedEvent struct {
	shared.BaseEvent
	OldName string
	NewName string
}

// NewRenamedEvent creates a rename event.
func NewRenamedEvent(s Staff, oldName string) RenamedEvent {
	return RenamedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventRenamed, s.ID()),
		OldName:   oldName,
		NewName:   s.Fullname(),
	}
}

// Payload implements shared.Event.
func (e RenamedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"old_name": e.OldName,
		"new_name": e.NewName,
	}
}

// NameNoticeEvent carries a Notice sent by ClearName.
type NameNoticeEvent struct {
	shared.BaseEvent
	Notice Notice
}

// NewNameNoticeEvent maps a notice to its event type.
func NewNameNoticeEvent(e *Employee, notice Notice) NameNoticeEvent {
	eventType := shared.EventNameClearing
	if notice == NoticeCleared {
		eventType = shared.EventNameCleared
	}
	return NameNoticeEvent{
		BaseEvent: shared.NewBaseEvent(eventType, e.ID()),
		Notice:    notice,
	}
}

// Payload implements shared.Event.
func (e NameNoticeEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"notice": string(e.Notice),
	}
}

// ReportEvent - a report joined or left a manager's roster.
type ReportEvent struct {
	shared.BaseEvent
	ReportID   string
	ReportName string
}

// NewReportEvent creates a roster event. added selects the event type.
func NewReportEvent(m *Manager, report Staff, added bool) ReportEvent {
	eventType := shared.EventReportRemoved
	if added {
		eventType = shared.EventReportAdded
	}
	return ReportEvent{
		BaseEvent:  shared.NewBaseEvent(eventType, m.ID()),
		ReportID:   report.ID(),
		ReportName: report.Fullname(),
	}
}

// Payload implements shared.Event.
func (e ReportEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"report_id":   e.ReportID,
		"report_name": e.ReportName,
	}
}
