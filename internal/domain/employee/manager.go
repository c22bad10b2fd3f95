package employee

import (
	"iter"
	"slices"
)

// Manager is an employee with a roster of reports.
// The roster holds references to existing staff and never copies them.
// Entries are unique by person: a developer and its Profile() are the same
// entry.
type Manager struct {
	Employee
	reports []Staff
}

// NewManager constructs a manager and counts it. Each manager gets its own
// roster; duplicates and nil entries in reports are skipped.
func NewManager(first, last string, pay int, reports ...Staff) *Manager {
	m := &Manager{
		Employee: newEmployee(first, last, pay),
		reports:  make([]Staff, 0, len(reports)),
	}
	for _, r := range reports {
		m.AddManaged(r)
	}
	headcount.Add(1)
	return m
}

// Kind returns KindManager.
func (m *Manager) Kind() Kind { return KindManager }

// RaiseRate returns ManagerRaiseRate.
func (m *Manager) RaiseRate() float64 { return ManagerRaiseRate }

// ApplyRaise sets pay to floor(pay * 1.15) and returns it.
func (m *Manager) ApplyRaise() int { return m.raise(m.RaiseRate()) }

// AddManaged appends s unless it is already on the roster.
// It reports whether the roster changed.
func (m *Manager) AddManaged(s Staff) bool {
	if s == nil || m.Manages(s) {
		return false
	}
	m.reports = append(m.reports, s)
	return true
}

// RemoveManaged drops s from the roster if present.
// It reports whether the roster changed.
func (m *Manager) RemoveManaged(s Staff) bool {
	i := m.indexOf(s)
	if i < 0 {
		return false
	}
	m.reports = slices.Delete(m.reports, i, i+1)
	return true
}

// Manages reports whether s is on the roster.
func (m *Manager) Manages(s Staff) bool {
	return m.indexOf(s) >= 0
}

func (m *Manager) indexOf(s Staff) int {
	if s == nil {
		return -1
	}
	p := s.Profile()
	return slices.IndexFunc(m.reports, func(r Staff) bool { return r.Profile() == p })
}

// RestoreManaged replaces the roster with reports, keeping the AddManaged
// rules. It undoes a roster change that could not be stored.
func (m *Manager) RestoreManaged(reports []Staff) {
	m.reports = make([]Staff, 0, len(reports))
	for _, r := range reports {
		m.AddManaged(r)
	}
}

// Managed returns a copy of the roster in insertion order.
func (m *Manager) Managed() []Staff {
	return slices.Clone(m.reports)
}

// ReportCount returns the roster size.
func (m *Manager) ReportCount() int {
	return len(m.reports)
}

// ListManaged yields the full name of every report in insertion order.
// The sequence reads a copy taken at call time.
func (m *Manager) ListManaged() iter.Seq[string] {
	reports := m.Managed()
	return func(yield func(string) bool) {
		for _, r := range reports {
			if !yield(r.Fullname()) {
				return
			}
		}
	}
}
