package employee

import (
	"errors"
	"fmt"
)

// Snapshot is the flat persistence view of a staff member.
// Nil First/Last mean the name was cleared.
type Snapshot struct {
	ID       string
	Kind     Kind
	First    *string
	Last     *string
	Pay      int
	Language string
	Reports  []string
}

// TakeSnapshot captures s. Reports are listed by ID in roster order.
func TakeSnapshot(s Staff) Snapshot {
	base := s.Profile()
	snap := Snapshot{
		ID:    base.id,
		Kind:  s.Kind(),
		First: cloneString(base.first),
		Last:  cloneString(base.last),
		Pay:   base.pay,
	}

	switch v := s.(type) {
	case *Developer:
		snap.Language = v.Language
	case *Manager:
		snap.Reports = make([]string, 0, len(v.reports))
		for _, r := range v.reports {
			snap.Reports = append(snap.Reports, r.ID())
		}
	}

	return snap
}

// Restore rebuilds a staff member from storage without counting it.
// A restored manager starts with an empty roster; the caller resolves
// snap.Reports and attaches them with AddManaged.
func Restore(snap Snapshot) (Staff, error) {
	if snap.ID == "" {
		return nil, ErrUnknownKind.With(errors.New("snapshot has no id"))
	}

	base := Employee{
		id:    snap.ID,
		first: cloneString(snap.First),
		last:  cloneString(snap.Last),
		pay:   snap.Pay,
	}

	switch snap.Kind {
	case KindEmployee:
		return &base, nil
	case KindDeveloper:
		return &Developer{Employee: base, Language: snap.Language}, nil
	case KindManager:
		return &Manager{Employee: base, reports: make([]Staff, 0, len(snap.Reports))}, nil
	default:
		return nil, ErrUnknownKind.With(fmt.Errorf("kind %q", snap.Kind))
	}
}

// Revert puts back the name and pay captured in snap. It is a no-op when
// snap belongs to someone else. Rosters are left alone; see RestoreManaged.
func (e *Employee) Revert(snap Snapshot) {
	if snap.ID != e.id {
		return
	}
	e.first = cloneString(snap.First)
	e.last = cloneString(snap.Last)
	e.pay = snap.Pay
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
