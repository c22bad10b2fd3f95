package employee

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// ══════════════════════════════════════════════════════════════════════════════
// CLASS-WIDE STATE
// ══════════════════════════════════════════════════════════════════════════════

// EmailDomain is appended to every derived email address.
const EmailDomain = "company.com"

// Raise rates per kind. Plain employees start at DefaultRaiseRate and follow
// SetSharedRaiseRate; developers and managers keep their own rate.
const (
	DefaultRaiseRate   = 1.05
	DeveloperRaiseRate = 1.10
	ManagerRaiseRate   = 1.15
)

var (
	headcount  atomic.Int64
	sharedRate atomic.Uint64
)

func init() {
	sharedRate.Store(math.Float64bits(DefaultRaiseRate))
}

// EmployeeCount returns how many staff members were constructed since process start.
func EmployeeCount() int64 {
	return headcount.Load()
}

// SharedRaiseRate returns the rate plain employees get on ApplyRaise.
func SharedRaiseRate() float64 {
	return math.Float64frombits(sharedRate.Load())
}

// SetSharedRaiseRate changes the rate for every plain employee, including
// ones constructed earlier. Developer and Manager rates are unaffected.
func SetSharedRaiseRate(rate float64) {
	sharedRate.Store(math.Float64bits(rate))
}

// ══════════════════════════════════════════════════════════════════════════════
// KIND
// ══════════════════════════════════════════════════════════════════════════════

// Kind identifies the specialization of a staff member.
type Kind string

const (
	KindEmployee  Kind = "employee"
	KindDeveloper Kind = "developer"
	KindManager   Kind = "manager"
)

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindEmployee, KindDeveloper, KindManager:
		return true
	default:
		return false
	}
}

// IsA reports whether k is the same kind as other or specializes it.
// Every kind is an employee; developers and managers are unrelated.
func (k Kind) IsA(other Kind) bool {
	if !k.IsValid() {
		return false
	}
	return k == other || other == KindEmployee
}

// String returns the kind name.
func (k Kind) String() string {
	return string(k)
}

// ══════════════════════════════════════════════════════════════════════════════
// STAFF CAPABILITY
// ══════════════════════════════════════════════════════════════════════════════

// Staff is implemented by *Employee, *Developer and *Manager.
type Staff interface {
	ID() string
	Kind() Kind
	Profile() *Employee

	First() string
	Last() string
	Pay() int
	Email() string
	Fullname() string

	RaiseRate() float64
	ApplyRaise() int

	// GoString is the unambiguous developer-facing form.
	GoString() string
	// String is the end-user form.
	String() string
}

var (
	_ Staff = (*Employee)(nil)
	_ Staff = (*Developer)(nil)
	_ Staff = (*Manager)(nil)
)

// ApplyRaise raises s by its own rate and returns the new pay.
func ApplyRaise(s Staff) int {
	return s.ApplyRaise()
}

// IsDeveloper reports whether s is a *Developer.
func IsDeveloper(s Staff) bool {
	_, ok := s.(*Developer)
	return ok
}

// IsManager reports whether s is a *Manager.
func IsManager(s Staff) bool {
	_, ok := s.(*Manager)
	return ok
}

// Display returns the end-user form of v, falling back to its
// developer-facing form when v has no String method.
func Display(v fmt.GoStringer) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return v.GoString()
}

// ══════════════════════════════════════════════════════════════════════════════
// EMPLOYEE
// ══════════════════════════════════════════════════════════════════════════════

// Employee is the base staff member.
type Employee struct {
	id    string
	first *string
	last  *string
	pay   int
}

func newEmployee(first, last string, pay int) Employee {
	return Employee{
		id:    uuid.NewString(),
		first: &first,
		last:  &last,
		pay:   pay,
	}
}

// New constructs an employee and counts it.
func New(first, last string, pay int) *Employee {
	e := newEmployee(first, last, pay)
	headcount.Add(1)
	return &e
}

// ID returns the staff identifier.
func (e *Employee) ID() string { return e.id }

// Kind returns KindEmployee.
func (e *Employee) Kind() Kind { return KindEmployee }

// Profile returns the base record shared by all kinds.
func (e *Employee) Profile() *Employee { return e }

// Pay returns the current pay.
func (e *Employee) Pay() int { return e.pay }

// First returns the first name, or "" once cleared.
func (e *Employee) First() string {
	if e.first == nil {
		return ""
	}
	return *e.first
}

// Last returns the last name, or "" once cleared.
func (e *Employee) Last() string {
	if e.last == nil {
		return ""
	}
	return *e.last
}

// HasName reports whether both name parts are present.
func (e *Employee) HasName() bool {
	return e.first != nil && e.last != nil
}

// Name returns both name parts, or ErrNameCleared after ClearName.
func (e *Employee) Name() (first, last string, err error) {
	if !e.HasName() {
		return "", "", ErrNameCleared
	}
	return *e.first, *e.last, nil
}

// Email derives first.last@company.com. Empty once the name is cleared.
func (e *Employee) Email() string {
	if !e.HasName() {
		return ""
	}
	return *e.first + "." + *e.last + "@" + EmailDomain
}

// Fullname derives "first last". Empty once the name is cleared.
func (e *Employee) Fullname() string {
	if !e.HasName() {
		return ""
	}
	return *e.first + " " + *e.last
}

// SetFullname splits name on single spaces and assigns both parts.
// The name must split into exactly two parts.
func (e *Employee) SetFullname(name string) error {
	parts := strings.Split(name, " ")
	if len(parts) != 2 {
		return ErrMalformedName.With(fmt.Errorf("%q splits into %d parts", name, len(parts)))
	}
	first, last := parts[0], parts[1]
	e.first, e.last = &first, &last
	return nil
}

// ClearName removes both name parts. n is told before and after the change.
func (e *Employee) ClearName(n Notifier) {
	if n == nil {
		n = nopNotifier{}
	}
	n.Notify(e, NoticeClearing)
	e.first, e.last = nil, nil
	n.Notify(e, NoticeCleared)
}

// RaiseRate returns the shared rate.
func (e *Employee) RaiseRate() float64 { return SharedRaiseRate() }

// ApplyRaise sets pay to floor(pay * shared rate) and returns it.
func (e *Employee) ApplyRaise() int { return e.raise(e.RaiseRate()) }

func (e *Employee) raise(rate float64) int {
	e.pay = int(math.Floor(float64(e.pay) * rate))
	return e.pay
}

// GoString returns the full name.
func (e *Employee) GoString() string {
	return e.Fullname()
}

// String returns "fullname email pay".
func (e *Employee) String() string {
	return e.Fullname() + " " + e.Email() + " " + strconv.Itoa(e.pay)
}

// ══════════════════════════════════════════════════════════════════════════════
// DEVELOPER
// ══════════════════════════════════════════════════════════════════════════════

// Developer is an employee who writes code in Language.
type Developer struct {
	Employee
	Language string
}

// NewDeveloper constructs a developer and counts it.
func NewDeveloper(first, last string, pay int, language string) *Developer {
	d := &Developer{
		Employee: newEmployee(first, last, pay),
		Language: language,
	}
	headcount.Add(1)
	return d
}

// Kind returns KindDeveloper.
func (d *Developer) Kind() Kind { return KindDeveloper }

// RaiseRate returns DeveloperRaiseRate.
func (d *Developer) RaiseRate() float64 { return DeveloperRaiseRate }

// ApplyRaise sets pay to floor(pay * 1.10) and returns it.
func (d *Developer) ApplyRaise() int { return d.raise(d.RaiseRate()) }

// ══════════════════════════════════════════════════════════════════════════════
// NAME NOTICES
// ══════════════════════════════════════════════════════════════════════════════

// Notice is sent around a name clear.
type Notice string

const (
	NoticeClearing Notice = "clearing name"
	NoticeCleared  Notice = "name cleared"
)

// Notifier receives name notices.
type Notifier interface {
	Notify(e *Employee, notice Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(e *Employee, notice Notice)

// Notify calls f.
func (f NotifierFunc) Notify(e *Employee, notice Notice) { f(e, notice) }

type nopNotifier struct{}

func (nopNotifier) Notify(*Employee, Notice) {}
