package employee

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffbook/staffbook/internal/domain/shared"
)

func withSharedRate(t *testing.T, rate float64) {
	t.Helper()
	prev := SharedRaiseRate()
	SetSharedRaiseRate(rate)
	t.Cleanup(func() { SetSharedRaiseRate(prev) })
}

func TestNew_DerivedFields(t *testing.T) {
	tests := []struct {
		first, last string
		email       string
		fullname    string
	}{
		{"John", "Smith", "John.Smith@company.com", "John Smith"},
		{"Jane", "Doe", "Jane.Doe@company.com", "Jane Doe"},
		{"", "", ".@company.com", " "},
	}

	for _, tt := range tests {
		t.Run(tt.fullname, func(t *testing.T) {
			e := New(tt.first, tt.last, 1)
			assert.Equal(t, tt.email, e.Email())
			assert.Equal(t, tt.fullname, e.Fullname())
			assert.NotEmpty(t, e.ID())
		})
	}
}

func TestNew_DerivedFieldsFollowRename(t *testing.T) {
	e := New("John", "Smith", 100_000)
	require.NoError(t, e.SetFullname("Name Change"))

	assert.Equal(t, "Name", e.First())
	assert.Equal(t, "Change", e.Last())
	assert.Equal(t, "Name Change", e.Fullname())
	assert.Equal(t, "Name.Change@company.com", e.Email())
}

func TestEmployeeCount_CountsEveryConstructor(t *testing.T) {
	before := EmployeeCount()

	New("A", "B", 1)
	NewDeveloper("C", "D", 1, "Go")
	NewManager("E", "F", 1)
	_, err := FromString("G-H-1")
	require.NoError(t, err)

	assert.Equal(t, before+4, EmployeeCount())
}

func TestEmployeeCount_FailedParseDoesNotCount(t *testing.T) {
	before := EmployeeCount()

	_, err := FromString("A-B")
	require.Error(t, err)

	assert.Equal(t, before, EmployeeCount())
}

func TestApplyRaise_PerKindRates(t *testing.T) {
	withSharedRate(t, DefaultRaiseRate)

	e := New("John", "Smith", 100_000)
	d := NewDeveloper("Smith", "Developer", 120_000, "Python")
	m := NewManager("Jono", "Smith", 150_000)

	assert.Equal(t, 105_000, e.ApplyRaise())
	assert.Equal(t, 105_000, e.Pay())
	assert.Equal(t, 132_000, ApplyRaise(d))
	assert.Equal(t, 172_500, ApplyRaise(m))
}

func TestApplyRaise_Floors(t *testing.T) {
	withSharedRate(t, 1.5)

	e := New("A", "B", 3)
	assert.Equal(t, 4, e.ApplyRaise())

	// 180000 * 1.15 is 206999.99999999997 in float64.
	m := NewManager("Jose", "Smith", 180_000)
	assert.Equal(t, 206_999, m.ApplyRaise())
}

func TestSetSharedRaiseRate_OnlyAffectsPlainEmployees(t *testing.T) {
	emp := New("A", "B", 100_000)
	dev := NewDeveloper("C", "D", 120_000, "Java")
	mgr := NewManager("E", "F", 160_000)

	withSharedRate(t, 1.06)

	assert.Equal(t, 1.06, emp.RaiseRate())
	assert.Equal(t, DeveloperRaiseRate, dev.RaiseRate())
	assert.Equal(t, ManagerRaiseRate, mgr.RaiseRate())

	assert.Equal(t, 106_000, emp.ApplyRaise())
	assert.Equal(t, 132_000, dev.ApplyRaise())
	assert.Equal(t, 184_000, mgr.ApplyRaise())
}

func TestApplyRaise_MonotonicForRateAtLeastOne(t *testing.T) {
	withSharedRate(t, 1.0)

	for _, pay := range []int{0, 1, 99, 100_000, 1 << 40} {
		e := New("A", "B", pay)
		assert.Equal(t, pay, e.ApplyRaise())
	}
}

func TestSetFullname_Malformed(t *testing.T) {
	for _, name := range []string{"Single", "Too Many Parts", "Double  Space", ""} {
		t.Run(name, func(t *testing.T) {
			e := New("John", "Smith", 1)
			err := e.SetFullname(name)

			require.Error(t, err)
			assert.True(t, IsFormatError(err))
			assert.ErrorIs(t, err, ErrMalformedName)
			assert.Equal(t, "John Smith", e.Fullname())
		})
	}
}

func TestClearName(t *testing.T) {
	e := New("John", "Smith", 100_000)

	var notices []Notice
	var seenName []string
	e.ClearName(NotifierFunc(func(got *Employee, n Notice) {
		assert.Same(t, e, got)
		notices = append(notices, n)
		seenName = append(seenName, got.Fullname())
	}))

	assert.Equal(t, []Notice{NoticeClearing, NoticeCleared}, notices)
	assert.Equal(t, []string{"John Smith", ""}, seenName)

	assert.False(t, e.HasName())
	assert.Equal(t, "", e.Fullname())
	assert.Equal(t, "", e.Email())
	assert.Equal(t, "", e.First())
	assert.Equal(t, "", e.GoString())
	assert.Equal(t, "  100000", e.String())

	_, _, err := e.Name()
	assert.ErrorIs(t, err, ErrNameCleared)
	assert.True(t, shared.IsState(err))
}

func TestClearName_NilNotifier(t *testing.T) {
	e := New("John", "Smith", 1)
	assert.NotPanics(t, func() { e.ClearName(nil) })
	assert.False(t, e.HasName())

	require.NoError(t, e.SetFullname("Back Again"))
	assert.Equal(t, "Back Again", e.Fullname())
}

func TestDisplayForms(t *testing.T) {
	e := New("John", "Doe", 120_000)
	d := NewDeveloper("Doe", "Developer", 140_000, "Java")

	assert.Equal(t, "John Doe", e.GoString())
	assert.Equal(t, "John Doe John.Doe@company.com 120000", e.String())
	assert.Equal(t, "John Doe", fmt.Sprintf("%#v", e))
	assert.Equal(t, "John Doe John.Doe@company.com 120000", fmt.Sprint(e))

	assert.Equal(t, "Doe Developer Doe.Developer@company.com 140000", Display(d))
}

type reprOnly struct{ name string }

func (r reprOnly) GoString() string { return r.name }

func TestDisplay_FallsBackToGoString(t *testing.T) {
	assert.Equal(t, "only repr", Display(reprOnly{name: "only repr"}))
}

func TestKindHierarchy(t *testing.T) {
	mgr := NewManager("Jono", "Smith", 150_000)
	dev := NewDeveloper("Smith", "Developer", 120_000, "Python")

	assert.True(t, IsManager(mgr))
	assert.False(t, IsDeveloper(mgr))
	assert.True(t, mgr.Kind().IsA(KindEmployee))
	assert.True(t, dev.Kind().IsA(KindEmployee))

	assert.True(t, KindDeveloper.IsA(KindEmployee))
	assert.True(t, KindManager.IsA(KindEmployee))
	assert.False(t, KindManager.IsA(KindDeveloper))
	assert.False(t, KindDeveloper.IsA(KindManager))
	assert.False(t, KindEmployee.IsA(KindManager))
	assert.False(t, Kind("intern").IsA(KindEmployee))
}

func TestIsWorkday(t *testing.T) {
	monday := time.Date(2016, time.July, 11, 0, 0, 0, 0, time.UTC)
	saturday := time.Date(2016, time.July, 9, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2016, time.July, 10, 0, 0, 0, 0, time.UTC)

	assert.True(t, IsWorkday(monday))
	assert.False(t, IsWorkday(saturday))
	assert.False(t, IsWorkday(sunday))
}
