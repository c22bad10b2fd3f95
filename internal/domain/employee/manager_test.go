package employee

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager_AddManagedIsIdempotent(t *testing.T) {
	dev := NewDeveloper("Smith", "Developer", 120_000, "Python")
	mgr := NewManager("Jono", "Smith", 150_000)

	assert.True(t, mgr.AddManaged(dev))
	assert.False(t, mgr.AddManaged(dev))
	assert.Equal(t, 1, mgr.ReportCount())
}

func TestManager_IdentityNotEquality(t *testing.T) {
	a := New("John", "Smith", 1)
	b := New("John", "Smith", 1)
	mgr := NewManager("Jono", "Smith", 1, a)

	assert.True(t, mgr.AddManaged(b))
	assert.Equal(t, []string{"John Smith", "John Smith"}, slices.Collect(mgr.ListManaged()))
}

func TestManager_RemoveManaged(t *testing.T) {
	a := New("A", "One", 1)
	b := New("B", "Two", 1)
	c := New("C", "Three", 1)
	mgr := NewManager("M", "Gr", 1, a, b, c)

	assert.True(t, mgr.RemoveManaged(b))
	assert.False(t, mgr.RemoveManaged(b))
	assert.False(t, mgr.RemoveManaged(New("X", "Y", 1)))
	assert.False(t, mgr.RemoveManaged(nil))

	assert.Equal(t, []string{"A One", "C Three"}, slices.Collect(mgr.ListManaged()))
}

func TestManager_ConstructorDedupesAndSkipsNil(t *testing.T) {
	dev := NewDeveloper("Doe", "Developer", 140_000, "Java")
	mgr := NewManager("Jose", "Smith", 180_000, dev, nil, dev)

	assert.Equal(t, []Staff{dev}, mgr.Managed())
}

func TestManager_RostersAreNotShared(t *testing.T) {
	m1 := NewManager("A", "B", 1)
	m2 := NewManager("C", "D", 1)

	m1.AddManaged(New("E", "F", 1))

	assert.Equal(t, 1, m1.ReportCount())
	assert.Equal(t, 0, m2.ReportCount())
}

func TestManager_ReportsAreReferences(t *testing.T) {
	dev := NewDeveloper("Smith", "Developer", 120_000, "Python")
	mgr := NewManager("Jono", "Smith", 150_000, dev)

	dev.ApplyRaise()
	assert.NoError(t, dev.SetFullname("Renamed Dev"))

	got := mgr.Managed()
	assert.Same(t, dev, got[0])
	assert.Equal(t, []string{"Renamed Dev"}, slices.Collect(mgr.ListManaged()))
}

func TestManager_ManagedIsACopy(t *testing.T) {
	mgr := NewManager("A", "B", 1, New("C", "D", 1))

	copied := mgr.Managed()
	copied[0] = nil

	assert.NotNil(t, mgr.Managed()[0])
}

func TestManager_ListManagedEarlyStop(t *testing.T) {
	mgr := NewManager("A", "B", 1, New("C", "D", 1), New("E", "F", 1))

	var first string
	for name := range mgr.ListManaged() {
		first = name
		break
	}
	assert.Equal(t, "C D", first)
}

func TestManager_CanManageAnyKind(t *testing.T) {
	emp := New("A", "B", 1)
	dev := NewDeveloper("C", "D", 1, "Go")
	peer := NewManager("E", "F", 1)

	mgr := NewManager("G", "H", 1, emp, dev, peer)

	assert.True(t, mgr.Manages(emp))
	assert.True(t, mgr.Manages(dev))
	assert.True(t, mgr.Manages(peer))
	assert.Equal(t, 3, mgr.ReportCount())
}

func TestManager_ProfileIsTheSameReport(t *testing.T) {
	dev := NewDeveloper("Smith", "Developer", 120_000, "Python")
	mgr := NewManager("Jono", "Smith", 150_000)

	assert.True(t, mgr.AddManaged(dev))
	assert.False(t, mgr.AddManaged(dev.Profile()))
	assert.True(t, mgr.Manages(dev.Profile()))
	assert.Equal(t, []string{"Smith Developer"}, slices.Collect(mgr.ListManaged()))
	assert.Same(t, dev, mgr.Managed()[0])

	assert.True(t, mgr.RemoveManaged(dev.Profile()))
	assert.False(t, mgr.Manages(dev))
	assert.Zero(t, mgr.ReportCount())
}

func TestManager_RestoreManaged(t *testing.T) {
	a := New("A", "One", 1)
	b := New("B", "Two", 1)
	mgr := NewManager("M", "Gr", 1, a, b)
	before := mgr.Managed()

	mgr.RemoveManaged(a)
	mgr.AddManaged(New("C", "Three", 1))
	mgr.RestoreManaged(before)

	assert.Equal(t, []string{"A One", "B Two"}, slices.Collect(mgr.ListManaged()))
}

func TestFuller(t *testing.T) {
	dev := NewDeveloper("Smith", "Developer", 120_000, "Python")
	other := New("John", "Smith", 1)

	assert.Same(t, dev, Fuller(dev, dev.Profile()))
	assert.Same(t, dev, Fuller(nil, dev))
	assert.Same(t, dev, Fuller(dev.Profile(), dev))
	assert.Same(t, other, Fuller(dev, other))
}
