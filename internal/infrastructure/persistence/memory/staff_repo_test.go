package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffbook/staffbook/internal/domain/employee"
	"github.com/staffbook/staffbook/internal/domain/shared"
)

func TestStaffRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewStaffRepository()
	e := employee.New("John", "Smith", 100_000)

	require.NoError(t, repo.Save(ctx, e))

	got, err := repo.Get(ctx, e.ID())
	require.NoError(t, err)
	assert.Same(t, e, got)
}

func TestStaffRepository_GetMissing(t *testing.T) {
	_, err := NewStaffRepository().Get(context.Background(), "nope")
	assert.ErrorIs(t, err, employee.ErrStaffNotFound)
	assert.True(t, shared.IsNotFound(err))
}

func TestStaffRepository_SaveManagerSavesRoster(t *testing.T) {
	ctx := context.Background()
	repo := NewStaffRepository()

	dev := employee.NewDeveloper("Smith", "Developer", 120_000, "Python")
	emp := employee.New("John", "Smith", 100_000)
	mgr := employee.NewManager("Jono", "Smith", 150_000, dev, emp)

	require.NoError(t, repo.Save(ctx, mgr))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []employee.Staff{mgr, dev, emp}, all)
}

func TestStaffRepository_SaveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewStaffRepository()
	e := employee.New("A", "B", 1)

	require.NoError(t, repo.Save(ctx, e))
	require.NoError(t, repo.Save(ctx, e))

	assert.Equal(t, 1, repo.Len())
}

func TestStaffRepository_BareProfileKeepsKind(t *testing.T) {
	ctx := context.Background()
	repo := NewStaffRepository()
	dev := employee.NewDeveloper("Smith", "Developer", 120_000, "Python")
	require.NoError(t, repo.Save(ctx, dev))

	mgr := employee.NewManager("Jono", "Smith", 150_000, dev.Profile())
	assert.False(t, mgr.AddManaged(dev))
	require.NoError(t, repo.Save(ctx, mgr))
	require.NoError(t, repo.Save(ctx, dev.Profile()))

	got, err := repo.Get(ctx, dev.ID())
	require.NoError(t, err)
	assert.Same(t, dev, got)
	assert.Equal(t, employee.KindDeveloper, got.Kind())
	assert.Equal(t, 2, repo.Len())
}

func TestStaffRepository_ManagersInEachOthersRoster(t *testing.T) {
	ctx := context.Background()
	repo := NewStaffRepository()

	a := employee.NewManager("A", "A", 1)
	b := employee.NewManager("B", "B", 1, a)
	a.AddManaged(b)

	require.NoError(t, repo.Save(ctx, a))
	assert.Equal(t, 2, repo.Len())
}

func TestStaffRepository_DeleteDropsFromRosters(t *testing.T) {
	ctx := context.Background()
	repo := NewStaffRepository()

	dev := employee.NewDeveloper("Doe", "Developer", 140_000, "Java")
	mgr := employee.NewManager("Jose", "Smith", 180_000, dev)
	require.NoError(t, repo.Save(ctx, mgr))

	require.NoError(t, repo.Delete(ctx, dev.ID()))

	assert.False(t, mgr.Manages(dev))
	_, err := repo.Get(ctx, dev.ID())
	assert.ErrorIs(t, err, employee.ErrStaffNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, dev.ID()), employee.ErrStaffNotFound)
}

func TestStaffRepository_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewStaffRepository().Save(ctx, employee.New("A", "B", 1))
	assert.ErrorIs(t, err, context.Canceled)
}
