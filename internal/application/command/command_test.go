package command

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffbook/staffbook/internal/application/query"
	"github.com/staffbook/staffbook/internal/domain/employee"
	"github.com/staffbook/staffbook/internal/domain/shared"
	"github.com/staffbook/staffbook/internal/infrastructure/persistence/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *recordingPublisher) Publish(e shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []shared.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type recordingInvalidator struct {
	ids []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, ids ...string) error {
	r.ids = append(r.ids, ids...)
	return nil
}

type fixture struct {
	repo *memory.StaffRepository
	pub  *recordingPublisher
	inv  *recordingInvalidator
	deps Deps
}

func newFixture() *fixture {
	f := &fixture{
		repo: memory.NewStaffRepository(),
		pub:  &recordingPublisher{},
		inv:  &recordingInvalidator{},
	}
	f.deps = Deps{Repo: f.repo, Publisher: f.pub, Invalidator: f.inv}
	return f
}

// flakyRepo fails every Save while err is set.
type flakyRepo struct {
	*memory.StaffRepository
	err error
}

func (r *flakyRepo) Save(ctx context.Context, s employee.Staff) error {
	if r.err != nil {
		return r.err
	}
	return r.StaffRepository.Save(ctx, s)
}

var errDiskFull = errors.New("disk full")

func newFlakyFixture() (*fixture, *flakyRepo) {
	f := newFixture()
	repo := &flakyRepo{StaffRepository: f.repo}
	f.deps.Repo = repo
	return f, repo
}

// cardMap is a card cache that commands can invalidate.
type cardMap map[string]query.StaffCardDTO

func (c cardMap) Get(_ context.Context, id string) (*query.StaffCardDTO, error) {
	card, ok := c[id]
	if !ok {
		return nil, query.ErrCacheMiss
	}
	return &card, nil
}

func (c cardMap) Set(_ context.Context, card query.StaffCardDTO) error {
	c[card.ID] = card
	return nil
}

func (c cardMap) Invalidate(_ context.Context, ids ...string) error {
	for _, id := range ids {
		delete(c, id)
	}
	return nil
}

func withSharedRate(t *testing.T, rate float64) {
	t.Helper()
	prev := employee.SharedRaiseRate()
	employee.SetSharedRaiseRate(rate)
	t.Cleanup(func() { employee.SetSharedRaiseRate(prev) })
}

// ══════════════════════════════════════════════════════════════════════════════
// HIRE
// ══════════════════════════════════════════════════════════════════════════════

func TestHireHandler_Kinds(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	h := NewHireHandler(f.deps)

	dev, err := h.Handle(ctx, HireCommand{Kind: employee.KindDeveloper, First: "Smith", Last: "Developer", Pay: 120_000, Language: "Python"})
	require.NoError(t, err)
	emp, err := h.Handle(ctx, HireCommand{Kind: employee.KindEmployee, First: "John", Last: "Smith", Pay: 100_000})
	require.NoError(t, err)

	before := employee.EmployeeCount()
	mgr, err := h.Handle(ctx, HireCommand{
		Kind: employee.KindManager, First: "Jono", Last: "Smith", Pay: 150_000,
		ReportIDs:     []string{dev.Staff.ID(), emp.Staff.ID()},
		CorrelationID: "corr-1",
	})
	require.NoError(t, err)

	assert.Equal(t, before+1, mgr.Headcount)
	m := mgr.Staff.(*employee.Manager)
	assert.Equal(t, []string{"Smith Developer", "John Smith"}, slices.Collect(m.ListManaged()))
	assert.Same(t, dev.Staff, m.Managed()[0])

	assert.Equal(t, []shared.EventType{shared.EventStaffHired, shared.EventStaffHired, shared.EventStaffHired}, f.pub.types())
	last := f.pub.events[2].(employee.HiredEvent)
	assert.Equal(t, "corr-1", last.CorrelationID)
	assert.Equal(t, employee.KindManager, last.Kind)
}

func TestHireHandler_Record(t *testing.T) {
	f := newFixture()
	res, err := NewHireHandler(f.deps).Handle(context.Background(), HireCommand{Record: "Johnny-Smith-110_000"})
	require.NoError(t, err)

	assert.Equal(t, "Johnny Smith Johnny.Smith@company.com 110000", res.Staff.String())
	assert.Equal(t, 1, f.repo.Len())
}

func TestHireHandler_Errors(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		cmd   HireCommand
		check func(t *testing.T, err error)
	}{
		{"malformed record", HireCommand{Record: "A-B"}, func(t *testing.T, err error) {
			assert.True(t, employee.IsFormatError(err))
		}},
		{"unknown kind", HireCommand{Kind: "intern", First: "A", Last: "B"}, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, employee.ErrUnknownKind)
		}},
		{"developer without language", HireCommand{Kind: employee.KindDeveloper, First: "A", Last: "B"}, func(t *testing.T, err error) {
			assert.Error(t, err)
		}},
		{"reports on non-manager", HireCommand{Kind: employee.KindEmployee, ReportIDs: []string{"x"}}, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, employee.ErrNotManager)
		}},
		{"missing report", HireCommand{Kind: employee.KindManager, ReportIDs: []string{"x"}}, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, employee.ErrStaffNotFound)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			before := employee.EmployeeCount()

			res, err := NewHireHandler(f.deps).Handle(ctx, tt.cmd)

			require.Error(t, err)
			assert.Nil(t, res)
			tt.check(t, err)
			assert.Equal(t, before, employee.EmployeeCount())
			assert.Empty(t, f.pub.types())
		})
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// RAISES
// ══════════════════════════════════════════════════════════════════════════════

func TestApplyRaiseHandler(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	dev := employee.NewDeveloper("Doe", "Developer", 140_000, "Java")
	require.NoError(t, f.repo.Save(ctx, dev))

	res, err := NewApplyRaiseHandler(f.deps).Handle(ctx, ApplyRaiseCommand{StaffID: dev.ID()})
	require.NoError(t, err)

	assert.Equal(t, 140_000, res.OldPay)
	assert.Equal(t, 154_000, res.NewPay)
	assert.Equal(t, 154_000, dev.Pay())
	assert.Equal(t, []string{dev.ID()}, f.inv.ids)

	ev := f.pub.events[0].(employee.RaiseAppliedEvent)
	assert.Equal(t, 140_000, ev.OldPay)
	assert.Equal(t, 154_000, ev.NewPay)
}

func TestApplyRaiseHandler_SaveFailureKeepsPay(t *testing.T) {
	ctx := context.Background()
	f, repo := newFlakyFixture()
	dev := employee.NewDeveloper("Doe", "Developer", 140_000, "Java")
	require.NoError(t, f.repo.Save(ctx, dev))
	h := NewApplyRaiseHandler(f.deps)

	repo.err = errDiskFull
	_, err := h.Handle(ctx, ApplyRaiseCommand{StaffID: dev.ID()})
	require.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, 140_000, dev.Pay())
	assert.Empty(t, f.pub.types())
	assert.Empty(t, f.inv.ids)

	repo.err = nil
	res, err := h.Handle(ctx, ApplyRaiseCommand{StaffID: dev.ID()})
	require.NoError(t, err)
	assert.Equal(t, 140_000, res.OldPay)
	assert.Equal(t, 154_000, res.NewPay)
}

func TestApplyRaiseHandler_NotFound(t *testing.T) {
	f := newFixture()
	_, err := NewApplyRaiseHandler(f.deps).Handle(context.Background(), ApplyRaiseCommand{StaffID: "ghost"})
	assert.ErrorIs(t, err, employee.ErrStaffNotFound)
}

func TestSetSharedRateHandler(t *testing.T) {
	ctx := context.Background()
	withSharedRate(t, employee.DefaultRaiseRate)

	f := newFixture()
	emp := employee.New("John", "Smith", 100_000)
	dev := employee.NewDeveloper("Smith", "Developer", 120_000, "Python")
	require.NoError(t, f.repo.Save(ctx, emp))
	require.NoError(t, f.repo.Save(ctx, dev))

	res, err := NewSetSharedRateHandler(f.deps).Handle(ctx, SetSharedRateCommand{Rate: 1.06})
	require.NoError(t, err)

	assert.Equal(t, employee.DefaultRaiseRate, res.OldRate)
	assert.Equal(t, 1.06, employee.SharedRaiseRate())
	assert.Equal(t, []string{emp.ID()}, f.inv.ids)
	assert.Equal(t, []shared.EventType{shared.EventSharedRateChanged}, f.pub.types())

	assert.Equal(t, 106_000, emp.ApplyRaise())
	assert.Equal(t, 132_000, dev.ApplyRaise())
}

func TestSetSharedRateCommand_Validate(t *testing.T) {
	for _, rate := range []float64{0, -1} {
		err := SetSharedRateCommand{Rate: rate}.Validate()
		assert.ErrorIs(t, err, shared.ErrValueOutOfRange)
	}
	assert.NoError(t, SetSharedRateCommand{Rate: 0.5}.Validate())
}

// ══════════════════════════════════════════════════════════════════════════════
// NAMES
// ══════════════════════════════════════════════════════════════════════════════

func TestRenameHandler(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	e := employee.New("John", "Smith", 100_000)
	require.NoError(t, f.repo.Save(ctx, e))

	res, err := NewRenameHandler(f.deps).Handle(ctx, RenameCommand{StaffID: e.ID(), Fullname: "Name Change"})
	require.NoError(t, err)

	assert.Equal(t, "John Smith", res.OldName)
	assert.Equal(t, "Name Change", res.NewName)
	assert.Equal(t, "Name.Change@company.com", res.Email)
	assert.Equal(t, []shared.EventType{shared.EventRenamed}, f.pub.types())
}

func TestRenameHandler_InvalidatesManagerCards(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	dev := employee.NewDeveloper("Smith", "Developer", 120_000, "Python")
	mgr := employee.NewManager("Jono", "Smith", 150_000, dev.Profile())
	bystander := employee.NewManager("Ann", "Other", 150_000)
	require.NoError(t, f.repo.Save(ctx, dev))
	require.NoError(t, f.repo.Save(ctx, mgr))
	require.NoError(t, f.repo.Save(ctx, bystander))
	h := NewRenameHandler(f.deps)

	_, err := h.Handle(ctx, RenameCommand{StaffID: dev.ID(), Fullname: "Name Change"})
	require.NoError(t, err)
	assert.Equal(t, []string{dev.ID(), mgr.ID()}, f.inv.ids)

	f.inv.ids = nil
	_, err = h.HandleClear(ctx, ClearNameCommand{StaffID: dev.ID()})
	require.NoError(t, err)
	assert.Equal(t, []string{dev.ID(), mgr.ID()}, f.inv.ids)
}

func TestRenameHandler_ManagerCardShowsNewName(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	cards := cardMap{}
	f.deps.Invalidator = cards

	dev := employee.NewDeveloper("Smith", "Developer", 120_000, "Python")
	mgr := employee.NewManager("Jono", "Smith", 150_000, dev)
	require.NoError(t, f.repo.Save(ctx, mgr))

	read := query.NewStaffCardHandler(f.repo, cards, nil)
	card, err := read.Handle(ctx, query.StaffCardQuery{StaffID: mgr.ID()})
	require.NoError(t, err)
	assert.Equal(t, []string{"Smith Developer"}, card.Reports)

	_, err = NewRenameHandler(f.deps).Handle(ctx, RenameCommand{StaffID: dev.ID(), Fullname: "Name Change"})
	require.NoError(t, err)

	card, err = read.Handle(ctx, query.StaffCardQuery{StaffID: mgr.ID()})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name Change"}, card.Reports)
}

func TestRenameHandler_SaveFailureKeepsName(t *testing.T) {
	ctx := context.Background()
	f, repo := newFlakyFixture()
	e := employee.New("John", "Smith", 100_000)
	require.NoError(t, f.repo.Save(ctx, e))
	h := NewRenameHandler(f.deps)
	repo.err = errDiskFull

	_, err := h.Handle(ctx, RenameCommand{StaffID: e.ID(), Fullname: "Name Change"})
	require.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, "John Smith", e.Fullname())

	_, err = h.HandleClear(ctx, ClearNameCommand{StaffID: e.ID()})
	require.ErrorIs(t, err, errDiskFull)
	assert.True(t, e.HasName())
	assert.Equal(t, "John.Smith@company.com", e.Email())
	assert.Empty(t, f.inv.ids)
}

func TestRenameHandler_Malformed(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	e := employee.New("John", "Smith", 100_000)
	require.NoError(t, f.repo.Save(ctx, e))

	_, err := NewRenameHandler(f.deps).Handle(ctx, RenameCommand{StaffID: e.ID(), Fullname: "Cher"})

	assert.True(t, employee.IsFormatError(err))
	assert.Equal(t, "John Smith", e.Fullname())
	assert.Empty(t, f.pub.types())
	assert.Empty(t, f.inv.ids)
}

func TestRenameHandler_Clear(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	e := employee.New("John", "Smith", 100_000)
	require.NoError(t, f.repo.Save(ctx, e))

	res, err := NewRenameHandler(f.deps).HandleClear(ctx, ClearNameCommand{StaffID: e.ID(), CorrelationID: "c"})
	require.NoError(t, err)

	assert.Equal(t, []employee.Notice{employee.NoticeClearing, employee.NoticeCleared}, res.Notices)
	assert.Equal(t, []shared.EventType{shared.EventNameClearing, shared.EventNameCleared}, f.pub.types())
	assert.Equal(t, "c", f.pub.events[0].(employee.NameNoticeEvent).CorrelationID)
	assert.False(t, e.HasName())
	assert.Equal(t, []string{e.ID()}, f.inv.ids)
}

// ══════════════════════════════════════════════════════════════════════════════
// ROSTER
// ══════════════════════════════════════════════════════════════════════════════

func TestRosterHandler(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	dev := employee.NewDeveloper("Smith", "Developer", 120_000, "Python")
	mgr := employee.NewManager("Jono", "Smith", 150_000)
	require.NoError(t, f.repo.Save(ctx, dev))
	require.NoError(t, f.repo.Save(ctx, mgr))

	h := NewRosterHandler(f.deps)
	cmd := RosterCommand{ManagerID: mgr.ID(), ReportID: dev.ID()}

	res, err := h.Add(ctx, cmd)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, 1, res.ReportCount)

	res, err = h.Add(ctx, cmd)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, 1, res.ReportCount)

	res, err = h.Remove(ctx, cmd)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, 0, res.ReportCount)

	assert.Equal(t, []shared.EventType{shared.EventReportAdded, shared.EventReportRemoved}, f.pub.types())
}

func TestRosterHandler_SaveFailureKeepsRoster(t *testing.T) {
	ctx := context.Background()
	f, repo := newFlakyFixture()
	a := employee.New("A", "One", 1)
	b := employee.New("B", "Two", 1)
	c := employee.New("C", "Three", 1)
	d := employee.New("D", "Four", 1)
	mgr := employee.NewManager("M", "Gr", 1, a, b, c)
	require.NoError(t, f.repo.Save(ctx, mgr))
	require.NoError(t, f.repo.Save(ctx, d))
	h := NewRosterHandler(f.deps)
	repo.err = errDiskFull

	_, err := h.Remove(ctx, RosterCommand{ManagerID: mgr.ID(), ReportID: b.ID()})
	require.ErrorIs(t, err, errDiskFull)
	_, err = h.Add(ctx, RosterCommand{ManagerID: mgr.ID(), ReportID: d.ID()})
	require.ErrorIs(t, err, errDiskFull)

	assert.Equal(t, []string{"A One", "B Two", "C Three"}, slices.Collect(mgr.ListManaged()))
	assert.Empty(t, f.pub.types())
}

func TestRosterHandler_NotManager(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	e := employee.New("A", "B", 1)
	require.NoError(t, f.repo.Save(ctx, e))

	_, err := NewRosterHandler(f.deps).Add(ctx, RosterCommand{ManagerID: e.ID(), ReportID: e.ID()})
	assert.ErrorIs(t, err, employee.ErrNotManager)
}

func TestHandlers_NilPublisher(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStaffRepository()

	res, err := NewHireHandler(Deps{Repo: repo}).Handle(ctx, HireCommand{Kind: employee.KindEmployee, First: "A", Last: "B", Pay: 1})
	require.NoError(t, err)

	_, err = NewRenameHandler(Deps{Repo: repo}).HandleClear(ctx, ClearNameCommand{StaffID: res.Staff.ID()})
	assert.NoError(t, err)
}
