package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/staffbook/staffbook/internal/domain/employee"
)

// ══════════════════════════════════════════════════════════════════════════════
// STAFF REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// StaffRepository implements employee.Repository for PostgreSQL.
//
// Loaded staff are kept in an identity map, so two Gets of the same ID
// return the same object and a manager's roster points at the very
// objects Get hands out.
type StaffRepository struct {
	conn *Connection

	mu     sync.Mutex
	loaded map[string]employee.Staff
}

var _ employee.Repository = (*StaffRepository)(nil)

// NewStaffRepository creates a new StaffRepository.
func NewStaffRepository(conn *Connection) *StaffRepository {
	return &StaffRepository{
		conn:   conn,
		loaded: make(map[string]employee.Staff),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Writes
// ─────────────────────────────────────────────────────────────────────────────

const upsertStaffSQL = `
	INSERT INTO staff (id, kind, first_name, last_name, pay, programming_language)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		kind = EXCLUDED.kind,
		first_name = EXCLUDED.first_name,
		last_name = EXCLUDED.last_name,
		pay = EXCLUDED.pay,
		programming_language = EXCLUDED.programming_language,
		updated_at = NOW()
`

// Save upserts s in one transaction. A manager's reports are saved first
// and its roster rows are rewritten in order.
func (r *StaffRepository) Save(ctx context.Context, s employee.Staff) error {
	if s == nil {
		return employee.ErrUnknownKind
	}

	var saved []employee.Staff
	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		saved = saved[:0]
		return r.saveTx(ctx, tx, s, make(map[string]bool), &saved)
	})
	if err != nil {
		return fmt.Errorf("postgres: save staff %s: %w", s.ID(), err)
	}

	r.mu.Lock()
	for _, st := range saved {
		r.loaded[st.ID()] = st
	}
	r.mu.Unlock()
	return nil
}

func (r *StaffRepository) saveTx(ctx context.Context, tx pgx.Tx, s employee.Staff, seen map[string]bool, saved *[]employee.Staff) error {
	if seen[s.ID()] {
		return nil
	}
	seen[s.ID()] = true

	r.mu.Lock()
	s = employee.Fuller(r.loaded[s.ID()], s)
	r.mu.Unlock()

	snap := employee.TakeSnapshot(s)
	if _, err := tx.Exec(ctx, upsertStaffSQL, rowArgs(snap)...); err != nil {
		return err
	}
	*saved = append(*saved, s)

	m, ok := s.(*employee.Manager)
	if !ok {
		return nil
	}

	reports := m.Managed()
	for _, report := range reports {
		if err := r.saveTx(ctx, tx, report, seen, saved); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM staff_reports WHERE manager_id = $1`, m.ID()); err != nil {
		return err
	}
	for i, report := range reports {
		if _, err := tx.Exec(ctx,
			`INSERT INTO staff_reports (manager_id, report_id, position) VALUES ($1, $2, $3)`,
			m.ID(), report.ID(), i,
		); err != nil {
			return err
		}
	}
	return nil
}

// rowArgs maps a snapshot onto upsertStaffSQL parameters.
// Cleared names and a missing language are stored as NULL.
func rowArgs(snap employee.Snapshot) []interface{} {
	var language *string
	if snap.Kind == employee.KindDeveloper {
		language = &snap.Language
	}
	return []interface{}{
		snap.ID,
		string(snap.Kind),
		snap.First,
		snap.Last,
		int64(snap.Pay),
		language,
	}
}

// Delete removes id. Roster rows go with it via ON DELETE CASCADE, and
// loaded managers drop it from their rosters.
func (r *StaffRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.conn.Exec(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete staff %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrStaffNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	gone, ok := r.loaded[id]
	delete(r.loaded, id)
	if ok {
		for _, s := range r.loaded {
			if m, isManager := s.(*employee.Manager); isManager {
				m.RemoveManaged(gone)
			}
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────────────────────

const selectStaffSQL = `
	SELECT id, kind, first_name, last_name, pay, programming_language
	FROM staff
	WHERE id = $1
`

// Get returns the staff member, loading it and its roster on first use.
func (r *StaffRepository) Get(ctx context.Context, id string) (employee.Staff, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.getLocked(ctx, id)
}

func (r *StaffRepository) getLocked(ctx context.Context, id string) (employee.Staff, error) {
	if s, ok := r.loaded[id]; ok {
		return s, nil
	}

	snap, err := scanSnapshot(r.conn.QueryRow(ctx, selectStaffSQL, id))
	if err != nil {
		if IsNoRows(err) {
			return nil, employee.ErrStaffNotFound
		}
		return nil, fmt.Errorf("postgres: get staff %s: %w", id, err)
	}

	s, err := employee.Restore(snap)
	if err != nil {
		return nil, err
	}
	// Registered before the roster is resolved so cycles terminate.
	r.loaded[id] = s

	m, ok := s.(*employee.Manager)
	if !ok {
		return s, nil
	}

	reportIDs, err := r.reportIDs(ctx, id)
	if err != nil {
		delete(r.loaded, id)
		return nil, err
	}
	for _, rid := range reportIDs {
		report, err := r.getLocked(ctx, rid)
		if err != nil {
			delete(r.loaded, id)
			return nil, fmt.Errorf("postgres: load report %s of %s: %w", rid, id, err)
		}
		m.AddManaged(report)
	}
	return s, nil
}

func (r *StaffRepository) reportIDs(ctx context.Context, managerID string) ([]string, error) {
	rows, err := r.conn.Query(ctx,
		`SELECT report_id FROM staff_reports WHERE manager_id = $1 ORDER BY position`,
		managerID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: query roster of %s: %w", managerID, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("postgres: scan roster of %s: %w", managerID, err)
	}
	return ids, nil
}

// List returns every staff member in first-saved order.
func (r *StaffRepository) List(ctx context.Context) ([]employee.Staff, error) {
	rows, err := r.conn.Query(ctx, `SELECT id FROM staff ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list staff: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("postgres: list staff: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]employee.Staff, 0, len(ids))
	for _, id := range ids {
		s, err := r.getLocked(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func scanSnapshot(row pgx.Row) (employee.Snapshot, error) {
	var (
		snap     employee.Snapshot
		kind     string
		pay      int64
		language *string
	)
	if err := row.Scan(&snap.ID, &kind, &snap.First, &snap.Last, &pay, &language); err != nil {
		return employee.Snapshot{}, err
	}
	snap.Kind = employee.Kind(kind)
	snap.Pay = int(pay)
	if language != nil {
		snap.Language = *language
	}
	return snap, nil
}
