package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/housedutyapp/houseduty/internal/domain"

	_ "github.com/mattn/go-sqlite3"
)

type Storage struct {
	db *sql.DB
}

func New(dbPath string) (*Storage, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS family_members (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'adult',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS recurring_tasks (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'other',
			assigned_to TEXT NOT NULL,
			frequency TEXT NOT NULL,
			due TEXT NOT NULL,
			overdue_after TEXT NOT NULL DEFAULT 'immediate',
			active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (assigned_to) REFERENCES family_members(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recurring_tasks_active ON recurring_tasks(active)`,
		`CREATE TABLE IF NOT EXISTS daily_tasks (
			id TEXT PRIMARY KEY,
			recurring_task_id TEXT NOT NULL,
			name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'other',
			assigned_to TEXT NOT NULL,
			local_date TEXT NOT NULL,
			due_at DATETIME NOT NULL,
			overdue_at DATETIME NOT NULL,
			clear_at DATETIME NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			completed_at DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_daily_tasks_source_date ON daily_tasks(recurring_task_id, local_date)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_tasks_status ON daily_tasks(status)`,
		`CREATE INDEX IF NOT EXISTS idx_daily_tasks_local_date ON daily_tasks(local_date)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			// ALTER TABLE migrations may already be applied
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// storeErr tags a driver failure so callers can match
// domain.ErrStoreUnavailable with errors.Is.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, domain.ErrStoreUnavailable)
}

// --- Family members ---

func (s *Storage) CreateMember(m *domain.Member) error {
	_, err := s.db.Exec(
		`INSERT INTO family_members (id, name, role) VALUES (?, ?, ?)`,
		m.ID, m.Name, m.Role,
	)
	if err != nil {
		return storeErr("create member", err)
	}
	return nil
}

func (s *Storage) GetMember(id string) (*domain.Member, error) {
	m := &domain.Member{}
	err := s.db.QueryRow(
		`SELECT id, name, role, created_at FROM family_members WHERE id = ?`,
		id,
	).Scan(&m.ID, &m.Name, &m.Role, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get member", err)
	}
	return m, nil
}

func (s *Storage) ListMembers() ([]*domain.Member, error) {
	rows, err := s.db.Query(`SELECT id, name, role, created_at FROM family_members ORDER BY name`)
	if err != nil {
		return nil, storeErr("list members", err)
	}
	defer rows.Close()

	var members []*domain.Member
	for rows.Next() {
		m := &domain.Member{}
		if err := rows.Scan(&m.ID, &m.Name, &m.Role, &m.CreatedAt); err != nil {
			return nil, storeErr("scan member", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// --- Recurring task definitions ---

func (s *Storage) CreateRecurringTask(t *domain.RecurringTask) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO recurring_tasks (id, name, category, assigned_to, frequency, due, overdue_after, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Category, t.AssignedTo, t.Frequency, t.Due, t.OverdueAfter, t.Active, now, now,
	)
	if err != nil {
		return storeErr("create recurring task", err)
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

func (s *Storage) GetRecurringTask(id string) (*domain.RecurringTask, error) {
	t := &domain.RecurringTask{}
	err := s.db.QueryRow(
		`SELECT id, name, category, assigned_to, frequency, due, overdue_after, active, created_at, updated_at
		 FROM recurring_tasks WHERE id = ?`,
		id,
	).Scan(&t.ID, &t.Name, &t.Category, &t.AssignedTo, &t.Frequency, &t.Due, &t.OverdueAfter, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get recurring task", err)
	}
	return t, nil
}

func (s *Storage) UpdateRecurringTask(t *domain.RecurringTask) error {
	_, err := s.db.Exec(
		`UPDATE recurring_tasks SET name = ?, category = ?, assigned_to = ?, frequency = ?, due = ?, overdue_after = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		t.Name, t.Category, t.AssignedTo, t.Frequency, t.Due, t.OverdueAfter, t.Active, time.Now().UTC(), t.ID,
	)
	if err != nil {
		return storeErr("update recurring task", err)
	}
	return nil
}

func (s *Storage) SetRecurringTaskActive(id string, active bool) error {
	_, err := s.db.Exec(
		`UPDATE recurring_tasks SET active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now().UTC(), id,
	)
	if err != nil {
		return storeErr("set recurring task active", err)
	}
	return nil
}

func (s *Storage) ListRecurringTasks(onlyActive bool) ([]*domain.RecurringTask, error) {
	query := `SELECT id, name, category, assigned_to, frequency, due, overdue_after, active, created_at, updated_at
		FROM recurring_tasks`
	if onlyActive {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, storeErr("list recurring tasks", err)
	}
	defer rows.Close()

	var tasks []*domain.RecurringTask
	for rows.Next() {
		t := &domain.RecurringTask{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Category, &t.AssignedTo, &t.Frequency, &t.Due, &t.OverdueAfter, &t.Active, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, storeErr("scan recurring task", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// --- Daily task instances ---

const instanceColumns = `id, recurring_task_id, name, category, assigned_to, local_date, due_at, overdue_at, clear_at, status, completed_at, created_at, updated_at`

func scanInstance(row interface{ Scan(...any) error }) (*domain.TaskInstance, error) {
	t := &domain.TaskInstance{}
	err := row.Scan(&t.ID, &t.RecurringTaskID, &t.Name, &t.Category, &t.AssignedTo, &t.LocalDate,
		&t.DueAt, &t.OverdueAt, &t.ClearAt, &t.Status, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// CreateInstance inserts a task instance. The unique index on
// (recurring_task_id, local_date) makes generation idempotent: a re-run
// for the same day reports created=false instead of duplicating.
func (s *Storage) CreateInstance(t *domain.TaskInstance) (created bool, err error) {
	now := time.Now().UTC()
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO daily_tasks (id, recurring_task_id, name, category, assigned_to, local_date, due_at, overdue_at, clear_at, status, completed_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?)`,
		t.ID, t.RecurringTaskID, t.Name, t.Category, t.AssignedTo, t.LocalDate,
		t.DueAt.UTC(), t.OverdueAt.UTC(), t.ClearAt.UTC(), t.Status, now, now,
	)
	if err != nil {
		return false, storeErr("create instance", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("create instance", err)
	}
	if n > 0 {
		t.CreatedAt = now
		t.UpdatedAt = now
	}
	return n > 0, nil
}

func (s *Storage) GetInstance(id string) (*domain.TaskInstance, error) {
	t, err := scanInstance(s.db.QueryRow(
		`SELECT `+instanceColumns+` FROM daily_tasks WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get instance", err)
	}
	return t, nil
}

func (s *Storage) GetInstanceByKey(recurringTaskID, localDate string) (*domain.TaskInstance, error) {
	t, err := scanInstance(s.db.QueryRow(
		`SELECT `+instanceColumns+` FROM daily_tasks WHERE recurring_task_id = ? AND local_date = ?`,
		recurringTaskID, localDate,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr("get instance by key", err)
	}
	return t, nil
}

func (s *Storage) ListInstancesByDate(localDate string) ([]*domain.TaskInstance, error) {
	return s.listInstances(
		`SELECT `+instanceColumns+` FROM daily_tasks WHERE local_date = ? ORDER BY due_at, name`,
		localDate,
	)
}

func (s *Storage) ListInstancesBetween(fromDate, toDate string) ([]*domain.TaskInstance, error) {
	return s.listInstances(
		`SELECT `+instanceColumns+` FROM daily_tasks WHERE local_date >= ? AND local_date <= ? ORDER BY local_date, due_at, name`,
		fromDate, toDate,
	)
}

func (s *Storage) listInstances(query string, args ...any) ([]*domain.TaskInstance, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, storeErr("list instances", err)
	}
	defer rows.Close()

	var instances []*domain.TaskInstance
	for rows.Next() {
		t, err := scanInstance(rows)
		if err != nil {
			return nil, storeErr("scan instance", err)
		}
		instances = append(instances, t)
	}
	return instances, rows.Err()
}

// MarkOverdueDue moves every pending instance whose overdue instant has
// passed to overdue, in one conditional update. The status precondition
// keeps the write race-safe against user completions.
func (s *Storage) MarkOverdueDue(now time.Time) (int, error) {
	res, err := s.db.Exec(
		`UPDATE daily_tasks SET status = ?, updated_at = ? WHERE status = ? AND overdue_at <= ?`,
		domain.StatusOverdue, now.UTC(), domain.StatusPending, now.UTC(),
	)
	if err != nil {
		return 0, storeErr("mark overdue", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr("mark overdue", err)
	}
	return int(n), nil
}

// MarkClearedDue moves every overdue instance whose clear instant has
// passed to cleared.
func (s *Storage) MarkClearedDue(now time.Time) (int, error) {
	res, err := s.db.Exec(
		`UPDATE daily_tasks SET status = ?, updated_at = ? WHERE status = ? AND clear_at <= ?`,
		domain.StatusCleared, now.UTC(), domain.StatusOverdue, now.UTC(),
	)
	if err != nil {
		return 0, storeErr("mark cleared", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr("mark cleared", err)
	}
	return int(n), nil
}

// SwapInstanceStatus updates one instance's status and completion stamp
// only if its current status is one of from. Returns false when the
// precondition no longer holds (a concurrent writer got there first).
func (s *Storage) SwapInstanceStatus(id string, from []domain.Status, to domain.Status, completedAt *time.Time) (bool, error) {
	placeholders := strings.Repeat("?,", len(from))
	placeholders = placeholders[:len(placeholders)-1]

	args := []any{to, completedAt, time.Now().UTC(), id}
	for _, f := range from {
		args = append(args, f)
	}

	res, err := s.db.Exec(
		`UPDATE daily_tasks SET status = ?, completed_at = ?, updated_at = ? WHERE id = ? AND status IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return false, storeErr("swap instance status", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("swap instance status", err)
	}
	return n > 0, nil
}

// CompletionStats counts completed vs countable instances for one local
// date. Skipped instances are excluded from the denominator: an explicit
// skip carries no completion-rate penalty.
func (s *Storage) CompletionStats(localDate string) (completed, countable int, err error) {
	err = s.db.QueryRow(
		`SELECT
			COUNT(CASE WHEN status = ? THEN 1 END),
			COUNT(CASE WHEN status != ? THEN 1 END)
		 FROM daily_tasks WHERE local_date = ?`,
		domain.StatusCompleted, domain.StatusSkipped, localDate,
	).Scan(&completed, &countable)
	if err != nil {
		return 0, 0, storeErr("completion stats", err)
	}
	return completed, countable, nil
}
