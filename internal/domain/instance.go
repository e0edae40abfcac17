package domain

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusOverdue   Status = "overdue"
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
	StatusCleared   Status = "cleared"
)

// Terminal reports whether the status is final: terminal instances are
// never touched by time-driven advancement.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusSkipped || s == StatusCleared
}

// TaskInstance is one dated occurrence generated from a recurring task.
// Name, category and assignee are copied at generation time and never
// re-resolved, so instance history survives later edits to the template.
type TaskInstance struct {
	ID              string
	RecurringTaskID string
	Name            string
	Category        Category
	AssignedTo      string
	LocalDate       string // YYYY-MM-DD in the household timezone
	DueAt           time.Time
	OverdueAt       time.Time
	ClearAt         time.Time
	Status          Status
	CompletedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// StatusAt returns the time-driven status an uncompleted instance holds
// at the given moment. Undo relies on this instead of a snapshot of the
// pre-completion status: an instance completed at 9am and undone past its
// overdue threshold comes back as overdue, not pending.
func (t *TaskInstance) StatusAt(now time.Time) Status {
	return StatusAt(now, t.OverdueAt, t.ClearAt)
}

func StatusAt(now, overdueAt, clearAt time.Time) Status {
	switch {
	case !now.Before(clearAt):
		return StatusCleared
	case !now.Before(overdueAt):
		return StatusOverdue
	default:
		return StatusPending
	}
}
