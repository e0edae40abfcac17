package engine

import (
	"fmt"

	"github.com/housedutyapp/houseduty/internal/clock"
	"github.com/housedutyapp/houseduty/internal/domain"
	"github.com/housedutyapp/houseduty/internal/storage"
)

// Ledger applies user-driven transitions: complete, undo, skip. Every
// write carries a status precondition, so a race with the advancer or
// another caller surfaces as domain.ErrIllegalTransition instead of a
// blind overwrite.
type Ledger struct {
	store *storage.Storage
	clk   clock.Clock
}

func NewLedger(store *storage.Storage, clk clock.Clock) *Ledger {
	return &Ledger{store: store, clk: clk}
}

// Complete marks a pending or overdue instance completed. Completing an
// already-completed instance is an idempotent success; cleared and
// skipped instances are terminal.
func (l *Ledger) Complete(id string) (*domain.TaskInstance, error) {
	inst, err := l.get(id)
	if err != nil {
		return nil, err
	}

	switch inst.Status {
	case domain.StatusCompleted:
		return inst, nil
	case domain.StatusSkipped, domain.StatusCleared:
		return nil, fmt.Errorf("complete %s (%s): %w", id, inst.Status, domain.ErrAlreadyTerminal)
	}

	now := l.clk.Now()
	ok, err := l.store.SwapInstanceStatus(id,
		[]domain.Status{domain.StatusPending, domain.StatusOverdue},
		domain.StatusCompleted, &now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return l.resolveRace(id)
	}
	return l.get(id)
}

// Undo reverts a completed instance to the status it would hold had the
// completion never happened, recomputed from the current time against the
// stored overdue/clear instants. Restoring a snapshot instead would go
// wrong across a transition boundary.
func (l *Ledger) Undo(id string) (*domain.TaskInstance, error) {
	inst, err := l.get(id)
	if err != nil {
		return nil, err
	}
	if inst.Status != domain.StatusCompleted {
		return nil, fmt.Errorf("undo %s (%s): %w", id, inst.Status, domain.ErrNotCompleted)
	}

	reverted := inst.StatusAt(l.clk.Now())
	ok, err := l.store.SwapInstanceStatus(id,
		[]domain.Status{domain.StatusCompleted}, reverted, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("undo %s: %w", id, domain.ErrIllegalTransition)
	}
	return l.get(id)
}

// Skip marks a pending or overdue instance as intentionally not done.
// Skipped instances are terminal and excluded from completion-rate
// accounting. Skipping twice is an idempotent success.
func (l *Ledger) Skip(id string) (*domain.TaskInstance, error) {
	inst, err := l.get(id)
	if err != nil {
		return nil, err
	}

	switch inst.Status {
	case domain.StatusSkipped:
		return inst, nil
	case domain.StatusCompleted, domain.StatusCleared:
		return nil, fmt.Errorf("skip %s (%s): %w", id, inst.Status, domain.ErrAlreadyTerminal)
	}

	ok, err := l.store.SwapInstanceStatus(id,
		[]domain.Status{domain.StatusPending, domain.StatusOverdue},
		domain.StatusSkipped, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("skip %s: %w", id, domain.ErrIllegalTransition)
	}
	return l.get(id)
}

func (l *Ledger) get(id string) (*domain.TaskInstance, error) {
	inst, err := l.store.GetInstance(id)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, fmt.Errorf("%s: %w", id, domain.ErrInstanceNotFound)
	}
	return inst, nil
}

// resolveRace re-reads after a failed compare-and-swap on Complete: a
// concurrent completion is still an idempotent success, anything else is
// reported as the benign transition error.
func (l *Ledger) resolveRace(id string) (*domain.TaskInstance, error) {
	inst, err := l.get(id)
	if err != nil {
		return nil, err
	}
	if inst.Status == domain.StatusCompleted {
		return inst, nil
	}
	return nil, fmt.Errorf("complete %s (%s): %w", id, inst.Status, domain.ErrIllegalTransition)
}
