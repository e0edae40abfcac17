package engine

import (
	"fmt"
	"time"

	"github.com/housedutyapp/houseduty/internal/storage"
)

// Advancer moves uncompleted instances along the time-driven lifecycle:
//
//	pending --(now >= overdue_at)--> overdue
//	overdue --(now >= clear_at)  --> cleared
//
// Completed and skipped instances are never touched. Comparisons use the
// stored UTC instants, so the advancer is indifferent to DST and to how
// often it runs; a repeat call with the same now is a no-op.
type Advancer struct {
	store *storage.Storage
}

func NewAdvancer(store *storage.Storage) *Advancer {
	return &Advancer{store: store}
}

// Advance applies both transitions and returns the number of instances
// moved. Overdue marking runs first so a pending instance already past
// its clear instant passes through both states in a single call.
func (a *Advancer) Advance(now time.Time) (int, error) {
	overdue, err := a.store.MarkOverdueDue(now)
	if err != nil {
		return 0, fmt.Errorf("advance to overdue: %w", err)
	}

	cleared, err := a.store.MarkClearedDue(now)
	if err != nil {
		return overdue, fmt.Errorf("advance to cleared: %w", err)
	}

	return overdue + cleared, nil
}
