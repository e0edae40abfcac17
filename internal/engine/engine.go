// Package engine turns recurring task definitions into dated, timezone-
// correct task instances and owns their lifecycle. Statuses persist in
// the store; pending → overdue → cleared is driven purely by stored UTC
// instants, completed and skipped only by user action.
package engine

import (
	"time"

	"github.com/housedutyapp/houseduty/config"
	"github.com/housedutyapp/houseduty/internal/clock"
	"github.com/housedutyapp/houseduty/internal/domain"
	"github.com/housedutyapp/houseduty/internal/storage"
	"github.com/housedutyapp/houseduty/internal/tzconv"
)

type Engine struct {
	generator *Generator
	advancer  *Advancer
	ledger    *Ledger
	store     *storage.Storage
	conv      *tzconv.Converter
}

func New(store *storage.Storage, conv *tzconv.Converter, slots config.Slots, clk clock.Clock) *Engine {
	return &Engine{
		generator: NewGenerator(store, conv, slots),
		advancer:  NewAdvancer(store),
		ledger:    NewLedger(store, clk),
		store:     store,
		conv:      conv,
	}
}

func (e *Engine) GenerateForDate(date string) ([]*domain.TaskInstance, error) {
	return e.generator.GenerateForDate(date)
}

func (e *Engine) Advance(now time.Time) (int, error) {
	return e.advancer.Advance(now)
}

func (e *Engine) Complete(id string) (*domain.TaskInstance, error) {
	return e.ledger.Complete(id)
}

func (e *Engine) Undo(id string) (*domain.TaskInstance, error) {
	return e.ledger.Undo(id)
}

func (e *Engine) Skip(id string) (*domain.TaskInstance, error) {
	return e.ledger.Skip(id)
}

func (e *Engine) ListForDate(date string) ([]*domain.TaskInstance, error) {
	if _, err := e.conv.ParseLocalDate(date); err != nil {
		return nil, err
	}
	return e.store.ListInstancesByDate(date)
}

// CompletionStats summarizes one day. Skipped instances count toward
// neither side.
type CompletionStats struct {
	Completed int
	Countable int
}

func (e *Engine) CompletionStats(date string) (CompletionStats, error) {
	if _, err := e.conv.ParseLocalDate(date); err != nil {
		return CompletionStats{}, err
	}
	completed, countable, err := e.store.CompletionStats(date)
	if err != nil {
		return CompletionStats{}, err
	}
	return CompletionStats{Completed: completed, Countable: countable}, nil
}
