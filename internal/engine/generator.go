package engine

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/housedutyapp/houseduty/config"
	"github.com/housedutyapp/houseduty/internal/domain"
	"github.com/housedutyapp/houseduty/internal/storage"
	"github.com/housedutyapp/houseduty/internal/tzconv"
)

type Generator struct {
	store *storage.Storage
	conv  *tzconv.Converter
	slots config.Slots
}

func NewGenerator(store *storage.Storage, conv *tzconv.Converter, slots config.Slots) *Generator {
	return &Generator{store: store, conv: conv, slots: slots}
}

// GenerateForDate creates one instance per eligible active definition for
// the given local date. Re-running for the same date is safe: existing
// (definition, date) instances are left alone, so a retry after partial
// failure fills only the gaps.
//
// A definition whose descriptor fails to resolve is reported in the
// returned error (joined across the run) but never blocks the others;
// a store failure aborts immediately.
func (g *Generator) GenerateForDate(dateStr string) ([]*domain.TaskInstance, error) {
	date, err := g.conv.ParseLocalDate(dateStr)
	if err != nil {
		return nil, err
	}

	defs, err := g.store.ListRecurringTasks(true)
	if err != nil {
		return nil, fmt.Errorf("list definitions: %w", err)
	}

	var generated []*domain.TaskInstance
	var defErrs []error
	for _, def := range defs {
		eligible, w, err := ResolveWindow(def, date, g.slots)
		if err != nil {
			log.Printf("Skipping malformed definition %s (%s/%q): %v", def.ID, def.Frequency, def.Due, err)
			defErrs = append(defErrs, fmt.Errorf("definition %s: %w", def.ID, err))
			continue
		}
		if !eligible {
			continue
		}

		inst := g.buildInstance(def, date, dateStr, w)
		created, err := g.store.CreateInstance(inst)
		if err != nil {
			return generated, fmt.Errorf("create instance for definition %s: %w", def.ID, err)
		}
		if !created {
			continue
		}
		generated = append(generated, inst)
	}

	log.Printf("Generated %d task instances for %s (%d definitions active)", len(generated), dateStr, len(defs))
	return generated, errors.Join(defErrs...)
}

func (g *Generator) buildInstance(def *domain.RecurringTask, date time.Time, dateStr string, w Window) *domain.TaskInstance {
	dueAt := g.conv.ToUTC(date, w.Hour, w.Minute)
	overdueAt := dueAt.Add(def.OverdueAfter.Duration())

	var clearAt time.Time
	switch def.Frequency {
	case domain.FrequencyWeekly:
		clearAt = overdueAt.Add(7 * 24 * time.Hour)
	case domain.FrequencyMonthly:
		clearAt = overdueAt.Add(30 * 24 * time.Hour)
	default:
		// A daily task stops being "today's task" at the next local
		// midnight; it is not carried forward.
		clearAt = g.conv.NextMidnight(date)
	}
	// A long grace on an evening daily task can push the overdue instant
	// past midnight; clearing never precedes it.
	if clearAt.Before(overdueAt) {
		clearAt = overdueAt
	}

	return &domain.TaskInstance{
		ID:              uuid.NewString(),
		RecurringTaskID: def.ID,
		Name:            def.Name,
		Category:        def.Category,
		AssignedTo:      def.AssignedTo,
		LocalDate:       dateStr,
		DueAt:           dueAt,
		OverdueAt:       overdueAt,
		ClearAt:         clearAt,
		Status:          domain.StatusPending,
	}
}
