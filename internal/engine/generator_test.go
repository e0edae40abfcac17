package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/housedutyapp/houseduty/config"
	"github.com/housedutyapp/houseduty/internal/domain"
)

func TestGenerateForDateIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	member := seedMember(t, store)
	seedDefinition(t, store, member, domain.FrequencyDaily, "morning", domain.OverdueAfter1h)
	seedDefinition(t, store, member, domain.FrequencyDaily, "evening", domain.OverdueImmediate)
	gen := NewGenerator(store, newTestConverter(t), config.DefaultSlots())

	first, err := gen.GenerateForDate("2024-08-02")
	require.NoError(t, err)
	assert.Len(t, first, 2)

	second, err := gen.GenerateForDate("2024-08-02")
	require.NoError(t, err)
	assert.Empty(t, second, "re-run must not duplicate")

	all, err := store.ListInstancesByDate("2024-08-02")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGenerateForDateRetryFillsOnlyGaps(t *testing.T) {
	store := newTestStore(t)
	member := seedMember(t, store)
	seedDefinition(t, store, member, domain.FrequencyDaily, "morning", domain.OverdueAfter1h)
	gen := NewGenerator(store, newTestConverter(t), config.DefaultSlots())

	first, err := gen.GenerateForDate("2024-08-02")
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A definition added between runs only produces its own instance on
	// the re-run, as after a partial failure.
	seedDefinition(t, store, member, domain.FrequencyDaily, "evening", domain.OverdueImmediate)
	second, err := gen.GenerateForDate("2024-08-02")
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "chore evening", second[0].Name)
}

func TestGenerateForDateComputesInstants(t *testing.T) {
	store := newTestStore(t)
	member := seedMember(t, store)
	seedDefinition(t, store, member, domain.FrequencyDaily, "evening", domain.OverdueAfter1h)
	gen := NewGenerator(store, newTestConverter(t), config.DefaultSlots())

	// 2024-08-02 in New York is UTC-4: evening 19:00 local is 23:00Z,
	// +1h grace lands at midnight Z, cleared at the next local midnight.
	instances, err := gen.GenerateForDate("2024-08-02")
	require.NoError(t, err)
	require.Len(t, instances, 1)

	inst := instances[0]
	assert.True(t, inst.DueAt.Equal(time.Date(2024, 8, 2, 23, 0, 0, 0, time.UTC)), "due %v", inst.DueAt)
	assert.True(t, inst.OverdueAt.Equal(time.Date(2024, 8, 3, 0, 0, 0, 0, time.UTC)), "overdue %v", inst.OverdueAt)
	assert.True(t, inst.ClearAt.Equal(time.Date(2024, 8, 3, 4, 0, 0, 0, time.UTC)), "clear %v", inst.ClearAt)
	assert.Equal(t, domain.StatusPending, inst.Status)
	assert.Equal(t, "2024-08-02", inst.LocalDate)
}

func TestGenerateForDateInstantOrderingInvariant(t *testing.T) {
	store := newTestStore(t)
	member := seedMember(t, store)
	seedDefinition(t, store, member, domain.FrequencyDaily, "morning", domain.OverdueImmediate)
	seedDefinition(t, store, member, domain.FrequencyDaily, "evening", domain.OverdueAfter1d)
	seedDefinition(t, store, member, domain.FrequencyWeekly, "friday", domain.OverdueAfter6h)
	seedDefinition(t, store, member, domain.FrequencyMonthly, "2", domain.OverdueAfter7d)
	gen := NewGenerator(store, newTestConverter(t), config.DefaultSlots())

	// 2024-08-02 is a Friday and the 2nd, so all four generate.
	instances, err := gen.GenerateForDate("2024-08-02")
	require.NoError(t, err)
	require.Len(t, instances, 4)

	for _, inst := range instances {
		if inst.DueAt.After(inst.OverdueAt) || inst.OverdueAt.After(inst.ClearAt) {
			t.Fatalf("instant ordering violated for %s: due=%v overdue=%v clear=%v",
				inst.Name, inst.DueAt, inst.OverdueAt, inst.ClearAt)
		}
	}
}

func TestGenerateForDateWeeklyEligibility(t *testing.T) {
	store := newTestStore(t)
	member := seedMember(t, store)
	def := seedDefinition(t, store, member, domain.FrequencyWeekly, "sunday", domain.OverdueAfter1d)
	gen := NewGenerator(store, newTestConverter(t), config.DefaultSlots())

	// Friday: nothing.
	instances, err := gen.GenerateForDate("2024-08-02")
	require.NoError(t, err)
	assert.Empty(t, instances)

	// Sunday: one instance, cleared a week past the overdue instant.
	instances, err = gen.GenerateForDate("2024-08-04")
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, def.ID, instances[0].RecurringTaskID)
	assert.True(t, instances[0].ClearAt.Equal(instances[0].OverdueAt.Add(7*24*time.Hour)))
}

func TestGenerateForDateMonthlySkipsShortMonths(t *testing.T) {
	store := newTestStore(t)
	member := seedMember(t, store)
	seedDefinition(t, store, member, domain.FrequencyMonthly, "31", domain.OverdueAfter1d)
	gen := NewGenerator(store, newTestConverter(t), config.DefaultSlots())

	// February (leap year), April, June, September, November have no 31st.
	for _, date := range []string{"2024-02-29", "2024-04-30", "2024-06-30", "2024-09-30", "2024-11-30"} {
		instances, err := gen.GenerateForDate(date)
		require.NoError(t, err)
		assert.Empty(t, instances, "no instance expected on %s", date)
	}

	instances, err := gen.GenerateForDate("2024-07-31")
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.True(t, instances[0].ClearAt.Equal(instances[0].OverdueAt.Add(30*24*time.Hour)))
}

func TestGenerateForDateDSTMorningKeepsWallClock(t *testing.T) {
	store := newTestStore(t)
	member := seedMember(t, store)
	seedDefinition(t, store, member, domain.FrequencyDaily, "morning", domain.OverdueImmediate)
	gen := NewGenerator(store, newTestConverter(t), config.DefaultSlots())

	// Saturday before spring-forward: 09:00 EST = 14:00Z.
	before, err := gen.GenerateForDate("2024-03-09")
	require.NoError(t, err)
	require.Len(t, before, 1)
	assert.True(t, before[0].DueAt.Equal(time.Date(2024, 3, 9, 14, 0, 0, 0, time.UTC)))

	// Spring-forward day: still 09:00 on the wall, now 13:00Z.
	after, err := gen.GenerateForDate("2024-03-10")
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.True(t, after[0].DueAt.Equal(time.Date(2024, 3, 10, 13, 0, 0, 0, time.UTC)))
}

func TestGenerateForDateClampsClearAfterLongGrace(t *testing.T) {
	store := newTestStore(t)
	member := seedMember(t, store)
	seedDefinition(t, store, member, domain.FrequencyDaily, "evening", domain.OverdueAfter1d)
	gen := NewGenerator(store, newTestConverter(t), config.DefaultSlots())

	// Evening due with a 1-day grace pushes the overdue instant past the
	// next midnight; the clear instant must not precede it.
	instances, err := gen.GenerateForDate("2024-08-02")
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.False(t, instances[0].ClearAt.Before(instances[0].OverdueAt))
}

func TestGenerateForDateRejectsInvalidDate(t *testing.T) {
	store := newTestStore(t)
	gen := NewGenerator(store, newTestConverter(t), config.DefaultSlots())

	_, err := gen.GenerateForDate("02.08.2024")
	if !errors.Is(err, domain.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestGenerateForDateSurfacesMalformedDefinitions(t *testing.T) {
	store := newTestStore(t)
	member := seedMember(t, store)
	seedDefinition(t, store, member, domain.FrequencyDaily, "morning", domain.OverdueAfter1h)
	bad := seedDefinition(t, store, member, domain.FrequencyDaily, "noon", domain.OverdueAfter1h)
	gen := NewGenerator(store, newTestConverter(t), config.DefaultSlots())

	instances, err := gen.GenerateForDate("2024-08-02")
	if !errors.Is(err, domain.ErrUnresolvableDescriptor) {
		t.Fatalf("expected ErrUnresolvableDescriptor, got %v", err)
	}
	assert.Contains(t, err.Error(), bad.ID, "error names the offending definition")
	require.Len(t, instances, 1, "healthy definitions still generate")

	// Inactive definitions never generate.
	require.NoError(t, store.SetRecurringTaskActive(bad.ID, false))
	_, err = gen.GenerateForDate("2024-08-03")
	require.NoError(t, err)
}
