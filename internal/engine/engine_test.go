package engine

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/housedutyapp/houseduty/internal/domain"
	"github.com/housedutyapp/houseduty/internal/storage"
	"github.com/housedutyapp/houseduty/internal/tzconv"
)

func newTestStore(t *testing.T) *storage.Storage {
	t.Helper()
	store, err := storage.New(filepath.Join(t.TempDir(), "houseduty.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestConverter(t *testing.T) *tzconv.Converter {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return tzconv.New(loc)
}

func seedMember(t *testing.T, store *storage.Storage) string {
	t.Helper()
	m := &domain.Member{ID: uuid.NewString(), Name: "Alice", Role: "adult"}
	require.NoError(t, store.CreateMember(m))
	return m.ID
}

func seedDefinition(t *testing.T, store *storage.Storage, memberID string, freq domain.Frequency, due string, delay domain.OverdueDelay) *domain.RecurringTask {
	t.Helper()
	def := &domain.RecurringTask{
		ID:           uuid.NewString(),
		Name:         "chore " + due,
		Category:     domain.CategoryOther,
		AssignedTo:   memberID,
		Frequency:    freq,
		Due:          due,
		OverdueAfter: delay,
		Active:       true,
	}
	require.NoError(t, store.CreateRecurringTask(def))
	return def
}

// seedInstance writes an instance with handcrafted instants, bypassing
// the generator, for lifecycle tests.
func seedInstance(t *testing.T, store *storage.Storage, status domain.Status, dueAt, overdueAt, clearAt time.Time) *domain.TaskInstance {
	t.Helper()
	inst := &domain.TaskInstance{
		ID:              uuid.NewString(),
		RecurringTaskID: uuid.NewString(),
		Name:            "seeded",
		Category:        domain.CategoryOther,
		AssignedTo:      uuid.NewString(),
		LocalDate:       dueAt.UTC().Format("2006-01-02"),
		DueAt:           dueAt,
		OverdueAt:       overdueAt,
		ClearAt:         clearAt,
		Status:          status,
	}
	created, err := store.CreateInstance(inst)
	require.NoError(t, err)
	require.True(t, created)
	return inst
}
