package domain

import (
	"fmt"
	"strings"
	"time"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(strings.ToLower(strings.TrimSpace(s))) {
	case FrequencyDaily:
		return FrequencyDaily, nil
	case FrequencyWeekly:
		return FrequencyWeekly, nil
	case FrequencyMonthly:
		return FrequencyMonthly, nil
	default:
		return "", fmt.Errorf("unknown frequency: %s", s)
	}
}

// OverdueDelay is the grace period between a task's due time and the
// moment it is considered overdue.
type OverdueDelay string

const (
	OverdueImmediate OverdueDelay = "immediate"
	OverdueAfter1h   OverdueDelay = "1h"
	OverdueAfter6h   OverdueDelay = "6h"
	OverdueAfter1d   OverdueDelay = "1d"
	OverdueAfter3d   OverdueDelay = "3d"
	OverdueAfter7d   OverdueDelay = "7d"
)

func ParseOverdueDelay(s string) (OverdueDelay, error) {
	switch OverdueDelay(strings.ToLower(strings.TrimSpace(s))) {
	case OverdueImmediate:
		return OverdueImmediate, nil
	case OverdueAfter1h:
		return OverdueAfter1h, nil
	case OverdueAfter6h:
		return OverdueAfter6h, nil
	case OverdueAfter1d:
		return OverdueAfter1d, nil
	case OverdueAfter3d:
		return OverdueAfter3d, nil
	case OverdueAfter7d:
		return OverdueAfter7d, nil
	default:
		return "", fmt.Errorf("unknown overdue delay: %s", s)
	}
}

func (d OverdueDelay) Duration() time.Duration {
	switch d {
	case OverdueAfter1h:
		return time.Hour
	case OverdueAfter6h:
		return 6 * time.Hour
	case OverdueAfter1d:
		return 24 * time.Hour
	case OverdueAfter3d:
		return 3 * 24 * time.Hour
	case OverdueAfter7d:
		return 7 * 24 * time.Hour
	default:
		return 0
	}
}

type Category string

const (
	CategoryMedication Category = "medication"
	CategoryFeeding    Category = "feeding"
	CategoryHealth     Category = "health"
	CategoryCleaning   Category = "cleaning"
	CategoryOther      Category = "other"
)

func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryMedication:
		return CategoryMedication, nil
	case CategoryFeeding:
		return CategoryFeeding, nil
	case CategoryHealth:
		return CategoryHealth, nil
	case CategoryCleaning:
		return CategoryCleaning, nil
	case CategoryOther, "":
		return CategoryOther, nil
	default:
		return "", fmt.Errorf("unknown category: %s", s)
	}
}

// RecurringTask is a template for a repeating household obligation.
// Definitions are owned by the household CRUD surface; the engine only
// reads them during generation.
type RecurringTask struct {
	ID           string
	Name         string
	Category     Category
	AssignedTo   string
	Frequency    Frequency
	Due          string // morning/afternoon/evening, weekday name, or day of month
	OverdueAfter OverdueDelay
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
