package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/housedutyapp/houseduty/config"
	"github.com/housedutyapp/houseduty/internal/domain"
)

// Window is the local wall-clock time of day an instance comes due.
type Window struct {
	Hour   int
	Minute int
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ResolveWindow decides whether a recurring task is due on the given
// local date and, if so, at which wall-clock time.
//
// Daily tasks run every day at the slot named by the descriptor. Weekly
// tasks run only on the named weekday, monthly tasks only on the matching
// day of month; both default to the morning slot. A month without the
// configured day (e.g. the 31st in February) generates nothing for that
// month: there is no end-of-month rollover.
func ResolveWindow(t *domain.RecurringTask, date time.Time, slots config.Slots) (bool, Window, error) {
	due := strings.ToLower(strings.TrimSpace(t.Due))

	switch t.Frequency {
	case domain.FrequencyDaily:
		w, err := slotWindow(slots, due)
		if err != nil {
			return false, Window{}, err
		}
		return true, w, nil

	case domain.FrequencyWeekly:
		wd, ok := weekdays[due]
		if !ok {
			return false, Window{}, fmt.Errorf("%w: %q is not a weekday", domain.ErrUnresolvableDescriptor, t.Due)
		}
		if date.Weekday() != wd {
			return false, Window{}, nil
		}
		w, err := parseHHMM(slots.Morning)
		if err != nil {
			return false, Window{}, err
		}
		return true, w, nil

	case domain.FrequencyMonthly:
		day, err := strconv.Atoi(due)
		if err != nil || day < 1 || day > 31 {
			return false, Window{}, fmt.Errorf("%w: %q is not a day of month", domain.ErrUnresolvableDescriptor, t.Due)
		}
		if date.Day() != day {
			return false, Window{}, nil
		}
		w, err := parseHHMM(slots.Morning)
		if err != nil {
			return false, Window{}, err
		}
		return true, w, nil

	default:
		return false, Window{}, fmt.Errorf("%w: unknown frequency %q", domain.ErrUnresolvableDescriptor, t.Frequency)
	}
}

func slotWindow(slots config.Slots, due string) (Window, error) {
	switch due {
	case "morning":
		return parseHHMM(slots.Morning)
	case "afternoon":
		return parseHHMM(slots.Afternoon)
	case "evening":
		return parseHHMM(slots.Evening)
	default:
		return Window{}, fmt.Errorf("%w: %q is not a daily slot", domain.ErrUnresolvableDescriptor, due)
	}
}

func parseHHMM(s string) (Window, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return Window{}, fmt.Errorf("invalid slot time %q", s)
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return Window{}, fmt.Errorf("invalid slot time %q", s)
	}
	return Window{Hour: hour, Minute: minute}, nil
}
