package calendar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/teambition/rrule-go"

	"github.com/housedutyapp/houseduty/internal/domain"
)

var rruleWeekdays = map[string]rrule.Weekday{
	"sunday":    rrule.SU,
	"monday":    rrule.MO,
	"tuesday":   rrule.TU,
	"wednesday": rrule.WE,
	"thursday":  rrule.TH,
	"friday":    rrule.FR,
	"saturday":  rrule.SA,
}

func rruleWeekday(due string) (rrule.Weekday, error) {
	wd, ok := rruleWeekdays[strings.ToLower(strings.TrimSpace(due))]
	if !ok {
		return rrule.Weekday{}, fmt.Errorf("%q is not a weekday", due)
	}
	return wd, nil
}

func monthDay(due string) (int, error) {
	day, err := strconv.Atoi(strings.TrimSpace(due))
	if err != nil || day < 1 || day > 31 {
		return 0, fmt.Errorf("%q is not a day of month", due)
	}
	return day, nil
}

func eventStatus(s domain.Status) string {
	switch s {
	case domain.StatusCompleted:
		return "CONFIRMED"
	case domain.StatusSkipped, domain.StatusCleared:
		return "CANCELLED"
	default:
		return "TENTATIVE"
	}
}
