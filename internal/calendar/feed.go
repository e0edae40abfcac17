// Package calendar renders the household schedule as an iCalendar
// document: one recurring event per active definition plus dated events
// for generated instances, so any calendar client can subscribe to the
// same truth the engine stores.
package calendar

import (
	"bytes"
	"fmt"
	"log"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/housedutyapp/houseduty/config"
	"github.com/housedutyapp/houseduty/internal/domain"
	"github.com/housedutyapp/houseduty/internal/engine"
	"github.com/housedutyapp/houseduty/internal/storage"
	"github.com/housedutyapp/houseduty/internal/tzconv"
)

const prodID = "-//houseduty//Schedule//EN"

// How far ahead to look for a recurring definition's first occurrence.
// 366 days covers every monthly descriptor including the 29th–31st.
const firstOccurrenceScanDays = 366

type Service struct {
	store *storage.Storage
	conv  *tzconv.Converter
	slots config.Slots
}

func New(store *storage.Storage, conv *tzconv.Converter, slots config.Slots) *Service {
	return &Service{store: store, conv: conv, slots: slots}
}

// Feed builds the ICS document for the inclusive local date range.
func (s *Service) Feed(fromDate, toDate string) (string, error) {
	from, err := s.conv.ParseLocalDate(fromDate)
	if err != nil {
		return "", err
	}
	to, err := s.conv.ParseLocalDate(toDate)
	if err != nil {
		return "", err
	}
	if to.Before(from) {
		return "", fmt.Errorf("%w: range %s..%s", domain.ErrInvalidDate, fromDate, toDate)
	}

	defs, err := s.store.ListRecurringTasks(true)
	if err != nil {
		return "", fmt.Errorf("list definitions: %w", err)
	}
	instances, err := s.store.ListInstancesBetween(fromDate, toDate)
	if err != nil {
		return "", fmt.Errorf("list instances: %w", err)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, prodID)

	now := time.Now().UTC()
	for _, def := range defs {
		event, err := s.definitionEvent(def, from, now)
		if err != nil {
			log.Printf("Skipping definition %s in calendar feed: %v", def.ID, err)
			continue
		}
		cal.Children = append(cal.Children, event.Component)
	}
	for _, inst := range instances {
		cal.Children = append(cal.Children, s.instanceEvent(inst, now).Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return "", fmt.Errorf("encode calendar: %w", err)
	}
	return buf.String(), nil
}

// definitionEvent renders a recurring definition as a repeating VEVENT
// anchored at its first occurrence on or after from.
func (s *Service) definitionEvent(def *domain.RecurringTask, from time.Time, now time.Time) (*ical.Event, error) {
	start, w, err := s.firstOccurrence(def, from)
	if err != nil {
		return nil, err
	}

	rule, err := recurrenceRule(def)
	if err != nil {
		return nil, err
	}

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, def.ID+"@houseduty")
	event.Props.SetText(ical.PropSummary, def.Name)
	event.Props.SetText(ical.PropDescription,
		fmt.Sprintf("category: %s\nassigned to: %s\noverdue after: %s", def.Category, def.AssignedTo, def.OverdueAfter))
	event.Props.SetDateTime(ical.PropDateTimeStart, s.conv.ToUTC(start, w.Hour, w.Minute))
	event.Props.SetText(ical.PropRecurrenceRule, rule)
	event.Props.SetDateTime(ical.PropDateTimeStamp, now)
	return event, nil
}

func (s *Service) instanceEvent(inst *domain.TaskInstance, now time.Time) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, inst.ID+"@houseduty")
	event.Props.SetText(ical.PropSummary, inst.Name)
	event.Props.SetText(ical.PropDescription,
		fmt.Sprintf("category: %s\nassigned to: %s\nstatus: %s", inst.Category, inst.AssignedTo, inst.Status))
	event.Props.SetDateTime(ical.PropDateTimeStart, inst.DueAt.UTC())
	event.Props.SetText(ical.PropStatus, eventStatus(inst.Status))
	event.Props.SetDateTime(ical.PropDateTimeStamp, now)
	return event
}

func (s *Service) firstOccurrence(def *domain.RecurringTask, from time.Time) (time.Time, engine.Window, error) {
	for i := 0; i < firstOccurrenceScanDays; i++ {
		date := from.AddDate(0, 0, i)
		eligible, w, err := engine.ResolveWindow(def, date, s.slots)
		if err != nil {
			return time.Time{}, engine.Window{}, err
		}
		if eligible {
			return date, w, nil
		}
	}
	return time.Time{}, engine.Window{}, fmt.Errorf("no occurrence within %d days", firstOccurrenceScanDays)
}

func recurrenceRule(def *domain.RecurringTask) (string, error) {
	opt := rrule.ROption{}
	switch def.Frequency {
	case domain.FrequencyDaily:
		opt.Freq = rrule.DAILY
	case domain.FrequencyWeekly:
		wd, err := rruleWeekday(def.Due)
		if err != nil {
			return "", err
		}
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = []rrule.Weekday{wd}
	case domain.FrequencyMonthly:
		day, err := monthDay(def.Due)
		if err != nil {
			return "", err
		}
		opt.Freq = rrule.MONTHLY
		opt.Bymonthday = []int{day}
	default:
		return "", fmt.Errorf("unknown frequency %q", def.Frequency)
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		return "", fmt.Errorf("build rrule: %w", err)
	}
	return r.String(), nil
}
