// Package tzconv converts between the household's civil timezone and UTC
// instants. All arithmetic goes through time.Date in the location, so DST
// transitions resolve to the intended wall-clock time instead of a fixed
// offset.
package tzconv

import (
	"fmt"
	"time"

	"github.com/housedutyapp/houseduty/internal/domain"
)

const dateLayout = "2006-01-02"

type Converter struct {
	loc *time.Location
}

func New(loc *time.Location) *Converter {
	return &Converter{loc: loc}
}

func (c *Converter) Location() *time.Location {
	return c.loc
}

// ParseLocalDate parses a strict YYYY-MM-DD date and returns local
// midnight of that day.
func (c *Converter) ParseLocalDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, s, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, s)
	}
	// Reject non-canonical forms ParseInLocation tolerates, e.g. a
	// normalized "2024-02-30".
	if d.Format(dateLayout) != s {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, s)
	}
	return d, nil
}

// ToUTC returns the UTC instant of the given local wall-clock time on the
// day of date.
func (c *Converter) ToUTC(date time.Time, hour, minute int) time.Time {
	local := date.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, c.loc).UTC()
}

// LocalDate formats the instant as a YYYY-MM-DD date in the household
// timezone.
func (c *Converter) LocalDate(t time.Time) string {
	return t.In(c.loc).Format(dateLayout)
}

// NextMidnight returns the UTC instant of the local midnight following
// the day of date.
func (c *Converter) NextMidnight(date time.Time) time.Time {
	local := date.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, c.loc).UTC()
}
