package tamildate

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/iwvelando/temple-portal/pkg/constants"
	"github.com/iwvelando/temple-portal/pkg/datetime"
)

var (
	// ErrInvalidDate reports input that is not a calendar date.
	ErrInvalidDate = errors.New("invalid date")

	// ErrNoTransition reports that no month began on or before the date.
	// It means the calendar is misconfigured, not that the input is bad.
	ErrNoTransition = errors.New("no tamil month transition on or before date")
)

// Transition is the concrete Gregorian date on which a Tamil month begins.
type Transition struct {
	Month      string
	Start      time.Time
	Overridden bool
}

// Result is a Tamil month and 1-based day within it.
type Result struct {
	Month string
	Day   int
	// Start is the Gregorian date on which Month began.
	Start      time.Time
	Overridden bool
	// Suspect is set when Day runs past the longest possible Tamil month,
	// which happens only when a transition is missing or mis-calibrated. Day
	// is never clamped.
	Suspect bool
}

// String renders the result as "<month> <day>", the form stored alongside
// pooja schedules.
func (r Result) String() string {
	return fmt.Sprintf("%s %d", r.Month, r.Day)
}

// Resolve returns the Tamil month and day for the calendar date of date.
// Time of day is ignored. The zero time is rejected with ErrInvalidDate.
func (c *Calendar) Resolve(date time.Time) (Result, error) {
	if date.IsZero() {
		return Result{}, ErrInvalidDate
	}
	day := datetime.Civil(date)

	var best *Transition
	candidates := c.candidates(day.Year())
	for i := range candidates {
		t := &candidates[i]
		if t.Start.After(day) {
			continue
		}
		if best == nil || t.Start.After(best.Start) {
			best = t
		}
	}
	if best == nil {
		return Result{}, fmt.Errorf("%w: %s", ErrNoTransition, datetime.FormatDate(day))
	}

	n := datetime.DaysBetween(best.Start, day) + 1
	return Result{
		Month:      best.Month,
		Day:        n,
		Start:      best.Start,
		Overridden: best.Overridden,
		Suspect:    n > constants.MaxTamilMonthLength,
	}, nil
}

// ResolveString parses value as a YYYY-MM-DD date and resolves it. Values that
// do not parse yield ErrInvalidDate.
func (c *Calendar) ResolveString(value string) (Result, error) {
	date, err := datetime.ParseDate(value)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return c.Resolve(date)
}

// Transitions returns the twelve month starts that fall in the Gregorian year,
// in chronological order.
func (c *Calendar) Transitions(year int) []Transition {
	out := make([]Transition, 0, len(c.months))
	for i := range c.months {
		out = append(out, c.transition(year, i))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// candidates returns the transitions of year plus the start of the month
// that began in December of the previous year, which covers early January.
func (c *Calendar) candidates(year int) []Transition {
	out := make([]Transition, 0, len(c.months)+1)
	for i := range c.months {
		out = append(out, c.transition(year, i))
	}
	if c.finalIndex >= 0 {
		out = append(out, c.transition(year-1, c.finalIndex))
	}
	return out
}

func (c *Calendar) transition(year, idx int) Transition {
	def := c.months[idx]
	day, overridden := c.startDay(year, idx)
	return Transition{
		Month:      def.Name,
		Start:      time.Date(year, def.StartMonth, day, 0, 0, 0, 0, time.UTC),
		Overridden: overridden,
	}
}
