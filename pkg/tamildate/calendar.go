// Package tamildate derives the approximate Tamil calendar month and day for
// a Gregorian date.
//
// Tamil months begin when the sun enters the next zodiac sign. Those transits
// land on a Gregorian day that drifts by a day or two from year to year, so a
// Calendar combines a nominal table of long-run start dates with a sparse
// table of per-year overrides. It is a calibrated approximation, not an
// ephemeris.
package tamildate

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/iwvelando/temple-portal/pkg/constants"
	"github.com/iwvelando/temple-portal/pkg/datetime"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrInvalidTable reports a nominal month table that breaks the
	// twelve-distinct-months invariant.
	ErrInvalidTable = errors.New("invalid tamil month table")

	// ErrUnknownMonth reports an override keyed by a month the table does not have.
	ErrUnknownMonth = errors.New("unknown tamil month")

	// ErrInvalidOverride reports an override day that does not exist in its
	// Gregorian month, or two keys naming the same month in one year.
	ErrInvalidOverride = errors.New("invalid tamil month override")
)

// Overrides maps a Gregorian year to corrected start days keyed by Tamil
// month name. A missing entry means the nominal start day applies.
type Overrides map[int]map[string]int

// referenceYear is a common year; nominal start days must exist in it so
// they are valid in every year.
const referenceYear = 2023

// Calendar is an immutable pairing of a nominal month table and its year
// overrides. It is safe for concurrent use.
type Calendar struct {
	months []MonthDefinition
	// year -> index into months -> start day
	overrides map[int]map[int]int
	// index of the month that starts in December and runs into January
	finalIndex int
}

var defaultCalendar = mustCalendar(DefaultMonths, DefaultOverrides)

// Default returns the calendar built from DefaultMonths and DefaultOverrides.
func Default() *Calendar {
	return defaultCalendar
}

func mustCalendar(months []MonthDefinition, overrides Overrides) *Calendar {
	c, err := NewCalendar(months, overrides)
	if err != nil {
		panic(err)
	}
	return c
}

// NewCalendar validates months and overrides and returns a Calendar holding
// private copies of both. Override keys may be Tamil names or their Latin
// transliterations.
func NewCalendar(months []MonthDefinition, overrides Overrides) (*Calendar, error) {
	if len(months) != constants.MonthsPerYear {
		return nil, fmt.Errorf("%w: expected %d months, got %d", ErrInvalidTable, constants.MonthsPerYear, len(months))
	}

	c := &Calendar{
		months:     make([]MonthDefinition, len(months)),
		overrides:  make(map[int]map[int]int, len(overrides)),
		finalIndex: -1,
	}

	names := make(map[string]struct{}, len(months))
	startMonths := make(map[time.Month]string, len(months))
	for i, m := range months {
		name := norm.NFC.String(strings.TrimSpace(m.Name))
		if name == "" {
			return nil, fmt.Errorf("%w: month %d has no name", ErrInvalidTable, i+1)
		}
		if _, dup := names[name]; dup {
			return nil, fmt.Errorf("%w: duplicate month %s", ErrInvalidTable, name)
		}
		if other, dup := startMonths[m.StartMonth]; dup {
			return nil, fmt.Errorf("%w: %s and %s both start in %s", ErrInvalidTable, other, name, m.StartMonth)
		}
		if !datetime.ValidDay(referenceYear, m.StartMonth, m.StartDay) {
			return nil, fmt.Errorf("%w: %s starts on invalid day %d of month %d", ErrInvalidTable, name, m.StartDay, m.StartMonth)
		}
		names[name] = struct{}{}
		startMonths[m.StartMonth] = name
		c.months[i] = MonthDefinition{Name: name, StartDay: m.StartDay, StartMonth: m.StartMonth}
		if m.StartMonth == time.December {
			c.finalIndex = i
		}
	}

	for year, days := range overrides {
		if len(days) == 0 {
			continue
		}
		byIndex := make(map[int]int, len(days))
		keys := make(map[int]string, len(days))
		for name, day := range days {
			idx, ok := c.monthIndex(name)
			if !ok {
				return nil, fmt.Errorf("%w: %q in overrides for %d", ErrUnknownMonth, name, year)
			}
			if prev, dup := keys[idx]; dup {
				return nil, duplicateOverride(year, c.months[idx].Name, prev, name)
			}
			keys[idx] = name
			def := c.months[idx]
			if !datetime.ValidDay(year, def.StartMonth, day) {
				return nil, fmt.Errorf("%w: %s %d has no day %d in month %d", ErrInvalidOverride, def.Name, year, day, def.StartMonth)
			}
			byIndex[idx] = day
		}
		c.overrides[year] = byIndex
	}

	return c, nil
}

// WithOverrides returns a new Calendar whose overrides are c's overrides with
// extra layered on top. c is left unchanged.
func (c *Calendar) WithOverrides(extra Overrides) (*Calendar, error) {
	merged := c.Overrides()
	for year, days := range extra {
		if merged[year] == nil {
			merged[year] = make(map[string]int, len(days))
		}
		keys := make(map[string]string, len(days))
		for name, day := range days {
			canonical := name
			if idx, ok := c.monthIndex(name); ok {
				canonical = c.months[idx].Name
			}
			if prev, dup := keys[canonical]; dup {
				return nil, duplicateOverride(year, canonical, prev, name)
			}
			keys[canonical] = name
			merged[year][canonical] = day
		}
	}
	return NewCalendar(c.months, merged)
}

func duplicateOverride(year int, month, first, second string) error {
	a, b := first, second
	if b < a {
		a, b = b, a
	}
	return fmt.Errorf("%w: %q and %q both set %s in overrides for %d", ErrInvalidOverride, a, b, month, year)
}

// Months returns a copy of the nominal month table.
func (c *Calendar) Months() []MonthDefinition {
	out := make([]MonthDefinition, len(c.months))
	copy(out, c.months)
	return out
}

// Overrides returns a copy of the override table keyed by Tamil month name.
func (c *Calendar) Overrides() Overrides {
	out := make(Overrides, len(c.overrides))
	for year, days := range c.overrides {
		named := make(map[string]int, len(days))
		for idx, day := range days {
			named[c.months[idx].Name] = day
		}
		out[year] = named
	}
	return out
}

// OverriddenYears returns the years that carry at least one override, in
// ascending order.
func (c *Calendar) OverriddenYears() []int {
	years := make([]int, 0, len(c.overrides))
	for year := range c.overrides {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}

// StartDay returns the day of the Gregorian month on which the named Tamil
// month begins in year, and whether that day came from an override. It
// returns ErrUnknownMonth for a name the table does not have.
func (c *Calendar) StartDay(year int, month string) (int, bool, error) {
	idx, ok := c.monthIndex(month)
	if !ok {
		return 0, false, fmt.Errorf("%w: %q", ErrUnknownMonth, month)
	}
	day, overridden := c.startDay(year, idx)
	return day, overridden, nil
}

func (c *Calendar) startDay(year, idx int) (int, bool) {
	if days, ok := c.overrides[year]; ok {
		if day, ok := days[idx]; ok {
			return day, true
		}
	}
	return c.months[idx].StartDay, false
}

func (c *Calendar) monthIndex(name string) (int, bool) {
	n := norm.NFC.String(strings.TrimSpace(name))
	for i, m := range c.months {
		if m.Name == n {
			return i, true
		}
	}
	if canonical, ok := CanonicalName(n); ok {
		for i, m := range c.months {
			if m.Name == canonical {
				return i, true
			}
		}
	}
	return 0, false
}
