package tamildate

import (
	"errors"
	"testing"
	"time"
)

func TestNewCalendarValidation(t *testing.T) {
	withChange := func(change func([]MonthDefinition) []MonthDefinition) []MonthDefinition {
		months := append([]MonthDefinition(nil), DefaultMonths...)
		return change(months)
	}

	tests := []struct {
		name      string
		months    []MonthDefinition
		overrides Overrides
		wantErr   error
	}{
		{
			name:      "Default tables",
			months:    DefaultMonths,
			overrides: DefaultOverrides,
		},
		{
			name:    "Eleven months",
			months:  DefaultMonths[:11],
			wantErr: ErrInvalidTable,
		},
		{
			name: "Two months starting in the same Gregorian month",
			months: withChange(func(m []MonthDefinition) []MonthDefinition {
				m[1].StartMonth = time.April
				return m
			}),
			wantErr: ErrInvalidTable,
		},
		{
			name: "Duplicate name",
			months: withChange(func(m []MonthDefinition) []MonthDefinition {
				m[1].Name = Chithirai
				return m
			}),
			wantErr: ErrInvalidTable,
		},
		{
			name: "Empty name",
			months: withChange(func(m []MonthDefinition) []MonthDefinition {
				m[2].Name = " "
				return m
			}),
			wantErr: ErrInvalidTable,
		},
		{
			name: "Nominal day that only exists in leap years",
			months: withChange(func(m []MonthDefinition) []MonthDefinition {
				m[10].StartDay = 29
				return m
			}),
			wantErr: ErrInvalidTable,
		},
		{
			name:      "Unknown override month",
			months:    DefaultMonths,
			overrides: Overrides{2027: {"Shravan": 15}},
			wantErr:   ErrUnknownMonth,
		},
		{
			name:      "Override day missing from its month",
			months:    DefaultMonths,
			overrides: Overrides{2027: {Maasi: 29}},
			wantErr:   ErrInvalidOverride,
		},
		{
			name:      "Override day of zero",
			months:    DefaultMonths,
			overrides: Overrides{2027: {Thai: 0}},
			wantErr:   ErrInvalidOverride,
		},
		{
			name:      "Leap day override in a leap year",
			months:    DefaultMonths,
			overrides: Overrides{2028: {Maasi: 29}},
		},
		{
			name:      "Two spellings of one month in a year",
			months:    DefaultMonths,
			overrides: Overrides{2027: {"thai": 15, Thai: 16}},
			wantErr:   ErrInvalidOverride,
		},
		{
			name:      "Same day under two spellings is still ambiguous",
			months:    DefaultMonths,
			overrides: Overrides{2027: {"Thai": 15, "THAI": 15}},
			wantErr:   ErrInvalidOverride,
		},
		{
			name:      "Same month in different years",
			months:    DefaultMonths,
			overrides: Overrides{2027: {"thai": 15}, 2028: {Thai: 15}},
		},
		{
			name:      "Empty override year is ignored",
			months:    DefaultMonths,
			overrides: Overrides{2027: {}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCalendar(tt.months, tt.overrides)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("NewCalendar() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewCalendar() error = %v, expected %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewCalendarCopiesInput(t *testing.T) {
	months := append([]MonthDefinition(nil), DefaultMonths...)
	overrides := Overrides{2030: {Thai: 20}}

	cal, err := NewCalendar(months, overrides)
	if err != nil {
		t.Fatalf("NewCalendar() error = %v", err)
	}

	months[9].StartDay = 1
	overrides[2030][Thai] = 25

	r, err := cal.ResolveString("2030-01-20")
	if err != nil {
		t.Fatalf("ResolveString() error = %v", err)
	}
	if r.Month != Thai || r.Day != 1 {
		t.Errorf("ResolveString() = %s, expected %s 1 after caller mutated inputs", r, Thai)
	}

	got := cal.Months()
	got[0].StartDay = 1
	if cal.Months()[0].StartDay != 14 {
		t.Error("Months() exposed internal table")
	}
}

func TestWithOverrides(t *testing.T) {
	base := Default()

	cal, err := base.WithOverrides(Overrides{2027: {"Thai": 15}, 2026: {"Aavani": 19}})
	if err != nil {
		t.Fatalf("WithOverrides() error = %v", err)
	}

	r, err := cal.ResolveString("2027-01-15")
	if err != nil {
		t.Fatalf("ResolveString() error = %v", err)
	}
	if r.Month != Thai || r.Day != 1 {
		t.Errorf("ResolveString(2027-01-15) = %s, expected %s 1", r, Thai)
	}

	r, err = cal.ResolveString("2026-08-18")
	if err != nil {
		t.Fatalf("ResolveString() error = %v", err)
	}
	if r.Month != Aadi {
		t.Errorf("ResolveString(2026-08-18) = %s, expected %s after layered override", r, Aadi)
	}

	// Built-in overrides for other months survive the merge.
	day, overridden, err := cal.StartDay(2026, Thai)
	if err != nil || day != 15 || !overridden {
		t.Errorf("StartDay(2026, Thai) = %d, %v, %v; expected 15, true, nil", day, overridden, err)
	}

	r, err = base.ResolveString("2027-01-14")
	if err != nil {
		t.Fatalf("ResolveString() error = %v", err)
	}
	if r.Month != Thai || r.Day != 1 {
		t.Errorf("base calendar changed: ResolveString(2027-01-14) = %s", r)
	}

	if _, err := base.WithOverrides(Overrides{2027: {"Vishu": 1}}); !errors.Is(err, ErrUnknownMonth) {
		t.Errorf("WithOverrides(unknown) error = %v, expected ErrUnknownMonth", err)
	}

	if _, err := base.WithOverrides(Overrides{2027: {"thai": 15, Thai: 16}}); !errors.Is(err, ErrInvalidOverride) {
		t.Errorf("WithOverrides(duplicate month) error = %v, expected ErrInvalidOverride", err)
	}

	// A layer may replace a built-in override with another spelling.
	cal, err = base.WithOverrides(Overrides{2026: {"thai": 14}})
	if err != nil {
		t.Fatalf("WithOverrides(respelled) error = %v", err)
	}
	day, overridden, err = cal.StartDay(2026, Thai)
	if err != nil || day != 14 || !overridden {
		t.Errorf("StartDay(2026, Thai) = %d, %v, %v; expected 14, true, nil", day, overridden, err)
	}
}

func TestOverriddenYears(t *testing.T) {
	cal, err := NewCalendar(DefaultMonths, Overrides{2031: {Thai: 15}, 2029: {Thai: 15}, 2030: {}})
	if err != nil {
		t.Fatalf("NewCalendar() error = %v", err)
	}
	years := cal.OverriddenYears()
	if len(years) != 2 || years[0] != 2029 || years[1] != 2031 {
		t.Errorf("OverriddenYears() = %v, expected [2029 2031]", years)
	}
}

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{Margazhi, Margazhi, true},
		{" " + Thai + " ", Thai, true},
		{"Margazhi", Margazhi, true},
		{"MARKAZHI", Margazhi, true},
		{"karthikai", Karthigai, true},
		{"Chithirai", Chithirai, true},
		{"January", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := CanonicalName(tt.input)
			if got != tt.expected || ok != tt.ok {
				t.Errorf("CanonicalName(%q) = %q, %v; expected %q, %v", tt.input, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestTransliteration(t *testing.T) {
	if got := Transliteration(Purattasi); got != "Purattasi" {
		t.Errorf("Transliteration(%s) = %s, expected Purattasi", Purattasi, got)
	}
	if got := Transliteration("Vishu"); got != "Vishu" {
		t.Errorf("Transliteration(Vishu) = %s, expected input unchanged", got)
	}
}

func TestDefaultTableInvariants(t *testing.T) {
	seen := make(map[time.Month]bool)
	for _, m := range Default().Months() {
		if seen[m.StartMonth] {
			t.Errorf("start month %s used twice", m.StartMonth)
		}
		seen[m.StartMonth] = true
	}
	if len(seen) != 12 {
		t.Errorf("default table covers %d Gregorian months, expected 12", len(seen))
	}
	if Default().Months()[0].Name != Chithirai {
		t.Errorf("default table should start with %s", Chithirai)
	}
}
