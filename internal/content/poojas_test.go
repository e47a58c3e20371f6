package content

import (
	"context"
	"testing"

	"github.com/iwvelando/temple-portal/internal/metrics"
	"github.com/iwvelando/temple-portal/internal/store"
	"github.com/iwvelando/temple-portal/pkg/tamildate"
	fixtures "github.com/iwvelando/temple-portal/pkg/testutil"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavePoojaDerivesTamilDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	tests := []struct {
		name     string
		input    PoojaInput
		expected string
	}{
		{
			name:     "Blank Tamil date is derived",
			input:    PoojaInput{Title: TitlePradosham, Date: "2026-01-05", Time: "18:00"},
			expected: "மார்கழி 21",
		},
		{
			name:     "Overridden transition",
			input:    PoojaInput{Title: TitleSpecial, Date: "2026-01-15"},
			expected: "தை 1",
		},
		{
			name:     "Explicit Tamil date wins",
			input:    PoojaInput{Title: TitleSpecial, Date: "2026-01-15", TamilMonth: "Thai", TamilDay: 3},
			expected: "தை 3",
		},
		{
			name:     "Explicit Tamil name is kept",
			input:    PoojaInput{Title: TitleSpecial, Date: "2026-01-15", TamilMonth: "மாசி", TamilDay: 32},
			expected: "மாசி 32",
		},
		{
			name:     "Month without day is derived",
			input:    PoojaInput{Title: TitleSpecial, Date: "2026-02-12", TamilMonth: "மாசி"},
			expected: "தை 29",
		},
		{
			name:     "No date and no Tamil date",
			input:    PoojaInput{Title: TitleSpecial},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := f.svc.SavePooja(ctx, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p.TamilMonthDate)

			stored, err := f.store.GetPooja(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, stored.TamilMonthDate)
		})
	}
}

func TestSavePoojaValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	tests := []struct {
		name  string
		input PoojaInput
	}{
		{"Missing title", PoojaInput{Date: "2026-01-15"}},
		{"Other without custom title", PoojaInput{Title: TitleOther, CustomTitle: "  "}},
		{"Bad date", PoojaInput{Title: TitleSpecial, Date: "15/01/2026"}},
		{"Bad time", PoojaInput{Title: TitleSpecial, Date: "2026-01-15", Time: "6pm"}},
		{"Unknown Tamil month", PoojaInput{Title: TitleSpecial, TamilMonth: "January", TamilDay: 1}},
		{"Tamil day too large", PoojaInput{Title: TitleSpecial, TamilMonth: "தை", TamilDay: 33}},
		{"Tamil day negative", PoojaInput{Title: TitleSpecial, TamilMonth: "தை", TamilDay: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SavePooja(ctx, tt.input)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	all, err := f.store.ListPoojas(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSavePoojaTitleAndSponsors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	p, err := f.svc.SavePooja(ctx, PoojaInput{
		Title:       TitleOther,
		CustomTitle: " கந்த சஷ்டி ",
		Date:        "2026-01-15",
		Sponsors: []Sponsor{
			{Prefix: "திரு", Name: "Raman"},
			{Prefix: "", Name: "Kumar"},
			{Prefix: "திருமதி", Name: "  "},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "கந்த சஷ்டி", p.Title)
	assert.Equal(t, "திரு Raman, திரு Kumar குடும்பத்தார்", p.Sponsor)

	updated, err := f.svc.SavePooja(ctx, PoojaInput{
		ID:       p.ID,
		Title:    TitleShivaratri,
		Date:     "2026-02-15",
		Sponsors: []Sponsor{{Prefix: "செல்வி", Name: "Meena"}},
	})
	require.NoError(t, err)
	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, TitleShivaratri, updated.Title)
	assert.Equal(t, "செல்வி Meena", updated.Sponsor)
	assert.Equal(t, "மாசி 3", updated.TamilMonthDate)
	assert.True(t, updated.CreatedAt.Equal(p.CreatedAt))

	_, err = f.svc.SavePooja(ctx, PoojaInput{ID: "missing", Title: TitleSpecial})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSavePoojaKeepsSuspectTamilDate(t *testing.T) {
	ctx := context.Background()
	cal, err := tamildate.Default().WithOverrides(tamildate.Overrides{
		2026: {"Thai": 1, "Maasi": 28},
	})
	require.NoError(t, err)
	f := newFixture(t, cal)

	p, err := f.svc.SavePooja(ctx, PoojaInput{Title: TitleSpecial, Date: "2026-02-27"})
	require.NoError(t, err)
	assert.Equal(t, "தை 58", p.TamilMonthDate)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.TamilDateResolutions.WithLabelValues(metrics.OutcomeSuspect)))
}

func TestFormatSponsors(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		sponsors []Sponsor
		fallback string
		expected string
	}{
		{"Single", TitlePradosham, []Sponsor{{"திரு", "Raman"}}, "", "திரு Raman குடும்பத்தார்"},
		{"Several", TitleSpecial, []Sponsor{{"திரு", "A"}, {"திருமதி", "B"}}, "", "திரு A, திருமதி B குடும்பத்தார்"},
		{"Shivaratri has no suffix", TitleShivaratri, []Sponsor{{"திரு", "A"}}, "", "திரு A"},
		{"Suffix already present", TitleSpecial, []Sponsor{{"திரு", "A குடும்பத்தார்"}}, "", "திரு A குடும்பத்தார்"},
		{"Default honorific", TitleSpecial, []Sponsor{{"", "A"}}, "", "திரு A குடும்பத்தார்"},
		{"Free text fallback", TitleSpecial, nil, " Admin Restore ", "Admin Restore"},
		{"Blank names use fallback", TitleSpecial, []Sponsor{{"திரு", " "}}, "Temple", "Temple"},
		{"Nothing", TitleSpecial, nil, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSponsors(tt.title, tt.sponsors, tt.fallback); got != tt.expected {
				t.Errorf("FormatSponsors() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestParseSponsors(t *testing.T) {
	got := ParseSponsors("திருமதி Lakshmi, திரு Raman, Kumar, செல்வன் Arun குடும்பத்தார்")
	assert.Equal(t, []Sponsor{
		{Prefix: "திருமதி", Name: "Lakshmi"},
		{Prefix: "திரு", Name: "Raman"},
		{Prefix: "திரு", Name: "Kumar"},
		{Prefix: "செல்வன்", Name: "Arun"},
	}, got)

	assert.Nil(t, ParseSponsors("  "))
	assert.Nil(t, ParseSponsors(" குடும்பத்தார்"))
}

func TestEditForm(t *testing.T) {
	in := EditForm(store.Pooja{
		ID:             "p1",
		Title:          "கந்த சஷ்டி",
		Date:           "2026-01-15",
		Sponsor:        "திரு Raman குடும்பத்தார்",
		TamilMonthDate: "தை 1",
	})
	assert.Equal(t, TitleOther, in.Title)
	assert.Equal(t, "கந்த சஷ்டி", in.CustomTitle)
	assert.Equal(t, "தை", in.TamilMonth)
	assert.Equal(t, 1, in.TamilDay)
	assert.Equal(t, []Sponsor{{Prefix: "திரு", Name: "Raman"}}, in.Sponsors)

	preset := EditForm(store.Pooja{Title: TitleSaturday, TamilMonthDate: "bad"})
	assert.Equal(t, TitleSaturday, preset.Title)
	assert.Empty(t, preset.CustomTitle)
	assert.Empty(t, preset.TamilMonth)

	// Round trip through the form keeps the stored sponsor line.
	assert.Equal(t, "திரு Raman குடும்பத்தார்", FormatSponsors(in.CustomTitle, in.Sponsors, ""))
}

func TestHighlightPooja(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, ok, err := f.svc.HighlightPooja(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "no poojas")

	past, err := f.svc.SavePooja(ctx, PoojaInput{Title: TitleSpecial, Date: "2025-12-20"})
	require.NoError(t, err)

	h, ok, err := f.svc.HighlightPooja(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, past.ID, h.Pooja.ID)
	assert.True(t, h.Completed)

	today, err := f.svc.SavePooja(ctx, PoojaInput{Title: TitleSpecial, Date: "2026-01-10", Time: "18:00"})
	require.NoError(t, err)
	_, err = f.svc.SavePooja(ctx, PoojaInput{Title: TitleSpecial, Date: "2026-01-15"})
	require.NoError(t, err)

	h, ok, err = f.svc.HighlightPooja(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, today.ID, h.Pooja.ID, "a pooja today is still upcoming")
	assert.False(t, h.Completed)
}

func TestRestoreDefaultPoojas(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	created, err := f.svc.RestoreDefaultPoojas(ctx)
	require.NoError(t, err)
	require.Len(t, created, len(DefaultPoojas))

	all, err := f.svc.ListPoojas(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5)
	newYear := fixtures.FindPooja(all, "தமிழிப் புத்தாண்டு")
	require.NotNil(t, newYear)
	assert.Equal(t, "2026-04-14", newYear.Date)
	assert.Equal(t, "சித்திரை 1", newYear.TamilMonthDate)

	// The seeded Tamil dates agree with the calendar.
	for _, p := range DefaultPoojas {
		result, err := f.svc.Calendar().ResolveString(p.Date)
		require.NoError(t, err)
		assert.Equal(t, p.TamilMonthDate, result.String(), p.Date)
	}

	// The seed itself is not mutated.
	assert.Empty(t, DefaultPoojas[0].ID)

	require.NoError(t, f.svc.DeletePooja(ctx, created[0].ID))
	assert.ErrorIs(t, f.svc.DeletePooja(ctx, created[0].ID), store.ErrNotFound)
}
