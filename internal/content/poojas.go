package content

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/temple-portal/internal/store"
	"github.com/iwvelando/temple-portal/pkg/constants"
	"github.com/iwvelando/temple-portal/pkg/datetime"
	"github.com/iwvelando/temple-portal/pkg/tamildate"
	"go.uber.org/zap"
)

// Preset pooja titles offered by the scheduling form.
const (
	TitlePradosham   = "பிரதோஷ வழிபாடு"
	TitleSpecial     = "சிறப்பு பூஜை"
	TitleSaturday    = "சனிக்கிழமை பூஜை"
	TitleShivaratri  = "சிவராத்திரி சிறப்பு பூஜை"
	TitleOther       = "Other"
	FamilySuffix     = "குடும்பத்தார்"
	DefaultHonorific = "திரு"
)

// PresetTitles lists the titles selectable without a custom title.
var PresetTitles = []string{TitlePradosham, TitleSpecial, TitleSaturday, TitleShivaratri}

// Honorifics recognised when splitting a stored sponsor line.
var Honorifics = []string{"திருமதி", "திரு", "செல்வன்", "செல்வி"}

// Sponsor is one named sponsor with an honorific.
type Sponsor struct {
	Prefix string `json:"prefix"`
	Name   string `json:"name"`
}

// PoojaInput is the scheduling form as submitted by the administrator.
type PoojaInput struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	CustomTitle string `json:"customTitle,omitempty"`
	Date        string `json:"date"`
	Time        string `json:"time"`

	// Sponsors takes precedence over Sponsor, which is kept for free-text
	// entries.
	Sponsors []Sponsor `json:"sponsors,omitempty"`
	Sponsor  string    `json:"sponsor,omitempty"`

	SponsorCurrentAddress   string `json:"sponsorCurrentAddress,omitempty"`
	SponsorPermanentAddress string `json:"sponsorPermanentAddress,omitempty"`
	Description             string `json:"description,omitempty"`
	AnnadhanamDetails       string `json:"annadhanamDetails,omitempty"`

	// TamilMonth and TamilDay override the derived Tamil date when both are
	// set.
	TamilMonth string `json:"tamilMonth,omitempty"`
	TamilDay   int    `json:"tamilDay,omitempty"`
}

// Highlight is the pooja featured on the home page.
type Highlight struct {
	Pooja     store.Pooja `json:"pooja"`
	Completed bool        `json:"completed"`
}

// SavePooja validates the form, fills in the derived fields, and creates the
// pooja, or updates it when ID is set.
func (s *Service) SavePooja(ctx context.Context, in PoojaInput) (store.Pooja, error) {
	title := strings.TrimSpace(in.Title)
	if title == TitleOther {
		title = strings.TrimSpace(in.CustomTitle)
	}
	if title == "" {
		return store.Pooja{}, fmt.Errorf("%w: title is required", ErrValidation)
	}

	date := strings.TrimSpace(in.Date)
	if date != "" {
		d, err := datetime.ParseDate(date)
		if err != nil {
			return store.Pooja{}, fmt.Errorf("%w: date: %v", ErrValidation, err)
		}
		date = datetime.FormatDate(d)
	}

	clock := strings.TrimSpace(in.Time)
	if clock != "" {
		if _, err := time.Parse(constants.TimeLayout, clock); err != nil {
			return store.Pooja{}, fmt.Errorf("%w: time must be HH:MM", ErrValidation)
		}
	}

	tamilDate, err := s.tamilMonthDate(in, date)
	if err != nil {
		return store.Pooja{}, err
	}

	p := store.Pooja{
		ID:                      in.ID,
		Title:                   title,
		Date:                    date,
		Time:                    clock,
		Sponsor:                 FormatSponsors(title, in.Sponsors, in.Sponsor),
		SponsorCurrentAddress:   strings.TrimSpace(in.SponsorCurrentAddress),
		SponsorPermanentAddress: strings.TrimSpace(in.SponsorPermanentAddress),
		Description:             strings.TrimSpace(in.Description),
		AnnadhanamDetails:       strings.TrimSpace(in.AnnadhanamDetails),
		TamilMonthDate:          tamilDate,
	}

	if p.ID == "" {
		created, err := s.store.CreatePooja(ctx, p)
		if err != nil {
			return store.Pooja{}, err
		}
		s.logger.Info("scheduled pooja",
			zap.String("op", "content.SavePooja"),
			zap.String("id", created.ID),
			zap.String("date", created.Date),
			zap.String("tamilMonthDate", created.TamilMonthDate),
		)
		return created, nil
	}

	if err := s.store.UpdatePooja(ctx, p); err != nil {
		return store.Pooja{}, err
	}
	return s.store.GetPooja(ctx, p.ID)
}

// tamilMonthDate returns the explicit Tamil date when both parts are given,
// otherwise the date derived from the Gregorian date. Derivation failures
// leave it blank.
func (s *Service) tamilMonthDate(in PoojaInput, date string) (string, error) {
	month := strings.TrimSpace(in.TamilMonth)
	if month != "" && in.TamilDay != 0 {
		canonical, ok := tamildate.CanonicalName(month)
		if !ok {
			return "", fmt.Errorf("%w: unknown Tamil month %q", ErrValidation, month)
		}
		if in.TamilDay < 1 || in.TamilDay > constants.MaxTamilMonthLength {
			return "", fmt.Errorf("%w: Tamil day must be between 1 and %d", ErrValidation, constants.MaxTamilMonthLength)
		}
		return canonical + " " + strconv.Itoa(in.TamilDay), nil
	}
	if date == "" {
		return "", nil
	}
	result, err := s.PreviewTamilDate(date)
	if err != nil {
		return "", nil
	}
	return result.String(), nil
}

// FormatSponsors joins the named sponsors as "prefix name, prefix name" and
// appends the family suffix, except for Shivaratri poojas. With no named
// sponsors the free-text fallback is returned unchanged.
func FormatSponsors(title string, sponsors []Sponsor, fallback string) string {
	parts := make([]string, 0, len(sponsors))
	for _, sp := range sponsors {
		name := strings.TrimSpace(sp.Name)
		if name == "" {
			continue
		}
		prefix := strings.TrimSpace(sp.Prefix)
		if prefix == "" {
			prefix = DefaultHonorific
		}
		parts = append(parts, prefix+" "+name)
	}
	if len(parts) == 0 {
		return strings.TrimSpace(fallback)
	}
	line := strings.Join(parts, ", ")
	if title != TitleShivaratri && !strings.Contains(line, FamilySuffix) {
		line += " " + FamilySuffix
	}
	return line
}

// ParseSponsors splits a stored sponsor line back into sponsors for editing.
// Parts without a known honorific get the default one.
func ParseSponsors(line string) []Sponsor {
	line = strings.TrimSpace(strings.ReplaceAll(line, " "+FamilySuffix, ""))
	if line == "" {
		return nil
	}
	var out []Sponsor
	for _, part := range strings.Split(line, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sp := Sponsor{Prefix: DefaultHonorific, Name: part}
		for _, h := range Honorifics {
			if rest, ok := strings.CutPrefix(part, h); ok {
				sp = Sponsor{Prefix: h, Name: strings.TrimSpace(rest)}
				break
			}
		}
		out = append(out, sp)
	}
	return out
}

// EditForm turns a stored pooja back into form input.
func EditForm(p store.Pooja) PoojaInput {
	in := PoojaInput{
		ID:                      p.ID,
		Title:                   p.Title,
		Date:                    p.Date,
		Time:                    p.Time,
		Sponsors:                ParseSponsors(p.Sponsor),
		SponsorCurrentAddress:   p.SponsorCurrentAddress,
		SponsorPermanentAddress: p.SponsorPermanentAddress,
		Description:             p.Description,
		AnnadhanamDetails:       p.AnnadhanamDetails,
	}
	if !isPreset(p.Title) {
		in.Title = TitleOther
		in.CustomTitle = p.Title
	}
	if fields := strings.Fields(p.TamilMonthDate); len(fields) >= 2 {
		if day, err := strconv.Atoi(fields[1]); err == nil {
			in.TamilMonth = fields[0]
			in.TamilDay = day
		}
	}
	return in
}

func isPreset(title string) bool {
	for _, t := range PresetTitles {
		if t == title {
			return true
		}
	}
	return false
}

// DeletePooja removes a pooja.
func (s *Service) DeletePooja(ctx context.Context, id string) error {
	return s.store.DeletePooja(ctx, id)
}

// ListPoojas returns every pooja, newest created first.
func (s *Service) ListPoojas(ctx context.Context) ([]store.Pooja, error) {
	return s.store.ListPoojas(ctx)
}

// HighlightPooja returns the next pooja on or after today, or failing that
// the most recent past one marked Completed. ok is false when there are no
// poojas at all.
func (s *Service) HighlightPooja(ctx context.Context) (Highlight, bool, error) {
	today := s.Today()
	next, err := s.store.NextPooja(ctx, today)
	if err == nil {
		return Highlight{Pooja: next}, true, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return Highlight{}, false, err
	}
	past, err := s.store.LatestPastPooja(ctx, today)
	if errors.Is(err, store.ErrNotFound) {
		return Highlight{}, false, nil
	}
	if err != nil {
		return Highlight{}, false, err
	}
	return Highlight{Pooja: past, Completed: past.Date < today}, true, nil
}

// DefaultPoojas is the recovery schedule written by RestoreDefaultPoojas.
var DefaultPoojas = []store.Pooja{
	{Title: "தை முதல் நாள்", Date: "2026-01-15", Time: "06:00", TamilMonthDate: "தை 1", Description: "Special pooja for Thai 1", Sponsor: "Admin Restore"},
	{Title: "மாசி மாத பிறப்பு", Date: "2026-02-13", Time: "06:00", TamilMonthDate: "மாசி 1", Description: "Special pooja for Masi 1", Sponsor: "Admin Restore"},
	{Title: "பங்குனி உத்திரம்", Date: "2026-03-15", Time: "06:00", TamilMonthDate: "பங்குனி 1", Description: "Special pooja for Panguni 1", Sponsor: "Admin Restore"},
	{Title: "தமிழிப் புத்தாண்டு", Date: "2026-04-14", Time: "06:00", TamilMonthDate: "சித்திரை 1", Description: "Tamil New Year", Sponsor: "Admin Restore"},
	{Title: "வைகாசி விசாகம்", Date: "2026-05-15", Time: "06:00", TamilMonthDate: "வைகாசி 1", Description: "Vaikasi Visakam", Sponsor: "Admin Restore"},
}

// RestoreDefaultPoojas adds the recovery schedule in one transaction.
func (s *Service) RestoreDefaultPoojas(ctx context.Context) ([]store.Pooja, error) {
	seed := make([]store.Pooja, len(DefaultPoojas))
	copy(seed, DefaultPoojas)
	created, err := s.store.CreatePoojas(ctx, seed)
	if err != nil {
		return nil, err
	}
	s.logger.Info("restored default poojas",
		zap.String("op", "content.RestoreDefaultPoojas"),
		zap.Int("count", len(created)),
	)
	return created, nil
}

// GetPooja returns one pooja.
func (s *Service) GetPooja(ctx context.Context, id string) (store.Pooja, error) {
	return s.store.GetPooja(ctx, id)
}
