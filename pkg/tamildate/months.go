package tamildate

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Tamil month names in Tamil script, in the order the Tamil year runs.
const (
	Chithirai = "சித்திரை"
	Vaikasi   = "வைகாசி"
	Aani      = "ஆனி"
	Aadi      = "ஆடி"
	Aavani    = "ஆவணி"
	Purattasi = "புரட்டாசி"
	Aippasi   = "ஐப்பசி"
	Karthigai = "கார்த்திகை"
	Margazhi  = "மார்கழி"
	Thai      = "தை"
	Maasi     = "மாசி"
	Panguni   = "பங்குனி"
)

// MonthDefinition is the long-run average Gregorian date on which a Tamil
// month begins.
type MonthDefinition struct {
	Name       string
	StartDay   int
	StartMonth time.Month
}

// DefaultMonths is the nominal solar-transit table, starting with the first
// month of the Tamil year.
var DefaultMonths = []MonthDefinition{
	{Name: Chithirai, StartDay: 14, StartMonth: time.April},
	{Name: Vaikasi, StartDay: 15, StartMonth: time.May},
	{Name: Aani, StartDay: 15, StartMonth: time.June},
	{Name: Aadi, StartDay: 17, StartMonth: time.July},
	{Name: Aavani, StartDay: 17, StartMonth: time.August},
	{Name: Purattasi, StartDay: 17, StartMonth: time.September},
	{Name: Aippasi, StartDay: 18, StartMonth: time.October},
	{Name: Karthigai, StartDay: 17, StartMonth: time.November},
	{Name: Margazhi, StartDay: 16, StartMonth: time.December},
	{Name: Thai, StartDay: 14, StartMonth: time.January},
	{Name: Maasi, StartDay: 13, StartMonth: time.February},
	{Name: Panguni, StartDay: 14, StartMonth: time.March},
}

// DefaultOverrides holds the transit dates confirmed for specific years.
// Extend it as dates for upcoming years are published.
var DefaultOverrides = Overrides{
	2026: {
		Chithirai: 14,
		Vaikasi:   15,
		Aani:      15,
		Aadi:      17,
		Aavani:    18,
		Purattasi: 18,
		Aippasi:   18,
		Karthigai: 17,
		Margazhi:  16, // Margazhi that begins in December 2026
		Thai:      15,
		Maasi:     13,
		Panguni:   15,
	},
}

var transliterations = map[string]string{
	"chithirai": Chithirai,
	"chittirai": Chithirai,
	"vaikasi":   Vaikasi,
	"vaigasi":   Vaikasi,
	"aani":      Aani,
	"ani":       Aani,
	"aadi":      Aadi,
	"adi":       Aadi,
	"aavani":    Aavani,
	"avani":     Aavani,
	"purattasi": Purattasi,
	"aippasi":   Aippasi,
	"ippasi":    Aippasi,
	"karthigai": Karthigai,
	"karthikai": Karthigai,
	"margazhi":  Margazhi,
	"markazhi":  Margazhi,
	"thai":      Thai,
	"tai":       Thai,
	"maasi":     Maasi,
	"masi":      Maasi,
	"panguni":   Panguni,
}

var englishNames = map[string]string{
	Chithirai: "Chithirai",
	Vaikasi:   "Vaikasi",
	Aani:      "Aani",
	Aadi:      "Aadi",
	Aavani:    "Aavani",
	Purattasi: "Purattasi",
	Aippasi:   "Aippasi",
	Karthigai: "Karthigai",
	Margazhi:  "Margazhi",
	Thai:      "Thai",
	Maasi:     "Maasi",
	Panguni:   "Panguni",
}

// CanonicalName maps a month name written in Tamil script or in a common
// Latin transliteration onto the Tamil-script name. The second return value
// is false when the name is not recognised.
func CanonicalName(name string) (string, bool) {
	n := norm.NFC.String(strings.TrimSpace(name))
	if _, ok := englishNames[n]; ok {
		return n, true
	}
	if tamil, ok := transliterations[cases.Fold().String(n)]; ok {
		return tamil, true
	}
	return "", false
}

// Transliteration returns the Latin spelling of a Tamil month name, or the
// name unchanged if it is not one of the twelve months.
func Transliteration(name string) string {
	if en, ok := englishNames[name]; ok {
		return en
	}
	return name
}
