// Package output provides utilities for formatting Tamil calendar data for
// the command line.
package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/temple-portal/pkg/constants"
	"github.com/iwvelando/temple-portal/pkg/tamildate"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat writes a human-readable table of the month transitions of year.
func PrettyFormat(w io.Writer, year int, transitions []tamildate.Transition) {
	p := message.NewPrinter(language.English)
	_, _ = p.Fprintf(w, "--- Tamil month transitions for %d ---\n", year)
	fmt.Fprintf(w, "Start      | Month | Transliteration | Source\n")
	fmt.Fprintf(w, "__________ | _____ | _______________ | ______\n")
	for _, t := range transitions {
		_, _ = p.Fprintf(w, "%s | %s | %s | %s\n",
			t.Start.Format(constants.DateLayout), t.Month, tamildate.Transliteration(t.Month), source(t.Overridden))
	}
}

// CsvFormat writes the month transitions of year in comma-separated form.
func CsvFormat(w io.Writer, year int, transitions []tamildate.Transition) {
	fmt.Fprintf(w, `"year","start","month","transliteration","source"`+"\n")
	for _, t := range transitions {
		fmt.Fprintf(w, `"%d","%s","%s","%s","%s"`+"\n",
			year, t.Start.Format(constants.DateLayout), t.Month, tamildate.Transliteration(t.Month), source(t.Overridden))
	}
}

// CalibrationNote writes which years carry confirmed transit dates, and warns
// when year is not one of them.
func CalibrationNote(w io.Writer, year int, calibrated []int) {
	if len(calibrated) == 0 {
		fmt.Fprintf(w, "note: no calibrated years; all start days are nominal\n")
		return
	}
	names := make([]string, len(calibrated))
	found := false
	for i, y := range calibrated {
		names[i] = strconv.Itoa(y)
		found = found || y == year
	}
	if !found {
		fmt.Fprintf(w, "note: %d is not calibrated; start days are nominal and may be off by a day\n", year)
	}
	fmt.Fprintf(w, "calibrated years: %s\n", strings.Join(names, ", "))
}

// ResultFormat writes one resolved date in the given output format.
func ResultFormat(w io.Writer, format, date string, r tamildate.Result) {
	switch format {
	case constants.OutputFormatCSV:
		fmt.Fprintf(w, `"date","month","day","start","suspect"`+"\n")
		fmt.Fprintf(w, `"%s","%s","%d","%s","%t"`+"\n", date, r.Month, r.Day, r.Start.Format(constants.DateLayout), r.Suspect)
	default:
		fmt.Fprintf(w, "%s | %s (%s %d, month began %s)\n",
			date, r.String(), tamildate.Transliteration(r.Month), r.Day, r.Start.Format(constants.DateLayout))
		if r.Suspect {
			fmt.Fprintf(w, "warning: day %d exceeds the longest Tamil month; check the %s transition\n", r.Day, r.Month)
		}
	}
}

func source(overridden bool) string {
	if overridden {
		return "override"
	}
	return "nominal"
}
