// Package validation checks command line and query input for the calendar
// commands and endpoints before any configuration is loaded.
package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/temple-portal/pkg/constants"
)

// Gregorian years the calendar will list transitions for.
const (
	MinYear = 1
	MaxYear = 9999
)

var (
	// ErrOutputFormat reports an output format the CLI cannot render.
	ErrOutputFormat = errors.New("unsupported output format")

	// ErrYear reports a year that is not a number in [MinYear, MaxYear].
	ErrYear = errors.New("invalid year")
)

// OutputFormat returns the canonical spelling of format. Surrounding space and
// letter case are ignored.
func OutputFormat(format string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	switch f {
	case constants.OutputFormatPretty, constants.OutputFormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("%w: expected %s or %s, got %q",
		ErrOutputFormat, constants.OutputFormatPretty, constants.OutputFormatCSV, format)
}

// Year parses raw as a Gregorian year between MinYear and MaxYear.
func Year(raw string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || year < MinYear || year > MaxYear {
		return 0, fmt.Errorf("%w: year must be a number between %d and %d, got %q", ErrYear, MinYear, MaxYear, raw)
	}
	return year, nil
}

// TransitionsArgs checks the inputs of the transitions command and returns
// the canonical output format and the year.
func TransitionsArgs(format, rawYear string) (string, int, error) {
	f, err := OutputFormat(format)
	if err != nil {
		return "", 0, err
	}
	year, err := Year(rawYear)
	if err != nil {
		return "", 0, err
	}
	return f, year, nil
}
