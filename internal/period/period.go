// Package period defines the reporting-period selector and the pure date
// filter that scopes records to it.
package period

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDate marks a record date that is not a well-formed YYYY-MM-DD
// string. Callers contain it per record; it never aborts a report run.
var ErrInvalidDate = errors.New("invalid date format")

// Type selects the reporting granularity.
type Type int

const (
	Monthly Type = iota
	Annual
)

// monthNames is indexed with the 1-based month minus one. The 1-based
// convention is canonical everywhere; only this lookup subtracts.
var monthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// Selector is a reporting window: a year, and for monthly reports a
// 1-based month.
type Selector struct {
	Type  Type
	Month time.Month
	Year  int
}

// CurrentMonth returns a monthly selector for the current calendar month.
func CurrentMonth() Selector {
	now := time.Now()
	return Selector{Type: Monthly, Month: now.Month(), Year: now.Year()}
}

// Label returns the human-readable pt-BR period label,
// e.g. "Março de 2024" or "Ano de 2024".
func (s Selector) Label() string {
	if s.Type == Annual {
		return fmt.Sprintf("Ano de %d", s.Year)
	}
	return fmt.Sprintf("%s de %d", monthNames[s.Month-1], s.Year)
}

// Includes reports whether a record dated by the given YYYY-MM-DD string
// falls inside the selector's window. The year and month are read straight
// off the string: going through a time.Time in a local zone can shift a
// midnight date into the neighboring day.
func (s Selector) Includes(date string) (bool, error) {
	year, month, err := splitDate(date)
	if err != nil {
		return false, err
	}
	if s.Type == Annual {
		return year == s.Year, nil
	}
	return year == s.Year && month == s.Month, nil
}

// splitDate parses the year and month components of a YYYY-MM-DD string.
func splitDate(date string) (int, time.Month, error) {
	parts := strings.SplitN(date, "-", 3)
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	if day, err := strconv.Atoi(parts[2]); err != nil || day < 1 || day > 31 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return year, time.Month(month), nil
}
