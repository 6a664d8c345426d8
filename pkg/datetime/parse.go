// Package datetime provides the (year, month) period type shared by the
// dataset, the report engine and the transports.
package datetime

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/sales-analytics/pkg/constants"
)

const (
	// DateTimeLayout is the textual form of a Period, e.g. "2024-03".
	DateTimeLayout = constants.DateTimeLayout
)

var monthNames = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MonthName returns the Spanish name of month m (1-12), or "Mes m" when m is
// out of range.
func MonthName(m int) string {
	if m < 1 || m > constants.MonthsPerYear {
		return fmt.Sprintf("Mes %d", m)
	}
	return monthNames[m-1]
}

// Period identifies one calendar month.
type Period struct {
	Year  int `json:"year" validate:"gt=0"`
	Month int `json:"month" validate:"min=1,max=12"`
}

// ParsePeriod parses "2006-01" formatted text into a Period.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse(DateTimeLayout, strings.TrimSpace(s))
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: expected YYYY-MM", s)
	}
	return Period{Year: t.Year(), Month: int(t.Month())}, nil
}

// MustParsePeriod parses a period and panics on error.
// This is intended for use in tests where the period is known to be valid.
func MustParsePeriod(s string) Period {
	p, err := ParsePeriod(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Date returns the first day of the period in UTC.
func (p Period) Date() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}

// String returns the period in DateTimeLayout form.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Label returns a display label such as "Enero 2024".
func (p Period) Label() string {
	return fmt.Sprintf("%s %d", MonthName(p.Month), p.Year)
}

// Before reports whether p is strictly earlier than other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}
