// Package period detects the layout of EVDS date columns and converts them
// to typed period values.
//
// EVDS encodes the observation period differently per frequency: annual
// series carry a bare 4-digit year, quarterly and semiannual series a
// "YYYY-Q#" / "YYYY-S#" marker, monthly series "YYYY-M" or "YYYY-MM", and
// daily series "DD-MM-YYYY". The layout is decided once from the first
// non-missing value of the column and then applied to every element.
package period

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrUnknownLayout reports a date column whose first valid value matches no
// supported shape. The column is returned unconverted alongside this error.
var ErrUnknownLayout = errors.New("period: unknown date layout")

// Layout identifies the textual shape of a date column.
type Layout int

const (
	Unknown Layout = iota
	Annual
	Quarterly
	Monthly
	Daily
)

func (l Layout) String() string {
	switch l {
	case Annual:
		return "annual"
	case Quarterly:
		return "quarterly"
	case Monthly:
		return "monthly"
	case Daily:
		return "daily"
	default:
		return "unknown"
	}
}

// Value is one parsed period. Raw always holds the original string; which of
// the typed fields is meaningful depends on Layout: Year for Annual, Frac
// (year + 0.25*(quarter-1)) for Quarterly, Date for Monthly (day pinned to
// 15) and Daily.
type Value struct {
	Raw    string
	Layout Layout
	Year   int
	Frac   float64
	Date   time.Time
}

var (
	annualRe    = regexp.MustCompile(`^\d{4}$`)
	quarterlyRe = regexp.MustCompile(`^\d{4}-[QS]\d$`)
	monthlyRe   = regexp.MustCompile(`^\d{4}-\d{1,2}$`)
	dailyRe     = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
)

// missing marks values that carry no period information.
func missing(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "NA", "NaN", "null":
		return true
	}
	return false
}

// Detect classifies a column by the shape of its first non-missing value.
// Shapes are tested in a fixed priority order; a column with mixed shapes
// after the first valid value is not detected.
func Detect(values []string) Layout {
	for _, v := range values {
		if missing(v) {
			continue
		}
		v = strings.TrimSpace(v)
		switch {
		case annualRe.MatchString(v):
			return Annual
		case len(v) == 7 && quarterlyRe.MatchString(v):
			return Quarterly
		case monthlyRe.MatchString(v):
			return Monthly
		case dailyRe.MatchString(v):
			return Daily
		}
		return Unknown
	}
	return Unknown
}

// ParseColumn converts every element of values according to the layout
// detected from the first valid element. When the layout is Unknown the
// column is returned with raw strings only, together with ErrUnknownLayout;
// callers are expected to surface that as a warning, not a failure.
func ParseColumn(values []string) ([]Value, error) {
	layout := Detect(values)
	out := make([]Value, len(values))
	for i, raw := range values {
		out[i] = parseOne(strings.TrimSpace(raw), layout)
	}
	if layout == Unknown {
		return out, ErrUnknownLayout
	}
	return out, nil
}

func parseOne(raw string, layout Layout) Value {
	v := Value{Raw: raw, Layout: layout}
	if missing(raw) {
		return v
	}
	switch layout {
	case Annual:
		if year, err := strconv.Atoi(raw); err == nil {
			v.Year = year
		}
	case Quarterly:
		year, quarter, ok := splitQuarter(raw)
		if ok {
			v.Year = year
			v.Frac = float64(year) + 0.25*float64(quarter-1)
		}
	case Monthly:
		if t, err := time.Parse("2006-1-2", raw+"-15"); err == nil {
			v.Date = t
			v.Year = t.Year()
		}
	case Daily:
		if t, err := time.Parse("02-01-2006", raw); err == nil {
			v.Date = t
			v.Year = t.Year()
		}
	}
	return v
}

func splitQuarter(raw string) (year, quarter int, ok bool) {
	if len(raw) != 7 {
		return 0, 0, false
	}
	year, errYear := strconv.Atoi(raw[:4])
	quarter, errQuarter := strconv.Atoi(raw[6:])
	if errYear != nil || errQuarter != nil || quarter < 1 || quarter > 4 {
		return 0, 0, false
	}
	return year, quarter, true
}

// String renders the value in its source form.
func (v Value) String() string {
	return v.Raw
}

// Missing reports whether the value carried no period information.
func (v Value) Missing() bool {
	return missing(v.Raw)
}

// ReformatDate rewrites a YYYY-MM-DD date into the DD-MM-YYYY wire format
// the service requires. Inputs already in wire format (or anything else)
// pass through unchanged.
func ReformatDate(date string) string {
	date = strings.TrimSpace(date)
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t.Format("02-01-2006")
	}
	return date
}

// WireDate formats a time in the service's DD-MM-YYYY request format.
func WireDate(t time.Time) string {
	return t.Format("02-01-2006")
}

// ParseQuarterFrac renders a fractional year back to YYYY-Q#, the inverse
// of the quarterly parse.
func ParseQuarterFrac(frac float64) string {
	year := int(frac)
	quarter := int((frac-float64(year))/0.25) + 1
	return fmt.Sprintf("%04d-Q%d", year, quarter)
}
