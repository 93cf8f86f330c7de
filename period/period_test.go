package period

import (
	"errors"
	"testing"
	"time"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   Layout
	}{
		{"annual", []string{"1987"}, Annual},
		{"quarterly", []string{"2014-Q3"}, Quarterly},
		{"semiannual marker", []string{"2014-S2"}, Quarterly},
		{"monthly single digit", []string{"2010-7"}, Monthly},
		{"monthly two digits", []string{"2010-11"}, Monthly},
		{"daily", []string{"05-03-2021"}, Daily},
		{"skips missing markers", []string{"", "NA", "2010-Q1"}, Quarterly},
		{"unknown shape", []string{"W0310"}, Unknown},
		{"all missing", []string{"NA", ""}, Unknown},
		{"empty column", nil, Unknown},
		{"first valid wins over later shapes", []string{"1987", "2010-Q1"}, Annual},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.values); got != tt.want {
				t.Errorf("Detect(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestParseColumnAnnual(t *testing.T) {
	values, err := ParseColumn([]string{"1987", "1988", "NA"})
	if err != nil {
		t.Fatalf("ParseColumn: %v", err)
	}
	if values[0].Year != 1987 || values[1].Year != 1988 {
		t.Errorf("years = %d, %d, want 1987, 1988", values[0].Year, values[1].Year)
	}
	if !values[2].Missing() {
		t.Errorf("missing marker not preserved: %+v", values[2])
	}
}

func TestParseColumnQuarterly(t *testing.T) {
	values, err := ParseColumn([]string{"2014-Q1", "2014-Q2", "2014-Q3", "2014-Q4"})
	if err != nil {
		t.Fatalf("ParseColumn: %v", err)
	}
	want := []float64{2014.0, 2014.25, 2014.5, 2014.75}
	for i, v := range values {
		if v.Frac != want[i] {
			t.Errorf("Frac[%d] = %v, want %v", i, v.Frac, want[i])
		}
	}
	if got := ParseQuarterFrac(values[2].Frac); got != "2014-Q3" {
		t.Errorf("ParseQuarterFrac = %q, want 2014-Q3", got)
	}
}

func TestParseColumnMonthlyMidMonth(t *testing.T) {
	values, err := ParseColumn([]string{"2010-1", "2010-12"})
	if err != nil {
		t.Fatalf("ParseColumn: %v", err)
	}
	for i, v := range values {
		if v.Date.Day() != 15 {
			t.Errorf("day[%d] = %d, want 15", i, v.Date.Day())
		}
	}
	want := time.Date(2010, time.December, 15, 0, 0, 0, 0, time.UTC)
	if !values[1].Date.Equal(want) {
		t.Errorf("Date = %v, want %v", values[1].Date, want)
	}
}

func TestParseColumnDaily(t *testing.T) {
	values, err := ParseColumn([]string{"05-03-2021"})
	if err != nil {
		t.Fatalf("ParseColumn: %v", err)
	}
	want := time.Date(2021, time.March, 5, 0, 0, 0, 0, time.UTC)
	if !values[0].Date.Equal(want) {
		t.Errorf("Date = %v, want %v", values[0].Date, want)
	}
}

func TestParseColumnUnknownKeepsRaw(t *testing.T) {
	raw := []string{"W0310", "W0311"}
	values, err := ParseColumn(raw)
	if !errors.Is(err, ErrUnknownLayout) {
		t.Fatalf("err = %v, want ErrUnknownLayout", err)
	}
	for i, v := range values {
		if v.Raw != raw[i] || v.Layout != Unknown {
			t.Errorf("value[%d] = %+v, want raw %q preserved", i, v, raw[i])
		}
	}
}

func TestReformatDate(t *testing.T) {
	tests := []struct{ in, want string }{
		{"2010-01-01", "01-01-2010"},
		{"01-01-2010", "01-01-2010"},
		{"2021-12-31", "31-12-2021"},
		{"notadate", "notadate"},
	}
	for _, tt := range tests {
		if got := ReformatDate(tt.in); got != tt.want {
			t.Errorf("ReformatDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
