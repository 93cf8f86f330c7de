package evds

import (
	"math"

	"evds/period"
)

// Category is a top-level topical grouping of data groups.
type Category struct {
	CID   int
	Topic string
}

// Group is a named bundle of related series sharing a source and revision
// policy. Code is the natural key used by every downstream lookup.
type Group struct {
	CID          int
	Code         string
	Name         string
	Freq         Frequency
	Source       string
	SourceLink   string
	Note         string
	RevisionLink string
	UpperNote    string
	AppLink      string
}

// Series is a single named time-indexed dataset inside a group.
type Series struct {
	Code      string
	Name      string
	GroupCode string
	Start     string
	End       string
	AggMethod string
	FreqLabel string
	Tag       string
}

// CatalogSeries is one row of the enriched series catalog: a series joined
// with its group's and category's display fields. Rows whose group or
// category failed to join keep zero values for the joined fields.
type CatalogSeries struct {
	CID       int
	Topic     string
	GroupCode string
	GroupName string
	Freq      Frequency
	Code      string
	Name      string
	Start     string
	End       string
	AggMethod string
	Tag       string
}

// SeriesListing is the compact per-group view returned by ShowSeriesNames.
type SeriesListing struct {
	Code      string
	Name      string
	AggMethod string
}

// Table is a downloaded observation table: one parsed time value per row and
// one float64 column per series, with NaN marking missing observations. Row
// order follows the source; duplicate periods are not deduplicated.
type Table struct {
	Time    []period.Value
	Columns []string
	Values  map[string][]float64
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Time)
}

// Col returns a value column; unknown names yield nil.
func (t *Table) Col(name string) []float64 {
	return t.Values[name]
}

// rowAllMissing reports whether every value column is NaN at row i.
func (t *Table) rowAllMissing(i int) bool {
	for _, name := range t.Columns {
		if !math.IsNaN(t.Values[name][i]) {
			return false
		}
	}
	return true
}

// dropAllMissingRows removes the rows where every value column is missing.
// A table with no value columns keeps all rows.
func (t *Table) dropAllMissingRows() {
	if len(t.Columns) == 0 {
		return
	}
	keep := make([]int, 0, len(t.Time))
	for i := range t.Time {
		if !t.rowAllMissing(i) {
			keep = append(keep, i)
		}
	}
	if len(keep) == len(t.Time) {
		return
	}
	times := make([]period.Value, len(keep))
	values := make(map[string][]float64, len(t.Columns))
	for _, name := range t.Columns {
		values[name] = make([]float64, len(keep))
	}
	for j, i := range keep {
		times[j] = t.Time[i]
		for _, name := range t.Columns {
			values[name][j] = t.Values[name][i]
		}
	}
	t.Time = times
	t.Values = values
}
