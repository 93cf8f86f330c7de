package evds

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"evds/frame"
	"evds/period"
)

// Data-table housekeeping headers.
const (
	colTime     = "Tarih"
	colUnixTime = "UNIXTIME"
	colYearWeek = "YEARWEEK"
)

const defaultStartDate = "01-01-1950"

type requestParams struct {
	startDate string
	endDate   string
	freq      int
	agg       string
	keepEmpty bool
}

// RequestOption adjusts a data download.
type RequestOption func(*requestParams)

// WithDateRange restricts the observation window. Dates may be given either
// in the service's DD-MM-YYYY wire format or as YYYY-MM-DD; the latter is
// reformatted before the request is built.
func WithDateRange(start, end string) RequestOption {
	return func(p *requestParams) {
		if strings.TrimSpace(start) != "" {
			p.startDate = period.ReformatDate(start)
		}
		if strings.TrimSpace(end) != "" {
			p.endDate = period.ReformatDate(end)
		}
	}
}

// WithFrequency asks the service to resample to the ordinal frequency 1..8.
func WithFrequency(freq int) RequestOption {
	return func(p *requestParams) { p.freq = freq }
}

// WithAggregation sets the resampling aggregation (avg, first, last, max,
// min, sum). Series downloads only.
func WithAggregation(agg string) RequestOption {
	return func(p *requestParams) { p.agg = strings.ToLower(strings.TrimSpace(agg)) }
}

// WithKeepEmptyRows keeps the rows where every series value is missing;
// by default they are dropped.
func WithKeepEmptyRows() RequestOption {
	return func(p *requestParams) { p.keepEmpty = true }
}

func buildParams(opts []RequestOption) requestParams {
	p := requestParams{
		startDate: defaultStartDate,
		endDate:   period.WireDate(time.Now()),
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// GetSeriesData downloads one or more series as a single observation table.
// Underscores in codes are translated to the dotted wire form, so both
// "TP_D1TOP" and "TP.D1TOP" address the same series.
func (c *Client) GetSeriesData(ctx context.Context, codes []string, opts ...RequestOption) (*Table, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("%w: no series codes", ErrBadRequestParam)
	}
	p := buildParams(opts)
	if p.freq != 0 {
		if err := validRequestFreq(p.freq); err != nil {
			return nil, err
		}
	}
	if p.agg != "" {
		if err := validAggMethod(p.agg); err != nil {
			return nil, err
		}
	}

	f, err := c.fetchFrame(ctx, c.seriesDataURL(codes, p))
	if err != nil {
		return nil, fmt.Errorf("evds: fetch series data: %w", err)
	}
	// Series responses echo codes with underscores; dot them to match the
	// request form. Group responses keep their original headers.
	for _, h := range f.Headers() {
		if h == colTime || h == colUnixTime || h == colYearWeek {
			continue
		}
		if dotted := strings.ReplaceAll(h, "_", "."); dotted != h {
			if err := f.Rename(h, dotted); err != nil {
				return nil, err
			}
		}
	}
	return c.shapeTable(f, p)
}

// GetGroupData downloads every series of a data group. When the series
// catalog has been built, the group's series names and aggregation methods
// are additionally printed to the client's output writer.
func (c *Client) GetGroupData(ctx context.Context, groupCode string, opts ...RequestOption) (*Table, error) {
	if strings.TrimSpace(groupCode) == "" {
		return nil, fmt.Errorf("%w: no group code", ErrBadRequestParam)
	}
	p := buildParams(opts)
	if p.freq != 0 {
		if err := validRequestFreq(p.freq); err != nil {
			return nil, err
		}
	}

	f, err := c.fetchFrame(ctx, c.groupDataURL(groupCode, p))
	if err != nil {
		return nil, fmt.Errorf("evds: fetch group data: %w", err)
	}
	table, err := c.shapeTable(f, p)
	if err != nil {
		return nil, err
	}

	if c.CatalogReady() {
		for _, listing := range c.ShowSeriesNames(groupCode) {
			fmt.Fprintf(c.out, "%-28s %-6s %s\n", listing.Code, listing.AggMethod, listing.Name)
		}
	}
	return table, nil
}

// shapeTable turns a raw data response into a typed observation table:
// housekeeping columns dropped, time column renamed and parsed, numeric
// cells converted with NaN for missing, all-missing rows optionally removed.
func (c *Client) shapeTable(f *frame.Frame, p requestParams) (*Table, error) {
	f.Drop(colUnixTime)
	timeCol, err := f.Col(colTime)
	if err != nil {
		return nil, fmt.Errorf("evds: data table: %w", err)
	}
	times, err := period.ParseColumn(timeCol)
	if err != nil {
		// Unrecognized shapes are kept as raw strings; not a failure.
		c.log.Warn("evds: unrecognized date layout, column left unparsed",
			"sample", firstNonEmpty(timeCol))
	}
	f.Drop(colYearWeek)

	table := &Table{Time: times, Values: make(map[string][]float64)}
	for _, h := range f.Headers() {
		if h == colTime {
			continue
		}
		col, err := f.Col(h)
		if err != nil {
			return nil, err
		}
		values := make([]float64, len(col))
		for i, cell := range col {
			values[i] = parseValue(cell)
		}
		table.Columns = append(table.Columns, h)
		table.Values[h] = values
	}
	if !p.keepEmpty {
		table.dropAllMissingRows()
	}
	return table, nil
}

func parseValue(cell string) float64 {
	cell = strings.TrimSpace(cell)
	switch cell {
	case "", "NA", "NaN", "null", "ND":
		return math.NaN()
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
