package evds

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
)

// WriteCSV renders the table with a "Time" header followed by the value
// columns in order. Missing observations are written as empty cells.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := append([]string{"Time"}, t.Columns...)
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for i := range t.Time {
		row[0] = t.Time[i].String()
		for j, name := range t.Columns {
			v := t.Values[name][i]
			if math.IsNaN(v) {
				row[j+1] = ""
			} else {
				row[j+1] = strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
