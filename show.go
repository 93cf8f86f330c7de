package evds

import (
	"fmt"
	"io"
	"strings"
)

// ShowSeriesNames lists the cached catalog's series belonging to a group.
// An empty result means the catalog has not been built or the group has no
// series; neither is an error.
func (c *Client) ShowSeriesNames(groupCode string) []SeriesListing {
	c.mu.Lock()
	defer c.mu.Unlock()
	listings := make([]SeriesListing, 0)
	for _, s := range c.allSeries {
		if s.GroupCode == groupCode {
			listings = append(listings, SeriesListing{
				Code:      s.Code,
				Name:      s.Name,
				AggMethod: s.AggMethod,
			})
		}
	}
	return listings
}

const noteWrapWidth = 72

// ShowGroupInfo renders a group's metadata to w, one field per line with the
// frequency annotated by its label and the note word-wrapped, then returns
// the group's series listing.
func (c *Client) ShowGroupInfo(w io.Writer, groupCode string) []SeriesListing {
	g, ok := c.GroupByCode(groupCode)
	if !ok {
		fmt.Fprintf(w, "unknown data group %q (catalog not loaded?)\n", groupCode)
		return nil
	}

	fields := []struct {
		name  string
		value string
	}{
		{"Code", g.Code},
		{"Name", g.Name},
		{"Frequency", fmt.Sprintf("%d (%s)", int(g.Freq), g.Freq)},
		{"Source", g.Source},
		{"Source link", g.SourceLink},
		{"Revision policy", g.RevisionLink},
		{"Application link", g.AppLink},
		{"Upper note", g.UpperNote},
		{"Note", wordWrap(g.Note, noteWrapWidth)},
	}
	for _, field := range fields {
		if field.value == "" {
			continue
		}
		fmt.Fprintf(w, "%-17s %s\n", field.name+":", field.value)
	}
	fmt.Fprintln(w)

	listings := c.ShowSeriesNames(groupCode)
	for _, listing := range listings {
		fmt.Fprintf(w, "%-28s %-6s %s\n", listing.Code, listing.AggMethod, listing.Name)
	}
	return listings
}

// wordWrap folds text at width columns, continuation lines indented to line
// up under the field values.
func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}
	var b strings.Builder
	lineLen := 0
	for i, word := range words {
		if i > 0 {
			if lineLen+1+len(word) > width {
				b.WriteString("\n" + strings.Repeat(" ", 18))
				lineLen = 0
			} else {
				b.WriteString(" ")
				lineLen++
			}
		}
		b.WriteString(word)
		lineLen += len(word)
	}
	return b.String()
}
