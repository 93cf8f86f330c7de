package evds

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/exp/maps"

	"evds/frame"
)

// Verbatim response headers. The service renames nothing for us; a header
// drift here surfaces as ErrMissingColumn before any rows are built.
const (
	colCategoryID   = "CATEGORY_ID"
	colTopicTitle   = "TOPIC_TITLE_ENG"
	colGroupCode    = "DATAGROUP_CODE"
	colGroupName    = "DATAGROUP_NAME_ENG"
	colFrequencyStr = "FREQUENCY_STR"
	colDataSource   = "DATASOURCE_ENG"
	colMetaLink     = "METADATA_LINK_ENG"
	colNote         = "NOTE_ENG"
	colRevPolLink   = "REV_POL_LINK_ENG"
	colUpperNotes   = "UPPER_NOTES_ENG"
	colAppChaLink   = "APP_CHA_LINK_ENG"
	colSerieCode    = "SERIE_CODE"
	colSerieName    = "SERIE_NAME_ENG"
	colStartDate    = "START_DATE"
	colEndDate      = "END_DATE"
	colAggMethod    = "DEFAULT_AGG_METHOD_STR"
	colTag          = "TAG_ENG"
)

// archiveMarker flags retired data groups; see relabelArchived.
const archiveMarker = "arsiv"

// nbsp shows up in freeform tags and is stripped at load time.
const nbsp = " "

// Categories returns the category table, fetching it on first use.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureCategoriesLocked(ctx); err != nil {
		return nil, err
	}
	return append([]Category(nil), c.categories...), nil
}

// Groups returns the data-group table, fetching it on first use.
func (c *Client) Groups(ctx context.Context) ([]Group, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureGroupsLocked(ctx); err != nil {
		return nil, err
	}
	return append([]Group(nil), c.groups...), nil
}

// AllSeries returns the enriched series catalog, building it on first use:
// one serieList fetch per data group, reassembled by ascending group code,
// then joined with the group and category tables. The construction is
// serialized; concurrent callers share one build.
func (c *Client) AllSeries(ctx context.Context) ([]CatalogSeries, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensureAllSeriesLocked(ctx); err != nil {
		return nil, err
	}
	return append([]CatalogSeries(nil), c.allSeries...), nil
}

// CatalogReady reports whether the enriched catalog has been built.
func (c *Client) CatalogReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.allSeries) > 0
}

// SetCatalog installs a previously saved catalog, bypassing the fetch. The
// CLI uses this to restore its on-disk cache.
func (c *Client) SetCatalog(categories []Category, groups []Group, series []CatalogSeries) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories = append([]Category(nil), categories...)
	c.groups = append([]Group(nil), groups...)
	c.allSeries = append([]CatalogSeries(nil), series...)
}

// GroupByCode looks up a cached group.
func (c *Client) GroupByCode(code string) (Group, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, g := range c.groups {
		if g.Code == code {
			return g, true
		}
	}
	return Group{}, false
}

func (c *Client) ensureCategoriesLocked(ctx context.Context) error {
	if len(c.categories) > 0 {
		return nil
	}
	f, err := c.fetchFrame(ctx, c.categoriesURL())
	if err != nil {
		return fmt.Errorf("evds: fetch categories: %w", err)
	}
	if err := f.Project(colCategoryID, colTopicTitle); err != nil {
		return fmt.Errorf("evds: categories: %w", err)
	}
	categories := make([]Category, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		cid, _ := strconv.Atoi(f.Cell(colCategoryID, i))
		categories = append(categories, Category{
			CID:   cid,
			Topic: f.Cell(colTopicTitle, i),
		})
	}
	c.categories = categories
	return nil
}

func (c *Client) ensureGroupsLocked(ctx context.Context) error {
	if len(c.groups) > 0 {
		return nil
	}
	f, err := c.fetchFrame(ctx, c.groupsURL())
	if err != nil {
		return fmt.Errorf("evds: fetch groups: %w", err)
	}
	for _, col := range []string{colCategoryID, colGroupCode, colGroupName, colFrequencyStr} {
		if !f.Has(col) {
			return fmt.Errorf("evds: groups: %w: %q", ErrMissingColumn, col)
		}
	}
	groups := make([]Group, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		cid, _ := strconv.Atoi(f.Cell(colCategoryID, i))
		groups = append(groups, Group{
			CID:          cid,
			Code:         f.Cell(colGroupCode, i),
			Name:         ASCIIFold(f.Cell(colGroupName, i)),
			Freq:         freqFromNative(f.Cell(colFrequencyStr, i)),
			Source:       f.Cell(colDataSource, i),
			SourceLink:   f.Cell(colMetaLink, i),
			Note:         f.Cell(colNote, i),
			RevisionLink: f.Cell(colRevPolLink, i),
			UpperNote:    f.Cell(colUpperNotes, i),
			AppLink:      f.Cell(colAppChaLink, i),
		})
	}
	c.groups = groups
	return nil
}

func (c *Client) ensureAllSeriesLocked(ctx context.Context) error {
	if len(c.allSeries) > 0 {
		return nil
	}
	if err := c.ensureCategoriesLocked(ctx); err != nil {
		return err
	}
	if err := c.ensureGroupsLocked(ctx); err != nil {
		return err
	}

	codes := make([]string, 0, len(c.groups))
	seen := make(map[string]struct{}, len(c.groups))
	for _, g := range c.groups {
		if _, ok := seen[g.Code]; ok {
			continue
		}
		seen[g.Code] = struct{}{}
		codes = append(codes, g.Code)
	}

	lists, err := c.fetchSerieLists(ctx, codes)
	if err != nil {
		return err
	}

	// Deterministic reassembly regardless of fetch completion order.
	ordered := maps.Keys(lists)
	sort.Strings(ordered)

	series := make([]Series, 0, 16*len(ordered))
	for _, code := range ordered {
		rows, err := seriesFromFrame(lists[code], code)
		if err != nil {
			return err
		}
		series = append(series, rows...)
	}
	c.allSeries = c.joinSeries(series)
	return nil
}

// fetchSerieLists downloads each group's series listing with a bounded pool
// of workers. The first error wins; remaining work is abandoned.
func (c *Client) fetchSerieLists(ctx context.Context, codes []string) (map[string]*frame.Frame, error) {
	type result struct {
		code string
		f    *frame.Frame
		err  error
	}

	jobs := make(chan string)
	results := make(chan result)
	var wg sync.WaitGroup

	workers := c.config.FetchWorkers
	if workers > len(codes) {
		workers = len(codes)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for code := range jobs {
				f, err := c.fetchFrame(ctx, c.serieListURL(code))
				results <- result{code: code, f: f, err: err}
			}
		}()
	}
	go func() {
		defer close(jobs)
		for _, code := range codes {
			select {
			case jobs <- code:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	lists := make(map[string]*frame.Frame, len(codes))
	var firstErr error
	for r := range results {
		if r.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("evds: fetch series list for %s: %w", r.code, r.err)
			}
			continue
		}
		lists[r.code] = r.f
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return lists, nil
}

func seriesFromFrame(f *frame.Frame, groupCode string) ([]Series, error) {
	for _, col := range []string{colSerieCode, colSerieName} {
		if !f.Has(col) {
			return nil, fmt.Errorf("evds: series list %s: %w: %q", groupCode, ErrMissingColumn, col)
		}
	}
	rows := make([]Series, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		code := f.Cell(colGroupCode, i)
		if code == "" {
			code = groupCode
		}
		rows = append(rows, Series{
			Code:      f.Cell(colSerieCode, i),
			Name:      f.Cell(colSerieName, i),
			GroupCode: code,
			Start:     f.Cell(colStartDate, i),
			End:       f.Cell(colEndDate, i),
			AggMethod: f.Cell(colAggMethod, i),
			FreqLabel: collapseWeekly(strings.TrimSpace(f.Cell(colFrequencyStr, i))),
			Tag:       strings.ReplaceAll(f.Cell(colTag, i), nbsp, ""),
		})
	}
	return rows, nil
}

// joinSeries flattens Series←Group←Category into one row per series.
// Left-join semantics: rows that fail to join keep zero-valued fields and
// are never dropped.
func (c *Client) joinSeries(series []Series) []CatalogSeries {
	groupsByCode := make(map[string]Group, len(c.groups))
	for _, g := range c.groups {
		groupsByCode[g.Code] = g
	}
	topicByCID := make(map[int]string, len(c.categories))
	for _, cat := range c.categories {
		topicByCID[cat.CID] = cat.Topic
	}

	out := make([]CatalogSeries, 0, len(series))
	for _, s := range series {
		row := CatalogSeries{
			GroupCode: s.GroupCode,
			Code:      s.Code,
			Name:      ASCIIFold(s.Name),
			Start:     s.Start,
			End:       s.End,
			AggMethod: s.AggMethod,
			Tag:       s.Tag,
			Freq:      freqFromNative(s.FreqLabel),
		}
		if g, ok := groupsByCode[s.GroupCode]; ok {
			row.CID = g.CID
			row.GroupName = g.Name
			row.Topic = topicByCID[g.CID]
		}
		relabelArchived(&row)
		out = append(out, row)
	}
	return out
}

// relabelArchived gives retired groups a topic of their own: the service
// parks them under the unassigned category (id 0) with an archive marker in
// the group name.
func relabelArchived(row *CatalogSeries) {
	if row.CID != 0 {
		return
	}
	if strings.Contains(strings.ToLower(ASCIIFold(row.GroupName)), archiveMarker) {
		row.Topic = "Archived data"
	}
}
