package evds

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Field selects which metadata table Search scans.
type Field int

const (
	SearchSeries Field = iota
	SearchGroups
	SearchCategories
)

// SearchResult is one matched catalog row with its relevance score
// (the number of keywords that matched).
type SearchResult struct {
	Field Field
	// Code is the group or series code; empty for category matches.
	Code string
	// Text is the searched display text (topic, group name, series name,
	// or tag).
	Text  string
	Score int
}

// Turkish-aware lowercasing: a plain ToLower folds İ/ı incorrectly for the
// catalog's source language.
var turkishLower = cases.Lower(language.Turkish)

type searchParams struct {
	useTags bool
}

// SearchOption adjusts a search.
type SearchOption func(*searchParams)

// WithTags searches the freeform series tags instead of the field's display
// text. Implies the series table regardless of Field.
func WithTags() SearchOption {
	return func(p *searchParams) { p.useTags = true }
}

// Search runs a case-insensitive keyword search over the cached metadata,
// building the catalog first if needed. Rows are scored by the number of
// matching keywords, filtered to score > 0, and ordered by descending score
// with ties left in catalog order.
func (c *Client) Search(ctx context.Context, keywords []string, field Field, opts ...SearchOption) ([]SearchResult, error) {
	var p searchParams
	for _, opt := range opts {
		opt(&p)
	}

	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			lowered = append(lowered, turkishLower.String(kw))
		}
	}
	if len(lowered) == 0 {
		return nil, nil
	}

	rows, err := c.searchRows(ctx, field, p.useTags)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0)
	for _, row := range rows {
		haystack := turkishLower.String(row.Text)
		score := 0
		for _, kw := range lowered {
			if strings.Contains(haystack, kw) {
				score++
			}
		}
		if score > 0 {
			row.Score = score
			results = append(results, row)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}

func (c *Client) searchRows(ctx context.Context, field Field, useTags bool) ([]SearchResult, error) {
	if useTags || field == SearchSeries {
		series, err := c.AllSeries(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]SearchResult, 0, len(series))
		for _, s := range series {
			text := s.Name
			if useTags {
				text = s.Tag
			}
			rows = append(rows, SearchResult{Field: SearchSeries, Code: s.Code, Text: text})
		}
		return rows, nil
	}

	switch field {
	case SearchGroups:
		groups, err := c.Groups(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]SearchResult, 0, len(groups))
		for _, g := range groups {
			rows = append(rows, SearchResult{Field: SearchGroups, Code: g.Code, Text: g.Name})
		}
		return rows, nil
	default:
		categories, err := c.Categories(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]SearchResult, 0, len(categories))
		for _, cat := range categories {
			rows = append(rows, SearchResult{Field: SearchCategories, Text: cat.Topic})
		}
		return rows, nil
	}
}
