// Package catalogcache persists the EVDS metadata catalog in a local sqlite
// file so repeated CLI invocations do not refetch it. Observation data is
// never stored here.
package catalogcache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"evds"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("catalogcache: path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save replaces the cached catalog with the given one, transactionally.
func (s *Store) Save(ctx context.Context, categories []evds.Category, groups []evds.Group, series []evds.CatalogSeries) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, stmt := range []string{
		`DELETE FROM categories;`,
		`DELETE FROM data_groups;`,
		`DELETE FROM series_catalog;`,
	} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	catStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO categories (cid, topic, cached_at) VALUES (?, ?, ?)
		ON CONFLICT(cid) DO UPDATE SET topic = excluded.topic, cached_at = excluded.cached_at
	`)
	if err != nil {
		return err
	}
	defer catStmt.Close()
	for _, cat := range categories {
		if _, err = catStmt.ExecContext(ctx, cat.CID, cat.Topic, now); err != nil {
			return err
		}
	}

	groupStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO data_groups (
			code, cid, name, freq, source, source_link, note,
			revision_link, upper_note, app_link, cached_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			cid = excluded.cid, name = excluded.name, freq = excluded.freq,
			source = excluded.source, source_link = excluded.source_link,
			note = excluded.note, revision_link = excluded.revision_link,
			upper_note = excluded.upper_note, app_link = excluded.app_link,
			cached_at = excluded.cached_at
	`)
	if err != nil {
		return err
	}
	defer groupStmt.Close()
	for _, g := range groups {
		if _, err = groupStmt.ExecContext(ctx,
			g.Code, g.CID, g.Name, int(g.Freq), g.Source, g.SourceLink,
			g.Note, g.RevisionLink, g.UpperNote, g.AppLink, now,
		); err != nil {
			return err
		}
	}

	seriesStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO series_catalog (
			code, cid, topic, group_code, group_name, freq,
			name, start_date, end_date, agg_method, tag, cached_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			cid = excluded.cid, topic = excluded.topic,
			group_code = excluded.group_code, group_name = excluded.group_name,
			freq = excluded.freq, name = excluded.name,
			start_date = excluded.start_date, end_date = excluded.end_date,
			agg_method = excluded.agg_method, tag = excluded.tag,
			cached_at = excluded.cached_at
	`)
	if err != nil {
		return err
	}
	defer seriesStmt.Close()
	for _, row := range series {
		if _, err = seriesStmt.ExecContext(ctx,
			row.Code, row.CID, row.Topic, row.GroupCode, row.GroupName,
			int(row.Freq), row.Name, row.Start, row.End, row.AggMethod,
			row.Tag, now,
		); err != nil {
			return err
		}
	}

	err = tx.Commit()
	return err
}

// Load returns the cached catalog. All three slices empty means a cold
// cache, not an error.
func (s *Store) Load(ctx context.Context) ([]evds.Category, []evds.Group, []evds.CatalogSeries, error) {
	categories, err := s.loadCategories(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	groups, err := s.loadGroups(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	series, err := s.loadSeries(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return categories, groups, series, nil
}

func (s *Store) loadCategories(ctx context.Context) ([]evds.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT cid, topic FROM categories ORDER BY cid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []evds.Category
	for rows.Next() {
		var cat evds.Category
		if err := rows.Scan(&cat.CID, &cat.Topic); err != nil {
			return nil, err
		}
		out = append(out, cat)
	}
	return out, rows.Err()
}

func (s *Store) loadGroups(ctx context.Context) ([]evds.Group, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, cid, name, freq, source, source_link, note,
		       revision_link, upper_note, app_link
		FROM data_groups ORDER BY code
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []evds.Group
	for rows.Next() {
		var g evds.Group
		var freq int
		if err := rows.Scan(&g.Code, &g.CID, &g.Name, &freq, &g.Source,
			&g.SourceLink, &g.Note, &g.RevisionLink, &g.UpperNote, &g.AppLink); err != nil {
			return nil, err
		}
		g.Freq = evds.Frequency(freq)
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) loadSeries(ctx context.Context) ([]evds.CatalogSeries, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, cid, topic, group_code, group_name, freq,
		       name, start_date, end_date, agg_method, tag
		FROM series_catalog ORDER BY group_code, code
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []evds.CatalogSeries
	for rows.Next() {
		var row evds.CatalogSeries
		var freq int
		if err := rows.Scan(&row.Code, &row.CID, &row.Topic, &row.GroupCode,
			&row.GroupName, &freq, &row.Name, &row.Start, &row.End,
			&row.AggMethod, &row.Tag); err != nil {
			return nil, err
		}
		row.Freq = evds.Frequency(freq)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) migrate() error {
	statements := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS categories (
			cid INTEGER PRIMARY KEY,
			topic TEXT NOT NULL,
			cached_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS data_groups (
			code TEXT PRIMARY KEY,
			cid INTEGER NOT NULL,
			name TEXT NOT NULL,
			freq INTEGER NOT NULL,
			source TEXT,
			source_link TEXT,
			note TEXT,
			revision_link TEXT,
			upper_note TEXT,
			app_link TEXT,
			cached_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS series_catalog (
			code TEXT PRIMARY KEY,
			cid INTEGER NOT NULL,
			topic TEXT,
			group_code TEXT NOT NULL,
			group_name TEXT,
			freq INTEGER NOT NULL,
			name TEXT NOT NULL,
			start_date TEXT,
			end_date TEXT,
			agg_method TEXT,
			tag TEXT,
			cached_at TEXT NOT NULL
		);`,
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}
	return nil
}
