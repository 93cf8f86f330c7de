package catalogcache

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"evds"
)

func testCatalog() ([]evds.Category, []evds.Group, []evds.CatalogSeries) {
	categories := []evds.Category{
		{CID: 1, Topic: "MARKET STATISTICS"},
		{CID: 2, Topic: "EXCHANGE RATES"},
	}
	groups := []evds.Group{
		{
			CID:        2,
			Code:       "bie_dkdovytl",
			Name:       "Exchange Rates",
			Freq:       evds.FreqDaily,
			Source:     "CBRT",
			SourceLink: "https://www.tcmb.gov.tr",
			Note:       "Buying and selling rates observed at 15:30.",
		},
	}
	series := []evds.CatalogSeries{
		{
			CID:       2,
			Topic:     "EXCHANGE RATES",
			GroupCode: "bie_dkdovytl",
			GroupName: "Exchange Rates",
			Freq:      evds.FreqDaily,
			Code:      "TP.DK.USD.A",
			Name:      "US Dollar Buying Rate",
			Start:     "02-01-1950",
			End:       "29-08-2026",
			AggMethod: "avg",
			Tag:       "dollar exchange",
		},
	}
	return categories, groups, series
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	categories, groups, series := testCatalog()
	if err := store.Save(ctx, categories, groups, series); err != nil {
		t.Fatalf("Save: %v", err)
	}

	gotCategories, gotGroups, gotSeries, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(gotCategories, categories) {
		t.Errorf("categories:\n got %+v\nwant %+v", gotCategories, categories)
	}
	if !reflect.DeepEqual(gotGroups, groups) {
		t.Errorf("groups:\n got %+v\nwant %+v", gotGroups, groups)
	}
	if !reflect.DeepEqual(gotSeries, series) {
		t.Errorf("series:\n got %+v\nwant %+v", gotSeries, series)
	}
}

func TestSaveReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	categories, groups, series := testCatalog()
	if err := store.Save(ctx, categories, groups, series); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// A rebuilt catalog fully replaces the previous snapshot.
	if err := store.Save(ctx, categories[:1], nil, nil); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	gotCategories, gotGroups, gotSeries, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(gotCategories) != 1 || gotCategories[0].Topic != "MARKET STATISTICS" {
		t.Errorf("categories = %+v", gotCategories)
	}
	if len(gotGroups) != 0 || len(gotSeries) != 0 {
		t.Errorf("stale rows survived: groups=%+v series=%+v", gotGroups, gotSeries)
	}
}

func TestLoadColdCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	categories, groups, series, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(categories)+len(groups)+len(series) != 0 {
		t.Errorf("cold cache not empty: %v %v %v", categories, groups, series)
	}
}
