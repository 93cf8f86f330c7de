package evds

import (
	"context"
	"errors"
	"testing"
)

const categoriesCSV = `CATEGORY_ID,TOPIC_TITLE_ENG
1,FINANCIAL STATISTICS
2,PRICE INDICES
`

const groupsCSV = `CATEGORY_ID,DATAGROUP_CODE,DATAGROUP_NAME_ENG,FREQUENCY_STR,DATASOURCE_ENG,METADATA_LINK_ENG,NOTE_ENG,REV_POL_LINK_ENG,UPPER_NOTES_ENG,APP_CHA_LINK_ENG
1,bie_kur,Exchange Rates (Döviz Kurları),GUNLUK,CBRT,http://meta,Daily indicative rates announced at 15:30.,http://rev,Upper note,http://app
2,bie_fiyat,Consumer Price Index,AYLIK,TURKSTAT,,,,,
0,bie_eski,Discontinued Series (Arşiv),AYLIK,,,,,,
`

const kurSeriesCSV = `SERIE_CODE,SERIE_NAME_ENG,DATAGROUP_CODE,START_DATE,END_DATE,DEFAULT_AGG_METHOD_STR,FREQUENCY_STR,TAG_ENG
TP.DK.USD.A,(USD) US Dollar (Buying),bie_kur,02-01-1950,,avg,GUNLUK,exchange rate
TP.DK.EUR.A,(EUR) Euro (Buying),bie_kur,04-01-1999,,avg,HAFTALIK(CUMA),foreign` + " " + `exchange
`

const fiyatSeriesCSV = `SERIE_CODE,SERIE_NAME_ENG,DATAGROUP_CODE,START_DATE,END_DATE,DEFAULT_AGG_METHOD_STR,FREQUENCY_STR,TAG_ENG
TP.FG.J0,CPI General Index,bie_fiyat,01-01-2005,,avg,AYLIK,prices inflation
`

const eskiSeriesCSV = `SERIE_CODE,SERIE_NAME_ENG,DATAGROUP_CODE,START_DATE,END_DATE,DEFAULT_AGG_METHOD_STR,FREQUENCY_STR,TAG_ENG
TP.OLD.1,Discontinued Production Index,bie_eski,01-01-1990,31-12-2000,last,AYLIK,production
`

func catalogFixtures(svc *testService) {
	svc.fixture("/categories/", categoriesCSV)
	svc.fixture("/datagroups/", groupsCSV)
	svc.fixture("/serieList/key=TESTKEY&type=csv&code=bie_kur", kurSeriesCSV)
	svc.fixture("/serieList/key=TESTKEY&type=csv&code=bie_fiyat", fiyatSeriesCSV)
	svc.fixture("/serieList/key=TESTKEY&type=csv&code=bie_eski", eskiSeriesCSV)
}

func TestCategories(t *testing.T) {
	svc, srv := newTestService(t)
	catalogFixtures(svc)
	client, _ := newTestClient(srv)

	categories, err := client.Categories(context.Background())
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("len = %d, want 2", len(categories))
	}
	if categories[0].CID != 1 || categories[0].Topic != "FINANCIAL STATISTICS" {
		t.Errorf("categories[0] = %+v", categories[0])
	}

	// Second call is served from memory.
	if _, err := client.Categories(context.Background()); err != nil {
		t.Fatalf("Categories (cached): %v", err)
	}
	if n := svc.countRequests("/categories/"); n != 1 {
		t.Errorf("categories fetched %d times, want 1", n)
	}
}

func TestGroups(t *testing.T) {
	svc, srv := newTestService(t)
	catalogFixtures(svc)
	client, _ := newTestClient(srv)

	groups, err := client.Groups(context.Background())
	if err != nil {
		t.Fatalf("Groups: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("len = %d, want 3", len(groups))
	}
	kur := groups[0]
	if kur.Code != "bie_kur" || kur.CID != 1 {
		t.Errorf("groups[0] = %+v", kur)
	}
	if kur.Name != "Exchange Rates (Doviz Kurlari)" {
		t.Errorf("group name not folded: %q", kur.Name)
	}
	if kur.Freq != FreqDaily {
		t.Errorf("Freq = %v, want FreqDaily", kur.Freq)
	}
	if kur.Source != "CBRT" || kur.RevisionLink != "http://rev" {
		t.Errorf("group fields = %+v", kur)
	}
	if n := svc.countRequests("/datagroups/"); n != 1 {
		t.Errorf("groups fetched %d times, want 1", n)
	}
}

func TestAllSeries(t *testing.T) {
	svc, srv := newTestService(t)
	catalogFixtures(svc)
	client, _ := newTestClient(srv)
	ctx := context.Background()

	all, err := client.AllSeries(ctx)
	if err != nil {
		t.Fatalf("AllSeries: %v", err)
	}

	// Left-join cardinality: one row per listed series.
	if len(all) != 4 {
		t.Fatalf("len = %d, want 4", len(all))
	}

	// Reassembled by ascending group code regardless of fetch order.
	if all[0].GroupCode != "bie_eski" || all[1].GroupCode != "bie_fiyat" {
		t.Errorf("row order: %s, %s, %s, %s",
			all[0].GroupCode, all[1].GroupCode, all[2].GroupCode, all[3].GroupCode)
	}

	rows := make(map[string]CatalogSeries, len(all))
	for _, row := range all {
		rows[row.Code] = row
	}

	usd := rows["TP.DK.USD.A"]
	if usd.Topic != "FINANCIAL STATISTICS" || usd.GroupName != "Exchange Rates (Doviz Kurlari)" {
		t.Errorf("joined fields = %+v", usd)
	}
	if usd.CID != 1 || usd.Freq != FreqDaily || usd.AggMethod != "avg" {
		t.Errorf("usd row = %+v", usd)
	}

	// Weekly variant collapses before the ordinal remap.
	if eur := rows["TP.DK.EUR.A"]; eur.Freq != FreqWeekly {
		t.Errorf("EUR Freq = %v, want FreqWeekly", eur.Freq)
	}
	// Non-breaking spaces are stripped from tags.
	if eur := rows["TP.DK.EUR.A"]; eur.Tag != "foreignexchange" {
		t.Errorf("EUR Tag = %q", eur.Tag)
	}

	// Archived relabeling: unassigned category + archive marker.
	if old := rows["TP.OLD.1"]; old.Topic != "Archived data" {
		t.Errorf("archived topic = %q, want Archived data", old.Topic)
	}

	if !client.CatalogReady() {
		t.Error("CatalogReady() = false after build")
	}

	// A second build is served from memory: no new serieList fetches.
	before := svc.countRequests("/serieList/")
	if _, err := client.AllSeries(ctx); err != nil {
		t.Fatalf("AllSeries (cached): %v", err)
	}
	if after := svc.countRequests("/serieList/"); after != before {
		t.Errorf("serieList fetched again: %d -> %d", before, after)
	}
}

func TestAllSeriesMissingColumn(t *testing.T) {
	svc, srv := newTestService(t)
	catalogFixtures(svc)
	svc.fixture("/serieList/key=TESTKEY&type=csv&code=bie_fiyat", "WRONG,HEADERS\n1,2\n")
	client, _ := newTestClient(srv)

	_, err := client.AllSeries(context.Background())
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("err = %v, want ErrMissingColumn", err)
	}
}

func TestGroupByCode(t *testing.T) {
	svc, srv := newTestService(t)
	catalogFixtures(svc)
	client, _ := newTestClient(srv)

	if _, err := client.Groups(context.Background()); err != nil {
		t.Fatalf("Groups: %v", err)
	}
	g, ok := client.GroupByCode("bie_fiyat")
	if !ok || g.Name != "Consumer Price Index" {
		t.Errorf("GroupByCode = %+v, %v", g, ok)
	}
	if _, ok := client.GroupByCode("missing"); ok {
		t.Error("GroupByCode should miss for unknown codes")
	}
}

func TestSetCatalogRestores(t *testing.T) {
	client := newOfflineClient()
	client.SetCatalog(
		[]Category{{CID: 1, Topic: "T"}},
		[]Group{{CID: 1, Code: "g", Name: "G"}},
		[]CatalogSeries{{Code: "s", GroupCode: "g", Name: "S"}},
	)
	if !client.CatalogReady() {
		t.Fatal("CatalogReady() = false after SetCatalog")
	}
	// No server behind this client: a fetch would fail, so success proves
	// the restored catalog is used.
	all, err := client.AllSeries(context.Background())
	if err != nil || len(all) != 1 {
		t.Errorf("AllSeries = %v, %v", all, err)
	}
}
