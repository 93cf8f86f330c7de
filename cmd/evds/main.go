package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"evds"
	"evds/internal/catalogcache"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "categories":
		err = runCategories(os.Args[2:])
	case "groups":
		err = runGroups(os.Args[2:])
	case "series":
		err = runSeries(os.Args[2:])
	case "get":
		err = runGet(os.Args[2:])
	case "group":
		err = runGroup(os.Args[2:])
	case "search":
		err = runSearch(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "evds:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: evds <command> [options]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  categories            list categories")
	fmt.Fprintln(os.Stderr, "  groups                list data groups")
	fmt.Fprintln(os.Stderr, "  series -group CODE    list a group's series")
	fmt.Fprintln(os.Stderr, "  get CODE [CODE...]    download series data")
	fmt.Fprintln(os.Stderr, "  group CODE            download a data group")
	fmt.Fprintln(os.Stderr, "  search WORD [WORD...] search the catalog")
	fmt.Fprintln(os.Stderr, "  info CODE             show a group's metadata")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "the API key is read from -key or EVDS_KEY")
}

// commonFlags registers the flags every subcommand shares.
type commonFlags struct {
	key     string
	cache   string
	verbose bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.key, "key", "", "EVDS API key (default: EVDS_KEY)")
	fs.StringVar(&c.cache, "cache", "", "sqlite catalog cache path (empty disables)")
	fs.BoolVar(&c.verbose, "verbose", false, "debug logging")
}

func (c *commonFlags) client() *evds.Client {
	cfg := evds.ConfigFromEnv()
	if strings.TrimSpace(c.key) != "" {
		cfg.Key = c.key
	}
	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return evds.NewWithConfig(cfg)
}

// ensureCatalog builds the series catalog, restoring and refreshing the
// on-disk cache when one is configured.
func ensureCatalog(ctx context.Context, client *evds.Client, cachePath string) error {
	if strings.TrimSpace(cachePath) == "" {
		_, err := client.AllSeries(ctx)
		return err
	}

	store, err := catalogcache.Open(cachePath)
	if err != nil {
		return err
	}
	defer store.Close()

	categories, groups, series, err := store.Load(ctx)
	if err != nil {
		return err
	}
	if len(series) > 0 {
		client.SetCatalog(categories, groups, series)
		return nil
	}

	all, err := client.AllSeries(ctx)
	if err != nil {
		return err
	}
	categories, err = client.Categories(ctx)
	if err != nil {
		return err
	}
	groups, err = client.Groups(ctx)
	if err != nil {
		return err
	}
	return store.Save(ctx, categories, groups, all)
}

func runCategories(args []string) error {
	fs := flag.NewFlagSet("categories", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	fs.Parse(args)

	categories, err := common.client().Categories(context.Background())
	if err != nil {
		return err
	}
	for _, cat := range categories {
		fmt.Printf("%4d  %s\n", cat.CID, cat.Topic)
	}
	return nil
}

func runGroups(args []string) error {
	fs := flag.NewFlagSet("groups", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	fs.Parse(args)

	groups, err := common.client().Groups(context.Background())
	if err != nil {
		return err
	}
	for _, g := range groups {
		fmt.Printf("%-24s %-12s %s\n", g.Code, g.Freq, g.Name)
	}
	return nil
}

func runSeries(args []string) error {
	fs := flag.NewFlagSet("series", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	group := fs.String("group", "", "data group code")
	fs.Parse(args)

	if strings.TrimSpace(*group) == "" {
		return errors.New("series: -group is required")
	}
	ctx := context.Background()
	client := common.client()
	if err := ensureCatalog(ctx, client, common.cache); err != nil {
		return err
	}
	listings := client.ShowSeriesNames(*group)
	if len(listings) == 0 {
		return fmt.Errorf("series: no series for group %q", *group)
	}
	for _, listing := range listings {
		fmt.Printf("%-28s %-6s %s\n", listing.Code, listing.AggMethod, listing.Name)
	}
	return nil
}

// dataFlags registers the download-window flags get and group share.
type dataFlags struct {
	start     string
	end       string
	freq      int
	keepEmpty bool
	out       string
}

func (d *dataFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&d.start, "start", "", "start date (YYYY-MM-DD or DD-MM-YYYY)")
	fs.StringVar(&d.end, "end", "", "end date (YYYY-MM-DD or DD-MM-YYYY)")
	fs.IntVar(&d.freq, "freq", 0, "resample frequency 1..8 (0 = native)")
	fs.BoolVar(&d.keepEmpty, "keep-empty", false, "keep rows with no values")
	fs.StringVar(&d.out, "o", "", "write table as CSV to file (default stdout)")
}

func (d *dataFlags) options() []evds.RequestOption {
	opts := []evds.RequestOption{}
	if d.start != "" || d.end != "" {
		opts = append(opts, evds.WithDateRange(d.start, d.end))
	}
	if d.freq != 0 {
		opts = append(opts, evds.WithFrequency(d.freq))
	}
	if d.keepEmpty {
		opts = append(opts, evds.WithKeepEmptyRows())
	}
	return opts
}

func writeTable(table *evds.Table, path string) error {
	if path == "" {
		return table.WriteCSV(os.Stdout)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := table.WriteCSV(file); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %d rows to %s\n", table.Len(), path)
	return nil
}

func runGet(args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	var common commonFlags
	var data dataFlags
	common.register(fs)
	data.register(fs)
	agg := fs.String("agg", "", "aggregation type (avg, first, last, max, min, sum)")
	fs.Parse(args)

	codes := fs.Args()
	if len(codes) == 0 {
		return errors.New("get: at least one series code is required")
	}
	opts := data.options()
	if *agg != "" {
		opts = append(opts, evds.WithAggregation(*agg))
	}

	table, err := common.client().GetSeriesData(context.Background(), codes, opts...)
	if err != nil {
		return err
	}
	return writeTable(table, data.out)
}

func runGroup(args []string) error {
	fs := flag.NewFlagSet("group", flag.ExitOnError)
	var common commonFlags
	var data dataFlags
	common.register(fs)
	data.register(fs)
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("group: exactly one group code is required")
	}
	ctx := context.Background()
	client := common.client()
	if common.cache != "" {
		if err := ensureCatalog(ctx, client, common.cache); err != nil {
			return err
		}
	}
	table, err := client.GetGroupData(ctx, fs.Arg(0), data.options()...)
	if err != nil {
		return err
	}
	return writeTable(table, data.out)
}

func runSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	fieldName := fs.String("field", "series", "table to search: series, groups, categories")
	tags := fs.Bool("tags", false, "search series tags")
	fs.Parse(args)

	if fs.NArg() == 0 {
		return errors.New("search: at least one keyword is required")
	}
	field, err := parseField(*fieldName)
	if err != nil {
		return err
	}

	ctx := context.Background()
	client := common.client()
	if common.cache != "" {
		if err := ensureCatalog(ctx, client, common.cache); err != nil {
			return err
		}
	}
	opts := []evds.SearchOption{}
	if *tags {
		opts = append(opts, evds.WithTags())
	}
	results, err := client.Search(ctx, fs.Args(), field, opts...)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Printf("%2d  %-28s %s\n", r.Score, r.Code, r.Text)
	}
	return nil
}

func parseField(name string) (evds.Field, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "series":
		return evds.SearchSeries, nil
	case "groups":
		return evds.SearchGroups, nil
	case "categories":
		return evds.SearchCategories, nil
	default:
		return 0, fmt.Errorf("search: unknown field %q", name)
	}
}

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	var common commonFlags
	common.register(fs)
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("info: exactly one group code is required")
	}
	ctx := context.Background()
	client := common.client()
	if err := ensureCatalog(ctx, client, common.cache); err != nil {
		return err
	}
	client.ShowGroupInfo(os.Stdout, fs.Arg(0))
	return nil
}
