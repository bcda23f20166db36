package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bastiangx/addrserve/pkg/catalog"
	"github.com/bastiangx/addrserve/pkg/config"
	"github.com/bastiangx/addrserve/pkg/region"
	"github.com/spf13/cobra"
)

var (
	importDSN   string
	importTable string
	statsJSON   bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage region catalogs",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import [source] <out>",
	Short: "Validate a catalog and write it as .tsv, .snap or .db",
	Long: "Reads a catalog file, or a Postgres table with --dsn, checks that it forms a\n" +
		"valid region tree and writes it out. The output format follows the extension.",
	Args: cobra.RangeArgs(1, 2),
	RunE: runCatalogImport,
}

var catalogStatsCmd = &cobra.Command{
	Use:   "stats [source]",
	Short: "Show region and term counts of a catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCatalogStats,
}

func init() {
	catalogImportCmd.Flags().StringVar(&importDSN, "dsn", "", "read regions from Postgres instead of a file")
	catalogImportCmd.Flags().StringVar(&importTable, "table", catalog.DefaultTable, "Postgres table holding the regions")
	catalogStatsCmd.Flags().BoolVar(&statsJSON, "json", false, "print stats as JSON")

	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogStatsCmd)
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	var (
		src    catalog.Source
		outArg string
	)
	switch {
	case importDSN != "" && len(args) == 1:
		db, err := catalog.OpenPostgres(ctx, importDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		src = &catalog.PostgresSource{DB: db, Table: importTable}
		outArg = args[0]
	case importDSN == "" && len(args) == 2:
		var err error
		if src, err = catalog.OpenFile(args[0]); err != nil {
			return err
		}
		outArg = args[1]
	default:
		return fmt.Errorf("expected <source> <out>, or --dsn with <out>")
	}

	records, err := src.Load(ctx)
	if err != nil {
		return err
	}
	cat, err := region.NewCatalog(records)
	if err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	if err := writeCatalog(outArg, cat.Records()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d regions to %s\n", cat.Len(), outArg)
	return nil
}

func writeCatalog(path string, records []region.Record) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".snap", ".msgpack":
		return catalog.WriteSnapshot(path, records)
	case ".db", ".bolt":
		store, err := catalog.OpenBoltStore(path)
		if err != nil {
			return err
		}
		if err := store.Save(records); err != nil {
			store.Close()
			return err
		}
		return store.Close()
	case ".tsv", ".txt":
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := catalog.WriteTSV(file, records); err != nil {
			file.Close()
			return err
		}
		return file.Close()
	}
	return fmt.Errorf("%w: %s", catalog.ErrUnknownFormat, path)
}

type catalogStats struct {
	Source    string         `json:"source"`
	Regions   int            `json:"regions"`
	ByType    map[string]int `json:"by_type"`
	Terms     int            `json:"terms"`
	Items     int            `json:"items"`
	Ambiguous int            `json:"ambiguous"`
}

func runCatalogStats(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if len(args) == 1 {
		cfg.Catalog.Source = config.SourceFile
		cfg.Catalog.Path = args[0]
	}
	cat, idx, err := catalog.Open(cmd.Context(), cfg.Catalog, cfg.Parser.StopWords)
	if err != nil {
		return err
	}

	stats := catalogStats{
		Source:  cfg.Catalog.Source,
		Regions: cat.Len(),
		ByType:  map[string]int{},
	}
	cat.Walk(func(r *region.Region) bool {
		stats.ByType[r.Type.String()]++
		return true
	})
	is := idx.Stats()
	stats.Terms, stats.Items, stats.Ambiguous = is.Terms, is.Items, is.Ambiguous

	out := cmd.OutOrStdout()
	if statsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}
	fmt.Fprintf(out, "regions:   %d\n", stats.Regions)
	for _, t := range []region.Type{
		region.Province, region.ProvinceLevelCity1, region.City, region.ProvinceLevelCity2,
		region.CityLevelCounty, region.County, region.Street, region.Town, region.Village,
	} {
		if n := stats.ByType[t.String()]; n > 0 {
			fmt.Fprintf(out, "  %-14s %d\n", t.String(), n)
		}
	}
	fmt.Fprintf(out, "terms:     %d\n", stats.Terms)
	fmt.Fprintf(out, "items:     %d\n", stats.Items)
	fmt.Fprintf(out, "ambiguous: %d\n", stats.Ambiguous)
	return nil
}
