package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/bastiangx/addrserve/pkg/address"
	"github.com/bastiangx/addrserve/pkg/catalog"
	"github.com/bastiangx/addrserve/pkg/config"
	"github.com/spf13/cobra"
)

var (
	parseCatalog string
	parseWorkers int
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse one address per line and print JSON lines",
	Long: "Reads addresses from file, or stdin when no file is given, parses them on\n" +
		"several workers and prints one JSON object per address. Output order follows\n" +
		"completion, the \"line\" field gives the input line.",
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVar(&parseCatalog, "catalog", "", "catalog file, overrides the config")
	parseCmd.Flags().IntVarP(&parseWorkers, "workers", "w", 0, "parallel workers (default: config, then one per CPU)")
}

type parsedLine struct {
	Line int `json:"line"`
	address.View
}

func runParse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := loadConfig()
	if parseCatalog != "" {
		cfg.Catalog.Source = config.SourceFile
		cfg.Catalog.Path = parseCatalog
	}
	workers := parseWorkers
	if workers <= 0 {
		workers = cfg.Batch.Workers
	}

	var input io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()
		input = file
	}

	cat, idx, err := catalog.Open(ctx, cfg.Catalog, cfg.Parser.StopWords)
	if err != nil {
		return err
	}
	parser, err := address.NewParser(idx, cat, address.WithMaxLength(cfg.Parser.MaxLength))
	if err != nil {
		return err
	}

	queue := cfg.Batch.QueueSize
	if queue <= 0 {
		queue = 1
	}
	in := make(chan address.Job, queue)
	out := make(chan address.Result, queue)

	readErr := make(chan error, 1)
	go func() {
		defer close(in)
		scanner := bufio.NewScanner(input)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		line := 0
		for scanner.Scan() {
			line++
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			select {
			case in <- address.Job{ID: strconv.Itoa(line), Text: text}:
			case <-ctx.Done():
				readErr <- ctx.Err()
				return
			}
		}
		readErr <- scanner.Err()
	}()

	writeErr := make(chan error, 1)
	go func() {
		w := bufio.NewWriter(cmd.OutOrStdout())
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		var err error
		for res := range out {
			if err != nil {
				continue
			}
			n, _ := strconv.Atoi(res.ID)
			err = enc.Encode(parsedLine{Line: n, View: res.Record.View()})
		}
		if err == nil {
			err = w.Flush()
		}
		writeErr <- err
	}()

	b := &address.Batch{Parser: parser, Workers: workers}
	stats, runErr := b.Run(ctx, in, out)
	if err := <-writeErr; err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if err := <-readErr; err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "parsed %d addresses: %d interpreted, %d not interpreted in %s\n",
		stats.Processed, stats.Interpreted, stats.Failed, stats.Elapsed)
	return nil
}
