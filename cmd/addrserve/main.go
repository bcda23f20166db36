// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the address parsing server and CLI [DBG] application.

addrserve splits free-form Chinese mailing addresses into province, city,
county, towns, village, road and building number. The region hierarchy is
resolved against a catalog indexed in a Patricia trie, so short aliases,
skipped levels and repeated headers are all handled from the catalog alone.
It can operate as a MessagePack IPC server for integration with other
processes, or as a CLI application for testing and debugging.

# Usage

Start the server with default settings:

	addrserve

Use a specific catalog and enable debug mode:

	addrserve -catalog /path/to/regions.snap -d

Run in CLI mode for interactive testing:

	addrserve -c

# Configuration

Runtime configuration is managed through a TOML file, created with defaults
if it doesn't exist:

	[parser]
	max_length = 150
	stop_words = ["中国", "中华人民共和国"]

	[catalog]
	source = "file"
	path = "data/regions.tsv"

	[cache]
	enabled = false
	backend = "memory"

ADDRSERVE_CATALOG, ADDRSERVE_PG_DSN and ADDRSERVE_REDIS_ADDR override the
file, and may be set in a .env file in the working directory.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. See package
server for the message types.

	{"id": "req1", "cmd": "parse", "t": "山东青岛市南区宁德路金梦花园"}

# Command Line Flags

	-catalog string
	    Catalog file (.tsv, .snap, .db), overrides the config
	-config string
	    Path to config.toml
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-no-filter
	    Parse CLI lines even without Chinese characters
	-version
	    Show current version
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/addrserve/internal/cli"
	"github.com/bastiangx/addrserve/internal/logger"
	"github.com/bastiangx/addrserve/pkg/address"
	"github.com/bastiangx/addrserve/pkg/cache"
	"github.com/bastiangx/addrserve/pkg/catalog"
	"github.com/bastiangx/addrserve/pkg/config"
	"github.com/bastiangx/addrserve/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0-beta"
	AppName = "addrserve"
	gh      = "https://github.com/bastiangx/addrserve"
)

// sigHandler cancels the returned context on SIGINT/SIGTERM.
func sigHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		cancel()
		os.Exit(0)
	}()
	return ctx
}

// main only manages the flow: config, catalog, then server or CLI.
func main() {
	ctx := sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	catalogPath := flag.String("catalog", "", "Catalog file (.tsv, .snap, .db), overrides the config")
	configPath := flag.String("config", "", "Path to config.toml")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	noFilter := flag.Bool("no-filter", false, "Parse CLI input even without Chinese characters")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		logger.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		logger.SetLevel(log.WarnLevel)
	}

	appConfig, usedPath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(usedPath))
	logger.SetFormatter(logger.ParseFormatter(appConfig.Log.Formatter))

	if *catalogPath != "" {
		appConfig.Catalog.Source = config.SourceFile
		appConfig.Catalog.Path = *catalogPath
	}

	cat, idx, err := catalog.Open(ctx, appConfig.Catalog, appConfig.Parser.StopWords)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	parser, err := address.NewParser(idx, cat, address.WithMaxLength(appConfig.Parser.MaxLength))
	if err != nil {
		log.Fatalf("Failed to init parser: %v", err)
	}
	log.Debug("Parser init done")

	// CLI would be mainly used for testing and dbg purposes.
	if *cliMode {
		log.SetReportTimestamp(false)
		inputHandler := cli.NewInputHandler(parser, *noFilter)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	resultCache, err := cache.New(ctx, appConfig.Cache)
	if err != nil {
		log.Warnf("Cache disabled: %v", err)
		resultCache = nil
	}
	if resultCache != nil {
		defer resultCache.Close()
	}

	srv, err := server.NewServer(parser,
		server.WithCache(resultCache),
		server.WithMaxBatch(appConfig.Server.MaxBatch),
		server.WithWorkers(appConfig.Batch.Workers),
	)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	showStartupInfo(appConfig, cat.Len())

	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func printVersion() {
	banner := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ addrserve ] Chinese address parsing over msgpack IPC")
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(cfg *config.Config, regions int) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("===========")
	println(" addrserve ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("catalog: %s ( %d regions )", cfg.Catalog.Source, regions)
	if cfg.Cache.Enabled {
		log.Infof("cache: %s", cfg.Cache.Backend)
	}
	log.Info("status: ready")
	println("===========")

	log.SetLevel(currentLevel)
}
