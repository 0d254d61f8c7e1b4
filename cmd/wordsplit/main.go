// Copyright 2025 The WordSplit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the wordsplit command line tool and IPC server.

WordSplit splits concatenated text such as "thisisatest" into its most
probable words using unigram and bigram counts from a large English corpus.
It can filter text line by line, or run as a MessagePack IPC server for
integration with editors and other programs.

# Usage

Segment lines from stdin to stdout:

	echo thisisatest | wordsplit

Read and write files, printing the log10 score of every line:

	wordsplit -score input.txt output.txt

Run the IPC server with debug logging:

	wordsplit -server -d

Write a binary snapshot of the loaded corpus, which loads faster than the
text tables on the next start:

	wordsplit -snapshot data/corpus.bin

The data directory holds unigrams.txt and bigrams.txt, tab separated
"<key>\t<count>" lines, and optionally corpus.bin. A readable snapshot is
preferred over the text tables.

# Configuration

Settings live in a TOML file created with defaults on first run:

	[segment]
	limit = 24
	start_marker = "<s>"
	max_steps = 0
	timeout_ms = 0
	max_input = 0

	[corpus]
	data_dir = "data/"
	unigrams = "unigrams.txt"
	bigrams = "bigrams.txt"
	snapshot = "corpus.bin"

	[server]
	max_input = 4096
	cache_size = 1024

	[cli]
	show_score = false

Zero budgets mean unlimited. Command line flags override the file.

# Command Line Flags

	-data string
	    Directory containing the corpus files (default from config)
	-config string
	    Path to a config file
	-d  Enable debug mode with detailed logging
	-server
	    Run the msgpack IPC server on stdin/stdout
	-limit int
	    Longest word in characters
	-score
	    Append the log10 score to each output line
	-max-steps int
	    Score evaluations allowed per line (0 for unlimited)
	-timeout duration
	    Time allowed per line (0 for unlimited)
	-snapshot string
	    Write a corpus snapshot to this path and exit

Exit status is 1 when the corpus cannot be loaded or a line fails.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bastiangx/wordsplit/internal/cli"
	"github.com/bastiangx/wordsplit/internal/utils"
	"github.com/bastiangx/wordsplit/pkg/config"
	"github.com/bastiangx/wordsplit/pkg/corpus"
	"github.com/bastiangx/wordsplit/pkg/segment"
	"github.com/bastiangx/wordsplit/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.3.0"
	AppName = "wordsplit"
	gh      = "https://github.com/bastiangx/wordsplit"
)

// main wires config, corpus and the selected mode together.
// It does not implement logic for them and only manages the flow.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	showVersion := flag.Bool("version", false, "Show current version")
	dataDir := flag.String("data", "", "Directory containing the corpus files (default from config)")
	configFile := flag.String("config", "", "Path to a config file")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	serverMode := flag.Bool("server", false, "Run the msgpack IPC server on stdin/stdout")
	limit := flag.Int("limit", segment.DefaultLimit, "Longest word in characters")
	showScore := flag.Bool("score", false, "Append the log10 score to each output line")
	maxSteps := flag.Int("max-steps", 0, "Score evaluations allowed per line (0 for unlimited)")
	timeout := flag.Duration("timeout", 0, "Time allowed per line (0 for unlimited)")
	snapshotPath := flag.String("snapshot", "", "Write a corpus snapshot to this path and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] [infile [outfile]]\n", AppName)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	log.SetOutput(os.Stderr)
	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	appConfig, configPath, err := config.LoadConfigWithPriority(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(configPath))

	// flags given on the command line win over the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			appConfig.Corpus.DataDir = *dataDir
		case "limit":
			appConfig.Segment.Limit = *limit
		case "score":
			appConfig.CLI.ShowScore = *showScore
		case "max-steps":
			appConfig.Segment.MaxSteps = *maxSteps
		case "timeout":
			appConfig.Segment.TimeoutMs = int(timeout.Milliseconds())
		}
	})

	files := appConfig.CorpusFiles()
	resolvedDataDir := appConfig.Corpus.DataDir
	configDir := ""
	if configPath != "" {
		configDir = filepath.Dir(configPath)
	}
	if pathResolver, err := utils.NewPathResolver(configDir, files.Unigrams, files.Snapshot); err != nil {
		log.Warnf("Failed to initialize path resolver: %v", err)
	} else {
		resolvedDataDir = pathResolver.GetDataDir(appConfig.Corpus.DataDir)
	}
	log.Debugf("Using data dir at: %s", resolvedDataDir)

	start := time.Now()
	model, err := corpus.Open(ctx, resolvedDataDir, files)
	if err != nil {
		log.Fatalf("Failed to load corpus from %s: %v", resolvedDataDir, err)
	}
	log.Debugf("Corpus loaded in %v", time.Since(start))

	if *snapshotPath != "" {
		if err := corpus.WriteSnapshotFile(*snapshotPath, model); err != nil {
			log.Fatalf("Failed to write snapshot: %v", err)
		}
		log.Printf("Snapshot written to %s", *snapshotPath)
		return
	}

	seg := segment.New(model, appConfig.SegmentOptions()...)

	if *serverMode {
		log.Debug("spawning IPC")
		srv, err := server.NewServer(seg, model, appConfig.Server, os.Stdin, os.Stdout)
		if err != nil {
			log.Fatalf("Failed to create server: %v", err)
		}
		showStartupInfo(resolvedDataDir, model.Stats())
		if err := srv.Start(ctx); err != nil && ctx.Err() == nil {
			log.Fatalf("Server error: %v", err)
		}
		return
	}

	args := flag.Args()
	if len(args) > 2 {
		flag.Usage()
		log.Fatalf("expected at most 2 arguments, got %d", len(args))
	}
	args = append(args, "", "")
	if err := cli.NewRunner(seg, appConfig.CLI.ShowScore).RunFiles(ctx, args[0], args[1]); err != nil {
		log.Fatalf("%v", err)
	}
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
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
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ WordSplit ] Splits run-together text into words")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the loaded corpus.
func showStartupInfo(dataDir string, stats corpus.Stats) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	fmt.Fprintln(os.Stderr, "===========")
	fmt.Fprintln(os.Stderr, " WordSplit ")
	fmt.Fprintln(os.Stderr, "===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("data dir: ( %s )", dataDir)
	log.Infof("unigrams: %s, bigrams: %s", utils.FormatWithCommas(stats.Unigrams), utils.FormatWithCommas(stats.Bigrams))
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "===========")

	log.SetLevel(currentLevel)
}
