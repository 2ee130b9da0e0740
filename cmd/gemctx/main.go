package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/buihongduc132/bhd-gemini-ctx/internal/analyzer"
	"github.com/buihongduc132/bhd-gemini-ctx/internal/api"
	"github.com/buihongduc132/bhd-gemini-ctx/internal/archive"
	"github.com/buihongduc132/bhd-gemini-ctx/internal/browser"
	"github.com/buihongduc132/bhd-gemini-ctx/internal/config"
	"github.com/buihongduc132/bhd-gemini-ctx/internal/events"
	"github.com/buihongduc132/bhd-gemini-ctx/internal/extractor"
	"github.com/buihongduc132/bhd-gemini-ctx/internal/processor"
	"github.com/buihongduc132/bhd-gemini-ctx/internal/render"
	"github.com/buihongduc132/bhd-gemini-ctx/internal/replay"
	"github.com/buihongduc132/bhd-gemini-ctx/internal/store"
)

const usageText = `usage: gemctx <command> [flags]

commands:
  serve     run the extraction service (HTTP API + NATS handlers)
  extract   extract one conversation URL, or all with -all
  list      list conversations visible to the snapshot provider
  analyze   analyze every archived conversation and write the corpus report
  search    keyword search over archived conversations
  render    render an archived conversation as markdown
  replay    re-extract archived raw snapshots with the current selectors
`

func main() {
	// Best effort; a missing .env is the normal case in deployment.
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}

	switch os.Args[1] {
	case "serve":
		runServe(cfg)
	case "extract":
		runExtract(cfg, os.Args[2:])
	case "list":
		runList(cfg)
	case "analyze":
		runAnalyze(cfg)
	case "search":
		runSearch(cfg, os.Args[2:])
	case "render":
		runRender(cfg, os.Args[2:])
	case "replay":
		runReplay(cfg, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usageText)
		os.Exit(2)
	}
}

// buildPipeline wires the offline pipeline pieces shared by every command.
// The store and event bus are attached only by serve.
func buildPipeline(cfg config.Config, st processor.Storer, ev processor.Publisher) (*processor.Processor, *browser.Client, error) {
	arc, err := archive.New(cfg.ArchiveDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open archive: %w", err)
	}
	bc := browser.NewClient(cfg.BrowserURL, slog.Default())
	proc := processor.New(bc, extractor.New(slog.Default()), analyzer.New(), arc, st, ev, cfg.Workers, slog.Default())
	return proc, bc, nil
}

func runServe(cfg config.Config) {
	slog.Info("gemctx starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database (optional; archive remains the primary sink)
	var db *store.Store
	if cfg.DatabaseURL != "" {
		var err error
		db, err = store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("database connected")
	} else {
		slog.Warn("DATABASE_URL not set, running archive-only")
	}

	// NATS
	bus, err := events.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer bus.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	var st processor.Storer
	var rd api.ConversationReader
	if db != nil {
		st = db
		rd = db
	}

	proc, _, err := buildPipeline(cfg, st, bus)
	if err != nil {
		slog.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	if err := bus.Subscribe(events.SubjectExtractRequest, proc.HandleExtractRequest); err != nil {
		slog.Error("failed to subscribe to extract requests", "error", err)
		os.Exit(1)
	}

	srv := api.NewServer(cfg.Port, proc, rd, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("gemctx ready", "port", cfg.Port, "archive_dir", cfg.ArchiveDir)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("gemctx stopped")
}

func runExtract(cfg config.Config, args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	all := fs.Bool("all", false, "extract every conversation the provider lists")
	title := fs.String("title", "", "title hint used when the page title is blank")
	fs.Parse(args)

	proc, _, err := buildPipeline(cfg, nil, nil)
	if err != nil {
		slog.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if *all {
		results, err := proc.ExtractAll(ctx)
		if err != nil {
			slog.Error("extract all failed", "error", err)
			os.Exit(1)
		}
		for _, res := range results {
			fmt.Printf("%s  (%d messages)  %s\n",
				res.Conversation.Title, res.Conversation.MessageCount, res.ArchivePath)
		}
		fmt.Printf("extracted %d conversations\n", len(results))
		return
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: gemctx extract [-title T] <url> | gemctx extract -all")
		os.Exit(2)
	}

	res, err := proc.ExtractOne(ctx, fs.Arg(0), *title)
	if err != nil {
		slog.Error("extract failed", "url", fs.Arg(0), "error", err)
		os.Exit(1)
	}
	fmt.Printf("%s  (%d messages)  %s\n",
		res.Conversation.Title, res.Conversation.MessageCount, res.ArchivePath)
}

func runList(cfg config.Config) {
	_, bc, err := buildPipeline(cfg, nil, nil)
	if err != nil {
		slog.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	refs, err := bc.ListConversations(context.Background())
	if err != nil {
		slog.Error("list failed", "error", err)
		os.Exit(1)
	}
	for _, ref := range refs {
		fmt.Printf("%s\t%s\n", ref.Title, ref.URL)
	}
	fmt.Printf("%d conversations\n", len(refs))
}

func runAnalyze(cfg config.Config) {
	proc, _, err := buildPipeline(cfg, nil, nil)
	if err != nil {
		slog.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	summary, _, reportPath, err := proc.AnalyzeArchive(context.Background())
	if err != nil {
		slog.Error("analyze failed", "error", err)
		os.Exit(1)
	}

	fmt.Print(render.CorpusReport(summary))
	fmt.Printf("\nreport written to %s\n", reportPath)
}

func runSearch(cfg config.Config, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: gemctx search <query>")
		os.Exit(2)
	}

	arc, err := archive.New(cfg.ArchiveDir)
	if err != nil {
		slog.Error("open archive failed", "error", err)
		os.Exit(1)
	}

	results, err := arc.Search(args[0])
	if err != nil {
		slog.Error("search failed", "error", err)
		os.Exit(1)
	}

	for _, r := range results {
		where := fmt.Sprintf("%d matching messages", r.Matches)
		if r.TitleMatch {
			where = "title, " + where
		}
		fmt.Printf("%s  (%s)  %s\n", r.Title, where, r.Path)
		if r.Snippet != "" {
			fmt.Printf("    %s\n", r.Snippet)
		}
	}
	fmt.Printf("%d conversations matched\n", len(results))
}

func runRender(cfg config.Config, args []string) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	save := fs.Bool("save", false, "also write the transcript into the archive")
	fs.Parse(args)

	arc, err := archive.New(cfg.ArchiveDir)
	if err != nil {
		slog.Error("open archive failed", "error", err)
		os.Exit(1)
	}

	path := ""
	if fs.NArg() == 1 {
		path = fs.Arg(0)
	} else {
		// Default to the most recent archived conversation.
		paths, err := arc.ListConversations()
		if err != nil || len(paths) == 0 {
			fmt.Fprintln(os.Stderr, "no archived conversations; pass a path or run extract first")
			os.Exit(1)
		}
		path = paths[len(paths)-1]
	}

	conv, err := arc.LoadConversation(path)
	if err != nil {
		slog.Error("load conversation failed", "path", path, "error", err)
		os.Exit(1)
	}

	md := render.Transcript(conv)
	fmt.Print(md)

	if *save {
		out, err := arc.SaveTranscript(conv.Title, md)
		if err != nil {
			slog.Error("save transcript failed", "error", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "transcript written to %s\n", out)
	}
}

func runReplay(cfg config.Config, args []string) {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "parse and report without writing new structured files")
	limit := fs.Int("limit", 0, "stop after this many snapshots (0 = no limit)")
	single := fs.String("file", "", "replay a single snapshot file")
	fs.Parse(args)

	arc, err := archive.New(cfg.ArchiveDir)
	if err != nil {
		slog.Error("open archive failed", "error", err)
		os.Exit(1)
	}

	runner := replay.NewRunner(replay.Config{
		DryRun:     *dryRun,
		Limit:      *limit,
		SingleFile: *single,
	}, arc, extractor.New(slog.Default()), slog.Default())

	sum, err := runner.Run(context.Background())
	if err != nil {
		slog.Error("replay failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("replayed %d of %d snapshots (%d skipped, %d messages)\n",
		sum.Replayed, sum.SnapshotsSeen, sum.Skipped, sum.MessagesRecovered)
	for _, e := range sum.Errors {
		fmt.Fprintln(os.Stderr, "error:", e)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
