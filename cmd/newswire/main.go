// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/newswire"
	"github.com/poiesic/newswire/ai"
	"github.com/poiesic/newswire/ai/openai"
	"github.com/poiesic/newswire/config"
	"github.com/poiesic/newswire/extract"
	"github.com/poiesic/newswire/feed"
	"github.com/poiesic/newswire/ingestion"
	"github.com/poiesic/newswire/search"
	"github.com/poiesic/newswire/vector/milvus"
	"github.com/poiesic/newswire/vsync"
)

const (
	fetchTimeout    = 30 * time.Second
	extractTimeout  = 30 * time.Second
	headlessTimeout = 60 * time.Second
	resolveAttempts = 3
)

func main() {
	app := &cli.App{
		Name:  "newswire",
		Usage: "RSS feed ingestion and semantic search pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "download",
				Usage:  "Fetch configured feeds and archive changed documents",
				Action: downloadCommand,
			},
			{
				Name:   "process",
				Usage:  "Extract and store articles from archived feed documents",
				Action: processCommand,
			},
			{
				Name:   "sync",
				Usage:  "Embed stored articles and sync them to the vector store",
				Action: syncCommand,
				Flags: []cli.Flag{
					namespaceFlag(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of articles per embedding batch",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of articles to sync (0 for all)",
					},
				},
			},
			{
				Name:   "retry",
				Usage:  "Retry articles recorded in the chunk failure ledger",
				Action: retryCommand,
				Flags:  []cli.Flag{namespaceFlag()},
			},
			{
				Name:      "search",
				Usage:     "Run a semantic query against synced articles",
				Action:    searchCommand,
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					namespaceFlag(),
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of results to return",
						Value: 5,
					},
				},
			},
			{
				Name:   "purge",
				Usage:  "Delete synced vectors for one article or a whole namespace",
				Action: purgeCommand,
				Flags: []cli.Flag{
					namespaceFlag(),
					&cli.StringFlag{
						Name:  "article",
						Usage: "Article UUID to delete (omit to drop the namespace)",
					},
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Confirm namespace deletion",
					},
				},
			},
			{
				Name:   "full",
				Usage:  "Run download, process, and sync in sequence",
				Action: fullCommand,
				Flags: []cli.Flag{
					namespaceFlag(),
					&cli.BoolFlag{
						Name:  "skip-vector",
						Usage: "Skip the vector sync stage",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of articles per embedding batch",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func namespaceFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "namespace",
		Aliases: []string{"n"},
		Usage:   "Vector store namespace (defaults to the configured namespace)",
	}
}

func downloadCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	cfg := config.LoadFrom(c.String("config"))
	if len(cfg.Feeds) == 0 {
		return fmt.Errorf("no feeds configured")
	}

	db, err := newswire.NewDatabase(databasePath(cfg))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	archive, err := feed.NewArchive(archivePath(cfg))
	if err != nil {
		return fmt.Errorf("failed to open feed archive: %w", err)
	}

	downloader, err := db.NewDownloader(feed.NewFetcher(fetchTimeout), archive)
	if err != nil {
		return fmt.Errorf("failed to create downloader: %w", err)
	}

	changed, err := downloader.DownloadAll(ctx, cfg.Feeds)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Downloaded %d feeds, %d changed\n", len(cfg.Feeds), changed)
	return nil
}

func processCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	cfg := config.LoadFrom(c.String("config"))

	db, err := newswire.NewDatabase(databasePath(cfg))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	archive, err := feed.NewArchive(archivePath(cfg))
	if err != nil {
		return fmt.Errorf("failed to open feed archive: %w", err)
	}

	pipeline, err := buildPipeline(db, archive, cfg)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	stats, err := pipeline.ProcessAll(ctx, sourcesFromConfig(cfg))
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Processed %d articles (%d skipped, %d failed)\n",
		stats.Processed, stats.Skipped, stats.Failed)
	return nil
}

func syncCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	cfg := config.LoadFrom(c.String("config"))

	db, err := newswire.NewDatabase(databasePath(cfg))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	embedder, store, err := buildVectorBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	syncer := db.NewSyncer(embedder, store, syncerOptions(c, cfg))

	stats, err := syncer.Sync(ctx, namespace(c, cfg), c.Int("limit"))
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	printSyncStats(stats)
	return nil
}

func retryCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	cfg := config.LoadFrom(c.String("config"))

	db, err := newswire.NewDatabase(databasePath(cfg))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	embedder, store, err := buildVectorBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	syncer := db.NewSyncer(embedder, store, syncerOptions(c, cfg))

	stats, err := syncer.RetryFailed(ctx, namespace(c, cfg))
	if err != nil {
		return fmt.Errorf("retry failed: %w", err)
	}

	printSyncStats(stats)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query argument is required")
	}

	cfg := config.LoadFrom(c.String("config"))

	embedder, store, err := buildVectorBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	searcher, err := search.NewSearcher(embedder, store)
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	results, err := searcher.Search(ctx, namespace(c, cfg), query, c.Int("top-k"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for i, result := range results {
		fmt.Printf("%d. [%.3f] %s\n", i+1, result.Score, result.Match.Title)
		if url, ok := result.Match.Metadata["url"].(string); ok && url != "" {
			fmt.Printf("   %s\n", url)
		}
		fmt.Printf("   %s\n\n", snippet(result.Match.Text))
	}
	return nil
}

func purgeCommand(c *cli.Context) error {
	ctx, stop := signalContext()
	defer stop()

	cfg := config.LoadFrom(c.String("config"))
	ns := namespace(c, cfg)

	_, store, err := buildVectorBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if uuid := c.String("article"); uuid != "" {
		if err := store.DeleteArticle(ctx, ns, uuid); err != nil {
			return fmt.Errorf("purge failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Deleted vectors for article %s in %s\n", uuid, ns)
		return nil
	}

	if !c.Bool("yes") {
		return fmt.Errorf("deleting namespace %q removes all its vectors; pass --yes to confirm", ns)
	}
	if err := store.DeleteNamespace(ctx, ns); err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Deleted namespace %s\n", ns)
	return nil
}

func fullCommand(c *cli.Context) error {
	if err := downloadCommand(c); err != nil {
		return err
	}
	if err := processCommand(c); err != nil {
		return err
	}
	if c.Bool("skip-vector") {
		fmt.Fprintln(os.Stderr, "Skipping vector sync")
		return nil
	}
	return syncCommand(c)
}

func buildPipeline(db *newswire.Database, archive *feed.Archive, cfg config.Config) (*ingestion.Pipeline, error) {
	strategies := []extract.Strategy{
		extract.NewReadabilityStrategy(extractTimeout),
		extract.NewDOMStrategy(extractTimeout),
		extract.NewHeadlessStrategy(headlessTimeout),
	}
	if cfg.Extraction.ReaderAPIURL != "" {
		strategies = append(strategies,
			extract.NewReaderStrategy(cfg.Extraction.ReaderAPIURL, cfg.Extraction.ReaderAPIKey, extractTimeout))
	}
	chain := extract.NewChain(strategies, cfg.Extraction.DomainStrategies, cfg.Extraction.MinContentLength)

	opts := []ingestion.Option{
		ingestion.WithResolver(extract.NewResolver(resolveAttempts, extractTimeout)),
	}
	if cfg.Pipeline.Workers > 0 {
		opts = append(opts, ingestion.WithPoolSize(cfg.Pipeline.Workers))
	}

	pipeline, err := db.NewIngestionPipeline(archive, chain, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}
	return pipeline, nil
}

func buildVectorBackends(ctx context.Context, cfg config.Config) (ai.Embedder, *milvus.Store, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(cfg.Embedding.Host),
		ai.WithEmbeddingModel(cfg.Embedding.Model),
		ai.WithAPIKey(cfg.Embedding.APIKey),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid embedding configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	store, err := milvus.NewStore(ctx, milvus.Config{
		Address:    cfg.Vector.Address,
		Username:   cfg.Vector.Username,
		Password:   cfg.Vector.Password,
		Database:   cfg.Vector.Database,
		Collection: cfg.Vector.Collection,
		Dimension:  cfg.Vector.Dimension,
	}, slog.Default())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to vector store: %w", err)
	}

	return embedder, store, nil
}

func syncerOptions(c *cli.Context, cfg config.Config) vsync.Options {
	opts := vsync.Options{
		BatchSize:      cfg.Pipeline.SyncBatchSize,
		WordBudget:     cfg.Pipeline.ChunkWordBudget,
		ProgressWriter: os.Stderr,
	}
	if c.Int("batch-size") > 0 {
		opts.BatchSize = c.Int("batch-size")
	}
	return opts
}

func sourcesFromConfig(cfg config.Config) []ingestion.Source {
	sources := make([]ingestion.Source, 0, len(cfg.Feeds))
	for _, fc := range cfg.Feeds {
		sources = append(sources, ingestion.Source{
			Name:              ingestion.SourceName(fc),
			FeedURL:           ingestion.FeedURL(fc),
			KeywordCategories: fc.KeywordCategories,
		})
	}
	return sources
}

func namespace(c *cli.Context, cfg config.Config) string {
	if ns := c.String("namespace"); ns != "" {
		return ns
	}
	return cfg.Vector.Namespace
}

func databasePath(cfg config.Config) string {
	return filepath.Join(cfg.Storage.DataDir, "db")
}

func archivePath(cfg config.Config) string {
	return filepath.Join(cfg.Storage.DataDir, "feeds")
}

func printSyncStats(stats vsync.Stats) {
	fmt.Fprintf(os.Stderr, "Synced %d of %d articles (%d already synced, %d skipped, %d failed)\n",
		stats.Synced, stats.Total, stats.AlreadySynced, stats.Skipped, stats.Failed)
}

func snippet(text string) string {
	const max = 200
	runes := []rune(strings.Join(strings.Fields(text), " "))
	if len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max]) + "..."
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
