package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/newswire/core"
	"github.com/poiesic/newswire/feed"
	"github.com/poiesic/newswire/htmltext"
	"github.com/poiesic/newswire/storage"
)

// ContentExtractor extracts article body text from a page URL.
type ContentExtractor interface {
	Extract(ctx context.Context, pageURL string) (content, strategy string, err error)
}

// LinkResolver resolves aggregator redirect links to publisher URLs.
type LinkResolver interface {
	Resolve(ctx context.Context, link string) (string, error)
}

// Source identifies one archived feed source to process.
type Source struct {
	// Name is the archive directory name, typically the feed host.
	Name string

	// FeedURL is recorded on each article as its source feed.
	FeedURL string

	// KeywordCategories reads item categories from the media:keywords
	// extension instead of the category list.
	KeywordCategories bool
}

// Stats counts item outcomes for a processing run.
type Stats struct {
	Processed int
	Skipped   int
	Failed    int
}

func (s *Stats) add(other Stats) {
	s.Processed += other.Processed
	s.Skipped += other.Skipped
	s.Failed += other.Failed
}

// Pipeline processes archived feed documents into stored articles.
// Items are deduplicated by link and processed concurrently.
type Pipeline struct {
	articles  storage.ArticleRepository
	failures  storage.FailureRepository
	archive   *feed.Archive
	parser    *feed.Parser
	extractor ContentExtractor
	resolver  LinkResolver
	pool      *ants.Pool
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent item processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithResolver sets the resolver for aggregator redirect links. Without
// one, aggregator items are fetched through their redirect link directly.
func WithResolver(resolver LinkResolver) Option {
	return func(p *Pipeline) error {
		p.resolver = resolver
		return nil
	}
}

// NewPipeline creates a processing pipeline over the given repositories,
// archive and extractor.
func NewPipeline(
	articles storage.ArticleRepository,
	failures storage.FailureRepository,
	archive *feed.Archive,
	extractor ContentExtractor,
	opts ...Option,
) (*Pipeline, error) {
	if articles == nil {
		return nil, ErrArticleRepositoryRequired
	}
	if failures == nil {
		return nil, ErrFailureRepositoryRequired
	}
	if archive == nil {
		return nil, ErrArchiveRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		articles:  articles,
		failures:  failures,
		archive:   archive,
		parser:    feed.NewParser(),
		extractor: extractor,
		pool:      pool,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// ProcessAll processes every source in order and returns combined stats.
// Per-source errors are logged; only context cancellation aborts the run.
func (p *Pipeline) ProcessAll(ctx context.Context, sources []Source) (Stats, error) {
	var total Stats
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		stats, err := p.ProcessSource(ctx, source)
		total.add(stats)
		if err != nil {
			if ctx.Err() != nil {
				return total, err
			}
			p.logger.Error("source processing failed", "source", source.Name, "error", err)
		}
	}
	p.logger.Info("processing complete",
		"processed", total.Processed, "skipped", total.Skipped, "failed", total.Failed)
	return total, nil
}

// ProcessSource processes all archived documents of one source.
//
// Phase 1 collects every item link across the archive and subtracts the
// links already stored. Phase 2 parses only the files that contain net-new
// links and processes those items on the worker pool.
func (p *Pipeline) ProcessSource(ctx context.Context, source Source) (Stats, error) {
	var stats Stats

	files, err := p.archive.List(source.Name)
	if err != nil {
		return stats, err
	}
	if len(files) == 0 {
		p.logger.Warn("no archived documents for source", "source", source.Name)
		return stats, nil
	}

	fileLinks := make(map[string][]string, len(files))
	linkSet := make(map[string]bool)
	for _, file := range files {
		items, err := p.parseFile(file, source)
		if err != nil {
			p.logger.Error("skipping unparseable document", "file", file, "error", err)
			continue
		}
		links := make([]string, 0, len(items))
		for _, item := range items {
			links = append(links, item.Link)
			linkSet[item.Link] = true
		}
		fileLinks[file] = links
	}

	allLinks := make([]string, 0, len(linkSet))
	for link := range linkSet {
		allLinks = append(allLinks, link)
	}
	known, err := p.articles.KnownLinks(ctx, allLinks)
	if err != nil {
		return stats, err
	}

	newCount := 0
	for _, link := range allLinks {
		if !known[link] {
			newCount++
		}
	}
	p.logger.Info("source scan",
		"source", source.Name, "files", len(files),
		"links", len(allLinks), "new", newCount)
	if newCount == 0 {
		return stats, nil
	}

	// seen guards against the same link appearing in several archived
	// documents; reserved at submit time so workers never race on it.
	var mu sync.Mutex
	seen := make(map[string]bool, len(known))
	for link, exists := range known {
		if exists {
			seen[link] = true
		}
	}

	var wg sync.WaitGroup
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return stats, err
		}

		hasNew := false
		for _, link := range fileLinks[file] {
			mu.Lock()
			if !seen[link] {
				hasNew = true
			}
			mu.Unlock()
			if hasNew {
				break
			}
		}
		if !hasNew {
			continue
		}

		items, err := p.parseFile(file, source)
		if err != nil {
			continue
		}
		for _, item := range items {
			mu.Lock()
			if seen[item.Link] {
				stats.Skipped++
				mu.Unlock()
				continue
			}
			seen[item.Link] = true
			mu.Unlock()

			item := item
			wg.Add(1)
			submitErr := p.pool.Submit(func() {
				defer wg.Done()
				outcome := p.processItem(ctx, source, item)
				mu.Lock()
				switch outcome {
				case outcomeProcessed:
					stats.Processed++
				case outcomeSkipped:
					stats.Skipped++
				default:
					stats.Failed++
				}
				mu.Unlock()
			})
			if submitErr != nil {
				wg.Done()
				mu.Lock()
				stats.Failed++
				mu.Unlock()
				p.logger.Error("failed to submit item", "link", item.Link, "error", submitErr)
			}
		}
	}
	wg.Wait()

	p.logger.Info("source complete", "source", source.Name,
		"processed", stats.Processed, "skipped", stats.Skipped, "failed", stats.Failed)
	return stats, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

func (p *Pipeline) parseFile(path string, source Source) ([]feed.Item, error) {
	raw, err := p.archive.Read(path)
	if err != nil {
		return nil, err
	}
	return p.parser.Parse(raw, source.KeywordCategories)
}

type outcome int

const (
	outcomeProcessed outcome = iota
	outcomeSkipped
	outcomeFailed
)

// processItem builds and stores one article. Extraction failures still
// store the article (with empty content and content source fetch_failed)
// so the failure stays inspectable next to its ledger entry.
func (p *Pipeline) processItem(ctx context.Context, source Source, item feed.Item) outcome {
	articleUUID := core.NewUUID()
	link := item.Link

	description := toMarkdownOrRaw(item.Description)

	var content string
	contentSource := core.ContentSourceInline
	fetchFailed := false

	if item.Content != "" {
		content = toMarkdownOrRaw(item.Content)
	} else {
		fetchURL := link
		if p.resolver != nil && feed.IsGoogleNewsLink(link) {
			resolved, err := p.resolver.Resolve(ctx, link)
			if err != nil {
				p.recordFailure(ctx, articleUUID, link, "url_resolution_failed", err)
				return outcomeFailed
			}
			fetchURL = resolved
			link = resolved
		}

		extracted, strategy, err := p.extractor.Extract(ctx, fetchURL)
		if err != nil {
			if ctx.Err() != nil {
				return outcomeFailed
			}
			p.recordFailure(ctx, articleUUID, link, "content_extraction_failed", err)
			contentSource = core.ContentSourceFetchFailed
			fetchFailed = true
		} else {
			content = extracted
			contentSource = core.ContentSourceFetched
			p.logger.Debug("extracted content",
				"link", fetchURL, "strategy", strategy, "words", core.CountWords(content))
		}
	}

	article := &core.Article{
		UUID:          articleUUID,
		Link:          link,
		SourceFeedURL: source.FeedURL,
		Domain:        core.DomainOf(link),
		Title:         item.Title,
		Creator:       item.Creator,
		Description:   description,
		Content:       content,
		ContentSource: contentSource,
		Category:      item.Category,
		Language:      DetectLanguage(content, description, item.Title),
		WordCount:     core.CountWords(content),
		PublishedAt:   item.Published,
	}

	if err := p.articles.AddArticle(ctx, article); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			p.logger.Debug("article already exists", "link", link)
			return outcomeSkipped
		}
		p.recordFailure(ctx, articleUUID, link, "storage_error", err)
		return outcomeFailed
	}

	if fetchFailed {
		return outcomeFailed
	}
	p.logger.Info("stored article", "title", truncateForLog(item.Title), "link", link)
	return outcomeProcessed
}

func (p *Pipeline) recordFailure(ctx context.Context, articleUUID, link, errType string, cause error) {
	p.logger.Error("item failed", "link", link, "errorType", errType, "error", cause)
	failure := &core.FailedArticle{
		UUID:         articleUUID,
		Link:         link,
		ErrorType:    errType,
		ErrorMessage: cause.Error(),
	}
	if err := p.failures.RecordArticleFailure(ctx, failure); err != nil {
		p.logger.Error("failed to record article failure", "link", link, "error", err)
	}
}

// toMarkdownOrRaw converts HTML to markdown, keeping the raw text when the
// fragment does not parse.
func toMarkdownOrRaw(source string) string {
	if source == "" {
		return ""
	}
	converted, err := htmltext.ToMarkdown(source)
	if err != nil {
		return source
	}
	return converted
}

func truncateForLog(s string) string {
	runes := []rune(s)
	if len(runes) <= 50 {
		return s
	}
	return string(runes[:50])
}
