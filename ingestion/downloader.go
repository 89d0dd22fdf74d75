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


package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/newswire/config"
	"github.com/poiesic/newswire/core"
	"github.com/poiesic/newswire/feed"
	"github.com/poiesic/newswire/storage"
)

// FeedFetcher downloads a feed document.
type FeedFetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]byte, error)
}

// Downloader fetches configured feeds and archives the ones whose content
// changed since the last run. Change detection compares a fingerprint of
// the canonicalized document against the stored one, so publisher
// re-indentation does not count as a change.
type Downloader struct {
	fetcher      FeedFetcher
	archive      *feed.Archive
	fingerprints storage.FingerprintRepository
	logger       *slog.Logger
}

// NewDownloader creates a Downloader.
func NewDownloader(fetcher FeedFetcher, archive *feed.Archive,
	fingerprints storage.FingerprintRepository, logger *slog.Logger) (*Downloader, error) {

	if fetcher == nil {
		return nil, ErrFetcherRequired
	}
	if archive == nil {
		return nil, ErrArchiveRequired
	}
	if fingerprints == nil {
		return nil, ErrFingerprintRepositoryRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{
		fetcher:      fetcher,
		archive:      archive,
		fingerprints: fingerprints,
		logger:       logger.With("component", "downloader"),
	}, nil
}

// DownloadAll fetches every configured feed and returns how many changed
// documents were archived. Per-feed errors are logged and do not abort the
// run; only context cancellation does.
func (d *Downloader) DownloadAll(ctx context.Context, feeds []config.FeedConfig) (int, error) {
	archived := 0
	for _, fc := range feeds {
		if err := ctx.Err(); err != nil {
			return archived, err
		}

		changed, err := d.Download(ctx, fc)
		if err != nil {
			d.logger.Error("feed download failed", "feed", fc.Name, "error", err)
			continue
		}
		if changed {
			archived++
		}
	}
	d.logger.Info("download complete", "feeds", len(feeds), "archived", archived)
	return archived, nil
}

// Download fetches one feed and archives it if its content changed.
// Returns whether a new document was archived.
func (d *Downloader) Download(ctx context.Context, fc config.FeedConfig) (bool, error) {
	feedURL := FeedURL(fc)
	if feedURL == "" {
		return false, fmt.Errorf("feed %q has neither url nor google news query", fc.Name)
	}

	raw, err := d.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return false, fmt.Errorf("fetch %s: %w", feedURL, err)
	}

	previous, err := d.fingerprints.GetFingerprint(ctx, feedURL)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return false, fmt.Errorf("read fingerprint for %s: %w", feedURL, err)
	}

	digest, changed := feed.Detect(raw, previous)
	if !changed {
		d.logger.Debug("feed unchanged", "feed", fc.Name, "url", feedURL)
		return false, nil
	}

	// Fingerprint is persisted only after the document is safely on disk,
	// so an interrupted run re-fetches rather than losing items.
	path, err := d.archive.Save(SourceName(fc), feed.Canonicalize(raw))
	if err != nil {
		return false, fmt.Errorf("archive %s: %w", feedURL, err)
	}
	if err := d.fingerprints.PutFingerprint(ctx, feedURL, digest); err != nil {
		return false, fmt.Errorf("store fingerprint for %s: %w", feedURL, err)
	}

	d.logger.Info("archived changed feed", "feed", fc.Name, "path", path)
	return true, nil
}

// FeedURL resolves the effective URL of a configured feed. Google News
// query feeds build their URL from the query.
func FeedURL(fc config.FeedConfig) string {
	if fc.GoogleNewsQuery != "" {
		return feed.GoogleNewsSearchURL(fc.GoogleNewsQuery)
	}
	return fc.URL
}

// SourceName derives the archive directory name for a feed: the feed host,
// falling back to the configured name.
func SourceName(fc config.FeedConfig) string {
	if domain := core.DomainOf(FeedURL(fc)); domain != "" {
		return domain
	}
	return fc.Name
}
