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


// Package feed fetches, archives, and parses RSS and Atom feeds, and
// detects feed content changes between runs.
package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultFetchTimeout = 30 * time.Second

	// Some publishers reject default Go user agents.
	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	// maxFeedBytes caps the response body read for a single feed document.
	maxFeedBytes = 16 << 20
)

// Fetcher downloads feed documents over HTTP.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

// NewFetcher creates a Fetcher with the given timeout.
// A zero timeout uses the default.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		logger: slog.Default().With("component", "feed_fetcher"),
	}
}

// Fetch downloads the feed document at feedURL and returns its raw bytes.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, */*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed %s: unexpected status %d", feedURL, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read feed %s: %w", feedURL, err)
	}

	f.logger.Debug("fetched feed", "url", feedURL, "bytes", len(raw))
	return raw, nil
}
