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


package extract

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/chromedp/chromedp"
)

const defaultResolveAttempts = 3

// Resolver follows JavaScript redirectors (Google News article links) to
// the publisher URL by loading the link in headless Chrome and waiting for
// the location host to change.
type Resolver struct {
	attempts int
	timeout  time.Duration
	logger   *slog.Logger
}

// NewResolver creates a Resolver. Zero values use defaults.
func NewResolver(attempts int, timeout time.Duration) *Resolver {
	if attempts <= 0 {
		attempts = defaultResolveAttempts
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Resolver{
		attempts: attempts,
		timeout:  timeout,
		logger:   slog.Default().With("component", "link_resolver"),
	}
}

// Resolve returns the publisher URL behind a redirector link. Fails if the
// location host never leaves the redirector across all attempts.
func (r *Resolver) Resolve(ctx context.Context, link string) (string, error) {
	origin, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parse redirector link: %w", err)
	}
	originHost := origin.Hostname()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	browserCtx, cancelBrowser := chromedp.NewContext(ctx)
	defer cancelBrowser()

	if err := chromedp.Run(browserCtx, chromedp.Navigate(link)); err != nil {
		return "", fmt.Errorf("navigate redirector: %w", err)
	}

	for attempt := 0; attempt < r.attempts; attempt++ {
		// Exponential wait gives the redirect script time to fire.
		wait := time.Duration(1<<attempt) * time.Second
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return "", ctx.Err()
		}

		var location string
		if err := chromedp.Run(browserCtx, chromedp.Location(&location)); err != nil {
			return "", fmt.Errorf("read location: %w", err)
		}

		resolved, err := url.Parse(location)
		if err == nil && resolved.Hostname() != "" && resolved.Hostname() != originHost {
			r.logger.Debug("resolved redirector link", "from", link, "to", location, "attempt", attempt+1)
			return location, nil
		}

		if attempt < r.attempts-1 {
			if err := chromedp.Run(browserCtx, chromedp.Reload()); err != nil {
				return "", fmt.Errorf("reload redirector: %w", err)
			}
		}
	}

	return "", fmt.Errorf("link did not leave %s after %d attempts", originHost, r.attempts)
}
