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
	"log/slog"
	"strings"

	"github.com/poiesic/newswire/core"
)

const defaultMinContentLength = 100

// Chain runs extraction strategies in order until one yields enough text.
//
// A domain pinned to a named strategy uses only that strategy; pinning
// disables the fallback cascade for that domain so a misbehaving publisher
// cannot burn the whole chain on every article.
type Chain struct {
	strategies []Strategy
	pinned     map[string]Strategy
	minLength  int
	logger     *slog.Logger
}

// NewChain creates a Chain over strategies in fallback order.
// domainStrategies maps a domain to the name of its pinned strategy;
// unknown names are ignored with a warning.
func NewChain(strategies []Strategy, domainStrategies map[string]string, minLength int) *Chain {
	if minLength <= 0 {
		minLength = defaultMinContentLength
	}

	logger := slog.Default().With("component", "extract_chain")

	byName := make(map[string]Strategy, len(strategies))
	for _, s := range strategies {
		byName[s.Name()] = s
	}

	pinned := make(map[string]Strategy)
	for domain, name := range domainStrategies {
		s, ok := byName[name]
		if !ok {
			logger.Warn("unknown extraction strategy in config", "domain", domain, "strategy", name)
			continue
		}
		pinned[domain] = s
	}

	return &Chain{
		strategies: strategies,
		pinned:     pinned,
		minLength:  minLength,
		logger:     logger,
	}
}

// Extract runs the chain for pageURL and returns the first acceptable
// content together with the name of the strategy that produced it.
// Returns ErrNoContent when everything fails or falls short.
func (c *Chain) Extract(ctx context.Context, pageURL string) (content, strategy string, err error) {
	candidates := c.strategies
	if pinnedStrategy, ok := c.pinned[core.DomainOf(pageURL)]; ok {
		candidates = []Strategy{pinnedStrategy}
	}

	for _, s := range candidates {
		if err := ctx.Err(); err != nil {
			return "", "", err
		}

		out, err := s.Extract(ctx, pageURL)
		if err != nil {
			c.logger.Debug("extraction strategy failed",
				"strategy", s.Name(), "url", pageURL, "error", err)
			continue
		}

		out = strings.TrimSpace(out)
		if len(out) < c.minLength {
			c.logger.Debug("extraction output below threshold",
				"strategy", s.Name(), "url", pageURL,
				"length", len(out), "sample", truncate(out, 80))
			continue
		}

		return out, s.Name(), nil
	}

	return "", "", ErrNoContent
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
