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


// Package extract pulls article body text out of web pages. Strategies are
// tried in a fixed fallback order until one produces enough content.
package extract

import (
	"context"
	"errors"
)

// Strategy names, also usable as config values to pin a domain.
const (
	StrategyReadability = "readability"
	StrategyDOM         = "dom"
	StrategyHeadless    = "headless"
	StrategyReader      = "reader"
)

// ErrNoContent indicates that every applicable strategy was exhausted
// without producing acceptable content. It is an expected outcome for
// paywalled or script-only pages, not a pipeline fault.
var ErrNoContent = errors.New("no usable content extracted")

// Strategy extracts article text from a page URL.
type Strategy interface {
	// Name identifies the strategy in config and logs.
	Name() string

	// Extract returns the extracted text. Implementations return an error
	// for any failure; acceptance thresholds are applied by the chain.
	Extract(ctx context.Context, pageURL string) (string, error)
}
