package extract

import (
	"context"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/poiesic/newswire/htmltext"
)

// ReadabilityStrategy extracts content with a Readability port. It is the
// cheapest strategy and runs first in the default chain.
type ReadabilityStrategy struct {
	timeout time.Duration
}

// NewReadabilityStrategy creates a ReadabilityStrategy.
func NewReadabilityStrategy(timeout time.Duration) *ReadabilityStrategy {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ReadabilityStrategy{timeout: timeout}
}

func (s *ReadabilityStrategy) Name() string {
	return StrategyReadability
}

func (s *ReadabilityStrategy) Extract(ctx context.Context, pageURL string) (string, error) {
	article, err := readability.FromURL(pageURL, s.timeout)
	if err != nil {
		return "", err
	}
	return htmltext.ToMarkdown(article.Content)
}
