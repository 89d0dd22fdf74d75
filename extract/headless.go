package extract

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/poiesic/newswire/htmltext"
)

// HeadlessStrategy renders the page in headless Chrome before conversion.
// Needed for pages that assemble their article body with JavaScript.
// Expensive; sits late in the default chain.
type HeadlessStrategy struct {
	timeout time.Duration
}

// NewHeadlessStrategy creates a HeadlessStrategy.
func NewHeadlessStrategy(timeout time.Duration) *HeadlessStrategy {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HeadlessStrategy{timeout: timeout}
}

func (s *HeadlessStrategy) Name() string {
	return StrategyHeadless
}

func (s *HeadlessStrategy) Extract(ctx context.Context, pageURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	browserCtx, cancelBrowser := chromedp.NewContext(ctx)
	defer cancelBrowser()

	var rendered string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.OuterHTML("html", &rendered),
	)
	if err != nil {
		return "", err
	}

	return htmltext.ToMarkdown(rendered)
}
