package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/poiesic/newswire/htmltext"
)

// Containers checked in order; the first match with meaningful text wins.
var contentSelectors = []string{
	"article",
	"main",
	"[role=main]",
	".article-body",
	".article-content",
	".post-content",
	".entry-content",
	"#content",
}

// DOMStrategy fetches the page directly and pulls text from common article
// container elements. Handles pages Readability mangles but whose markup is
// conventional.
type DOMStrategy struct {
	client *http.Client
}

// NewDOMStrategy creates a DOMStrategy.
func NewDOMStrategy(timeout time.Duration) *DOMStrategy {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DOMStrategy{client: &http.Client{Timeout: timeout}}
}

func (s *DOMStrategy) Name() string {
	return StrategyDOM
}

func (s *DOMStrategy) Extract(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, nav, header, footer, aside").Remove()

	for _, selector := range contentSelectors {
		selection := doc.Find(selector).First()
		if selection.Length() == 0 {
			continue
		}
		inner, err := selection.Html()
		if err != nil {
			continue
		}
		text, err := htmltext.ToMarkdown(inner)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) != "" {
			return text, nil
		}
	}

	// Last resort: join all paragraphs.
	var paragraphs []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, "\n\n"), nil
}
