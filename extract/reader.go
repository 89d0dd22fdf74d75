package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ReaderStrategy delegates extraction to a hosted reader API that returns
// markdown for a URL. Final fallback in the default chain; it is the only
// strategy with a per-request cost.
type ReaderStrategy struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewReaderStrategy creates a ReaderStrategy against baseURL.
// The API key is optional; unauthenticated requests are rate-limited harder.
func NewReaderStrategy(baseURL, apiKey string, timeout time.Duration) *ReaderStrategy {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &ReaderStrategy{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *ReaderStrategy) Name() string {
	return StrategyReader
}

func (s *ReaderStrategy) Extract(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/"+pageURL, nil)
	if err != nil {
		return "", err
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reader api status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}
	return string(body), nil
}
