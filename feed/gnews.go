package feed

import (
	"net/url"
	"strings"
)

const googleNewsHost = "news.google.com"

// GoogleNewsSearchURL builds the Google News RSS search URL for a query.
func GoogleNewsSearchURL(query string) string {
	values := url.Values{}
	values.Set("q", query)
	values.Set("hl", "en-US")
	values.Set("gl", "US")
	values.Set("ceid", "US:en")
	return "https://" + googleNewsHost + "/rss/search?" + values.Encode()
}

// IsGoogleNewsLink reports whether link points at the Google News
// redirector rather than a publisher page. Such links must be resolved
// before content extraction.
func IsGoogleNewsLink(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return strings.TrimPrefix(u.Hostname(), "www.") == googleNewsHost
}
