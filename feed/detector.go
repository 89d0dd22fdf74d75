package feed

import (
	"bytes"
	"regexp"

	"github.com/poiesic/newswire/core"
)

var interTagWhitespace = regexp.MustCompile(`>\s+<`)

// Canonicalize normalizes a feed document so that formatting differences do
// not change its fingerprint. Whitespace between tags is collapsed and the
// document is trimmed; publishers that re-indent their output on every
// response would otherwise look permanently changed.
func Canonicalize(raw []byte) []byte {
	canonical := bytes.TrimSpace(raw)
	return interTagWhitespace.ReplaceAll(canonical, []byte("><"))
}

// Detect fingerprints a fetched feed document and compares it against the
// previously recorded digest. An empty previous digest means the feed has
// never been seen, which always counts as changed.
func Detect(raw []byte, previous string) (digest string, changed bool) {
	digest = core.Fingerprint(Canonicalize(raw))
	return digest, digest != previous
}
