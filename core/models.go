package core

import (
	"encoding/hex"
	"net/url"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// ContentSource records how an article's body text was obtained.
type ContentSource string

const (
	// ContentSourceInline means the feed item carried full content.
	ContentSourceInline ContentSource = "inline"
	// ContentSourceFetched means the body was extracted from the article page.
	ContentSourceFetched ContentSource = "fetched"
	// ContentSourceFetchFailed means every extraction strategy was exhausted;
	// the article is stored with empty content so the failure stays inspectable.
	ContentSourceFetchFailed ContentSource = "fetch_failed"
)

// LanguageUnknown is stored when language classification fails or the text
// is too short to classify.
const LanguageUnknown = "unknown"

// Article is one ingested feed item. Link is the unique key across the
// store; UUID is assigned once at creation and reused across retries of the
// same logical item.
type Article struct {
	UUID          string
	Link          string
	SourceFeedURL string
	Domain        string
	Title         string
	Creator       string
	Description   string
	Content       string
	ContentSource ContentSource
	Category      string // comma-joined tag list
	Language      string // ISO code or "unknown"
	WordCount     int
	PublishedAt   time.Time // zero when the feed date was absent or unparseable
	FetchedAt     time.Time
	UpdatedAt     time.Time
}

// FailedArticle is the durable failure ledger entry for an article that
// could not be fully persisted or extracted. Keyed by UUID; repeated
// failures update the same entry and increment AttemptCount.
type FailedArticle struct {
	UUID          string
	Link          string
	ErrorType     string
	ErrorMessage  string
	AttemptCount  int
	LastAttemptAt time.Time
	CreatedAt     time.Time
}

// SyncStatus is the vector-sync state of an article within one namespace.
type SyncStatus string

const (
	SyncStatusPending SyncStatus = "pending"
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusFailed  SyncStatus = "failed"
)

// SyncRecord tracks vector-store synchronization per (article, namespace).
// At most one record exists per pair. A synced record short-circuits
// re-embedding; a failed record may transition back to synced on retry.
type SyncRecord struct {
	ArticleUUID  string
	Namespace    string
	Status       SyncStatus
	VectorID     string
	TotalChunks  int
	SyncedChunks int
	ErrorMessage string
	SyncedAt     time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FailedChunk records an embedding or upsert failure for a single chunk of
// an article, keyed by (ArticleUUID, ChunkIndex). Sibling chunks are not
// blocked by one chunk's failure.
type FailedChunk struct {
	ArticleUUID   string
	ChunkIndex    int
	TotalChunks   int
	ErrorType     string
	ErrorMessage  string
	AttemptCount  int
	LastAttemptAt time.Time
	CreatedAt     time.Time
}

// NewUUID returns a fresh article identifier.
func NewUUID() string {
	return uuid.NewString()
}

// Fingerprint computes the BLAKE2b-256 hex digest of content. Used for feed
// change detection over canonicalized feed bytes.
func Fingerprint(content []byte) string {
	h, _ := blake2b.New(32, nil)
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

// DomainOf derives the article domain from a link, dropping any leading
// "www." the way feed publishers vary it. Returns "" for unparseable links.
func DomainOf(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// CountWords returns the whitespace-delimited word count of text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
