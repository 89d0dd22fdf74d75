package storage

import (
	"context"

	"github.com/poiesic/newswire/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ArticleRepository provides operations for managing ingested articles.
type ArticleRepository interface {
	Repository
	// AddArticle persists a new article. The article Link is the unique key:
	// a second insert with the same link fails with ErrDuplicateKey and
	// leaves the stored article untouched.
	AddArticle(ctx context.Context, article *core.Article) error

	// UpdateArticle rewrites an existing article in place, refreshing
	// UpdatedAt. Returns ErrNotFound if the article doesn't exist.
	UpdateArticle(ctx context.Context, article *core.Article) error

	// GetArticle retrieves a single article by UUID.
	// Returns ErrNotFound if the article doesn't exist.
	GetArticle(ctx context.Context, uuid string) (*core.Article, error)

	// GetArticleByLink retrieves a single article by its link.
	// Returns ErrNotFound if no article with that link exists.
	GetArticleByLink(ctx context.Context, link string) (*core.Article, error)

	// GetArticles retrieves multiple articles by their UUIDs.
	// Returns only the articles that exist (no error for missing articles).
	GetArticles(ctx context.Context, uuids ...string) ([]*core.Article, error)

	// ListArticles returns up to limit articles in key order. A limit <= 0
	// means no limit.
	ListArticles(ctx context.Context, limit int) ([]*core.Article, error)

	// KnownLinks reports which of the given links already exist in storage.
	// Used for batch deduplication before processing feed archives.
	KnownLinks(ctx context.Context, links []string) (map[string]bool, error)

	// CountArticles returns the number of stored articles.
	CountArticles(ctx context.Context) (int, error)
}

// FailureRepository is the durable failure ledger for articles and chunks.
// Entries are upserted: recording a failure for an existing key increments
// its attempt count rather than creating a second entry.
type FailureRepository interface {
	Repository
	// RecordArticleFailure upserts a failure entry keyed by article UUID.
	RecordArticleFailure(ctx context.Context, failure *core.FailedArticle) error

	// GetArticleFailure retrieves the failure entry for an article UUID.
	// Returns ErrNotFound if no failure is recorded.
	GetArticleFailure(ctx context.Context, uuid string) (*core.FailedArticle, error)

	// ListArticleFailures returns all recorded article failures.
	ListArticleFailures(ctx context.Context) ([]*core.FailedArticle, error)

	// ClearArticleFailure removes the failure entry for an article UUID.
	// Clearing a missing entry is not an error.
	ClearArticleFailure(ctx context.Context, uuid string) error

	// RecordChunkFailure upserts a failure entry keyed by (uuid, chunk index).
	RecordChunkFailure(ctx context.Context, failure *core.FailedChunk) error

	// ListChunkFailures returns all recorded chunk failures.
	ListChunkFailures(ctx context.Context) ([]*core.FailedChunk, error)

	// ClearChunkFailures removes all chunk failure entries for an article.
	// Clearing when none exist is not an error.
	ClearChunkFailures(ctx context.Context, uuid string) error
}

// SyncRepository tracks vector-store synchronization state per
// (article, namespace) pair. At most one record exists per pair.
type SyncRepository interface {
	Repository
	// GetSyncRecord retrieves the record for (uuid, namespace).
	// Returns ErrNotFound if the pair has never been synced or marked.
	GetSyncRecord(ctx context.Context, uuid, namespace string) (*core.SyncRecord, error)

	// PutSyncRecord upserts the record for its (uuid, namespace) pair,
	// refreshing UpdatedAt and setting CreatedAt on first write.
	PutSyncRecord(ctx context.Context, record *core.SyncRecord) error

	// ListSyncRecords returns all records in namespace with the given
	// status, in key order.
	ListSyncRecords(ctx context.Context, namespace string, status core.SyncStatus) ([]*core.SyncRecord, error)

	// DeleteSyncRecords removes all records in namespace.
	// Returns the number of records removed.
	DeleteSyncRecords(ctx context.Context, namespace string) (int, error)
}

// FingerprintRepository persists feed content fingerprints between runs.
// A missing fingerprint means the feed has never been seen.
type FingerprintRepository interface {
	Repository
	// GetFingerprint returns the stored digest for a feed URL.
	// Returns ErrNotFound if the feed has no recorded fingerprint.
	GetFingerprint(ctx context.Context, feedURL string) (string, error)

	// PutFingerprint stores the digest for a feed URL, replacing any
	// previous value.
	PutFingerprint(ctx context.Context, feedURL, digest string) error

	// ListFingerprints returns all stored (feed URL, digest) pairs.
	ListFingerprints(ctx context.Context) (map[string]string, error)
}
