package ingestion

import "errors"

var (
	// ErrArticleRepositoryRequired is returned when an article repository is not provided.
	ErrArticleRepositoryRequired = errors.New("article repository required")

	// ErrFailureRepositoryRequired is returned when a failure repository is not provided.
	ErrFailureRepositoryRequired = errors.New("failure repository required")

	// ErrArchiveRequired is returned when a feed archive is not provided.
	ErrArchiveRequired = errors.New("feed archive required")

	// ErrExtractorRequired is returned when a content extractor is not provided.
	ErrExtractorRequired = errors.New("content extractor required")

	// ErrFetcherRequired is returned when a feed fetcher is not provided.
	ErrFetcherRequired = errors.New("feed fetcher required")

	// ErrFingerprintRepositoryRequired is returned when a fingerprint repository is not provided.
	ErrFingerprintRepositoryRequired = errors.New("fingerprint repository required")
)
