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


// Package newswire ties the storage backend and the pipeline stages
// together behind a single Database handle.
package newswire

import (
	"log/slog"

	"github.com/poiesic/newswire/ai"
	"github.com/poiesic/newswire/feed"
	"github.com/poiesic/newswire/ingestion"
	"github.com/poiesic/newswire/search"
	"github.com/poiesic/newswire/storage"
	"github.com/poiesic/newswire/storage/badger"
	"github.com/poiesic/newswire/vector"
	"github.com/poiesic/newswire/vsync"
)

// Database bundles the article store repositories over one Badger backend
// and provides factories for the pipeline stages that run on top of it.
type Database struct {
	backend      *badger.Backend
	articles     storage.ArticleRepository
	failures     storage.FailureRepository
	syncRecords  storage.SyncRepository
	fingerprints storage.FingerprintRepository
	logger       *slog.Logger
}

// NewDatabase opens (or creates) the article database at filePath.
func NewDatabase(filePath string) (*Database, error) {
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	return &Database{
		backend:      backend,
		articles:     badger.NewArticleRepository(backend),
		failures:     badger.NewFailureRepository(backend),
		syncRecords:  badger.NewSyncRepository(backend),
		fingerprints: badger.NewFingerprintRepository(backend),
		logger:       slog.Default(),
	}, nil
}

// Close closes the underlying storage backend.
func (db *Database) Close() error {
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) Articles() storage.ArticleRepository {
	return db.articles
}

func (db *Database) Failures() storage.FailureRepository {
	return db.failures
}

func (db *Database) SyncRecords() storage.SyncRepository {
	return db.syncRecords
}

func (db *Database) Fingerprints() storage.FingerprintRepository {
	return db.fingerprints
}

// NewDownloader creates a feed downloader writing into archive.
func (db *Database) NewDownloader(fetcher ingestion.FeedFetcher, archive *feed.Archive) (*ingestion.Downloader, error) {
	return ingestion.NewDownloader(fetcher, archive, db.fingerprints, db.logger)
}

// NewIngestionPipeline creates a processing pipeline reading from archive.
func (db *Database) NewIngestionPipeline(archive *feed.Archive, extractor ingestion.ContentExtractor,
	opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.articles, db.failures, archive, extractor, opts...)
}

// NewSyncer creates a vector sync runner over this database.
func (db *Database) NewSyncer(embedder ai.Embedder, store vector.Store, opts vsync.Options) *vsync.Syncer {
	return vsync.NewSyncer(db.articles, db.syncRecords, db.failures, embedder, store, opts)
}

// NewSearcher creates a semantic searcher.
func (db *Database) NewSearcher(embedder ai.Embedder, store vector.Store, opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(embedder, store, opts...)
}
