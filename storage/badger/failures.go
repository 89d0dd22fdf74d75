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


package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/newswire/core"
	"github.com/poiesic/newswire/storage"
)

// FailureRepository implements storage.FailureRepository for BadgerDB.
type FailureRepository struct {
	backend *Backend
}

var _ storage.FailureRepository = (*FailureRepository)(nil)

// NewFailureRepository creates a new FailureRepository.
func NewFailureRepository(backend *Backend) *FailureRepository {
	return &FailureRepository{backend: backend}
}

// Close is a no-op; the backend owns the database handle.
func (r *FailureRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *FailureRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// RecordArticleFailure upserts a failure entry keyed by article UUID.
// An existing entry keeps its CreatedAt and has its attempt count
// incremented; error type and message are replaced by the latest failure.
func (r *FailureRepository) RecordArticleFailure(ctx context.Context, failure *core.FailedArticle) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeFailedArticleKey(failure.UUID)
		now := stampNow()

		existing, err := readFailedArticle(tx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			failure.AttemptCount = existing.AttemptCount + 1
			failure.CreatedAt = existing.CreatedAt
		} else {
			if failure.AttemptCount == 0 {
				failure.AttemptCount = 1
			}
			failure.CreatedAt = now
		}
		failure.LastAttemptAt = now

		if err := tx.Set(key, storage.MarshalFailedArticle(failure)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetArticleFailure retrieves the failure entry for an article UUID.
func (r *FailureRepository) GetArticleFailure(ctx context.Context, uuid string) (*core.FailedArticle, error) {
	var result *core.FailedArticle
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readFailedArticle(tx, makeFailedArticleKey(uuid))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListArticleFailures returns all recorded article failures.
func (r *FailureRepository) ListArticleFailures(ctx context.Context) ([]*core.FailedArticle, error) {
	var results []*core.FailedArticle
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(failedArtPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var failure *core.FailedArticle
			err := iter.Item().Value(func(val []byte) error {
				var err error
				failure, err = storage.UnmarshalFailedArticle(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, failure)
		}
		return nil
	}, false)
	return results, err
}

// ClearArticleFailure removes the failure entry for an article UUID.
func (r *FailureRepository) ClearArticleFailure(ctx context.Context, uuid string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeFailedArticleKey(uuid)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// RecordChunkFailure upserts a failure entry keyed by (uuid, chunk index).
func (r *FailureRepository) RecordChunkFailure(ctx context.Context, failure *core.FailedChunk) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeFailedChunkKey(failure.ArticleUUID, failure.ChunkIndex)
		now := stampNow()

		existing, err := readFailedChunk(tx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			failure.AttemptCount = existing.AttemptCount + 1
			failure.CreatedAt = existing.CreatedAt
		} else {
			if failure.AttemptCount == 0 {
				failure.AttemptCount = 1
			}
			failure.CreatedAt = now
		}
		failure.LastAttemptAt = now

		if err := tx.Set(key, storage.MarshalFailedChunk(failure)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ListChunkFailures returns all recorded chunk failures.
func (r *FailureRepository) ListChunkFailures(ctx context.Context) ([]*core.FailedChunk, error) {
	var results []*core.FailedChunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(failedChunkPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var failure *core.FailedChunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				failure, err = storage.UnmarshalFailedChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, failure)
		}
		return nil
	}, false)
	return results, err
}

// ClearChunkFailures removes all chunk failure entries for an article.
func (r *FailureRepository) ClearChunkFailures(ctx context.Context, uuid string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialFailedChunkKey(uuid)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)

		var keys [][]byte
		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		iter.Close()

		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// readFailedArticle reads a failure entry from the transaction.
// Returns nil, nil when the key does not exist.
func readFailedArticle(tx *badger.Txn, key []byte) (*core.FailedArticle, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var failure *core.FailedArticle
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		failure, unmarshalErr = storage.UnmarshalFailedArticle(val)
		return unmarshalErr
	})
	return failure, err
}

// readFailedChunk reads a chunk failure entry from the transaction.
// Returns nil, nil when the key does not exist.
func readFailedChunk(tx *badger.Txn, key []byte) (*core.FailedChunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var failure *core.FailedChunk
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		failure, unmarshalErr = storage.UnmarshalFailedChunk(val)
		return unmarshalErr
	})
	return failure, err
}
