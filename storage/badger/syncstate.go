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

// SyncRepository implements storage.SyncRepository for BadgerDB.
type SyncRepository struct {
	backend *Backend
}

var _ storage.SyncRepository = (*SyncRepository)(nil)

// NewSyncRepository creates a new SyncRepository.
func NewSyncRepository(backend *Backend) *SyncRepository {
	return &SyncRepository{backend: backend}
}

// Close is a no-op; the backend owns the database handle.
func (r *SyncRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *SyncRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// GetSyncRecord retrieves the record for (uuid, namespace).
func (r *SyncRepository) GetSyncRecord(ctx context.Context, uuid, namespace string) (*core.SyncRecord, error) {
	var result *core.SyncRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSyncRecordKey(namespace, uuid))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			result, unmarshalErr = storage.UnmarshalSyncRecord(val)
			return unmarshalErr
		})
	}, false)
	return result, err
}

// PutSyncRecord upserts the record for its (uuid, namespace) pair.
// CreatedAt is preserved from the stored record on upsert.
func (r *SyncRepository) PutSyncRecord(ctx context.Context, record *core.SyncRecord) error {
	if err := core.ValidateSyncRecord(record); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSyncRecordKey(record.Namespace, record.ArticleUUID)
		now := stampNow()

		item, err := tx.Get(key)
		switch err {
		case nil:
			var existing *core.SyncRecord
			if err := item.Value(func(val []byte) error {
				var unmarshalErr error
				existing, unmarshalErr = storage.UnmarshalSyncRecord(val)
				return unmarshalErr
			}); err != nil {
				return err
			}
			record.CreatedAt = existing.CreatedAt
		case badger.ErrKeyNotFound:
			record.CreatedAt = now
		default:
			return err
		}
		record.UpdatedAt = now

		if err := tx.Set(key, storage.MarshalSyncRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ListSyncRecords returns all records in namespace with the given status.
func (r *SyncRepository) ListSyncRecords(ctx context.Context, namespace string, status core.SyncStatus) ([]*core.SyncRecord, error) {
	var results []*core.SyncRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialSyncRecordKey(namespace)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.SyncRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalSyncRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record.Status == status {
				results = append(results, record)
			}
		}
		return nil
	}, false)
	return results, err
}

// DeleteSyncRecords removes all records in namespace.
func (r *SyncRepository) DeleteSyncRecords(ctx context.Context, namespace string) (int, error) {
	deleted := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialSyncRecordKey(namespace)
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
			deleted++
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
