package badger

import (
	"context"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/newswire/storage"
)

// FingerprintRepository implements storage.FingerprintRepository for BadgerDB.
type FingerprintRepository struct {
	backend *Backend
}

var _ storage.FingerprintRepository = (*FingerprintRepository)(nil)

// NewFingerprintRepository creates a new FingerprintRepository.
func NewFingerprintRepository(backend *Backend) *FingerprintRepository {
	return &FingerprintRepository{backend: backend}
}

// Close is a no-op; the backend owns the database handle.
func (r *FingerprintRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *FingerprintRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// GetFingerprint returns the stored digest for a feed URL.
func (r *FingerprintRepository) GetFingerprint(ctx context.Context, feedURL string) (string, error) {
	var digest string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeFingerprintKey(feedURL))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		digest = string(val)
		return nil
	}, false)
	return digest, err
}

// PutFingerprint stores the digest for a feed URL.
func (r *FingerprintRepository) PutFingerprint(ctx context.Context, feedURL, digest string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeFingerprintKey(feedURL), []byte(digest)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ListFingerprints returns all stored (feed URL, digest) pairs.
func (r *FingerprintRepository) ListFingerprints(ctx context.Context) (map[string]string, error) {
	results := make(map[string]string)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := fingerprintPrefix + ":"
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			feedURL := strings.TrimPrefix(string(item.Key()), prefix)
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			results[feedURL] = string(val)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}
