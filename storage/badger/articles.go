package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/newswire/core"
	"github.com/poiesic/newswire/storage"
)

// ArticleRepository implements storage.ArticleRepository for BadgerDB.
type ArticleRepository struct {
	backend *Backend
}

var _ storage.ArticleRepository = (*ArticleRepository)(nil)

// NewArticleRepository creates a new ArticleRepository.
func NewArticleRepository(backend *Backend) *ArticleRepository {
	return &ArticleRepository{backend: backend}
}

// Close is a no-op; the backend owns the database handle.
func (r *ArticleRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ArticleRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddArticle persists a new article. The link index is checked inside the
// same write transaction that inserts the record, so two concurrent inserts
// of the same link cannot both succeed.
func (r *ArticleRepository) AddArticle(ctx context.Context, article *core.Article) error {
	if err := core.ValidateArticle(article); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		linkKey := makeArticleLinkKey(article.Link)
		if _, err := tx.Get(linkKey); err == nil {
			return storage.ErrDuplicateKey
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		now := stampNow()
		if article.FetchedAt.IsZero() {
			article.FetchedAt = now
		}
		article.UpdatedAt = now

		if err := tx.Set(makeArticleKey(article.UUID), storage.MarshalArticle(article)); err != nil {
			return err
		}
		if err := tx.Set(linkKey, []byte(article.UUID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// UpdateArticle rewrites an existing article in place.
func (r *ArticleRepository) UpdateArticle(ctx context.Context, article *core.Article) error {
	if err := core.ValidateArticle(article); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeArticleKey(article.UUID)
		old, err := readArticle(tx, key)
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}

		article.UpdatedAt = stampNow()

		if err := tx.Set(key, storage.MarshalArticle(article)); err != nil {
			return err
		}

		// Move the link index if the link changed.
		if old.Link != article.Link {
			if err := tx.Delete(makeArticleLinkKey(old.Link)); err != nil {
				return err
			}
			if err := tx.Set(makeArticleLinkKey(article.Link), []byte(article.UUID)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetArticle retrieves a single article by UUID.
func (r *ArticleRepository) GetArticle(ctx context.Context, uuid string) (*core.Article, error) {
	var result *core.Article
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readArticle(tx, makeArticleKey(uuid))
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

// GetArticleByLink retrieves a single article by its link.
func (r *ArticleRepository) GetArticleByLink(ctx context.Context, link string) (*core.Article, error) {
	var result *core.Article
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeArticleLinkKey(link))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		uuid, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		result, err = readArticle(tx, makeArticleKey(string(uuid)))
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

// GetArticles retrieves multiple articles by their UUIDs.
// Missing articles are silently skipped.
func (r *ArticleRepository) GetArticles(ctx context.Context, uuids ...string) ([]*core.Article, error) {
	var result []*core.Article
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, uuid := range uuids {
			article, err := readArticle(tx, makeArticleKey(uuid))
			if err != nil {
				return err
			}
			if article != nil {
				result = append(result, article)
			}
		}
		return nil
	}, false)
	return result, err
}

// ListArticles returns up to limit articles in key order.
func (r *ArticleRepository) ListArticles(ctx context.Context, limit int) ([]*core.Article, error) {
	var results []*core.Article
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(articlePrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if limit > 0 && len(results) >= limit {
				break
			}
			var article *core.Article
			err := iter.Item().Value(func(val []byte) error {
				var err error
				article, err = storage.UnmarshalArticle(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, article)
		}
		return nil
	}, false)
	return results, err
}

// KnownLinks reports which of the given links already exist in storage.
func (r *ArticleRepository) KnownLinks(ctx context.Context, links []string) (map[string]bool, error) {
	known := make(map[string]bool, len(links))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, link := range links {
			_, err := tx.Get(makeArticleLinkKey(link))
			switch err {
			case nil:
				known[link] = true
			case badger.ErrKeyNotFound:
				// unknown link, leave absent
			default:
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return known, nil
}

// CountArticles returns the number of stored articles.
func (r *ArticleRepository) CountArticles(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(articlePrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// readArticle reads an article from the transaction.
// Returns nil, nil when the key does not exist.
func readArticle(tx *badger.Txn, key []byte) (*core.Article, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var article *core.Article
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		article, unmarshalErr = storage.UnmarshalArticle(val)
		return unmarshalErr
	})
	return article, err
}
