package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/advisor/core"
	"github.com/poiesic/advisor/storage"
)

// CourseRepository is the badger implementation of storage.CourseRepository.
type CourseRepository struct {
	backend *Backend
}

var _ storage.CourseRepository = (*CourseRepository)(nil)

// NewCourseRepository creates a repository on top of an open backend.
func NewCourseRepository(backend *Backend) (*CourseRepository, error) {
	if backend == nil {
		return nil, storage.ErrStorageClosed
	}
	return &CourseRepository{
		backend: backend,
	}, nil
}

// Close is a no-op; the backend is closed by its owner.
func (r *CourseRepository) Close() error {
	return nil
}

func (r *CourseRepository) AddDocuments(ctx context.Context, collection core.Collection, docs ...*core.CourseDocument) ([]*core.CourseDocument, error) {
	for _, doc := range docs {
		if err := core.ValidateCourseDocument(doc); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			if doc.InsertedAt.IsZero() {
				doc.InsertedAt = time.Now().UTC()
			}

			key := makeDocumentKey(collection, doc.Id)

			// Drop index entries of a replaced document
			old, err := readDocument(tx, key)
			if err != nil {
				return err
			}
			if old != nil {
				if err := deleteIndices(tx, collection, old); err != nil {
					return err
				}
			}

			if err := tx.Set(key, storage.MarshalCourseDocument(doc)); err != nil {
				return err
			}

			id := storage.MarshalID(doc.Id)
			if err := tx.Set(makeNumberIndexKey(collection, doc.Number, doc.Id), id); err != nil {
				return err
			}
			if err := tx.Set(makeRawIndexKey(collection, doc.NumberRaw, doc.Id), id); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return docs, nil
}

func (r *CourseRepository) GetDocuments(ctx context.Context, collection core.Collection, ids ...core.ID) ([]*core.CourseDocument, error) {
	var result []*core.CourseDocument
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			doc, err := readDocument(tx, makeDocumentKey(collection, id))
			if err != nil {
				return err
			}
			if doc != nil {
				result = append(result, doc)
			}
		}
		return nil
	}, false)
	return result, err
}

func (r *CourseRepository) FindByFilter(ctx context.Context, collection core.Collection, filter storage.Filter) ([]*core.CourseDocument, error) {
	if filter.IsEmpty() {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.CourseDocument
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Walk the most selective index, then check the remaining fields
		var prefix []byte
		if filter.Number != "" {
			prefix = makeNumberIndexPrefix(collection, filter.Number)
		} else {
			prefix = makeRawIndexPrefix(collection, filter.NumberRaw)
		}

		ids, err := scanIndex(ctx, tx, prefix)
		if err != nil {
			return err
		}

		for _, id := range ids {
			doc, err := readDocument(tx, makeDocumentKey(collection, id))
			if err != nil {
				return err
			}
			if doc == nil || !matches(doc, filter) {
				continue
			}
			results = append(results, doc)
		}
		return nil
	}, false)

	return results, err
}

func (r *CourseRepository) FindSimilar(ctx context.Context, collection core.Collection, vector []float32, limit int) ([]*core.DocumentMatch, error) {
	return r.backend.FindSimilar(ctx, collection, vector, limit)
}

func (r *CourseRepository) CountDocuments(ctx context.Context, collection core.Collection) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeDocumentPrefix(collection)
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

func (r *CourseRepository) DropCollection(ctx context.Context, collection core.Collection) error {
	prefixes := append([][]byte{makeDocumentPrefix(collection)}, makeCollectionIndexPrefixes(collection)...)
	return r.backend.db.DropPrefix(prefixes...)
}

func readDocument(tx *badger.Txn, key []byte) (*core.CourseDocument, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.CourseDocument
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		doc, unmarshalErr = storage.UnmarshalCourseDocument(val)
		return unmarshalErr
	})
	return doc, err
}

func scanIndex(ctx context.Context, tx *badger.Txn, prefix []byte) ([]core.ID, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var ids []core.ID
	for iter.Rewind(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var id core.ID
		err := iter.Item().Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func deleteIndices(tx *badger.Txn, collection core.Collection, doc *core.CourseDocument) error {
	if err := tx.Delete(makeNumberIndexKey(collection, doc.Number, doc.Id)); err != nil {
		return err
	}
	return tx.Delete(makeRawIndexKey(collection, doc.NumberRaw, doc.Id))
}

func matches(doc *core.CourseDocument, filter storage.Filter) bool {
	if filter.Number != "" && doc.Number != filter.Number {
		return false
	}
	if filter.NumberRaw != "" && doc.NumberRaw != filter.NumberRaw {
		return false
	}
	return true
}
