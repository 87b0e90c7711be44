package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/dayflow/dayflow-backend/internal/hr/reconcile"
	"github.com/dayflow/dayflow-backend/pkg/errors"
	"github.com/dayflow/dayflow-backend/pkg/logger"
)

// DefaultMaxRetries bounds read-modify-write attempts when none is configured.
const DefaultMaxRetries = 5

// Collection is a typed view over one persisted blob.
type Collection[T any] struct {
	store      Store
	key        Key
	identity   reconcile.Identity[T]
	maxRetries int
	logger     *logger.Logger
}

// NewCollection binds key in s to records of type T.
func NewCollection[T any](s Store, key Key, identity reconcile.Identity[T], maxRetries int, log *logger.Logger) *Collection[T] {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Collection[T]{
		store:      s,
		key:        key,
		identity:   identity,
		maxRetries: maxRetries,
		logger:     log,
	}
}

// Key returns the collection key
func (c *Collection[T]) Key() Key { return c.key }

// Identity returns the identity used for upserts
func (c *Collection[T]) Identity() reconcile.Identity[T] { return c.identity }

// Load reads and decodes the collection. A missing collection is empty.
// Undecodable data is reported as a StorageRead error together with the
// version, so writers can still replace it.
func (c *Collection[T]) Load(ctx context.Context) ([]T, int64, error) {
	blob, err := c.store.Get(ctx, c.key)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load %s: %w", c.key, err)
	}
	if len(blob.Data) == 0 {
		return nil, blob.Version, nil
	}

	var records []T
	if err := json.Unmarshal(blob.Data, &records); err != nil {
		return nil, blob.Version, errors.StorageRead(string(c.key), err)
	}
	return records, blob.Version, nil
}

// Records returns the decoded collection, degrading to empty on any read
// failure. The failure is logged, never returned.
func (c *Collection[T]) Records(ctx context.Context) []T {
	records, _, err := c.Load(ctx)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("collection", string(c.key)).
			Msg("collection unreadable, using empty override")
		return nil
	}
	return records
}

// Mutate applies fn to the current records and writes the result, retrying
// on version conflicts.
func (c *Collection[T]) Mutate(ctx context.Context, fn func([]T) ([]T, error)) error {
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		records, version, err := c.Load(ctx)
		if err != nil {
			if !errors.Is(err, errors.ErrStorageRead) {
				return err
			}
			c.logger.Warn().
				Err(err).
				Str("collection", string(c.key)).
				Msg("replacing unreadable collection")
			records = nil
		}

		next, err := fn(records)
		if err != nil {
			return err
		}
		if next == nil {
			next = []T{}
		}

		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", c.key, err)
		}

		_, err = c.store.Put(ctx, c.key, data, version)
		if err == nil {
			return nil
		}
		if !stderrors.Is(err, ErrVersionConflict) {
			return err
		}

		c.logger.Debug().
			Str("collection", string(c.key)).
			Int("attempt", attempt).
			Msg("version conflict, retrying")
	}

	return errors.Conflict(fmt.Sprintf("%s changed concurrently, retry the request", c.key))
}

// Upsert replaces records sharing an identity with items and appends items.
func (c *Collection[T]) Upsert(ctx context.Context, items ...T) error {
	return c.Mutate(ctx, func(records []T) ([]T, error) {
		return reconcile.Upsert(records, c.identity, items...), nil
	})
}

// Remove drops the records with the given identities and reports how many
// were removed.
func (c *Collection[T]) Remove(ctx context.Context, ids ...string) (int, error) {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	removed := 0
	err := c.Mutate(ctx, func(records []T) ([]T, error) {
		next := reconcile.Exclude(records, c.identity, drop)
		removed = len(records) - len(next)
		return next, nil
	})
	return removed, err
}
