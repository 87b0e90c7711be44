// Package repository holds the HR entity types and the reconciled,
// per-entity repositories built on top of the record store.
package repository

import (
	"context"
	"time"

	"github.com/dayflow/dayflow-backend/internal/hr/reconcile"
	"github.com/dayflow/dayflow-backend/internal/hr/store"
	"github.com/dayflow/dayflow-backend/pkg/errors"
)

// Repository is the effective view of one entity type: persisted overrides
// merged over the built-in seed.
type Repository[T any] struct {
	name      string
	store     store.Store
	seed      []T
	overrides *store.Collection[T]
	deleted   *store.Collection[Tombstone]
}

// New creates a repository. name is used in not-found errors.
func New[T any](name string, s store.Store, seed []T, overrides *store.Collection[T]) *Repository[T] {
	return &Repository[T]{
		name:      name,
		store:     s,
		seed:      seed,
		overrides: overrides,
	}
}

// WithTombstones lets Delete hide seed records.
func (r *Repository[T]) WithTombstones(deleted *store.Collection[Tombstone]) *Repository[T] {
	r.deleted = deleted
	return r
}

// Identity returns the identity used to merge and upsert records.
func (r *Repository[T]) Identity() reconcile.Identity[T] {
	return r.overrides.Identity()
}

// List returns the reconciled collection. Unreadable overrides degrade to
// the seed.
func (r *Repository[T]) List(ctx context.Context) []T {
	out := reconcile.Reconcile(r.seed, r.overrides.Records(ctx), r.Identity())
	if r.deleted == nil {
		return out
	}

	tombstones := r.deleted.Records(ctx)
	if len(tombstones) == 0 {
		return out
	}
	ids := make(map[string]struct{}, len(tombstones))
	for _, t := range tombstones {
		ids[t.ID] = struct{}{}
	}
	return reconcile.Exclude(out, r.Identity(), ids)
}

// Filter returns the reconciled records matching keep.
func (r *Repository[T]) Filter(ctx context.Context, keep func(T) bool) []T {
	var out []T
	for _, v := range r.List(ctx) {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Find returns the first reconciled record matching match.
func (r *Repository[T]) Find(ctx context.Context, match func(T) bool) (T, bool) {
	for _, v := range r.List(ctx) {
		if match(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Get returns the record with the given identity.
func (r *Repository[T]) Get(ctx context.Context, id string) (T, error) {
	v, ok := r.Find(ctx, func(v T) bool { return r.Identity().Of(v) == id })
	if !ok {
		return v, errors.NotFound(r.name)
	}
	return v, nil
}

// Upsert inserts or replaces items by identity. A previously deleted
// identity becomes visible again.
func (r *Repository[T]) Upsert(ctx context.Context, items ...T) error {
	if r.deleted == nil {
		return r.overrides.Upsert(ctx, items...)
	}
	return r.store.Atomic(ctx, func(ctx context.Context) error {
		if err := r.overrides.Upsert(ctx, items...); err != nil {
			return err
		}
		ids := make([]string, 0, len(items))
		for _, it := range items {
			ids = append(ids, r.Identity().Of(it))
		}
		return r.restore(ctx, ids...)
	})
}

// Mutate applies fn to the persisted overrides only, retrying on version
// conflicts. fn sees the override records, not the merged view.
func (r *Repository[T]) Mutate(ctx context.Context, fn func([]T) ([]T, error)) error {
	return r.overrides.Mutate(ctx, fn)
}

// Replace stores item in place of the record identified by oldID. Used when
// an edit changes the identity itself.
func (r *Repository[T]) Replace(ctx context.Context, oldID string, item T) error {
	newID := r.Identity().Of(item)
	if oldID == newID {
		return r.Upsert(ctx, item)
	}

	return r.store.Atomic(ctx, func(ctx context.Context) error {
		if err := r.overrides.Mutate(ctx, func(records []T) ([]T, error) {
			records = reconcile.Exclude(records, r.Identity(), map[string]struct{}{oldID: {}})
			return reconcile.Upsert(records, r.Identity(), item), nil
		}); err != nil {
			return err
		}
		if r.inSeed(oldID) {
			if err := r.bury(ctx, oldID); err != nil {
				return err
			}
		}
		return r.restore(ctx, newID)
	})
}

// Delete removes the record with the given identity.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}

	return r.store.Atomic(ctx, func(ctx context.Context) error {
		if _, err := r.overrides.Remove(ctx, id); err != nil {
			return err
		}
		if r.inSeed(id) {
			return r.bury(ctx, id)
		}
		return nil
	})
}

func (r *Repository[T]) inSeed(id string) bool {
	for _, v := range r.seed {
		if r.Identity().Of(v) == id {
			return true
		}
	}
	return false
}

func (r *Repository[T]) bury(ctx context.Context, id string) error {
	if r.deleted == nil {
		return errors.BadRequest(r.name + " is built in and cannot be deleted")
	}
	return r.deleted.Upsert(ctx, Tombstone{ID: id, DeletedAt: time.Now().UTC()})
}

func (r *Repository[T]) restore(ctx context.Context, ids ...string) error {
	if r.deleted == nil {
		return nil
	}
	for _, t := range r.deleted.Records(ctx) {
		for _, id := range ids {
			if t.ID == id {
				_, err := r.deleted.Remove(ctx, ids...)
				return err
			}
		}
	}
	return nil
}
