package store

import "context"

type pendingKey struct{}

type change struct {
	key     Key
	version int64
}

type notifyingStore struct {
	Store
	onChange ChangeFunc
}

// WithNotify calls onChange after every committed Put. Writes made inside
// Atomic are reported once fn succeeds.
func WithNotify(s Store, onChange ChangeFunc) Store {
	return &notifyingStore{Store: s, onChange: onChange}
}

func (s *notifyingStore) Put(ctx context.Context, key Key, data []byte, expected int64) (int64, error) {
	v, err := s.Store.Put(ctx, key, data, expected)
	if err != nil {
		return v, err
	}
	if pending, ok := ctx.Value(pendingKey{}).(*[]change); ok {
		*pending = append(*pending, change{key: key, version: v})
		return v, nil
	}
	s.onChange(ctx, key, v)
	return v, nil
}

func (s *notifyingStore) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, nested := ctx.Value(pendingKey{}).(*[]change); nested {
		return s.Store.Atomic(ctx, fn)
	}

	var pending []change
	err := s.Store.Atomic(ctx, func(ctx context.Context) error {
		pending = pending[:0]
		return fn(context.WithValue(ctx, pendingKey{}, &pending))
	})
	if err != nil {
		return err
	}
	for _, c := range pending {
		s.onChange(ctx, c.key, c.version)
	}
	return nil
}
