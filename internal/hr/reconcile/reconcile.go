// Package reconcile merges a built-in seed collection with a persisted
// override collection into one effective view per entity type.
package reconcile

// Identity lists the key extractors of an entity type in priority order.
// The identity of a record is the first non-empty value.
type Identity[T any] []func(T) string

// Of returns the identity of v, or "" when every key is empty.
func (id Identity[T]) Of(v T) string {
	for _, key := range id {
		if k := key(v); k != "" {
			return k
		}
	}
	return ""
}

// Reconcile returns override entries followed by the seed entries whose
// identity is not present in override.
//
// When override holds an identity more than once, the last entry wins and
// keeps the position of the first occurrence. Records without any identity
// are never deduplicated.
func Reconcile[T any](seed, override []T, identity Identity[T]) []T {
	out := make([]T, 0, len(seed)+len(override))
	seen := make(map[string]int, len(override))

	for _, v := range override {
		k := identity.Of(v)
		if k == "" {
			out = append(out, v)
			continue
		}
		if i, ok := seen[k]; ok {
			out[i] = v
			continue
		}
		seen[k] = len(out)
		out = append(out, v)
	}

	for _, v := range seed {
		k := identity.Of(v)
		if k != "" {
			if _, ok := seen[k]; ok {
				continue
			}
		}
		out = append(out, v)
	}

	return out
}

// Exclude drops records whose identity is in ids.
func Exclude[T any](records []T, identity Identity[T], ids map[string]struct{}) []T {
	if len(ids) == 0 {
		return records
	}
	out := records[:0:0]
	for _, v := range records {
		if _, gone := ids[identity.Of(v)]; gone {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Upsert returns records with every entry sharing an identity with items
// removed and items appended, so override collections never hold duplicates.
func Upsert[T any](records []T, identity Identity[T], items ...T) []T {
	replace := make(map[string]struct{}, len(items))
	for _, it := range items {
		if k := identity.Of(it); k != "" {
			replace[k] = struct{}{}
		}
	}
	out := Exclude(records, identity, replace)
	return append(out, Reconcile(nil, items, identity)...)
}
