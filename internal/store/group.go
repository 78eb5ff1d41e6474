package store

// Group is one labelled bucket of entries.
type Group[T any] struct {
	Label string `json:"label"`
	Items []T    `json:"items"`
}

// GroupBy buckets items by key. Buckets appear in first-encounter order and
// keep the input order inside each bucket, so concatenating the buckets
// reproduces items.
func GroupBy[T any](items []T, key func(T) string) []Group[T] {
	var groups []Group[T]
	index := make(map[string]int)
	for _, it := range items {
		k := key(it)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[T]{Label: k})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}

// Flatten concatenates the items of every group in order.
func Flatten[T any](groups []Group[T]) []T {
	var out []T
	for _, g := range groups {
		out = append(out, g.Items...)
	}
	return out
}
