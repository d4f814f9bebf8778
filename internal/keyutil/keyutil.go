// Package keyutil provides small helpers for working with key slices and
// key sets.
package keyutil

// Uniq returns the values of s with duplicates removed.
// The order of the output follows the first appearance of each value.
func Uniq[V comparable](s []V) []V {
	seen := make(map[V]struct{}, len(s))
	out := make([]V, 0, len(s))
	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// SetOf returns a set containing the values of s.
func SetOf[V comparable](s []V) map[V]struct{} {
	set := make(map[V]struct{}, len(s))
	for _, v := range s {
		set[v] = struct{}{}
	}
	return set
}

// Items returns the elements of set in unspecified order.
func Items[V comparable](set map[V]struct{}) []V {
	out := make([]V, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	return out
}
