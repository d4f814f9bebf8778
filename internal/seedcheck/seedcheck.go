// Package seedcheck decides whether a value is real, loaded data that is
// safe to seed into a cache.
//
// Upstream systems hand out lazy placeholders for data that has not actually
// been fetched (for example an unloaded association stub). Seeding such a
// placeholder would make the pair look resolved and silently mask a
// legitimate future fetch, so these values are rejected.
package seedcheck

import (
	"github.com/goccy/go-reflect"
)

// notLoadedMarker is implemented by placeholder values that stand in for
// unfetched data.
type notLoadedMarker interface {
	NotLoaded() bool
}

// Loaded reports whether value is real data that may be seeded into a cache.
// It rejects nil, nil pointers, maps, slices, functions and channels, and
// any value whose NotLoaded method reports true.
func Loaded(value any) bool {
	if value == nil {
		return false
	}
	if m, ok := value.(notLoadedMarker); ok && m.NotLoaded() {
		return false
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return !rv.IsNil()
	default:
		return true
	}
}
