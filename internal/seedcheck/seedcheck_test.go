package seedcheck_test

import (
	"testing"

	"github.com/kazuhira-dev/batch-loader/internal/seedcheck"
)

type stub struct {
	loaded bool
}

func (s stub) NotLoaded() bool {
	return !s.loaded
}

func TestLoaded(t *testing.T) {
	t.Parallel()

	var nilPtr *int
	var nilMap map[string]int
	var nilSlice []int
	n := 1

	tests := []struct {
		name     string
		value    any
		expected bool
	}{
		{name: "nil", value: nil, expected: false},
		{name: "nil pointer", value: nilPtr, expected: false},
		{name: "nil map", value: nilMap, expected: false},
		{name: "nil slice", value: nilSlice, expected: false},
		{name: "nil func", value: (func())(nil), expected: false},
		{name: "placeholder", value: stub{loaded: false}, expected: false},
		{name: "placeholder pointer", value: &stub{loaded: false}, expected: false},
		{name: "loaded marker value", value: stub{loaded: true}, expected: true},
		{name: "int", value: 42, expected: true},
		{name: "string", value: "value", expected: true},
		{name: "pointer", value: &n, expected: true},
		{name: "empty slice", value: []int{}, expected: true},
		{name: "map", value: map[string]int{"a": 1}, expected: true},
		{name: "struct", value: struct{ A int }{A: 1}, expected: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := seedcheck.Loaded(tt.value); got != tt.expected {
				t.Errorf("Loaded(%#v) = %v, expected %v", tt.value, got, tt.expected)
			}
		})
	}
}
