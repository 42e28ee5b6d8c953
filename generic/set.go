package generic

import (
	"cmp"
	"slices"
)

// Set is an unordered collection of distinct items.
type Set[T comparable] map[T]Void

func NewSet[T comparable](items ...T) Set[T] {
	s := make(Set[T], len(items))
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// Add returns false if item was already present.
func (s Set[T]) Add(item T) bool {
	if _, found := s[item]; found {
		return false
	}
	s[item] = NewVoid()
	return true
}

func (s Set[T]) Contains(item T) bool {
	_, found := s[item]
	return found
}

func (s Set[T]) Count() int {
	return len(s)
}

func (s Set[T]) ToSlice() []T {
	res := make([]T, 0, len(s))
	for item := range s {
		res = append(res, item)
	}
	return res
}

// Sorted returns the items of an ordered Set in ascending order.
func Sorted[T cmp.Ordered](s Set[T]) []T {
	res := s.ToSlice()
	slices.Sort(res)
	return res
}
