// Package vector provides a growable slice with optional ordering.
//
// Without a comparator, Insert appends. With one, Insert appends and then
// migrates the new element backwards with adjacent swaps until order is
// restored, which is cheap when elements arrive nearly sorted. Installing a
// comparator sorts the whole vector.
package vector

import "slices"

// Vector is a generic resizable vector.
type Vector[T any] struct {
	items []T
	cmp   func(a, b T) int
}

// New returns an empty, unordered vector.
func New[T any]() *Vector[T] {
	return &Vector[T]{}
}

// NewOrdered returns an empty vector kept sorted by cmp.
func NewOrdered[T any](cmp func(a, b T) int) *Vector[T] {
	return &Vector[T]{cmp: cmp}
}

// Len returns the number of elements.
func (v *Vector[T]) Len() int { return len(v.items) }

// At returns the element at index i.
func (v *Vector[T]) At(i int) T { return v.items[i] }

// Set replaces the element at index i without reordering.
func (v *Vector[T]) Set(i int, x T) { v.items[i] = x }

// Insert adds x, keeping order when a comparator is set.
func (v *Vector[T]) Insert(x T) {
	v.items = append(v.items, x)
	if v.cmp == nil {
		return
	}
	for i := len(v.items) - 1; i > 0 && v.cmp(v.items[i-1], v.items[i]) > 0; i-- {
		v.items[i-1], v.items[i] = v.items[i], v.items[i-1]
	}
}

// SetCmp installs a comparator and re-sorts. A nil comparator leaves the
// current order in place and makes later inserts append.
func (v *Vector[T]) SetCmp(cmp func(a, b T) int) {
	v.cmp = cmp
	if cmp != nil {
		slices.SortFunc(v.items, cmp)
	}
}

// Pop removes and returns the head element.
func (v *Vector[T]) Pop() (T, bool) {
	var zero T
	if len(v.items) == 0 {
		return zero, false
	}
	x := v.items[0]
	n := copy(v.items, v.items[1:])
	v.items[n] = zero
	v.items = v.items[:n]
	return x, true
}

// Front returns the head element without removing it.
func (v *Vector[T]) Front() (T, bool) {
	if len(v.items) == 0 {
		var zero T
		return zero, false
	}
	return v.items[0], true
}

// Find returns the index of the first element for which match is true, or -1.
func (v *Vector[T]) Find(match func(T) bool) int {
	return slices.IndexFunc(v.items, match)
}

// RemoveAt deletes the element at index i, preserving order.
func (v *Vector[T]) RemoveAt(i int) T {
	x := v.items[i]
	v.items = slices.Delete(v.items, i, i+1)
	return x
}

// Each calls fn for every element in order until fn returns false.
// It reports whether the iteration ran to completion. Elements appended by
// fn are visited; fn must not remove elements.
func (v *Vector[T]) Each(fn func(i int, x T) bool) bool {
	for i := 0; i < len(v.items); i++ {
		if !fn(i, v.items[i]) {
			return false
		}
	}
	return true
}

// Clear removes all elements.
func (v *Vector[T]) Clear() {
	clear(v.items)
	v.items = v.items[:0]
}
