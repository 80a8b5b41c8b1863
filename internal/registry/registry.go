// Package registry tracks per-stream state keyed by Ogg serial number.
package registry

import (
	"github.com/simonhull/oggseek/internal/vector"
)

type entry[T any] struct {
	serial uint32
	value  T
}

// Table maps serial numbers to values. Entries keep insertion order, so
// adding a stream while iterating is safe and the new entry is visited.
type Table[T any] struct {
	entries *vector.Vector[entry[T]]
	index   map[uint32]int
}

// New returns an empty table.
func New[T any]() *Table[T] {
	return &Table[T]{
		entries: vector.New[entry[T]](),
		index:   make(map[uint32]int),
	}
}

// Len returns the number of streams.
func (t *Table[T]) Len() int { return t.entries.Len() }

// Get returns the value for serial, if present.
func (t *Table[T]) Get(serial uint32) (T, bool) {
	i, ok := t.index[serial]
	if !ok {
		var zero T
		return zero, false
	}
	return t.entries.At(i).value, true
}

// Add stores v under serial unless the serial is already present. It returns
// the stored value and whether v was added.
func (t *Table[T]) Add(serial uint32, v T) (T, bool) {
	if i, ok := t.index[serial]; ok {
		return t.entries.At(i).value, false
	}
	t.index[serial] = t.entries.Len()
	t.entries.Insert(entry[T]{serial: serial, value: v})
	return v, true
}

// Remove deletes serial and reports whether it was present.
// It must not be called from inside Each.
func (t *Table[T]) Remove(serial uint32) bool {
	i, ok := t.index[serial]
	if !ok {
		return false
	}
	t.entries.RemoveAt(i)
	delete(t.index, serial)
	for j := i; j < t.entries.Len(); j++ {
		t.index[t.entries.At(j).serial] = j
	}
	return true
}

// Serials returns every serial number in insertion order.
func (t *Table[T]) Serials() []uint32 {
	out := make([]uint32, 0, t.entries.Len())
	t.entries.Each(func(_ int, e entry[T]) bool {
		out = append(out, e.serial)
		return true
	})
	return out
}

// Each calls fn for each stream until fn returns false, and reports whether
// every stream was visited.
func (t *Table[T]) Each(fn func(serial uint32, v T) bool) bool {
	return t.entries.Each(func(_ int, e entry[T]) bool {
		return fn(e.serial, e.value)
	})
}

// Clear removes every stream.
func (t *Table[T]) Clear() {
	t.entries.Clear()
	clear(t.index)
}
