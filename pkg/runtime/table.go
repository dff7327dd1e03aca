package runtime

import (
	"math"
	"sort"
)

// maxArrayGrowth bounds how far a single read or write may extend the array part.
const maxArrayGrowth = 1 << 24

// Table is the only aggregate: a 1-based array part plus a string-keyed map part.
// Tables are shared by reference.
type Table struct {
	array []Value
	hash  map[string]Value
}

func NewTable() *Table {
	return &Table{hash: make(map[string]Value)}
}

func (t *Table) Kind() Kind { return KindTable }

// ArrayIndex converts a number into a 0-based array slot.
func ArrayIndex(index float64) (int, bool) {
	if index < 1 || index > 1<<53 || index != math.Trunc(index) {
		return 0, false
	}
	return int(index) - 1, true
}

// Get reads the array part. Reading past the end pads the array with nils up to the index.
func (t *Table) Get(index float64) Value {
	slot, ok := ArrayIndex(index)
	if !ok {
		return Nil
	}
	if slot < len(t.array) {
		return t.array[slot]
	}
	if slot-len(t.array) > maxArrayGrowth {
		return Nil
	}
	t.pad(slot + 1)
	return Nil
}

// Set writes the array part, padding with nils before index. It reports false
// for indexes that cannot address the array part.
func (t *Table) Set(index float64, v Value) bool {
	slot, ok := ArrayIndex(index)
	if !ok || slot-len(t.array) > maxArrayGrowth {
		return false
	}
	if v == nil {
		v = Nil
	}
	t.pad(slot + 1)
	t.array[slot] = v
	return true
}

func (t *Table) pad(size int) {
	for len(t.array) < size {
		t.array = append(t.array, Nil)
	}
}

// Append adds a list-constructor entry.
func (t *Table) Append(v Value) {
	if v == nil {
		v = Nil
	}
	t.array = append(t.array, v)
}

// GetKey reads the map part. Absent keys read as nil and are not inserted.
func (t *Table) GetKey(key string) Value {
	if v, ok := t.hash[key]; ok {
		return v
	}
	return Nil
}

// SetKey writes the map part; nil removes the key.
func (t *Table) SetKey(key string, v Value) {
	if v == nil || v.Kind() == KindNil {
		delete(t.hash, key)
		return
	}
	t.hash[key] = v
}

// Length is the position of the last non-nil array element.
func (t *Table) Length() int {
	for idx := len(t.array) - 1; idx >= 0; idx-- {
		if t.array[idx].Kind() != KindNil {
			return idx + 1
		}
	}
	return 0
}

// Keys returns the map-part keys in sorted order.
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.hash))
	for k := range t.hash {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entry is one key/value pair produced by Entries.
type Entry struct {
	Key   Value
	Value Value
}

// Entries snapshots the non-nil contents: array part in order, then map part by key.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.array)+len(t.hash))
	for idx, v := range t.array {
		if v.Kind() == KindNil {
			continue
		}
		out = append(out, Entry{Key: NumberValue{Val: float64(idx + 1)}, Value: v})
	}
	for _, k := range t.Keys() {
		out = append(out, Entry{Key: StringValue{Val: k}, Value: t.hash[k]})
	}
	return out
}
