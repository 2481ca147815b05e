// Package table implements the open-addressed, linear-probed hash table
// used both as the VM's globals map (string -> Value) and, wrapped by
// Strings, as the string intern set. A single implementation serves both
// because both are keyed on *chunk.ObjString and differ only in how the
// caller uses the stored Value.
package table

import "nilan/chunk"

const maxLoad = 0.75

type entry struct {
	key   *chunk.ObjString
	value chunk.Value
}

// isEmpty reports a truly-empty slot: no key, nil value.
func (e entry) isEmpty() bool { return e.key == nil && e.value.IsNil() }

// isTombstone reports a deleted slot: no key, `true` sentinel value.
func (e entry) isTombstone() bool { return e.key == nil && e.value.IsBool() && e.value.AsBool() }

// Table is the open-addressed map described in spec.md §4.3: entries are
// (key, value) pairs probed linearly from hash(key) mod capacity, with
// tombstones (key=nil, value=true) standing in for deleted entries so
// probing never stops short of a truly-empty slot.
type Table struct {
	count    int // used-or-tombstoned slots, for load-factor purposes
	entries  []entry
}

// New returns an empty Table. Capacity is allocated lazily on first Set.
func New() *Table {
	return &Table{}
}

func capacityFor(n int) int {
	if n < 8 {
		return 8
	}
	return n
}

func findEntry(entries []entry, key *chunk.ObjString) *entry {
	capacity := len(entries)
	index := int(key.Hash) % capacity
	var tombstone *entry

	for {
		e := &entries[index]
		if e.key == nil {
			if e.isEmpty() {
				if tombstone != nil {
					return tombstone
				}
				return e
			}
			// tombstone
			if tombstone == nil {
				tombstone = e
			}
		} else if e.key == key {
			return e
		}
		index = (index + 1) % capacity
	}
}

func (t *Table) adjustCapacity(newCapacity int) {
	newEntries := make([]entry, newCapacity)
	// initialize explicitly-empty sentinels (zero value already satisfies this)

	oldEntries := t.entries
	t.count = 0
	for i := range oldEntries {
		e := oldEntries[i]
		if e.key == nil {
			continue
		}
		dest := findEntry(newEntries, e.key)
		dest.key = e.key
		dest.value = e.value
		t.count++
	}
	t.entries = newEntries
}

// Set stores value under key, growing the table first if the load factor
// would exceed 0.75. It returns true iff key was not already present.
func (t *Table) Set(key *chunk.ObjString, value chunk.Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*maxLoad {
		newCapacity := capacityFor(len(t.entries) * 2)
		t.adjustCapacity(newCapacity)
	}

	e := findEntry(t.entries, key)
	isNewKey := e.key == nil
	if isNewKey && e.isEmpty() {
		t.count++
	}

	e.key = key
	e.value = value
	return isNewKey
}

// Get looks up key and reports whether it was present.
func (t *Table) Get(key *chunk.ObjString) (chunk.Value, bool) {
	if len(t.entries) == 0 {
		return chunk.Nil(), false
	}
	e := findEntry(t.entries, key)
	if e.key == nil {
		return chunk.Nil(), false
	}
	return e.value, true
}

// Delete removes key by installing a tombstone. count is left unchanged
// so load-factor accounting still reflects the used-or-tombstoned slots.
func (t *Table) Delete(key *chunk.ObjString) bool {
	if len(t.entries) == 0 {
		return false
	}
	e := findEntry(t.entries, key)
	if e.key == nil {
		return false
	}
	e.key = nil
	e.value = chunk.Bool(true)
	return true
}

// FindString probes by content (length, cached hash, then byte
// comparison) rather than handle identity. It exists exclusively to
// support interning: given raw characters, it returns the existing
// handle if an equal-content string is already interned, else nil.
func (t *Table) FindString(chars string, hash uint32) *chunk.ObjString {
	if len(t.entries) == 0 {
		return nil
	}
	capacity := len(t.entries)
	index := int(hash) % capacity

	for {
		e := &t.entries[index]
		if e.key == nil {
			if e.isEmpty() {
				return nil
			}
		} else if e.key.Hash == hash && e.key.Chars == chars {
			return e.key
		}
		index = (index + 1) % capacity
	}
}

// Count returns the number of used-or-tombstoned slots.
func (t *Table) Count() int { return t.count }
