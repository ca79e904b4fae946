// This file is part of loxflux.
//
// Copyright 2024 The LoxFlux Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vm

// Table is an open-addressed hash table keyed by interned *ObjString,
// used for globals, instance fields and class method tables. Since keys
// are interned, lookups compare pointers rather than bytes.
type Table struct {
	entries []tableEntry
	count   int // live entries plus tombstones
	live    int // live entries only
}

type tableEntry struct {
	key   *ObjString
	value Value
	// tombstone is a deleted slot: key == nil, value == True.
}

const tableMaxLoad = 0.75

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{}
}

// Count reports the number of live key/value pairs.
func (t *Table) Count() int { return t.live }

// Get looks up key, returning its value and whether it was present.
func (t *Table) Get(key *ObjString) (Value, bool) {
	if len(t.entries) == 0 {
		return Nil, false
	}
	e := t.find(key)
	if e.key == nil {
		return Nil, false
	}
	return e.value, true
}

// Set inserts or updates key's value, returning true if this created a
// new entry.
func (t *Table) Set(key *ObjString, value Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*tableMaxLoad {
		t.grow(growCapacity(len(t.entries)))
	}
	e := t.find(key)
	isNew := e.key == nil
	if isNew && e.value == Nil {
		// Fresh slot (not a recycled tombstone) grows the tombstone budget.
		t.count++
	}
	if isNew {
		t.live++
	}
	e.key = key
	e.value = value
	return isNew
}

// Delete removes key, leaving a tombstone so subsequent probes do not
// stop short of entries placed after it. Returns whether key was present.
func (t *Table) Delete(key *ObjString) bool {
	if len(t.entries) == 0 {
		return false
	}
	e := t.find(key)
	if e.key == nil {
		return false
	}
	e.key = nil
	e.value = True // tombstone marker
	t.live--
	return true
}

// AddAll copies every entry of src into t, overwriting existing keys.
func (t *Table) AddAll(src *Table) {
	for _, e := range src.entries {
		if e.key != nil {
			t.Set(e.key, e.value)
		}
	}
}

// FindString looks up an interned string by raw content without already
// holding an *ObjString, used by the string pool to dedupe on intern.
func (t *Table) FindString(chars string, hash uint64) *ObjString {
	if len(t.entries) == 0 {
		return nil
	}
	mask := uint64(len(t.entries) - 1)
	idx := hash & mask
	for {
		e := &t.entries[idx]
		if e.key == nil {
			if e.value == Nil {
				return nil
			}
		} else if e.key.Hash == hash && e.key.Chars == chars {
			return e.key
		}
		idx = (idx + 1) & mask
	}
}

func (t *Table) find(key *ObjString) *tableEntry {
	return &t.entries[t.findIndex(key)]
}

// findIndex probes for key, returning the index of its live entry, or
// of the slot (a tombstone if one was passed over, otherwise the first
// empty slot) where it should be inserted.
func (t *Table) findIndex(key *ObjString) int {
	mask := uint64(len(t.entries) - 1)
	idx := key.Hash & mask
	tombstone := -1
	for {
		e := &t.entries[idx]
		switch {
		case e.key == nil:
			if e.value == Nil {
				if tombstone != -1 {
					return tombstone
				}
				return int(idx)
			}
			if tombstone == -1 {
				tombstone = int(idx)
			}
		case e.key == key:
			return int(idx)
		}
		idx = (idx + 1) & mask
	}
}

// GetGlobal looks up key the way Get does, but first tries key.Symbol,
// the slot index key last resolved to in this table. A grow() rehashes
// every entry and leaves stale Symbol values lying around in interned
// names, so the cached slot is verified (its key must still be key)
// before being trusted, rather than proactively invalidated.
func (t *Table) GetGlobal(key *ObjString) (Value, bool) {
	if key.Symbol >= 0 && key.Symbol < len(t.entries) && t.entries[key.Symbol].key == key {
		return t.entries[key.Symbol].value, true
	}
	if len(t.entries) == 0 {
		return Nil, false
	}
	idx := t.findIndex(key)
	e := &t.entries[idx]
	if e.key == nil {
		return Nil, false
	}
	key.Symbol = idx
	return e.value, true
}

// SetGlobal inserts or updates key's value the way Set does, maintaining
// key.Symbol as GetGlobal's inline cache.
func (t *Table) SetGlobal(key *ObjString, value Value) bool {
	if key.Symbol >= 0 && key.Symbol < len(t.entries) && t.entries[key.Symbol].key == key {
		t.entries[key.Symbol].value = value
		return false
	}
	if float64(t.count+1) > float64(len(t.entries))*tableMaxLoad {
		t.grow(growCapacity(len(t.entries)))
	}
	idx := t.findIndex(key)
	e := &t.entries[idx]
	isNew := e.key == nil
	if isNew && e.value == Nil {
		t.count++
	}
	if isNew {
		t.live++
	}
	e.key = key
	e.value = value
	key.Symbol = idx
	return isNew
}

func (t *Table) grow(capacity int) {
	old := t.entries
	t.entries = make([]tableEntry, capacity)
	for i := range t.entries {
		t.entries[i].value = Nil
	}
	t.count = 0
	t.live = 0
	for _, e := range old {
		if e.key == nil {
			continue
		}
		dst := t.find(e.key)
		dst.key = e.key
		dst.value = e.value
		t.count++
		t.live++
	}
}

func growCapacity(old int) int {
	if old < 8 {
		return 8
	}
	return old * 2
}

// Keys returns the live keys in bucket order, the order @object.keys
// exposes to script code.
func (t *Table) Keys() []*ObjString {
	keys := make([]*ObjString, 0, t.live)
	for _, e := range t.entries {
		if e.key != nil {
			keys = append(keys, e.key)
		}
	}
	return keys
}
