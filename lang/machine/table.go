package machine

import "hash/fnv"

// Table is an open-addressed hash table with linear probing and tombstone
// deletion, used for the global-variable table and the string-intern pool.
// Every other mapping in this package (Class.Methods, Instance.Fields) uses
// github.com/dolthub/swiss instead — Table exists to implement this
// specific probing/tombstone/growth discipline, not as a general-purpose
// map replacement.
type Table struct {
	count   int // live entries plus tombstones; drives grow(), not Len()'s contract alone
	entries []tableEntry
}

type tableEntry struct {
	key           string
	value         Value
	present       bool // false with value==nil means never used; false with value!=nil means tombstone
}

const tableMaxLoad = 0.75

// NewTable returns an empty table.
func NewTable() *Table { return &Table{} }

func hashString(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

// Get returns the value associated with key, if any.
func (t *Table) Get(key string) (Value, bool) {
	if len(t.entries) == 0 {
		return nil, false
	}
	e := t.findEntry(key)
	if !e.present {
		return nil, false
	}
	return e.value, true
}

// Set inserts or updates key, growing the table first if needed. It reports
// whether key was newly inserted (as opposed to overwriting an existing
// entry).
func (t *Table) Set(key string, value Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*tableMaxLoad {
		t.grow()
	}
	e := t.findEntry(key)
	isNew := !e.present
	if isNew && e.value == nil {
		t.count++
	}
	e.key = key
	e.value = value
	e.present = true
	return isNew
}

// Delete removes key, leaving a tombstone so that probe chains through it
// remain intact.
func (t *Table) Delete(key string) bool {
	if t.count == 0 {
		return false
	}
	e := t.findEntry(key)
	if !e.present {
		return false
	}
	e.key = ""
	e.present = false
	e.value = Bool(true) // tombstone marker: present=false but value!=nil
	return true
}

// findEntry locates the slot for key: either the existing entry, the first
// tombstone seen along the probe chain, or the first truly empty slot.
func (t *Table) findEntry(key string) *tableEntry {
	capacity := uint32(len(t.entries))
	index := hashString(key) % capacity
	var tombstone *tableEntry

	for {
		e := &t.entries[index]
		switch {
		case !e.present && e.value == nil:
			if tombstone != nil {
				return tombstone
			}
			return e
		case !e.present:
			if tombstone == nil {
				tombstone = e
			}
		case e.key == key:
			return e
		}
		index = (index + 1) % capacity
	}
}

func (t *Table) grow() {
	newCap := len(t.entries) * 2
	if newCap < 8 {
		newCap = 8
	}
	old := t.entries
	t.entries = make([]tableEntry, newCap)
	t.count = 0
	for _, e := range old {
		if !e.present {
			continue
		}
		t.Set(e.key, e.value)
	}
}

// Len reports the number of occupied slots: live entries plus tombstones.
// Delete never decrements count, so a table with heavy churn grows sooner
// than its live-entry count alone would require; this matches the reference
// table's own load-factor accounting.
func (t *Table) Len() int { return t.count }

// Keys returns every live key, in table order (not insertion order).
func (t *Table) Keys() []string {
	keys := make([]string, 0, t.count)
	for _, e := range t.entries {
		if e.present {
			keys = append(keys, e.key)
		}
	}
	return keys
}
