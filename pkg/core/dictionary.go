package core

import "slices"

// Dictionary is a multimap from case-folded term to the entries filed under it.
// Entries keep their original casing and insertion order; terms keep the
// order in which they were first seen.
//
// Dictionary does not reject duplicate pairs. Callers that need uniqueness
// check with Contains before calling Insert.
type Dictionary struct {
	entries map[string][]Entry
	order   []string
	size    int
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{entries: make(map[string][]Entry)}
}

// Insert appends a new entry under term.
func (d *Dictionary) Insert(term, definition string) {
	key := FoldTerm(term)
	if _, ok := d.entries[key]; !ok {
		d.order = append(d.order, key)
	}
	d.entries[key] = append(d.entries[key], Entry{Term: term, Definition: definition})
	d.size++
}

// LookupAll returns a copy of every entry filed under term, in insertion order.
// The boolean is false when no entry matches; the slice is then nil, never empty.
func (d *Dictionary) LookupAll(term string) ([]Entry, bool) {
	list, ok := d.entries[FoldTerm(term)]
	if !ok {
		return nil, false
	}
	return slices.Clone(list), true
}

// Contains reports whether the exact (term, definition) pair is present.
func (d *Dictionary) Contains(term, definition string) bool {
	for _, e := range d.entries[FoldTerm(term)] {
		if e.Definition == definition {
			return true
		}
	}
	return false
}

// DeleteExact removes the first entry matching term (case-insensitive) and
// definition (exact). It reports whether an entry was removed.
func (d *Dictionary) DeleteExact(term, definition string) bool {
	key := FoldTerm(term)
	list := d.entries[key]
	for i, e := range list {
		if e.Definition != definition {
			continue
		}
		list = slices.Delete(list, i, i+1)
		d.size--
		if len(list) == 0 {
			d.dropKey(key)
		} else {
			d.entries[key] = list
		}
		return true
	}
	return false
}

// DeleteAllForTerm removes every entry filed under term and returns how many were removed.
func (d *Dictionary) DeleteAllForTerm(term string) int {
	key := FoldTerm(term)
	n := len(d.entries[key])
	if n == 0 {
		return 0
	}
	d.size -= n
	d.dropKey(key)
	return n
}

// Clear empties the dictionary.
func (d *Dictionary) Clear() {
	d.entries = make(map[string][]Entry)
	d.order = nil
	d.size = 0
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	return d.size
}

// Terms returns the folded terms in first-seen order.
func (d *Dictionary) Terms() []string {
	return slices.Clone(d.order)
}

// Entries returns every entry, grouped by term in first-seen order.
func (d *Dictionary) Entries() []Entry {
	out := make([]Entry, 0, d.size)
	for _, key := range d.order {
		out = append(out, d.entries[key]...)
	}
	return out
}

func (d *Dictionary) dropKey(key string) {
	delete(d.entries, key)
	if i := slices.Index(d.order, key); i >= 0 {
		d.order = slices.Delete(d.order, i, i+1)
	}
}
