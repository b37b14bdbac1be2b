package core

// Tombstones is the overlay of entries hidden from the active view.
// It has the same shape and operations as Dictionary.
type Tombstones struct {
	*Dictionary
}

// NewTombstones returns an empty overlay.
func NewTombstones() *Tombstones {
	return &Tombstones{Dictionary: NewDictionary()}
}

// IsHidden reports whether the exact (term, definition) pair is tombstoned.
func (t *Tombstones) IsHidden(term, definition string) bool {
	return t.Contains(term, definition)
}

// Visible filters entries down to those not hidden by the overlay.
func (t *Tombstones) Visible(entries []Entry) []Entry {
	var out []Entry
	for _, e := range entries {
		if !t.IsHidden(e.Term, e.Definition) {
			out = append(out, e)
		}
	}
	return out
}
