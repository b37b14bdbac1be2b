// Package core holds the dictionary domain: entries, the in-memory
// multimap, the tombstone overlay and the service that ties them to a
// persistence adapter and a synchronizer.
package core

import (
	"fmt"
	"strings"
)

// Entry is one (term, definition) pair. A term may own several entries.
type Entry struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// String renders the entry in its on-disk form, without the trailing newline.
func (e Entry) String() string {
	return e.Term + ":" + e.Definition
}

// Key returns the case-folded term used to index the entry.
func (e Entry) Key() string {
	return FoldTerm(e.Term)
}

// Matches reports whether e has the same folded term and the exact same definition.
func (e Entry) Matches(term, definition string) bool {
	return e.Definition == definition && FoldTerm(e.Term) == FoldTerm(term)
}

// FoldTerm normalizes a term for comparison.
func FoldTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// ParseRecord splits a stored `term:definition` record at the first colon.
// Both halves are kept exactly as written. It reports false when there is no
// colon, the term is blank or the definition is empty.
func ParseRecord(line string) (Entry, bool) {
	term, def, ok := strings.Cut(line, ":")
	if !ok || strings.TrimSpace(term) == "" || def == "" {
		return Entry{}, false
	}
	return Entry{Term: term, Definition: def}, true
}

// ParseEntry splits user input "term:definition" at the first colon.
// Both halves must be non-empty after trimming surrounding spaces.
func ParseEntry(s string) (Entry, error) {
	term, def, ok := strings.Cut(s, ":")
	term = strings.TrimSpace(term)
	def = strings.TrimSpace(def)
	if !ok || term == "" || def == "" {
		return Entry{}, fmt.Errorf("%w: expected <term>:<definition>, got %q", ErrInvalidEntry, s)
	}
	return Entry{Term: term, Definition: def}, nil
}

// EventType represents the kind of change observed on a dictionary file.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change to one of the dictionary files.
type Event struct {
	Type      EventType
	File      string // logical file: "snapshot", "added", "removed" or "metadata"
	Timestamp int64  // Unix timestamp
}

// String implements fmt.Stringer.
func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.File)
}
