package core

import "context"

// Snapshot is what a Repository loads at the start of an invocation.
type Snapshot struct {
	// Entries holds the base snapshot followed by the user-added overlay.
	Entries []Entry
	// Base is the number of leading Entries read from the base snapshot.
	Base int
	// Removed holds the tombstone log in append order.
	Removed []Entry
}

// Repository defines the contract for persisting the dictionary.
// The base snapshot is only ever rewritten whole; the added and removed
// overlays are append-only logs.
type Repository interface {
	// Initialize ensures the underlying storage is ready (e.g. create directories).
	Initialize(ctx context.Context) error

	// Load reads base, added and removed records.
	Load(ctx context.Context) (Snapshot, error)

	// AppendAdded appends a user-added entry to the added log.
	AppendAdded(ctx context.Context, e Entry) error

	// AppendRemoved appends a tombstone to the removed log.
	AppendRemoved(ctx context.Context, e Entry) error

	// DropRemoved deletes every tombstone matching e from the removed log
	// and returns how many records were dropped.
	DropRemoved(ctx context.Context, e Entry) (int, error)

	// ReadSnapshot reads only the base snapshot.
	ReadSnapshot(ctx context.Context) ([]Entry, error)

	// WriteSnapshot replaces the base snapshot with data in a single write.
	WriteSnapshot(ctx context.Context, data []byte) error

	// WriteEntries replaces the base snapshot with entries in the record format.
	WriteEntries(ctx context.Context, entries []Entry) error
}

// BaseEntries returns the entries that came from the base snapshot.
func (s Snapshot) BaseEntries() []Entry {
	return s.Entries[:min(s.Base, len(s.Entries))]
}

// AddedEntries returns the entries that came from the user-added overlay.
func (s Snapshot) AddedEntries() []Entry {
	return s.Entries[min(s.Base, len(s.Entries)):]
}

// MetadataStore persists the sync metadata record.
type MetadataStore interface {
	LoadMetadata(ctx context.Context) (SyncMetadata, error)
	SaveMetadata(ctx context.Context, m SyncMetadata) error
}

// Synchronizer brings a dictionary up to date with its remote source.
type Synchronizer interface {
	// Sync runs one attempt. The report always carries the terminal status,
	// including when an error is returned.
	Sync(ctx context.Context, dict *Dictionary, force bool) (SyncReport, error)

	// Due reports whether the elapsed-time policy asks for an automatic sync.
	Due(ctx context.Context) (bool, error)
}

// Watchable defines an interface for repositories that report file changes.
type Watchable interface {
	Watch(ctx context.Context) (<-chan Event, error)
}
