package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path          string     `json:"path"`
	BaseFile      string     `json:"base_file"`
	AddedFile     string     `json:"added_file"`
	RemovedFile   string     `json:"removed_file"`
	MetadataFile  string     `json:"metadata_file"`
	Records       FileCounts `json:"records"`
	ReadOnly      bool       `json:"read_only"`
	WatcherActive bool       `json:"watcher_active"`
	LastLoad      *time.Time `json:"last_load,omitempty"`
	LastEvent     *time.Time `json:"last_event,omitempty"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return RepositoryState{
		Path:          r.Path,
		BaseFile:      r.BasePath(),
		AddedFile:     r.AddedPath(),
		RemovedFile:   r.RemovedPath(),
		MetadataFile:  r.MetadataPath(),
		Records:       r.counts,
		ReadOnly:      r.readOnly,
		WatcherActive: r.watcherActive,
		LastLoad:      r.lastLoad,
		LastEvent:     r.lastEvent,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "repository"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)

func (r *Repository) setWatcherActive(active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watcherActive = active
}

func (r *Repository) recordEvent() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.lastEvent = &now
}
