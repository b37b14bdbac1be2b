package core

import "time"

// DefaultSyncInterval is the minimum time between two automatic syncs.
const DefaultSyncInterval = 2 * time.Minute

// SyncStatus is the terminal state of one synchronization attempt.
type SyncStatus int

const (
	StatusIdle SyncStatus = iota
	StatusChecking
	// StatusUpToDate means the remote version equals the recorded one.
	StatusUpToDate
	// StatusNeedsSync means a newer version was found and applied.
	StatusNeedsSync
	StatusError
	StatusNoNetwork
)

func (s SyncStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusChecking:
		return "checking"
	case StatusUpToDate:
		return "up_to_date"
	case StatusNeedsSync:
		return "needs_sync"
	case StatusError:
		return "error"
	case StatusNoNetwork:
		return "no_network"
	default:
		return "unknown"
	}
}

// SyncMode says how a successful sync updated the dictionary.
type SyncMode string

const (
	ModeNone  SyncMode = "none"
	ModeFull  SyncMode = "full"
	ModeDelta SyncMode = "delta"
)

// SyncMetadata is the persisted record of the last synchronization.
type SyncMetadata struct {
	LastSync     time.Time
	LastVersion  string
	AutoSync     bool
	SyncInterval time.Duration
}

// DefaultSyncMetadata is used when no metadata has been recorded yet.
func DefaultSyncMetadata() SyncMetadata {
	return SyncMetadata{AutoSync: true, SyncInterval: DefaultSyncInterval}
}

// Due reports whether an automatic sync should run at now.
func (m SyncMetadata) Due(now time.Time) bool {
	if !m.AutoSync {
		return false
	}
	interval := m.SyncInterval
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return now.Sub(m.LastSync) >= interval
}

// SyncReport describes the outcome of one synchronization attempt.
type SyncReport struct {
	Status  SyncStatus `json:"status"`
	Mode    SyncMode   `json:"mode"`
	Version string     `json:"version,omitempty"`
	Added   int        `json:"added,omitempty"`
	Deleted int        `json:"deleted,omitempty"`
	Bytes   int64      `json:"bytes,omitempty"`
}

// MarshalText renders the status by name in JSON and YAML output.
func (s SyncStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
