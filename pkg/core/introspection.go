package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Loaded         bool        `json:"loaded"`
	Entries        int         `json:"entries"`
	Terms          int         `json:"terms"`
	Removed        int         `json:"removed"`
	ReadOnly       bool        `json:"read_only"`
	SyncEnabled    bool        `json:"sync_enabled"`
	LastSync       *SyncReport `json:"last_sync,omitempty"`
	RepositoryType string      `json:"repository_type"`
	SyncerType     string      `json:"syncer_type,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	repoType := "unknown"
	if s.repo != nil {
		repoType = "repository"
		if comp, ok := s.repo.(introspection.Component); ok {
			repoType = comp.ComponentType()
		}
	}

	var syncerType string
	if s.syncer != nil {
		syncerType = "synchronizer"
		if comp, ok := s.syncer.(introspection.Component); ok {
			syncerType = comp.ComponentType()
		}
	}

	return ServiceState{
		Loaded:         s.loaded,
		Entries:        s.dict.Len(),
		Terms:          len(s.dict.Terms()),
		Removed:        s.tomb.Len(),
		ReadOnly:       s.readOnly,
		SyncEnabled:    s.syncer != nil,
		LastSync:       s.lastReport,
		RepositoryType: repoType,
		SyncerType:     syncerType,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
