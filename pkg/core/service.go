package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// Definition is an entry together with its visibility.
type Definition struct {
	Entry
	Hidden bool `json:"hidden"`
}

// Service handles the business logic of the dictionary.
// The store and the overlay are loaded from the repository on first use and
// kept in memory for the rest of the invocation.
type Service struct {
	repo     Repository
	syncer   Synchronizer
	logger   *slog.Logger
	readOnly bool

	mu         sync.RWMutex
	dict       *Dictionary
	tomb       *Tombstones
	loaded     bool
	lastReport *SyncReport
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithSynchronizer attaches the remote synchronizer.
func WithSynchronizer(s Synchronizer) ServiceOption {
	return func(svc *Service) {
		svc.syncer = s
	}
}

// WithServiceLogger sets the logger used by the service.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(svc *Service) {
		svc.logger = logger
	}
}

// WithReadOnly makes every mutating operation return ErrReadOnly.
func WithReadOnly(readOnly bool) ServiceOption {
	return func(svc *Service) {
		svc.readOnly = readOnly
	}
}

// NewService creates a new Service.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo: repo,
		dict: NewDictionary(),
		tomb: NewTombstones(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load (re)builds the store and the overlay from the repository.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Service) load(ctx context.Context) error {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load dictionary: %w", err)
	}

	s.dict.Clear()
	for _, e := range snap.Entries {
		s.dict.Insert(e.Term, e.Definition)
	}
	s.tomb.Clear()
	for _, e := range snap.Removed {
		s.tomb.Insert(e.Term, e.Definition)
	}
	s.loaded = true

	if s.logger != nil {
		s.logger.Debug("dictionary loaded", "entries", s.dict.Len(), "removed", s.tomb.Len())
	}
	return nil
}

func (s *Service) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.load(ctx)
}

// rlockLoaded loads the dictionary on first use under the write lock, then
// returns holding the read lock. The caller releases it with the returned func.
func (s *Service) rlockLoaded(ctx context.Context) (func(), error) {
	s.mu.RLock()
	if s.loaded {
		return s.mu.RUnlock, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	err := s.ensureLoaded(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	return s.mu.RUnlock, nil
}

// Lookup returns the visible definitions of term.
// It returns ErrNotFound when the term is unknown or fully tombstoned.
func (s *Service) Lookup(ctx context.Context, term string) ([]Entry, error) {
	if FoldTerm(term) == "" {
		return nil, fmt.Errorf("%w: empty term", ErrInvalidEntry)
	}

	unlock, err := s.rlockLoaded(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	all, ok := s.dict.LookupAll(term)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, term)
	}
	visible := s.tomb.Visible(all)
	if len(visible) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, term)
	}
	return visible, nil
}

// ListDefinitions returns every definition stored under term with its
// visibility, in insertion order. Callers use it to pick which entry to
// remove or recover.
func (s *Service) ListDefinitions(ctx context.Context, term string) ([]Definition, error) {
	unlock, err := s.rlockLoaded(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	all, ok := s.dict.LookupAll(term)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, term)
	}
	defs := make([]Definition, 0, len(all))
	for _, e := range all {
		defs = append(defs, Definition{Entry: e, Hidden: s.tomb.IsHidden(e.Term, e.Definition)})
	}
	return defs, nil
}

// Add records a user definition. Adding a pair that is already visible
// returns ErrAlreadyExists; adding a pair that was removed makes it visible again.
func (s *Service) Add(ctx context.Context, term, definition string) error {
	e, err := newEntry(term, definition)
	if err != nil {
		return err
	}
	if s.readOnly {
		return ErrReadOnly
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	if s.dict.Contains(e.Term, e.Definition) {
		if s.tomb.IsHidden(e.Term, e.Definition) {
			if s.logger != nil {
				s.logger.Info("re-added removed definition", "term", e.Term)
			}
			return s.recover(ctx, e)
		}
		return fmt.Errorf("%w: %s", ErrAlreadyExists, e)
	}

	if err := s.repo.AppendAdded(ctx, e); err != nil {
		return fmt.Errorf("failed to add definition: %w", err)
	}
	s.dict.Insert(e.Term, e.Definition)
	return nil
}

// Remove hides a visible definition. The base snapshot is left untouched.
func (s *Service) Remove(ctx context.Context, term, definition string) error {
	if s.readOnly {
		return ErrReadOnly
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	if !s.dict.Contains(term, definition) || s.tomb.IsHidden(term, definition) {
		return fmt.Errorf("%w: %s:%s", ErrNotFound, term, definition)
	}

	e := s.stored(term, definition)
	if err := s.repo.AppendRemoved(ctx, e); err != nil {
		return fmt.Errorf("failed to remove definition: %w", err)
	}
	s.tomb.Insert(e.Term, e.Definition)
	return nil
}

// Recover restores a removed definition.
func (s *Service) Recover(ctx context.Context, term, definition string) error {
	if s.readOnly {
		return ErrReadOnly
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	if !s.tomb.IsHidden(term, definition) {
		return fmt.Errorf("%w: %s:%s", ErrNotRemoved, term, definition)
	}
	return s.recover(ctx, Entry{Term: term, Definition: definition})
}

func (s *Service) recover(ctx context.Context, e Entry) error {
	if _, err := s.repo.DropRemoved(ctx, e); err != nil {
		return fmt.Errorf("failed to recover definition: %w", err)
	}
	for s.tomb.DeleteExact(e.Term, e.Definition) {
	}
	return nil
}

// stored returns the entry as filed in the store, keeping its original casing.
func (s *Service) stored(term, definition string) Entry {
	all, _ := s.dict.LookupAll(term)
	for _, e := range all {
		if e.Definition == definition {
			return e
		}
	}
	return Entry{Term: term, Definition: definition}
}

// Search returns the visible terms whose folded form matches a doublestar
// glob pattern, in first-seen order. Each term is reported with the casing
// of its first visible entry.
func (s *Service) Search(ctx context.Context, pattern string) ([]string, error) {
	pattern = strings.ToLower(pattern)
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	unlock, err := s.rlockLoaded(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var out []string
	for _, key := range s.dict.Terms() {
		ok, err := doublestar.Match(pattern, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		all, _ := s.dict.LookupAll(key)
		if visible := s.tomb.Visible(all); len(visible) > 0 {
			out = append(out, visible[0].Term)
		}
	}
	return out, nil
}

// Sync runs one synchronization attempt against the remote source.
func (s *Service) Sync(ctx context.Context, force bool) (SyncReport, error) {
	if s.readOnly {
		return SyncReport{Status: StatusError, Mode: ModeNone}, ErrReadOnly
	}
	if s.syncer == nil {
		return SyncReport{Status: StatusError, Mode: ModeNone}, ErrSyncDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return SyncReport{Status: StatusError, Mode: ModeNone}, err
	}

	report, err := s.syncer.Sync(ctx, s.dict, force)
	s.lastReport = &report
	return report, err
}

// AutoSync runs a sync when the elapsed-time policy asks for one.
// Errors are logged and swallowed; the boolean reports whether a sync ran.
func (s *Service) AutoSync(ctx context.Context) (SyncReport, bool) {
	if s.readOnly || s.syncer == nil {
		return SyncReport{Status: StatusIdle, Mode: ModeNone}, false
	}

	due, err := s.syncer.Due(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("cannot evaluate sync policy", "error", err)
		}
		return SyncReport{Status: StatusIdle, Mode: ModeNone}, false
	}
	if !due {
		return SyncReport{Status: StatusIdle, Mode: ModeNone}, false
	}

	report, err := s.Sync(ctx, false)
	if err != nil && s.logger != nil {
		level := slog.LevelWarn
		if errors.Is(err, ErrNoNetwork) {
			level = slog.LevelDebug
		}
		s.logger.Log(ctx, level, "automatic sync failed", "status", report.Status, "error", err)
	}
	return report, true
}

// Watch observes changes to the dictionary files if the repository supports it.
func (s *Service) Watch(ctx context.Context) (<-chan Event, error) {
	w, ok := s.repo.(Watchable)
	if !ok {
		return nil, errors.New("repository does not support watching")
	}
	return w.Watch(ctx)
}

// newEntry validates user input for a new entry.
func newEntry(term, definition string) (Entry, error) {
	term = strings.TrimSpace(term)
	definition = strings.TrimSpace(definition)
	switch {
	case term == "" || definition == "":
		return Entry{}, fmt.Errorf("%w: term and definition must not be empty", ErrInvalidEntry)
	case strings.Contains(term, ":"):
		return Entry{}, fmt.Errorf("%w: term must not contain ':'", ErrInvalidEntry)
	case strings.ContainsAny(term+definition, "\r\n"):
		return Entry{}, fmt.Errorf("%w: line breaks are not supported", ErrInvalidEntry)
	}
	return Entry{Term: term, Definition: definition}, nil
}
