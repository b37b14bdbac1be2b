package fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/wtf/pkg/core"
)

// Default file layout under the data home.
const (
	DefaultResDir       = "res"
	DefaultBaseFile     = "definitions.txt"
	DefaultAddedFile    = "added.txt"
	DefaultRemovedFile  = "removed.txt"
	DefaultMetadataFile = "sync.meta"
)

// Repository implements core.Repository on top of plain line files:
//
//	<Path>/res/definitions.txt   base snapshot, rewritten whole by sync
//	<Path>/res/added.txt         user additions, append-only
//	<Path>/res/removed.txt       tombstones, append-only (recover rewrites it)
//	<Path>/sync.meta             sync metadata
type Repository struct {
	Path   string
	config Config

	mu            sync.RWMutex
	readOnly      bool
	watcherActive bool
	lastLoad      *time.Time
	lastEvent     *time.Time
	counts        FileCounts
}

// FileCounts holds the number of records read from each dictionary file.
type FileCounts struct {
	Base    int `json:"base"`
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path         string
	MustExist    bool
	ReadOnly     bool
	Logger       *slog.Logger
	ErrorHandler func(error)

	// File names; empty values fall back to the defaults above.
	ResDir       string
	BaseFile     string
	AddedFile    string
	RemovedFile  string
	MetadataFile string
}

// NewRepository creates a new filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.ResDir == "" {
		config.ResDir = DefaultResDir
	}
	if config.BaseFile == "" {
		config.BaseFile = DefaultBaseFile
	}
	if config.AddedFile == "" {
		config.AddedFile = DefaultAddedFile
	}
	if config.RemovedFile == "" {
		config.RemovedFile = DefaultRemovedFile
	}
	if config.MetadataFile == "" {
		config.MetadataFile = DefaultMetadataFile
	}
	return &Repository{
		Path:     config.Path,
		config:   config,
		readOnly: config.ReadOnly,
	}
}

// BasePath returns the location of the base snapshot.
func (r *Repository) BasePath() string {
	return filepath.Join(r.Path, r.config.ResDir, r.config.BaseFile)
}

// AddedPath returns the location of the added log.
func (r *Repository) AddedPath() string {
	return filepath.Join(r.Path, r.config.ResDir, r.config.AddedFile)
}

// RemovedPath returns the location of the removed log.
func (r *Repository) RemovedPath() string {
	return filepath.Join(r.Path, r.config.ResDir, r.config.RemovedFile)
}

// MetadataPath returns the location of the sync metadata record.
func (r *Repository) MetadataPath() string {
	return filepath.Join(r.Path, r.config.MetadataFile)
}

func (r *Repository) resDir() string {
	return filepath.Join(r.Path, r.config.ResDir)
}

// Initialize creates the data home and the resource directory.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("data home does not exist: %s", r.Path)
		}
		if err != nil {
			return fmt.Errorf("failed to stat data home: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("data home is not a directory: %s", r.Path)
		}
	}
	if r.readOnly {
		return nil
	}
	if err := os.MkdirAll(r.resDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// Load reads the base snapshot, the added log and the removed log.
// Missing files are treated as empty.
func (r *Repository) Load(ctx context.Context) (core.Snapshot, error) {
	base, err := readEntries(r.BasePath())
	if err != nil {
		return core.Snapshot{}, err
	}
	added, err := readEntries(r.AddedPath())
	if err != nil {
		return core.Snapshot{}, err
	}
	removed, err := readEntries(r.RemovedPath())
	if err != nil {
		return core.Snapshot{}, err
	}

	r.mu.Lock()
	now := time.Now()
	r.lastLoad = &now
	r.counts = FileCounts{Base: len(base), Added: len(added), Removed: len(removed)}
	r.mu.Unlock()

	if r.config.Logger != nil {
		r.config.Logger.Debug("loaded dictionary files",
			"path", r.Path,
			"base", len(base),
			"added", len(added),
			"removed", len(removed),
		)
	}

	return core.Snapshot{
		Entries: append(base, added...),
		Base:    len(base),
		Removed: removed,
	}, nil
}

// ReadSnapshot reads only the base snapshot.
func (r *Repository) ReadSnapshot(ctx context.Context) ([]core.Entry, error) {
	return readEntries(r.BasePath())
}

// WriteSnapshot replaces the base snapshot with data in a single atomic write.
func (r *Repository) WriteSnapshot(ctx context.Context, data []byte) error {
	if r.readOnly {
		return core.ErrReadOnly
	}
	if err := os.MkdirAll(r.resDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := writeFileAtomic(r.BasePath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	if entries, err := DecodeEntries(bytes.NewReader(data)); err == nil {
		r.mu.Lock()
		r.counts.Base = len(entries)
		r.mu.Unlock()
	}

	if r.config.Logger != nil {
		r.config.Logger.Debug("snapshot written", "path", r.BasePath(), "bytes", len(data))
	}
	return nil
}

// WriteEntries encodes entries and replaces the base snapshot with them.
func (r *Repository) WriteEntries(ctx context.Context, entries []core.Entry) error {
	return r.WriteSnapshot(ctx, EncodeEntries(entries))
}

// AppendAdded appends a user-added entry to the added log.
func (r *Repository) AppendAdded(ctx context.Context, e core.Entry) error {
	if r.readOnly {
		return core.ErrReadOnly
	}
	if err := appendLine(r.AddedPath(), FormatLine(e)); err != nil {
		return err
	}
	r.mu.Lock()
	r.counts.Added++
	r.mu.Unlock()
	return nil
}

// AppendRemoved appends a tombstone to the removed log.
func (r *Repository) AppendRemoved(ctx context.Context, e core.Entry) error {
	if r.readOnly {
		return core.ErrReadOnly
	}
	if err := appendLine(r.RemovedPath(), FormatLine(e)); err != nil {
		return err
	}
	r.mu.Lock()
	r.counts.Removed++
	r.mu.Unlock()
	return nil
}

// DropRemoved rewrites the removed log without the records matching e.
// The file is left untouched when nothing matches.
func (r *Repository) DropRemoved(ctx context.Context, e core.Entry) (int, error) {
	if r.readOnly {
		return 0, core.ErrReadOnly
	}

	removed, err := readEntries(r.RemovedPath())
	if err != nil {
		return 0, err
	}

	kept := removed[:0:0]
	dropped := 0
	for _, rec := range removed {
		if rec.Matches(e.Term, e.Definition) {
			dropped++
			continue
		}
		kept = append(kept, rec)
	}
	if dropped == 0 {
		return 0, nil
	}

	if err := writeFileAtomic(r.RemovedPath(), EncodeEntries(kept), 0644); err != nil {
		return 0, fmt.Errorf("failed to rewrite removed log: %w", err)
	}

	r.mu.Lock()
	r.counts.Removed = len(kept)
	r.mu.Unlock()
	return dropped, nil
}

func readEntries(path string) ([]core.Entry, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	entries, err := DecodeEntries(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return entries, nil
}

var _ core.Repository = (*Repository)(nil)
var _ core.MetadataStore = (*Repository)(nil)
var _ core.Watchable = (*Repository)(nil)
