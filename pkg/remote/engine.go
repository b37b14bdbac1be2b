package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/introspection"

	"github.com/aretw0/wtf/pkg/core"
)

// Engine is the sync state machine. Each Sync call walks
// IDLE → CHECKING → {UP_TO_DATE, NEEDS_SYNC, ERROR, NO_NETWORK}.
type Engine struct {
	client *Client
	repo   core.Repository
	meta   core.MetadataStore

	logger       *slog.Logger
	deletePolicy DeletePolicy
	addPolicy    AddPolicy
	onProgress   func(*Transfer)
	now          func() time.Time

	mu         sync.Mutex
	status     core.SyncStatus
	lastReport *core.SyncReport
	lastErr    error
	lastRate   float64
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the logger.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithDeletePolicy chooses how delta deletes are applied.
func WithDeletePolicy(p DeletePolicy) EngineOption {
	return func(e *Engine) {
		e.deletePolicy = p
	}
}

// WithAddPolicy chooses how delta adds are applied.
func WithAddPolicy(p AddPolicy) EngineOption {
	return func(e *Engine) {
		e.addPolicy = p
	}
}

// WithProgress registers a callback for snapshot download progress.
func WithProgress(fn func(*Transfer)) EngineOption {
	return func(e *Engine) {
		e.onProgress = fn
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a sync engine. meta is usually the same value as repo.
func NewEngine(client *Client, repo core.Repository, meta core.MetadataStore, opts ...EngineOption) *Engine {
	e := &Engine{
		client: client,
		repo:   repo,
		meta:   meta,
		now:    time.Now,
		status: core.StatusIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Due reports whether the elapsed-time policy asks for an automatic sync.
func (e *Engine) Due(ctx context.Context) (bool, error) {
	meta, err := e.meta.LoadMetadata(ctx)
	if err != nil {
		return false, err
	}
	return meta.Due(e.now()), nil
}

// Metadata returns the persisted sync record.
func (e *Engine) Metadata(ctx context.Context) (core.SyncMetadata, error) {
	return e.meta.LoadMetadata(ctx)
}

// ConfigureSync changes the automatic sync policy. Nil arguments are left as they are.
func (e *Engine) ConfigureSync(ctx context.Context, auto *bool, interval *time.Duration) (core.SyncMetadata, error) {
	meta, err := e.meta.LoadMetadata(ctx)
	if err != nil {
		return core.SyncMetadata{}, err
	}
	if auto != nil {
		meta.AutoSync = *auto
	}
	if interval != nil {
		if *interval < time.Second {
			return core.SyncMetadata{}, fmt.Errorf("sync interval must be at least 1s, got %s", *interval)
		}
		meta.SyncInterval = *interval
	}
	if err := e.meta.SaveMetadata(ctx, meta); err != nil {
		return core.SyncMetadata{}, err
	}
	return meta, nil
}

// Sync runs one attempt against the remote. The returned report always
// carries the terminal status; on error no dictionary file has been touched
// unless the error happened after the snapshot write (reload failure).
func (e *Engine) Sync(ctx context.Context, dict *core.Dictionary, force bool) (core.SyncReport, error) {
	e.setStatus(core.StatusChecking)
	report := core.SyncReport{Status: core.StatusChecking, Mode: core.ModeNone}

	if err := e.client.Probe(ctx); err != nil {
		return e.finish(report, core.StatusNoNetwork, err)
	}

	meta, err := e.meta.LoadMetadata(ctx)
	if err != nil {
		return e.finish(report, core.StatusError, err)
	}

	version, err := e.client.LatestVersion(ctx)
	if err != nil {
		return e.finish(report, core.StatusError, err)
	}
	report.Version = version

	if version == meta.LastVersion && !force {
		meta.LastSync = e.now()
		e.saveMetadata(ctx, meta)
		return e.finish(report, core.StatusUpToDate, nil)
	}

	switch {
	case force || meta.LastVersion == "":
		err = e.fullSync(ctx, dict, version, &report)
	default:
		err = e.deltaSync(ctx, dict, meta.LastVersion, version, &report)
		if errors.Is(err, core.ErrDiffUnavailable) {
			if e.logger != nil {
				e.logger.Info("diff unavailable, falling back to full snapshot", "from", meta.LastVersion, "to", version, "reason", err)
			}
			err = e.fullSync(ctx, dict, version, &report)
		}
	}
	if err != nil {
		return e.finish(report, core.StatusError, err)
	}

	meta.LastVersion = version
	meta.LastSync = e.now()
	e.saveMetadata(ctx, meta)
	return e.finish(report, core.StatusNeedsSync, nil)
}

func (e *Engine) fullSync(ctx context.Context, dict *core.Dictionary, version string, report *core.SyncReport) error {
	tr := NewTransfer(e.onProgress)
	data, err := e.client.FetchSnapshot(ctx, version, tr)
	report.Bytes = tr.Bytes
	e.recordRate(tr.Rate())
	if err != nil {
		return err
	}

	if err := e.repo.WriteSnapshot(ctx, data); err != nil {
		return err
	}
	if err := e.reload(ctx, dict); err != nil {
		return err
	}

	report.Mode = core.ModeFull
	report.Added = dict.Len()
	if e.logger != nil {
		e.logger.Debug("full snapshot applied", "version", version, "entries", dict.Len(), "bytes", tr.Bytes)
	}
	return nil
}

func (e *Engine) deltaSync(ctx context.Context, dict *core.Dictionary, from, to string, report *core.SyncReport) error {
	patch, err := e.client.FetchDiff(ctx, from, to)
	if err != nil {
		return err
	}
	report.Bytes = int64(len(patch))

	delta, err := ParseDiff(patch)
	if err != nil {
		return err
	}
	report.Mode = core.ModeDelta
	if delta.Len() == 0 {
		return nil
	}

	// The remote only owns the base snapshot. User additions are consulted for
	// duplicates but never edited; memory is rebuilt from the files afterwards.
	snap, err := e.repo.Load(ctx)
	if err != nil {
		return err
	}
	base := dictionaryOf(snap.BaseEntries())
	stats := delta.ApplyOverlay(base, dictionaryOf(snap.AddedEntries()), e.deletePolicy, e.addPolicy)
	if err := e.repo.WriteEntries(ctx, base.Entries()); err != nil {
		return err
	}
	if err := e.reload(ctx, dict); err != nil {
		return err
	}

	report.Added = stats.Added
	report.Deleted = stats.Deleted

	if e.logger != nil {
		e.logger.Debug("delta applied",
			"from", from,
			"to", to,
			"ops", delta.Len(),
			"added", stats.Added,
			"deleted", stats.Deleted,
			"skipped", stats.Skipped,
		)
	}
	return nil
}

// reload rebuilds dict from the repository so memory matches the files.
func (e *Engine) reload(ctx context.Context, dict *core.Dictionary) error {
	snap, err := e.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("snapshot written but reload failed: %w", err)
	}
	dict.Clear()
	for _, entry := range snap.Entries {
		dict.Insert(entry.Term, entry.Definition)
	}
	return nil
}

func dictionaryOf(entries []core.Entry) *core.Dictionary {
	dict := core.NewDictionary()
	for _, entry := range entries {
		dict.Insert(entry.Term, entry.Definition)
	}
	return dict
}

// saveMetadata persists meta; a failure here does not undo a completed sync.
func (e *Engine) saveMetadata(ctx context.Context, meta core.SyncMetadata) {
	if err := e.meta.SaveMetadata(ctx, meta); err != nil && e.logger != nil {
		e.logger.Warn("failed to save sync metadata", "error", err)
	}
}

func (e *Engine) finish(report core.SyncReport, status core.SyncStatus, err error) (core.SyncReport, error) {
	report.Status = status

	e.mu.Lock()
	e.status = status
	e.lastReport = &report
	e.lastErr = err
	e.mu.Unlock()

	if e.logger != nil {
		if err != nil {
			e.logger.Debug("sync finished", "status", status, "error", err)
		} else {
			e.logger.Debug("sync finished", "status", status, "mode", report.Mode, "version", report.Version)
		}
	}
	return report, err
}

func (e *Engine) setStatus(s core.SyncStatus) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = s
}

func (e *Engine) recordRate(rate float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastRate = rate
}

// EngineState exposes internal state for observability.
type EngineState struct {
	Status       core.SyncStatus  `json:"status"`
	LastReport   *core.SyncReport `json:"last_report,omitempty"`
	LastError    string           `json:"last_error,omitempty"`
	LastRate     float64          `json:"last_rate_bytes_per_sec,omitempty"`
	Repo         string           `json:"repo"`
	Branch       string           `json:"branch"`
	Path         string           `json:"path"`
	DeletePolicy string           `json:"delete_policy"`
	AddPolicy    string           `json:"add_policy"`
}

// State implements introspection.Introspectable.
func (e *Engine) State() any {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg := e.client.Config()
	state := EngineState{
		Status:       e.status,
		LastReport:   e.lastReport,
		LastRate:     e.lastRate,
		Repo:         cfg.Repo,
		Branch:       cfg.Branch,
		Path:         cfg.Path,
		DeletePolicy: e.deletePolicy.String(),
		AddPolicy:    e.addPolicy.String(),
	}
	if e.lastErr != nil {
		state.LastError = e.lastErr.Error()
	}
	return state
}

// ComponentType implements introspection.Component.
func (e *Engine) ComponentType() string {
	return "sync_engine"
}

var _ core.Synchronizer = (*Engine)(nil)
var _ introspection.Introspectable = (*Engine)(nil)
var _ introspection.Component = (*Engine)(nil)
