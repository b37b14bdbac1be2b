package wtf

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/wtf/internal/platform"
	"github.com/aretw0/wtf/pkg/core"
	"github.com/aretw0/wtf/pkg/remote"
)

// --- Types ---

// Entry is one term:definition pair.
type Entry = core.Entry

// Service is the dictionary service.
type Service = core.Service

// Instance groups the wired components of one dictionary.
type Instance = platform.Instance

// SyncReport describes the outcome of a synchronization attempt.
type SyncReport = core.SyncReport

// --- Configuration ---

// Option defines a functional option for configuring the dictionary.
type Option = platform.Option

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist requires the data home to exist already.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithRepository allows injecting a custom storage adapter.
func WithRepository(repo core.Repository) Option {
	return platform.WithRepository(repo)
}

// WithAdapter allows specifying the storage adapter to use by name.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithWatcherErrorHandler registers a callback for watcher errors.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// WithReadOnly enables read-only mode.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithDevSafety controls the dev sandbox used under `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithSync enables or disables remote synchronization.
func WithSync(enabled bool) Option {
	return platform.WithSync(enabled)
}

// WithRemote sets the remote dictionary source.
func WithRemote(cfg remote.Config) Option {
	return platform.WithRemote(cfg)
}

// WithRepo selects the remote repository ("owner/name") and branch.
func WithRepo(repo, branch string) Option {
	return platform.WithRepo(repo, branch)
}

// WithToken sets an API token sent with GitHub API requests.
func WithToken(token string) Option {
	return platform.WithToken(token)
}

// WithTimeouts sets the connectivity probe and transfer timeouts.
func WithTimeouts(probe, transfer time.Duration) Option {
	return platform.WithTimeouts(probe, transfer)
}

// WithHTTPClient overrides the HTTP client used by the sync engine.
func WithHTTPClient(c *http.Client) Option {
	return platform.WithHTTPClient(c)
}

// WithDeletePolicy selects how delta deletions are applied.
func WithDeletePolicy(p remote.DeletePolicy) Option {
	return platform.WithDeletePolicy(p)
}

// WithAddPolicy selects how delta additions are applied.
func WithAddPolicy(p remote.AddPolicy) Option {
	return platform.WithAddPolicy(p)
}

// WithProgress registers a download progress callback.
func WithProgress(fn func(*remote.Transfer)) Option {
	return platform.WithProgress(fn)
}

// --- Factory ---

// New creates a new dictionary Service.
func New(home string, opts ...Option) (*core.Service, error) {
	return platform.New(home, opts...)
}

// Open creates the service together with its repository and sync engine.
func Open(home string, opts ...Option) (*Instance, error) {
	return platform.Open(home, opts...)
}

// Init initializes a repository explicitly.
func Init(home string, opts ...Option) (core.Repository, error) {
	return platform.Init(home, opts...)
}

// --- Operations ---

// Sync performs one synchronization of the dictionary with its remote.
func Sync(home string, force bool, opts ...Option) (core.SyncReport, error) {
	return platform.Sync(home, force, opts...)
}

// --- Safety & Utils ---

// DefaultHome returns the default data home (~/.wtf).
func DefaultHome() string {
	return platform.DefaultHome()
}

// ResolveHome determines the actual data home based on safety rules.
func ResolveHome(userPath string, forceTemp bool) string {
	return platform.ResolveHome(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindHome looks upwards for a project-local .wtf directory.
func FindHome(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}
