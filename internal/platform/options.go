package platform

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/wtf/pkg/core"
	"github.com/aretw0/wtf/pkg/remote"
)

// options holds the internal configuration for the dictionary.
type options struct {
	repository core.Repository
	logger     *slog.Logger
	adapter    string
	config     map[string]interface{}
	remote     remote.Config
	engineOpts []remote.EngineOption
}

// Option defines a functional option for configuring the dictionary.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		repository: nil,
		logger:     nil,
		adapter:    "fs",
		config:     make(map[string]interface{}),
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithMustExist requires the data home to exist already.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithLogger sets the logger for the service, the repository and the sync engine.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRepository allows injecting a custom storage adapter (e.g. a mock).
// If provided, the default filesystem adapter will be skipped.
// Sync stays available only when the repository also implements core.MetadataStore.
func WithRepository(repo core.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithAdapter allows specifying the storage adapter to use by name.
// Defaults to "fs".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithWatcherErrorHandler registers a callback for errors raised inside the
// Watch loop (e.g. permission denied), which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.config["watcher_error_handler"] = fn
	}
}

// WithReadOnly enables read-only mode.
// In this mode:
// 1. Add, Remove, Recover and Sync return ErrReadOnly.
// 2. Initialization (Mkdir) is skipped.
// 3. Dev Safety Lock (go run temp dir) is BYPASSED (uses real path).
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithDevSafety controls the sandbox used when running via `go run` or `go test`.
// By default (true) the data home is re-rooted into a temporary directory.
//
// CAUTION: Only disable this if you are sure your code is safe.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}

// WithSync enables or disables remote synchronization. Enabled by default.
func WithSync(enabled bool) Option {
	return func(o *options) {
		o.config["sync"] = enabled
	}
}

// WithRemote sets the remote dictionary source. Zero fields keep their defaults.
func WithRemote(cfg remote.Config) Option {
	return func(o *options) {
		httpClient := o.remote.HTTPClient
		o.remote = cfg
		if cfg.HTTPClient == nil {
			o.remote.HTTPClient = httpClient
		}
	}
}

// WithRepo selects the remote repository ("owner/name") and branch.
func WithRepo(repo, branch string) Option {
	return func(o *options) {
		o.remote.Repo = repo
		o.remote.Branch = branch
	}
}

// WithToken sets an API token sent with GitHub API requests.
func WithToken(token string) Option {
	return func(o *options) {
		o.remote.Token = token
	}
}

// WithTimeouts sets the connectivity probe and transfer timeouts.
// The probe timeout is capped at remote.DefaultProbeTimeout.
func WithTimeouts(probe, transfer time.Duration) Option {
	return func(o *options) {
		o.remote.ProbeTimeout = probe
		o.remote.Timeout = transfer
	}
}

// WithHTTPClient overrides the HTTP client used by the sync engine.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.remote.HTTPClient = c
	}
}

// WithDeletePolicy selects how delta deletions are applied.
func WithDeletePolicy(p remote.DeletePolicy) Option {
	return func(o *options) {
		o.engineOpts = append(o.engineOpts, remote.WithDeletePolicy(p))
	}
}

// WithAddPolicy selects how delta additions are applied.
func WithAddPolicy(p remote.AddPolicy) Option {
	return func(o *options) {
		o.engineOpts = append(o.engineOpts, remote.WithAddPolicy(p))
	}
}

// WithProgress registers a callback receiving download progress.
func WithProgress(fn func(*remote.Transfer)) Option {
	return func(o *options) {
		o.engineOpts = append(o.engineOpts, remote.WithProgress(fn))
	}
}
