package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/aretw0/wtf/pkg/core"
)

// Defaults point at the shared public dictionary.
const (
	DefaultAPIBase      = "https://api.github.com"
	DefaultRawBase      = "https://raw.githubusercontent.com"
	DefaultRepo         = "AnuragBhaskarya/wtf"
	DefaultBranch       = "main"
	DefaultPath         = ".wtf/res/definitions.txt"
	DefaultProbeTimeout = 2 * time.Second
	DefaultTimeout      = 5 * time.Second

	UserAgent = "WTF-Dictionary/1.0"
)

// Config describes the remote dictionary source.
type Config struct {
	APIBase string
	RawBase string
	Repo    string // owner/name
	Branch  string
	Path    string // dictionary file inside the repository
	Token   string // optional API token

	ProbeTimeout time.Duration
	Timeout      time.Duration

	// HTTPClient overrides the client used for version, diff and snapshot
	// requests. Its Timeout is left alone when set.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func (c *Config) setDefaults() {
	if c.APIBase == "" {
		c.APIBase = DefaultAPIBase
	}
	if c.RawBase == "" {
		c.RawBase = DefaultRawBase
	}
	if c.Repo == "" {
		c.Repo = DefaultRepo
	}
	if c.Branch == "" {
		c.Branch = DefaultBranch
	}
	if c.Path == "" {
		c.Path = DefaultPath
	}
	if c.ProbeTimeout <= 0 || c.ProbeTimeout > DefaultProbeTimeout {
		c.ProbeTimeout = DefaultProbeTimeout
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	c.APIBase = strings.TrimRight(c.APIBase, "/")
	c.RawBase = strings.TrimRight(c.RawBase, "/")
	c.Path = strings.TrimLeft(c.Path, "/")
}

// Client talks to the GitHub API and raw content host.
type Client struct {
	config Config
	http   *http.Client
	probe  *http.Client
}

// NewClient creates a client; zero Config fields fall back to the defaults.
func NewClient(config Config) *Client {
	config.setDefaults()

	hc := config.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: config.Timeout}
	}
	probe := &http.Client{
		Timeout:   config.ProbeTimeout,
		Transport: hc.Transport,
	}

	return &Client{
		config: config,
		http:   hc,
		probe:  probe,
	}
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.config
}

// Probe checks that the API host answers at all. Any HTTP response counts as
// reachable; only a transport failure or timeout yields ErrNoNetwork.
func (c *Client) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.config.APIBase, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrNoNetwork, err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.probe.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrNoNetwork, err)
	}
	resp.Body.Close()
	return nil
}

// LatestVersion returns the head commit SHA of the configured branch.
func (c *Client) LatestVersion(ctx context.Context) (string, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/commits/%s", c.config.APIBase, c.config.Repo, url.PathEscape(c.config.Branch))
	body, err := c.getAPI(ctx, endpoint)
	if err != nil {
		return "", err
	}

	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("%w: version response is not JSON", core.ErrParse)
	}
	sha := gjson.GetBytes(body, "sha")
	if !sha.Exists() || sha.String() == "" {
		return "", fmt.Errorf("%w: version response has no sha", core.ErrParse)
	}
	return sha.String(), nil
}

// FetchSnapshot downloads the dictionary file at version (or the branch head
// when version is empty) and returns it decompressed.
func (c *Client) FetchSnapshot(ctx context.Context, version string, tr *Transfer) ([]byte, error) {
	ref := version
	if ref == "" {
		ref = c.config.Branch
	}
	endpoint := fmt.Sprintf("%s/%s/%s/%s", c.config.RawBase, c.config.Repo, url.PathEscape(ref), c.config.Path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrTransport, err)
	}
	req.Header.Set("User-Agent", UserAgent)
	// Set explicitly so the transport hands back the compressed body.
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: snapshot request returned %s", core.ErrTransport, resp.Status)
	}

	if tr == nil {
		tr = NewTransfer(nil)
	}
	tr.Total = resp.ContentLength
	if tr.Total == 0 {
		tr.Total = -1
	}

	raw, err := io.ReadAll(tr.Reader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrTransport, err)
	}

	if c.config.Logger != nil {
		c.config.Logger.Debug("snapshot downloaded",
			"bytes", tr.Bytes,
			"gzip", IsGzip(raw),
			"elapsed", tr.Elapsed(),
		)
	}

	return Decode(raw)
}

// FetchDiff returns the unified diff of the dictionary file between two
// versions. An empty string means the file did not change. ErrDiffUnavailable
// is returned when the API cannot provide the patch (too large, unknown base).
func (c *Client) FetchDiff(ctx context.Context, from, to string) (string, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/compare/%s...%s", c.config.APIBase, c.config.Repo, url.PathEscape(from), url.PathEscape(to))
	body, err := c.getAPI(ctx, endpoint)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && (se.code == http.StatusNotFound || se.code == http.StatusUnprocessableEntity) {
			return "", fmt.Errorf("%w: %w", core.ErrDiffUnavailable, err)
		}
		return "", err
	}

	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("%w: compare response is not JSON", core.ErrParse)
	}
	files := gjson.GetBytes(body, "files")
	if !files.Exists() {
		return "", fmt.Errorf("%w: compare response has no files", core.ErrParse)
	}

	var (
		patch    string
		found    bool
		hasPatch bool
	)
	files.ForEach(func(_, file gjson.Result) bool {
		if file.Get("filename").String() != c.config.Path {
			return true
		}
		found = true
		p := file.Get("patch")
		hasPatch = p.Exists()
		patch = p.String()
		return false
	})

	if !found {
		return "", nil
	}
	if !hasPatch {
		return "", fmt.Errorf("%w: no patch for %s", core.ErrDiffUnavailable, c.config.Path)
	}
	return patch, nil
}

type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string {
	return "unexpected status " + e.status
}

func (c *Client) getAPI(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrTransport, err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrTransport, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %w", core.ErrTransport, &statusError{code: resp.StatusCode, status: resp.Status})
	}
	return body, nil
}
