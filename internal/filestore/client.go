// Package filestore is a client for the remote file-storage service that
// issues signed, time-limited image URLs.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/maticamisay/eldisco-ecommerce/pkg/httpclient"
)

// Defaults used when Config leaves a field empty.
const (
	DefaultBaseURL = "https://file-manager-production-4c33.up.railway.app"
	DefaultTimeout = 30 * time.Second
)

const (
	opGetImageURL = "get_image_url"
	opListFiles   = "list_files"
)

var (
	// ErrTimeout is wrapped by every error caused by the request deadline.
	ErrTimeout = errors.New("file storage request timed out")
	// ErrMissingFilename is returned when no filename is given.
	ErrMissingFilename = errors.New("filename is required")
	// ErrUnavailable is wrapped when the circuit breaker rejects the call.
	ErrUnavailable = errors.New("file storage unavailable")
)

// Error is returned for every failed call. Message is safe to show to
// clients; Status is the upstream HTTP status when one was received.
type Error struct {
	Op      string
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Config holds the file-storage connection settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// DownloadURL is the signed URL issued for one file.
type DownloadURL struct {
	Message     string `json:"message"`
	DownloadURL string `json:"downloadUrl"`
	Filename    string `json:"filename"`
	ExpiresIn   int    `json:"expiresIn"`
}

// FileInfo describes one stored file.
type FileInfo struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
	UploadDate string `json:"uploadDate"`
	URL        string `json:"url"`
}

type filesResponse struct {
	Files []FileInfo `json:"files"`
}

// Client resolves filenames to signed URLs. Calls are never retried.
type Client struct {
	cfg    Config
	doer   httpclient.Doer
	cache  URLCache
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithDoer replaces the HTTP transport, typically with a circuit breaker.
func WithDoer(d httpclient.Doer) Option {
	return func(c *Client) { c.doer = d }
}

// WithCache enables the signed-URL cache.
func WithCache(cache URLCache) Option {
	return func(c *Client) { c.cache = cache }
}

// New creates a file-storage client.
func New(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	c := &Client{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	if c.doer == nil {
		hc := httpclient.DefaultConfig()
		hc.Timeout = cfg.Timeout
		c.doer = httpclient.New(hc)
	}
	return c
}

// GetImageURL returns the signed download URL for filename.
func (c *Client) GetImageURL(ctx context.Context, filename string) (string, error) {
	d, err := c.GetDownloadURL(ctx, filename)
	if err != nil {
		return "", err
	}
	return d.DownloadURL, nil
}

// GetDownloadURL requests a signed URL for filename, consulting the cache
// first when one is configured.
func (c *Client) GetDownloadURL(ctx context.Context, filename string) (*DownloadURL, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, &Error{Op: opGetImageURL, Message: ErrMissingFilename.Error(), Status: http.StatusBadRequest, Err: ErrMissingFilename}
	}

	if c.cache != nil {
		signed, ttl, ok, err := c.cache.Get(ctx, filename)
		if err != nil {
			c.logger.WarnContext(ctx, "signed url cache read failed",
				slog.String("filename", filename),
				slog.String("error", err.Error()),
			)
		} else if ok {
			cacheHits.Inc()
			return &DownloadURL{DownloadURL: signed, Filename: filename, ExpiresIn: int(ttl / time.Second)}, nil
		}
	}

	var out DownloadURL
	endpoint := c.cfg.BaseURL + "/files/" + url.PathEscape(filename)
	if err := c.get(ctx, opGetImageURL, endpoint, "image URL request timed out", &out); err != nil {
		return nil, err
	}
	if out.Filename == "" {
		out.Filename = filename
	}

	if c.cache != nil && out.DownloadURL != "" {
		if err := c.cache.Set(ctx, filename, out.DownloadURL, time.Duration(out.ExpiresIn)*time.Second); err != nil {
			c.logger.WarnContext(ctx, "signed url cache write failed",
				slog.String("filename", filename),
				slog.String("error", err.Error()),
			)
		}
	}
	return &out, nil
}

// ListFiles returns every file known to the storage service.
func (c *Client) ListFiles(ctx context.Context) ([]FileInfo, error) {
	var out filesResponse
	if err := c.get(ctx, opListFiles, c.cfg.BaseURL+"/files", "file list request timed out", &out); err != nil {
		return nil, err
	}
	if out.Files == nil {
		out.Files = []FileInfo{}
	}
	return out.Files, nil
}

func (c *Client) get(ctx context.Context, op, endpoint, timeoutMsg string, dst any) (err error) {
	start := time.Now()
	defer func() { observe(op, start, err) }()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return &Error{Op: op, Message: "invalid file storage request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		return c.transportError(op, timeoutMsg, err)
	}

	if !httpclient.IsSuccess(resp.StatusCode) {
		return &Error{Op: op, Message: httpclient.ReadErrorMessage(resp), Status: resp.StatusCode}
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		if httpclient.IsTimeout(err) {
			return &Error{Op: op, Message: timeoutMsg, Err: fmt.Errorf("%w: %v", ErrTimeout, err)}
		}
		return &Error{Op: op, Message: "invalid file storage response", Status: resp.StatusCode, Err: err}
	}
	return nil
}

func (c *Client) transportError(op, timeoutMsg string, err error) *Error {
	var statusErr *httpclient.StatusError
	switch {
	case httpclient.IsTimeout(err):
		return &Error{Op: op, Message: timeoutMsg, Err: fmt.Errorf("%w: %v", ErrTimeout, err)}
	case errors.Is(err, httpclient.ErrCircuitOpen):
		return &Error{Op: op, Message: ErrUnavailable.Error(), Err: ErrUnavailable}
	case errors.As(err, &statusErr):
		return &Error{Op: op, Message: httpclient.ErrorMessage(statusErr.StatusCode, statusErr.Body), Status: statusErr.StatusCode, Err: err}
	default:
		return &Error{Op: op, Message: "file storage request failed", Err: err}
	}
}
