// Package lighthorse fetches analysis data from the Lighthorse backend.
package lighthorse

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/wonny/lighthorse/backend/pkg/httputil"
	"github.com/wonny/lighthorse/backend/pkg/logger"
	"github.com/wonny/lighthorse/backend/pkg/metrics"
	"github.com/wonny/lighthorse/backend/pkg/redis"
)

// maxBodyBytes caps a single upstream response
const maxBodyBytes = 32 << 20

// Client handles communication with the Lighthorse backend
// ⭐ SSOT: Lighthorse 백엔드 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	metrics    *metrics.Recorder
	baseURL    string

	// 여러 인스턴스가 같은 업스트림 한도를 나눠 씀
	shared      *redis.RateLimiter
	sharedLimit redis.RateLimitConfig
}

// NewClient creates a new Lighthorse client. rec may be nil.
func NewClient(httpClient *httputil.Client, log *logger.Logger, rec *metrics.Recorder, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithComponent("lighthorse"),
		metrics:    rec,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// WithSharedLimit makes every fetch wait on a Redis-backed window as well
// as the local limiter. A disabled limiter is ignored.
func (c *Client) WithSharedLimit(l *redis.RateLimiter, cfg redis.RateLimitConfig) *Client {
	if !l.Enabled() {
		return c
	}
	c.shared = l
	c.sharedLimit = cfg
	return c
}

// BaseURL returns the upstream root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL joins an endpoint path onto the base URL
func (c *Client) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// ChartURL builds the URL of an upstream chart image, e.g. ("fg", 1)
func (c *Client) ChartURL(kind string, n int) string {
	return c.URL(fmt.Sprintf("/charts/%s/%d", kind, n))
}

// Fetch performs one GET against path and returns the raw body.
// Network failures and non-2xx statuses come back as *TransientError.
func (c *Client) Fetch(ctx context.Context, path string) ([]byte, error) {
	start := time.Now()
	body, err := c.fetch(ctx, path)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		c.logger.WithFields(map[string]interface{}{
			"path":     path,
			"duration": elapsed,
		}).WithError(err).Error("Upstream fetch failed")
	} else {
		c.logger.WithFields(map[string]interface{}{
			"path":     path,
			"bytes":    len(body),
			"duration": elapsed,
		}).Debug("Upstream fetch completed")
	}
	c.metrics.RecordUpstream(path, outcome, elapsed)

	return body, err
}

func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	if c.shared != nil {
		if err := c.shared.Wait(ctx, c.sharedLimit); err != nil {
			return nil, &TransientError{Path: path, Err: fmt.Errorf("shared rate limit: %w", err)}
		}
	}

	resp, err := c.httpClient.Get(ctx, c.URL(path))
	if err != nil {
		return nil, &TransientError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// 본문은 버림 (에러 페이지)
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &TransientError{Path: path, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransientError{Path: path, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return body, nil
}

// TransientError is an upstream failure worth retrying later
type TransientError struct {
	Path       string
	StatusCode int
	Err        error
}

func (e *TransientError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upstream %s: unexpected status code: %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("upstream %s: %v", e.Path, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is (or wraps) a TransientError
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
