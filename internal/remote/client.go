// Package remote exposes an engine.Service over HTTP and consumes one.
//
// The wire format is JSON under /api/v1. Errors are returned as
// {"code": ..., "message": ...} with a 4xx or 5xx status.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/rshade/profdiff/internal/engine"
	"github.com/rshade/profdiff/internal/logging"
)

// API paths.
const (
	PathProfiles = "/api/v1/profiles"
	PathCompare  = "/api/v1/compare"
	PathFields   = "/api/v1/fields"
	PathHealth   = "/healthz"
)

// Client defaults.
const (
	DefaultTimeout  = 30 * time.Second
	DefaultRetryMax = 3
)

// ClientOptions configures a Client. Zero values select defaults.
type ClientOptions struct {
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// HTTPClient replaces the underlying transport client, mostly for tests.
	HTTPClient *http.Client
}

// Client is an engine.Service backed by a remote comparison server.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

var _ engine.Service = (*Client)(nil)

// NewClient creates a client for the server at endpoint. Request logs go to
// the logger in ctx.
func NewClient(ctx context.Context, endpoint string, opts ClientOptions) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("endpoint %q: scheme must be http or https", endpoint)
	}

	rc := retryablehttp.NewClient()
	if opts.HTTPClient != nil {
		rc.HTTPClient = opts.HTTPClient
	}
	rc.HTTPClient.Timeout = DefaultTimeout
	if opts.Timeout > 0 {
		rc.HTTPClient.Timeout = opts.Timeout
	}
	rc.RetryMax = DefaultRetryMax
	if opts.RetryMax > 0 {
		rc.RetryMax = opts.RetryMax
	}
	if opts.RetryWaitMin > 0 {
		rc.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		rc.RetryWaitMax = opts.RetryWaitMax
	}
	// Keep the final response so its error body can be read.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	logger := logging.FromContext(ctx).With().Str("component", "remote").Logger()
	rc.Logger = &leveledLogger{logger: logger}

	return &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    rc,
	}, nil
}

// BaseURL returns the normalized endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListProfiles implements engine.Service.
func (c *Client) ListProfiles(ctx context.Context) ([]engine.ProfileInfo, error) {
	body, err := c.get(ctx, PathProfiles, nil)
	if err != nil {
		return nil, err
	}

	list := gjson.GetBytes(body, "profiles")
	if !list.IsArray() {
		return nil, fmt.Errorf("listing profiles: response has no profiles array")
	}
	profiles := make([]engine.ProfileInfo, 0, len(list.Array()))
	list.ForEach(func(_, value gjson.Result) bool {
		profiles = append(profiles, engine.ProfileInfo{
			ID:          value.Get("id").String(),
			Name:        value.Get("name").String(),
			LicenseName: value.Get("licenseName").String(),
		})
		return true
	})
	return profiles, nil
}

// Compare implements engine.Service.
func (c *Client) Compare(ctx context.Context, id1, id2 string) (*engine.Result, error) {
	body, err := c.get(ctx, PathCompare, url.Values{"profile1": {id1}, "profile2": {id2}})
	if err != nil {
		return nil, err
	}
	var result engine.Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding comparison: %w", err)
	}
	return &result, nil
}

// FetchDetail implements engine.Service.
func (c *Client) FetchDetail(ctx context.Context, id1, id2, objectKey string) ([]engine.DetailRow, error) {
	body, err := c.get(ctx, PathFields, url.Values{
		"profile1": {id1},
		"profile2": {id2},
		"object":   {objectKey},
	})
	if err != nil {
		return nil, err
	}
	var resp fieldsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding field comparison: %w", err)
	}
	if resp.Fields == nil {
		return []engine.DetailRow{}, nil
	}
	return resp.Fields, nil
}

// Ping checks the server health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, PathHealth, nil)
	return err
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", path, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, errorFromResponse(resp.StatusCode, body)
	}
	return body, nil
}

// errorFromResponse turns an error response into an engine.ServiceError.
func errorFromResponse(status int, body []byte) error {
	code := gjson.GetBytes(body, "code").String()
	if code == "" {
		code = codeForStatus(status)
	}
	return &engine.ServiceError{
		Code:    code,
		Message: gjson.GetBytes(body, "message").String(),
		Err:     fmt.Errorf("server returned %d %s", status, http.StatusText(status)),
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return engine.CodeInvalidRequest
	case http.StatusNotFound:
		return engine.CodeNotFound
	default:
		return engine.CodeInternal
	}
}

// leveledLogger adapts zerolog to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger zerolog.Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.event(l.logger.Warn(), msg, keysAndValues)
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.event(l.logger.Debug(), msg, keysAndValues)
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.event(l.logger.Trace(), msg, keysAndValues)
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.event(l.logger.Warn(), msg, keysAndValues)
}

func (l *leveledLogger) event(e *zerolog.Event, msg string, keysAndValues []interface{}) {
	e.Fields(keysAndValues).Msg(msg)
}
