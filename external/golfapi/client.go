// Package golfapi is the offline client's view of the sync server.
package golfapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v5"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/golf-league/internal/platform/logging"
	"github.com/riskibarqy/golf-league/internal/platform/resilience"
	"github.com/riskibarqy/golf-league/internal/syncapi"
	"github.com/valyala/bytebufferpool"
	"golang.org/x/sync/singleflight"
)

const (
	defaultRetryBackoff = 500 * time.Millisecond
	maxResponseBytes    = 16 << 20
)

var (
	errTransient = crerr.New("golf api transient failure")

	// ErrUnavailable is returned while the circuit breaker is open.
	ErrUnavailable = crerr.New("golf api unavailable")
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("golf api status=%d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("golf api status=%d: %s", e.StatusCode, e.Message)
}

// IsTransient reports whether retrying the same call later may succeed.
func IsTransient(err error) bool {
	return crerr.Is(err, errTransient) || crerr.Is(err, ErrUnavailable)
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient   *http.Client
	baseURL      string
	maxRetries   int
	retryBackoff time.Duration
	logger       *logging.Logger
	breaker      *resilience.CircuitBreaker
	flight       singleflight.Group
}

func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, crerr.New("golf api base url is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	wait := cfg.RetryBackoff
	if wait <= 0 {
		wait = defaultRetryBackoff
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		maxRetries:   max(cfg.MaxRetries, 0),
		retryBackoff: wait,
		logger:       logger,
		breaker:      resilience.NewCircuitBreaker(cfg.CircuitBreaker),
	}, nil
}

func (c *Client) EnsureSchema(ctx context.Context) error {
	var out map[string]string
	return c.doEnvelope(ctx, http.MethodPost, "/api/schema/ensure", struct{}{}, &out)
}

func (c *Client) EnsureUser(ctx context.Context, req syncapi.EnsureUserRequest) (syncapi.User, error) {
	var out syncapi.User
	if err := c.doEnvelope(ctx, http.MethodPost, "/api/users/ensure", req, &out); err != nil {
		return syncapi.User{}, err
	}
	return out, nil
}

func (c *Client) GetUser(ctx context.Context, userID int64) (syncapi.User, error) {
	var out syncapi.User
	if err := c.doEnvelope(ctx, http.MethodGet, "/api/users/"+strconv.FormatInt(userID, 10), nil, &out); err != nil {
		return syncapi.User{}, err
	}
	return out, nil
}

func (c *Client) ListCourses(ctx context.Context) ([]syncapi.Course, error) {
	var out []syncapi.Course
	if err := c.doJSON(ctx, http.MethodGet, "/courses", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCourse(ctx context.Context, in syncapi.Course) (syncapi.CreatedCourse, error) {
	var out syncapi.CreatedCourse
	if err := c.doJSON(ctx, http.MethodPost, "/courses", in, &out); err != nil {
		return syncapi.CreatedCourse{}, err
	}
	return out, nil
}

func (c *Client) Sync(ctx context.Context, req syncapi.SyncRequest) (syncapi.SyncResponse, error) {
	var out syncapi.SyncResponse
	if err := c.doJSON(ctx, http.MethodPost, "/sync", req, &out); err != nil {
		return syncapi.SyncResponse{}, err
	}
	return out, nil
}

func (c *Client) Activity(ctx context.Context, userID int64) (syncapi.Activity, error) {
	var out syncapi.Activity
	path := "/api/user/" + strconv.FormatInt(userID, 10) + "/activity"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return syncapi.Activity{}, err
	}
	return out, nil
}

type envelope struct {
	Data  sonic.NoCopyRawMessage `json:"data"`
	Error *envelopeError         `json:"error"`
}

type envelopeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (c *Client) doEnvelope(ctx context.Context, method, path string, body, target any) error {
	var env envelope
	if err := c.doJSON(ctx, method, path, body, &env); err != nil {
		return err
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(env.Data, target); err != nil {
		return fmt.Errorf("decode %s data: %w", path, err)
	}
	return nil
}

// doJSON sends one call through the breaker. Concurrent identical GETs share
// a single request.
func (c *Client) doJSON(ctx context.Context, method, path string, body, target any) error {
	var payload []byte
	if body != nil {
		encoded, err := encodeBody(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		payload = encoded
	}

	call := func() (any, error) {
		var raw []byte
		err := c.breaker.Call(func() error {
			out, reqErr := c.executeRequest(ctx, method, path, payload)
			raw = out
			return reqErr
		}, IsTransient)
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "golf api circuit breaker rejected request", "path", path, "state", c.breaker.State())
			return nil, crerr.Mark(fmt.Errorf("%s %s: %w", method, path, err), ErrUnavailable)
		}
		return raw, err
	}

	var (
		out any
		err error
	)
	if method == http.MethodGet {
		out, err, _ = c.flight.Do(method+" "+path, call)
	} else {
		out, err = call()
	}
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func encodeBody(body any) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(body); err != nil {
		return nil, err
	}
	return append([]byte(nil), buf.B...), nil
}

// executeRequest sends one request. With MaxRetries set, transient failures
// of GET calls are retried with exponential backoff; writes always get a
// single attempt and are retried by the next sync run.
func (c *Client) executeRequest(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryBackoff

	tries := 1
	if method == http.MethodGet {
		tries += c.maxRetries
	}

	attempts := 0
	raw, err := backoff.Retry(ctx, func() ([]byte, error) {
		attempts++
		return c.send(ctx, method, path, payload)
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(tries)),
	)
	if err == nil {
		return raw, nil
	}

	var permanent *backoff.PermanentError
	if crerr.As(err, &permanent) {
		err = permanent.Unwrap()
	}
	if IsTransient(err) {
		c.logger.WarnContext(ctx, "golf api request failed", "method", method, "path", path, "attempts", attempts, "error", err)
	}
	return nil, err
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, crerr.Mark(fmt.Errorf("send %s %s: %w", method, path, err), errTransient)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, crerr.Mark(fmt.Errorf("read %s response: %w", path, err), errTransient)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	apiErr := decodeAPIError(resp.StatusCode, raw)
	if !isRetryableStatus(resp.StatusCode) {
		return nil, backoff.Permanent(apiErr)
	}
	return nil, crerr.Mark(apiErr, errTransient)
}

func decodeAPIError(statusCode int, raw []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Message: abbreviateBody(raw)}
	var env envelope
	if err := sonic.Unmarshal(raw, &env); err == nil && env.Error != nil {
		apiErr.Status = env.Error.Status
		apiErr.Message = env.Error.Message
	}
	return apiErr
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
