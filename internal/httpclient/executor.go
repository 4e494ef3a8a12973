package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akara/rajaongkir-adapter/internal/breaker"
	"github.com/akara/rajaongkir-adapter/internal/metrics"
	"github.com/akara/rajaongkir-adapter/internal/rate"
)

const (
	DefaultTimeout     = 10 * time.Second
	DefaultMaxRetries  = 2
	DefaultCooldown    = 60 * time.Second
	DefaultBackoffUnit = 200 * time.Millisecond
)

// Backoff returns the sleep before the attempt following a transport failure
// on the given 1-based attempt.
func Backoff(unit time.Duration, attempt int) time.Duration {
	return unit * time.Duration(attempt)
}

// KeySource supplies the API key at call time, e.g. from a secrets store.
type KeySource interface {
	APIKey(ctx context.Context) (string, error)
}

// Options configures an Executor. Zero values take the package defaults,
// except MaxRetries where a negative value means "use the default".
type Options struct {
	VenueTag     string
	BaseURL      string
	APIKey       string
	Keys         KeySource // overrides APIKey when set
	Timeout      time.Duration
	MaxRetries   int
	Cooldown     time.Duration
	BackoffUnit  time.Duration
	RateLimitKey string
}

// Executor handles cooldown-guarded, retrying HTTP execution against one upstream.
type Executor struct {
	logger   *zap.Logger
	http     *http.Client
	cooldown breaker.Cooldown
	rateMgr  *rate.Manager
	opts     Options
	sleep    func(ctx context.Context, d time.Duration) error
}

// New creates an Executor. rateMgr may be nil to disable proactive pacing.
func New(
	logger *zap.Logger,
	httpClient *http.Client,
	cooldown breaker.Cooldown,
	rateMgr *rate.Manager,
	opts Options,
) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cooldown == nil {
		cooldown = breaker.NewMemoryCooldown()
	}
	if opts.VenueTag == "" {
		opts.VenueTag = "rajaongkir"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = DefaultCooldown
	}
	if opts.BackoffUnit <= 0 {
		opts.BackoffUnit = DefaultBackoffUnit
	}
	return &Executor{
		logger:   logger,
		http:     httpClient,
		cooldown: cooldown,
		rateMgr:  rateMgr,
		opts:     opts,
		sleep:    sleepCtx,
	}
}

// Call executes req and returns the raw 2xx response body.
//
// While the cooldown is active Call returns (nil, nil) without touching the
// network: an empty result, not an error. Malformed requests fail with
// *InvalidRequestError; an exhausted retry budget or a 4xx client error fails
// with *UpstreamError.
func (e *Executor) Call(ctx context.Context, req Request) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tag := e.opts.VenueTag
	if e.cooldown.Active(ctx) {
		e.logger.Warn(tag+".cooldown_active", zap.String("endpoint", req.Endpoint))
		metrics.IncCooldown("skip", "active")
		return nil, nil
	}

	apiKey, err := e.apiKey(ctx)
	if err != nil {
		return nil, err
	}

	traceID := uuid.NewString()
	target := req.URL(e.opts.BaseURL)
	attempts := 1 + e.opts.MaxRetries

	e.logger.Info(tag+".request",
		zap.String("trace_id", traceID),
		zap.String("method", req.Method),
		zap.String("endpoint", req.Endpoint),
		zap.Any("params", req.Query),
		zap.Any("payload", req.Form))

	var lastErr error
	lastStatus := 0
	for attempt := 1; attempt <= attempts; attempt++ {
		if e.rateMgr != nil {
			if err := e.rateMgr.Wait(ctx, e.opts.RateLimitKey); err != nil {
				return nil, fmt.Errorf("rate limit wait: %w", err)
			}
		}

		start := time.Now()
		status, body, err := e.attempt(ctx, req, target, apiKey)
		elapsed := time.Since(start)
		metrics.ObserveDuration(metrics.UpstreamRequestDuration, start, req.Endpoint, req.Method)

		if err != nil {
			if ctx.Err() != nil {
				return nil, &UpstreamError{Venue: tag, Endpoint: req.Endpoint, Attempts: attempt, Err: ctx.Err()}
			}
			lastErr = err
			metrics.IncUpstreamRequest(req.Endpoint, req.Method, "error")
			e.trip(ctx, req.Endpoint, "transport")
			e.logger.Error(tag+".http_failed",
				zap.String("trace_id", traceID),
				zap.Int("attempt", attempt),
				zap.Duration("latency", elapsed),
				zap.Error(err))

			if attempt < attempts {
				if err := e.sleep(ctx, Backoff(e.opts.BackoffUnit, attempt)); err != nil {
					return nil, &UpstreamError{Venue: tag, Endpoint: req.Endpoint, Attempts: attempt, Err: err}
				}
			}
			continue
		}

		metrics.IncUpstreamRequest(req.Endpoint, req.Method, strconv.Itoa(status))

		if status >= 200 && status < 300 {
			e.logger.Info(tag+".http_success",
				zap.String("trace_id", traceID),
				zap.Int("status", status),
				zap.Int("attempt", attempt),
				zap.Duration("latency", elapsed))
			return body, nil
		}

		lastStatus = status
		e.logger.Warn(tag+".non_success",
			zap.String("trace_id", traceID),
			zap.Int("attempt", attempt),
			zap.Int("status", status),
			zap.String("body", truncate(body, 512)))

		if status == http.StatusTooManyRequests || status >= 500 {
			e.trip(ctx, req.Endpoint, strconv.Itoa(status))
			continue
		}

		// other 4xx: the request itself is wrong, retrying cannot help
		return nil, &UpstreamError{
			Venue:    tag,
			Endpoint: req.Endpoint,
			Attempts: attempt,
			Status:   status,
			Err:      ErrNonSuccessStatus,
		}
	}

	if lastErr == nil {
		lastErr = ErrNonSuccessStatus
	}
	e.logger.Error(tag+".failed_after_retries",
		zap.String("trace_id", traceID),
		zap.String("endpoint", req.Endpoint),
		zap.String("method", req.Method),
		zap.Int("attempts", attempts),
		zap.Error(lastErr))

	return nil, &UpstreamError{
		Venue:    tag,
		Endpoint: req.Endpoint,
		Attempts: attempts,
		Status:   lastStatus,
		Err:      lastErr,
	}
}

// CooldownActive reports the breaker state without making a call.
func (e *Executor) CooldownActive(ctx context.Context) bool {
	return e.cooldown.Active(ctx)
}

// attempt performs a single bounded HTTP exchange.
func (e *Executor) attempt(ctx context.Context, req Request, target, apiKey string) (int, []byte, error) {
	actx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	var body io.Reader
	if req.Method == http.MethodPost {
		body = strings.NewReader(req.encodedForm())
	}

	httpReq, err := http.NewRequestWithContext(actx, req.Method, target, body)
	if err != nil {
		return 0, nil, err
	}
	httpReq.Header.Set("key", apiKey)
	httpReq.Header.Set("Accept", "application/json")
	if req.Method == http.MethodPost {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := e.http.Do(httpReq)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, data, nil
}

func (e *Executor) apiKey(ctx context.Context) (string, error) {
	if e.opts.Keys == nil {
		return e.opts.APIKey, nil
	}
	key, err := e.opts.Keys.APIKey(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve api key: %w", err)
	}
	return key, nil
}

func (e *Executor) trip(ctx context.Context, endpoint, reason string) {
	e.cooldown.Trip(ctx, e.opts.Cooldown)
	metrics.IncCooldown("trip", reason)
	e.logger.Warn(e.opts.VenueTag+".cooldown_tripped",
		zap.String("endpoint", endpoint),
		zap.String("reason", reason),
		zap.Duration("window", e.opts.Cooldown))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
