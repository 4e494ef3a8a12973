package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/akara/rajaongkir-adapter/internal/breaker"
)

func newExec(baseURL string, retryMax int, client *http.Client, cd breaker.Cooldown) *Executor {
	return New(zap.NewNop(), client, cd, nil, Options{
		BaseURL:     baseURL,
		APIKey:      "test-key",
		MaxRetries:  retryMax,
		BackoffUnit: time.Millisecond,
		Timeout:     2 * time.Second,
	})
}

func getReq() Request {
	return Request{
		Method:   http.MethodGet,
		Endpoint: "destination/domestic-destination",
		Query:    map[string]string{"search": "12345", "limit": "1", "offset": "0"},
	}
}

// countingHandler fails the first failCount calls with failStatus, then returns 200 with body.
func countingHandler(failCount int, failStatus int, successBody []byte) (http.Handler, *atomic.Int32) {
	var n atomic.Int32
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if int(n.Add(1)) <= failCount {
			w.WriteHeader(failStatus)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(successBody)
	}), &n
}

// flakyTransport returns a transport error for the first failures round trips.
type flakyTransport struct {
	failures int32
	calls    atomic.Int32
	next     http.RoundTripper
}

func (f *flakyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if f.calls.Add(1) <= f.failures {
		return nil, errors.New("connection reset by peer")
	}
	return f.next.RoundTrip(r)
}

// ─── Validation ───────────────────────────────────────────────────────────────

func TestCall_InvalidRequests(t *testing.T) {
	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		count.Add(1)
	}))
	defer srv.Close()

	exec := newExec(srv.URL, 2, srv.Client(), nil)

	cases := []Request{
		{Method: http.MethodPut, Endpoint: "x"},
		{Method: "get", Endpoint: "x"},
		{Method: http.MethodGet, Endpoint: "  "},
		{Method: http.MethodGet, Endpoint: "x", Form: map[string]string{"a": "b"}},
		{Method: http.MethodPost, Endpoint: "x", Form: map[string]string{"": "b"}},
		{Method: http.MethodGet, Endpoint: "x", Query: map[string]string{" ": "b"}},
	}
	for _, req := range cases {
		_, err := exec.Call(context.Background(), req)
		var invalid *InvalidRequestError
		require.ErrorAs(t, err, &invalid, "method=%s endpoint=%q", req.Method, req.Endpoint)
	}
	assert.EqualValues(t, 0, count.Load(), "invalid requests must not reach the network")
}

// ─── Basic success ────────────────────────────────────────────────────────────

func TestCall_SuccessFirstAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/destination/domestic-destination", r.URL.Path)
		assert.Equal(t, "12345", r.URL.Query().Get("search"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "test-key", r.Header.Get("key"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"data":[{"id":777}]}`))
	}))
	defer srv.Close()

	exec := newExec(srv.URL+"/", 2, srv.Client(), nil)

	body, err := exec.Call(context.Background(), getReq())
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[{"id":777}]}`, string(body))
}

func TestCall_PostSendsForm(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		got = r.PostForm
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	exec := newExec(srv.URL, 0, srv.Client(), nil)
	_, err := exec.Call(context.Background(), Request{
		Method:   http.MethodPost,
		Endpoint: "/calculate/domestic-cost",
		Form:     map[string]string{"origin": "501", "destination": "777", "weight": "1000", "courier": "jne:jnt", "price": "lowest"},
	})
	require.NoError(t, err)
	assert.Equal(t, "501", got.Get("origin"))
	assert.Equal(t, "jne:jnt", got.Get("courier"))
	assert.Equal(t, "lowest", got.Get("price"))
}

// ─── Retry on transport failures ──────────────────────────────────────────────

func TestCall_TransportFailuresThenSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":1}]}`))
	}))
	defer srv.Close()

	tr := &flakyTransport{failures: 2, next: srv.Client().Transport}
	exec := newExec(srv.URL, 2, &http.Client{Transport: tr}, nil)

	body, err := exec.Call(context.Background(), getReq())
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[{"id":1}]}`, string(body))
	assert.EqualValues(t, 3, tr.calls.Load(), "two failures then one success")
}

func TestCall_TransportFailureTripsCooldown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	cd := breaker.NewMemoryCooldown()
	tr := &flakyTransport{failures: 1, next: srv.Client().Transport}
	exec := newExec(srv.URL, 1, &http.Client{Transport: tr}, cd)

	_, err := exec.Call(context.Background(), getReq())
	require.NoError(t, err)
	assert.True(t, cd.Active(context.Background()))
}

func TestCall_AllTransportFailures(t *testing.T) {
	tr := &flakyTransport{failures: 100, next: http.DefaultTransport}
	exec := newExec("http://upstream.invalid", 2, &http.Client{Transport: tr}, nil)

	_, err := exec.Call(context.Background(), getReq())

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, 3, upErr.Attempts)
	assert.Equal(t, 0, upErr.Status)
	assert.Contains(t, upErr.Err.Error(), "connection reset by peer")
	assert.EqualValues(t, 3, tr.calls.Load(), "retryMax=2 means 3 total attempts")
}

// ─── 5xx / 429 ───────────────────────────────────────────────────────────────

func TestCall_Retries5xxThenSucceeds(t *testing.T) {
	h, count := countingHandler(1, http.StatusServiceUnavailable, []byte(`{"result":"ok"}`))
	srv := httptest.NewServer(h)
	defer srv.Close()

	exec := newExec(srv.URL, 2, srv.Client(), nil)

	body, err := exec.Call(context.Background(), getReq())
	require.NoError(t, err)
	assert.EqualValues(t, 2, count.Load(), "expected exactly 2 attempts")
	assert.JSONEq(t, `{"result":"ok"}`, string(body))
}

func TestCall_ServerErrorOpensCooldownForLaterCalls(t *testing.T) {
	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		count.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	exec := newExec(srv.URL, 0, srv.Client(), nil)

	_, err := exec.Call(context.Background(), getReq())
	require.Error(t, err)
	require.EqualValues(t, 1, count.Load())

	body, err := exec.Call(context.Background(), Request{Method: http.MethodPost, Endpoint: "calculate/domestic-cost"})
	require.NoError(t, err, "cooldown is a fail-soft path, not an error")
	assert.Nil(t, body)
	assert.EqualValues(t, 1, count.Load(), "no network call while cooling down, for any endpoint")
	assert.True(t, exec.CooldownActive(context.Background()))
}

func TestCall_TooManyRequestsTripsCooldown(t *testing.T) {
	h, _ := countingHandler(1, http.StatusTooManyRequests, []byte(`{}`))
	srv := httptest.NewServer(h)
	defer srv.Close()

	cd := breaker.NewMemoryCooldown()
	exec := newExec(srv.URL, 1, srv.Client(), cd)

	_, err := exec.Call(context.Background(), getReq())
	require.NoError(t, err)
	assert.True(t, cd.Active(context.Background()))
}

func TestCall_ExhaustAllRetries(t *testing.T) {
	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		count.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	exec := newExec(srv.URL, 2, srv.Client(), nil)

	_, err := exec.Call(context.Background(), getReq())

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.ErrorIs(t, err, ErrNonSuccessStatus)
	assert.Equal(t, 3, upErr.Attempts)
	assert.Equal(t, http.StatusBadGateway, upErr.Status)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.EqualValues(t, 3, count.Load(), "retryMax=2 means 3 total attempts")
}

func TestCall_ZeroRetries(t *testing.T) {
	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		count.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	exec := newExec(srv.URL, 0, srv.Client(), nil)

	require.Error(t, func() error { _, err := exec.Call(context.Background(), getReq()); return err }())
	assert.EqualValues(t, 1, count.Load(), "retryMax=0 means exactly one attempt")
}

// ─── 4xx: no retry, no cooldown ──────────────────────────────────────────────

func TestCall_4xxNotRetried(t *testing.T) {
	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		count.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"meta":{"message":"invalid courier"}}`))
	}))
	defer srv.Close()

	cd := breaker.NewMemoryCooldown()
	exec := newExec(srv.URL, 2, srv.Client(), cd)

	_, err := exec.Call(context.Background(), getReq())

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusBadRequest, upErr.Status)
	assert.Equal(t, 1, upErr.Attempts)
	assert.EqualValues(t, 1, count.Load(), "4xx must not be retried")
	assert.False(t, cd.Active(context.Background()), "client errors do not signal instability")
}

// ─── POST body is re-sent on retry ───────────────────────────────────────────

func TestCall_PostBodyResentOnRetry(t *testing.T) {
	var received []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		received = append(received, string(b))
		if len(received) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	exec := newExec(srv.URL, 1, srv.Client(), nil)

	_, err := exec.Call(context.Background(), Request{
		Method:   http.MethodPost,
		Endpoint: "calculate/domestic-cost",
		Form:     map[string]string{"weight": "1000"},
	})
	require.NoError(t, err)
	require.Len(t, received, 2, "expected two attempts")
	assert.Equal(t, "weight=1000", received[0])
	assert.Equal(t, "weight=1000", received[1], "retry must re-send the full body")
}

// ─── Context cancellation ────────────────────────────────────────────────────

func TestCall_ContextCanceledDuringBackoff(t *testing.T) {
	tr := &flakyTransport{failures: 100, next: http.DefaultTransport}
	exec := New(zap.NewNop(), &http.Client{Transport: tr}, nil, nil, Options{
		BaseURL:     "http://upstream.invalid",
		MaxRetries:  5,
		BackoffUnit: time.Hour,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := exec.Call(ctx, getReq())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.EqualValues(t, 1, tr.calls.Load())
}

func TestCall_AttemptTimeout(t *testing.T) {
	var count atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if count.Add(1) == 1 {
			select {
			case <-time.After(time.Second):
			case <-r.Context().Done():
			}
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	exec := New(zap.NewNop(), srv.Client(), nil, nil, Options{
		BaseURL:     srv.URL,
		MaxRetries:  1,
		BackoffUnit: time.Millisecond,
		Timeout:     50 * time.Millisecond,
	})

	body, err := exec.Call(context.Background(), getReq())
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.EqualValues(t, 2, count.Load())
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func TestBackoff(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, Backoff(DefaultBackoffUnit, 1))
	assert.Equal(t, 400*time.Millisecond, Backoff(DefaultBackoffUnit, 2))
}

func TestRequest_URL(t *testing.T) {
	req := Request{Endpoint: "/destination/domestic-destination", Query: map[string]string{"search": "jakarta barat", "limit": "1"}}
	u := req.URL("https://rajaongkir.komerce.id/api/v1/")
	assert.True(t, strings.HasPrefix(u, "https://rajaongkir.komerce.id/api/v1/destination/domestic-destination?"))
	assert.Contains(t, u, "limit=1")
	assert.Contains(t, u, "search=jakarta+barat")
}

func TestNew_Defaults(t *testing.T) {
	exec := New(nil, nil, nil, nil, Options{MaxRetries: -1})
	assert.Equal(t, DefaultMaxRetries, exec.opts.MaxRetries)
	assert.Equal(t, DefaultTimeout, exec.opts.Timeout)
	assert.Equal(t, DefaultCooldown, exec.opts.Cooldown)
	assert.Equal(t, DefaultBackoffUnit, exec.opts.BackoffUnit)
	assert.Equal(t, "rajaongkir", exec.opts.VenueTag)
}

type staticKeys struct {
	key string
	err error
}

func (s staticKeys) APIKey(context.Context) (string, error) { return s.key, s.err }

func TestCall_KeySource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "rotated-key", r.Header.Get("key"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	exec := New(zap.NewNop(), srv.Client(), nil, nil, Options{
		BaseURL: srv.URL, APIKey: "stale", Keys: staticKeys{key: "rotated-key"},
	})
	_, err := exec.Call(context.Background(), getReq())
	require.NoError(t, err)

	failing := New(zap.NewNop(), srv.Client(), nil, nil, Options{
		BaseURL: srv.URL, Keys: staticKeys{err: errors.New("secret unavailable")},
	})
	_, err = failing.Call(context.Background(), getReq())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve api key")
}
