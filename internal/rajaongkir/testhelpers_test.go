package rajaongkir

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/akara/rajaongkir-adapter/internal/breaker"
	"github.com/akara/rajaongkir-adapter/internal/cache"
	"github.com/akara/rajaongkir-adapter/internal/httpclient"
	"github.com/akara/rajaongkir-adapter/internal/memo"
)

const (
	destinationBody = `{"meta":{"message":"Success Get Domestic Destinations","code":200,"status":"success"},"data":[{"id":777,"label":"KEBAYORAN BARU, JAKARTA SELATAN","zip_code":"12345"}]}`
	emptyDestBody   = `{"meta":{"message":"Data not found","code":200,"status":"success"},"data":[]}`
	costBody        = `{"meta":{"code":200,"status":"success"},"data":[` +
		`{"name":"Jalur Nugraha Ekakurir (JNE)","code":"jne","service":"REG","description":"Layanan Reguler","cost":9000,"etd":"2-3 day"},` +
		`{"name":"J&T Express","code":"jnt","service":"EZ","description":"Regular","cost":8000,"etd":"2"}]}`
)

// upstream is a fake RajaOngkir server counting calls per path.
type upstream struct {
	srv   *httptest.Server
	calls atomic.Int32
}

func newUpstream(t *testing.T, handler http.HandlerFunc) *upstream {
	t.Helper()
	u := &upstream{}
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(u.srv.Close)
	return u
}

func staticHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func newTestClient(u *upstream, store cache.Store, cd breaker.Cooldown) *Client {
	exec := httpclient.New(zap.NewNop(), u.srv.Client(), cd, nil, httpclient.Options{
		BaseURL:     u.srv.URL + "/api/v1/",
		APIKey:      "test-key",
		MaxRetries:  0,
		BackoffUnit: time.Millisecond,
		Timeout:     2 * time.Second,
	})
	return NewClient(zap.NewNop(), exec, store, memo.New(), Options{})
}
