package rajaongkir

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/akara/rajaongkir-adapter/internal/cache"
	"github.com/akara/rajaongkir-adapter/internal/httpclient"
	"github.com/akara/rajaongkir-adapter/internal/memo"
	"github.com/akara/rajaongkir-adapter/internal/metrics"
)

const (
	DefaultDestinationTTL = 24 * time.Hour
	DefaultCostTTL        = 15 * time.Minute

	keyPrefix = "rajaongkir"

	opDestination = "destination"
	opCost        = "cost"

	endpointDestination = "destination/domestic-destination"
	endpointCost        = "calculate/domestic-cost"
)

// Options sets the cache lifetime per operation. Zero values take the defaults.
type Options struct {
	DestinationTTL time.Duration
	CostTTL        time.Duration
}

// Client exposes the RajaOngkir read operations. Responses go through three
// layers: the in-process memo, the response cache, then the network.
// Only non-empty successful bodies are kept by the first two.
type Client struct {
	logger *zap.Logger
	exec   *httpclient.Executor
	cache  cache.Store
	memo   *memo.Memo
	opts   Options
}

// NewClient constructs a Client. store and m may be nil for an in-memory store
// and a fresh memo.
func NewClient(logger *zap.Logger, exec *httpclient.Executor, store cache.Store, m *memo.Memo, opts Options) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = cache.NewMemoryStore()
	}
	if m == nil {
		m = memo.New()
	}
	if opts.DestinationTTL <= 0 {
		opts.DestinationTTL = DefaultDestinationTTL
	}
	if opts.CostTTL <= 0 {
		opts.CostTTL = DefaultCostTTL
	}
	return &Client{
		logger: logger,
		exec:   exec,
		cache:  store,
		memo:   m,
		opts:   opts,
	}
}

// SearchDomesticDestination looks up destinations matching keyword.
// GET destination/domestic-destination
//
// While the upstream is cooling down the response is empty and err is nil.
func (c *Client) SearchDomesticDestination(ctx context.Context, keyword string, limit, offset int) (*DestinationResponse, error) {
	keyword = strings.TrimSpace(keyword)
	key, err := cache.Key(keyPrefix, "dest", destinationKey{
		Keyword: strings.ToLower(keyword),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, err
	}

	body, err := c.fetch(ctx, opDestination, key, c.opts.DestinationTTL, httpclient.Request{
		Method:   http.MethodGet,
		Endpoint: endpointDestination,
		Query: map[string]string{
			"search": keyword,
			"limit":  strconv.Itoa(limit),
			"offset": strconv.Itoa(offset),
		},
	})
	if err != nil {
		return nil, err
	}

	var resp DestinationResponse
	if len(body) == 0 {
		return &resp, nil
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode destination response: %w", err)
	}
	return &resp, nil
}

// DomesticCost quotes every service of the requested couriers between two
// destination ids. The cache key ignores the price preference.
// POST calculate/domestic-cost
//
// While the upstream is cooling down the response is empty and err is nil.
func (c *Client) DomesticCost(ctx context.Context, req CostRequest) (*CostResponse, error) {
	key, err := cache.Key(keyPrefix, "cost", costKey{
		Origin:      req.Origin,
		Destination: req.Destination,
		Weight:      req.Weight,
		Courier:     req.Courier,
	})
	if err != nil {
		return nil, err
	}

	form := map[string]string{
		"origin":      strconv.Itoa(req.Origin),
		"destination": strconv.Itoa(req.Destination),
		"weight":      strconv.Itoa(req.Weight),
		"courier":     req.Courier,
	}
	if req.Price != "" {
		form["price"] = req.Price
	}

	body, err := c.fetch(ctx, opCost, key, c.opts.CostTTL, httpclient.Request{
		Method:   http.MethodPost,
		Endpoint: endpointCost,
		Form:     form,
	})
	if err != nil {
		return nil, err
	}

	var resp CostResponse
	if len(body) == 0 {
		return &resp, nil
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode cost response: %w", err)
	}
	return &resp, nil
}

// CooldownActive reports whether upstream calls are currently short-circuited.
func (c *Client) CooldownActive(ctx context.Context) bool {
	return c.exec.CooldownActive(ctx)
}

// fetch resolves key through memo, cache and network in that order.
func (c *Client) fetch(ctx context.Context, op, key string, ttl time.Duration, req httpclient.Request) ([]byte, error) {
	body, hit, err := c.memo.Do(key, ttl, func() ([]byte, bool, error) {
		cached, ok, err := c.cache.Get(ctx, key)
		switch {
		case err != nil:
			metrics.IncCache(op, "error")
			c.logger.Warn("rajaongkir.cache_get_failed", zap.String("operation", op), zap.Error(err))
		case ok:
			metrics.IncCache(op, "hit")
			c.logger.Debug("rajaongkir.cache_hit", zap.String("operation", op), zap.String("key", key))
			return cached, true, nil
		}

		metrics.IncCache(op, "miss")
		c.logger.Info("rajaongkir.cache_miss", zap.String("operation", op), zap.String("key", key))

		data, err := c.exec.Call(ctx, req)
		if err != nil {
			return nil, false, err
		}
		if len(data) == 0 {
			// cooldown short-circuit; must not poison the cache
			return nil, false, nil
		}
		if !json.Valid(data) {
			return nil, false, errors.New("rajaongkir: response body is not valid JSON")
		}

		if err := c.cache.Set(ctx, key, data, ttl); err != nil {
			c.logger.Warn("rajaongkir.cache_set_failed", zap.String("operation", op), zap.Error(err))
		}
		return data, true, nil
	})
	if err != nil {
		return nil, err
	}
	if hit {
		metrics.IncCache(op, "memo_hit")
	}
	return body, nil
}
