package secrets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/akara/rajaongkir-adapter/internal/cache"
	pkgsecrets "github.com/akara/rajaongkir-adapter/pkg/secrets"
	"github.com/akara/rajaongkir-adapter/pkg/utils"
)

// apiKeyFields are the secret map keys accepted for the RajaOngkir key, in order.
var apiKeyFields = []string{"api_key", "key", "RAJAONGKIR_API_KEY"}

// APIKeyResolver reads the RajaOngkir API key from a secrets provider and
// keeps it for a while so rotations are picked up without a restart.
type APIKeyResolver struct {
	logger   *zap.Logger
	provider pkgsecrets.Provider
	name     string
	cache    *cache.TTL[string]
}

func NewAPIKeyResolver(logger *zap.Logger, provider pkgsecrets.Provider, secretName string, ttl time.Duration) *APIKeyResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIKeyResolver{
		logger:   logger,
		provider: provider,
		name:     secretName,
		cache:    cache.NewTTL[string](ttl),
	}
}

// APIKey returns the cached key or fetches it from the provider.
func (r *APIKeyResolver) APIKey(ctx context.Context) (string, error) {
	if key, ok := r.cache.Get(r.name); ok {
		return key, nil
	}

	secret, err := r.provider.GetSecret(ctx, r.name)
	if err != nil {
		r.logger.Warn("aws.secret_fetch_failed",
			zap.String("key", r.name),
			zap.Error(err))
		return "", fmt.Errorf("resolve api key %q: %w", r.name, err)
	}

	key := ""
	for _, f := range apiKeyFields {
		if v := strings.TrimSpace(secret[f]); v != "" {
			key = v
			break
		}
	}
	if key == "" {
		return "", fmt.Errorf("secret %q has no api key field", r.name)
	}

	r.cache.Put(r.name, key)
	r.logger.Info("aws.api_key_resolved",
		zap.String("secret", r.name),
		zap.String("api_key", utils.MaskSecret(key)))
	return key, nil
}

// StartCleaner evicts the cached key after expiry until stop is closed.
func (r *APIKeyResolver) StartCleaner(interval time.Duration, stop <-chan struct{}) {
	r.cache.StartCleaner(interval, stop)
}
