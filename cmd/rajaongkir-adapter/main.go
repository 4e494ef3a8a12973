package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/akara/rajaongkir-adapter/internal/api"
	"github.com/akara/rajaongkir-adapter/internal/breaker"
	"github.com/akara/rajaongkir-adapter/internal/cache"
	"github.com/akara/rajaongkir-adapter/internal/httpclient"
	"github.com/akara/rajaongkir-adapter/internal/memo"
	"github.com/akara/rajaongkir-adapter/internal/publisher"
	"github.com/akara/rajaongkir-adapter/internal/rajaongkir"
	"github.com/akara/rajaongkir-adapter/internal/rate"
	internalsecrets "github.com/akara/rajaongkir-adapter/internal/secrets"
	"github.com/akara/rajaongkir-adapter/internal/shipping"
	"github.com/akara/rajaongkir-adapter/internal/store"
	"github.com/akara/rajaongkir-adapter/pkg/config"
	"github.com/akara/rajaongkir-adapter/pkg/logger"
	"github.com/akara/rajaongkir-adapter/pkg/secrets"
	"github.com/akara/rajaongkir-adapter/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Infof("starting [%s]...", cfg.ServiceName)

	stopCleaner := make(chan struct{})
	checks := map[string]api.HealthCheck{}

	// --- Response cache + cooldown (Redis when configured, else in-process) ---
	var (
		respCache cache.Store
		cooldown  breaker.Cooldown
		rdb       *redis.Client
	)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB, Password: cfg.RedisPass})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logg.Fatalw("redis ping failed", "addr", cfg.RedisAddr, "error", err)
		}
		redisStore := cache.NewRedisStore(rdb)
		respCache = redisStore
		cooldown = breaker.NewRedisCooldown(rdb, "rajaongkir:cooldown", logger.L())
		checks["redis"] = redisStore.HealthCheck
		logg.Infow("response cache: redis", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	} else {
		memStore := cache.NewMemoryStore()
		go memStore.StartCleaner(cfg.CleanupFreq, stopCleaner)
		respCache = memStore
		cooldown = breaker.NewMemoryCooldown()
		logg.Info("response cache: in-process")
	}

	// --- API key (AWS Secrets Manager or env) ---
	execOpts := httpclient.Options{
		VenueTag:     "rajaongkir",
		BaseURL:      cfg.BaseURL,
		APIKey:       cfg.APIKey,
		Timeout:      cfg.RequestTimeout,
		MaxRetries:   cfg.MaxRetries,
		Cooldown:     cfg.Cooldown,
		BackoffUnit:  cfg.BackoffUnit,
		RateLimitKey: "rajaongkir:" + cfg.AccountType,
	}
	if cfg.APIKeySecret != "" {
		awsProvider, err := secrets.NewAWSProvider(ctx, cfg.AWSRegion)
		if err != nil {
			logg.Fatalw("failed to create AWS Secrets Manager provider", "error", err)
		}
		keys := internalsecrets.NewAPIKeyResolver(logger.L(), awsProvider, cfg.APIKeySecret, cfg.SecretCacheTTL)
		go keys.StartCleaner(cfg.CleanupFreq, stopCleaner)
		if _, err := keys.APIKey(ctx); err != nil {
			logg.Fatalw("failed to resolve RajaOngkir api key", "secret", cfg.APIKeySecret, "error", err)
		}
		execOpts.Keys = keys
	} else if cfg.APIKey == "" {
		logg.Warn("RAJAONGKIR_API_KEY not configured; upstream calls will be rejected")
	} else {
		logg.Infow("using RajaOngkir api key from env", "api_key", utils.MaskSecret(cfg.APIKey))
	}

	// --- Rate limiter sized by account tier ---
	rateMgr := rate.NewManager(rate.ForTier(cfg.AccountType))

	// --- RajaOngkir client ---
	exec := httpclient.New(logger.L(), &http.Client{}, cooldown, rateMgr, execOpts)
	dedupe := memo.New()
	go dedupe.StartCleaner(cfg.CleanupFreq, stopCleaner)
	roClient := rajaongkir.NewClient(logger.L(), exec, respCache, dedupe, rajaongkir.Options{
		DestinationTTL: cfg.DestinationTTL,
		CostTTL:        cfg.CostTTL,
	})
	resolver := rajaongkir.NewDestinationResolver(logger.L(), roClient)

	// --- Inventory sources (optional Postgres) ---
	var (
		sources shipping.InventorySources
		pgPool  *pgxpool.Pool
	)
	if cfg.DatabaseURL != "" {
		logg.Info("connection to DSN: ", utils.MaskDSN(cfg.DatabaseURL))
		pool, err := store.NewPool(ctx, cfg.DatabaseURL, store.PGPoolConfig{MaxConns: int32(cfg.PGMaxConns)})
		if err != nil {
			logg.Fatalw("failed to init postgres", "error", err)
		}
		pgPool = pool
		sources = store.NewPGInventorySources(pool, cfg.InventoryCacheTTL, logger.L())
		checks["postgres"] = pool.Ping
	} else {
		logg.Warn("DATABASE_URL not configured; origin always resolved from RAJAONGKIR_ORIGIN_POSTCODE")
	}

	// --- Quote events (optional NATS) ---
	var (
		quotePub shipping.QuotePublisher
		nc       *nats.Conn
	)
	if cfg.NATSURL != "" {
		conn, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			logg.Fatalw("failed to connect to NATS", "error", err)
		}
		nc = conn
		pub, err := publisher.New(nc, cfg.QuoteSubject, cfg.ServiceName, logger.L())
		if err != nil {
			logg.Fatalw("failed to init publisher", "error", err)
		}
		quotePub = pub
		checks["nats"] = func(context.Context) error {
			if !nc.IsConnected() {
				return fmt.Errorf("nats disconnected")
			}
			return nc.FlushTimeout(1 * time.Second)
		}
	}

	// --- Shipping service ---
	svc := shipping.NewService(
		logger.L(),
		shipping.Settings{Couriers: cfg.Couriers, OriginPostcode: cfg.OriginPostcode},
		resolver,
		roClient,
		sources,
		shipping.IdentityPrice{},
		quotePub,
	)

	// --- Fiber HTTP Server ---
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BodyLimit:    cfg.HTTPBodyLimit,
	})
	api.RegisterRoutes(app, api.NewShippingHandler(logger.L(), svc, roClient), roClient, checks)

	go func() {
		logg.Infof("HTTP API listening on :%d", cfg.Port)
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	logg.Infow("[rajaongkir-adapter] running",
		"env", cfg.Env,
		"account_type", cfg.AccountType,
		"couriers", cfg.Couriers)

	<-ctx.Done()
	logg.Infof("shutting down [%s]...", cfg.ServiceName)

	close(stopCleaner)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logg.Warnw("fiber.shutdown_failed", "error", err)
	}
	if nc != nil {
		if err := nc.Drain(); err != nil {
			logg.Warnw("nats.drain_failed", "error", err)
		}
	}
	if pgPool != nil {
		pgPool.Close()
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logg.Warnw("redis.close_failed", "error", err)
		}
	}
}
