package config

import (
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration for the rajaongkir-adapter.
type Config struct {
	ServiceName string
	Env         string
	LogLevel    string
	Port        int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	HTTPBodyLimit    int

	// Optional infrastructure. Empty values fall back to in-process stores
	// (Redis) or disable the feature (Postgres inventory lookup, NATS events).
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	DatabaseURL string
	NATSURL     string
	AWSRegion   string

	PGMaxConns        int
	InventoryCacheTTL time.Duration

	QuoteSubject string

	// RajaOngkir API
	BaseURL        string
	APIKey         string
	APIKeySecret   string // AWS Secrets Manager secret name; takes precedence over APIKey
	AccountType    string // starter | basic | pro
	OriginPostcode string
	Couriers       string // colon-separated allow-list, e.g. "jne:sicepat:jnt"

	RequestTimeout time.Duration
	MaxRetries     int
	BackoffUnit    time.Duration
	Cooldown       time.Duration
	DestinationTTL time.Duration
	CostTTL        time.Duration

	SecretCacheTTL time.Duration
	CleanupFreq    time.Duration
}

// Load loads configuration from environment variables and optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServiceName:      GetEnv("SERVICE_NAME", "rajaongkir-adapter"),
		Env:              GetEnv("ENV", "dev"),
		LogLevel:         GetEnv("LOG_LEVEL", "info"),
		Port:             GetEnvInt("PORT", 9040),
		HTTPReadTimeout:  GetEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
		HTTPWriteTimeout: GetEnvDuration("HTTP_WRITE_TIMEOUT", 40*time.Second),
		HTTPIdleTimeout:  GetEnvDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		HTTPBodyLimit:    GetEnvInt("HTTP_BODY_LIMIT", 1*1024*1024),

		RedisAddr:   GetEnv("REDIS_ADDR", ""),
		RedisDB:     GetEnvInt("REDIS_DB", 0),
		RedisPass:   GetEnv("REDIS_PASS", ""),
		DatabaseURL: GetEnv("DATABASE_URL", ""),
		NATSURL:     GetEnv("NATS_URL", ""),
		AWSRegion:   GetEnv("AWS_REGION", "ap-southeast-3"),

		PGMaxConns:        GetEnvInt("PG_MAX_CONNS", 5),
		InventoryCacheTTL: GetEnvDuration("INVENTORY_CACHE_TTL", 10*time.Minute),

		QuoteSubject: GetEnv("QUOTE_SUBJECT", "evt.shipping.quote_computed.v1.RAJAONGKIR"),

		BaseURL:        GetEnv("RAJAONGKIR_BASE_URL", "https://rajaongkir.komerce.id/api/v1/"),
		APIKey:         GetEnv("RAJAONGKIR_API_KEY", ""),
		APIKeySecret:   GetEnv("RAJAONGKIR_API_KEY_SECRET", ""),
		AccountType:    GetEnv("RAJAONGKIR_ACCOUNT_TYPE", "starter"),
		OriginPostcode: GetEnv("RAJAONGKIR_ORIGIN_POSTCODE", "20152"),
		Couriers:       GetEnv("RAJAONGKIR_COURIERS", "jne:sicepat:ide:sap:ninja:jnt:tiki:wahana"),

		RequestTimeout: GetEnvDuration("RAJAONGKIR_TIMEOUT", 10*time.Second),
		MaxRetries:     GetEnvInt("RAJAONGKIR_MAX_RETRIES", 2),
		BackoffUnit:    GetEnvDuration("RAJAONGKIR_BACKOFF_UNIT", 200*time.Millisecond),
		Cooldown:       GetEnvDuration("RAJAONGKIR_COOLDOWN", 60*time.Second),
		DestinationTTL: GetEnvDuration("RAJAONGKIR_DESTINATION_TTL", 24*time.Hour),
		CostTTL:        GetEnvDuration("RAJAONGKIR_COST_TTL", 15*time.Minute),

		SecretCacheTTL: GetEnvDuration("SECRET_CACHE_TTL", 1*time.Hour),
		CleanupFreq:    GetEnvDuration("CACHE_CLEANUP_FREQ", 10*time.Minute),
	}
}
