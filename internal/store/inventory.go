// Package store looks up inventory-source data owned by the storefront database.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/akara/rajaongkir-adapter/internal/cache"
)

// DBQuerier is the subset of pgxpool.Pool the inventory lookup needs.
type DBQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGPoolConfig struct {
	MaxConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// NewPool opens a pgx pool for the storefront database.
func NewPool(ctx context.Context, pgURL string, pc PGPoolConfig) (*pgxpool.Pool, error) {
	if pgURL == "" {
		return nil, errors.New("database url is not set")
	}
	cfg, err := pgxpool.ParseConfig(pgURL)
	if err != nil {
		return nil, fmt.Errorf("invalid pg config: %w", err)
	}
	if pc.MaxConns > 0 {
		cfg.MaxConns = pc.MaxConns
	}
	if pc.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = pc.MaxConnLifetime
	}
	if pc.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = pc.MaxConnIdleTime
	}
	if pc.HealthCheckPeriod > 0 {
		cfg.HealthCheckPeriod = pc.HealthCheckPeriod
	}
	cfg.ConnConfig.RuntimeParams["application_name"] = "rajaongkir-adapter"

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return pool, nil
}

const cityIDQuery = `
	SELECT city_id_rajaongkir
	FROM inventory_sources
	WHERE id = $1;
`

// PGInventorySources reads the RajaOngkir city id stored on each inventory
// source. Known ids are cached for ttl.
type PGInventorySources struct {
	db     DBQuerier
	logger *zap.Logger
	cities *cache.TTL[int]
}

func NewPGInventorySources(db DBQuerier, ttl time.Duration, logger *zap.Logger) *PGInventorySources {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &PGInventorySources{
		db:     db,
		logger: logger,
		cities: cache.NewTTL[int](ttl),
	}
}

// CityID returns ok=false for unknown sources and sources without a city id.
func (s *PGInventorySources) CityID(ctx context.Context, sourceID int64) (int, bool, error) {
	key := strconv.FormatInt(sourceID, 10)
	if id, ok := s.cities.Get(key); ok {
		return id, true, nil
	}

	var city *int
	err := s.db.QueryRow(ctx, cityIDQuery, sourceID).Scan(&city)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		s.logger.Warn("store.inventory_source_query_failed",
			zap.Int64("source_id", sourceID),
			zap.Error(err))
		return 0, false, fmt.Errorf("inventory source %d: %w", sourceID, err)
	}
	if city == nil || *city <= 0 {
		return 0, false, nil
	}

	s.cities.Put(key, *city)
	return *city, true, nil
}

// StaticInventorySources serves city ids from a fixed map.
type StaticInventorySources map[int64]int

func (m StaticInventorySources) CityID(_ context.Context, sourceID int64) (int, bool, error) {
	id, ok := m[sourceID]
	if !ok || id <= 0 {
		return 0, false, nil
	}
	return id, true, nil
}
