package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// PoolConfig tunes the pgx pool behind the sync store. Zero values
// fall back to defaults sized for the sync workload: transactions are
// short (one batch merge or one range scan), but arrivals are bursty
// when a device comes back online and flushes its backlog.
type PoolConfig struct {
	MaxConns int32
	MinConns int32
}

const (
	defaultMaxConns = 16
	defaultMinConns = 2
)

func (c PoolConfig) withDefaults() PoolConfig {
	if c.MaxConns <= 0 {
		c.MaxConns = defaultMaxConns
	}
	if c.MinConns <= 0 {
		c.MinConns = defaultMinConns
	}
	return c
}

// Open connects a pool to the sync database and verifies connectivity
// before handing it to the store.
func Open(ctx context.Context, url string, cfg PoolConfig) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}

	cfg = cfg.withDefaults()
	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = time.Hour
	pc.MaxConnIdleTime = 30 * time.Minute
	pc.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	log.Info().
		Int32("maxConns", cfg.MaxConns).
		Int32("minConns", cfg.MinConns).
		Msg("sync database pool ready")

	return pool, nil
}
