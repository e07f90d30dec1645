package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/internal/config"
)

const (
	applicationName = "taskboard"
	pingTimeout     = 5 * time.Second
)

// NewPool creates and validates the pgx pool backing the user and task repositories.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pgxCfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connected to postgres",
		zap.String("host", cfg.Host),
		zap.String("db", cfg.Name),
		zap.Int32("max_conns", pgxCfg.MaxConns),
		zap.Int32("min_conns", pgxCfg.MinConns),
		zap.Duration("max_conn_lifetime", pgxCfg.MaxConnLifetime))
	return pool, nil
}

// poolConfig applies the configured limits on top of the URL. Connections are
// tagged with the application name so task queries are identifiable in pg_stat_activity.
func poolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	pgxCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		pgxCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		pgxCfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if pgxCfg.MinConns > pgxCfg.MaxConns {
		pgxCfg.MinConns = pgxCfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		pgxCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if _, set := pgxCfg.ConnConfig.RuntimeParams["application_name"]; !set {
		pgxCfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}
	return pgxCfg, nil
}
