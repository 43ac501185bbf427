package postgres

import (
	"context"
	"fmt"
	"loan-service/internal/config"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	applicationName = "loan-service"
	pingTimeout     = 5 * time.Second
)

// NewConnectionPool opens a pool sized from cfg and waits until the server answers,
// retrying with a linear backoff.
func NewConnectionPool(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is empty in configuration")
	}
	logger = logger.With("component", "PostgresPool")

	poolConfig, err := configurePool(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := awaitDatabase(ctx, pool, cfg, logger); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("Connected to loan database",
		"host", poolConfig.ConnConfig.Host,
		"db", poolConfig.ConnConfig.Database,
		"max_conns", poolConfig.MaxConns,
	)
	return pool, nil
}

func configurePool(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config from URL: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 && cfg.MinConns <= poolConfig.MaxConns {
		poolConfig.MinConns = cfg.MinConns
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.HealthCheckPeriod > 0 {
		poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	}
	if _, ok := poolConfig.ConnConfig.RuntimeParams["application_name"]; !ok {
		poolConfig.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	return poolConfig, nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

// awaitDatabase pings until success, cfg.ConnectAttempts is exhausted or ctx ends.
func awaitDatabase(ctx context.Context, db pinger, cfg config.DatabaseConfig, logger *slog.Logger) error {
	attempts := max(cfg.ConnectAttempts, 1)

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err = db.Ping(pingCtx)
		cancel()
		if err == nil {
			return nil
		}

		logger.Warn("Loan database not reachable",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.Any("error", err),
		)
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("gave up waiting for database: %w", ctx.Err())
		case <-time.After(time.Duration(attempt) * cfg.ConnectBackoff):
		}
	}
	return fmt.Errorf("database unreachable after %d attempts: %w", attempts, err)
}
