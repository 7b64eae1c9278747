package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eferbarn/solfolio/internal/config"
)

// PostgresStore implements Store over a single insights_cache table, for
// deployments that want the cache to survive restarts without Redis.
// Expired rows are filtered on read and overwritten on write; the schema is
// managed by the migrations under migrations/postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed store and verifies connectivity
func NewPostgresStore(cfg *config.PostgresConfig) (*PostgresStore, error) {
	connString := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable pool_max_conns=%d",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.MaxConnections,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks if the database is reachable
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Get implements Store
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM insights_cache WHERE cache_key = $1 AND expires_at > now()`,
		key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get from cache: %w", err)
	}
	return value, true, nil
}

// Set implements Store
func (s *PostgresStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO insights_cache (cache_key, payload, expires_at)
		 VALUES ($1, $2, now() + $3)
		 ON CONFLICT (cache_key)
		 DO UPDATE SET payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at`,
		key, value, ttl,
	)
	if err != nil {
		return fmt.Errorf("failed to set cache key: %w", err)
	}
	return nil
}

// Delete implements Store
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM insights_cache WHERE cache_key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete cache key: %w", err)
	}
	return nil
}
