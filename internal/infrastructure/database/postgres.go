package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"transfers/internal/domain"
)

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// NewPostgresDB opens and pings a connection pool. The pool is a process-wide
// resource handle that gets injected into the services at construction.
func NewPostgresDB(cfg DBConfig) (*DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	pool.SetMaxOpenConns(25)
	pool.SetMaxIdleConns(5)
	pool.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &DB{pool: pool}, nil
}

// DB wraps the sql pool and exposes it as a domain.TxBeginner.
type DB struct {
	pool *sql.DB
}

func (d *DB) Begin(ctx context.Context) (domain.Tx, error) {
	tx, err := d.pool.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %v", domain.ErrStoreUnavailable, err)
	}
	return tx, nil
}

// Pool exposes the raw pool for migrations and shutdown.
func (d *DB) Pool() *sql.DB {
	return d.pool
}

func (d *DB) Close() error {
	return d.pool.Close()
}

var _ domain.TxBeginner = (*DB)(nil)
