package database

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"complexcare/internal/config"
)

// EnsureDatabaseExists connects to the maintenance database with the admin
// credentials and creates the application database if it is missing. It is a
// no-op when no admin user is configured.
func EnsureDatabaseExists(ctx context.Context, cfg config.DBConfig, log *zap.Logger) error {
	if cfg.AdminUser == "" {
		return nil
	}

	userInfo := url.UserPassword(cfg.AdminUser, cfg.AdminPassword)
	dsn := fmt.Sprintf(
		"postgres://%s@%s:%s/postgres?sslmode=disable",
		userInfo.String(),
		cfg.Host,
		cfg.Port,
	)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)"
	if err := pool.QueryRow(ctx, query, cfg.Database).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check if database exists: %w", err)
	}
	if exists {
		log.Debug("database already exists", zap.String("database", cfg.Database))
		return nil
	}

	// CREATE DATABASE cannot run inside a transaction.
	quotedDBName := pgx.Identifier{cfg.Database}.Sanitize()
	if _, err := pool.Exec(ctx, "CREATE DATABASE "+quotedDBName); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	log.Info("database created", zap.String("database", cfg.Database))
	return nil
}

func DSN(cfg config.DBConfig) string {
	userInfo := url.UserPassword(cfg.User, cfg.Password)
	return fmt.Sprintf(
		"postgres://%s@%s:%s/%s?sslmode=disable",
		userInfo.String(),
		cfg.Host,
		cfg.Port,
		url.PathEscape(cfg.Database),
	)
}

// Connect opens the application pool and pings it.
func Connect(ctx context.Context, dsn string, log *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string (check your .env file): %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("database connection pool established",
		zap.String("host", poolConfig.ConnConfig.Host),
		zap.String("database", poolConfig.ConnConfig.Database),
	)
	return pool, nil
}
