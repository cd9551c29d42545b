package db

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Connection failures are reported as one of these classified errors, not
// as the raw driver error.
var (
	ErrUnreachable     = errors.New("database server unreachable")
	ErrDatabaseMissing = errors.New("database does not exist")
	ErrSSLRequired     = errors.New("database connection requires ssl")
)

const (
	connectAttempts = 3
	connectBaseWait = time.Second
)

// Connect opens a pgx pool and verifies connectivity. Attempts are bounded
// with exponential backoff between them; the final failure is classified.
func Connect(ctx context.Context, dsn string, log zerolog.Logger) (*Handle, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 15 * time.Minute

	var lastErr error
	wait := connectBaseWait

	for attempt := 1; attempt <= connectAttempts; attempt++ {
		log.Info().
			Int("attempt", attempt).
			Str("host", cfg.ConnConfig.Host).
			Str("database", cfg.ConnConfig.Database).
			Msg("connecting to postgres")

		pool, err := tryConnect(ctx, cfg)
		if err == nil {
			log.Info().Msg("connected to postgres")
			return newHandle(pool, log), nil
		}

		lastErr = err
		log.Error().Err(err).Int("attempt", attempt).Msg("postgres connection failed")

		if attempt == connectAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}

	return nil, classifyConnectError(lastErr)
}

func tryConnect(ctx context.Context, cfg *pgxpool.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}

// classifyConnectError distinguishes the failure modes an operator acts on
// differently: network, missing database, TLS policy.
func classifyConnectError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "3D000": // invalid_catalog_name
			return fmt.Errorf("%w: %v", ErrDatabaseMissing, err)
		case pgErr.Code == "28000" && strings.Contains(strings.ToLower(pgErr.Message), "ssl"):
			return fmt.Errorf("%w: %v", ErrSSLRequired, err)
		}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "ssl is not enabled") || strings.Contains(msg, "server refused tls") {
		return fmt.Errorf("%w: %v", ErrSSLRequired, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) || strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "no such host") || strings.Contains(msg, "timeout") {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}
