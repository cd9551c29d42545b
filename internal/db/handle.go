package db

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// probeCooldown throttles health re-probes so concurrent requests during
// an outage do not hammer a down database.
const probeCooldown = 5 * time.Second

// Handle wraps the pool as an explicitly injected database handle. Query
// execution retries exactly once after an operational-class error, behind
// a cooldown-gated health probe; every other driver error surfaces
// immediately.
type Handle struct {
	pool *pgxpool.Pool
	log  zerolog.Logger

	mu        sync.Mutex
	lastProbe time.Time
}

func newHandle(pool *pgxpool.Pool, log zerolog.Logger) *Handle {
	return &Handle{pool: pool, log: log}
}

// Pool exposes the underlying pool for callers that need transactions or
// dependency probes.
func (h *Handle) Pool() *pgxpool.Pool { return h.pool }

func (h *Handle) Close() {
	h.pool.Close()
	h.log.Info().Msg("database pool closed")
}

// Ping reports pool connectivity.
func (h *Handle) Ping(ctx context.Context) error {
	return h.pool.Ping(ctx)
}

// Healthy runs the lightweight liveness probe.
func (h *Handle) Healthy(ctx context.Context) error {
	var one int
	if err := h.pool.QueryRow(ctx, "SELECT 1").Scan(&one); err != nil {
		return err
	}
	return nil
}

func (h *Handle) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	tag, err := h.pool.Exec(ctx, sql, args...)
	if err != nil && h.shouldRetry(ctx, err) {
		tag, err = h.pool.Exec(ctx, sql, args...)
	}
	if err != nil {
		h.log.Error().Err(err).Str("sql", sql).Msg("exec failed")
	}
	return tag, err
}

func (h *Handle) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	rows, err := h.pool.Query(ctx, sql, args...)
	if err != nil && h.shouldRetry(ctx, err) {
		rows, err = h.pool.Query(ctx, sql, args...)
	}
	if err != nil {
		h.log.Error().Err(err).Str("sql", sql).Msg("query failed")
	}
	return rows, err
}

// QueryRow defers execution to Scan, so the retry decision happens there.
func (h *Handle) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return &retryRow{h: h, ctx: ctx, sql: sql, args: args}
}

type retryRow struct {
	h    *Handle
	ctx  context.Context
	sql  string
	args []any
}

func (r *retryRow) Scan(dest ...any) error {
	err := r.h.pool.QueryRow(r.ctx, r.sql, r.args...).Scan(dest...)
	if err != nil && r.h.shouldRetry(r.ctx, err) {
		err = r.h.pool.QueryRow(r.ctx, r.sql, r.args...).Scan(dest...)
	}
	return err
}

// shouldRetry decides whether a failed statement gets its single retry:
// the error must be operational-class and a fresh probe must confirm the
// database is reachable again.
func (h *Handle) shouldRetry(ctx context.Context, err error) bool {
	if !IsOperational(err) {
		return false
	}

	h.mu.Lock()
	if time.Since(h.lastProbe) < probeCooldown {
		h.mu.Unlock()
		h.log.Warn().Err(err).Msg("operational error within probe cooldown, not retrying")
		return false
	}
	h.lastProbe = time.Now()
	h.mu.Unlock()

	h.log.Warn().Err(err).Msg("operational error during query, probing connection")

	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if pingErr := h.pool.Ping(probeCtx); pingErr != nil {
		h.log.Error().Err(pingErr).Msg("connection probe failed")
		return false
	}

	h.log.Info().Msg("connection probe succeeded, retrying query once")
	return true
}

// IsOperational reports whether an error is a transient
// connectivity-class failure, as opposed to a constraint or logic error.
func IsOperational(err error) bool {
	if err == nil || errors.Is(err, pgx.ErrNoRows) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pgconn.SafeToRetry(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 08: connection exception; 57P01..57P03: server shutdown
		// or refusing connections
		return strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57P")
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
