package infra

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// SQLExecutor is the query surface repositories depend on.
type SQLExecutor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
}

var markerRegexp = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// SQLRunner runs marker-tagged statements on the pool. Logs carry the marker, never the SQL
// text or its arguments.
type SQLRunner struct {
	Pool   *pgxpool.Pool
	Logger zerolog.Logger
}

func NewSQLRunner(pool *pgxpool.Pool, logger zerolog.Logger) *SQLRunner {
	return &SQLRunner{Pool: pool, Logger: logger}
}

func (r *SQLRunner) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	marker, body, err := extractMarker(query)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	start := time.Now()
	tag, err := r.Pool.Exec(ctx, body, args...)
	if err != nil {
		r.Logger.Error().Err(err).Str("sql", marker).Dur("duration", time.Since(start)).Msg("exec failed")
		return tag, err
	}
	r.Logger.Debug().Str("sql", marker).Int64("rows", tag.RowsAffected()).Dur("duration", time.Since(start)).Msg("exec")
	return tag, nil
}

func (r *SQLRunner) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	marker, body, err := extractMarker(query)
	if err != nil {
		return errorRow{err: err}
	}
	return &trackedRow{
		row:    r.Pool.QueryRow(ctx, body, args...),
		logger: r.Logger,
		marker: marker,
		start:  time.Now(),
	}
}

func (r *SQLRunner) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	marker, body, err := extractMarker(query)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	rows, err := r.Pool.Query(ctx, body, args...)
	if err != nil {
		r.Logger.Error().Err(err).Str("sql", marker).Msg("query failed")
		return nil, err
	}
	return &trackedRows{Rows: rows, logger: r.Logger, marker: marker, start: start}, nil
}

// trackedRow logs once the row is scanned; an empty result is not an error worth logging.
type trackedRow struct {
	row    pgx.Row
	logger zerolog.Logger
	marker string
	start  time.Time
}

func (t *trackedRow) Scan(dest ...any) error {
	err := t.row.Scan(dest...)
	switch {
	case err == nil:
		t.logger.Debug().Str("sql", t.marker).Dur("duration", time.Since(t.start)).Msg("query_row")
	case IsNoRows(err):
		t.logger.Debug().Str("sql", t.marker).Msg("query_row: no rows")
	default:
		t.logger.Error().Err(err).Str("sql", t.marker).Msg("scan failed")
	}
	return err
}

// trackedRows counts iterated rows and logs the total on Close.
type trackedRows struct {
	pgx.Rows
	logger zerolog.Logger
	marker string
	start  time.Time
	count  int
	closed bool
}

func (t *trackedRows) Next() bool {
	ok := t.Rows.Next()
	if ok {
		t.count++
	}
	return ok
}

func (t *trackedRows) Close() {
	t.Rows.Close()
	if t.closed {
		return
	}
	t.closed = true
	if err := t.Rows.Err(); err != nil {
		t.logger.Error().Err(err).Str("sql", t.marker).Int("rows", t.count).Msg("query failed")
		return
	}
	t.logger.Debug().Str("sql", t.marker).Int("rows", t.count).Dur("duration", time.Since(t.start)).Msg("query")
}

type errorRow struct {
	err error
}

func (e errorRow) Scan(dest ...any) error {
	return e.err
}

// QueryMarker returns the marker id of a tagged query.
func QueryMarker(query string) (string, error) {
	marker, _, err := extractMarker(query)
	return marker, err
}

// extractMarker splits a tagged query into its marker id and the statement body.
func extractMarker(query string) (string, string, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return "", "", errors.New("empty query")
	}
	first, body, _ := strings.Cut(trimmed, "\n")
	first = strings.TrimSpace(first)
	if !markerRegexp.MatchString(first) {
		return "", "", errors.New("sql marker missing or invalid")
	}
	return strings.TrimPrefix(first, "--sql "), strings.TrimSpace(body), nil
}

var _ SQLExecutor = (*SQLRunner)(nil)
