package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type testRowsBase struct{}

func (testRowsBase) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (testRowsBase) Conn() *pgx.Conn { return nil }

func (testRowsBase) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (testRowsBase) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func (testRowsBase) RawValues() [][]byte { return nil }

// sliceRows replays scanners one row at a time.
type sliceRows struct {
	testRowsBase
	scans  []func(dest ...any) error
	idx    int
	closed bool
}

func (r *sliceRows) Close() { r.closed = true }

func (r *sliceRows) Err() error { return nil }

func (r *sliceRows) Next() bool {
	if r.idx >= len(r.scans) {
		return false
	}
	r.idx++
	return true
}

func (r *sliceRows) Scan(dest ...any) error {
	return r.scans[r.idx-1](dest...)
}

type execCall struct {
	query string
	args  []any
}

type stubSQL struct {
	execs   []execCall
	tag     pgconn.CommandTag
	execErr error
	rows    pgx.Rows
}

func (s *stubSQL) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.execs = append(s.execs, execCall{query: query, args: args})
	return s.tag, s.execErr
}

func (s *stubSQL) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return nil
}

func (s *stubSQL) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	s.execs = append(s.execs, execCall{query: query, args: args})
	return s.rows, nil
}
