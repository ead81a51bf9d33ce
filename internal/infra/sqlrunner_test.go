package infra

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

func TestExtractMarker(t *testing.T) {
	query := "--sql 0b0c4f6e-3f4d-4d55-9c3c-5f0f1a2b3c4d\nselect 1;\n"
	marker, body, err := extractMarker(query)
	if err != nil {
		t.Fatalf("extractMarker returned error: %v", err)
	}
	if marker != "0b0c4f6e-3f4d-4d55-9c3c-5f0f1a2b3c4d" {
		t.Fatalf("marker = %q", marker)
	}
	if body != "select 1;" {
		t.Fatalf("body = %q", body)
	}
}

func TestExtractMarkerRejectsUntagged(t *testing.T) {
	for _, q := range []string{"select 1;", "--sql not-a-uuid\nselect 1;", "", "  \n "} {
		if _, _, err := extractMarker(q); err == nil {
			t.Fatalf("expected error for %q", q)
		}
	}
}

type rowFunc func(dest ...any) error

func (f rowFunc) Scan(dest ...any) error { return f(dest...) }

func TestTrackedRowLogsFailuresOnly(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

	noRows := &trackedRow{row: rowFunc(func(...any) error { return pgx.ErrNoRows }), logger: logger, marker: "m1"}
	if err := noRows.Scan(); !IsNoRows(err) {
		t.Fatalf("expected no rows, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("no-rows must not log at info: %s", buf.String())
	}

	broken := &trackedRow{row: rowFunc(func(...any) error { return errors.New("conn reset") }), logger: logger, marker: "m2"}
	_ = broken.Scan()
	if !strings.Contains(buf.String(), `"sql":"m2"`) || !strings.Contains(buf.String(), "scan failed") {
		t.Fatalf("log = %s", buf.String())
	}
}

type fakeRows struct {
	pgx.Rows
	left   int
	closes int
}

func (f *fakeRows) Next() bool {
	if f.left == 0 {
		return false
	}
	f.left--
	return true
}

func (f *fakeRows) Close()     { f.closes++ }
func (f *fakeRows) Err() error { return nil }

func TestTrackedRowsCountsAndClosesOnce(t *testing.T) {
	var buf bytes.Buffer
	inner := &fakeRows{left: 3}
	rows := &trackedRows{Rows: inner, logger: zerolog.New(&buf), marker: "m3"}
	for rows.Next() {
	}
	rows.Close()
	rows.Close()

	if rows.count != 3 || inner.closes != 2 {
		t.Fatalf("count=%d closes=%d", rows.count, inner.closes)
	}
	if strings.Count(buf.String(), `"rows":3`) != 1 {
		t.Fatalf("log = %s", buf.String())
	}
}
