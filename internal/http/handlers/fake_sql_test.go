package handlers

import (
	"context"
	"io"
	"testing"

	"server/internal/infra"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// fakeSQL routes each statement by its marker constant, so a test declares
// exactly the statements it expects to see.
type fakeSQL struct {
	t        *testing.T
	execFn   func(query string, args ...any) (pgconn.CommandTag, error)
	rowFn    func(query string, args ...any) pgx.Row
	queryFn  func(query string, args ...any) (pgx.Rows, error)
	execLog  []string
	rowLog   []string
	queryLog []string
}

func (f *fakeSQL) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.execLog = append(f.execLog, query)
	if f.execFn == nil {
		return pgconn.CommandTag{}, nil
	}
	return f.execFn(query, args...)
}

func (f *fakeSQL) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	f.rowLog = append(f.rowLog, query)
	if f.rowFn == nil {
		f.t.Fatalf("unexpected QueryRow: %q", firstLine(query))
	}
	return f.rowFn(query, args...)
}

func (f *fakeSQL) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	f.queryLog = append(f.queryLog, query)
	if f.queryFn == nil {
		f.t.Fatalf("unexpected Query: %q", firstLine(query))
	}
	return f.queryFn(query, args...)
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}

var _ infra.SQLExecutor = (*fakeSQL)(nil)

// fakeRows serves pre-baked scan callbacks, one per row.
type fakeRows struct {
	TestRowsBase
	scans []func(dest ...any) error
	pos   int
	err   error
}

func (r *fakeRows) Next() bool {
	return r.pos < len(r.scans)
}

func (r *fakeRows) Scan(dest ...any) error {
	scan := r.scans[r.pos]
	r.pos++
	return scan(dest...)
}

func (r *fakeRows) Err() error { return r.err }

func (r *fakeRows) Close() {}

var _ pgx.Rows = (*fakeRows)(nil)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func assign[T any](dest any, value T) {
	*dest.(*T) = value
}

func chiRouteContext(ctx context.Context, rctx *chi.Context) context.Context {
	return context.WithValue(ctx, chi.RouteCtxKey, rctx)
}
