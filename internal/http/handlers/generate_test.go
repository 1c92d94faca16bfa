package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"server/internal/providers/copywriter"
	"server/internal/sqlinline"

	"github.com/jackc/pgx/v5"
)

func TestGenerateStoresVariantsAndMarksReady(t *testing.T) {
	var inserted []string
	fake := &fakeSQL{t: t}
	fake.rowFn = func(query string, args ...any) pgx.Row {
		switch query {
		case sqlinline.QSelectSessionByID:
			return sessionRow("sess-1", "user-1", "Launch", "launch teaser", "draft", false)
		case sqlinline.QInsertContentVariant:
			inserted = append(inserted, args[1].(string))
			return NewSimpleRow(func(dest ...any) error {
				assign(dest[0], "variant-id")
				return nil
			})
		case sqlinline.QUpdateSessionStatus:
			if args[2] != "ready" {
				t.Fatalf("status arg = %v, want ready", args[2])
			}
			return NewSimpleRow(func(dest ...any) error {
				assign(dest[0], "ready")
				assign(dest[1], sql.NullTime{})
				return nil
			})
		default:
			t.Fatalf("unexpected statement: %q", firstLine(query))
			return nil
		}
	}
	app := newTestApp(fake)
	app.Copy = copywriter.NewStaticWriter()

	req := requestWithSession(http.MethodPost, "/v1/sessions/sess-1/generate", `{}`, "user-1", "sess-1")
	rec := httptest.NewRecorder()
	app.Generate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	counts := map[string]int{}
	for _, kind := range inserted {
		counts[kind]++
	}
	for _, kind := range []string{"hook", "caption", "title", "cta"} {
		if counts[kind] == 0 {
			t.Fatalf("no %s variants stored, inserted: %v", kind, inserted)
		}
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "ready" {
		t.Fatalf("status = %v, want ready", resp["status"])
	}
	if resp["provider"] == "" {
		t.Fatalf("provider missing from response")
	}
}

func TestGenerateKeepsReadyStatus(t *testing.T) {
	fake := &fakeSQL{t: t}
	fake.rowFn = func(query string, args ...any) pgx.Row {
		switch query {
		case sqlinline.QSelectSessionByID:
			return sessionRow("sess-1", "user-1", "Launch", "launch teaser", "ready", false)
		case sqlinline.QInsertContentVariant:
			return NewSimpleRow(func(dest ...any) error {
				assign(dest[0], "variant-id")
				return nil
			})
		default:
			t.Fatalf("unexpected statement: %q", firstLine(query))
			return nil
		}
	}
	app := newTestApp(fake)
	app.Copy = copywriter.NewStaticWriter()

	req := requestWithSession(http.MethodPost, "/v1/sessions/sess-1/generate", `{}`, "user-1", "sess-1")
	rec := httptest.NewRecorder()
	app.Generate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["status"] != "ready" {
		t.Fatalf("status = %v, want ready", resp["status"])
	}
}

func TestGenerateRejectsArchivedSession(t *testing.T) {
	fake := &fakeSQL{t: t, rowFn: func(query string, args ...any) pgx.Row {
		return sessionRow("sess-1", "user-1", "Launch", "launch teaser", "archived", false)
	}}
	app := newTestApp(fake)
	app.Copy = copywriter.NewStaticWriter()

	req := requestWithSession(http.MethodPost, "/v1/sessions/sess-1/generate", `{}`, "user-1", "sess-1")
	rec := httptest.NewRecorder()
	app.Generate(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}
