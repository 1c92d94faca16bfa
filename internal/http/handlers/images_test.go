package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"server/internal/providers/image"
	"server/internal/sqlinline"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
)

func newImageApp(fake *fakeSQL) *App {
	app := newTestApp(fake)
	app.Config.ImageProvider = "static"
	app.ImageProviders = map[string]image.Generator{"static": image.NewStaticGenerator()}
	return app
}

func TestImagesEnqueueQueuesJob(t *testing.T) {
	fake := &fakeSQL{t: t}
	fake.rowFn = func(query string, args ...any) pgx.Row {
		switch query {
		case sqlinline.QSelectSessionByID:
			return sessionRow("sess-1", "user-1", "Launch", "launch teaser", "ready", false)
		case sqlinline.QEnqueueImageJob:
			if args[3] != 2 {
				t.Fatalf("quantity arg = %v, want 2", args[3])
			}
			if args[4] != "9:16" {
				t.Fatalf("aspect arg = %v, want 9:16", args[4])
			}
			if args[5] != "static" {
				t.Fatalf("provider arg = %v, want static", args[5])
			}
			return NewSimpleRow(func(dest ...any) error {
				assign(dest[0], "job-1")
				return nil
			})
		default:
			t.Fatalf("unexpected statement: %q", firstLine(query))
			return nil
		}
	}
	app := newImageApp(fake)

	body := `{"prompt": "sunset teaser frame", "quantity": 2, "aspect_ratio": "9:16"}`
	req := requestWithSession(http.MethodPost, "/v1/sessions/sess-1/images", body, "user-1", "sess-1")
	rec := httptest.NewRecorder()
	app.ImagesEnqueue(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["job_id"] != "job-1" || resp["status"] != "QUEUED" {
		t.Fatalf("response = %v", resp)
	}
}

func TestImagesEnqueueRejectsUnknownProvider(t *testing.T) {
	fake := &fakeSQL{t: t, rowFn: func(query string, args ...any) pgx.Row {
		return sessionRow("sess-1", "user-1", "Launch", "launch teaser", "ready", false)
	}}
	app := newImageApp(fake)

	body := `{"prompt": "anything", "provider": "dalle"}`
	req := requestWithSession(http.MethodPost, "/v1/sessions/sess-1/images", body, "user-1", "sess-1")
	rec := httptest.NewRecorder()
	app.ImagesEnqueue(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestImagesJobGetReturnsAssets(t *testing.T) {
	createdAt := time.Date(2026, 8, 5, 11, 0, 0, 0, time.UTC)
	fake := &fakeSQL{t: t}
	fake.rowFn = func(query string, args ...any) pgx.Row {
		if query != sqlinline.QSelectImageJob {
			t.Fatalf("unexpected statement: %q", firstLine(query))
		}
		return NewSimpleRow(func(dest ...any) error {
			assign(dest[0], "job-1")
			assign(dest[1], "user-1")
			assign(dest[2], "sess-1")
			assign(dest[3], "DONE")
			assign(dest[4], "static")
			assign(dest[5], 1)
			assign(dest[6], "1:1")
			assign(dest[7], createdAt)
			assign(dest[8], createdAt)
			assign(dest[9], json.RawMessage(`{}`))
			return nil
		})
	}
	fake.queryFn = func(query string, args ...any) (pgx.Rows, error) {
		if query != sqlinline.QSelectJobAssets {
			t.Fatalf("unexpected statement: %q", firstLine(query))
		}
		return &fakeRows{scans: []func(dest ...any) error{
			func(dest ...any) error {
				assign(dest[0], "asset-1")
				assign(dest[1], "generated/job-1/image-01.png")
				assign(dest[2], "image/png")
				assign(dest[3], int64(2048))
				assign(dest[4], 1024)
				assign(dest[5], 1024)
				assign(dest[6], "1:1")
				assign(dest[7], json.RawMessage(`{"provider":"static"}`))
				assign(dest[8], createdAt)
				return nil
			},
		}}, nil
	}
	app := newImageApp(fake)

	req := httptest.NewRequest(http.MethodGet, "/v1/images/job-1", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("jobID", "job-1")
	ctx := chiRouteContext(requestWithSession(http.MethodGet, "/", "", "user-1", "").Context(), rctx)
	rec := httptest.NewRecorder()
	app.ImagesJobGet(rec, req.WithContext(ctx))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		JobID  string     `json:"job_id"`
		Status string     `json:"status"`
		Assets []jobAsset `json:"assets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.JobID != "job-1" || resp.Status != "DONE" {
		t.Fatalf("response = %+v", resp)
	}
	if len(resp.Assets) != 1 || resp.Assets[0].StorageKey != "generated/job-1/image-01.png" {
		t.Fatalf("assets = %+v", resp.Assets)
	}
}
