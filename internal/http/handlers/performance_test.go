package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"server/internal/infra"
	"server/internal/middleware"
	"server/internal/sqlinline"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
)

func i64(v int64) *int64 { return &v }

func newTestApp(sqlExec infra.SQLExecutor) *App {
	return &App{
		Config:    &infra.Config{SessionListLimit: 50},
		Logger:    testLogger(),
		SQL:       sqlExec,
		JWTSecret: "test-secret",
	}
}

func requestWithSession(method, target, body, userID, sessionID string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := middleware.ContextWithUserID(req.Context(), userID)
	if sessionID != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", sessionID)
		ctx = chiRouteContext(ctx, rctx)
	}
	return req.WithContext(ctx)
}

func sessionRow(id, userID, title, idea, status string, published bool) pgx.Row {
	return NewSimpleRow(func(dest ...any) error {
		now := time.Now()
		assign(dest[0], id)
		assign(dest[1], userID)
		assign(dest[2], title)
		assign(dest[3], idea)
		assign(dest[4], status)
		assign(dest[5], []byte(`{}`))
		assign(dest[6], sql.NullString{})
		assign(dest[7], sql.NullTime{Valid: published, Time: now})
		assign(dest[8], now)
		assign(dest[9], now)
		return nil
	})
}

func TestPerformanceUpsertRejectsUnpublished(t *testing.T) {
	fake := &fakeSQL{t: t, rowFn: func(query string, args ...any) pgx.Row {
		if query != sqlinline.QSelectSessionByID {
			t.Fatalf("unexpected statement: %q", firstLine(query))
		}
		return sessionRow("sess-1", "user-1", "Launch", "launch teaser", "draft", false)
	}}
	app := newTestApp(fake)

	req := requestWithSession(http.MethodPut, "/v1/sessions/sess-1/performance", `{"views": 10}`, "user-1", "sess-1")
	rec := httptest.NewRecorder()
	app.PerformanceUpsert(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "not_published") {
		t.Fatalf("body = %s, want not_published code", rec.Body.String())
	}
}

func TestPerformanceUpsertRejectsNegativeMetric(t *testing.T) {
	fake := &fakeSQL{t: t, rowFn: func(query string, args ...any) pgx.Row {
		return sessionRow("sess-1", "user-1", "Launch", "launch teaser", "published", true)
	}}
	app := newTestApp(fake)

	req := requestWithSession(http.MethodPut, "/v1/sessions/sess-1/performance", `{"likes": -3}`, "user-1", "sess-1")
	rec := httptest.NewRecorder()
	app.PerformanceUpsert(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPerformanceUpsertStoresMetrics(t *testing.T) {
	recordedAt := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	fake := &fakeSQL{t: t}
	fake.rowFn = func(query string, args ...any) pgx.Row {
		switch query {
		case sqlinline.QSelectSessionByID:
			return sessionRow("sess-1", "user-1", "Launch", "launch teaser", "published", true)
		case sqlinline.QUpsertPerformance:
			if views := args[2].(*int64); views == nil || *views != 120 {
				t.Fatalf("views arg = %v, want 120", views)
			}
			if comments := args[4].(*int64); comments != nil {
				t.Fatalf("comments arg = %v, want nil", comments)
			}
			return NewSimpleRow(func(dest ...any) error {
				assign(dest[0], "sess-1")
				assign(dest[1], recordedAt)
				return nil
			})
		default:
			t.Fatalf("unexpected statement: %q", firstLine(query))
			return nil
		}
	}
	app := newTestApp(fake)

	req := requestWithSession(http.MethodPut, "/v1/sessions/sess-1/performance", `{"views": 120, "likes": 8, "reposts": 0}`, "user-1", "sess-1")
	rec := httptest.NewRecorder()
	app.PerformanceUpsert(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["session_id"] != "sess-1" {
		t.Fatalf("session_id = %v", resp["session_id"])
	}
	if resp["comments"] != nil {
		t.Fatalf("comments = %v, want null", resp["comments"])
	}
	if resp["reposts"] != float64(0) {
		t.Fatalf("reposts = %v, want 0", resp["reposts"])
	}
}

func TestPerformanceSummaryAggregates(t *testing.T) {
	base := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	fake := &fakeSQL{t: t}
	fake.rowFn = func(query string, args ...any) pgx.Row {
		if query != sqlinline.QCountPublishedSessions {
			t.Fatalf("unexpected statement: %q", firstLine(query))
		}
		return NewSimpleRow(func(dest ...any) error {
			assign(dest[0], int64(3))
			return nil
		})
	}
	fake.queryFn = func(query string, args ...any) (pgx.Rows, error) {
		if query != sqlinline.QSelectPerformanceRecords {
			t.Fatalf("unexpected statement: %q", firstLine(query))
		}
		scanRecord := func(id, title string, views, likes, comments, reposts *int64, at time.Time) func(dest ...any) error {
			return func(dest ...any) error {
				assign(dest[0], id)
				assign(dest[1], title)
				assign(dest[2], views)
				assign(dest[3], likes)
				assign(dest[4], comments)
				assign(dest[5], reposts)
				assign(dest[6], at)
				return nil
			}
		}
		return &fakeRows{scans: []func(dest ...any) error{
			scanRecord("sess-a", "Launch", i64(10), i64(2), nil, i64(0), base),
			scanRecord("sess-b", "Teaser", i64(11), i64(2), nil, nil, base.Add(time.Hour)),
		}}, nil
	}
	app := newTestApp(fake)

	req := requestWithSession(http.MethodGet, "/v1/performance/summary", "", "user-1", "")
	rec := httptest.NewRecorder()
	app.PerformanceSummary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		TotalPublished      int64 `json:"total_published"`
		SessionsWithMetrics int   `json:"sessions_with_metrics"`
		Totals              struct {
			Views    int64 `json:"views"`
			Likes    int64 `json:"likes"`
			Comments int64 `json:"comments"`
			Reposts  int64 `json:"reposts"`
		} `json:"totals"`
		Averages struct {
			Views    float64 `json:"views"`
			Likes    float64 `json:"likes"`
			Comments float64 `json:"comments"`
			Reposts  float64 `json:"reposts"`
		} `json:"averages"`
		BestPerforming map[string]*struct {
			SessionID string `json:"session_id"`
			Title     string `json:"title"`
			Value     int64  `json:"value"`
		} `json:"best_performing"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TotalPublished != 3 || resp.SessionsWithMetrics != 2 {
		t.Fatalf("counts = %d/%d, want 3/2", resp.TotalPublished, resp.SessionsWithMetrics)
	}
	if resp.Totals.Views != 21 || resp.Totals.Likes != 4 || resp.Totals.Comments != 0 || resp.Totals.Reposts != 0 {
		t.Fatalf("totals = %+v", resp.Totals)
	}
	if resp.Averages.Views != 10.5 || resp.Averages.Likes != 2 || resp.Averages.Comments != 0 {
		t.Fatalf("averages = %+v", resp.Averages)
	}
	if best := resp.BestPerforming["by_views"]; best == nil || best.SessionID != "sess-b" || best.Value != 11 {
		t.Fatalf("by_views = %+v", resp.BestPerforming["by_views"])
	}
	// Strict tie-break: sess-a recorded the same like count first, so it keeps the title.
	if best := resp.BestPerforming["by_likes"]; best == nil || best.SessionID != "sess-a" {
		t.Fatalf("by_likes = %+v", resp.BestPerforming["by_likes"])
	}
	if resp.BestPerforming["by_comments"] != nil {
		t.Fatalf("by_comments = %+v, want null", resp.BestPerforming["by_comments"])
	}
	if best := resp.BestPerforming["by_reposts"]; best == nil || best.SessionID != "sess-a" || best.Value != 0 {
		t.Fatalf("by_reposts = %+v", resp.BestPerforming["by_reposts"])
	}
	if !strings.Contains(rec.Body.String(), `"by_comments":null`) {
		t.Fatalf("body does not serialize absent best as null: %s", rec.Body.String())
	}
}
