package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"server/internal/domain"
	"server/internal/domain/jsoncfg"
	"server/internal/sqlinline"
	"server/internal/stats"

	"github.com/go-chi/chi/v5"
)

// PerformanceUpsert records post-publish metrics for a session. The write is
// idempotent per session: a second call replaces the previous observation.
func (a *App) PerformanceUpsert(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	sessionID := chi.URLParam(r, "id")
	session, err := a.loadSessionForUser(r, sessionID, userID)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "session not found")
		return
	}
	if session.Status != domain.SessionStatusPublished {
		a.error(w, http.StatusConflict, "not_published", "metrics can only be recorded for published sessions")
		return
	}
	var input jsoncfg.PerformanceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if err := input.Validate(); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	row := a.SQL.QueryRow(r.Context(), sqlinline.QUpsertPerformance,
		sessionID, userID, input.Views, input.Likes, input.Comments, input.Reposts, input.Note)
	var storedSessionID string
	var recordedAt time.Time
	if err := row.Scan(&storedSessionID, &recordedAt); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to record metrics")
		return
	}
	a.logUsage(r, sessionID, "METRICS_RECORD", true, nil)
	a.json(w, http.StatusOK, map[string]any{
		"session_id":  storedSessionID,
		"views":       input.Views,
		"likes":       input.Likes,
		"comments":    input.Comments,
		"reposts":     input.Reposts,
		"note":        input.Note,
		"recorded_at": recordedAt,
	})
}

// PerformanceSummary aggregates every recorded observation for the caller's
// published sessions into totals, averages, and per-metric best performers.
func (a *App) PerformanceSummary(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var totalPublished int64
	if err := a.SQL.QueryRow(r.Context(), sqlinline.QCountPublishedSessions, userID).Scan(&totalPublished); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to count published sessions")
		return
	}
	rows, err := a.SQL.Query(r.Context(), sqlinline.QSelectPerformanceRecords, userID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load metrics")
		return
	}
	defer rows.Close()
	var records []stats.PerformanceRecord
	for rows.Next() {
		var rec stats.PerformanceRecord
		if err := rows.Scan(&rec.SessionID, &rec.Title, &rec.Views, &rec.Likes, &rec.Comments, &rec.Reposts, &rec.RecordedAt); err != nil {
			a.error(w, http.StatusInternalServerError, "internal", "failed to read metrics")
			return
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to read metrics")
		return
	}
	a.json(w, http.StatusOK, stats.Compute(totalPublished, records))
}
