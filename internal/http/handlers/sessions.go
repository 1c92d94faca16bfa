package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"server/internal/domain"
	"server/internal/domain/jsoncfg"
	"server/internal/middleware"
	"server/internal/sqlinline"

	"github.com/go-chi/chi/v5"
)

type sessionCreateRequest struct {
	Title string               `json:"title"`
	Idea  string               `json:"idea"`
	Brief jsoncfg.ContentBrief `json:"brief"`
}

type sessionRemixRequest struct {
	Title string `json:"title"`
	Twist string `json:"twist"`
}

func (a *App) SessionsCreate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req sessionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Idea) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "idea required")
		return
	}
	if req.Brief.Idea == "" {
		req.Brief.Idea = req.Idea
	}
	locale := middleware.LocaleFromContext(r.Context())
	req.Brief.Normalize(locale)
	if err := req.Brief.Validate(); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = deriveTitle(req.Idea)
	}
	briefBytes := jsoncfg.MustMarshal(req.Brief)
	row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertSession, userID, title, req.Idea, briefBytes)
	var sessionID string
	var createdAt time.Time
	if err := row.Scan(&sessionID, &createdAt); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to create session")
		return
	}
	a.logUsage(r, sessionID, "SESSION_CREATE", true, nil)
	a.json(w, http.StatusCreated, map[string]any{
		"id":         sessionID,
		"title":      title,
		"status":     domain.SessionStatusDraft,
		"created_at": createdAt,
	})
}

func (a *App) SessionsList(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	limit := a.Config.SessionListLimit
	if limit <= 0 {
		limit = 50
	}
	rows, err := a.SQL.Query(r.Context(), sqlinline.QListSessions, userID, limit)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to list sessions")
		return
	}
	defer rows.Close()
	var items []map[string]any
	for rows.Next() {
		var id, title, idea, status string
		var publishedAt sql.NullTime
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&id, &title, &idea, &status, &publishedAt, &createdAt, &updatedAt); err != nil {
			continue
		}
		var published any
		if publishedAt.Valid {
			published = publishedAt.Time
		}
		items = append(items, map[string]any{
			"id":           id,
			"title":        title,
			"idea":         idea,
			"status":       status,
			"published_at": published,
			"created_at":   createdAt,
			"updated_at":   updatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) SessionsGet(w http.ResponseWriter, r *http.Request) {
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
	content, err := a.loadSessionContent(r, sessionID, userID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load content")
		return
	}
	var published any
	if session.PublishedAt != nil {
		published = *session.PublishedAt
	}
	a.json(w, http.StatusOK, map[string]any{
		"id":           session.ID,
		"title":        session.Title,
		"idea":         session.Idea,
		"status":       session.Status,
		"brief":        json.RawMessage(session.BriefJSON),
		"remixed_from": nullableString(session.RemixedFrom),
		"published_at": published,
		"created_at":   session.CreatedAt,
		"updated_at":   session.UpdatedAt,
		"content":      content,
	})
}

func (a *App) SessionsDelete(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	sessionID := chi.URLParam(r, "id")
	if _, err := a.loadSessionForUser(r, sessionID, userID); err != nil {
		a.error(w, http.StatusNotFound, "not_found", "session not found")
		return
	}
	if _, err := a.SQL.Exec(r.Context(), sqlinline.QArchiveSession, sessionID, userID); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to archive session")
		return
	}
	a.logUsage(r, sessionID, "SESSION_ARCHIVE", true, nil)
	w.WriteHeader(http.StatusNoContent)
}

// SessionsPublish finalizes a session. Publishing is what makes the session
// eligible for performance tracking.
func (a *App) SessionsPublish(w http.ResponseWriter, r *http.Request) {
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
	if !domain.ValidTransition(session.Status, domain.SessionStatusPublished) {
		a.error(w, http.StatusConflict, "invalid_transition", fmt.Sprintf("cannot publish a %s session", session.Status))
		return
	}
	row := a.SQL.QueryRow(r.Context(), sqlinline.QUpdateSessionStatus, sessionID, userID, string(domain.SessionStatusPublished))
	var status string
	var publishedAt sql.NullTime
	if err := row.Scan(&status, &publishedAt); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to publish session")
		return
	}
	a.logUsage(r, sessionID, "SESSION_PUBLISH", true, nil)
	var published any
	if publishedAt.Valid {
		published = publishedAt.Time
	}
	a.json(w, http.StatusOK, map[string]any{
		"id":           sessionID,
		"status":       status,
		"published_at": published,
	})
}

// SessionsRemix clones a session into a fresh draft, folding the caller's
// twist into the brief instructions so the next generation pass diverges.
func (a *App) SessionsRemix(w http.ResponseWriter, r *http.Request) {
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
	var req sessionRemixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	var brief jsoncfg.ContentBrief
	if len(session.BriefJSON) > 0 {
		_ = json.Unmarshal(session.BriefJSON, &brief)
	}
	if brief.Idea == "" {
		brief.Idea = session.Idea
	}
	if twist := strings.TrimSpace(req.Twist); twist != "" {
		if brief.Instructions != "" {
			brief.Instructions = brief.Instructions + "; " + twist
		} else {
			brief.Instructions = twist
		}
	}
	brief.Normalize(middleware.LocaleFromContext(r.Context()))
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = session.Title + " (remix)"
	}
	row := a.SQL.QueryRow(r.Context(), sqlinline.QRemixSession, sessionID, userID, title, session.Idea, jsoncfg.MustMarshal(brief))
	var remixID string
	var createdAt time.Time
	if err := row.Scan(&remixID, &createdAt); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to remix session")
		return
	}
	a.logUsage(r, remixID, "SESSION_REMIX", true, jsoncfg.MustMarshal(map[string]string{"source": sessionID}))
	a.json(w, http.StatusCreated, map[string]any{
		"id":           remixID,
		"title":        title,
		"status":       domain.SessionStatusDraft,
		"remixed_from": sessionID,
		"created_at":   createdAt,
	})
}

func (a *App) loadSessionForUser(r *http.Request, sessionID, userID string) (*domain.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, domain.ErrNotFound
	}
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectSessionByID, sessionID, userID)
	var session domain.Session
	var status string
	var remixedFrom sql.NullString
	var publishedAt sql.NullTime
	if err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Title,
		&session.Idea,
		&status,
		&session.BriefJSON,
		&remixedFrom,
		&publishedAt,
		&session.CreatedAt,
		&session.UpdatedAt,
	); err != nil {
		return nil, err
	}
	session.Status = domain.SessionStatus(status)
	if remixedFrom.Valid {
		session.RemixedFrom = remixedFrom.String
	}
	if publishedAt.Valid {
		t := publishedAt.Time
		session.PublishedAt = &t
	}
	return &session, nil
}

func (a *App) loadSessionContent(r *http.Request, sessionID, userID string) ([]map[string]any, error) {
	rows, err := a.SQL.Query(r.Context(), sqlinline.QSelectSessionContent, sessionID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []map[string]any{}
	for rows.Next() {
		var id, kind, body, provider string
		var createdAt time.Time
		if err := rows.Scan(&id, &kind, &body, &provider, &createdAt); err != nil {
			continue
		}
		items = append(items, map[string]any{
			"id":         id,
			"kind":       kind,
			"body":       body,
			"provider":   provider,
			"created_at": createdAt,
		})
	}
	return items, nil
}

func deriveTitle(idea string) string {
	idea = strings.TrimSpace(idea)
	const maxTitle = 60
	if len(idea) <= maxTitle {
		return idea
	}
	cut := idea[:maxTitle]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
