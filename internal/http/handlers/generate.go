package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"server/internal/domain"
	"server/internal/domain/jsoncfg"
	"server/internal/middleware"
	"server/internal/providers/copywriter"
	"server/internal/sqlinline"

	"github.com/go-chi/chi/v5"
)

// Generate runs a copy pass for a session: the stored brief goes to the copy
// provider and every returned variant is persisted. A successful first pass
// moves a draft session to ready.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
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
	if session.Status == domain.SessionStatusArchived {
		a.error(w, http.StatusConflict, "invalid_transition", "cannot generate for an archived session")
		return
	}
	var brief jsoncfg.ContentBrief
	if len(session.BriefJSON) > 0 {
		if err := json.Unmarshal(session.BriefJSON, &brief); err != nil {
			a.error(w, http.StatusInternalServerError, "internal", "stored brief is unreadable")
			return
		}
	}
	if brief.Idea == "" {
		brief.Idea = session.Idea
	}
	locale := middleware.LocaleFromContext(r.Context())
	brief.Normalize(locale)
	if err := brief.Validate(); err != nil {
		a.error(w, http.StatusUnprocessableEntity, "invalid_brief", err.Error())
		return
	}

	pack, err := a.Copy.Generate(r.Context(), copywriter.GenerateRequest{Brief: brief, Locale: brief.Extras.Locale})
	if err != nil {
		a.logUsage(r, sessionID, "COPY_GENERATE", false, nil)
		a.error(w, http.StatusBadGateway, "provider_failure", "copy generation failed")
		return
	}

	variants := []struct {
		kind   domain.ContentKind
		bodies []string
	}{
		{domain.ContentKindHook, pack.Hooks},
		{domain.ContentKindCaption, pack.Captions},
		{domain.ContentKindTitle, pack.Titles},
		{domain.ContentKindCTA, pack.CTAs},
	}
	for _, group := range variants {
		for _, body := range group.bodies {
			if body == "" {
				continue
			}
			var variantID string
			row := a.SQL.QueryRow(r.Context(), sqlinline.QInsertContentVariant, sessionID, string(group.kind), body, pack.Provider)
			if err := row.Scan(&variantID); err != nil {
				a.error(w, http.StatusInternalServerError, "internal", "failed to store generated copy")
				return
			}
		}
	}

	status := session.Status
	if status == domain.SessionStatusDraft {
		row := a.SQL.QueryRow(r.Context(), sqlinline.QUpdateSessionStatus, sessionID, userID, string(domain.SessionStatusReady))
		var updated string
		var publishedAt sql.NullTime
		if err := row.Scan(&updated, &publishedAt); err == nil {
			status = domain.SessionStatus(updated)
		}
	}

	a.logUsage(r, sessionID, "COPY_GENERATE", true, jsoncfg.MustMarshal(map[string]string{"provider": pack.Provider}))
	a.json(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"status":     status,
		"provider":   pack.Provider,
		"hooks":      pack.Hooks,
		"captions":   pack.Captions,
		"titles":     pack.Titles,
		"ctas":       pack.CTAs,
		"metadata":   pack.Metadata,
	})
}
