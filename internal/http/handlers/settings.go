package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"server/internal/domain"
	"server/internal/sqlinline"

	"github.com/jackc/pgx/v5"
)

type settingsRequest struct {
	Tone        string `json:"tone"`
	Platform    string `json:"platform"`
	Locale      string `json:"locale"`
	AspectRatio string `json:"aspect_ratio"`
}

func (a *App) SettingsGet(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectSettings, userID)
	var settings domain.Settings
	var updatedAt time.Time
	err := row.Scan(&settings.Tone, &settings.Platform, &settings.Locale, &settings.AspectRatio, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		defaults := domain.DefaultSettings(userID)
		a.json(w, http.StatusOK, map[string]any{
			"tone":         defaults.Tone,
			"platform":     defaults.Platform,
			"locale":       defaults.Locale,
			"aspect_ratio": defaults.AspectRatio,
			"updated_at":   nil,
		})
		return
	}
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load settings")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"tone":         settings.Tone,
		"platform":     settings.Platform,
		"locale":       settings.Locale,
		"aspect_ratio": settings.AspectRatio,
		"updated_at":   updatedAt,
	})
}

func (a *App) SettingsPut(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	settings := domain.Settings{
		Tone:        req.Tone,
		Platform:    req.Platform,
		Locale:      req.Locale,
		AspectRatio: req.AspectRatio,
	}
	settings.ApplyDefaults()
	if err := settings.Validate(); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	var updatedAt time.Time
	row := a.SQL.QueryRow(r.Context(), sqlinline.QUpsertSettings,
		userID, settings.Tone, settings.Platform, settings.Locale, settings.AspectRatio)
	if err := row.Scan(&updatedAt); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to save settings")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"tone":         settings.Tone,
		"platform":     settings.Platform,
		"locale":       settings.Locale,
		"aspect_ratio": settings.AspectRatio,
		"updated_at":   updatedAt,
	})
}
