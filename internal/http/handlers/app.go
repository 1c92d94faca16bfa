package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"server/internal/infra"
	"server/internal/middleware"
	"server/internal/providers/copywriter"
	"server/internal/providers/image"
	"server/internal/sqlinline"
	"server/internal/storage"
)

// App bundles the dependencies every handler needs. Handlers depend on the
// SQLExecutor interface rather than a pool so tests can swap in fakes.
type App struct {
	Config         *infra.Config
	Logger         infra.Logger
	SQL            infra.SQLExecutor
	Copy           copywriter.Writer
	ImageProviders map[string]image.Generator
	Store          *storage.FileStore
	JWTSecret      string
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]errorResponse{"error": {Code: code, Message: message}})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

// logUsage records an audit event, tagged with the caller's best-effort
// country. Failures are logged and swallowed: auditing never breaks a
// request that already succeeded.
func (a *App) logUsage(r *http.Request, sessionID any, eventType string, success bool, props json.RawMessage) {
	userID := a.currentUserID(r)
	if userID == "" {
		return
	}
	country := middleware.CountryFromContext(r.Context())
	if props == nil {
		props = json.RawMessage(`{}`)
	}
	_, err := a.SQL.Exec(r.Context(), sqlinline.QInsertUsageEvent, userID, sessionID, eventType, success, country, props)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Str("event", eventType).Msg("log usage failed")
	}
}
