package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"time"

	"server/internal/domain"
	"server/internal/domain/jsoncfg"
	"server/internal/sqlinline"
	ziputil "server/pkg/zip"

	"github.com/go-chi/chi/v5"
)

type imageEnqueueRequest struct {
	Prompt      string `json:"prompt"`
	Style       string `json:"style"`
	Quantity    int    `json:"quantity"`
	AspectRatio string `json:"aspect_ratio"`
	Provider    string `json:"provider"`
}

// ImagesEnqueue queues an asynchronous image job for a session. The worker
// picks it up; clients poll the job endpoint for status and assets.
func (a *App) ImagesEnqueue(w http.ResponseWriter, r *http.Request) {
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
		a.error(w, http.StatusConflict, "invalid_transition", "cannot generate images for an archived session")
		return
	}
	var req imageEnqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	var brief jsoncfg.ContentBrief
	if len(session.BriefJSON) > 0 {
		_ = json.Unmarshal(session.BriefJSON, &brief)
	}
	if req.Prompt == "" {
		req.Prompt = brief.Idea
	}
	if req.Prompt == "" {
		req.Prompt = session.Idea
	}
	if req.Style == "" {
		req.Style = brief.Image.Style
	}
	if req.Quantity <= 0 {
		req.Quantity = brief.Image.Quantity
	}
	if req.Quantity <= 0 {
		req.Quantity = jsoncfg.DefaultImageQuantity
	}
	if req.Quantity > jsoncfg.MaxImageQuantity {
		req.Quantity = jsoncfg.MaxImageQuantity
	}
	if req.AspectRatio == "" {
		req.AspectRatio = brief.Image.AspectRatio
	}
	if req.AspectRatio == "" {
		req.AspectRatio = jsoncfg.DefaultImageAspectRatio
	}
	provider := req.Provider
	if provider == "" {
		provider = a.Config.ImageProvider
	}
	if _, ok := a.ImageProviders[provider]; !ok {
		a.error(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("unknown image provider %q", provider))
		return
	}

	prompt := req.Prompt
	if req.Style != "" {
		prompt = prompt + "\nstyle: " + req.Style
	}
	var jobID string
	row := a.SQL.QueryRow(r.Context(), sqlinline.QEnqueueImageJob,
		sessionID, userID, prompt, req.Quantity, req.AspectRatio, provider)
	if err := row.Scan(&jobID); err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to enqueue image job")
		return
	}
	a.logUsage(r, sessionID, "IMAGE_ENQUEUE", true, jsoncfg.MustMarshal(map[string]string{"provider": provider}))
	a.json(w, http.StatusAccepted, map[string]any{
		"job_id":       jobID,
		"session_id":   sessionID,
		"status":       "QUEUED",
		"provider":     provider,
		"quantity":     req.Quantity,
		"aspect_ratio": req.AspectRatio,
	})
}

func (a *App) ImagesJobGet(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	jobID := chi.URLParam(r, "jobID")
	row := a.SQL.QueryRow(r.Context(), sqlinline.QSelectImageJob, jobID, userID)
	var id, jobUserID, sessionID, status, provider, aspectRatio string
	var quantity int
	var createdAt, updatedAt time.Time
	var properties json.RawMessage
	if err := row.Scan(&id, &jobUserID, &sessionID, &status, &provider, &quantity, &aspectRatio, &createdAt, &updatedAt, &properties); err != nil {
		a.error(w, http.StatusNotFound, "not_found", "image job not found")
		return
	}
	assets, err := a.loadJobAssets(r, jobID, userID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load assets")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"job_id":       id,
		"session_id":   sessionID,
		"status":       status,
		"provider":     provider,
		"quantity":     quantity,
		"aspect_ratio": aspectRatio,
		"created_at":   createdAt,
		"updated_at":   updatedAt,
		"assets":       assets,
	})
}

type jobAsset struct {
	ID          string          `json:"id"`
	StorageKey  string          `json:"storage_key"`
	MIME        string          `json:"mime"`
	Bytes       int64           `json:"bytes"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	AspectRatio string          `json:"aspect_ratio"`
	Properties  json.RawMessage `json:"properties"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (a *App) loadJobAssets(r *http.Request, jobID, userID string) ([]jobAsset, error) {
	rows, err := a.SQL.Query(r.Context(), sqlinline.QSelectJobAssets, jobID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	assets := []jobAsset{}
	for rows.Next() {
		var asset jobAsset
		if err := rows.Scan(&asset.ID, &asset.StorageKey, &asset.MIME, &asset.Bytes, &asset.Width, &asset.Height, &asset.AspectRatio, &asset.Properties, &asset.CreatedAt); err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

// ImagesJobDownload streams every asset of a finished job as one zip.
func (a *App) ImagesJobDownload(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	jobID := chi.URLParam(r, "jobID")
	assets, err := a.loadJobAssets(r, jobID, userID)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load assets")
		return
	}
	if len(assets) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "no assets for this job")
		return
	}
	var entries []ziputil.Asset
	for _, asset := range assets {
		data, err := a.Store.Read(r.Context(), asset.StorageKey)
		if err != nil {
			a.Logger.Error().Err(err).Str("asset", asset.ID).Msg("read asset failed")
			continue
		}
		entries = append(entries, ziputil.Asset{
			Filename: path.Base(asset.StorageKey),
			MIME:     asset.MIME,
			Data:     data,
		})
	}
	if len(entries) == 0 {
		a.error(w, http.StatusInternalServerError, "internal", "assets unavailable")
		return
	}
	archive := ziputil.ArchiveAssets(entries)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "images-"+jobID+".zip"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}
