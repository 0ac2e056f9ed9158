package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/docvault/internal/api"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/identity"
	"github.com/dmitrijs2005/docvault/internal/logging"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 * common.MiB

type DocumentService interface {
	Sync(ctx context.Context, p api.SyncPayload) (int32, error)
	Delete(ctx context.Context, userID string, id any) error
	ListUnified(ctx context.Context, userID string) ([]models.Document, error)
	ListBase(ctx context.Context, userID string) ([]models.Document, error)
	ListDetails(ctx context.Context, userID, table string, appIDs []int32) ([]models.Document, error)
}

type MediaService interface {
	SignedURLs(ctx context.Context, userID string, appIDs []int32, ttl time.Duration) (map[int32]api.MediaURLs, error)
	SignedURL(ctx context.Context, userID string, appID int32, ttl time.Duration) (api.MediaURLs, error)
	UploadURL(ctx context.Context, req api.UploadURLRequest) (api.UploadURLResponse, error)
}

type UsageService interface {
	GetUsage(ctx context.Context, userID string) (models.Usage, error)
}

type DeviceService interface {
	Register(ctx context.Context, userID, deviceID, platform string) error
}

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	documents DocumentService
	media     MediaService
	usage     UsageService
	devices   DeviceService
	db        Pinger
	logger    logging.Logger
}

func NewHandler(documents DocumentService, media MediaService, usage UsageService,
	devices DeviceService, db Pinger, logger logging.Logger) *Handler {
	return &Handler{
		documents: documents,
		media:     media,
		usage:     usage,
		devices:   devices,
		db:        db,
		logger:    logger,
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidRequest, err)
	}
	return nil
}

// userParam reads and validates the owning user from the query string.
func userParam(r *http.Request, name string) (string, error) {
	userID := r.URL.Query().Get(name)
	if !identity.IsValidUserID(userID) {
		return "", common.ErrInvalidUserID
	}
	if err := authorize(r, userID); err != nil {
		return "", err
	}
	return userID, nil
}

// checkUser validates a user id taken from a request body.
func checkUser(r *http.Request, userID string) error {
	if !identity.IsValidUserID(userID) {
		return common.ErrInvalidUserID
	}
	return authorize(r, userID)
}

func parseAppIDs(raw string) ([]int32, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int32, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: bad app id %q", common.ErrInvalidRequest, p)
		}
		ids = append(ids, int32(v))
	}
	return ids, nil
}

func rows(docs []models.Document) []api.RemoteRow {
	out := make([]api.RemoteRow, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Row())
	}
	return out
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if status, _ := errorStatus(err); status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, err)
}

func (h *Handler) SyncDocument(w http.ResponseWriter, r *http.Request) {
	var p api.SyncPayload
	if err := decodeJSON(w, r, &p); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := checkUser(r, p.UserID); err != nil {
		h.fail(w, r, err)
		return
	}

	appID, err := h.documents.Sync(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.OKResponse{OK: true, ID: appID})
}

func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	var p api.DeletePayload
	if err := decodeJSON(w, r, &p); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := checkUser(r, p.UserID); err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.documents.Delete(r.Context(), p.UserID, p.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.OKResponse{OK: true})
}

func (h *Handler) SignedURLs(w http.ResponseWriter, r *http.Request) {
	var req api.SignedURLsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := checkUser(r, req.UserID); err != nil {
		h.fail(w, r, err)
		return
	}

	urls, err := h.media.SignedURLs(r.Context(), req.UserID, req.AppIDs, time.Duration(req.TTL)*time.Second)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	out := make(map[string]api.MediaURLs, len(urls))
	for id, u := range urls {
		out[strconv.FormatInt(int64(id), 10)] = u
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) SignedURL(w http.ResponseWriter, r *http.Request) {
	userID, err := userParam(r, "userId")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	q := r.URL.Query()
	appID, err := strconv.ParseInt(q.Get("appId"), 10, 32)
	if err != nil {
		h.fail(w, r, fmt.Errorf("%w: bad appId", common.ErrInvalidRequest))
		return
	}

	var ttl time.Duration
	if raw := q.Get("ttl"); raw != "" {
		secs, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || secs < 0 {
			h.fail(w, r, fmt.Errorf("%w: bad ttl", common.ErrInvalidRequest))
			return
		}
		ttl = time.Duration(secs) * time.Second
	}

	urls, err := h.media.SignedURL(r.Context(), userID, int32(appID), ttl)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, urls)
}

func (h *Handler) UploadURL(w http.ResponseWriter, r *http.Request) {
	var req api.UploadURLRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := checkUser(r, req.UserID); err != nil {
		h.fail(w, r, err)
		return
	}

	resp, err := h.media.UploadURL(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	userID, err := userParam(r, "user_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.usage.GetUsage(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.UsageResponse{
		UsedBytes:           u.UsedBytes,
		EffectiveQuotaBytes: u.EffectiveQuotaBytes,
	})
}

func (h *Handler) ListUnified(w http.ResponseWriter, r *http.Request) {
	userID, err := userParam(r, "user_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	docs, err := h.documents.ListUnified(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows(docs))
}

func (h *Handler) ListBase(w http.ResponseWriter, r *http.Request) {
	userID, err := userParam(r, "user_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	docs, err := h.documents.ListBase(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows(docs))
}

func (h *Handler) ListDetails(w http.ResponseWriter, r *http.Request) {
	userID, err := userParam(r, "user_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ids, err := parseAppIDs(r.URL.Query().Get("app_ids"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	docs, err := h.documents.ListDetails(r.Context(), userID, chi.URLParam(r, "table"), ids)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows(docs))
}

func (h *Handler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req api.DeviceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := checkUser(r, req.UserID); err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.devices.Register(r.Context(), req.UserID, req.DeviceID, req.Platform); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.OKResponse{OK: true})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn(r.Context(), "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, api.HealthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}
