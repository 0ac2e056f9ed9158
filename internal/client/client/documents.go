package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/docvault/internal/api"
	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/identity"
	"github.com/dmitrijs2005/docvault/internal/schema"
)

// FetchAll reads every remote document of userID. Media URLs are not
// resolved here; see ResolveMedia.
func (g *HTTPGateway) FetchAll(ctx context.Context, userID string) ([]models.DocumentRecord, error) {
	if !identity.IsValidUserID(userID) {
		return nil, nil
	}

	q := "?user_id=" + url.QueryEscape(userID)

	var rows []api.RemoteRow
	err := g.doJSON(ctx, http.MethodGet, "/documents/unified"+q, nil, &rows)
	if err == nil && len(rows) > 0 {
		return toRecords(rows), nil
	}

	var apiErr *APIError
	if err != nil && !errors.As(err, &apiErr) {
		return nil, fmt.Errorf("fetch unified view: %w", err)
	}
	g.log.Debug(ctx, "unified view unavailable, reading base table", "error", err)

	rows = nil
	if err := g.doJSON(ctx, http.MethodGet, "/documents"+q, nil, &rows); err != nil {
		return nil, fmt.Errorf("fetch base documents: %w", err)
	}

	g.hydrate(ctx, userID, rows)
	return toRecords(rows), nil
}

// hydrate fills type-specific fields with one request per sub-table present
// in rows. A failed sub-table request leaves those fields empty.
func (g *HTTPGateway) hydrate(ctx context.Context, userID string, rows []api.RemoteRow) {
	byTable := make(map[string][]int32)
	index := make(map[int32]int, len(rows))
	for i := range rows {
		index[rows[i].AppID] = i
		st, ok := schema.SubTableFor(schema.ParseDocType(rows[i].Type))
		if !ok {
			continue
		}
		byTable[st.Name] = append(byTable[st.Name], rows[i].AppID)
	}

	for _, st := range schema.SubTables() {
		ids := byTable[st.Name]
		if len(ids) == 0 {
			continue
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		path := fmt.Sprintf("/documents/details/%s?user_id=%s&app_ids=%s",
			st.Name, url.QueryEscape(userID), joinIDs(ids))

		var details []api.RemoteRow
		if err := g.doJSON(ctx, http.MethodGet, path, nil, &details); err != nil {
			g.log.Warn(ctx, "sub-table hydration failed", "table", st.Name, "error", err)
			continue
		}
		for _, d := range details {
			if i, ok := index[d.AppID]; ok {
				rows[i].MergeDetails(d)
			}
		}
	}
}

// Upsert pushes rec. Local media is uploaded first; media already stored
// remotely is sent as-is. A backend that rejects the full payload with
// schema_mismatch gets the minimal one.
func (g *HTTPGateway) Upsert(ctx context.Context, rec models.DocumentRecord, userID string, opts ...UpsertOption) (UpsertResult, error) {
	cfg := NewUpsertConfig(opts...)

	if !identity.IsValidUserID(userID) {
		return UpsertResult{Skipped: true}, nil
	}

	id, err := rec.JoinKey()
	if err != nil {
		return UpsertResult{}, err
	}

	res := UpsertResult{AppID: id, MediaComplete: true}
	payload := rec.SyncPayload(userID, id)

	if models.IsLocalMedia(rec.FrontMediaRef) {
		if key, err := g.UploadMedia(ctx, userID, id, api.SideFront, rec.FrontMediaRef); err != nil {
			g.log.Warn(ctx, "front media upload failed", "app_id", id, "error", err)
			res.MediaComplete = false
		} else {
			payload.FrontPath, res.FrontMediaRef = key, key
		}
	}
	if models.IsLocalMedia(rec.BackMediaRef) {
		if key, err := g.UploadMedia(ctx, userID, id, api.SideBack, rec.BackMediaRef); err != nil {
			g.log.Warn(ctx, "back media upload failed", "app_id", id, "error", err)
			res.MediaComplete = false
		} else {
			payload.BackPath, res.BackMediaRef = key, key
		}
	}

	if cfg.BeforeCommit != nil {
		cfg.BeforeCommit()
	}

	var ok api.OKResponse
	err = g.doJSON(ctx, http.MethodPost, "/sync-document", payload, &ok)
	if errors.Is(err, common.ErrSchemaMismatch) {
		g.log.Info(ctx, "backend rejected full payload, retrying minimal", "app_id", id)
		res.Minimal = true
		err = g.doJSON(ctx, http.MethodPost, "/sync-document", payload.Minimal(), &ok)
	}
	if err != nil {
		return UpsertResult{}, fmt.Errorf("sync document %d: %w", id, err)
	}

	if ok.ID > 0 {
		res.AppID = ok.ID
	}
	g.urls.Remove(cacheKey(userID, res.AppID))
	return res, nil
}

// Remove deletes a document by its app id.
func (g *HTTPGateway) Remove(ctx context.Context, appID int32, userID string) error {
	if !identity.IsValidUserID(userID) {
		return nil
	}
	if appID <= 0 {
		return common.ErrInvalidIdentity
	}

	g.urls.Remove(cacheKey(userID, appID))
	if err := g.doJSON(ctx, http.MethodDelete, "/sync-document", api.DeletePayload{ID: appID, UserID: userID}, nil); err != nil {
		return fmt.Errorf("delete document %d: %w", appID, err)
	}
	return nil
}

func toRecords(rows []api.RemoteRow) []models.DocumentRecord {
	out := make([]models.DocumentRecord, 0, len(rows))
	for _, r := range rows {
		if r.AppID <= 0 {
			continue
		}
		out = append(out, models.FromRemoteRow(r))
	}
	return out
}

func joinIDs(ids []int32) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(int64(id), 10)
	}
	return strings.Join(parts, ",")
}
