package client

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/dmitrijs2005/docvault/internal/api"
	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/filex"
	"github.com/dmitrijs2005/docvault/internal/identity"
	"github.com/dmitrijs2005/docvault/internal/netx"
	"golang.org/x/sync/errgroup"
)

// SignedURLs resolves media URLs for several documents in one request.
func (g *HTTPGateway) SignedURLs(ctx context.Context, userID string, appIDs []int32) (map[int32]api.MediaURLs, error) {
	req := api.SignedURLsRequest{UserID: userID, AppIDs: appIDs, TTL: int64(g.urlTTL.Seconds())}

	var raw map[string]api.MediaURLs
	if err := g.doJSON(ctx, http.MethodPost, "/signed-urls", req, &raw); err != nil {
		return nil, fmt.Errorf("batch signed urls: %w", err)
	}

	out := make(map[int32]api.MediaURLs, len(raw))
	for k, v := range raw {
		id, err := strconv.ParseInt(k, 10, 32)
		if err != nil {
			continue
		}
		out[int32(id)] = v
	}
	return out, nil
}

// SignedURL resolves media URLs for a single document.
func (g *HTTPGateway) SignedURL(ctx context.Context, userID string, appID int32) (api.MediaURLs, error) {
	path := fmt.Sprintf("/signed-urls?userId=%s&appId=%d&ttl=%d",
		url.QueryEscape(userID), appID, int64(g.urlTTL.Seconds()))

	var urls api.MediaURLs
	if err := g.doJSON(ctx, http.MethodGet, path, nil, &urls); err != nil {
		return api.MediaURLs{}, fmt.Errorf("signed url %d: %w", appID, err)
	}
	return urls, nil
}

// ResolveMedia fills FrontURL/BackURL. It tries the batch endpoint, then
// falls back to parallel single lookups; a failed lookup leaves that
// document without URLs. Local media resolves to its own path.
func (g *HTTPGateway) ResolveMedia(ctx context.Context, userID string, recs []models.DocumentRecord) []models.DocumentRecord {
	out := make([]models.DocumentRecord, len(recs))
	copy(out, recs)

	for i := range out {
		if models.IsLocalMedia(out[i].FrontMediaRef) {
			out[i].FrontURL = out[i].FrontMediaRef
		}
		if models.IsLocalMedia(out[i].BackMediaRef) {
			out[i].BackURL = out[i].BackMediaRef
		}
	}
	if !identity.IsValidUserID(userID) {
		return out
	}

	resolved := make(map[int32]api.MediaURLs)
	var missing []int32
	seen := make(map[int32]bool)
	for _, r := range out {
		if r.AppID <= 0 || seen[r.AppID] || !hasRemoteMedia(r) {
			continue
		}
		seen[r.AppID] = true
		if urls, ok := g.urls.Get(cacheKey(userID, r.AppID)); ok {
			resolved[r.AppID] = urls
			continue
		}
		missing = append(missing, r.AppID)
	}

	if len(missing) > 0 {
		fetched, err := g.SignedURLs(ctx, userID, missing)
		if err != nil {
			g.log.Warn(ctx, "batch signed urls failed, falling back to single lookups", "count", len(missing), "error", err)
			fetched = g.signedURLsOneByOne(ctx, userID, missing)
		}
		for id, urls := range fetched {
			resolved[id] = urls
			g.urls.Add(cacheKey(userID, id), urls)
		}
	}

	for i := range out {
		urls, ok := resolved[out[i].AppID]
		if !ok {
			continue
		}
		if !models.IsLocalMedia(out[i].FrontMediaRef) {
			out[i].FrontURL = urls.FrontSignedURL
		}
		if !models.IsLocalMedia(out[i].BackMediaRef) {
			out[i].BackURL = urls.BackSignedURL
		}
	}
	return out
}

func (g *HTTPGateway) signedURLsOneByOne(ctx context.Context, userID string, ids []int32) map[int32]api.MediaURLs {
	results := make([]api.MediaURLs, len(ids))
	ok := make([]bool, len(ids))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.fanout)
	for i, id := range ids {
		eg.Go(func() error {
			urls, err := g.SignedURL(egCtx, userID, id)
			if err != nil {
				g.log.Warn(egCtx, "signed url lookup failed", "app_id", id, "error", err)
				return nil
			}
			results[i], ok[i] = urls, true
			return nil
		})
	}
	_ = eg.Wait()

	out := make(map[int32]api.MediaURLs, len(ids))
	for i, id := range ids {
		if ok[i] {
			out[id] = results[i]
		}
	}
	return out
}

// UploadMedia sends a local file to object storage through a presigned PUT
// URL and returns the remote storage key.
func (g *HTTPGateway) UploadMedia(ctx context.Context, userID string, appID int32, side, ref string) (string, error) {
	data, err := filex.ReadMedia(ref)
	if err != nil {
		return "", err
	}

	contentType := mime.TypeByExtension(filepath.Ext(filex.LocalPath(ref)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	req := api.UploadURLRequest{UserID: userID, AppID: appID, Side: side, ContentType: contentType, Size: int64(len(data))}
	var target api.UploadURLResponse
	if err := g.doJSON(ctx, http.MethodPost, "/media/upload-url", req, &target); err != nil {
		return "", fmt.Errorf("request upload url: %w", err)
	}

	uctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	if err := netx.UploadToPresignedURL(uctx, g.httpClient, target.URL, data, contentType); err != nil {
		return "", err
	}
	return target.Path, nil
}

func hasRemoteMedia(r models.DocumentRecord) bool {
	return (r.FrontMediaRef != "" && !models.IsLocalMedia(r.FrontMediaRef)) ||
		(r.BackMediaRef != "" && !models.IsLocalMedia(r.BackMediaRef))
}

func cacheKey(userID string, appID int32) string {
	return userID + ":" + strconv.FormatInt(int64(appID), 10)
}
