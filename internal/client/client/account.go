package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/docvault/internal/api"
	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/identity"
)

// Usage returns the storage usage snapshot. Negative values from the
// backend are clamped to zero.
func (g *HTTPGateway) Usage(ctx context.Context, userID string) (models.QuotaSnapshot, error) {
	if !identity.IsValidUserID(userID) {
		return models.QuotaSnapshot{}, nil
	}

	var resp api.UsageResponse
	if err := g.doJSON(ctx, http.MethodGet, "/usage?user_id="+url.QueryEscape(userID), nil, &resp); err != nil {
		return models.QuotaSnapshot{}, fmt.Errorf("usage: %w", err)
	}

	return models.QuotaSnapshot{
		UsedBytes:           max(resp.UsedBytes, 0),
		EffectiveQuotaBytes: max(resp.EffectiveQuotaBytes, 0),
	}, nil
}

// RegisterDevice announces this device. It fails with an error matching
// common.ErrDeviceLimitReached when the account has no free device slot.
func (g *HTTPGateway) RegisterDevice(ctx context.Context, userID, deviceID, platform string) error {
	if !identity.IsValidUserID(userID) {
		return nil
	}

	req := api.DeviceRequest{UserID: userID, DeviceID: deviceID, Platform: platform}
	if err := g.doJSON(ctx, http.MethodPost, "/devices", req, nil); err != nil {
		return fmt.Errorf("register device: %w", err)
	}
	return nil
}
