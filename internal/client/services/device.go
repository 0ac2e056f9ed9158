package services

import (
	"context"
	"runtime"

	"github.com/dmitrijs2005/docvault/internal/client/client"
	"github.com/dmitrijs2005/docvault/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/docvault/internal/identity"
)

// RegisterDevice announces this installation under its persisted device id.
// configuredID, when set, overrides the stored one.
func RegisterDevice(ctx context.Context, gateway client.Gateway, meta metadata.Repository, userID, configuredID string) (string, error) {
	deviceID := configuredID
	if deviceID == "" {
		var err error
		deviceID, err = metadata.EnsureDeviceID(ctx, meta)
		if err != nil {
			return "", err
		}
	}
	if !identity.IsValidUserID(userID) {
		return deviceID, nil
	}
	if err := gateway.RegisterDevice(ctx, userID, deviceID, runtime.GOOS); err != nil {
		return deviceID, err
	}
	return deviceID, nil
}
