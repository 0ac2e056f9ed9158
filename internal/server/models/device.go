package models

import "time"

// Device is a client installation registered for a user.
type Device struct {
	UserID   string
	DeviceID string
	Platform string
	LastSeen time.Time
}
