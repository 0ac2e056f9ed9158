package models

// Usage is a user's storage consumption against their effective quota.
type Usage struct {
	UsedBytes           int64
	EffectiveQuotaBytes int64
}
