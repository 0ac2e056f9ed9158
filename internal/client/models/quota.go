package models

// Severity drives the storage warning banner.
type Severity string

const (
	SeverityOK      Severity = "ok"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// QuotaSnapshot is computed on demand and never persisted.
type QuotaSnapshot struct {
	UsedBytes           int64
	EffectiveQuotaBytes int64
}

// Remaining is max(0, effective - used).
func (q QuotaSnapshot) Remaining() int64 {
	r := q.EffectiveQuotaBytes - q.UsedBytes
	if r < 0 {
		return 0
	}
	return r
}

// Severity is danger at or below dangerThreshold remaining bytes, warning
// below half of the effective quota, ok otherwise.
func (q QuotaSnapshot) Severity(dangerThreshold int64) Severity {
	remaining := q.Remaining()
	switch {
	case remaining <= dangerThreshold:
		return SeverityDanger
	case remaining < q.EffectiveQuotaBytes/2:
		return SeverityWarning
	default:
		return SeverityOK
	}
}
