// Package api holds the JSON wire types exchanged between the docvault
// client and server, plus the structured error codes.
package api

import (
	"github.com/dmitrijs2005/docvault/internal/schema"
)

// Error codes carried in ErrorResponse.Code.
const (
	CodeQuotaExceeded      = "quota_exceeded"
	CodeSchemaMismatch     = "schema_mismatch"
	CodeViewUnavailable    = "view_unavailable"
	CodeDeviceLimitReached = "device_limit_reached"
	CodeInvalidRequest     = "invalid_request"
	CodeUnauthorized       = "unauthorized"
	CodeForbidden          = "forbidden"
	CodeNotFound           = "not_found"
	CodeInternal           = "internal"
)

// QuotaMessagePrefix keeps quota errors recognisable by clients that only
// look at the error text.
const QuotaMessagePrefix = "QUOTA_EXCEEDED: "

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type OKResponse struct {
	OK bool  `json:"ok"`
	ID int32 `json:"id,omitempty"`
}

// SyncPayload is the body of POST /sync-document. ID is whatever identifier
// the client holds; the server normalizes it.
type SyncPayload struct {
	ID        any    `json:"id"`
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	Number    string `json:"number"`
	FrontPath string `json:"frontPath,omitempty"`
	BackPath  string `json:"backPath,omitempty"`
	UpdatedAt int64  `json:"updatedAt"`

	Type             string `json:"type,omitempty"`
	Category         string `json:"category,omitempty"`
	Favorite         *bool  `json:"favorite,omitempty"`
	IssueDate        string `json:"issueDate,omitempty"`
	ExpiryDate       string `json:"expiryDate,omitempty"`
	IssuingState     string `json:"issuingState,omitempty"`
	IssuingCity      string `json:"issuingCity,omitempty"`
	IssuingAuthority string `json:"issuingAuthority,omitempty"`
	ElectorZone      string `json:"electorZone,omitempty"`
	ElectorSection   string `json:"electorSection,omitempty"`
	CardSubtype      string `json:"cardSubtype,omitempty"`
	Bank             string `json:"bank,omitempty"`
	CVC              string `json:"cvc,omitempty"`
	CardBrand        string `json:"cardBrand,omitempty"`
}

// Minimal keeps only the base fields every backend version understands.
func (p SyncPayload) Minimal() SyncPayload {
	return SyncPayload{
		ID:        p.ID,
		UserID:    p.UserID,
		Name:      p.Name,
		Number:    p.Number,
		FrontPath: p.FrontPath,
		BackPath:  p.BackPath,
		UpdatedAt: p.UpdatedAt,
	}
}

// Metadata returns the type-specific fields keyed by column name.
func (p SyncPayload) Metadata() map[string]string {
	return map[string]string{
		schema.ColIssueDate:        p.IssueDate,
		schema.ColExpiryDate:       p.ExpiryDate,
		schema.ColIssuingState:     p.IssuingState,
		schema.ColIssuingCity:      p.IssuingCity,
		schema.ColIssuingAuthority: p.IssuingAuthority,
		schema.ColElectorZone:      p.ElectorZone,
		schema.ColElectorSection:   p.ElectorSection,
		schema.ColCardSubtype:      p.CardSubtype,
		schema.ColCardBrand:        p.CardBrand,
		schema.ColBank:             p.Bank,
		schema.ColCVC:              p.CVC,
	}
}

type DeletePayload struct {
	ID     any    `json:"id"`
	UserID string `json:"userId"`
}

type SignedURLsRequest struct {
	UserID string  `json:"userId"`
	AppIDs []int32 `json:"appIds"`
	TTL    int64   `json:"ttl,omitempty"` // seconds
}

type MediaURLs struct {
	FrontSignedURL string `json:"frontSignedUrl"`
	BackSignedURL  string `json:"backSignedUrl"`
}

type UsageResponse struct {
	UsedBytes           int64 `json:"used_bytes"`
	EffectiveQuotaBytes int64 `json:"effective_quota_bytes"`
}

// Media sides.
const (
	SideFront = "front"
	SideBack  = "back"
)

type UploadURLRequest struct {
	UserID      string `json:"userId"`
	AppID       int32  `json:"appId"`
	Side        string `json:"side"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

type UploadURLResponse struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

type DeviceRequest struct {
	UserID   string `json:"userId"`
	DeviceID string `json:"deviceId"`
	Platform string `json:"platform"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
