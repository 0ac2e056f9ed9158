// Package models defines client-side data models used by the docvault CLI
// and its sync engine.
package models

import (
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/docvault/internal/api"
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/identity"
	"github.com/dmitrijs2005/docvault/internal/schema"
)

// DocumentRecord is the canonical document entity. String fields are never
// nil; an empty string means "absent".
type DocumentRecord struct {
	// LocalID is the local autoincrement id; 0 when not persisted locally.
	LocalID int64
	// AppID is the cross-device id; 0 until the document was synced once.
	AppID int32

	Name     string
	Number   string
	Type     schema.DocType
	Category schema.Category

	// FrontMediaRef and BackMediaRef hold a local file path until uploaded,
	// then the remote storage key.
	FrontMediaRef string
	BackMediaRef  string

	// FrontURL and BackURL are resolved signed URLs; never persisted.
	FrontURL string
	BackURL  string

	IssueDate        string
	ExpiryDate       string
	IssuingState     string
	IssuingCity      string
	IssuingAuthority string
	ElectorZone      string
	ElectorSection   string
	CardSubtype      string
	CardBrand        string
	Bank             string
	CVC              string

	Favorite bool
	// Synced is true once the local field state matches the last
	// successful remote write.
	Synced bool
	// UpdatedAt is epoch millis, bumped on every mutation.
	UpdatedAt int64
}

// JoinKey returns the stable cross-device key: AppID once synced, otherwise
// the normalized first non-empty of Number, Name, LocalID.
func (d DocumentRecord) JoinKey() (int32, error) {
	switch {
	case d.AppID > 0:
		return d.AppID, nil
	case d.Number != "":
		return identity.Normalize(d.Number), nil
	case d.Name != "":
		return identity.Normalize(d.Name), nil
	case d.LocalID > 0:
		return identity.Normalize(d.LocalID), nil
	}
	return 0, common.ErrInvalidIdentity
}

// NaiveKey is the normalized AppID, or LocalID for never-synced records.
// Zero means the record has neither.
func (d DocumentRecord) NaiveKey() int32 {
	if d.AppID > 0 {
		return identity.Normalize(d.AppID)
	}
	if d.LocalID > 0 {
		return identity.Normalize(d.LocalID)
	}
	return 0
}

// Field returns a pointer to the metadata field stored under col, or nil.
func (d *DocumentRecord) Field(col string) *string {
	switch col {
	case schema.ColIssueDate:
		return &d.IssueDate
	case schema.ColExpiryDate:
		return &d.ExpiryDate
	case schema.ColIssuingState:
		return &d.IssuingState
	case schema.ColIssuingCity:
		return &d.IssuingCity
	case schema.ColIssuingAuthority:
		return &d.IssuingAuthority
	case schema.ColElectorZone:
		return &d.ElectorZone
	case schema.ColElectorSection:
		return &d.ElectorSection
	case schema.ColCardSubtype:
		return &d.CardSubtype
	case schema.ColCardBrand:
		return &d.CardBrand
	case schema.ColBank:
		return &d.Bank
	case schema.ColCVC:
		return &d.CVC
	}
	return nil
}

// EffectiveCategory falls back to the type's default category.
func (d DocumentRecord) EffectiveCategory() schema.Category {
	if d.Category != "" {
		return d.Category
	}
	return schema.DefaultCategory(d.Type)
}

// HasLocalMedia reports whether any side still points to a local file.
func (d DocumentRecord) HasLocalMedia() bool {
	return IsLocalMedia(d.FrontMediaRef) || IsLocalMedia(d.BackMediaRef)
}

// IsLocalMedia reports whether ref is a local file rather than a remote
// storage key.
func IsLocalMedia(ref string) bool {
	if ref == "" {
		return false
	}
	return strings.HasPrefix(ref, "file://") || filepath.IsAbs(ref)
}

// FromRemoteRow converts a backend row into a synced record.
func FromRemoteRow(r api.RemoteRow) DocumentRecord {
	return DocumentRecord{
		AppID:            r.AppID,
		Name:             r.Name,
		Number:           r.Number,
		Type:             schema.ParseDocType(r.Type),
		Category:         schema.ParseCategory(r.Category),
		FrontMediaRef:    r.FrontPath,
		BackMediaRef:     r.BackPath,
		IssueDate:        r.IssueDate,
		ExpiryDate:       r.ExpiryDate,
		IssuingState:     r.IssuingState,
		IssuingCity:      r.IssuingCity,
		IssuingAuthority: r.IssuingAuthority,
		ElectorZone:      r.ElectorZone,
		ElectorSection:   r.ElectorSection,
		CardSubtype:      r.CardSubtype,
		CardBrand:        r.CardBrand,
		Bank:             r.Bank,
		CVC:              r.CVC,
		Favorite:         r.Favorite,
		Synced:           true,
		UpdatedAt:        r.UpdatedAt,
	}
}

// SyncPayload builds the full upsert body for this record. Local media refs
// are left out; callers upload them first and pass the remote keys in.
func (d DocumentRecord) SyncPayload(userID string, id int32) api.SyncPayload {
	fav := d.Favorite
	p := api.SyncPayload{
		ID:               id,
		UserID:           userID,
		Name:             d.Name,
		Number:           d.Number,
		UpdatedAt:        d.UpdatedAt,
		Type:             string(d.Type),
		Category:         string(d.EffectiveCategory()),
		Favorite:         &fav,
		IssueDate:        d.IssueDate,
		ExpiryDate:       d.ExpiryDate,
		IssuingState:     d.IssuingState,
		IssuingCity:      d.IssuingCity,
		IssuingAuthority: d.IssuingAuthority,
		ElectorZone:      d.ElectorZone,
		ElectorSection:   d.ElectorSection,
		CardSubtype:      d.CardSubtype,
		Bank:             d.Bank,
		CVC:              d.CVC,
		CardBrand:        d.CardBrand,
	}
	if !IsLocalMedia(d.FrontMediaRef) {
		p.FrontPath = d.FrontMediaRef
	}
	if !IsLocalMedia(d.BackMediaRef) {
		p.BackPath = d.BackMediaRef
	}
	return p
}
