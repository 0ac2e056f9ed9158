package api

import "github.com/dmitrijs2005/docvault/internal/schema"

// RemoteRow is one document row as served by the read endpoints. Rows from
// the unified view carry every field; base rows carry no metadata; detail
// rows carry app_id plus their table's columns.
type RemoteRow struct {
	AppID     int32  `json:"app_id"`
	UserID    string `json:"user_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Number    string `json:"number,omitempty"`
	Type      string `json:"type,omitempty"`
	Category  string `json:"category,omitempty"`
	FrontPath string `json:"front_path,omitempty"`
	BackPath  string `json:"back_path,omitempty"`
	Favorite  bool   `json:"favorite,omitempty"`
	UpdatedAt int64  `json:"updated_at,omitempty"`

	IssueDate        string `json:"issue_date,omitempty"`
	ExpiryDate       string `json:"expiry_date,omitempty"`
	IssuingState     string `json:"issuing_state,omitempty"`
	IssuingCity      string `json:"issuing_city,omitempty"`
	IssuingAuthority string `json:"issuing_authority,omitempty"`
	ElectorZone      string `json:"elector_zone,omitempty"`
	ElectorSection   string `json:"elector_section,omitempty"`
	CardSubtype      string `json:"card_subtype,omitempty"`
	CardBrand        string `json:"card_brand,omitempty"`
	Bank             string `json:"bank,omitempty"`
	CVC              string `json:"cvc,omitempty"`
}

// Field returns a pointer to the metadata field stored under column col,
// or nil for unknown columns.
func (r *RemoteRow) Field(col string) *string {
	switch col {
	case schema.ColIssueDate:
		return &r.IssueDate
	case schema.ColExpiryDate:
		return &r.ExpiryDate
	case schema.ColIssuingState:
		return &r.IssuingState
	case schema.ColIssuingCity:
		return &r.IssuingCity
	case schema.ColIssuingAuthority:
		return &r.IssuingAuthority
	case schema.ColElectorZone:
		return &r.ElectorZone
	case schema.ColElectorSection:
		return &r.ElectorSection
	case schema.ColCardSubtype:
		return &r.CardSubtype
	case schema.ColCardBrand:
		return &r.CardBrand
	case schema.ColBank:
		return &r.Bank
	case schema.ColCVC:
		return &r.CVC
	}
	return nil
}

// MergeDetails copies the non-empty metadata fields of detail into r.
func (r *RemoteRow) MergeDetails(detail RemoteRow) {
	for _, col := range schema.MetadataColumns {
		if v := *detail.Field(col); v != "" {
			*r.Field(col) = v
		}
	}
}
