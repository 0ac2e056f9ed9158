package models

import (
	"errors"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/docvault/internal/schema"
)

var ErrIncorrectAssignment = errors.New("patch item must be field=value")

// DocumentPatch is a partial update; nil fields are left untouched.
type DocumentPatch struct {
	Name          *string
	Number        *string
	Type          *schema.DocType
	Category      *schema.Category
	FrontMediaRef *string
	BackMediaRef  *string
	Favorite      *bool

	// Metadata maps column name (schema.Col*) to its new value.
	Metadata map[string]string
}

// IsEmpty reports whether the patch changes nothing but the timestamp.
func (p DocumentPatch) IsEmpty() bool {
	return p.Name == nil && p.Number == nil && p.Type == nil && p.Category == nil &&
		p.FrontMediaRef == nil && p.BackMediaRef == nil && p.Favorite == nil && len(p.Metadata) == 0
}

// Apply writes the patch onto rec. Timestamps and the synced flag are the
// store's business.
func (p DocumentPatch) Apply(rec *DocumentRecord) {
	if p.Name != nil {
		rec.Name = *p.Name
	}
	if p.Number != nil {
		rec.Number = *p.Number
	}
	if p.Type != nil {
		rec.Type = *p.Type
	}
	if p.Category != nil {
		rec.Category = *p.Category
	}
	if p.FrontMediaRef != nil {
		rec.FrontMediaRef = *p.FrontMediaRef
	}
	if p.BackMediaRef != nil {
		rec.BackMediaRef = *p.BackMediaRef
	}
	if p.Favorite != nil {
		rec.Favorite = *p.Favorite
	}
	for col, v := range p.Metadata {
		if f := rec.Field(col); f != nil {
			*f = v
		}
	}
}

// PatchFromAssignments parses CLI style "field=value" items.
// Recognised fields: name, number, type, category, front, back, favorite
// and every metadata column (issue_date, bank, ...).
func PatchFromAssignments(items []string) (DocumentPatch, error) {
	var p DocumentPatch
	for _, item := range items {
		key, value, ok := strings.Cut(item, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if !ok || key == "" {
			return DocumentPatch{}, ErrIncorrectAssignment
		}

		switch key {
		case "name":
			p.Name = &value
		case "number":
			p.Number = &value
		case "type":
			t := schema.ParseDocType(value)
			p.Type = &t
		case "category":
			c := schema.ParseCategory(value)
			p.Category = &c
		case "front":
			p.FrontMediaRef = &value
		case "back":
			p.BackMediaRef = &value
		case "favorite", "fav":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return DocumentPatch{}, ErrIncorrectAssignment
			}
			p.Favorite = &b
		default:
			if (&DocumentRecord{}).Field(key) == nil {
				return DocumentPatch{}, ErrIncorrectAssignment
			}
			if p.Metadata == nil {
				p.Metadata = map[string]string{}
			}
			p.Metadata[key] = value
		}
	}
	return p, nil
}
