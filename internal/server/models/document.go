// Package models defines server-side data models persisted in the database.
package models

import (
	"github.com/dmitrijs2005/docvault/internal/api"
	"github.com/dmitrijs2005/docvault/internal/schema"
)

// Document is one row of the documents table plus the type-specific fields
// stored in its sub-table.
type Document struct {
	UserID    string
	AppID     int32
	Name      string
	Number    string
	Type      string
	Category  string
	FrontPath string
	BackPath  string
	// Favorite is nil when the writer did not send it; updates keep the
	// stored value then.
	Favorite  *bool
	UpdatedAt int64

	// Details holds metadata keyed by column name (schema.Col*).
	Details map[string]string
}

// DocType parses the stored type.
func (d Document) DocType() schema.DocType {
	return schema.ParseDocType(d.Type)
}

// HasMedia reports whether the document references any stored object.
func (d Document) HasMedia() bool {
	return d.FrontPath != "" || d.BackPath != ""
}

// Row renders the document as served by the read endpoints.
func (d Document) Row() api.RemoteRow {
	row := api.RemoteRow{
		AppID:     d.AppID,
		UserID:    d.UserID,
		Name:      d.Name,
		Number:    d.Number,
		Type:      d.Type,
		Category:  d.Category,
		FrontPath: d.FrontPath,
		BackPath:  d.BackPath,
		UpdatedAt: d.UpdatedAt,
	}
	if d.Favorite != nil {
		row.Favorite = *d.Favorite
	}
	for col, v := range d.Details {
		if f := row.Field(col); f != nil {
			*f = v
		}
	}
	return row
}

// DocumentFromPayload builds the document a sync request asks to store.
// Metadata columns that do not belong to the payload's type are dropped.
func DocumentFromPayload(p api.SyncPayload, userID string, appID int32) Document {
	doc := Document{
		UserID:    userID,
		AppID:     appID,
		Name:      p.Name,
		Number:    p.Number,
		Type:      p.Type,
		Category:  p.Category,
		FrontPath: p.FrontPath,
		BackPath:  p.BackPath,
		Favorite:  p.Favorite,
		UpdatedAt: p.UpdatedAt,
	}
	if t := doc.DocType(); t != "" {
		doc.Type = string(t)
		if doc.Category == "" {
			doc.Category = string(schema.DefaultCategory(t))
		}
	}

	meta := p.Metadata()
	cols := schema.FieldsFor(doc.DocType())
	if len(cols) > 0 {
		doc.Details = make(map[string]string, len(cols))
		for _, col := range cols {
			doc.Details[col] = meta[col]
		}
	}
	return doc
}
