// Package schema describes document types, their categories and the
// backend sub-tables holding type-specific fields. Client and server share
// it so both agree on which columns belong to which document type.
package schema

import "strings"

type DocType string

const (
	TypeRG              DocType = "RG"
	TypeCNH             DocType = "CNH"
	TypeCPF             DocType = "CPF"
	TypePassport        DocType = "PASSPORT"
	TypeProofOfAddress  DocType = "PROOF_OF_ADDRESS"
	TypeVehicleDocument DocType = "VEHICLE_DOCUMENT"
	TypeCard            DocType = "CARD"
	TypeCertificate     DocType = "CERTIFICATE"
	TypeVoterID         DocType = "VOTER_ID"
	TypeOther           DocType = "OTHER"
)

// DocTypes lists every known document type.
var DocTypes = []DocType{
	TypeRG, TypeCNH, TypeCPF, TypePassport, TypeProofOfAddress,
	TypeVehicleDocument, TypeCard, TypeCertificate, TypeVoterID, TypeOther,
}

// ParseDocType is case-insensitive; "" stays empty and unknown values map
// to TypeOther.
func ParseDocType(s string) DocType {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	norm := strings.ToUpper(strings.NewReplacer("-", "_", " ", "_").Replace(s))
	for _, t := range DocTypes {
		if string(t) == norm {
			return t
		}
	}
	switch norm {
	case "VOTER", "TITULO_ELEITOR", "ELECTORAL_TITLE":
		return TypeVoterID
	case "VEHICLE", "CRLV":
		return TypeVehicleDocument
	}
	return TypeOther
}

type Category string

const (
	CategoryPersonal  Category = "PERSONAL"
	CategoryFinancial Category = "FINANCIAL"
	CategoryHealth    Category = "HEALTH"
	CategoryTransport Category = "TRANSPORT"
	CategoryWork      Category = "WORK"
	CategoryStudy     Category = "STUDY"
)

var Categories = []Category{
	CategoryPersonal, CategoryFinancial, CategoryHealth,
	CategoryTransport, CategoryWork, CategoryStudy,
}

// ParseCategory returns "" for unknown input so callers can derive one.
func ParseCategory(s string) Category {
	norm := strings.ToUpper(strings.TrimSpace(s))
	for _, c := range Categories {
		if string(c) == norm {
			return c
		}
	}
	return ""
}

// DefaultCategory is used when the user did not pick a category.
func DefaultCategory(t DocType) Category {
	switch t {
	case TypeCard:
		return CategoryFinancial
	case TypeCNH, TypeVehicleDocument:
		return CategoryTransport
	case TypeCertificate:
		return CategoryStudy
	default:
		return CategoryPersonal
	}
}

// Metadata column names. They double as JSON keys of RemoteRow.
const (
	ColIssueDate        = "issue_date"
	ColExpiryDate       = "expiry_date"
	ColIssuingState     = "issuing_state"
	ColIssuingCity      = "issuing_city"
	ColIssuingAuthority = "issuing_authority"
	ColElectorZone      = "elector_zone"
	ColElectorSection   = "elector_section"
	ColCardSubtype      = "card_subtype"
	ColCardBrand        = "card_brand"
	ColBank             = "bank"
	ColCVC              = "cvc"
)

// MetadataColumns lists every type-specific column.
var MetadataColumns = []string{
	ColIssueDate, ColExpiryDate, ColIssuingState, ColIssuingCity, ColIssuingAuthority,
	ColElectorZone, ColElectorSection, ColCardSubtype, ColCardBrand, ColBank, ColCVC,
}

// SubTable is a backend table keyed by (user_id, app_id) that stores the
// fields specific to one document type.
type SubTable struct {
	Name    string
	Type    DocType
	Columns []string
}

var subTables = []SubTable{
	{Name: "rg_details", Type: TypeRG, Columns: []string{ColIssueDate, ColIssuingState, ColIssuingAuthority}},
	{Name: "cnh_details", Type: TypeCNH, Columns: []string{ColIssueDate, ColExpiryDate, ColIssuingState}},
	{Name: "passport_details", Type: TypePassport, Columns: []string{ColIssueDate, ColExpiryDate, ColIssuingAuthority}},
	{Name: "vehicle_details", Type: TypeVehicleDocument, Columns: []string{ColExpiryDate, ColIssuingState, ColIssuingCity}},
	{Name: "card_details", Type: TypeCard, Columns: []string{ColCardSubtype, ColCardBrand, ColBank, ColCVC, ColExpiryDate}},
	{Name: "certificate_details", Type: TypeCertificate, Columns: []string{ColIssueDate, ColIssuingAuthority}},
	{Name: "voter_details", Type: TypeVoterID, Columns: []string{ColElectorZone, ColElectorSection, ColIssuingState, ColIssuingCity}},
}

// SubTables returns the registry in declaration order.
func SubTables() []SubTable {
	out := make([]SubTable, len(subTables))
	copy(out, subTables)
	return out
}

// SubTableFor returns the sub-table for t, if the type has one.
func SubTableFor(t DocType) (SubTable, bool) {
	for _, st := range subTables {
		if st.Type == t {
			return st, true
		}
	}
	return SubTable{}, false
}

// SubTableByName looks a sub-table up by its table name. Used to whitelist
// table names coming from request paths.
func SubTableByName(name string) (SubTable, bool) {
	for _, st := range subTables {
		if st.Name == name {
			return st, true
		}
	}
	return SubTable{}, false
}

// FieldsFor lists the metadata columns meaningful for t.
func FieldsFor(t DocType) []string {
	st, ok := SubTableFor(t)
	if !ok {
		return nil
	}
	return append([]string(nil), st.Columns...)
}
