package services

import (
	"sort"

	"github.com/dmitrijs2005/docvault/internal/client/models"
	"github.com/dmitrijs2005/docvault/internal/schema"
)

type mergeRule int

const (
	// RemoteUnlessEmpty takes the remote value unless it is empty.
	RemoteUnlessEmpty mergeRule = iota
	// AlwaysRemote takes the remote value, empty or not.
	AlwaysRemote
	// AlwaysLocal keeps the local value.
	AlwaysLocal
	// Newest takes the value of whichever side has the greater UpdatedAt.
	Newest
)

type fieldRule struct {
	name string
	rule mergeRule
	// pendingLocalWins lets a pending local record that is newer than the
	// remote keep its own value. RemoteUnlessEmpty fields are still filled
	// from the remote when empty locally.
	pendingLocalWins bool
	copy             func(dst, src *models.DocumentRecord)
	empty            func(r *models.DocumentRecord) bool
}

func field[T comparable](name string, rule mergeRule, pendingLocalWins bool, get func(*models.DocumentRecord) *T) fieldRule {
	return fieldRule{
		name:             name,
		rule:             rule,
		pendingLocalWins: pendingLocalWins,
		copy:             func(dst, src *models.DocumentRecord) { *get(dst) = *get(src) },
		empty: func(r *models.DocumentRecord) bool {
			var zero T
			return *get(r) == zero
		},
	}
}

func content(name string, get func(*models.DocumentRecord) *string) fieldRule {
	return field(name, RemoteUnlessEmpty, true, get)
}

// fieldPrecedence decides, field by field, which side of a matched pair
// ends up in the merged record.
var fieldPrecedence = []fieldRule{
	field("local_id", AlwaysLocal, false, func(r *models.DocumentRecord) *int64 { return &r.LocalID }),
	field("app_id", AlwaysRemote, false, func(r *models.DocumentRecord) *int32 { return &r.AppID }),
	field("favorite", AlwaysRemote, true, func(r *models.DocumentRecord) *bool { return &r.Favorite }),
	field("updated_at", Newest, false, func(r *models.DocumentRecord) *int64 { return &r.UpdatedAt }),
	field("synced", AlwaysLocal, false, func(r *models.DocumentRecord) *bool { return &r.Synced }),

	content("name", func(r *models.DocumentRecord) *string { return &r.Name }),
	content("number", func(r *models.DocumentRecord) *string { return &r.Number }),
	field("type", RemoteUnlessEmpty, true, func(r *models.DocumentRecord) *schema.DocType { return &r.Type }),
	field("category", RemoteUnlessEmpty, true, func(r *models.DocumentRecord) *schema.Category { return &r.Category }),

	content("front_media", func(r *models.DocumentRecord) *string { return &r.FrontMediaRef }),
	content("back_media", func(r *models.DocumentRecord) *string { return &r.BackMediaRef }),
	content("front_url", func(r *models.DocumentRecord) *string { return &r.FrontURL }),
	content("back_url", func(r *models.DocumentRecord) *string { return &r.BackURL }),

	content("issue_date", func(r *models.DocumentRecord) *string { return &r.IssueDate }),
	content("expiry_date", func(r *models.DocumentRecord) *string { return &r.ExpiryDate }),
	content("issuing_state", func(r *models.DocumentRecord) *string { return &r.IssuingState }),
	content("issuing_city", func(r *models.DocumentRecord) *string { return &r.IssuingCity }),
	content("issuing_authority", func(r *models.DocumentRecord) *string { return &r.IssuingAuthority }),
	content("elector_zone", func(r *models.DocumentRecord) *string { return &r.ElectorZone }),
	content("elector_section", func(r *models.DocumentRecord) *string { return &r.ElectorSection }),
	content("card_subtype", func(r *models.DocumentRecord) *string { return &r.CardSubtype }),
	content("card_brand", func(r *models.DocumentRecord) *string { return &r.CardBrand }),
	content("bank", func(r *models.DocumentRecord) *string { return &r.Bank }),
	content("cvc", func(r *models.DocumentRecord) *string { return &r.CVC }),
}

// Reconcile merges the local and remote document sets into one list. It is
// pure: inputs are not modified and no record is ever dropped. The result is
// ordered by UpdatedAt, AppID, LocalID, all descending.
func Reconcile(local, remote []models.DocumentRecord) []models.DocumentRecord {
	consumed := make([]bool, len(local))
	byNaive := make(map[int32][]int)
	byJoin := make(map[int32][]int)
	for i, l := range local {
		if k := l.NaiveKey(); k != 0 {
			byNaive[k] = append(byNaive[k], i)
		}
		if k, err := l.JoinKey(); err == nil {
			byJoin[k] = append(byJoin[k], i)
		}
	}

	rs := make([]models.DocumentRecord, len(remote))
	copy(rs, remote)
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].AppID < rs[j].AppID })

	out := make([]models.DocumentRecord, 0, len(local)+len(rs))
	for _, r := range rs {
		idx := pick(local, consumed, byJoin[r.AppID], r, sameDocument)
		if idx < 0 {
			idx = pick(local, consumed, byNaive[r.NaiveKey()], r, nil)
		}
		if idx < 0 {
			r.Synced = true
			out = append(out, r)
			continue
		}
		consumed[idx] = true
		out = append(out, merge(local[idx], r))
	}
	for i, l := range local {
		if !consumed[i] {
			out = append(out, l)
		}
	}

	sortRecords(out)
	return out
}

// pick returns the first unconsumed, type-compatible candidate accepted by
// match (nil accepts all), or -1.
func pick(local []models.DocumentRecord, consumed []bool, candidates []int, r models.DocumentRecord, match func(l, r models.DocumentRecord) bool) int {
	for _, i := range candidates {
		if consumed[i] || !typeCompatible(local[i], r) {
			continue
		}
		if match != nil && !match(local[i], r) {
			continue
		}
		return i
	}
	return -1
}

func typeCompatible(l, r models.DocumentRecord) bool {
	return l.Type == "" || r.Type == "" || l.Type == r.Type
}

// sameDocument compares the first field pair where both sides are set:
// Number, then Name, then CardSubtype.
func sameDocument(l, r models.DocumentRecord) bool {
	pairs := [][2]string{
		{l.Number, r.Number},
		{l.Name, r.Name},
		{l.CardSubtype, r.CardSubtype},
	}
	for _, p := range pairs {
		if p[0] != "" && p[1] != "" {
			return p[0] == p[1]
		}
	}
	return false
}

func merge(local, remote models.DocumentRecord) models.DocumentRecord {
	out := local
	localAuthority := !local.Synced && local.UpdatedAt > remote.UpdatedAt

	for _, f := range fieldPrecedence {
		if localAuthority && f.pendingLocalWins {
			if f.rule == RemoteUnlessEmpty && f.empty(&out) {
				f.copy(&out, &remote)
			}
			continue
		}

		switch f.rule {
		case AlwaysLocal:
		case AlwaysRemote:
			f.copy(&out, &remote)
		case Newest:
			if remote.UpdatedAt >= local.UpdatedAt {
				f.copy(&out, &remote)
			}
		case RemoteUnlessEmpty:
			if !f.empty(&remote) {
				f.copy(&out, &remote)
			}
		}
	}
	return out
}

func sortRecords(recs []models.DocumentRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.UpdatedAt != b.UpdatedAt {
			return a.UpdatedAt > b.UpdatedAt
		}
		if a.AppID != b.AppID {
			return a.AppID > b.AppID
		}
		return a.LocalID > b.LocalID
	})
}
