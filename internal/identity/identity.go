// Package identity maps document identifiers of any shape to a stable
// positive 31-bit integer (the app id) used as the cross-device join key.
//
// The client and the server both import this package, so an id computed on
// one side is always the same on the other.
package identity

import (
	"fmt"
	"math"
	"strconv"
	"unicode/utf16"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/google/uuid"
)

const (
	fnvOffset uint32 = 2166136261
	maxID            = int64(common.MaxAppID)
)

// Normalize returns the app id for v.
//
// Integers in (0, MaxAppID] are returned unchanged, other integers are
// folded with abs(n) mod MaxAppID. Strings, nil and everything else are
// hashed with HashString. Zero is never returned.
func Normalize(v any) int32 {
	switch x := v.(type) {
	case nil:
		return HashString("")
	case int:
		return fromInt(int64(x))
	case int8:
		return fromInt(int64(x))
	case int16:
		return fromInt(int64(x))
	case int32:
		return fromInt(int64(x))
	case int64:
		return fromInt(x)
	case uint:
		return fromUint(uint64(x))
	case uint8:
		return fromInt(int64(x))
	case uint16:
		return fromInt(int64(x))
	case uint32:
		return fromInt(int64(x))
	case uint64:
		return fromUint(x)
	case float32:
		return fromFloat(float64(x))
	case float64:
		return fromFloat(x)
	case string:
		return HashString(x)
	case fmt.Stringer:
		return HashString(x.String())
	default:
		return HashString(fmt.Sprint(x))
	}
}

// HashString computes the 31-bit FNV-1a style hash of s over its UTF-16 code
// units. The state wraps at 32 bits after every step. For ASCII input the
// code units are the bytes of s.
func HashString(s string) int32 {
	h := fnvOffset
	for _, c := range utf16.Encode([]rune(s)) {
		h ^= uint32(c)
		h += (h << 1) + (h << 4) + (h << 7) + (h << 8) + (h << 24)
	}

	n := int64(int32(h))
	if n < 0 {
		n = -n
	}
	return clamp(n % maxID)
}

// IsValidUserID reports whether id may be used for remote calls: it must be
// a syntactically valid UUID and not the anonymous sentinel.
func IsValidUserID(id string) bool {
	if id == "" || id == common.AnonymousUserID {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func fromInt(n int64) int32 {
	if n > 0 && n <= maxID {
		return int32(n)
	}
	if n < 0 {
		if n == math.MinInt64 {
			// -MinInt64 overflows; fold through uint64.
			return fromUint(uint64(math.MaxInt64) + 1)
		}
		n = -n
	}
	return clamp(n % maxID)
}

func fromUint(n uint64) int32 {
	if n > 0 && n <= uint64(maxID) {
		return int32(n)
	}
	return clamp(int64(n % uint64(maxID)))
}

func fromFloat(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return HashString(strconv.FormatFloat(f, 'f', -1, 64))
	}
	if math.Abs(f) > float64(math.MaxInt64) {
		return HashString(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return fromInt(int64(f))
}

func clamp(n int64) int32 {
	if n == 0 {
		return 1
	}
	return int32(n)
}
