package identity

import (
	"hash/fnv"
	"math"
	"testing"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_PassthroughForValidInts(t *testing.T) {
	for _, n := range []int64{1, 2, 77, 123456, common.MaxAppID} {
		assert.Equal(t, int32(n), Normalize(n), "n=%d", n)
		assert.Equal(t, int32(n), Normalize(int(n)), "int n=%d", n)
		assert.Equal(t, int32(n), Normalize(float64(n)), "float n=%d", n)
	}
}

func TestNormalize_FoldsOutOfRangeNumbers(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int32
	}{
		{"negative", -5, 5},
		{"negative int64", int64(-77), 77},
		{"zero becomes one", 0, 1},
		{"max plus one", int64(common.MaxAppID) + 1, 1},
		{"max times two", int64(common.MaxAppID) * 2, 1},
		{"large", int64(common.MaxAppID) + 10, 10},
		{"negative float", float64(-42), 42},
		{"uint64 large", uint64(common.MaxAppID) + 3, 3},
		{"min int64", int64(math.MinInt64), int32((uint64(math.MaxInt64) + 1) % uint64(common.MaxAppID))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestHashString_GoldenValues(t *testing.T) {
	tests := map[string]int32{
		"":                  2128831035,
		"a":                 468965076,
		"12345":             1136836824,
		"some-name":         761142223,
		"Nubank":            502853906,
		"Título de Eleitor": 1487833037,
	}
	for in, want := range tests {
		assert.Equal(t, want, HashString(in), "input %q", in)
	}
}

// Truncating only at the end would give 1010646825 and 18652614.
func TestHashString_WrapsEveryStep(t *testing.T) {
	assert.Equal(t, int32(1136836824), HashString("12345"))
	assert.Equal(t, int32(2128831035), HashString(""))
}

// For ASCII input the shift-add sequence is exactly the FNV prime multiply.
func TestHashString_MatchesFNV1aForASCII(t *testing.T) {
	for _, s := range []string{"", "x", "RG-001", "passport 12", "some-name", "QUOTA"} {
		f := fnv.New32a()
		_, _ = f.Write([]byte(s))
		n := int64(int32(f.Sum32()))
		if n < 0 {
			n = -n
		}
		want := int32(n % common.MaxAppID)
		if want == 0 {
			want = 1
		}
		require.Equal(t, want, HashString(s), "input %q", s)
	}
}

func TestNormalize_StringsAreHashedAndStable(t *testing.T) {
	inputs := []string{"", "some-name", "12345", "0", "-5", "CNH 99", "ñandú", "🙂"}
	for _, s := range inputs {
		a := Normalize(s)
		b := Normalize(s)
		assert.Equal(t, a, b)
		assert.GreaterOrEqual(t, a, int32(1))
		assert.LessOrEqual(t, int64(a), int64(common.MaxAppID))
	}
	// numeric-looking strings are not parsed
	assert.Equal(t, HashString("12345"), Normalize("12345"))
	assert.NotEqual(t, int32(12345), Normalize("12345"))
}

func TestNormalize_NilAndOtherTypes(t *testing.T) {
	assert.Equal(t, HashString(""), Normalize(nil))
	assert.Equal(t, HashString("3.5"), Normalize(3.5))
	assert.Equal(t, HashString("NaN"), Normalize(math.NaN()))
	assert.Equal(t, HashString("true"), Normalize(true))
}

func TestIsValidUserID(t *testing.T) {
	assert.True(t, IsValidUserID("3f0e8a52-9b7e-4bd6-9a63-2b1f5b0f4c11"))
	assert.False(t, IsValidUserID(""))
	assert.False(t, IsValidUserID(common.AnonymousUserID))
	assert.False(t, IsValidUserID("user-123"))
}
