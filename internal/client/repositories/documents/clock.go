package documents

import "github.com/dmitrijs2005/docvault/internal/timex"

// nowMillis is a seam for tests.
var nowMillis = timex.NowMillis

// nextStamp keeps updated_at strictly increasing per record even if two
// edits land in the same millisecond or the clock steps back.
func nextStamp(prev int64) int64 {
	now := nowMillis()
	if now <= prev {
		return prev + 1
	}
	return now
}
