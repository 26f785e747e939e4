package rating

import (
	"sort"

	"github.com/reelrec/movies-backend/internal/recommender"
)

// MergeRatings concatenates the existing event log with freshly collected
// events and de-duplicates by (UserID, MovieID), keeping the event with the
// greatest timestamp. Ties are broken by source order: the later position in
// the concatenated sequence wins.
//
// The pre-dedup concatenation length must equal len(existing)+len(incoming);
// a mismatch aborts the merge with a CONSISTENCY_VIOLATION before anything
// is persisted. This guards the concatenation step itself, not the
// de-duplicated result size.
func MergeRatings(existing, incoming []Rating) ([]Rating, error) {
	concat := make([]Rating, 0, len(existing)+len(incoming))
	concat = append(concat, existing...)
	concat = append(concat, incoming...)

	if len(concat) != len(existing)+len(incoming) {
		return nil, recommender.ConsistencyError(
			"merge size mismatch: concatenated %d events, expected %d existing + %d incoming",
			len(concat), len(existing), len(incoming))
	}

	// Stable sort by timestamp so that, at equal timestamps, the later
	// source position stays last and wins the de-duplication below.
	sort.SliceStable(concat, func(i, j int) bool {
		return concat[i].Timestamp < concat[j].Timestamp
	})

	type pair struct {
		userID  int64
		movieID int64
	}
	latest := make(map[pair]Rating, len(concat))
	for _, r := range concat {
		latest[pair{r.UserID, r.MovieID}] = r
	}

	merged := make([]Rating, 0, len(latest))
	for _, r := range latest {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].UserID != merged[j].UserID {
			return merged[i].UserID < merged[j].UserID
		}
		return merged[i].MovieID < merged[j].MovieID
	})

	return merged, nil
}
