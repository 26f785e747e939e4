package recommender

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/reelrec/movies-backend/internal/movie"
	"github.com/reelrec/movies-backend/pkg/logger"
)

// Cold start defaults, matching the offline engine this replaces
const (
	DefaultColdStartTopN       = 20
	DefaultColdStartThreshold  = 0.8
	DefaultColdStartSampleSize = 100
)

// RankingProvider hands out the currently served ranking model
type RankingProvider interface {
	RankingModel() (*RankingModel, error)
}

// ColdStartEngine recommends to users with little or no rating history,
// either by genre similarity against the catalog or by deferring to the
// boosted ranking model with a synthetic profile.
type ColdStartEngine struct {
	space   *movie.GenreSpace
	ranking RankingProvider
	logger  *logger.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewColdStartEngine creates a cold start engine over the given genre space
func NewColdStartEngine(space *movie.GenreSpace, ranking RankingProvider, log *logger.Logger) *ColdStartEngine {
	return &ColdStartEngine{
		space:   space,
		ranking: ranking,
		logger:  log.WithComponent("coldstart-engine"),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRand replaces the randomness source (used by tests for determinism)
func (e *ColdStartEngine) SetRand(rng *rand.Rand) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rng = rng
}

func (e *ColdStartEngine) shuffledIDs() []int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.space.ShuffledIDs(e.rng)
}

func (e *ColdStartEngine) sample(n int) ([]int64, [][]float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.space.Sample(n, e.rng)
}

// RecommendFromLiked averages the genre vectors of the liked movies into
// a preference vector and scans the catalog in randomized order, keeping
// the first topN movies whose cosine similarity meets the threshold.
// Liked movies are excluded from the result.
func (e *ColdStartEngine) RecommendFromLiked(likedIDs []int64, topN int, threshold float64) ([]Recommendation, error) {
	if len(likedIDs) == 0 {
		return nil, EmptyInputError("no liked movies provided")
	}
	if topN <= 0 {
		topN = DefaultColdStartTopN
	}
	if threshold <= 0 {
		threshold = DefaultColdStartThreshold
	}

	e.logger.Info(fmt.Sprintf("Genre similarity search: %d liked movies, top %d, threshold %.2f", len(likedIDs), topN, threshold))

	preference, err := e.meanLikedVector(likedIDs)
	if err != nil {
		return nil, err
	}

	liked := make(map[int64]bool, len(likedIDs))
	for _, id := range likedIDs {
		liked[id] = true
	}

	// Randomized scan order gives tie-breaking diversity across repeated
	// calls with the same liked set
	out := make([]Recommendation, 0, topN)
	for _, movieID := range e.shuffledIDs() {
		if liked[movieID] {
			continue
		}
		vector, ok := e.space.Vector(movieID)
		if !ok {
			continue
		}
		similarity := cosineSimilarity(preference, vector)
		if similarity >= threshold {
			out = append(out, Recommendation{MovieID: movieID, Score: similarity})
			if len(out) == topN {
				break
			}
		}
	}

	e.logger.Info(fmt.Sprintf("Genre similarity search found %d movies", len(out)))
	return out, nil
}

func (e *ColdStartEngine) meanLikedVector(likedIDs []int64) ([]float64, error) {
	mean := make([]float64, e.space.Dim())
	found := 0
	for _, id := range likedIDs {
		vector, ok := e.space.Vector(id)
		if !ok {
			continue
		}
		for j, v := range vector {
			mean[j] += v
		}
		found++
	}
	if found == 0 {
		return nil, EmptyInputError("none of the liked movies exist in the catalog")
	}
	for j := range mean {
		mean[j] /= float64(found)
	}
	return mean, nil
}

// RecommendForNewUser builds a synthetic profile from a first session's
// freshly collected ratings and defers to the ranking model over a
// random catalog sample, excluding the movies just rated.
func (e *ColdStartEngine) RecommendForNewUser(newRatings []Rating, sampleSize int) ([]Recommendation, error) {
	if len(newRatings) == 0 {
		return nil, EmptyInputError("no ratings provided for new user")
	}
	if sampleSize <= 0 {
		sampleSize = DefaultColdStartSampleSize
	}

	model, err := e.ranking.RankingModel()
	if err != nil {
		return nil, err
	}

	var ratingSum, hourSum float64
	seen := make([]int64, 0, len(newRatings))
	for _, r := range newRatings {
		ratingSum += r.Rating
		hourSum += float64(time.Unix(r.Timestamp, 0).UTC().Hour())
		seen = append(seen, r.MovieID)
	}
	synthetic := UserFeatures{
		AvgRating: ratingSum / float64(len(newRatings)),
		AvgHour:   hourSum / float64(len(newRatings)),
	}

	e.logger.Info(fmt.Sprintf("Ranking cold start: synthetic profile avg_rating=%.2f avg_hour=%.2f over %d candidates",
		synthetic.AvgRating, synthetic.AvgHour, sampleSize))

	candidateIDs, candidateVectors := e.sample(sampleSize)
	return model.Predict(synthetic, candidateIDs, candidateVectors, seen), nil
}

// UserPreferenceVector computes the rating-weighted mean of the liked
// movies' genre vectors, min-max normalized to [0,1]. When every genre
// carries the same raw weight the vector degenerates to all zeros.
// Intended for display and diagnostics, not ranking decisions.
func (e *ColdStartEngine) UserPreferenceVector(likedIDs []int64, ratings []float64) ([]GenreScore, error) {
	if len(likedIDs) == 0 || len(ratings) == 0 {
		return nil, EmptyInputError("movie ids or ratings are missing")
	}
	if len(likedIDs) != len(ratings) {
		return nil, InvalidInputError("movie ids and ratings must have equal length, got %d and %d", len(likedIDs), len(ratings))
	}

	weighted := make([]float64, e.space.Dim())
	found := 0
	for i, id := range likedIDs {
		vector, ok := e.space.Vector(id)
		if !ok {
			continue
		}
		for j, v := range vector {
			weighted[j] += ratings[i] * v
		}
		found++
	}
	if found == 0 {
		return nil, EmptyInputError("none of the liked movies exist in the catalog")
	}
	for j := range weighted {
		weighted[j] /= float64(found)
	}

	normalized := minMaxNormalize(weighted)

	genres := e.space.Genres()
	out := make([]GenreScore, len(genres))
	for j, g := range genres {
		out[j] = GenreScore{Genre: g, Score: normalized[j]}
	}
	return out, nil
}

func minMaxNormalize(values []float64) []float64 {
	if len(values) == 0 {
		return values
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	out := make([]float64, len(values))
	if hi == lo {
		// Constant vector: every genre maps to 0
		return out
	}
	for i, v := range values {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}
