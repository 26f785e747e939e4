package recommender

import (
	"fmt"
	"sort"

	"github.com/reelrec/movies-backend/internal/movie"
	"github.com/reelrec/movies-backend/pkg/logger"
)

// Movies a user rated at or above this score count as "liked" when the
// genre similarity strategy runs for an existing user
const likedRatingFloor = 4.0

// neighborFanout is how many nearest users feed the propagation strategy
const neighborFanout = 10

// Orchestrator dispatches a recommendation request to one of the
// strategies and normalizes the result into a uniform ranking. All
// parameters are request-scoped; the orchestrator itself holds no
// per-request state.
type Orchestrator struct {
	artifacts *Provider
	ratings   RatingStore
	profiles  ProfileStore
	coldstart *ColdStartEngine
	space     *movie.GenreSpace
	logger    *logger.Logger

	coldStartTopN      int
	coldStartThreshold float64
	sampleSize         int
}

// OrchestratorOptions configure strategy defaults
type OrchestratorOptions struct {
	ColdStartTopN       int
	ColdStartThreshold  float64
	ColdStartSampleSize int

	// ScanThreshold is the similarity floor applied by exhaustive
	// similarity scans when the request does not carry its own
	ScanThreshold float64
}

// NewOrchestrator creates a recommendation orchestrator
func NewOrchestrator(
	artifacts *Provider,
	ratings RatingStore,
	profiles ProfileStore,
	coldstart *ColdStartEngine,
	space *movie.GenreSpace,
	opts OrchestratorOptions,
	log *logger.Logger,
) *Orchestrator {
	if opts.ColdStartTopN <= 0 {
		opts.ColdStartTopN = DefaultColdStartTopN
	}
	if opts.ColdStartThreshold <= 0 {
		opts.ColdStartThreshold = DefaultColdStartThreshold
	}
	if opts.ColdStartSampleSize <= 0 {
		opts.ColdStartSampleSize = DefaultColdStartSampleSize
	}

	return &Orchestrator{
		artifacts:          artifacts,
		ratings:            ratings,
		profiles:           profiles,
		coldstart:          coldstart,
		space:              space,
		logger:             log.WithComponent("recommendation-orchestrator"),
		coldStartTopN:      opts.ColdStartTopN,
		coldStartThreshold: opts.ColdStartThreshold,
		sampleSize:         opts.ColdStartSampleSize,
	}
}

// Recommend runs the chosen strategy for the user and returns at most n
// recommendations ordered by score descending
func (o *Orchestrator) Recommend(userID int64, strategy Strategy, n int) ([]Recommendation, error) {
	if n <= 0 {
		n = 10
	}

	o.logger.Info(fmt.Sprintf("Recommending for user %d: strategy=%s n=%d", userID, strategy, n))

	switch strategy {
	case StrategyMFTopN:
		return o.mfTopN(userID, n)
	case StrategyMFNeighbors:
		return o.neighborPropagation(userID, n)
	case StrategyRanking:
		return o.rankingModel(userID, n)
	case StrategyGenreSimilarity:
		return o.genreSimilarity(userID, n)
	default:
		return nil, InvalidInputError("unknown strategy %q", strategy)
	}
}

func (o *Orchestrator) mfTopN(userID int64, n int) ([]Recommendation, error) {
	set, err := o.artifacts.Current()
	if err != nil {
		return nil, err
	}

	seen, err := o.ratings.SeenMovies(userID)
	if err != nil {
		return nil, err
	}

	return set.MF.TopN(userID, seen, n)
}

// neighborPropagation recommends movies rated by the user's nearest
// embedding-space neighbors that the user has not seen. Each candidate
// is scored neighborRating * neighborSimilarity, summed across the
// neighbors that rated it.
func (o *Orchestrator) neighborPropagation(userID int64, n int) ([]Recommendation, error) {
	set, err := o.artifacts.Current()
	if err != nil {
		return nil, err
	}

	neighbors, err := set.UserKNN.Neighbors(userID)
	if err != nil {
		return nil, err
	}
	if len(neighbors) > neighborFanout {
		neighbors = neighbors[:neighborFanout]
	}

	seen, err := o.ratings.SeenMovies(userID)
	if err != nil {
		return nil, err
	}
	seenSet := make(map[int64]bool, len(seen))
	for _, id := range seen {
		seenSet[id] = true
	}

	aggregated := make(map[int64]float64)
	for _, neighbor := range neighbors {
		neighborRatings, err := o.ratings.RatingsByUser(neighbor.ID)
		if err != nil {
			return nil, err
		}
		for _, r := range neighborRatings {
			if seenSet[r.MovieID] {
				continue
			}
			aggregated[r.MovieID] += r.Rating * neighbor.Similarity
		}
	}

	out := make([]Recommendation, 0, len(aggregated))
	for movieID, score := range aggregated {
		out = append(out, Recommendation{MovieID: movieID, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].MovieID < out[j].MovieID
	})

	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (o *Orchestrator) rankingModel(userID int64, n int) ([]Recommendation, error) {
	set, err := o.artifacts.Current()
	if err != nil {
		return nil, err
	}

	user, err := o.profiles.Get(userID)
	if err != nil {
		return nil, err
	}

	seen, err := o.ratings.SeenMovies(userID)
	if err != nil {
		return nil, err
	}

	candidateIDs, candidateVectors := o.coldstart.sample(o.sampleSize)
	out := set.Ranking.Predict(*user, candidateIDs, candidateVectors, seen)
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (o *Orchestrator) genreSimilarity(userID int64, n int) ([]Recommendation, error) {
	ratings, err := o.ratings.RatingsByUser(userID)
	if err != nil {
		return nil, err
	}

	liked := make([]int64, 0, len(ratings))
	for _, r := range ratings {
		if r.Rating >= likedRatingFloor {
			liked = append(liked, r.MovieID)
		}
	}

	topN := o.coldStartTopN
	if n < topN {
		topN = n
	}
	return o.coldstart.RecommendFromLiked(liked, topN, o.coldStartThreshold)
}
