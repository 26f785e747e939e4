package recommender

import "context"

// Strategy selects which predictor serves a recommendation request
type Strategy string

const (
	// StrategyMFTopN ranks by the matrix factorization model's own top-N
	StrategyMFTopN Strategy = "mf_topn"
	// StrategyMFNeighbors propagates ratings from embedding-space neighbor users
	StrategyMFNeighbors Strategy = "mf_neighbors"
	// StrategyRanking scores a random candidate sample with the boosted ranking model
	StrategyRanking Strategy = "ranking"
	// StrategyGenreSimilarity matches the user's liked genres against the catalog
	StrategyGenreSimilarity Strategy = "genre_similarity"
)

// Recommendation is the uniform (item, score) ranking unit every
// strategy's output is normalized into
type Recommendation struct {
	MovieID int64   `json:"movie_id"`
	Score   float64 `json:"score"`
}

// Neighbor is a similarity search result
type Neighbor struct {
	ID         int64   `json:"id"`
	Similarity float64 `json:"similarity"`
}

// Rating mirrors a rating event for training and neighbor propagation
// (forward declaration, kept in sync with the rating package model)
type Rating struct {
	UserID    int64
	MovieID   int64
	Rating    float64
	Timestamp int64
}

// UserFeatures mirrors the derived per-user aggregate used as the ranking
// model input (forward declaration of the profile package model)
type UserFeatures struct {
	UserID    int64
	AvgRating float64
	AvgHour   float64
}

// RatingStore is the rating data the recommendation core reads at
// serve and train time
type RatingStore interface {
	SeenMovies(userID int64) ([]int64, error)
	RatingsByUser(userID int64) ([]Rating, error)
	AllRatings() ([]Rating, error)
}

// ProfileStore is the derived user aggregate data the ranking path reads
type ProfileStore interface {
	Get(userID int64) (*UserFeatures, error)
	All() ([]UserFeatures, error)
}

// GenreScore is one row of a user preference vector
type GenreScore struct {
	Genre string  `json:"genre"`
	Score float64 `json:"score"`
}

// SimilarityMode selects how a similarity lookup is answered
type SimilarityMode string

const (
	// ModeIndex answers from the precomputed K-nearest-neighbor index
	ModeIndex SimilarityMode = "index"
	// ModeScan answers by an exhaustive scan over the factor matrix,
	// keeping every neighbor above a similarity threshold
	ModeScan SimilarityMode = "scan"
)

// Service defines the recommendation business logic interface
type Service interface {
	Recommend(userID int64, strategy Strategy, limit int) ([]Recommendation, error)
	SimilarMovies(movieID int64, mode SimilarityMode, threshold float64) ([]Neighbor, error)
	SimilarUsers(userID int64, mode SimilarityMode, threshold float64) ([]Neighbor, error)
	PredictRating(userID, movieID int64) (float64, error)
	RecommendFromGenres(likedIDs []int64, topN int) ([]Recommendation, error)
	RecommendForNewUser(newRatings []Rating) ([]Recommendation, error)
	PreferenceVector(likedIDs []int64, scores []float64) ([]GenreScore, error)
	ArtifactVersion() (string, error)
	Train(ctx context.Context) error
}
