package rating

import "math"

// Rating represents a single rating event. A (UserID, MovieID) pair holds
// at most one event; re-rating overwrites with the most recent value.
type Rating struct {
	UserID    int64   `json:"user_id" gorm:"primaryKey;autoIncrement:false;index:idx_user_ratings"`
	MovieID   int64   `json:"movie_id" gorm:"primaryKey;autoIncrement:false;index:idx_movie_ratings"`
	Rating    float64 `json:"rating" gorm:"not null"`
	Timestamp int64   `json:"timestamp" gorm:"not null"`
}

// TableName returns the table name for GORM
func (Rating) TableName() string {
	return "ratings"
}

// IsValidScore checks that the score lies in [1.0, 5.0] on a 0.5 step
func (r *Rating) IsValidScore() bool {
	if r.Rating < 1.0 || r.Rating > 5.0 {
		return false
	}
	steps := r.Rating * 2
	return math.Abs(steps-math.Round(steps)) < 1e-9
}

// Repository defines the interface for rating data access
type Repository interface {
	Upsert(rating *Rating) error
	FindAll() ([]Rating, error)
	FindByUser(userID int64) ([]Rating, error)
	FindByUserAndMovie(userID, movieID int64) (*Rating, error)
	ReplaceAll(ratings []Rating) error
	Count() (int64, error)
}

// ProfileRebuilder rebuilds derived per-user aggregates from the full
// rating set. Implemented by the profile service.
type ProfileRebuilder interface {
	RebuildFrom(ratings []Rating) (int, error)
}

// Service defines the interface for rating business logic
type Service interface {
	RateMovie(userID, movieID int64, score float64) (*Rating, error)
	GetRating(userID, movieID int64) (*Rating, error)
	MergeNewRatings(incoming []Rating) (int, error)
	SeenMovies(userID int64) ([]int64, error)
	RatingsByUser(userID int64) ([]Rating, error)
	AllRatings() ([]Rating, error)
}

// RateMovieRequest represents rating submission
type RateMovieRequest struct {
	UserID  int64   `json:"user_id" binding:"required"`
	MovieID int64   `json:"movie_id" binding:"required"`
	Rating  float64 `json:"rating" binding:"required"`
}

// MergeRequest represents a batch of freshly collected ratings
type MergeRequest struct {
	Ratings []Rating `json:"ratings" binding:"required"`
}

// RatingResponse represents a rating in API responses
type RatingResponse struct {
	UserID    int64   `json:"user_id"`
	MovieID   int64   `json:"movie_id"`
	Rating    float64 `json:"rating"`
	Timestamp int64   `json:"timestamp"`
}

// ToResponse converts Rating to RatingResponse
func (r *Rating) ToResponse() *RatingResponse {
	return &RatingResponse{
		UserID:    r.UserID,
		MovieID:   r.MovieID,
		Rating:    r.Rating,
		Timestamp: r.Timestamp,
	}
}
