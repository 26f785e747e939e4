package rating

import (
	"fmt"
	"sync"
	"time"

	"github.com/reelrec/movies-backend/internal/recommender"
	"github.com/reelrec/movies-backend/pkg/logger"
)

// service implements the Service interface
type service struct {
	repo      Repository
	rebuilder ProfileRebuilder
	logger    *logger.Logger

	// Serializes the merge-and-rebuild sequence against itself; readers
	// see either the pre-merge or the post-merge store, never a partial one.
	mergeMu sync.Mutex
}

// NewService creates a new rating service
func NewService(repo Repository, rebuilder ProfileRebuilder, log *logger.Logger) Service {
	return &service{
		repo:      repo,
		rebuilder: rebuilder,
		logger:    log.WithComponent("rating-service"),
	}
}

func (s *service) RateMovie(userID, movieID int64, score float64) (*Rating, error) {
	s.logger.Info(fmt.Sprintf("Rating movie %d by user %d with score %.1f", movieID, userID, score))

	r := &Rating{
		UserID:    userID,
		MovieID:   movieID,
		Rating:    score,
		Timestamp: time.Now().UTC().Unix(),
	}
	if !r.IsValidScore() {
		s.logger.Error(fmt.Sprintf("Invalid rating score %.2f for movie %d by user %d", score, movieID, userID))
		return nil, recommender.InvalidInputError("rating must be between 1.0 and 5.0 in 0.5 steps, got %.2f", score)
	}

	if err := s.repo.Upsert(r); err != nil {
		s.logger.Error(fmt.Sprintf("Failed to store rating for movie %d by user %d: %s", movieID, userID, err.Error()))
		return nil, err
	}

	s.logger.Info(fmt.Sprintf("Rating stored for movie %d by user %d", movieID, userID))
	return r, nil
}

func (s *service) GetRating(userID, movieID int64) (*Rating, error) {
	r, err := s.repo.FindByUserAndMovie(userID, movieID)
	if err != nil {
		s.logger.Info(fmt.Sprintf("Rating not found for movie %d by user %d", movieID, userID))
		return nil, recommender.NotFoundError("no rating for movie %d by user %d", movieID, userID)
	}
	return r, nil
}

func (s *service) MergeNewRatings(incoming []Rating) (int, error) {
	s.mergeMu.Lock()
	defer s.mergeMu.Unlock()

	if len(incoming) == 0 {
		return 0, recommender.EmptyInputError("no incoming ratings to merge")
	}
	for _, r := range incoming {
		if !r.IsValidScore() {
			return 0, recommender.InvalidInputError("invalid rating %.2f for movie %d by user %d", r.Rating, r.MovieID, r.UserID)
		}
	}

	existing, err := s.repo.FindAll()
	if err != nil {
		s.logger.Error("Failed to load existing ratings: " + err.Error())
		return 0, err
	}

	s.logger.Info(fmt.Sprintf("Merging %d incoming ratings into %d existing", len(incoming), len(existing)))

	merged, err := MergeRatings(existing, incoming)
	if err != nil {
		s.logger.Error("Merge rejected: " + err.Error())
		return 0, err
	}

	if err := s.repo.ReplaceAll(merged); err != nil {
		s.logger.Error("Failed to persist merged ratings: " + err.Error())
		return 0, err
	}

	s.logger.Info(fmt.Sprintf("Merged store persisted: %d events. Rebuilding user profiles", len(merged)))

	count, err := s.rebuilder.RebuildFrom(merged)
	if err != nil {
		s.logger.Error("Profile rebuild failed after merge: " + err.Error())
		return 0, err
	}

	s.logger.Info(fmt.Sprintf("Profile rebuild complete: %d profiles", count))
	return len(merged), nil
}

func (s *service) SeenMovies(userID int64) ([]int64, error) {
	ratings, err := s.repo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	seen := make([]int64, 0, len(ratings))
	for _, r := range ratings {
		seen = append(seen, r.MovieID)
	}
	return seen, nil
}

func (s *service) RatingsByUser(userID int64) ([]Rating, error) {
	return s.repo.FindByUser(userID)
}

func (s *service) AllRatings() ([]Rating, error) {
	return s.repo.FindAll()
}
