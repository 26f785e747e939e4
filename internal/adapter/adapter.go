package adapter

import (
	"github.com/reelrec/movies-backend/internal/profile"
	"github.com/reelrec/movies-backend/internal/rating"
	"github.com/reelrec/movies-backend/internal/recommender"
)

// RatingServiceToRatingStore adapts rating.Service to recommender.RatingStore
type RatingServiceToRatingStore struct {
	service rating.Service
}

// NewRatingServiceToRatingStore creates a new adapter
func NewRatingServiceToRatingStore(s rating.Service) recommender.RatingStore {
	return &RatingServiceToRatingStore{
		service: s,
	}
}

func (a *RatingServiceToRatingStore) SeenMovies(userID int64) ([]int64, error) {
	return a.service.SeenMovies(userID)
}

func (a *RatingServiceToRatingStore) RatingsByUser(userID int64) ([]recommender.Rating, error) {
	ratings, err := a.service.RatingsByUser(userID)
	if err != nil {
		return nil, err
	}
	return convertRatings(ratings), nil
}

func (a *RatingServiceToRatingStore) AllRatings() ([]recommender.Rating, error) {
	ratings, err := a.service.AllRatings()
	if err != nil {
		return nil, err
	}
	return convertRatings(ratings), nil
}

// convertRatings converts rating.Rating entities to recommender events
func convertRatings(ratings []rating.Rating) []recommender.Rating {
	out := make([]recommender.Rating, 0, len(ratings))
	for _, r := range ratings {
		out = append(out, recommender.Rating{
			UserID:    r.UserID,
			MovieID:   r.MovieID,
			Rating:    r.Rating,
			Timestamp: r.Timestamp,
		})
	}
	return out
}

// ProfileServiceToProfileStore adapts profile.Service to recommender.ProfileStore
type ProfileServiceToProfileStore struct {
	service profile.Service
}

// NewProfileServiceToProfileStore creates a new adapter
func NewProfileServiceToProfileStore(s profile.Service) recommender.ProfileStore {
	return &ProfileServiceToProfileStore{
		service: s,
	}
}

func (a *ProfileServiceToProfileStore) Get(userID int64) (*recommender.UserFeatures, error) {
	p, err := a.service.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	return &recommender.UserFeatures{
		UserID:    p.UserID,
		AvgRating: p.AvgRating,
		AvgHour:   p.AvgHour,
	}, nil
}

func (a *ProfileServiceToProfileStore) All() ([]recommender.UserFeatures, error) {
	profiles, err := a.service.AllProfiles()
	if err != nil {
		return nil, err
	}

	out := make([]recommender.UserFeatures, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, recommender.UserFeatures{
			UserID:    p.UserID,
			AvgRating: p.AvgRating,
			AvgHour:   p.AvgHour,
		})
	}
	return out, nil
}
