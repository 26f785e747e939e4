package profile

import (
	"fmt"

	"github.com/reelrec/movies-backend/internal/rating"
	"github.com/reelrec/movies-backend/internal/recommender"
	"github.com/reelrec/movies-backend/pkg/logger"
)

// service implements the Service interface
type service struct {
	repo   Repository
	logger *logger.Logger
}

// NewService creates a new profile service
func NewService(repo Repository, log *logger.Logger) Service {
	return &service{
		repo:   repo,
		logger: log.WithComponent("profile-service"),
	}
}

func (s *service) GetProfile(userID int64) (*UserProfile, error) {
	p, err := s.repo.FindByID(userID)
	if err != nil {
		s.logger.Info(fmt.Sprintf("Profile not found for user %d", userID))
		return nil, recommender.NotFoundError("no profile for user %d", userID)
	}
	return p, nil
}

func (s *service) AllProfiles() ([]UserProfile, error) {
	return s.repo.FindAll()
}

func (s *service) RebuildFrom(ratings []rating.Rating) (int, error) {
	profiles := BuildProfiles(ratings)

	// The rating set only ever grows, so the profile count must not
	// shrink across rebuilds. A shrink means the rebuild ran against an
	// incomplete event log and must not replace the stored profiles.
	previous, err := s.repo.Count()
	if err != nil {
		s.logger.Error("Failed to count existing profiles: " + err.Error())
		return 0, err
	}

	if int64(len(profiles)) < previous {
		s.logger.Error(fmt.Sprintf("Profile count shrank: previous %d, rebuilt %d", previous, len(profiles)))
		return 0, recommender.ConsistencyError(
			"profile count shrank on rebuild: previous %d, rebuilt %d", previous, len(profiles))
	}

	if err := s.repo.ReplaceAll(profiles); err != nil {
		s.logger.Error("Failed to persist rebuilt profiles: " + err.Error())
		return 0, err
	}

	s.logger.Info(fmt.Sprintf("Profiles rebuilt: %d -> %d", previous, len(profiles)))
	return len(profiles), nil
}
