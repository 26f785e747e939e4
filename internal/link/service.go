package link

import (
	"fmt"

	"github.com/reelrec/movies-backend/internal/recommender"
	"github.com/reelrec/movies-backend/pkg/logger"
)

// service implements the Service interface
type service struct {
	repo   Repository
	logger *logger.Logger
}

// NewService creates a new link resolution service
func NewService(repo Repository, log *logger.Logger) Service {
	return &service{
		repo:   repo,
		logger: log.WithComponent("link-service"),
	}
}

func (s *service) ResolveImdbID(movieID int64) (string, error) {
	l, err := s.repo.FindByMovieID(movieID)
	if err != nil {
		s.logger.Info(fmt.Sprintf("No external link for movie %d", movieID))
		return "", recommender.NotFoundError("no external link for movie %d", movieID)
	}

	imdbID := FormatImdbID(l.ImdbID)
	if imdbID == "" {
		return "", recommender.NotFoundError("movie %d has no IMDb id", movieID)
	}
	return imdbID, nil
}

func (s *service) ResolveTmdbID(movieID int64) (int64, error) {
	l, err := s.repo.FindByMovieID(movieID)
	if err != nil {
		s.logger.Info(fmt.Sprintf("No external link for movie %d", movieID))
		return 0, recommender.NotFoundError("no external link for movie %d", movieID)
	}
	if l.TmdbID == 0 {
		return 0, recommender.NotFoundError("movie %d has no TMDb id", movieID)
	}
	return l.TmdbID, nil
}
