package movie

import (
	"fmt"
	"sync"

	"github.com/reelrec/movies-backend/pkg/logger"
)

// service implements the Service interface
type service struct {
	repo   Repository
	logger *logger.Logger

	genreOnce  sync.Once
	genreSpace *GenreSpace
	genreErr   error
}

// NewService creates a new movie catalog service
func NewService(repo Repository, log *logger.Logger) Service {
	return &service{
		repo:   repo,
		logger: log.WithComponent("movie-service"),
	}
}

func (s *service) GetMovie(id int64) (*Movie, error) {
	movie, err := s.repo.FindByID(id)
	if err != nil {
		s.logger.Info("Movie not found: " + fmt.Sprintf("%d", id))
		return nil, err
	}
	return movie, nil
}

func (s *service) ListMovies(page, limit int) ([]*Movie, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	movies, err := s.repo.FindPage(offset, limit)
	if err != nil {
		s.logger.Error("Failed to list movies: " + err.Error())
		return nil, 0, err
	}

	total, err := s.repo.Count()
	if err != nil {
		s.logger.Error("Failed to count movies: " + err.Error())
		return nil, 0, err
	}

	return movies, total, nil
}

func (s *service) GenreSpace() (*GenreSpace, error) {
	// The catalog is static for the process lifetime, so the pivot is
	// computed once and shared by all readers.
	s.genreOnce.Do(func() {
		movies, err := s.repo.FindAll()
		if err != nil {
			s.genreErr = fmt.Errorf("failed to load catalog for genre space: %w", err)
			return
		}
		s.genreSpace = BuildGenreSpace(movies)
		s.logger.Info(fmt.Sprintf("Genre space built: %d movies, %d genres", s.genreSpace.Size(), s.genreSpace.Dim()))
	})

	if s.genreErr != nil {
		return nil, s.genreErr
	}
	return s.genreSpace, nil
}
