package repository

import (
	"fmt"

	moviePkg "github.com/reelrec/movies-backend/internal/movie"
	"github.com/reelrec/movies-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormMovieRepository implements the movie.Repository interface with GORM optimizations
type gormMovieRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewGORMMovieRepository creates a new GORM-based movie repository
func NewGORMMovieRepository(db *gorm.DB, log *logger.Logger) moviePkg.Repository {
	return &gormMovieRepository{
		db:     db,
		logger: log.WithComponent("gorm-movie-repository"),
	}
}

func (r *gormMovieRepository) Create(movie *moviePkg.Movie) error {
	if err := r.db.Create(movie).Error; err != nil {
		r.logger.Error("Repository error")
		return fmt.Errorf("failed to create movie: %w", err)
	}

	return nil
}

func (r *gormMovieRepository) CreateBatch(movies []moviePkg.Movie) error {
	if len(movies) == 0 {
		return nil
	}

	// Idempotent catalog import: re-seeding the same file is a no-op
	err := r.db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(movies, 500).Error
	if err != nil {
		r.logger.Error("Repository error")
		return fmt.Errorf("failed to create movies: %w", err)
	}

	return nil
}

func (r *gormMovieRepository) FindByID(movieID int64) (*moviePkg.Movie, error) {
	var movie moviePkg.Movie

	err := r.db.First(&movie, "movie_id = ?", movieID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("movie not found")
		}

		r.logger.Error("Repository error")
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &movie, nil
}

func (r *gormMovieRepository) FindAll() ([]*moviePkg.Movie, error) {
	var movies []*moviePkg.Movie

	err := r.db.Order("movie_id").Find(&movies).Error
	if err != nil {
		r.logger.Error("Repository error")
		return nil, fmt.Errorf("database error: %w", err)
	}

	return movies, nil
}

func (r *gormMovieRepository) FindPage(offset, limit int) ([]*moviePkg.Movie, error) {
	var movies []*moviePkg.Movie

	err := r.db.Order("movie_id").Offset(offset).Limit(limit).Find(&movies).Error
	if err != nil {
		r.logger.Error("Repository error")
		return nil, fmt.Errorf("database error: %w", err)
	}

	return movies, nil
}

func (r *gormMovieRepository) Count() (int64, error) {
	var count int64

	err := r.db.Model(&moviePkg.Movie{}).Count(&count).Error
	if err != nil {
		r.logger.Error("Repository error")
		return 0, fmt.Errorf("database error: %w", err)
	}

	return count, nil
}
