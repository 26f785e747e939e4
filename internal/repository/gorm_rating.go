package repository

import (
	"fmt"

	ratingPkg "github.com/reelrec/movies-backend/internal/rating"
	"github.com/reelrec/movies-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormRatingRepository implements the rating.Repository interface with GORM optimizations
type gormRatingRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewGORMRatingRepository creates a new GORM-based rating repository
func NewGORMRatingRepository(db *gorm.DB, log *logger.Logger) ratingPkg.Repository {
	return &gormRatingRepository{
		db:     db,
		logger: log.WithComponent("gorm-rating-repository"),
	}
}

func (r *gormRatingRepository) Upsert(rating *ratingPkg.Rating) error {
	// Compound key (user_id, movie_id); conflicts overwrite score and timestamp
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "timestamp"}),
	}).Create(rating).Error

	if err != nil {
		r.logger.Error("Repository error")
		return fmt.Errorf("failed to upsert rating: %w", err)
	}

	return nil
}

func (r *gormRatingRepository) FindAll() ([]ratingPkg.Rating, error) {
	var ratings []ratingPkg.Rating

	err := r.db.Order("user_id, movie_id").Find(&ratings).Error
	if err != nil {
		r.logger.Error("Repository error")
		return nil, fmt.Errorf("database error: %w", err)
	}

	return ratings, nil
}

func (r *gormRatingRepository) FindByUser(userID int64) ([]ratingPkg.Rating, error) {
	var ratings []ratingPkg.Rating

	err := r.db.Where("user_id = ?", userID).Order("movie_id").Find(&ratings).Error
	if err != nil {
		r.logger.Error("Repository error")
		return nil, fmt.Errorf("database error: %w", err)
	}

	return ratings, nil
}

func (r *gormRatingRepository) FindByUserAndMovie(userID, movieID int64) (*ratingPkg.Rating, error) {
	var rating ratingPkg.Rating

	// Use compound primary key lookup for optimal performance
	err := r.db.Where("user_id = ? AND movie_id = ?", userID, movieID).First(&rating).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("rating not found")
		}

		r.logger.Error("Repository error")
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &rating, nil
}

func (r *gormRatingRepository) ReplaceAll(ratings []ratingPkg.Rating) error {
	r.logger.Info("Repository operation")

	// Full batch replace inside one transaction so readers never observe
	// a partially merged rating set
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&ratingPkg.Rating{}).Error; err != nil {
			return err
		}
		if len(ratings) == 0 {
			return nil
		}
		return tx.CreateInBatches(ratings, 500).Error
	})

	if err != nil {
		r.logger.Error("Repository error")
		return fmt.Errorf("failed to replace ratings: %w", err)
	}

	return nil
}

func (r *gormRatingRepository) Count() (int64, error) {
	var count int64

	err := r.db.Model(&ratingPkg.Rating{}).Count(&count).Error
	if err != nil {
		r.logger.Error("Repository error")
		return 0, fmt.Errorf("database error: %w", err)
	}

	return count, nil
}
