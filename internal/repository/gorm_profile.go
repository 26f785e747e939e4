package repository

import (
	"fmt"

	profilePkg "github.com/reelrec/movies-backend/internal/profile"
	"github.com/reelrec/movies-backend/pkg/logger"
	"gorm.io/gorm"
)

// gormProfileRepository implements the profile.Repository interface with GORM optimizations
type gormProfileRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewGORMProfileRepository creates a new GORM-based profile repository
func NewGORMProfileRepository(db *gorm.DB, log *logger.Logger) profilePkg.Repository {
	return &gormProfileRepository{
		db:     db,
		logger: log.WithComponent("gorm-profile-repository"),
	}
}

func (r *gormProfileRepository) FindByID(userID int64) (*profilePkg.UserProfile, error) {
	var profile profilePkg.UserProfile

	err := r.db.First(&profile, "user_id = ?", userID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("profile not found")
		}

		r.logger.Error("Repository error")
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &profile, nil
}

func (r *gormProfileRepository) FindAll() ([]profilePkg.UserProfile, error) {
	var profiles []profilePkg.UserProfile

	err := r.db.Order("user_id").Find(&profiles).Error
	if err != nil {
		r.logger.Error("Repository error")
		return nil, fmt.Errorf("database error: %w", err)
	}

	return profiles, nil
}

func (r *gormProfileRepository) ReplaceAll(profiles []profilePkg.UserProfile) error {
	r.logger.Info("Repository operation")

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&profilePkg.UserProfile{}).Error; err != nil {
			return err
		}
		if len(profiles) == 0 {
			return nil
		}
		return tx.CreateInBatches(profiles, 500).Error
	})

	if err != nil {
		r.logger.Error("Repository error")
		return fmt.Errorf("failed to replace profiles: %w", err)
	}

	return nil
}

func (r *gormProfileRepository) Count() (int64, error) {
	var count int64

	err := r.db.Model(&profilePkg.UserProfile{}).Count(&count).Error
	if err != nil {
		r.logger.Error("Repository error")
		return 0, fmt.Errorf("database error: %w", err)
	}

	return count, nil
}
