package repository

import (
	"fmt"

	linkPkg "github.com/reelrec/movies-backend/internal/link"
	"github.com/reelrec/movies-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormLinkRepository implements the link.Repository interface
type gormLinkRepository struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewGORMLinkRepository creates a new GORM-based link repository
func NewGORMLinkRepository(db *gorm.DB, log *logger.Logger) linkPkg.Repository {
	return &gormLinkRepository{
		db:     db,
		logger: log.WithComponent("gorm-link-repository"),
	}
}

func (r *gormLinkRepository) CreateBatch(links []linkPkg.Link) error {
	if len(links) == 0 {
		return nil
	}

	err := r.db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(links, 500).Error
	if err != nil {
		r.logger.Error("Repository error")
		return fmt.Errorf("failed to create links: %w", err)
	}

	return nil
}

func (r *gormLinkRepository) FindByMovieID(movieID int64) (*linkPkg.Link, error) {
	var link linkPkg.Link

	err := r.db.First(&link, "movie_id = ?", movieID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("link not found")
		}

		r.logger.Error("Repository error")
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &link, nil
}
