package recommender

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/reelrec/movies-backend/internal/movie"
	"github.com/reelrec/movies-backend/pkg/logger"
)

// DefaultScanThreshold is the similarity floor for exhaustive scans
const DefaultScanThreshold = 0.5

// service implements the Service interface
type service struct {
	orchestrator  *Orchestrator
	coldstart     *ColdStartEngine
	trainer       *Trainer
	artifacts     *Provider
	scanThreshold float64
	logger        *logger.Logger

	trainMu sync.Mutex
}

// NewService creates a new recommendation service
func NewService(
	artifacts *Provider,
	ratings RatingStore,
	profiles ProfileStore,
	space *movie.GenreSpace,
	store ArtifactStore,
	opts OrchestratorOptions,
	neighborK int,
	log *logger.Logger,
) Service {
	coldstart := NewColdStartEngine(space, artifacts, log)
	orchestrator := NewOrchestrator(artifacts, ratings, profiles, coldstart, space, opts, log)
	trainer := NewTrainer(ratings, profiles, space, store, artifacts, neighborK, log)

	scanThreshold := opts.ScanThreshold
	if scanThreshold <= 0 {
		scanThreshold = DefaultScanThreshold
	}

	return &service{
		orchestrator:  orchestrator,
		coldstart:     coldstart,
		trainer:       trainer,
		artifacts:     artifacts,
		scanThreshold: scanThreshold,
		logger:        log.WithComponent("recommender-service"),
	}
}

func (s *service) Recommend(userID int64, strategy Strategy, limit int) ([]Recommendation, error) {
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	recommendations, err := s.orchestrator.Recommend(userID, strategy, limit)
	if err != nil {
		s.logger.Error("Failed to recommend for user " + fmt.Sprintf("%d", userID) + " with strategy '" + string(strategy) + "': " + err.Error())
		return nil, err
	}
	if recommendations == nil {
		recommendations = make([]Recommendation, 0)
	}
	return recommendations, nil
}

func (s *service) SimilarMovies(movieID int64, mode SimilarityMode, threshold float64) ([]Neighbor, error) {
	set, err := s.artifacts.Current()
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModeScan:
		return set.MF.SimilarMovies(movieID, s.effectiveThreshold(threshold))
	case ModeIndex, "":
		return set.ItemKNN.Neighbors(movieID)
	default:
		return nil, InvalidInputError("unknown similarity mode %q", mode)
	}
}

func (s *service) SimilarUsers(userID int64, mode SimilarityMode, threshold float64) ([]Neighbor, error) {
	set, err := s.artifacts.Current()
	if err != nil {
		return nil, err
	}

	switch mode {
	case ModeScan:
		return set.MF.SimilarUsers(userID, s.effectiveThreshold(threshold))
	case ModeIndex, "":
		return set.UserKNN.Neighbors(userID)
	default:
		return nil, InvalidInputError("unknown similarity mode %q", mode)
	}
}

// effectiveThreshold substitutes the configured scan floor when the
// request did not carry a threshold of its own
func (s *service) effectiveThreshold(threshold float64) float64 {
	if math.IsNaN(threshold) {
		return s.scanThreshold
	}
	return threshold
}

func (s *service) PredictRating(userID, movieID int64) (float64, error) {
	set, err := s.artifacts.Current()
	if err != nil {
		return 0, err
	}
	return set.MF.Predict(userID, movieID)
}

func (s *service) RecommendFromGenres(likedIDs []int64, topN int) ([]Recommendation, error) {
	if topN <= 0 {
		topN = s.orchestrator.coldStartTopN
	}
	return s.coldstart.RecommendFromLiked(likedIDs, topN, s.orchestrator.coldStartThreshold)
}

func (s *service) RecommendForNewUser(newRatings []Rating) ([]Recommendation, error) {
	return s.coldstart.RecommendForNewUser(newRatings, s.orchestrator.sampleSize)
}

func (s *service) PreferenceVector(likedIDs []int64, scores []float64) ([]GenreScore, error) {
	return s.coldstart.UserPreferenceVector(likedIDs, scores)
}

func (s *service) ArtifactVersion() (string, error) {
	set, err := s.artifacts.Current()
	if err != nil {
		return "", err
	}
	return set.Version, nil
}

// Train runs one batch training pass. Concurrent calls are serialized;
// the provider keeps serving the previous artifacts throughout.
func (s *service) Train(ctx context.Context) error {
	s.trainMu.Lock()
	defer s.trainMu.Unlock()
	return s.trainer.Train(ctx)
}
