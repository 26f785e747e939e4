package recommender

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/reelrec/movies-backend/internal/movie"
	"github.com/reelrec/movies-backend/pkg/logger"
)

// Trainer runs the offline batch job: MF grid search, neighbor index
// builds, ranking model fit, artifact persistence and the final atomic
// swap. A failed run leaves the currently served artifacts untouched.
type Trainer struct {
	ratings  RatingStore
	profiles ProfileStore
	space    *movie.GenreSpace
	store    ArtifactStore
	provider *Provider
	logger   *logger.Logger

	neighborK int
}

// NewTrainer creates a training pipeline
func NewTrainer(
	ratings RatingStore,
	profiles ProfileStore,
	space *movie.GenreSpace,
	store ArtifactStore,
	provider *Provider,
	neighborK int,
	log *logger.Logger,
) *Trainer {
	if neighborK <= 0 {
		neighborK = DefaultNeighborK
	}
	return &Trainer{
		ratings:   ratings,
		profiles:  profiles,
		space:     space,
		store:     store,
		provider:  provider,
		logger:    log.WithComponent("trainer"),
		neighborK: neighborK,
	}
}

// Train executes one full batch run. The new artifact set becomes
// visible to readers only after every step has succeeded.
func (t *Trainer) Train(ctx context.Context) error {
	started := time.Now()
	version := uuid.New().String()
	t.logger.Info("Starting training run " + version)

	ratings, err := t.ratings.AllRatings()
	if err != nil {
		return fmt.Errorf("failed to load ratings: %w", err)
	}
	if len(ratings) == 0 {
		return EmptyInputError("no ratings available for training")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	t.logger.Info(fmt.Sprintf("Grid search over %d ratings", len(ratings)))
	mf, err := SearchBestMF(ratings, started.UnixNano(), func(factors int, lambda, mse float64) {
		t.logger.Info(fmt.Sprintf("Grid point k=%d lambda=%g: MSE %.4f", factors, lambda, mse))
	})
	if err != nil {
		return err
	}
	mf.Version = version
	t.logger.Info(fmt.Sprintf("Best model: k=%d lambda=%g", mf.Factors, mf.Lambda))

	if err := ctx.Err(); err != nil {
		return err
	}

	userKNN := BuildNeighborIndex(mf.UserIDs, mf.A, t.neighborK, version)
	itemKNN := BuildNeighborIndex(mf.ItemIDs, mf.B, t.neighborK, version)
	t.logger.Info(fmt.Sprintf("Neighbor indexes built: %d users, %d movies, K=%d",
		len(mf.UserIDs), len(mf.ItemIDs), t.neighborK))

	ranking, err := t.trainRanking(ratings, version)
	if err != nil {
		return err
	}

	set := &ArtifactSet{
		MF:      mf,
		UserKNN: userKNN,
		ItemKNN: itemKNN,
		Ranking: ranking,
		Version: version,
	}

	if err := SaveArtifactSet(t.store, set); err != nil {
		return fmt.Errorf("failed to persist artifacts: %w", err)
	}

	if err := t.provider.Swap(set); err != nil {
		return err
	}

	t.logger.Info(fmt.Sprintf("Training run %s complete in %s", version, time.Since(started).Round(time.Millisecond)))
	return nil
}

func (t *Trainer) trainRanking(ratings []Rating, version string) (*RankingModel, error) {
	profiles, err := t.profiles.All()
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	if len(profiles) == 0 {
		return nil, EmptyInputError("no user profiles available for ranking training")
	}

	byUser := make(map[int64]UserFeatures, len(profiles))
	userRows := make([][]float64, 0, len(profiles))
	for _, p := range profiles {
		byUser[p.UserID] = p
		userRows = append(userRows, []float64{p.AvgRating, p.AvgHour})
	}

	scaler := FitScaler(userRows)

	features := make([][]float64, 0, len(ratings))
	targets := make([]float64, 0, len(ratings))
	for _, r := range ratings {
		user, ok := byUser[r.UserID]
		if !ok {
			continue
		}
		vector, ok := t.space.Vector(r.MovieID)
		if !ok {
			continue
		}

		scaled := scaler.Transform([]float64{user.AvgRating, user.AvgHour})
		row := make([]float64, 0, len(scaled)+len(vector))
		row = append(row, scaled...)
		row = append(row, vector...)

		features = append(features, row)
		targets = append(targets, r.Rating)
	}

	t.logger.Info(fmt.Sprintf("Ranking training set: %d rows, %d features", len(features), 2+t.space.Dim()))

	model, err := TrainRankingModel(features, targets, RankingTrainOptions{})
	if err != nil {
		return nil, err
	}
	model.Scaler = scaler
	model.UserFeatureCount = 2
	model.GenreCount = t.space.Dim()
	model.Version = version
	return model, nil
}
