package recommender

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticRatings generates a small rating set with planted structure:
// even users like even movies and dislike odd ones, odd users the reverse.
func syntheticRatings(users, movies int, seed int64) []Rating {
	rng := rand.New(rand.NewSource(seed))

	var ratings []Rating
	for u := 1; u <= users; u++ {
		for i := 1; i <= movies; i++ {
			if rng.Float64() < 0.3 {
				continue
			}
			score := 2.0
			if (u+i)%2 == 0 {
				score = 4.5
			}
			ratings = append(ratings, Rating{
				UserID:    int64(u),
				MovieID:   int64(i),
				Rating:    score,
				Timestamp: int64(u*1000 + i),
			})
		}
	}
	return ratings
}

func TestTrainMF(t *testing.T) {
	ratings := syntheticRatings(12, 15, 1)

	t.Run("Fit beats the global mean baseline", func(t *testing.T) {
		model, err := TrainMF(ratings, MFTrainOptions{Factors: 5, Lambda: 0.01, Seed: 1})
		require.NoError(t, err)

		// Baseline MSE of predicting the global mean everywhere
		var baseline float64
		for _, r := range ratings {
			diff := r.Rating - model.GlobalMean
			baseline += diff * diff
		}
		baseline /= float64(len(ratings))

		assert.Less(t, inSampleMSE(model, ratings), baseline)
	})

	t.Run("Deterministic for a fixed seed", func(t *testing.T) {
		a, err := TrainMF(ratings, MFTrainOptions{Factors: 5, Lambda: 0.01, Seed: 7})
		require.NoError(t, err)
		b, err := TrainMF(ratings, MFTrainOptions{Factors: 5, Lambda: 0.01, Seed: 7})
		require.NoError(t, err)

		assert.Equal(t, a.A, b.A)
		assert.Equal(t, a.B, b.B)
		assert.Equal(t, a.UserBias, b.UserBias)
	})

	t.Run("Id mappings are sorted and complete", func(t *testing.T) {
		model, err := TrainMF(ratings, MFTrainOptions{Factors: 5, Lambda: 0.01, Seed: 1})
		require.NoError(t, err)

		assert.Len(t, model.UserIDs, 12)
		assert.Len(t, model.ItemIDs, 15)
		assert.IsIncreasing(t, model.UserIDs)
		assert.IsIncreasing(t, model.ItemIDs)
		for i, id := range model.UserIDs {
			assert.Equal(t, i, model.UserIndex[id])
		}
	})

	t.Run("Empty input", func(t *testing.T) {
		_, err := TrainMF(nil, MFTrainOptions{})
		require.Error(t, err)
		assert.True(t, IsEmptyInput(err))
	})

	t.Run("Retraining on a superset never loses known ids", func(t *testing.T) {
		base, err := TrainMF(ratings, MFTrainOptions{Factors: 5, Lambda: 0.01, Seed: 1})
		require.NoError(t, err)

		// Grow the set: new events for existing pairs plus a brand-new
		// user and a brand-new movie
		grown := append(append([]Rating{}, ratings...),
			Rating{UserID: 1, MovieID: 2, Rating: 3.0, Timestamp: 99999},
			Rating{UserID: 100, MovieID: 3, Rating: 4.5, Timestamp: 99999},
			Rating{UserID: 2, MovieID: 500, Rating: 2.0, Timestamp: 99999},
		)
		retrained, err := TrainMF(grown, MFTrainOptions{Factors: 5, Lambda: 0.01, Seed: 1})
		require.NoError(t, err)

		assert.Subset(t, retrained.UserIDs, base.UserIDs)
		assert.Subset(t, retrained.ItemIDs, base.ItemIDs)
		assert.Contains(t, retrained.UserIDs, int64(100))
		assert.Contains(t, retrained.ItemIDs, int64(500))
		for _, id := range base.UserIDs {
			_, ok := retrained.UserIndex[id]
			assert.True(t, ok)
		}
		for _, id := range base.ItemIDs {
			_, ok := retrained.ItemIndex[id]
			assert.True(t, ok)
		}
	})
}

func TestSearchBestMF(t *testing.T) {
	ratings := syntheticRatings(8, 10, 2)

	t.Run("Visits the full grid and picks the best MSE", func(t *testing.T) {
		type gridPoint struct {
			factors int
			lambda  float64
		}
		visited := make(map[gridPoint]float64)
		bestReported := -1.0

		model, err := SearchBestMF(ratings, 3, func(factors int, lambda, mse float64) {
			visited[gridPoint{factors, lambda}] = mse
			if bestReported < 0 || mse < bestReported {
				bestReported = mse
			}
		})

		require.NoError(t, err)
		require.NotNil(t, model)
		assert.Len(t, visited, 25)
		assert.InDelta(t, bestReported, inSampleMSE(model, ratings), 1e-9)
		assert.Contains(t, mfFactorGrid, model.Factors)
		assert.Contains(t, mfLambdaGrid, model.Lambda)
	})

	t.Run("Empty input", func(t *testing.T) {
		_, err := SearchBestMF(nil, 1, nil)
		require.Error(t, err)
		assert.True(t, IsEmptyInput(err))
	})
}
