package recommender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitScaler(t *testing.T) {
	t.Run("Column means and stds", func(t *testing.T) {
		scaler := FitScaler([][]float64{
			{1, 10},
			{3, 10},
		})

		require.Len(t, scaler.Mean, 2)
		assert.InDelta(t, 2.0, scaler.Mean[0], 1e-9)
		assert.InDelta(t, 10.0, scaler.Mean[1], 1e-9)
		assert.InDelta(t, 1.0, scaler.Std[0], 1e-9)
		// Constant column keeps std 1 so Transform stays defined
		assert.InDelta(t, 1.0, scaler.Std[1], 1e-9)
	})

	t.Run("Transform standardizes", func(t *testing.T) {
		scaler := FitScaler([][]float64{
			{1, 5},
			{3, 7},
		})

		out := scaler.Transform([]float64{3, 5})
		assert.InDelta(t, 1.0, out[0], 1e-9)
		assert.InDelta(t, -1.0, out[1], 1e-9)
	})
}

func TestTrainRankingModel(t *testing.T) {
	t.Run("Fits a simple signal", func(t *testing.T) {
		// Target depends on the first feature only
		var features [][]float64
		var targets []float64
		for i := 0; i < 60; i++ {
			x := float64(i % 6)
			features = append(features, []float64{x, float64(i % 3)})
			if x < 3 {
				targets = append(targets, 2.0)
			} else {
				targets = append(targets, 4.0)
			}
		}

		model, err := TrainRankingModel(features, targets, RankingTrainOptions{})
		require.NoError(t, err)
		require.NotEmpty(t, model.Trees)

		low := model.Score([]float64{1, 0})
		high := model.Score([]float64{5, 0})
		assert.Less(t, low, 3.0)
		assert.Greater(t, high, 3.0)
	})

	t.Run("Base score is the target mean", func(t *testing.T) {
		model, err := TrainRankingModel(
			[][]float64{{0}, {0}, {0}, {0}},
			[]float64{1, 2, 3, 4},
			RankingTrainOptions{NumTrees: 1},
		)
		require.NoError(t, err)
		assert.InDelta(t, 2.5, model.BaseScore, 1e-9)
	})

	t.Run("Empty input", func(t *testing.T) {
		_, err := TrainRankingModel(nil, nil, RankingTrainOptions{})
		require.Error(t, err)
		assert.True(t, IsEmptyInput(err))
	})

	t.Run("Mismatched lengths", func(t *testing.T) {
		_, err := TrainRankingModel([][]float64{{1}}, []float64{1, 2}, RankingTrainOptions{})
		require.Error(t, err)
	})
}

func TestRankingModel_Predict(t *testing.T) {
	// Model with no trees scores everything at BaseScore, which makes
	// ordering and exclusion observable without a real fit
	flat := &RankingModel{
		BaseScore:    3.0,
		LearningRate: 0.1,
		Scaler:       &StandardScaler{Mean: []float64{0, 0}, Std: []float64{1, 1}},
	}

	user := UserFeatures{UserID: 1, AvgRating: 4.0, AvgHour: 12}

	t.Run("Seen movies excluded and ties broken by id", func(t *testing.T) {
		out := flat.Predict(
			user,
			[]int64{30, 10, 20},
			[][]float64{{1}, {0}, {1}},
			[]int64{10},
		)

		require.Len(t, out, 2)
		assert.Equal(t, int64(20), out[0].MovieID)
		assert.Equal(t, int64(30), out[1].MovieID)
	})

	t.Run("Scaler is applied to user features only", func(t *testing.T) {
		// A single stump splitting on the scaled avg rating
		model := &RankingModel{
			BaseScore:    0,
			LearningRate: 1,
			Scaler:       &StandardScaler{Mean: []float64{3.0, 12.0}, Std: []float64{1.0, 6.0}},
			Trees: []*TreeNode{
				{
					Feature:   0,
					Threshold: 0,
					Left:      &TreeNode{Leaf: true, Value: 1},
					Right:     &TreeNode{Leaf: true, Value: 2},
				},
			},
		}

		// AvgRating 4.0 scales to +1.0, falling in the right branch
		out := model.Predict(UserFeatures{AvgRating: 4.0, AvgHour: 12}, []int64{1}, [][]float64{{0}}, nil)
		require.Len(t, out, 1)
		assert.InDelta(t, 2.0, out[0].Score, 1e-9)

		// AvgRating 2.0 scales to -1.0, falling in the left branch
		out = model.Predict(UserFeatures{AvgRating: 2.0, AvgHour: 12}, []int64{1}, [][]float64{{0}}, nil)
		require.Len(t, out, 1)
		assert.InDelta(t, 1.0, out[0].Score, 1e-9)
	})
}
