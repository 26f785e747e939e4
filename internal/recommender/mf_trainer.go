package recommender

import (
	"math"
	"math/rand"
	"sort"
)

// Hyperparameter grid searched on every retrain. The cross product is
// small and fixed; the best combination is selected by in-sample MSE on
// the full training set, matching the offline job this replaces. This is
// a fit-quality selection, not held-out validation, and is preserved
// deliberately (see DESIGN.md).
var (
	mfFactorGrid = []int{5, 10, 25, 40, 60}
	mfLambdaGrid = []float64{0.001, 0.01, 0.1, 1, 10}
)

// MFTrainOptions control a single factorization fit
type MFTrainOptions struct {
	Factors      int
	Lambda       float64
	LearningRate float64
	Epochs       int
	Seed         int64
}

func (o *MFTrainOptions) defaults() {
	if o.Factors <= 0 {
		o.Factors = 10
	}
	if o.LearningRate <= 0 {
		o.LearningRate = 0.005
	}
	if o.Epochs <= 0 {
		o.Epochs = 30
	}
}

// TrainMF fits a biased matrix factorization to the rating events with
// regularized SGD. Initialization and sample order are seeded, so a fit
// is reproducible for a given option set.
func TrainMF(ratings []Rating, opts MFTrainOptions) (*MFModel, error) {
	if len(ratings) == 0 {
		return nil, EmptyInputError("no ratings to train on")
	}
	opts.defaults()

	model := newMFModel(ratings, opts)
	rng := rand.New(rand.NewSource(opts.Seed))

	order := make([]int, len(ratings))
	for i := range order {
		order[i] = i
	}

	lr := opts.LearningRate
	reg := opts.Lambda
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		for _, idx := range order {
			r := ratings[idx]
			u := model.UserIndex[r.UserID]
			i := model.ItemIndex[r.MovieID]

			err := r.Rating - model.score(u, i)

			model.UserBias[u] += lr * (err - reg*model.UserBias[u])
			model.ItemBias[i] += lr * (err - reg*model.ItemBias[i])

			au := model.A[u]
			bi := model.B[i]
			for f := 0; f < opts.Factors; f++ {
				auf := au[f]
				au[f] += lr * (err*bi[f] - reg*auf)
				bi[f] += lr * (err*auf - reg*bi[f])
			}
		}
	}

	return model, nil
}

func newMFModel(ratings []Rating, opts MFTrainOptions) *MFModel {
	userIDs := distinctUserIDs(ratings)
	itemIDs := distinctItemIDs(ratings)

	userIndex := make(map[int64]int, len(userIDs))
	for i, id := range userIDs {
		userIndex[id] = i
	}
	itemIndex := make(map[int64]int, len(itemIDs))
	for i, id := range itemIDs {
		itemIndex[id] = i
	}

	var sum float64
	for _, r := range ratings {
		sum += r.Rating
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	scale := 1.0 / math.Sqrt(float64(opts.Factors))

	return &MFModel{
		Factors:    opts.Factors,
		Lambda:     opts.Lambda,
		GlobalMean: sum / float64(len(ratings)),
		A:          randomMatrix(rng, len(userIDs), opts.Factors, scale),
		B:          randomMatrix(rng, len(itemIDs), opts.Factors, scale),
		UserBias:   make([]float64, len(userIDs)),
		ItemBias:   make([]float64, len(itemIDs)),
		UserIndex:  userIndex,
		ItemIndex:  itemIndex,
		UserIDs:    userIDs,
		ItemIDs:    itemIDs,
	}
}

func randomMatrix(rng *rand.Rand, rows, cols int, scale float64) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		row := make([]float64, cols)
		for j := range row {
			row[j] = rng.NormFloat64() * scale
		}
		m[i] = row
	}
	return m
}

func distinctUserIDs(ratings []Rating) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, r := range ratings {
		if !seen[r.UserID] {
			seen[r.UserID] = true
			ids = append(ids, r.UserID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func distinctItemIDs(ratings []Rating) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, r := range ratings {
		if !seen[r.MovieID] {
			seen[r.MovieID] = true
			ids = append(ids, r.MovieID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// inSampleMSE computes the mean squared reconstruction error over the
// full training set
func inSampleMSE(model *MFModel, ratings []Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	var sum float64
	for _, r := range ratings {
		u := model.UserIndex[r.UserID]
		i := model.ItemIndex[r.MovieID]
		diff := r.Rating - model.score(u, i)
		sum += diff * diff
	}
	return sum / float64(len(ratings))
}

// SearchBestMF runs the hyperparameter grid search and returns the model
// with the lowest in-sample MSE
func SearchBestMF(ratings []Rating, seed int64, report func(factors int, lambda, mse float64)) (*MFModel, error) {
	if len(ratings) == 0 {
		return nil, EmptyInputError("no ratings to train on")
	}

	var best *MFModel
	bestScore := math.Inf(1)

	for _, k := range mfFactorGrid {
		for _, lambda := range mfLambdaGrid {
			model, err := TrainMF(ratings, MFTrainOptions{
				Factors: k,
				Lambda:  lambda,
				Seed:    seed,
			})
			if err != nil {
				return nil, err
			}

			score := inSampleMSE(model, ratings)
			if report != nil {
				report(k, lambda, score)
			}
			if score < bestScore {
				bestScore = score
				best = model
			}
		}
	}

	return best, nil
}
