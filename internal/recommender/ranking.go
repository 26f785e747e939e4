package recommender

import (
	"math"
	"sort"
)

// StandardScaler standardizes the user aggregate features. It is fit
// once at training time and frozen; inference must apply the exact
// statistics training was scaled with, so the scaler is persisted and
// version-tagged together with the model it belongs to.
type StandardScaler struct {
	Mean []float64
	Std  []float64
}

// FitScaler computes per-column mean and standard deviation
func FitScaler(rows [][]float64) *StandardScaler {
	if len(rows) == 0 {
		return &StandardScaler{}
	}

	cols := len(rows[0])
	mean := make([]float64, cols)
	std := make([]float64, cols)

	for _, row := range rows {
		for j, v := range row {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= float64(len(rows))
	}

	for _, row := range rows {
		for j, v := range row {
			d := v - mean[j]
			std[j] += d * d
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / float64(len(rows)))
		if std[j] == 0 {
			// Constant column: pass through unscaled rather than divide by zero
			std[j] = 1
		}
	}

	return &StandardScaler{Mean: mean, Std: std}
}

// Transform standardizes a single row with the frozen statistics
func (s *StandardScaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		if j < len(s.Mean) {
			out[j] = (v - s.Mean[j]) / s.Std[j]
		} else {
			out[j] = v
		}
	}
	return out
}

// TreeNode is one node of a regression tree. Exported fields keep the
// artifact gob-serializable.
type TreeNode struct {
	Leaf      bool
	Value     float64
	Feature   int
	Threshold float64
	Left      *TreeNode
	Right     *TreeNode
}

func (n *TreeNode) predict(x []float64) float64 {
	node := n
	for !node.Leaf {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

// RankingModel is a gradient-boosted regression forest over
// [scaled user aggregates, raw item genre vector] feature rows,
// trained with squared loss and shrinkage.
type RankingModel struct {
	BaseScore    float64
	LearningRate float64
	Trees        []*TreeNode
	Scaler       *StandardScaler

	UserFeatureCount int
	GenreCount       int

	Version string
}

// RankingTrainOptions control the boosting fit
type RankingTrainOptions struct {
	NumTrees     int
	MaxDepth     int
	MinLeaf      int
	LearningRate float64
}

func (o *RankingTrainOptions) defaults() {
	if o.NumTrees <= 0 {
		o.NumTrees = 50
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = 3
	}
	if o.MinLeaf <= 0 {
		o.MinLeaf = 5
	}
	if o.LearningRate <= 0 {
		o.LearningRate = 0.1
	}
}

// TrainRankingModel fits the boosted forest to pre-assembled feature
// rows. The rows must already be scaled; the caller attaches the frozen
// scaler to the returned model.
func TrainRankingModel(features [][]float64, targets []float64, opts RankingTrainOptions) (*RankingModel, error) {
	if len(features) == 0 || len(features) != len(targets) {
		return nil, EmptyInputError("ranking training needs matching feature and target rows, got %d and %d", len(features), len(targets))
	}
	opts.defaults()

	var base float64
	for _, t := range targets {
		base += t
	}
	base /= float64(len(targets))

	preds := make([]float64, len(targets))
	for i := range preds {
		preds[i] = base
	}

	indices := make([]int, len(targets))
	for i := range indices {
		indices[i] = i
	}

	residuals := make([]float64, len(targets))
	trees := make([]*TreeNode, 0, opts.NumTrees)
	for t := 0; t < opts.NumTrees; t++ {
		for i := range residuals {
			residuals[i] = targets[i] - preds[i]
		}

		tree := buildTree(features, residuals, indices, 0, opts.MaxDepth, opts.MinLeaf)
		trees = append(trees, tree)

		for i := range preds {
			preds[i] += opts.LearningRate * tree.predict(features[i])
		}
	}

	return &RankingModel{
		BaseScore:    base,
		LearningRate: opts.LearningRate,
		Trees:        trees,
	}, nil
}

func buildTree(features [][]float64, targets []float64, indices []int, depth, maxDepth, minLeaf int) *TreeNode {
	if depth >= maxDepth || len(indices) < 2*minLeaf {
		return leafNode(targets, indices)
	}

	feature, threshold, ok := bestSplit(features, targets, indices, minLeaf)
	if !ok {
		return leafNode(targets, indices)
	}

	var left, right []int
	for _, i := range indices {
		if features[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      buildTree(features, targets, left, depth+1, maxDepth, minLeaf),
		Right:     buildTree(features, targets, right, depth+1, maxDepth, minLeaf),
	}
}

func leafNode(targets []float64, indices []int) *TreeNode {
	var sum float64
	for _, i := range indices {
		sum += targets[i]
	}
	value := 0.0
	if len(indices) > 0 {
		value = sum / float64(len(indices))
	}
	return &TreeNode{Leaf: true, Value: value}
}

// bestSplit scans every feature for the threshold minimizing the summed
// squared error of the two children
func bestSplit(features [][]float64, targets []float64, indices []int, minLeaf int) (int, float64, bool) {
	bestFeature := -1
	bestThreshold := 0.0
	bestError := math.Inf(1)

	numFeatures := len(features[indices[0]])
	type sample struct {
		value  float64
		target float64
	}
	samples := make([]sample, len(indices))

	for f := 0; f < numFeatures; f++ {
		for i, idx := range indices {
			samples[i] = sample{value: features[idx][f], target: targets[idx]}
		}
		sort.Slice(samples, func(i, j int) bool { return samples[i].value < samples[j].value })

		var leftSum, leftSq float64
		var rightSum, rightSq float64
		for _, s := range samples {
			rightSum += s.target
			rightSq += s.target * s.target
		}

		n := len(samples)
		for p := 0; p < n-1; p++ {
			leftSum += samples[p].target
			leftSq += samples[p].target * samples[p].target
			rightSum -= samples[p].target
			rightSq -= samples[p].target * samples[p].target

			if samples[p].value == samples[p+1].value {
				continue
			}
			leftCount := p + 1
			rightCount := n - leftCount
			if leftCount < minLeaf || rightCount < minLeaf {
				continue
			}

			errLeft := leftSq - leftSum*leftSum/float64(leftCount)
			errRight := rightSq - rightSum*rightSum/float64(rightCount)
			if total := errLeft + errRight; total < bestError {
				bestError = total
				bestFeature = f
				bestThreshold = (samples[p].value + samples[p+1].value) / 2
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

// Score predicts the relevance of one already-assembled feature row
func (m *RankingModel) Score(row []float64) float64 {
	score := m.BaseScore
	for _, tree := range m.Trees {
		score += m.LearningRate * tree.predict(row)
	}
	return score
}

// Predict scores the candidate movies for a user profile and returns
// them ordered by score descending with seen movies excluded. The user
// aggregates pass through the frozen scaler; genre vectors stay raw.
func (m *RankingModel) Predict(user UserFeatures, candidateIDs []int64, candidateVectors [][]float64, seen []int64) []Recommendation {
	scaledUser := m.Scaler.Transform([]float64{user.AvgRating, user.AvgHour})

	seenSet := make(map[int64]bool, len(seen))
	for _, id := range seen {
		seenSet[id] = true
	}

	out := make([]Recommendation, 0, len(candidateIDs))
	for i, movieID := range candidateIDs {
		if seenSet[movieID] {
			continue
		}
		row := make([]float64, 0, len(scaledUser)+len(candidateVectors[i]))
		row = append(row, scaledUser...)
		row = append(row, candidateVectors[i]...)
		out = append(out, Recommendation{MovieID: movieID, Score: m.Score(row)})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].MovieID < out[j].MovieID
	})
	return out
}
