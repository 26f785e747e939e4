package recommender

import "sort"

// MFModel is the trained matrix factorization artifact: paired latent
// matrices A (users x k) and B (movies x k) with bias terms, plus the
// id-to-row mappings. Rebuilt wholesale on retrain, read-only at serve time.
type MFModel struct {
	Factors    int
	Lambda     float64
	GlobalMean float64

	A [][]float64
	B [][]float64

	UserBias []float64
	ItemBias []float64

	UserIndex map[int64]int
	ItemIndex map[int64]int
	UserIDs   []int64
	ItemIDs   []int64

	Version string
}

// Predict computes the model score for a (user, movie) pair
func (m *MFModel) Predict(userID, movieID int64) (float64, error) {
	u, ok := m.UserIndex[userID]
	if !ok {
		return 0, NotFoundError("user %d not found in model's user mapping", userID)
	}
	i, ok := m.ItemIndex[movieID]
	if !ok {
		return 0, NotFoundError("movie %d not found in model's item mapping", movieID)
	}
	return m.score(u, i), nil
}

func (m *MFModel) score(u, i int) float64 {
	return m.GlobalMean + m.UserBias[u] + m.ItemBias[i] + dotProduct(m.A[u], m.B[i])
}

// TopN returns the n highest-scoring movies for the user, excluding the
// given movie ids, ordered by score descending. Equal scores are broken
// by ascending movie id for determinism.
func (m *MFModel) TopN(userID int64, exclude []int64, n int) ([]Recommendation, error) {
	u, ok := m.UserIndex[userID]
	if !ok {
		return nil, NotFoundError("user %d not found in model's user mapping", userID)
	}
	if n <= 0 {
		n = 10
	}

	excluded := make(map[int64]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}

	scored := make([]Recommendation, 0, len(m.ItemIDs))
	for i, movieID := range m.ItemIDs {
		if excluded[movieID] {
			continue
		}
		scored = append(scored, Recommendation{MovieID: movieID, Score: m.score(u, i)})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].MovieID < scored[j].MovieID
	})

	if len(scored) > n {
		scored = scored[:n]
	}
	return scored, nil
}

// SimilarUsers scans all user embeddings for rows whose cosine similarity
// to the given user strictly exceeds the threshold, self excluded,
// ordered by similarity descending. This is the brute-force path; the
// NeighborIndex serves the accelerated one.
func (m *MFModel) SimilarUsers(userID int64, threshold float64) ([]Neighbor, error) {
	u, ok := m.UserIndex[userID]
	if !ok {
		return nil, NotFoundError("user %d not found in model's user mapping", userID)
	}
	return similarRows(m.A, m.UserIDs, u, threshold), nil
}

// SimilarMovies is the item-side counterpart of SimilarUsers
func (m *MFModel) SimilarMovies(movieID int64, threshold float64) ([]Neighbor, error) {
	i, ok := m.ItemIndex[movieID]
	if !ok {
		return nil, NotFoundError("movie %d not found in model's item mapping", movieID)
	}
	return similarRows(m.B, m.ItemIDs, i, threshold), nil
}

func similarRows(rows [][]float64, ids []int64, target int, threshold float64) []Neighbor {
	neighbors := make([]Neighbor, 0)
	for i, row := range rows {
		if i == target {
			continue
		}
		sim := cosineSimilarity(rows[target], row)
		if sim > threshold {
			neighbors = append(neighbors, Neighbor{ID: ids[i], Similarity: sim})
		}
	}
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Similarity != neighbors[j].Similarity {
			return neighbors[i].Similarity > neighbors[j].Similarity
		}
		return neighbors[i].ID < neighbors[j].ID
	})
	return neighbors
}
