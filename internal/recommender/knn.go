package recommender

import "sort"

// DefaultNeighborK is the neighbor count the indexes are built with
const DefaultNeighborK = 20

// NeighborIndex is an exhaustive cosine-metric nearest neighbor index
// over one of the MF model's embedding matrices. It is rebuilt in
// lockstep with every retrain and carries the embedding's version tag;
// serving an index against a different embedding version is a
// correctness bug and is refused upstream, not silently degraded.
type NeighborIndex struct {
	IDs   []int64
	Rows  [][]float64
	Index map[int64]int
	K     int

	Version string
}

// BuildNeighborIndex constructs an index over the given embedding rows.
// ids[i] is the raw id of rows[i]; version must be the version of the
// model the rows were taken from.
func BuildNeighborIndex(ids []int64, rows [][]float64, k int, version string) *NeighborIndex {
	if k <= 0 {
		k = DefaultNeighborK
	}

	index := make(map[int64]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	return &NeighborIndex{
		IDs:     ids,
		Rows:    rows,
		Index:   index,
		K:       k,
		Version: version,
	}
}

// Neighbors returns the K nearest rows to the given id by cosine
// distance, self excluded, ordered by similarity descending
func (idx *NeighborIndex) Neighbors(id int64) ([]Neighbor, error) {
	target, ok := idx.Index[id]
	if !ok {
		return nil, NotFoundError("id %d not found in neighbor index", id)
	}

	neighbors := make([]Neighbor, 0, len(idx.Rows)-1)
	for i, row := range idx.Rows {
		if i == target {
			continue
		}
		neighbors = append(neighbors, Neighbor{
			ID:         idx.IDs[i],
			Similarity: cosineSimilarity(idx.Rows[target], row),
		})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Similarity != neighbors[j].Similarity {
			return neighbors[i].Similarity > neighbors[j].Similarity
		}
		return neighbors[i].ID < neighbors[j].ID
	})

	if len(neighbors) > idx.K {
		neighbors = neighbors[:idx.K]
	}
	return neighbors, nil
}
