package movie

import (
	"math/rand"
	"sort"
	"strings"
)

// NoGenresSentinel marks catalog entries without genre information.
// It is excluded from the genre vocabulary.
const NoGenresSentinel = "(no genres listed)"

// GenreSpace maps each movie to a binary vector over the catalog's genre
// vocabulary. It is derived once from the catalog and read-only afterwards.
type GenreSpace struct {
	vocab   []string
	ids     []int64
	vectors map[int64][]float64
}

// BuildGenreSpace derives the genre vector space from the full catalog.
// The vocabulary is the sorted set of genres seen across all movies,
// excluding the "(no genres listed)" sentinel.
func BuildGenreSpace(movies []*Movie) *GenreSpace {
	vocabSet := make(map[string]bool)
	for _, m := range movies {
		for _, g := range splitGenres(m.Genres) {
			vocabSet[g] = true
		}
	}

	vocab := make([]string, 0, len(vocabSet))
	for g := range vocabSet {
		vocab = append(vocab, g)
	}
	sort.Strings(vocab)

	position := make(map[string]int, len(vocab))
	for i, g := range vocab {
		position[g] = i
	}

	ids := make([]int64, 0, len(movies))
	vectors := make(map[int64][]float64, len(movies))
	for _, m := range movies {
		vector := make([]float64, len(vocab))
		for _, g := range splitGenres(m.Genres) {
			vector[position[g]] = 1
		}
		ids = append(ids, m.MovieID)
		vectors[m.MovieID] = vector
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return &GenreSpace{
		vocab:   vocab,
		ids:     ids,
		vectors: vectors,
	}
}

func splitGenres(genres string) []string {
	var out []string
	for _, g := range strings.Split(genres, "|") {
		g = strings.TrimSpace(g)
		if g == "" || g == NoGenresSentinel {
			continue
		}
		out = append(out, g)
	}
	return out
}

// Genres returns the genre vocabulary in vector order
func (s *GenreSpace) Genres() []string {
	return s.vocab
}

// Dim returns the vocabulary size
func (s *GenreSpace) Dim() int {
	return len(s.vocab)
}

// Size returns the number of movies in the space
func (s *GenreSpace) Size() int {
	return len(s.ids)
}

// Vector returns the genre vector for a movie id
func (s *GenreSpace) Vector(movieID int64) ([]float64, bool) {
	v, ok := s.vectors[movieID]
	return v, ok
}

// IDs returns all movie ids in ascending order
func (s *GenreSpace) IDs() []int64 {
	return s.ids
}

// ShuffledIDs returns all movie ids in randomized order. Each call
// produces a fresh permutation for tie-breaking diversity.
func (s *GenreSpace) ShuffledIDs(rng *rand.Rand) []int64 {
	shuffled := make([]int64, len(s.ids))
	copy(shuffled, s.ids)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// Sample returns n random movie ids with their genre vectors, without
// replacement. When n exceeds the catalog size the whole catalog is returned.
func (s *GenreSpace) Sample(n int, rng *rand.Rand) ([]int64, [][]float64) {
	shuffled := s.ShuffledIDs(rng)
	if n > len(shuffled) {
		n = len(shuffled)
	}

	ids := shuffled[:n]
	vectors := make([][]float64, n)
	for i, id := range ids {
		vectors[i] = s.vectors[id]
	}
	return ids, vectors
}
