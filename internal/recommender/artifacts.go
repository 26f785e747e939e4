package recommender

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Artifact names used with the ArtifactStore
const (
	ArtifactMF      = "cmf_model"
	ArtifactUserKNN = "cmf_user_knn"
	ArtifactItemKNN = "cmf_item_knn"
	ArtifactRanking = "ranking_model"
)

// ArtifactStore persists trained model blobs. The core treats the bytes
// as opaque; encoding lives entirely on this side of the boundary.
type ArtifactStore interface {
	Save(name string, blob []byte) error
	Load(name string) ([]byte, error)
}

// FileArtifactStore stores artifacts as files in a directory
type FileArtifactStore struct {
	dir string
}

// NewFileArtifactStore creates a filesystem-backed artifact store
func NewFileArtifactStore(dir string) (*FileArtifactStore, error) {
	if dir == "" {
		dir = "./artifacts"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &FileArtifactStore{dir: dir}, nil
}

func (s *FileArtifactStore) Save(name string, blob []byte) error {
	path := filepath.Join(s.dir, name+".gob")
	// Write to a temp file first so readers never observe a partial blob
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to finalize artifact %s: %w", name, err)
	}
	return nil
}

func (s *FileArtifactStore) Load(name string) ([]byte, error) {
	blob, err := os.ReadFile(filepath.Join(s.dir, name+".gob"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ArtifactMissingError("artifact %s not found", name)
		}
		return nil, fmt.Errorf("failed to read artifact %s: %w", name, err)
	}
	return blob, nil
}

// ArtifactSet is the complete trained artifact bundle served at request
// time: the MF model, both neighbor indexes, and the ranking model with
// its frozen scaler. All four must exist and carry the same version tag.
type ArtifactSet struct {
	MF      *MFModel
	UserKNN *NeighborIndex
	ItemKNN *NeighborIndex
	Ranking *RankingModel

	Version string
}

// Validate checks presence and version consistency of the bundle.
// An index built from a stale embedding produces silently wrong
// neighbors, so a version mismatch is refused outright.
func (s *ArtifactSet) Validate() error {
	if s.MF == nil {
		return ArtifactMissingError("matrix factorization model is missing")
	}
	if s.UserKNN == nil || s.ItemKNN == nil {
		return ArtifactMissingError("neighbor index is missing")
	}
	if s.Ranking == nil {
		return ArtifactMissingError("ranking model is missing")
	}
	if s.Ranking.Scaler == nil {
		return ArtifactMissingError("feature scaler is missing")
	}

	if s.MF.Version != s.Version ||
		s.UserKNN.Version != s.Version ||
		s.ItemKNN.Version != s.Version ||
		s.Ranking.Version != s.Version {
		return VersionMismatchError(
			"artifact versions diverge: set=%s mf=%s user_knn=%s item_knn=%s ranking=%s",
			s.Version, s.MF.Version, s.UserKNN.Version, s.ItemKNN.Version, s.Ranking.Version)
	}
	return nil
}

// Provider hands out the currently served artifact set and swaps in a
// new one atomically after a successful training run. Reads are cheap
// and concurrent; a failed training run never disturbs the served set.
type Provider struct {
	mu      sync.RWMutex
	current *ArtifactSet
}

// NewProvider creates an empty artifact provider
func NewProvider() *Provider {
	return &Provider{}
}

// Current returns the served artifact set, or ARTIFACT_MISSING when no
// training run has completed yet
func (p *Provider) Current() (*ArtifactSet, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return nil, ArtifactMissingError("no trained artifacts are being served")
	}
	return p.current, nil
}

// RankingModel implements RankingProvider for the cold start engine
func (p *Provider) RankingModel() (*RankingModel, error) {
	set, err := p.Current()
	if err != nil {
		return nil, err
	}
	return set.Ranking, nil
}

// Swap validates the new set and makes it the served one. The previous
// set stays untouched if validation fails.
func (p *Provider) Swap(set *ArtifactSet) error {
	if err := set.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	p.current = set
	p.mu.Unlock()
	return nil
}

func encodeArtifact(value any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(value); err != nil {
		return nil, fmt.Errorf("failed to encode artifact: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeArtifact(blob []byte, value any) error {
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(value); err != nil {
		return fmt.Errorf("failed to decode artifact: %w", err)
	}
	return nil
}

// SaveArtifactSet persists every artifact of the set
func SaveArtifactSet(store ArtifactStore, set *ArtifactSet) error {
	if err := set.Validate(); err != nil {
		return err
	}

	artifacts := map[string]any{
		ArtifactMF:      set.MF,
		ArtifactUserKNN: set.UserKNN,
		ArtifactItemKNN: set.ItemKNN,
		ArtifactRanking: set.Ranking,
	}
	for name, value := range artifacts {
		blob, err := encodeArtifact(value)
		if err != nil {
			return err
		}
		if err := store.Save(name, blob); err != nil {
			return err
		}
	}
	return nil
}

// LoadArtifactSet restores a previously persisted artifact set and
// validates it before returning
func LoadArtifactSet(store ArtifactStore) (*ArtifactSet, error) {
	var mf MFModel
	blob, err := store.Load(ArtifactMF)
	if err != nil {
		return nil, err
	}
	if err := decodeArtifact(blob, &mf); err != nil {
		return nil, err
	}

	var userKNN NeighborIndex
	if blob, err = store.Load(ArtifactUserKNN); err != nil {
		return nil, err
	}
	if err := decodeArtifact(blob, &userKNN); err != nil {
		return nil, err
	}

	var itemKNN NeighborIndex
	if blob, err = store.Load(ArtifactItemKNN); err != nil {
		return nil, err
	}
	if err := decodeArtifact(blob, &itemKNN); err != nil {
		return nil, err
	}

	var ranking RankingModel
	if blob, err = store.Load(ArtifactRanking); err != nil {
		return nil, err
	}
	if err := decodeArtifact(blob, &ranking); err != nil {
		return nil, err
	}

	set := &ArtifactSet{
		MF:      &mf,
		UserKNN: &userKNN,
		ItemKNN: &itemKNN,
		Ranking: &ranking,
		Version: mf.Version,
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}
