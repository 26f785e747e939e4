package profile

import (
	"errors"
	"testing"

	"github.com/reelrec/movies-backend/config"
	"github.com/reelrec/movies-backend/internal/rating"
	"github.com/reelrec/movies-backend/internal/recommender"
	"github.com/reelrec/movies-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProfiles(t *testing.T) {
	t.Run("Means per user", func(t *testing.T) {
		// 1970-01-01 03:00:00 UTC and 05:00:00 UTC
		ratings := []rating.Rating{
			{UserID: 1, MovieID: 10, Rating: 3.0, Timestamp: 3 * 3600},
			{UserID: 1, MovieID: 20, Rating: 5.0, Timestamp: 5 * 3600},
			{UserID: 2, MovieID: 10, Rating: 2.0, Timestamp: 12 * 3600},
		}

		profiles := BuildProfiles(ratings)

		require.Len(t, profiles, 2)
		assert.Equal(t, int64(1), profiles[0].UserID)
		assert.InDelta(t, 4.0, profiles[0].AvgRating, 1e-9)
		assert.InDelta(t, 4.0, profiles[0].AvgHour, 1e-9)
		assert.Equal(t, int64(2), profiles[1].UserID)
		assert.InDelta(t, 2.0, profiles[1].AvgRating, 1e-9)
		assert.InDelta(t, 12.0, profiles[1].AvgHour, 1e-9)
	})

	t.Run("Hour is taken in UTC", func(t *testing.T) {
		// 2019-06-01 23:30:00 UTC
		profiles := BuildProfiles([]rating.Rating{
			{UserID: 7, MovieID: 1, Rating: 4.0, Timestamp: 1559431800},
		})

		require.Len(t, profiles, 1)
		assert.InDelta(t, 23.0, profiles[0].AvgHour, 1e-9)
	})

	t.Run("Sorted by user id", func(t *testing.T) {
		profiles := BuildProfiles([]rating.Rating{
			{UserID: 9, MovieID: 1, Rating: 1.0},
			{UserID: 3, MovieID: 1, Rating: 1.0},
			{UserID: 5, MovieID: 1, Rating: 1.0},
		})

		require.Len(t, profiles, 3)
		assert.Equal(t, int64(3), profiles[0].UserID)
		assert.Equal(t, int64(5), profiles[1].UserID)
		assert.Equal(t, int64(9), profiles[2].UserID)
	})

	t.Run("Empty input", func(t *testing.T) {
		assert.Empty(t, BuildProfiles(nil))
	})
}

// mockRepository is an in-memory profile.Repository for service tests
type mockRepository struct {
	profiles   []UserProfile
	countErr   error
	replaceErr error
}

func (m *mockRepository) FindByID(userID int64) (*UserProfile, error) {
	for _, p := range m.profiles {
		if p.UserID == userID {
			found := p
			return &found, nil
		}
	}
	return nil, errors.New("profile not found")
}

func (m *mockRepository) FindAll() ([]UserProfile, error) {
	return m.profiles, nil
}

func (m *mockRepository) ReplaceAll(profiles []UserProfile) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.profiles = profiles
	return nil
}

func (m *mockRepository) Count() (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return int64(len(m.profiles)), nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(&config.LoggingConfig{Level: "info", Format: "console"})
	require.NoError(t, err)
	return log
}

func TestService_RebuildFrom(t *testing.T) {
	t.Run("Rebuild replaces stored profiles", func(t *testing.T) {
		repo := &mockRepository{profiles: []UserProfile{{UserID: 1, AvgRating: 2.0}}}
		svc := NewService(repo, testLogger(t))

		count, err := svc.RebuildFrom([]rating.Rating{
			{UserID: 1, MovieID: 10, Rating: 4.0},
			{UserID: 2, MovieID: 10, Rating: 3.0},
		})

		require.NoError(t, err)
		assert.Equal(t, 2, count)
		require.Len(t, repo.profiles, 2)
		assert.InDelta(t, 4.0, repo.profiles[0].AvgRating, 1e-9)
	})

	t.Run("Shrinking profile count is rejected", func(t *testing.T) {
		repo := &mockRepository{profiles: []UserProfile{
			{UserID: 1}, {UserID: 2}, {UserID: 3},
		}}
		svc := NewService(repo, testLogger(t))

		_, err := svc.RebuildFrom([]rating.Rating{
			{UserID: 1, MovieID: 10, Rating: 4.0},
		})

		require.Error(t, err)
		assert.True(t, recommender.IsConsistencyViolation(err))
		// Stored profiles stay untouched
		assert.Len(t, repo.profiles, 3)
	})
}

func TestService_GetProfile(t *testing.T) {
	repo := &mockRepository{profiles: []UserProfile{{UserID: 1, AvgRating: 3.5, AvgHour: 14}}}
	svc := NewService(repo, testLogger(t))

	t.Run("Existing profile", func(t *testing.T) {
		p, err := svc.GetProfile(1)
		require.NoError(t, err)
		assert.Equal(t, 3.5, p.AvgRating)
	})

	t.Run("Missing profile maps to NOT_FOUND", func(t *testing.T) {
		_, err := svc.GetProfile(42)
		require.Error(t, err)
		assert.True(t, recommender.IsNotFound(err))
	})
}
