package profile

import (
	"sort"
	"time"

	"github.com/reelrec/movies-backend/internal/rating"
)

// UserProfile is the derived per-user aggregate used as the ranking
// model's user feature vector. It is rebuilt wholesale from the rating
// event log, never partially mutated.
type UserProfile struct {
	UserID    int64   `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	AvgRating float64 `json:"avg_rating" gorm:"not null"`
	AvgHour   float64 `json:"avg_hour" gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserProfile) TableName() string {
	return "user_profiles"
}

// Repository defines the interface for profile data access
type Repository interface {
	FindByID(userID int64) (*UserProfile, error)
	FindAll() ([]UserProfile, error)
	ReplaceAll(profiles []UserProfile) error
	Count() (int64, error)
}

// Service defines the interface for profile business logic
type Service interface {
	GetProfile(userID int64) (*UserProfile, error)
	AllProfiles() ([]UserProfile, error)

	// RebuildFrom recomputes all profiles from the given rating set as a
	// full batch replace and returns the new profile count.
	RebuildFrom(ratings []rating.Rating) (int, error)
}

// BuildProfiles groups rating events by user and computes the mean rating
// and mean hour-of-day. Hours are derived from the event timestamp in UTC
// so the feature is deterministic across environments. Profiles cover
// exactly the set of user ids present in the input, sorted by user id.
func BuildProfiles(ratings []rating.Rating) []UserProfile {
	type agg struct {
		ratingSum float64
		hourSum   float64
		count     int
	}
	byUser := make(map[int64]*agg)
	for _, r := range ratings {
		a, ok := byUser[r.UserID]
		if !ok {
			a = &agg{}
			byUser[r.UserID] = a
		}
		a.ratingSum += r.Rating
		a.hourSum += float64(time.Unix(r.Timestamp, 0).UTC().Hour())
		a.count++
	}

	profiles := make([]UserProfile, 0, len(byUser))
	for userID, a := range byUser {
		profiles = append(profiles, UserProfile{
			UserID:    userID,
			AvgRating: a.ratingSum / float64(a.count),
			AvgHour:   a.hourSum / float64(a.count),
		})
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].UserID < profiles[j].UserID })

	return profiles
}
