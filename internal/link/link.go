package link

import "strings"

// Link maps a catalog movie id to external catalog identifiers
type Link struct {
	MovieID int64  `json:"movie_id" gorm:"primaryKey;autoIncrement:false"`
	ImdbID  string `json:"imdb_id" gorm:"size:20"`
	TmdbID  int64  `json:"tmdb_id"`
}

// TableName returns the table name for GORM
func (Link) TableName() string {
	return "links"
}

// Repository defines the interface for link data access
type Repository interface {
	CreateBatch(links []Link) error
	FindByMovieID(movieID int64) (*Link, error)
}

// Service defines the interface for external id resolution
type Service interface {
	ResolveImdbID(movieID int64) (string, error)
	ResolveTmdbID(movieID int64) (int64, error)
}

// FormatImdbID renders a raw numeric IMDb id in the canonical
// "tt" + zero-padded-to-7-digits form.
func FormatImdbID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if len(raw) < 7 {
		raw = strings.Repeat("0", 7-len(raw)) + raw
	}
	return "tt" + raw
}

// LinkResponse represents resolved external ids in API responses
type LinkResponse struct {
	MovieID int64  `json:"movie_id"`
	ImdbID  string `json:"imdb_id"`
	TmdbID  int64  `json:"tmdb_id"`
}

// ToResponse converts Link to LinkResponse with the IMDb id formatted
func (l *Link) ToResponse() *LinkResponse {
	return &LinkResponse{
		MovieID: l.MovieID,
		ImdbID:  FormatImdbID(l.ImdbID),
		TmdbID:  l.TmdbID,
	}
}
