package movie

// Movie represents a catalog entry with its pipe-separated genre string
type Movie struct {
	MovieID int64  `json:"movie_id" gorm:"primaryKey;autoIncrement:false"`
	Title   string `json:"title" gorm:"size:500"`
	Genres  string `json:"genres" gorm:"size:500"`
}

// TableName returns the table name for GORM
func (Movie) TableName() string {
	return "movies"
}

// Repository defines the interface for movie data access
type Repository interface {
	Create(movie *Movie) error
	CreateBatch(movies []Movie) error
	FindByID(id int64) (*Movie, error)
	FindAll() ([]*Movie, error)
	FindPage(offset, limit int) ([]*Movie, error)
	Count() (int64, error)
}

// Service defines the interface for movie catalog business logic
type Service interface {
	GetMovie(id int64) (*Movie, error)
	ListMovies(page, limit int) ([]*Movie, int64, error)

	// GenreSpace returns the catalog's genre vector space, built once
	// from the full catalog and cached for the catalog's lifetime.
	GenreSpace() (*GenreSpace, error)
}

// MovieResponse represents a movie in API responses
type MovieResponse struct {
	MovieID int64  `json:"movie_id"`
	Title   string `json:"title"`
	Genres  string `json:"genres"`
}

// ToResponse converts Movie to MovieResponse
func (m *Movie) ToResponse() *MovieResponse {
	return &MovieResponse{
		MovieID: m.MovieID,
		Title:   m.Title,
		Genres:  m.Genres,
	}
}
