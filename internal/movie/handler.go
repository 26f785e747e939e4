package movie

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/reelrec/movies-backend/internal/utils"
)

// Handler handles HTTP requests for catalog operations
type Handler struct {
	service Service
}

// NewHandler creates a new movie handler
func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// GetMovie handles fetching a single catalog entry
func (h *Handler) GetMovie(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid movie ID"})
		return
	}

	movie, err := h.service.GetMovie(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Movie not found"})
		return
	}

	c.JSON(http.StatusOK, movie.ToResponse())
}

// ListMovies handles paginated catalog listing
func (h *Handler) ListMovies(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}

	movies, total, err := h.service.ListMovies(page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list movies"})
		return
	}

	responses := make([]*MovieResponse, 0, len(movies))
	for _, m := range movies {
		responses = append(responses, m.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"movies":     responses,
		"pagination": utils.CalculatePagination(total, page, limit),
	})
}

// GetGenres handles fetching the genre vocabulary
func (h *Handler) GetGenres(c *gin.Context) {
	space, err := h.service.GenreSpace()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build genre space"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"genres": space.Genres()})
}

// RegisterRoutes registers all movie routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	movies := router.Group("/movies")
	{
		movies.GET("", h.ListMovies)
		movies.GET("/:id", h.GetMovie)
	}
	router.GET("/genres", h.GetGenres)
}
