package link

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for external id resolution
type Handler struct {
	service Service
}

// NewHandler creates a new link handler
func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// GetLinks handles resolving external ids for a movie
func (h *Handler) GetLinks(c *gin.Context) {
	movieID, err := strconv.ParseInt(c.Param("movieId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid movie ID"})
		return
	}

	imdbID, err := h.service.ResolveImdbID(movieID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Links not found"})
		return
	}

	tmdbID, _ := h.service.ResolveTmdbID(movieID)

	c.JSON(http.StatusOK, LinkResponse{
		MovieID: movieID,
		ImdbID:  imdbID,
		TmdbID:  tmdbID,
	})
}

// RegisterRoutes registers all link routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/links/:movieId", h.GetLinks)
}
