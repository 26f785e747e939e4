package rating

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/reelrec/movies-backend/internal/recommender"
)

// Handler handles HTTP requests for rating operations
type Handler struct {
	service Service
}

// NewHandler creates a new rating handler
func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RateMovie handles rating creation/update
func (h *Handler) RateMovie(c *gin.Context) {
	var req RateMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := h.service.RateMovie(req.UserID, req.MovieID, req.Rating)
	if err != nil {
		if recommender.IsInvalidInput(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store rating"})
		return
	}

	c.JSON(http.StatusOK, r.ToResponse())
}

// GetRating handles fetching a single rating
func (h *Handler) GetRating(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	movieID, err := strconv.ParseInt(c.Param("movieId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid movie ID"})
		return
	}

	r, err := h.service.GetRating(userID, movieID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rating not found"})
		return
	}

	c.JSON(http.StatusOK, r.ToResponse())
}

// MergeRatings handles batch-merging freshly collected ratings
func (h *Handler) MergeRatings(c *gin.Context) {
	var req MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	merged, err := h.service.MergeNewRatings(req.Ratings)
	if err != nil {
		switch {
		case recommender.IsEmptyInput(err), recommender.IsInvalidInput(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case recommender.IsConsistencyViolation(err):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to merge ratings"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"merged_total": merged})
}

// RegisterRoutes registers all rating routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	ratings := router.Group("/ratings")
	{
		ratings.POST("", h.RateMovie)
		ratings.POST("/merge", h.MergeRatings)
		ratings.GET("/:userId/:movieId", h.GetRating)
	}
}
