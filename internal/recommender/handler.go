package recommender

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for recommendation operations
type Handler struct {
	service Service
}

// NewHandler creates a new recommendation handler
func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// GetRecommendations handles getting recommendations for a user
func (h *Handler) GetRecommendations(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
		return
	}

	strategy := Strategy(c.DefaultQuery("strategy", string(StrategyMFTopN)))

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 10
	}

	recommendations, err := h.service.Recommend(userID, strategy, limit)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":         userID,
		"strategy":        strategy,
		"recommendations": recommendations,
		"count":           len(recommendations),
	})
}

// GetSimilarMovies handles movie similarity lookups
func (h *Handler) GetSimilarMovies(c *gin.Context) {
	movieID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid movie ID"})
		return
	}

	mode, threshold, err := similarityParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	neighbors, err := h.service.SimilarMovies(movieID, mode, threshold)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"movie_id":  movieID,
		"neighbors": neighbors,
		"count":     len(neighbors),
	})
}

// GetSimilarUsers handles user similarity lookups
func (h *Handler) GetSimilarUsers(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	mode, threshold, err := similarityParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	neighbors, err := h.service.SimilarUsers(userID, mode, threshold)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":   userID,
		"neighbors": neighbors,
		"count":     len(neighbors),
	})
}

// PredictRating handles single (user, movie) rating prediction
func (h *Handler) PredictRating(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
		return
	}
	movieID, err := strconv.ParseInt(c.Query("movie_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid movie_id"})
		return
	}

	score, err := h.service.PredictRating(userID, movieID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":  userID,
		"movie_id": movieID,
		"score":    score,
	})
}

// GenreColdStartRequest carries the liked movies of a brand-new user
type GenreColdStartRequest struct {
	LikedMovieIDs []int64 `json:"liked_movie_ids" binding:"required"`
	TopN          int     `json:"top_n"`
}

// ColdStartFromGenres handles genre-similarity cold-start requests
func (h *Handler) ColdStartFromGenres(c *gin.Context) {
	var req GenreColdStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	recommendations, err := h.service.RecommendFromGenres(req.LikedMovieIDs, req.TopN)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recommendations": recommendations,
		"count":           len(recommendations),
	})
}

// ColdStartRatingEntry is one fresh rating from a user not yet in the model
type ColdStartRatingEntry struct {
	MovieID int64   `json:"movie_id" binding:"required"`
	Rating  float64 `json:"rating" binding:"required"`
}

// RankingColdStartRequest carries the first ratings of a new user
type RankingColdStartRequest struct {
	Ratings []ColdStartRatingEntry `json:"ratings" binding:"required"`
}

// ColdStartFromRatings handles ranking-model cold-start requests
func (h *Handler) ColdStartFromRatings(c *gin.Context) {
	var req RankingColdStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	// The synthetic profile's hour-of-day feature comes from the rating
	// timestamps, so fresh session ratings are stamped on arrival
	now := time.Now().UTC().Unix()
	ratings := make([]Rating, 0, len(req.Ratings))
	for _, r := range req.Ratings {
		ratings = append(ratings, Rating{MovieID: r.MovieID, Rating: r.Rating, Timestamp: now})
	}

	recommendations, err := h.service.RecommendForNewUser(ratings)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recommendations": recommendations,
		"count":           len(recommendations),
	})
}

// PreferenceVector handles genre preference profiling for a set of liked movies
func (h *Handler) PreferenceVector(c *gin.Context) {
	var req RankingColdStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	ids := make([]int64, 0, len(req.Ratings))
	scores := make([]float64, 0, len(req.Ratings))
	for _, r := range req.Ratings {
		ids = append(ids, r.MovieID)
		scores = append(scores, r.Rating)
	}

	preferences, err := h.service.PreferenceVector(ids, scores)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"preferences": preferences})
}

// Train triggers a synchronous batch training run
func (h *Handler) Train(c *gin.Context) {
	if err := h.service.Train(c.Request.Context()); err != nil {
		respondDomainError(c, err)
		return
	}

	version, err := h.service.ArtifactVersion()
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Training completed",
		"version": version,
	})
}

// GetModelVersion reports the currently served artifact version
func (h *Handler) GetModelVersion(c *gin.Context) {
	version, err := h.service.ArtifactVersion()
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"version": version})
}

// RegisterRoutes registers all recommendation routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/recommendations", h.GetRecommendations)
	router.GET("/movies/:id/similar", h.GetSimilarMovies)
	router.GET("/users/:id/similar", h.GetSimilarUsers)
	router.GET("/predict", h.PredictRating)

	coldstart := router.Group("/coldstart")
	{
		coldstart.POST("/genres", h.ColdStartFromGenres)
		coldstart.POST("/ranking", h.ColdStartFromRatings)
		coldstart.POST("/preferences", h.PreferenceVector)
	}

	admin := router.Group("/admin")
	{
		admin.POST("/train", h.Train)
		admin.GET("/model", h.GetModelVersion)
	}
}

func similarityParams(c *gin.Context) (SimilarityMode, float64, error) {
	mode := SimilarityMode(c.DefaultQuery("mode", string(ModeIndex)))

	// NaN tells the service to apply its configured scan floor
	threshold := math.NaN()
	if raw := c.Query("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < -1 || parsed > 1 {
			return "", 0, InvalidInputError("threshold must be a number in [-1, 1]")
		}
		threshold = parsed
	}

	return mode, threshold, nil
}

// respondDomainError maps domain error codes onto HTTP statuses
func respondDomainError(c *gin.Context, err error) {
	switch {
	case IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case IsEmptyInput(err), IsInvalidInput(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case IsConsistencyViolation(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case IsArtifactMissing(err), IsVersionMismatch(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
