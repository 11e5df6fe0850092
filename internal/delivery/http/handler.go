package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nutriplan/backend/internal/domain"
	"github.com/nutriplan/backend/internal/usecase"
)

// maxImageBytes caps uploaded food photos at 8 MB.
const maxImageBytes = 8 << 20

// Handler holds dependencies for HTTP handlers
type Handler struct {
	session   *usecase.PlanSession
	foodLog   *usecase.FoodLogService
	favorites *usecase.FavoritesService
}

// NewHandler creates a new HTTP handler
func NewHandler(session *usecase.PlanSession, foodLog *usecase.FoodLogService, favorites *usecase.FavoritesService) *Handler {
	return &Handler{
		session:   session,
		foodLog:   foodLog,
		favorites: favorites,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "nutriplan-backend",
		"version": "1.0.0",
	})
}

// GeneratePlan handles full plan generation requests
func (h *Handler) GeneratePlan(c *gin.Context) {
	var profile domain.UserProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	plan, err := h.session.GeneratePlan(c.Request.Context(), &profile)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"plan":    plan,
	})
}

// CurrentPlan returns the plan held by the session
func (h *Handler) CurrentPlan(c *gin.Context) {
	plan, profile, err := h.session.CurrentPlan()
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"plan":    plan,
	})
}

// SwapMeal handles single meal replacement requests
func (h *Handler) SwapMeal(c *gin.Context) {
	var req domain.SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	day, err := h.session.SwapMeal(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"day": day})
}

// ResetPlan clears the session
func (h *Handler) ResetPlan(c *gin.Context) {
	h.session.Reset(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

// logManualRequest is the body for manual food log entries
type logManualRequest struct {
	Name      string                `json:"name" binding:"required"`
	Calories  float64               `json:"calories"`
	Macros    domain.MacroNutrients `json:"macros"`
	DayNumber int                   `json:"dayNumber" binding:"required"`
}

// LogFood handles manual food log entries
func (h *Handler) LogFood(c *gin.Context) {
	var req logManualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	entry, err := h.foodLog.LogManual(c.Request.Context(), req.Name, req.Calories, req.Macros, req.DayNumber)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

// AnalyzeFood handles AI-assisted food logging from a description and/or
// photo, posted as multipart form data (fields: description, dayNumber,
// image).
func (h *Handler) AnalyzeFood(c *gin.Context) {
	description := c.PostForm("description")
	dayNumber := 1
	if v, err := intFromForm(c, "dayNumber"); err == nil {
		dayNumber = v
	}

	var imageBytes []byte
	if file, err := c.FormFile("image"); err == nil {
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable image upload"})
			return
		}
		defer f.Close()
		// Read one byte past the cap so an oversize upload is rejected
		// rather than silently truncated.
		imageBytes, err = io.ReadAll(io.LimitReader(f, maxImageBytes+1))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable image upload"})
			return
		}
		if len(imageBytes) > maxImageBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image exceeds the 8 MiB upload limit"})
			return
		}
	}

	entry, err := h.foodLog.LogFromAnalysis(c.Request.Context(), description, imageBytes, dayNumber)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"entry": entry})
}

// ListFoodLog returns logged entries, optionally filtered by ?day=N
func (h *Handler) ListFoodLog(c *gin.Context) {
	day := 0
	if v, err := intFromQuery(c, "day"); err == nil {
		day = v
	}

	entries, err := h.foodLog.Entries(c.Request.Context(), day)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// DeleteFoodLog removes a logged entry by id
func (h *Handler) DeleteFoodLog(c *gin.Context) {
	if err := h.foodLog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// AddFavorite saves a meal item snapshot
func (h *Handler) AddFavorite(c *gin.Context) {
	var item domain.MealItem
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	favorite, err := h.favorites.Add(c.Request.Context(), item)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"favorite": favorite})
}

// ListFavorites returns all saved favorites
func (h *Handler) ListFavorites(c *gin.Context) {
	favorites, err := h.favorites.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favorites})
}

// RemoveFavorite deletes a favorite by id
func (h *Handler) RemoveFavorite(c *gin.Context) {
	if err := h.favorites.Remove(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// writeError maps domain errors onto HTTP status codes
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidProfile), errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNoActivePlan), errors.Is(err, domain.ErrStaleOperation):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrGenerationFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "plan generation failed, please try again"})
	case errors.Is(err, domain.ErrSwapFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "meal swap failed, please try again"})
	case errors.Is(err, domain.ErrGatewayFailure), errors.Is(err, domain.ErrMalformedResponse):
		c.JSON(http.StatusBadGateway, gin.H{"error": "content provider unavailable, please try again"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func intFromForm(c *gin.Context, field string) (int, error) {
	return parsePositiveInt(c.PostForm(field))
}

func intFromQuery(c *gin.Context, field string) (int, error) {
	return parsePositiveInt(c.Query(field))
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, strconv.ErrRange
	}
	return n, nil
}
