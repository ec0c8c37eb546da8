package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/forkcast/backend/internal/service"
)

// DetectHandler serves the object-detection relay route
type DetectHandler struct {
	vision *service.VisionService
}

// NewDetectHandler creates a new DetectHandler instance. A nil vision
// service leaves the route responding 503 at call time.
func NewDetectHandler(vision *service.VisionService) *DetectHandler {
	return &DetectHandler{vision: vision}
}

// RegisterRoutes registers the detection route
func (h *DetectHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/external/detect-object", h.DetectObject)
}

// DetectObject handles POST /api/external/detect-object
func (h *DetectHandler) DetectObject(c *gin.Context) {
	if h.vision == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Object detection is not configured"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image uploaded"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image"})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image"})
		return
	}

	ingredients, err := h.vision.DetectIngredients(c.Request.Context(), image, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrVisionNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Object detection is not configured"})
		case errors.Is(err, service.ErrMissingCredential):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Missing OAuth token"})
		case errors.Is(err, service.ErrNoIngredientsDetected):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "No ingredients detected"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ingredients": ingredients})
}
