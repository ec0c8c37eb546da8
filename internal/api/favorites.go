package api

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/forkcast/backend/internal/middleware"
	"github.com/forkcast/backend/internal/service"
	"github.com/forkcast/backend/internal/types"
)

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || origin == "http://localhost:5173" || origin == "http://frontend:5173"
	},
}

// FavoriteHandler serves the per-account favorites collection
type FavoriteHandler struct {
	favorites *service.FavoriteService
	auth      *service.AuthService
}

// NewFavoriteHandler creates a new FavoriteHandler instance
func NewFavoriteHandler(favorites *service.FavoriteService, auth *service.AuthService) *FavoriteHandler {
	return &FavoriteHandler{
		favorites: favorites,
		auth:      auth,
	}
}

// RegisterRoutes registers the favorites routes. Every route requires an
// authenticated account; an unauthenticated toggle is rejected before
// any state change.
func (h *FavoriteHandler) RegisterRoutes(router *gin.RouterGroup) {
	favorites := router.Group("/favorites", middleware.AuthMiddleware(h.auth))
	{
		favorites.GET("", h.ListFavorites)
		favorites.GET("/stream", h.StreamFavorites)
		favorites.PUT("/:recipeID", h.SaveFavorite)
		favorites.DELETE("/:recipeID", h.RemoveFavorite)
	}
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok
}

// ListFavorites handles GET /api/favorites
func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	favorites, err := h.favorites.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch favorites"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorites": favorites})
}

// SaveFavorite handles PUT /api/favorites/:recipeID. The body carries
// the recipe snapshot; the URL parameter is the key.
func (h *FavoriteHandler) SaveFavorite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var recipe types.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe body"})
		return
	}
	recipe.ID = c.Param("recipeID")
	if recipe.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing recipe id"})
		return
	}

	favorite, err := h.favorites.Save(c.Request.Context(), userID, recipe)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save favorite"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"favorite": favorite})
}

// RemoveFavorite handles DELETE /api/favorites/:recipeID
func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.favorites.Remove(c.Request.Context(), userID, c.Param("recipeID")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove favorite"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Favorite removed"})
}

// StreamFavorites handles GET /api/favorites/stream. It upgrades to a
// websocket and forwards every add/remove event on the account's
// collection, including writes from other sessions. The subscription is
// released when the client disconnects.
func (h *FavoriteHandler) StreamFavorites(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	// The subscription must outlive the request context: net/http
	// cancels it as soon as the handler would return, so the stream
	// lifetime is driven by the socket alone.
	pubsub := h.favorites.Subscribe(context.Background(), userID)
	if pubsub == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Live updates are not available"})
		return
	}
	defer pubsub.Close()

	conn, err := streamUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// Reader goroutine: its only job is to notice the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Forward loop runs in the handler so the connection stays open
	// until the client disconnects.
	ch := pubsub.Channel()
	for {
		select {
		case <-done:
			return
		case msg, open := <-ch:
			if !open {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				log.Printf("[FavoriteHandler] Stream write failed: %v", err)
				return
			}
		}
	}
}
