package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/forkcast/backend/internal/service"
)

// RecipeHandler serves the browse, search and lookup routes plus the
// raw provider relay.
type RecipeHandler struct {
	search *service.RecipeSearchService
	mealdb *service.MealDBClient
}

// NewRecipeHandler creates a new RecipeHandler instance
func NewRecipeHandler(search *service.RecipeSearchService, mealdb *service.MealDBClient) *RecipeHandler {
	return &RecipeHandler{
		search: search,
		mealdb: mealdb,
	}
}

// RegisterRoutes registers the recipe routes
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
	}
	router.GET("/external/recipes", h.RawFilter)
}

// ListRecipes handles GET /api/recipes. With an `ingredients` query it
// runs the intersection search; otherwise it serves the default or
// cuisine-filtered browse grid. Every call is a fresh fetch.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	if query, ok := c.GetQuery("ingredients"); ok {
		recipes, err := h.search.SearchByIngredients(c.Request.Context(), query)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"recipes": recipes})
		return
	}

	recipes, err := h.search.Browse(c.Request.Context(), c.Query("cuisine"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// GetRecipe handles GET /api/recipes/:id
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.mealdb.Lookup(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrRecipeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// RawFilter handles GET /api/external/recipes, forwarding the provider's
// single-ingredient filter response unchanged.
func (h *RecipeHandler) RawFilter(c *gin.Context) {
	ingredient := c.Query("ingredient")
	if ingredient == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing ingredient"})
		return
	}

	body, err := h.mealdb.FilterByIngredientRaw(c.Request.Context(), ingredient)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}

	c.Data(http.StatusOK, "application/json", body)
}
