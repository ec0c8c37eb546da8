package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/forkcast/backend/internal/types"
)

// ErrRecipeNotFound is returned when a lookup id matches no recipe
var ErrRecipeNotFound = errors.New("recipe not found")

// ingredientSlots is the number of numbered ingredient/measure pairs the
// provider carries per meal record (strIngredient1..20 / strMeasure1..20).
const ingredientSlots = 20

// MealDBClient is the gateway to the external recipe provider. The
// provider's filter endpoints return identifiers only; full records come
// from search and lookup.
type MealDBClient struct {
	baseURL string
	client  *http.Client
}

// NewMealDBClient creates a new MealDBClient instance
func NewMealDBClient(baseURL string) *MealDBClient {
	return &MealDBClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  http.DefaultClient,
	}
}

// mealsEnvelope is the provider's top-level response. A null meals array
// means "no matches" and is a normal outcome, not an error.
type mealsEnvelope struct {
	Meals []map[string]*string `json:"meals"`
}

func (c *MealDBClient) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach recipe provider: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("recipe provider returned status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

func (c *MealDBClient) getMeals(ctx context.Context, path string, query url.Values) ([]map[string]*string, error) {
	body, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var envelope mealsEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}

	return envelope.Meals, nil
}

// SearchAll returns the provider's unfiltered catalog page, already
// fully hydrated. No per-identifier lookups are needed.
func (c *MealDBClient) SearchAll(ctx context.Context) ([]types.Recipe, error) {
	meals, err := c.getMeals(ctx, "/search.php", url.Values{"s": {""}})
	if err != nil {
		return nil, err
	}

	recipes := make([]types.Recipe, 0, len(meals))
	for _, m := range meals {
		recipes = append(recipes, mapMeal(m))
	}
	return recipes, nil
}

// FilterByIngredient returns identifiers and thumbnails of recipes that
// contain the given ingredient. The endpoint only supports one
// ingredient per call.
func (c *MealDBClient) FilterByIngredient(ctx context.Context, ingredient string) ([]types.RecipeSummary, error) {
	meals, err := c.getMeals(ctx, "/filter.php", url.Values{"i": {ingredient}})
	if err != nil {
		return nil, err
	}
	return mapSummaries(meals), nil
}

// FilterByIngredientRaw forwards the provider's filter response body
// unchanged, for the raw relay route.
func (c *MealDBClient) FilterByIngredientRaw(ctx context.Context, ingredient string) ([]byte, error) {
	return c.get(ctx, "/filter.php", url.Values{"i": {ingredient}})
}

// FilterByArea returns identifiers and thumbnails of recipes from the
// given cuisine.
func (c *MealDBClient) FilterByArea(ctx context.Context, area string) ([]types.RecipeSummary, error) {
	meals, err := c.getMeals(ctx, "/filter.php", url.Values{"a": {area}})
	if err != nil {
		return nil, err
	}
	return mapSummaries(meals), nil
}

// Lookup hydrates a single recipe by identifier
func (c *MealDBClient) Lookup(ctx context.Context, id string) (*types.Recipe, error) {
	meals, err := c.getMeals(ctx, "/lookup.php", url.Values{"i": {id}})
	if err != nil {
		return nil, err
	}
	if len(meals) == 0 {
		return nil, ErrRecipeNotFound
	}

	recipe := mapMeal(meals[0])
	return &recipe, nil
}

func mapSummaries(meals []map[string]*string) []types.RecipeSummary {
	summaries := make([]types.RecipeSummary, 0, len(meals))
	for _, m := range meals {
		summaries = append(summaries, types.RecipeSummary{
			ID:    field(m, "idMeal"),
			Name:  field(m, "strMeal"),
			Thumb: field(m, "strMealThumb"),
		})
	}
	return summaries
}

// mapMeal converts a provider meal record into the Recipe shape. The
// numbered slot pairs are zipped 1..20; a slot is kept only when its
// ingredient name is non-blank. Fields the provider does not carry are
// defaulted here.
func mapMeal(m map[string]*string) types.Recipe {
	instructions := field(m, "strInstructions")

	// Truncate on runes: instructions carry accented text and a byte
	// cut could leave invalid UTF-8 in the description.
	description := instructions
	if runes := []rune(description); len(runes) > 120 {
		description = string(runes[:120])
	}
	description += "..."

	var ingredients, measures []string
	for i := 1; i <= ingredientSlots; i++ {
		ingredient := strings.TrimSpace(field(m, fmt.Sprintf("strIngredient%d", i)))
		if ingredient == "" {
			continue
		}
		ingredients = append(ingredients, ingredient)
		measures = append(measures, strings.TrimSpace(field(m, fmt.Sprintf("strMeasure%d", i))))
	}

	return types.Recipe{
		ID:           field(m, "idMeal"),
		Name:         field(m, "strMeal"),
		Description:  description,
		Image:        field(m, "strMealThumb"),
		CookTime:     "N/A",
		Servings:     1,
		Difficulty:   "Medium",
		Ingredients:  ingredients,
		Measures:     measures,
		Instructions: instructions,
	}
}

func field(m map[string]*string, key string) string {
	if v := m[key]; v != nil {
		return *v
	}
	return ""
}
