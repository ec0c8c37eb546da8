package types

// Recipe is the hydrated recipe shape served to clients. Fields the
// provider leaves blank are defaulted at mapping time, not validated.
type Recipe struct {
	ID           string   `json:"idMeal"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Image        string   `json:"image"`
	CookTime     string   `json:"cookTime"`
	Servings     int      `json:"servings"`
	Difficulty   string   `json:"difficulty"`
	Ingredients  []string `json:"ingredients"`
	Measures     []string `json:"measures"`
	Instructions string   `json:"instructions,omitempty"`
}

// RecipeSummary is the lightweight shape returned by the provider's
// filter endpoints: identifier and thumbnail only, no detail.
type RecipeSummary struct {
	ID    string `json:"idMeal"`
	Name  string `json:"strMeal"`
	Thumb string `json:"strMealThumb"`
}
