package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// FavoriteRecipe is a denormalized snapshot of a recipe taken at the
// moment of favoriting. Its lifetime is independent of the source recipe:
// later edits upstream are not reflected. Keyed uniquely per
// (user, recipe) pair, so re-favoriting overwrites rather than duplicates.
type FavoriteRecipe struct {
	ID          uuid.UUID        `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt   time.Time        `json:"created_at"`
	UserID      uuid.UUID        `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_recipe" json:"user_id"`
	RecipeID    string           `gorm:"size:64;not null;uniqueIndex:idx_user_recipe" json:"recipe_id"`
	Name        string           `gorm:"size:255;not null" json:"name"`
	Description string           `gorm:"type:text" json:"description"`
	Image       string           `gorm:"size:255" json:"image"`
	CookTime    string           `gorm:"size:50" json:"cook_time"`
	Servings    int              `json:"servings"`
	Difficulty  string           `gorm:"size:50" json:"difficulty"`
	Ingredients JSONBStringArray `gorm:"type:jsonb" json:"ingredients"`
	Measures    JSONBStringArray `gorm:"type:jsonb" json:"measures"`
}

func (FavoriteRecipe) TableName() string {
	return "favorite_recipes"
}

// BeforeCreate assigns the row identifier
func (f *FavoriteRecipe) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
