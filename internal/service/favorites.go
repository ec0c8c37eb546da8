package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/forkcast/backend/internal/models"
	"github.com/forkcast/backend/internal/types"
)

// FavoriteEvent is published on the account's channel for every add or
// remove, so other sessions of the same account can re-render live.
type FavoriteEvent struct {
	Action   string `json:"action"` // "added" or "removed"
	RecipeID string `json:"recipe_id"`
	Name     string `json:"name,omitempty"`
}

// FavoriteService keeps the per-account favorite snapshot collection.
// Writes are last-write-wins; re-favoriting overwrites the snapshot.
type FavoriteService struct {
	db    *gorm.DB
	redis *redis.Client
}

// NewFavoriteService creates a new FavoriteService instance. The redis
// client is optional; without it the live subscription is unavailable
// but reads and writes still work.
func NewFavoriteService(db *gorm.DB, redisClient *redis.Client) *FavoriteService {
	return &FavoriteService{
		db:    db,
		redis: redisClient,
	}
}

// List returns the account's favorite snapshots
func (s *FavoriteService) List(ctx context.Context, userID uuid.UUID) ([]models.FavoriteRecipe, error) {
	var favorites []models.FavoriteRecipe
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&favorites).Error; err != nil {
		return nil, err
	}
	return favorites, nil
}

// Save stores a snapshot of the recipe under the account, keyed by
// recipe identifier. Exactly one write: an existing snapshot for the
// same (user, recipe) pair is overwritten, never duplicated.
func (s *FavoriteService) Save(ctx context.Context, userID uuid.UUID, recipe types.Recipe) (*models.FavoriteRecipe, error) {
	favorite := models.FavoriteRecipe{
		UserID:      userID,
		RecipeID:    recipe.ID,
		Name:        recipe.Name,
		Description: recipe.Description,
		Image:       recipe.Image,
		CookTime:    recipe.CookTime,
		Servings:    recipe.Servings,
		Difficulty:  recipe.Difficulty,
		Ingredients: models.JSONBStringArray(recipe.Ingredients),
		Measures:    models.JSONBStringArray(recipe.Measures),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "recipe_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "description", "image", "cook_time", "servings",
			"difficulty", "ingredients", "measures", "created_at",
		}),
	}).Create(&favorite).Error
	if err != nil {
		return nil, err
	}

	s.publish(ctx, userID, FavoriteEvent{Action: "added", RecipeID: recipe.ID, Name: recipe.Name})
	return &favorite, nil
}

// Remove deletes the snapshot for the given recipe. Removing an absent
// favorite is a no-op success.
func (s *FavoriteService) Remove(ctx context.Context, userID uuid.UUID, recipeID string) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.FavoriteRecipe{}).Error
	if err != nil {
		return err
	}

	s.publish(ctx, userID, FavoriteEvent{Action: "removed", RecipeID: recipeID})
	return nil
}

// Subscribe opens the account's live favorites channel. The caller owns
// the subscription and must close it when done.
func (s *FavoriteService) Subscribe(ctx context.Context, userID uuid.UUID) *redis.PubSub {
	if s.redis == nil {
		return nil
	}
	return s.redis.Subscribe(ctx, channelFor(userID))
}

// publish is best-effort: a dropped event only means the live view lags
// until the favorites page reloads, which is an accepted inconsistency.
func (s *FavoriteService) publish(ctx context.Context, userID uuid.UUID, event FavoriteEvent) {
	if s.redis == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[FavoriteService] Failed to marshal event: %v", err)
		return
	}
	if err := s.redis.Publish(ctx, channelFor(userID), data).Err(); err != nil {
		log.Printf("[FavoriteService] Failed to publish event: %v", err)
	}
}

func channelFor(userID uuid.UUID) string {
	return fmt.Sprintf("favorites:%s", userID)
}
