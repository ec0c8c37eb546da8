package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkcast/backend/internal/testhelpers"
	"github.com/forkcast/backend/internal/types"
)

func shakshukaRecipe() types.Recipe {
	return types.Recipe{
		ID:          "52963",
		Name:        "Shakshuka",
		Description: "Heat the oil in a frying pan...",
		Image:       "https://example.test/shakshuka.jpg",
		CookTime:    "N/A",
		Servings:    1,
		Difficulty:  "Medium",
		Ingredients: []string{"egg", "tomato"},
		Measures:    []string{"4", "2 cans"},
	}
}

func TestFavoriteSaveAndList(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewFavoriteService(db, nil)
	userID := uuid.New()

	saved, err := svc.Save(context.Background(), userID, shakshukaRecipe())
	require.NoError(t, err)
	assert.Equal(t, "52963", saved.RecipeID)

	favorites, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, "Shakshuka", favorites[0].Name)
	assert.Equal(t, []string{"egg", "tomato"}, []string(favorites[0].Ingredients))
	assert.Equal(t, []string{"4", "2 cans"}, []string(favorites[0].Measures))
}

func TestFavoriteSaveOverwritesExisting(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewFavoriteService(db, nil)
	userID := uuid.New()

	_, err := svc.Save(context.Background(), userID, shakshukaRecipe())
	require.NoError(t, err)

	updated := shakshukaRecipe()
	updated.Name = "Shakshuka (spicy)"
	_, err = svc.Save(context.Background(), userID, updated)
	require.NoError(t, err)

	favorites, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, "Shakshuka (spicy)", favorites[0].Name)
}

func TestFavoriteRemoveRestoresAbsence(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewFavoriteService(db, nil)
	userID := uuid.New()

	_, err := svc.Save(context.Background(), userID, shakshukaRecipe())
	require.NoError(t, err)
	require.NoError(t, svc.Remove(context.Background(), userID, "52963"))

	favorites, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, favorites)
}

func TestFavoriteRemoveAbsentIsNoOp(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewFavoriteService(db, nil)

	assert.NoError(t, svc.Remove(context.Background(), uuid.New(), "99999"))
}

func TestFavoritesAreScopedPerAccount(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewFavoriteService(db, nil)
	alice := uuid.New()
	bob := uuid.New()

	_, err := svc.Save(context.Background(), alice, shakshukaRecipe())
	require.NoError(t, err)

	bobFavorites, err := svc.List(context.Background(), bob)
	require.NoError(t, err)
	assert.Empty(t, bobFavorites)

	// Removing through the other account leaves the owner's snapshot.
	require.NoError(t, svc.Remove(context.Background(), bob, "52963"))
	aliceFavorites, err := svc.List(context.Background(), alice)
	require.NoError(t, err)
	assert.Len(t, aliceFavorites, 1)
}

func TestFavoriteSubscribeWithoutRedis(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	svc := NewFavoriteService(db, nil)

	assert.Nil(t, svc.Subscribe(context.Background(), uuid.New()))
}
