package service

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/forkcast/backend/internal/types"
)

// RecipeSearchService builds multi-ingredient search on top of the
// provider's single-ingredient filter endpoint: one filter call per
// ingredient, set intersection over the identifier sets, then one lookup
// per surviving identifier.
type RecipeSearchService struct {
	mealdb *MealDBClient
}

// NewRecipeSearchService creates a new RecipeSearchService instance
func NewRecipeSearchService(mealdb *MealDBClient) *RecipeSearchService {
	return &RecipeSearchService{mealdb: mealdb}
}

// ParseIngredientQuery splits a comma-separated ingredient query into
// trimmed, non-empty terms.
func ParseIngredientQuery(query string) []string {
	var terms []string
	for _, part := range strings.Split(query, ",") {
		if term := strings.TrimSpace(part); term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

// SearchByIngredients returns the hydrated recipes containing every
// ingredient in the query. An empty query or an empty intersection is a
// normal empty result. Any provider failure aborts the whole search;
// partial results are never returned.
func (s *RecipeSearchService) SearchByIngredients(ctx context.Context, query string) ([]types.Recipe, error) {
	terms := ParseIngredientQuery(query)
	if len(terms) == 0 {
		return []types.Recipe{}, nil
	}

	// Phase one: one filter call per ingredient, concurrently.
	idSets := make([]map[string]bool, len(terms))
	g, gctx := errgroup.WithContext(ctx)
	for i, term := range terms {
		g.Go(func() error {
			summaries, err := s.mealdb.FilterByIngredient(gctx, term)
			if err != nil {
				return err
			}
			set := make(map[string]bool, len(summaries))
			for _, summary := range summaries {
				set[summary.ID] = true
			}
			idSets[i] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := intersect(idSets)
	if len(ids) == 0 {
		return []types.Recipe{}, nil
	}

	// Phase two: hydrate the survivors, concurrently. Cannot start
	// until the full intersected identifier set is known.
	return s.hydrate(ctx, ids)
}

// Browse returns the default or cuisine-filtered recipe grid. The
// unfiltered catalog is already hydrated; a cuisine filter returns
// identifiers only and needs per-identifier hydration.
func (s *RecipeSearchService) Browse(ctx context.Context, cuisine string) ([]types.Recipe, error) {
	if cuisine == "" {
		return s.mealdb.SearchAll(ctx)
	}

	summaries, err := s.mealdb.FilterByArea(ctx, cuisine)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(summaries))
	for _, summary := range summaries {
		ids = append(ids, summary.ID)
	}
	return s.hydrate(ctx, ids)
}

func (s *RecipeSearchService) hydrate(ctx context.Context, ids []string) ([]types.Recipe, error) {
	recipes := make([]types.Recipe, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			recipe, err := s.mealdb.Lookup(gctx, id)
			if err != nil {
				return err
			}
			recipes[i] = *recipe
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return recipes, nil
}

// intersect computes the identifiers present in every set. Order of the
// input sets does not matter; the result is sorted for determinism.
func intersect(sets []map[string]bool) []string {
	if len(sets) == 0 {
		return nil
	}

	var ids []string
	for id := range sets[0] {
		inAll := true
		for _, set := range sets[1:] {
			if !set[id] {
				inAll = false
				break
			}
		}
		if inAll {
			ids = append(ids, id)
		}
	}

	sort.Strings(ids)
	return ids
}
