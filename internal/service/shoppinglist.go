package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kuechenzettel/backend/internal/models"
)

// ShoppingList maps ingredient name -> unit key -> accumulated amount.
// Numeric quantities sum under their normalized unit; free-text quantities
// live under a combined "unit (text)" key holding an occurrence count. The
// two never merge into one number.
type ShoppingList map[string]map[string]float64

const cacheTTL = 5 * time.Minute

// ShoppingListService computes aggregated shopping lists for recipe
// selections scaled to a desired serving count.
type ShoppingListService struct {
	recipes *RecipeService
	cache   *redis.Client
	log     *zap.Logger
}

// NewShoppingListService creates a new ShoppingListService. cache may be nil.
func NewShoppingListService(recipes *RecipeService, cache *redis.Client, log *zap.Logger) *ShoppingListService {
	return &ShoppingListService{recipes: recipes, cache: cache, log: log}
}

// ComputeShoppingList merges the ingredient quantities of the selected
// recipes, scaling each recipe by desiredServings over its baseline servings.
// Recipes without a usable baseline contribute their raw quantities and emit
// a warning. Warnings follow batch-load iteration order, which is not stable
// across runs; the numeric totals are.
func (s *ShoppingListService) ComputeShoppingList(ctx context.Context, recipeIDs []uuid.UUID, desiredServings int) (ShoppingList, []string, error) {
	if len(recipeIDs) == 0 || desiredServings < 1 {
		return nil, nil, ErrInvalidInput
	}

	if list, warnings, ok := s.cacheGet(ctx, recipeIDs, desiredServings); ok {
		return list, warnings, nil
	}

	recipes, err := s.recipes.GetRecipesWithIngredients(ctx, recipeIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(recipes) == 0 {
		return nil, nil, ErrNoMatchingRecipes
	}

	list := ShoppingList{}
	var warnings []string

	for _, recipe := range recipes {
		factor := 1.0
		if recipe.Servings != nil && *recipe.Servings > 0 {
			factor = float64(desiredServings) / float64(*recipe.Servings)
		} else {
			warnings = append(warnings, fmt.Sprintf(
				"scaling unavailable for recipe %q: baseline servings not defined, quantities left unscaled",
				recipe.Name,
			))
		}

		for _, link := range recipe.Ingredients {
			name := capitalize(strings.TrimSpace(link.Ingredient.Name))
			unit := normalizeUnit(link.Unit)
			if list[name] == nil {
				list[name] = map[string]float64{}
			}

			switch q := models.ParseQuantity(link.Quantity); q.Kind {
			case models.QuantityNumeric:
				list[name][unit] += q.Value * factor
			case models.QuantityText:
				// Fold the literal text into the key so "a pinch" stays
				// distinct from any numeric amount under the same unit.
				key := fmt.Sprintf("%s (%s)", unit, q.Text)
				list[name][key]++
			case models.QuantityAbsent:
				// Keep the entry visible with a zero amount: needed, amount
				// unspecified.
				list[name][unit] += 0
			}
		}
	}

	s.cachePut(ctx, recipeIDs, desiredServings, list, warnings)
	return list, warnings, nil
}

// normalizeUnit trims and lowercases a unit label. Nil and empty both map to
// the empty string, itself a valid grouping key.
func normalizeUnit(unit *string) string {
	if unit == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*unit))
}

type cachedList struct {
	Items    ShoppingList `json:"items"`
	Warnings []string     `json:"warnings"`
}

// cacheKey embeds the store revision, so any mutation implicitly invalidates
// every cached list.
func (s *ShoppingListService) cacheKey(ctx context.Context, recipeIDs []uuid.UUID, desiredServings int) string {
	rev, err := s.cache.Get(ctx, revisionKey).Result()
	if err != nil {
		rev = "0"
	}

	ids := make([]string, len(recipeIDs))
	for i, id := range recipeIDs {
		ids[i] = id.String()
	}
	sort.Strings(ids)
	return fmt.Sprintf("shoppinglist:%s:%d:%s", rev, desiredServings, strings.Join(ids, ","))
}

func (s *ShoppingListService) cacheGet(ctx context.Context, recipeIDs []uuid.UUID, desiredServings int) (ShoppingList, []string, bool) {
	if s.cache == nil {
		return nil, nil, false
	}

	data, err := s.cache.Get(ctx, s.cacheKey(ctx, recipeIDs, desiredServings)).Bytes()
	if err != nil {
		return nil, nil, false
	}
	var cached cachedList
	if err := json.Unmarshal(data, &cached); err != nil {
		s.log.Warn("discarding malformed cached shopping list", zap.Error(err))
		return nil, nil, false
	}
	return cached.Items, cached.Warnings, true
}

func (s *ShoppingListService) cachePut(ctx context.Context, recipeIDs []uuid.UUID, desiredServings int, list ShoppingList, warnings []string) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(cachedList{Items: list, Warnings: warnings})
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cacheKey(ctx, recipeIDs, desiredServings), data, cacheTTL).Err(); err != nil {
		s.log.Warn("failed to cache shopping list", zap.Error(err))
	}
}
