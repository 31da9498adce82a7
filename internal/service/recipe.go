package service

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kuechenzettel/backend/internal/models"
)

// revisionKey is the redis counter bumped on every store mutation. Cached
// shopping lists embed the revision in their key, so a bump invalidates them
// without any explicit deletion.
const revisionKey = "store:revision"

// RecipeService handles recipe, ingredient and link operations
type RecipeService struct {
	db    *gorm.DB
	cache *redis.Client
	log   *zap.Logger
}

// NewRecipeService creates a new RecipeService instance. cache may be nil.
func NewRecipeService(db *gorm.DB, cache *redis.Client, log *zap.Logger) *RecipeService {
	return &RecipeService{db: db, cache: cache, log: log}
}

// CreateRecipe creates a new recipe
func (s *RecipeService) CreateRecipe(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {
	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, &PersistenceError{Op: "create recipe", Err: err}
	}
	s.bumpRevision(ctx)
	return recipe, nil
}

// GetRecipe retrieves a recipe by ID with its ingredient links and category
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Ingredients.Ingredient").
		Preload("Category").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &PersistenceError{Op: "get recipe", Err: err}
	}
	return &recipe, nil
}

// ListRecipes lists all recipes ordered by name
func (s *RecipeService) ListRecipes(ctx context.Context) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Category").
		Order("name").
		Find(&recipes).Error
	if err != nil {
		return nil, &PersistenceError{Op: "list recipes", Err: err}
	}
	return recipes, nil
}

// UpdateRecipe updates the editable fields of a recipe
func (s *RecipeService) UpdateRecipe(ctx context.Context, id uuid.UUID, recipe *models.Recipe) (*models.Recipe, error) {
	var existing models.Recipe
	if err := s.db.WithContext(ctx).First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &PersistenceError{Op: "update recipe", Err: err}
	}

	updates := map[string]interface{}{
		"name":              recipe.Name,
		"description":       recipe.Description,
		"instructions":      recipe.Instructions,
		"cook_time_minutes": recipe.CookTimeMinutes,
		"servings":          recipe.Servings,
		"source":            recipe.Source,
		"category_id":       recipe.CategoryID,
	}
	if err := s.db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		return nil, &PersistenceError{Op: "update recipe", Err: err}
	}
	s.bumpRevision(ctx)
	return s.GetRecipe(ctx, id)
}

// DeleteRecipe deletes a recipe and its ingredient links in one transaction.
// The cascade is an explicit multi-row delete, not an ORM side effect. The
// recipe's image reference is returned so the caller can remove the stored
// artifact after the commit succeeded.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id uuid.UUID) (string, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", &PersistenceError{Op: "delete recipe", Err: err}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Recipe{}, "id = ?", id).Error
	})
	if err != nil {
		return "", &PersistenceError{Op: "delete recipe", Err: err}
	}
	s.bumpRevision(ctx)
	return recipe.ImageFile, nil
}

// SetRecipeImage stores a new image reference on a recipe and returns the
// previous reference. Callers persist the artifact first and clean it up when
// this update fails, so store row and artifact never diverge.
func (s *RecipeService) SetRecipeImage(ctx context.Context, id uuid.UUID, ref string) (string, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", &PersistenceError{Op: "set recipe image", Err: err}
	}

	previous := recipe.ImageFile
	if err := s.db.WithContext(ctx).Model(&recipe).Update("image_file", ref).Error; err != nil {
		return "", &PersistenceError{Op: "set recipe image", Err: err}
	}
	s.bumpRevision(ctx)
	return previous, nil
}

// FindOrCreateIngredient looks up an ingredient by name, case-insensitively.
// On miss a new ingredient is created with the name capitalized. The returned
// row is usable immediately for linking.
func (s *RecipeService) FindOrCreateIngredient(ctx context.Context, name string) (*models.Ingredient, error) {
	var ingredient *models.Ingredient
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		ingredient, txErr = findOrCreateIngredient(tx, name)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return ingredient, nil
}

func findOrCreateIngredient(tx *gorm.DB, name string) (*models.Ingredient, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrInvalidInput
	}

	var ingredient models.Ingredient
	err := tx.Where("LOWER(name) = ?", strings.ToLower(trimmed)).First(&ingredient).Error
	if err == nil {
		return &ingredient, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &PersistenceError{Op: "find ingredient", Err: err}
	}

	ingredient = models.Ingredient{Name: capitalize(trimmed)}
	if err := tx.Create(&ingredient).Error; err != nil {
		return nil, &PersistenceError{Op: "create ingredient", Err: err}
	}
	return &ingredient, nil
}

// AddIngredientToRecipe resolves the ingredient by name (creating it when
// missing) and links it to the recipe. Adding a name already linked to the
// recipe fails with ErrDuplicateIngredient and leaves the existing link
// unchanged.
func (s *RecipeService) AddIngredientToRecipe(ctx context.Context, recipeID uuid.UUID, name string, quantity, unit *string) (*models.RecipeIngredient, error) {
	var link models.RecipeIngredient
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.First(&recipe, "id = ?", recipeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return &PersistenceError{Op: "add ingredient", Err: err}
		}

		ingredient, err := findOrCreateIngredient(tx, name)
		if err != nil {
			return err
		}

		var existing models.RecipeIngredient
		err = tx.Where("recipe_id = ? AND ingredient_id = ?", recipeID, ingredient.ID).
			First(&existing).Error
		if err == nil {
			return ErrDuplicateIngredient
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return &PersistenceError{Op: "add ingredient", Err: err}
		}

		link = models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: ingredient.ID,
			Quantity:     quantity,
			Unit:         unit,
			Ingredient:   *ingredient,
		}
		if err := tx.Create(&link).Error; err != nil {
			return &PersistenceError{Op: "create ingredient link", Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.bumpRevision(ctx)
	return &link, nil
}

// RemoveIngredientFromRecipe deletes a single link. The shared ingredient row
// is left in place.
func (s *RecipeService) RemoveIngredientFromRecipe(ctx context.Context, recipeID, ingredientID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("recipe_id = ? AND ingredient_id = ?", recipeID, ingredientID).
		Delete(&models.RecipeIngredient{})
	if result.Error != nil {
		return &PersistenceError{Op: "remove ingredient", Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	s.bumpRevision(ctx)
	return nil
}

// GetRecipesWithIngredients batch-loads the requested recipes with their
// ingredient links and ingredient names in one pass. Ids that do not resolve
// are silently omitted.
func (s *RecipeService) GetRecipesWithIngredients(ctx context.Context, ids []uuid.UUID) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Ingredients.Ingredient").
		Where("id IN ?", ids).
		Find(&recipes).Error
	if err != nil {
		return nil, &PersistenceError{Op: "load recipes", Err: err}
	}
	return recipes, nil
}

func (s *RecipeService) bumpRevision(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Incr(ctx, revisionKey).Err(); err != nil {
		s.log.Warn("failed to bump store revision", zap.Error(err))
	}
}

// capitalize normalizes an ingredient name: first rune upper, rest lower.
func capitalize(s string) string {
	runes := []rune(strings.ToLower(s))
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
