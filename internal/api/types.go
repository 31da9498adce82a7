package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/kuechenzettel/backend/internal/service"
)

// RecipeRequest carries the editable recipe fields for create and update
type RecipeRequest struct {
	Name            string     `json:"name" binding:"required"`
	Description     string     `json:"description"`
	Instructions    string     `json:"instructions" binding:"required"`
	CookTimeMinutes *int       `json:"cook_time_minutes"`
	Servings        *int       `json:"servings"`
	Source          string     `json:"source"`
	CategoryID      *uuid.UUID `json:"category_id"`
}

// IngredientRequest adds an ingredient to a recipe
type IngredientRequest struct {
	Name     string  `json:"name" binding:"required"`
	Quantity *string `json:"quantity"`
	Unit     *string `json:"unit"`
}

// CategoryRequest creates or renames a category
type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// ShoppingListRequest selects recipes and a target serving count
type ShoppingListRequest struct {
	RecipeIDs       []uuid.UUID `json:"recipe_ids"`
	DesiredServings int         `json:"desired_servings"`
}

// statusForError maps service errors onto HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrDuplicateIngredient),
		errors.Is(err, service.ErrDuplicateCategory):
		return http.StatusConflict
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrNoMatchingRecipes):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
