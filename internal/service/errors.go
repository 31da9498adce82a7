package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a caller supplies an empty recipe
	// selection or a serving count below 1. Inputs are never clamped.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoMatchingRecipes is returned when none of the requested recipe ids
	// resolve to a stored recipe.
	ErrNoMatchingRecipes = errors.New("no matching recipes found")

	// ErrDuplicateIngredient is returned when an ingredient is already linked
	// to the recipe (case-insensitive name match).
	ErrDuplicateIngredient = errors.New("ingredient already present in recipe")

	// ErrDuplicateCategory is returned when a category with the same name
	// already exists.
	ErrDuplicateCategory = errors.New("category already exists")

	// ErrNotFound is returned when a referenced recipe, ingredient, category
	// or link does not exist.
	ErrNotFound = errors.New("not found")
)

// PersistenceError wraps a failed store operation. Validation errors are
// detected before any mutation; a PersistenceError mid-operation means the
// surrounding transaction was rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
