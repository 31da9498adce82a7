package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kuechenzettel/backend/internal/models"
	"github.com/kuechenzettel/backend/internal/testhelpers"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func setupShoppingListTest(t *testing.T) (*RecipeService, *ShoppingListService) {
	db := testhelpers.SetupTestDB(t)
	log := zap.NewNop()
	recipes := NewRecipeService(db, nil, log)
	return recipes, NewShoppingListService(recipes, nil, log)
}

func createRecipe(t *testing.T, recipes *RecipeService, name string, servings *int) *models.Recipe {
	t.Helper()
	recipe, err := recipes.CreateRecipe(context.Background(), &models.Recipe{
		Name:         name,
		Instructions: "Mix and cook.",
		Servings:     servings,
	})
	require.NoError(t, err)
	return recipe
}

func addIngredient(t *testing.T, recipes *RecipeService, recipeID uuid.UUID, name string, quantity, unit *string) {
	t.Helper()
	_, err := recipes.AddIngredientToRecipe(context.Background(), recipeID, name, quantity, unit)
	require.NoError(t, err)
}

func TestComputeShoppingListScalesAndMergesAcrossRecipes(t *testing.T) {
	recipes, lists := setupShoppingListTest(t)
	ctx := context.Background()

	a := createRecipe(t, recipes, "Pancakes", intPtr(4))
	addIngredient(t, recipes, a.ID, "Flour", strPtr("200"), strPtr("g"))

	b := createRecipe(t, recipes, "Crepes", intPtr(2))
	addIngredient(t, recipes, b.ID, "flour", strPtr("50"), strPtr("g"))

	list, warnings, err := lists.ComputeShoppingList(ctx, []uuid.UUID{a.ID, b.ID}, 8)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// 200*(8/4) + 50*(8/2) = 600, merged under one capitalized name.
	require.Contains(t, list, "Flour")
	assert.InDelta(t, 600.0, list["Flour"]["g"], 1e-9)
	assert.Len(t, list, 1)
}

func TestComputeShoppingListScalingFactor(t *testing.T) {
	recipes, lists := setupShoppingListTest(t)

	r := createRecipe(t, recipes, "Stew", intPtr(3))
	addIngredient(t, recipes, r.ID, "Potatoes", strPtr("250"), strPtr("g"))

	list, warnings, err := lists.ComputeShoppingList(context.Background(), []uuid.UUID{r.ID}, 7)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.InDelta(t, 250.0*(7.0/3.0), list["Potatoes"]["g"], 1e-9)
}

func TestComputeShoppingListNoBaselineServings(t *testing.T) {
	recipes, lists := setupShoppingListTest(t)

	r := createRecipe(t, recipes, "Grandma's Soup", nil)
	addIngredient(t, recipes, r.ID, "Salt", strPtr("a pinch"), nil)

	list, warnings, err := lists.ComputeShoppingList(context.Background(), []uuid.UUID{r.ID}, 5)
	require.NoError(t, err)

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Grandma's Soup")

	// Text quantities become occurrence counts under a combined key.
	require.Contains(t, list, "Salt")
	assert.Equal(t, 1.0, list["Salt"][" (a pinch)"])
}

func TestComputeShoppingListZeroServingsTreatedAsNoBaseline(t *testing.T) {
	recipes, lists := setupShoppingListTest(t)

	r := createRecipe(t, recipes, "Bread", intPtr(0))
	addIngredient(t, recipes, r.ID, "Yeast", strPtr("7"), strPtr("g"))

	list, warnings, err := lists.ComputeShoppingList(context.Background(), []uuid.UUID{r.ID}, 4)
	require.NoError(t, err)

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Bread")
	// Quantity passes through unscaled.
	assert.InDelta(t, 7.0, list["Yeast"]["g"], 1e-9)
}

func TestComputeShoppingListAbsentQuantityKeepsEntry(t *testing.T) {
	recipes, lists := setupShoppingListTest(t)

	r := createRecipe(t, recipes, "Salad", intPtr(2))
	addIngredient(t, recipes, r.ID, "Pepper", nil, nil)

	list, warnings, err := lists.ComputeShoppingList(context.Background(), []uuid.UUID{r.ID}, 2)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// Needed, amount unspecified: present with a zero amount.
	require.Contains(t, list, "Pepper")
	amount, ok := list["Pepper"][""]
	require.True(t, ok)
	assert.Equal(t, 0.0, amount)
}

func TestComputeShoppingListMixedNumericAndTextStaySeparate(t *testing.T) {
	recipes, lists := setupShoppingListTest(t)

	a := createRecipe(t, recipes, "Roast", intPtr(2))
	addIngredient(t, recipes, a.ID, "Salt", strPtr("5"), strPtr("g"))

	b := createRecipe(t, recipes, "Rub", intPtr(2))
	addIngredient(t, recipes, b.ID, "Salt", strPtr("1 Prise"), strPtr("g"))

	list, _, err := lists.ComputeShoppingList(context.Background(), []uuid.UUID{a.ID, b.ID}, 2)
	require.NoError(t, err)

	require.Contains(t, list, "Salt")
	assert.InDelta(t, 5.0, list["Salt"]["g"], 1e-9)
	assert.Equal(t, 1.0, list["Salt"]["g (1 Prise)"])
	assert.Len(t, list["Salt"], 2)
}

func TestComputeShoppingListNoUnitConversion(t *testing.T) {
	recipes, lists := setupShoppingListTest(t)

	a := createRecipe(t, recipes, "Cake", intPtr(1))
	addIngredient(t, recipes, a.ID, "Sugar", strPtr("200"), strPtr("g"))

	b := createRecipe(t, recipes, "Frosting", intPtr(1))
	addIngredient(t, recipes, b.ID, "Sugar", strPtr("0.2"), strPtr("kg"))

	list, _, err := lists.ComputeShoppingList(context.Background(), []uuid.UUID{a.ID, b.ID}, 1)
	require.NoError(t, err)

	assert.InDelta(t, 200.0, list["Sugar"]["g"], 1e-9)
	assert.InDelta(t, 0.2, list["Sugar"]["kg"], 1e-9)
}

func TestComputeShoppingListUnitNormalization(t *testing.T) {
	recipes, lists := setupShoppingListTest(t)

	a := createRecipe(t, recipes, "Soup", intPtr(1))
	addIngredient(t, recipes, a.ID, "Stock", strPtr("500"), strPtr(" ML "))

	b := createRecipe(t, recipes, "Sauce", intPtr(1))
	addIngredient(t, recipes, b.ID, "stock", strPtr("100"), strPtr("ml"))

	list, _, err := lists.ComputeShoppingList(context.Background(), []uuid.UUID{a.ID, b.ID}, 1)
	require.NoError(t, err)

	// Units differing only in case and whitespace group together.
	assert.InDelta(t, 600.0, list["Stock"]["ml"], 1e-9)
	assert.Len(t, list["Stock"], 1)
}

func TestComputeShoppingListInvalidInput(t *testing.T) {
	_, lists := setupShoppingListTest(t)
	ctx := context.Background()

	_, _, err := lists.ComputeShoppingList(ctx, nil, 5)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = lists.ComputeShoppingList(ctx, []uuid.UUID{uuid.New()}, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestComputeShoppingListNoMatchingRecipes(t *testing.T) {
	_, lists := setupShoppingListTest(t)

	_, _, err := lists.ComputeShoppingList(context.Background(), []uuid.UUID{uuid.New()}, 5)
	assert.ErrorIs(t, err, ErrNoMatchingRecipes)
}

func TestComputeShoppingListMissingIDsAreOmitted(t *testing.T) {
	recipes, lists := setupShoppingListTest(t)

	r := createRecipe(t, recipes, "Omelette", intPtr(1))
	addIngredient(t, recipes, r.ID, "Eggs", strPtr("3"), nil)

	list, warnings, err := lists.ComputeShoppingList(context.Background(), []uuid.UUID{r.ID, uuid.New()}, 2)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.InDelta(t, 6.0, list["Eggs"][""], 1e-9)
}

func TestComputeShoppingListIdempotent(t *testing.T) {
	recipes, lists := setupShoppingListTest(t)
	ctx := context.Background()

	a := createRecipe(t, recipes, "Chili", intPtr(4))
	addIngredient(t, recipes, a.ID, "Beans", strPtr("400"), strPtr("g"))
	b := createRecipe(t, recipes, "Tacos", nil)
	addIngredient(t, recipes, b.ID, "Beans", strPtr("100"), strPtr("g"))

	ids := []uuid.UUID{a.ID, b.ID}
	first, firstWarnings, err := lists.ComputeShoppingList(ctx, ids, 6)
	require.NoError(t, err)
	second, secondWarnings, err := lists.ComputeShoppingList(ctx, ids, 6)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.ElementsMatch(t, firstWarnings, secondWarnings)
}
