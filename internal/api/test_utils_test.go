package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kuechenzettel/backend/internal/api"
	"github.com/kuechenzettel/backend/internal/models"
	"github.com/kuechenzettel/backend/internal/router"
	"github.com/kuechenzettel/backend/internal/service"
	"github.com/kuechenzettel/backend/internal/testhelpers"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDB(t)
	log := zap.NewNop()

	images, err := service.NewLocalImageStore(t.TempDir())
	require.NoError(t, err)

	recipeService := service.NewRecipeService(db, nil, log)
	categoryService := service.NewCategoryService(db)
	shoppingListService := service.NewShoppingListService(recipeService, nil, log)

	engine := router.SetupRouter(
		api.NewRecipeHandler(recipeService, images, log),
		api.NewCategoryHandler(categoryService),
		api.NewShoppingListHandler(shoppingListService, log),
		db, nil, log,
	)
	return engine, db
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func createTestRecipe(t *testing.T, db *gorm.DB, name string, servings *int) *models.Recipe {
	t.Helper()
	recipes := service.NewRecipeService(db, nil, zap.NewNop())
	recipe, err := recipes.CreateRecipe(context.Background(), &models.Recipe{
		Name:         name,
		Instructions: "Cook it.",
		Servings:     servings,
	})
	require.NoError(t, err)
	return recipe
}

func uploadImage(t *testing.T, engine *gin.Engine, path, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}
