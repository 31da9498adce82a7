package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kuechenzettel/backend/internal/models"
	"github.com/kuechenzettel/backend/internal/service"
)

// maxImageSize caps image uploads at 16MB.
const maxImageSize = 16 << 20

type RecipeHandler struct {
	recipes *service.RecipeService
	images  service.ImageStore
	log     *zap.Logger
}

func NewRecipeHandler(recipes *service.RecipeService, images service.ImageStore, log *zap.Logger) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, images: images, log: log}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.POST("", h.CreateRecipe)
		recipes.GET("/:id", h.GetRecipe)
		recipes.PUT("/:id", h.UpdateRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
		recipes.POST("/:id/ingredients", h.AddIngredient)
		recipes.DELETE("/:id/ingredients/:ingredientID", h.RemoveIngredient)
		recipes.POST("/:id/image", h.UploadImage)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	recipes, err := h.recipes.ListRecipes(c.Request.Context())
	if err != nil {
		h.log.Error("failed to list recipes", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recipes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": "Recipe not found"})
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe := &models.Recipe{
		Name:            req.Name,
		Description:     req.Description,
		Instructions:    req.Instructions,
		CookTimeMinutes: req.CookTimeMinutes,
		Servings:        req.Servings,
		Source:          req.Source,
		CategoryID:      req.CategoryID,
	}
	created, err := h.recipes.CreateRecipe(c.Request.Context(), recipe)
	if err != nil {
		h.log.Error("failed to create recipe", zap.Error(err))
		c.JSON(statusForError(err), gin.H{"error": "Failed to create recipe"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.recipes.UpdateRecipe(c.Request.Context(), id, &models.Recipe{
		Name:            req.Name,
		Description:     req.Description,
		Instructions:    req.Instructions,
		CookTimeMinutes: req.CookTimeMinutes,
		Servings:        req.Servings,
		Source:          req.Source,
		CategoryID:      req.CategoryID,
	})
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": "Failed to update recipe"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	imageRef, err := h.recipes.DeleteRecipe(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": "Failed to delete recipe"})
		return
	}

	// Artifact cleanup happens after the commit; a failure here leaves an
	// orphaned file, never a dangling row.
	if imageRef != "" {
		if err := h.images.Delete(c.Request.Context(), imageRef); err != nil {
			h.log.Warn("failed to delete recipe image", zap.String("ref", imageRef), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Recipe deleted successfully",
		"id":      id,
	})
}

func (h *RecipeHandler) AddIngredient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	var req IngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	link, err := h.recipes.AddIngredientToRecipe(c.Request.Context(), id, req.Name, req.Quantity, req.Unit)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, link)
}

func (h *RecipeHandler) RemoveIngredient(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}
	ingredientID, err := uuid.Parse(c.Param("ingredientID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingredient id"})
		return
	}

	if err := h.recipes.RemoveIngredientFromRecipe(c.Request.Context(), recipeID, ingredientID); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ingredient removed from recipe"})
}

// UploadImage stores a new image for a recipe. The artifact is persisted
// first and the row updated second; when the row update fails, the fresh
// artifact is removed so the two side effects never diverge.
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
		return
	}
	if len(data) > maxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds 16MB limit"})
		return
	}

	ref, err := h.images.Save(c.Request.Context(), data, header.Filename)
	if err != nil {
		status := http.StatusInternalServerError
		if err == service.ErrUnsupportedImageType {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	previous, err := h.recipes.SetRecipeImage(c.Request.Context(), id, ref)
	if err != nil {
		if delErr := h.images.Delete(c.Request.Context(), ref); delErr != nil {
			h.log.Warn("failed to clean up orphaned image", zap.String("ref", ref), zap.Error(delErr))
		}
		c.JSON(statusForError(err), gin.H{"error": "Failed to store recipe image"})
		return
	}

	if previous != "" && previous != ref {
		if err := h.images.Delete(c.Request.Context(), previous); err != nil {
			h.log.Warn("failed to delete replaced image", zap.String("ref", previous), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"image_file": ref})
}
