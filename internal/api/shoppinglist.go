package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kuechenzettel/backend/internal/service"
)

type ShoppingListHandler struct {
	shoppingList *service.ShoppingListService
	log          *zap.Logger
}

func NewShoppingListHandler(shoppingList *service.ShoppingListService, log *zap.Logger) *ShoppingListHandler {
	return &ShoppingListHandler{shoppingList: shoppingList, log: log}
}

func (h *ShoppingListHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/shopping-list", h.ComputeShoppingList)
}

// ComputeShoppingList aggregates the selected recipes into one shopping list
// scaled to the desired serving count. Warnings are non-blocking notices; a
// list with warnings is still a usable list.
func (h *ShoppingListHandler) ComputeShoppingList(c *gin.Context) {
	var req ShoppingListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items, warnings, err := h.shoppingList.ComputeShoppingList(c.Request.Context(), req.RecipeIDs, req.DesiredServings)
	if err != nil {
		h.log.Warn("shopping list computation failed", zap.Error(err))
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	if warnings == nil {
		warnings = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"items":    items,
		"warnings": warnings,
	})
}
