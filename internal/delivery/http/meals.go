package http

import (
	"net/http"

	"github.com/dietledger/backend/internal/usecase"
	"github.com/gin-gonic/gin"
)

// CreateMealRequest creates a meal from catalog foods.
type CreateMealRequest struct {
	Name        string                    `json:"name" binding:"required"`
	Ingredients []usecase.IngredientInput `json:"ingredients"`
}

// ReplaceIngredientsRequest swaps a meal's ingredient list.
type ReplaceIngredientsRequest struct {
	Ingredients []usecase.IngredientInput `json:"ingredients"`
}

// CreateMeal handles POST /api/v1/meals
func (h *Handler) CreateMeal(c *gin.Context) {
	if notConfigured(c, h.meals != nil, "meal service") {
		return
	}
	var req CreateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: name is required")
		return
	}

	meal, err := h.meals.Create(c.Request.Context(), req.Name, req.Ingredients)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, meal)
}

// MealNutrients handles GET /api/v1/meals/:id/nutrients
func (h *Handler) MealNutrients(c *gin.Context) {
	if notConfigured(c, h.meals != nil, "meal service") {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	out, err := h.meals.Nutrients(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// MealFoodNutrients handles GET /api/v1/meals/:id/foods/nutrients
func (h *Handler) MealFoodNutrients(c *gin.Context) {
	if notConfigured(c, h.meals != nil, "meal service") {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	out, err := h.meals.FoodNutrients(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mealId": id, "foods": out})
}

// ReplaceIngredients handles PUT /api/v1/meals/:id/ingredients
func (h *Handler) ReplaceIngredients(c *gin.Context) {
	if notConfigured(c, h.meals != nil, "meal service") {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req ReplaceIngredientsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	meal, err := h.meals.ReplaceIngredients(c.Request.Context(), id, req.Ingredients)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

// AddIngredient handles POST /api/v1/meals/:id/ingredients
func (h *Handler) AddIngredient(c *gin.Context) {
	if notConfigured(c, h.meals != nil, "meal service") {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req usecase.IngredientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	meal, err := h.meals.AddIngredient(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}

// RemoveIngredient handles DELETE /api/v1/meals/:id/ingredients/:ingredientId
func (h *Handler) RemoveIngredient(c *gin.Context) {
	if notConfigured(c, h.meals != nil, "meal service") {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	ingredientID, ok := pathUUID(c, "ingredientId")
	if !ok {
		return
	}

	meal, err := h.meals.RemoveIngredient(c.Request.Context(), id, ingredientID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, meal)
}
