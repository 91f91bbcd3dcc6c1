package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ImportFoodRequest imports one FoodData Central entry.
// Refresh bypasses the cached USDA payload.
type ImportFoodRequest struct {
	FdcID   int  `json:"fdcId" binding:"required"`
	Refresh bool `json:"refresh"`
}

// SearchFoodRequest finds and imports the best USDA match for a query.
type SearchFoodRequest struct {
	Query string `json:"query" binding:"required"`
}

// GetFood handles GET /api/v1/foods/:id
func (h *Handler) GetFood(c *gin.Context) {
	if notConfigured(c, h.catalog != nil, "food catalog") {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	food, err := h.catalog.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}

// ImportFood handles POST /api/v1/foods/import
func (h *Handler) ImportFood(c *gin.Context) {
	if notConfigured(c, h.catalog != nil, "food catalog") {
		return
	}
	var req ImportFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: fdcId is required")
		return
	}

	importFood := h.catalog.ImportByFdcID
	if req.Refresh {
		importFood = h.catalog.RefreshByFdcID
	}
	food, err := importFood(c.Request.Context(), req.FdcID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}

// SearchFood handles POST /api/v1/foods/search
func (h *Handler) SearchFood(c *gin.Context) {
	if notConfigured(c, h.catalog != nil, "food catalog") {
		return
	}
	var req SearchFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: query is required")
		return
	}

	result, err := h.catalog.SearchAndImport(c.Request.Context(), req.Query)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
