package http

import (
	"net/http"

	"github.com/dietledger/backend/internal/domain"
	"github.com/dietledger/backend/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SavePlanRequest replaces a plan's composition. Dates are YYYY-MM-DD.
type SavePlanRequest struct {
	Name string `json:"name" binding:"required"`
	Days []struct {
		Date    string      `json:"date"`
		Label   string      `json:"label"`
		MealIDs []uuid.UUID `json:"mealIds"`
	} `json:"days"`
}

// SavePlan handles PUT /api/v1/plans/:id
func (h *Handler) SavePlan(c *gin.Context) {
	if notConfigured(c, h.plans != nil, "plan rollup") {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req SavePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: name is required")
		return
	}

	in := usecase.PlanInput{Name: req.Name, Days: make([]usecase.PlanDayInput, len(req.Days))}
	for i, d := range req.Days {
		in.Days[i] = usecase.PlanDayInput{Label: d.Label, MealIDs: d.MealIDs}
		if d.Date == "" {
			continue
		}
		date, err := domain.ParseDate(d.Date)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		in.Days[i].Date = &date
	}

	plan, err := h.plans.SavePlan(c.Request.Context(), id, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// PlanNutrients handles GET /api/v1/plans/:id/nutrients. The cached plan
// figures are refreshed before the summary is read.
func (h *Handler) PlanNutrients(c *gin.Context) {
	if notConfigured(c, h.plans != nil, "plan rollup") {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.plans.Refresh(ctx, id); err != nil {
		h.respondError(c, err)
		return
	}
	summary, err := h.plans.Summary(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// RefreshPlan handles POST /api/v1/plans/:id/refresh
func (h *Handler) RefreshPlan(c *gin.Context) {
	if notConfigured(c, h.plans != nil, "plan rollup") {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	plan, err := h.plans.Refresh(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}
