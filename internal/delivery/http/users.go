package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/dietledger/backend/internal/domain"
	"github.com/dietledger/backend/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaveProfileRequest is a partial profile update; omitted fields are kept.
type SaveProfileRequest struct {
	Email         *string          `json:"email"`
	WeightKg      *decimal.Decimal `json:"weightKg"`
	HeightCm      *decimal.Decimal `json:"heightCm"`
	Age           *int             `json:"age"`
	Gender        *string          `json:"gender"`
	ActivityLevel *string          `json:"activityLevel"`
	Goal          *string          `json:"goal"`
}

// IntakeRequest selects the date of an intake record; empty means today.
type IntakeRequest struct {
	Date string `json:"date"`
}

// ConsumeRequest consumes a meal against the intake record of Date.
type ConsumeRequest struct {
	MealID uuid.UUID `json:"mealId"`
	Date   string    `json:"date"`
}

// SaveProfile handles PUT /api/v1/users/:id/profile
func (h *Handler) SaveProfile(c *gin.Context) {
	if notConfigured(c, h.users != nil, "user service") {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req SaveProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user, err := h.users.SaveProfile(c.Request.Context(), id, usecase.ProfileInput{
		Email:         req.Email,
		WeightKg:      req.WeightKg,
		HeightCm:      req.HeightCm,
		Age:           req.Age,
		Gender:        req.Gender,
		ActivityLevel: req.ActivityLevel,
		Goal:          req.Goal,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetUser handles GET /api/v1/users/:id
func (h *Handler) GetUser(c *gin.Context) {
	if notConfigured(c, h.users != nil, "user service") {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "missingFields": user.Profile.MissingFields()})
}

// PreviewTargets handles GET /api/v1/users/:id/targets
func (h *Handler) PreviewTargets(c *gin.Context) {
	if notConfigured(c, h.users != nil, "user service") {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	targets, err := h.users.PreviewTargets(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": id, "targets": targets})
}

// CreateIntake handles POST /api/v1/users/:id/intakes
func (h *Handler) CreateIntake(c *gin.Context) {
	if notConfigured(c, h.ledger != nil, "consumption ledger") {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req IntakeRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	date, err := h.dateOrToday(req.Date)
	if err != nil {
		h.respondError(c, err)
		return
	}

	rdi, err := h.ledger.GetOrCreateIntake(c.Request.Context(), id, date)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rdi)
}

// Consume handles POST /api/v1/users/:id/consumptions
func (h *Handler) Consume(c *gin.Context) {
	if notConfigured(c, h.ledger != nil, "consumption ledger") {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req ConsumeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.MealID == uuid.Nil {
		badRequest(c, "invalid request body: mealId is required")
		return
	}
	date, err := h.dateOrToday(req.Date)
	if err != nil {
		h.respondError(c, err)
		return
	}

	remaining, err := h.ledger.Consume(c.Request.Context(), id, req.MealID, date)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"userId":    id,
		"mealId":    req.MealID,
		"date":      date.Format(time.DateOnly),
		"remaining": remaining,
	})
}

// ConsumptionHistory handles GET /api/v1/users/:id/consumptions?from=&to=
func (h *Handler) ConsumptionHistory(c *gin.Context) {
	if notConfigured(c, h.ledger != nil, "consumption ledger") {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	from, err := h.dateOrToday(c.Query("from"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	to, err := h.dateOrToday(c.Query("to"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	meals, err := h.ledger.History(c.Request.Context(), id, from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if meals == nil {
		meals = []domain.ConsumedMeal{}
	}
	c.JSON(http.StatusOK, gin.H{"userId": id, "consumedMeals": meals})
}

// CumulativeIntake handles GET /api/v1/users/:id/intakes/cumulative?scope=
func (h *Handler) CumulativeIntake(c *gin.Context) {
	if notConfigured(c, h.ledger != nil, "consumption ledger") {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	scope, err := domain.ParseScope(c.DefaultQuery("scope", string(domain.ScopeWeek)))
	if err != nil {
		h.respondError(c, err)
		return
	}

	sum, err := h.ledger.Cumulative(c.Request.Context(), id, scope)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": id, "scope": scope, "totals": sum})
}

// dateOrToday parses a YYYY-MM-DD date, falling back to the ledger's today.
func (h *Handler) dateOrToday(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return h.ledger.Today(), nil
	}
	return domain.ParseDate(s)
}

// bindOptionalJSON binds the body when there is one.
func bindOptionalJSON(c *gin.Context, dest interface{}) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(dest)
}
