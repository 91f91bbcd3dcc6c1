package http

import (
	"log/slog"
	"net/http"

	"github.com/dietledger/backend/internal/usecase"
	"github.com/gin-gonic/gin"
)

const (
	serviceName    = "dietledger-backend"
	serviceVersion = "1.0.0"
)

// Services groups the usecases served over HTTP. A nil service makes its
// endpoints answer 501.
type Services struct {
	Catalog *usecase.FoodCatalogService
	Meals   *usecase.MealService
	Plans   *usecase.PlanRollup
	Ledger  *usecase.ConsumptionLedger
	Users   *usecase.UserService
}

// Handler holds HTTP handlers and their dependencies
type Handler struct {
	catalog *usecase.FoodCatalogService
	meals   *usecase.MealService
	plans   *usecase.PlanRollup
	ledger  *usecase.ConsumptionLedger
	users   *usecase.UserService
	log     *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(log *slog.Logger, s Services) *Handler {
	return &Handler{
		catalog: s.Catalog,
		meals:   s.Meals,
		plans:   s.Plans,
		ledger:  s.Ledger,
		users:   s.Users,
		log:     log.With("component", "http"),
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// notConfigured aborts with 501 when the backing service is absent.
func notConfigured(c *gin.Context, configured bool, what string) bool {
	if configured {
		return false
	}
	c.JSON(http.StatusNotImplemented, gin.H{"error": what + " not configured"})
	return true
}
