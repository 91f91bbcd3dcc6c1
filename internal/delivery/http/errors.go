package http

import (
	"errors"
	"net/http"

	"github.com/dietledger/backend/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// statusFor maps a domain error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMissingProfileData), errors.Is(err, domain.ErrInvalidProfile):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConcurrentUpdate), errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUSDAAPIFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": ...}. Internal errors are logged
// and hidden from the client.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	body := gin.H{"error": err.Error()}
	var missing *domain.MissingProfileDataError
	if errors.As(err, &missing) {
		body["missingFields"] = missing.Fields
	}
	c.JSON(status, body)
}

// badRequest answers 400 with msg.
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// pathUUID parses the named path parameter; it writes a 400 and returns
// false when the value is not a UUID.
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name+": must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
