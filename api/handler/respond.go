package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/badgecount/models"
)

// statusFor maps an error code to its HTTP status.
func statusFor(code string) int {
	switch code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// ErrorMessage renders err the way clients see it. Validation messages are
// passed through verbatim; everything else is prefixed "An error occurred: ".
func ErrorMessage(err error) string {
	var ce *models.CountError
	if errors.As(err, &ce) {
		if ce.Code == models.ErrCodeInvalidInput {
			return ce.Message
		}
		return "An error occurred: " + ce.Cause()
	}
	return "An error occurred: " + err.Error()
}

// respondError writes a count-shaped error response for err.
func respondError(c *gin.Context, err error) {
	code := models.CodeOf(err)
	c.JSON(statusFor(code), models.CountResponse{
		Success: false,
		Error:   ErrorMessage(err),
		Code:    code,
	})
}
