package middleware

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/badgecount/models"
)

// Recovery turns a panic in a handler into a 500 in the API's JSON shape.
// The panic is reported through slog only; gin's stderr dump is discarded.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		slog.Error("handler panicked",
			"path", c.Request.URL.Path,
			"panic", recovered,
		)
		abort(c, http.StatusInternalServerError, models.ErrCodeInternal,
			fmt.Sprintf("An error occurred: %v", recovered))
	})
}
