package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/badgecount/batch"
	"github.com/use-agent/badgecount/models"
)

// Batch returns a handler for POST /api/v1/batch.
//
// The rows are counted synchronously, in order, over one session opened for
// the request. Rows without an http(s) URL come back skipped.
func Batch(open SessionFactory, runner *batch.Runner, maxRows int) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var req models.BatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBatchError(c, models.NewCountError(models.ErrCodeInvalidInput, "invalid batch request: "+err.Error(), nil))
			return
		}
		if maxRows > 0 && len(req.Rows) > maxRows {
			respondBatchError(c, models.NewCountError(models.ErrCodeInvalidInput,
				fmt.Sprintf("maximum %d rows per batch", maxRows), nil))
			return
		}

		rows := make([]models.BatchRow, len(req.Rows))
		for i, in := range req.Rows {
			rows[i] = models.BatchRow{Name: in.Name, URL: in.ProfileURL}
		}

		ctx := c.Request.Context()
		session, err := open(ctx)
		if err != nil {
			respondBatchError(c, err)
			return
		}
		defer func() {
			if err := session.Close(); err != nil {
				slog.Warn("browser session close failed", "error", err)
			}
		}()

		out := runner.Run(ctx, session, rows)
		if err := ctx.Err(); err != nil {
			respondBatchError(c, models.NewCountError(models.ErrCodeInternal, "batch interrupted", err))
			return
		}

		c.JSON(http.StatusOK, models.BatchResponse{
			Success:  true,
			Rows:     out,
			Summary:  models.Tally(out),
			Duration: time.Since(start).Milliseconds(),
		})
	}
}

func respondBatchError(c *gin.Context, err error) {
	code := models.CodeOf(err)
	c.JSON(statusFor(code), models.BatchResponse{
		Success: false,
		Error:   ErrorMessage(err),
		Code:    code,
	})
}
