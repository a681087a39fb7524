package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/badgecount/batch"
	"github.com/use-agent/badgecount/cache"
	"github.com/use-agent/badgecount/counter"
	"github.com/use-agent/badgecount/models"
)

// SessionFactory opens a fresh browser session. The caller closes it.
type SessionFactory func(ctx context.Context) (counter.Session, error)

// ValidateProfileURL trims raw and checks it names a public profile on a
// host containing domainToken. The error is a *models.CountError with code
// ErrCodeInvalidInput and one of the fixed validation messages.
func ValidateProfileURL(raw, domainToken string) (string, error) {
	u := strings.TrimSpace(raw)
	switch {
	case u == "":
		return "", models.NewCountError(models.ErrCodeInvalidInput, models.MsgEmptyURL, nil)
	case !batch.HasWebScheme(u):
		return "", models.NewCountError(models.ErrCodeInvalidInput, models.MsgWrongScheme, nil)
	case domainToken != "" && !strings.Contains(strings.ToLower(u), strings.ToLower(domainToken)):
		return "", models.NewCountError(models.ErrCodeInvalidInput, models.MsgWrongDomain, nil)
	}
	return u, nil
}

// Count returns a handler for POST /count-badges.
//
// Each request gets a private browser session that is closed before the
// handler returns, whatever the outcome:
//  1. Parse and validate; a malformed body counts as an empty URL.
//  2. Serve from cache when max_age allows.
//  3. Open a session; failure is a 500.
//  4. Count. A page that never renders badges still answers 200 with 0.
func Count(open SessionFactory, ctr *counter.Counter, domainToken string, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			slog.Debug("unreadable count request body", "error", err)
			req = models.CountRequest{}
		}

		profileURL, err := ValidateProfileURL(req.ProfileURL, domainToken)
		if err != nil {
			respondError(c, err)
			return
		}

		useCache := cc != nil && req.MaxAge > 0
		key := cache.Key(profileURL)
		if useCache {
			if cached, hit := cc.Get(key, req.MaxAge); hit {
				cached.CacheStatus = "hit"
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		ctx := c.Request.Context()
		session, err := open(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		defer func() {
			if err := session.Close(); err != nil {
				slog.Warn("browser session close failed", "error", err)
			}
		}()

		result := ctr.Count(ctx, session, profileURL)

		resp := models.CountResponse{
			Success:    true,
			BadgeCount: result.Count,
			ProfileURL: profileURL,
		}
		if useCache && !result.Degraded() {
			cc.Set(key, resp)
			resp.CacheStatus = "miss"
		}
		c.JSON(http.StatusOK, resp)
	}
}
