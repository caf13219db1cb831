package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"birdfinder/internal/service"
)

const userIDKey = "userID"

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Info("request handled")
	}
}

// requireLogin resolves the session cookie to a user id or sends the
// visitor back to the landing page.
func (h *Handler) requireLogin(c *gin.Context) {
	userID, err := h.sessions.RequireAuthenticated(c.Request.Context(), h.sessionToken(c))
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}
		h.internalError(c, "failed to resolve session", err)
		c.Abort()
		return
	}

	c.Set(userIDKey, userID)
	c.Next()
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}
