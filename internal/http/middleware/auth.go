package middleware

import (
	"net/http"
	"strings"

	"task_manager/internal/dto"
	"task_manager/internal/logger"

	"github.com/gin-gonic/gin"
)

const SubjectKey = "subject"

// TokenParser is implemented by *service.TokenManager.
type TokenParser interface {
	Parse(token string) (string, error)
}

// RequireBearer rejects requests without a valid bearer token. A nil parser
// disables the check.
func RequireBearer(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			c.Next()
			return
		}

		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.DetailResponse{Detail: "Not authenticated"})
			return
		}

		subject, err := tokens.Parse(raw)
		if err != nil {
			logger.FromContext(c.Request.Context()).Debug("bearer token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.DetailResponse{Detail: "Not authenticated"})
			return
		}

		c.Set(SubjectKey, subject)
		c.Next()
	}
}
