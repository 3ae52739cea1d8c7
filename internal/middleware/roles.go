package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
)

// RequireRoles creates a Gin middleware handler that rejects requests whose
// authenticated actor does not carry one of the allowed roles. It must run
// after AuthMiddleware.
func RequireRoles(allowed ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActorFromContext(c)
		if !ok {
			GetLoggerFromCtx(c.Request.Context()).Error("Actor missing from context in role check")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		for _, role := range allowed {
			if actor.Role == role {
				c.Next()
				return
			}
		}

		GetLoggerFromCtx(c.Request.Context()).Warn("Role not allowed for route",
			"role", string(actor.Role), "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions for this operation"})
	}
}
