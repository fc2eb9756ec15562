package middlewares

import (
	"net/http"

	"github.com/beadworks/storeadmin/internal/authz"
	"github.com/gin-gonic/gin"
)

// RequireRoles gates a route on an explicit role set, declared where the
// route is registered.
func (m *AuthMiddleware) RequireRoles(roles ...string) gin.HandlerFunc {
	allowed := authz.Roles(roles...)

	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing identity context",
				},
			})
			return
		}

		if err := authz.Check(role, allowed); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Insufficient role for this operation",
				},
			})
			return
		}
		c.Next()
	}
}
