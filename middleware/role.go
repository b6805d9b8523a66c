package middleware

import (
	"net/http"

	"casaora/models"
	"casaora/utils"

	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through when the caller's profile has one of
// roles. Admins pass every guard. It must run after AuthMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := Role(c)
		if role == models.RoleAdmin {
			c.Next()
			return
		}
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		utils.JSONError(c, http.StatusForbidden, "Forbidden", "this action requires the "+string(roles[0])+" role")
	}
}
