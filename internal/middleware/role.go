package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetlease/internal/domain/account"
	"fleetlease/pkg/utils"
)

func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			utils.ErrorResponse(c, http.StatusForbidden, "Role not found in context")
			c.Abort()
			return
		}

		userRole := role.(string)

		for _, allowedRole := range allowedRoles {
			if userRole == allowedRole {
				c.Next()
				return
			}
		}

		utils.ErrorResponse(c, http.StatusForbidden, "Insufficient permissions")
		c.Abort()
	}
}

func AdminOnly() gin.HandlerFunc {
	return RoleMiddleware(account.RoleAdmin)
}

func FleetOnly() gin.HandlerFunc {
	return RoleMiddleware(account.RoleFleet, account.RoleAdmin)
}

func DriverOnly() gin.HandlerFunc {
	return RoleMiddleware(account.RoleDriver, account.RoleAdmin)
}
