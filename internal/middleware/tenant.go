package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// TenantHeader carries the tenant when the auth layer did not set one
const TenantHeader = "X-Tenant-ID"

// TenantMiddleware extracts the tenant a request is scoped to.
// A tenant_id already set by IstioAuth (from JWT claims) wins over the
// header. Requests without tenant context are rejected.
func TenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetString("tenant_id")
		if tenantID == "" {
			tenantID = strings.TrimSpace(c.GetHeader(TenantHeader))
		}

		if tenantID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "TENANT_REQUIRED",
					"message": "Tenant ID is required. Include the X-Tenant-ID header.",
				},
			})
			c.Abort()
			return
		}

		c.Set("tenant_id", tenantID)
		c.Next()
	}
}
