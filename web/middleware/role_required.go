package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolhub/portal/storage/model"
)

// RoleRequired permits the request when the authenticated identity carries
// one of the given roles. It guards mutating routes only; read visibility is
// the access policy's job.
func RoleRequired(roles ...model.Role) gin.HandlerFunc {
	allowed := make(map[model.Role]bool)
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		identity := GetIdentity(c)
		if identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
			return
		}
		if !allowed[identity.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "forbidden"})
			return
		}
		c.Next()
	}
}
