package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/schoolhub/portal/web/service"
)

const identityKey = "identity"

// TokenRequired authenticates the bearer token and stores the resolved
// identity in the gin context. Missing, invalid and orphaned tokens all
// abort with 401 and their own message.
func TokenRequired(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
			c.Abort()
			return
		}
		resolve(c, auth, tokenString)
	}
}

// TokenOptional resolves a bearer token when one is supplied and lets the
// request through as an anonymous guest when none is. A supplied but bad
// token still aborts: a client holding a stale token should learn about it.
func TokenOptional(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}
		resolve(c, auth, tokenString)
	}
}

func resolve(c *gin.Context, auth *service.AuthService, tokenString string) {
	identity, err := auth.Authenticate(tokenString)
	if err != nil {
		msg := "invalid token"
		if errors.Is(err, service.ErrUnknownUser) {
			msg = "unknown user"
		}
		c.JSON(http.StatusUnauthorized, gin.H{"message": msg})
		c.Abort()
		return
	}
	c.Set(identityKey, identity)
	c.Set("role", string(identity.Role))
	c.Next()
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetIdentity returns the resolved identity of the request, or nil for an
// anonymous caller.
func GetIdentity(c *gin.Context) *service.Identity {
	val, exists := c.Get(identityKey)
	if !exists {
		return nil
	}
	identity, _ := val.(*service.Identity)
	return identity
}
