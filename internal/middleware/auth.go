package middleware

import (
	"net/http"

	"govhub/internal/auth"

	"github.com/gin-gonic/gin"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "session"

// ClaimsKey is the context key the verified claims are stored under.
const ClaimsKey = "claims"

// LoadSession reads the session cookie and, when the token verifies, puts
// its claims on the request context. It never aborts: anonymous requests
// just carry no claims. The gate trusts the token's embedded isAdmin flag
// and does no database lookup, so a user's privileges are what was true at
// issuance time, by design.
func LoadSession(tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(SessionCookie)
		if err == nil && tokenString != "" {
			if claims := tokens.Verify(tokenString); claims != nil {
				c.Set(ClaimsKey, claims)
			}
		}
		c.Next()
	}
}

// AuthRequired aborts with 401 unless LoadSession placed valid claims on the
// context.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentClaims(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// AdminRequired aborts with 401 for anonymous requests and 403 for
// authenticated non-admins.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := CurrentClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if !claims.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: Admin access required"})
			return
		}
		c.Next()
	}
}

// CurrentClaims returns the verified session claims, or nil when the request
// is anonymous.
func CurrentClaims(c *gin.Context) *auth.SessionClaims {
	v, exists := c.Get(ClaimsKey)
	if !exists {
		return nil
	}
	claims, ok := v.(*auth.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}
