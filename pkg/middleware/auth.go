package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/collegenews/collegenews/backend/go-services/internal/tokens"
	"github.com/collegenews/collegenews/backend/go-services/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (*tokens.Claims, error)
}

// AuthMiddleware returns a Gin middleware that verifies Bearer session tokens.
// A missing or non-Bearer Authorization header is 401; a token that fails
// verification is 403. On success the context carries "claims" (a map with
// sub, id and username) for downstream handlers and the rate limiter.
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Access denied. No token provided."})
			return
		}

		claims, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			logger.Debugf("auth: token rejected: %v", err)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Invalid token."})
			return
		}

		c.Set("claims", map[string]interface{}{
			"sub":      claims.Username,
			"id":       claims.AdminID,
			"username": claims.Username,
		})
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
