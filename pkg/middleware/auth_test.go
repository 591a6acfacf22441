package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/collegenews/collegenews/backend/go-services/internal/models"
	"github.com/collegenews/collegenews/backend/go-services/internal/tokens"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newProtectedEngine(iss *tokens.Issuer) *gin.Engine {
	g := gin.New()
	g.POST("/api/blogs", AuthMiddleware(iss), func(c *gin.Context) {
		claims, ok := c.Get("claims")
		if !ok {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"claims": claims})
	})
	return g
}

func TestAuthMiddleware_NoHeader(t *testing.T) {
	g := newProtectedEngine(tokens.NewIssuer("s", time.Hour))
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, httptest.NewRequest(http.MethodPost, "/api/blogs", nil))

	require.Equal(t, http.StatusUnauthorized, rw.Code)
	require.Contains(t, rw.Body.String(), "No token provided")
}

func TestAuthMiddleware_NonBearerHeader(t *testing.T) {
	g := newProtectedEngine(tokens.NewIssuer("s", time.Hour))
	for _, h := range []string{"BadHeader", "Basic YWRtaW46YWRtaW4=", "Bearer "} {
		req := httptest.NewRequest(http.MethodPost, "/api/blogs", nil)
		req.Header.Set("Authorization", h)
		rw := httptest.NewRecorder()
		g.ServeHTTP(rw, req)
		require.Equal(t, http.StatusUnauthorized, rw.Code, "header %q", h)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	g := newProtectedEngine(tokens.NewIssuer("s", time.Hour))
	req := httptest.NewRequest(http.MethodPost, "/api/blogs", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusForbidden, rw.Code)
	require.Contains(t, rw.Body.String(), "Invalid token.")
}

func TestAuthMiddleware_ExpiredTokenForbidden(t *testing.T) {
	iss := tokens.NewIssuer("expiry-secret-xxxxxxxxxxxxxxxxxxxx", time.Nanosecond)
	tok, _, err := iss.Issue(&models.Admin{ID: 1, Username: "admin"})
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)

	g := newProtectedEngine(iss)
	req := httptest.NewRequest(http.MethodPost, "/api/blogs", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusForbidden, rw.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	iss := tokens.NewIssuer("valid-secret-xxxxxxxxxxxxxxxxxxxxx", time.Hour)
	tok, _, err := iss.Issue(&models.Admin{ID: 1, Username: "admin"})
	require.NoError(t, err)

	g := newProtectedEngine(iss)
	req := httptest.NewRequest(http.MethodPost, "/api/blogs", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusCreated, rw.Code)
	var got struct {
		Claims map[string]interface{} `json:"claims"`
	}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Equal(t, "admin", got.Claims["sub"])
	require.Equal(t, "admin", got.Claims["username"])
}
