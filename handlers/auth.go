package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/collegenews/collegenews/backend/go-services/internal/admins"
	"github.com/collegenews/collegenews/backend/go-services/internal/tokens"
	"github.com/collegenews/collegenews/backend/go-services/pkg/logger"
	"github.com/collegenews/collegenews/backend/go-services/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// LoginRequest is the admin credential exchange body.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// LoginResponse carries the signed session token.
type LoginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	admins *admins.Service
	issuer *tokens.Issuer
}

func NewAuthHandler(a *admins.Service, iss *tokens.Issuer) *AuthHandler {
	return &AuthHandler{admins: a, issuer: iss}
}

// Register mounts /login and the token-protected /me under rg.
func (h *AuthHandler) Register(rg gin.IRouter, auth gin.HandlerFunc) {
	rg.POST("/login", h.Login)
	rg.GET("/me", auth, h.Me)
}

// Login verifies admin credentials and returns a session token. Unknown
// usernames and wrong passwords produce the same response.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username and password are required."})
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username and password are required."})
		return
	}

	admin, err := h.admins.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, admins.ErrInvalidCredentials) {
			metrics.LoginAttempts.WithLabelValues("rejected").Inc()
			logger.Warnf("login rejected for %q from %s", req.Username, c.ClientIP())
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid username or password."})
			return
		}
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		logger.Errorf("login lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error."})
		return
	}

	tok, exp, err := h.issuer.Issue(admin)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		logger.Errorf("issue token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error."})
		return
	}
	metrics.LoginAttempts.WithLabelValues("ok").Inc()
	logger.Infof("admin %s logged in", admin.Username)
	c.JSON(http.StatusOK, LoginResponse{Token: tok, Username: admin.Username, ExpiresAt: exp.UTC()})
}

// Me echoes the verified token claims.
func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := c.Get("claims")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Access denied. No token provided."})
		return
	}
	c.JSON(http.StatusOK, claims)
}
