package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/botivate/sheetsync/pkg/jwt"
	"github.com/botivate/sheetsync/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// WebhookSecretHeader carries the shared secret on inbound edit events
	WebhookSecretHeader = "X-Webhook-Secret"

	// AdminClaimsContextKey stores the validated admin claims in the gin context
	AdminClaimsContextKey = "admin_claims"
)

// WebhookSecretMiddleware admits requests whose X-Webhook-Secret matches secret.
// An empty secret rejects everything.
func WebhookSecretMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(WebhookSecretHeader)

		if secret == "" || token == "" || !jwt.TimingSafeCompare(token, secret) {
			logger.Warn("Invalid webhook secret",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing webhook secret"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// AdminJWTMiddleware requires an "Authorization: Bearer <jwt>" header carrying
// an admin-role token issued by tokenManager.
func AdminJWTMiddleware(tokenManager *jwt.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			_ = c.Error(fmt.Errorf("missing bearer token")) //nolint:errcheck
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		claims, err := tokenManager.ValidateToken(token)
		if err != nil {
			_ = c.Error(fmt.Errorf("invalid admin token: %w", err)) //nolint:errcheck
			if errors.Is(err, jwt.ErrExpiredToken) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			}
			c.Abort()
			return
		}

		if claims.Role != jwt.RoleAdmin {
			_ = c.Error(fmt.Errorf("role %q is not allowed", claims.Role)) //nolint:errcheck
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			c.Abort()
			return
		}

		c.Set(AdminClaimsContextKey, claims)
		c.Next()
	}
}
