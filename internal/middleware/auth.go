package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"abacus_backend/internal/auth"
	"abacus_backend/internal/logger"
	"abacus_backend/internal/models"
)

const (
	ContextUserIDKey = "userID"
	ContextRoleKey   = "role"
)

// AuthMiddleware validates the Bearer token and stores the actor identity
// in the gin context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing or invalid"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := auth.ParseToken(jwtSecret, tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		ctx := logger.WithUserID(c.Request.Context(), claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextRoleKey, claims.Role)
		c.Next()
	}
}

// RequireRoles rejects the request unless the authenticated role is one of
// the allowed set.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]bool)
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: no role"})
			return
		}
		if !roleSet[role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: insufficient permissions"})
			return
		}
		c.Next()
	}
}

// ActorFromContext rebuilds the Actor stored by AuthMiddleware.
func ActorFromContext(c *gin.Context) (auth.Actor, bool) {
	userIDVal, exists := c.Get(ContextUserIDKey)
	if !exists {
		return auth.Actor{}, false
	}
	userID, ok := userIDVal.(string)
	if !ok || userID == "" {
		return auth.Actor{}, false
	}

	role, ok := RoleFromContext(c)
	if !ok {
		return auth.Actor{}, false
	}

	return auth.Actor{UserID: userID, Role: role}, true
}

func RoleFromContext(c *gin.Context) (models.UserRole, bool) {
	roleVal, exists := c.Get(ContextRoleKey)
	if !exists {
		return "", false
	}
	switch r := roleVal.(type) {
	case models.UserRole:
		return r, true
	case string:
		return models.UserRole(r), true
	}
	return "", false
}
