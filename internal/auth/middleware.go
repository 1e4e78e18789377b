package auth

import (
	"context"
	"net/http"
	"strings"

	dom "taskmanager/internal/domain"

	"github.com/gin-gonic/gin"
)

const contextKeyUserID = "user_id"

// Validator resolves a bearer token to a user id.
type Validator interface {
	ValidateToken(ctx context.Context, token string) (int64, error)
}

// UserIDFromContext returns the current user ID set by RequireToken. 0 if not set.
func UserIDFromContext(c *gin.Context) int64 {
	v, ok := c.Get(contextKeyUserID)
	if !ok {
		return 0
	}
	id, ok := v.(int64)
	if !ok {
		return 0
	}
	return id
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireToken returns a middleware that validates the bearer token and sets
// the current user ID in context. Missing or invalid tokens get 401; a
// failing cache gets 500. Both abort the request.
func RequireToken(v Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required", "kind": dom.KindUnauthorized.String()})
			return
		}
		userID, err := v.ValidateToken(c.Request.Context(), token)
		if err != nil {
			kind := dom.KindOf(err)
			status := http.StatusUnauthorized
			if kind != dom.KindUnauthorized {
				status = http.StatusInternalServerError
				_ = c.Error(err)
			}
			c.AbortWithStatusJSON(status, gin.H{"error": dom.Message(err), "kind": kind.String()})
			return
		}
		c.Set(contextKeyUserID, userID)
		c.Next()
	}
}
