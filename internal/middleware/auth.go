package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vizlab/dataviz-api/internal/auth"
	apierrors "github.com/vizlab/dataviz-api/internal/errors"
)

// Context keys set by RequireAuth.
const (
	ContextKeyUserID = "user_id"
	ContextKeyRoles  = "user_roles"
)

// RequireAuth verifies the bearer token and stores the caller's identity and
// role claims in the request context. Missing, malformed, expired, and
// invalid tokens each get their own machine-readable code.
func RequireAuth(tokens *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			apierrors.RespondWithError(c, http.StatusUnauthorized,
				apierrors.NewAPIError(apierrors.ErrCodeUnauthorized, "Missing Authorization header"))
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			apierrors.RespondWithError(c, http.StatusUnauthorized,
				apierrors.NewAPIError(apierrors.ErrCodeTokenInvalid, "Authorization header must be a Bearer token"))
			c.Abort()
			return
		}

		claims, err := tokens.Parse(parts[1])
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				apierrors.RespondWithError(c, http.StatusUnauthorized,
					apierrors.NewAPIError(apierrors.ErrCodeTokenExpired, "Token has expired"))
			} else {
				apierrors.RespondWithError(c, http.StatusUnauthorized,
					apierrors.NewAPIError(apierrors.ErrCodeTokenInvalid, "Signature verification failed"))
			}
			c.Abort()
			return
		}

		if claims.TokenType != auth.TokenTypeAccess {
			apierrors.RespondWithError(c, http.StatusUnauthorized,
				apierrors.NewAPIError(apierrors.ErrCodeTokenInvalid, "Access token required"))
			c.Abort()
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyRoles, claims.Roles)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	value, exists := c.Get(ContextKeyUserID)
	if !exists {
		return 0, false
	}
	userID, ok := value.(uint64)
	return userID, ok
}

// GetRoles retrieves the current user's role claims from context
func GetRoles(c *gin.Context) []string {
	value, exists := c.Get(ContextKeyRoles)
	if !exists {
		return nil
	}
	roles, _ := value.([]string)
	return roles
}

// RequireRole rejects callers whose token does not carry the named role.
func RequireRole(roleName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, role := range GetRoles(c) {
			if role == roleName {
				c.Next()
				return
			}
		}

		apierrors.Forbidden(c, "Role not authorized")
		c.Abort()
	}
}
