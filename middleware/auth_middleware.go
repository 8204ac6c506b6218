package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/api/models"
	"storefront/api/utils"
)

const (
	ContextUser  = "user"
	ContextToken = "token"
)

type TokenValidator interface {
	ValidateJWT(token string) (*utils.Claims, error)
}

type TokenBlacklist interface {
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}

type UserLookup interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// AuthRequired resolves the bearer token to a user and stores both on the
// context under ContextUser and ContextToken.
func AuthRequired(tokens TokenValidator, blacklist TokenBlacklist, users UserLookup, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		revoked, err := blacklist.IsBlacklisted(c.Request.Context(), tokenString)
		if err != nil {
			log.Error("AuthRequired: blacklist lookup failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed"})
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token invalidated (logged out)"})
			return
		}

		claims, err := tokens.ValidateJWT(tokenString)
		if err != nil {
			log.Debug("AuthRequired: invalid JWT", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed"})
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ContextUser, user)
		c.Set(ContextToken, tokenString)
		c.Next()
	}
}

// CurrentUser is only valid behind AuthRequired.
func CurrentUser(c *gin.Context) *models.User {
	user, _ := c.MustGet(ContextUser).(*models.User)
	return user
}
