package middleware

import (
	"errors"
	"strings"

	domainerrors "appstore.backend/internal/domain/errors"
	"appstore.backend/internal/interfaces/http/response"
	"appstore.backend/pkg/jwt"
	"appstore.backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// AccountIDKey is the context key for the authenticated account ID
	AccountIDKey = "accountId"
	// AccountEmailKey is the context key for the authenticated account email
	AccountEmailKey = "accountEmail"
)

type tokenValidator interface {
	ValidateTokenType(tokenString, tokenType string) (*jwt.Claims, error)
}

// AuthMiddleware accepts only access tokens. Refresh tokens are rejected.
func AuthMiddleware(tokens tokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			response.AbortWithError(c, domainerrors.Unauthorized("Authorization header is required"))
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			response.AbortWithError(c, domainerrors.Unauthorized("Invalid authorization format. Use: Bearer <token>"))
			return
		}

		claims, err := tokens.ValidateTokenType(strings.TrimPrefix(authHeader, BearerPrefix), jwt.TokenTypeAccess)
		if err != nil {
			logger.Debug(c.Request.Context(), "Rejected bearer token",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			if errors.Is(err, jwt.ErrExpiredToken) {
				response.AbortWithError(c, domainerrors.Unauthorized("Token has expired"))
				return
			}
			response.AbortWithError(c, domainerrors.Unauthorized("Invalid token"))
			return
		}

		c.Set(AccountIDKey, claims.AccountID)
		c.Set(AccountEmailKey, claims.Email)

		c.Next()
	}
}

// GetAccountID gets the authenticated account ID from context
func GetAccountID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(AccountIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
