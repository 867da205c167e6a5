package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/KabriAcid/ammamricemill-sub002/internal/dto"
	"github.com/KabriAcid/ammamricemill-sub002/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// SessionValidator confirms that the session behind a token is still usable.
type SessionValidator interface {
	ValidateSession(ctx context.Context, sessionID, userID string) error
}

// AuthMiddleware creates a Gin middleware handler that validates JWT tokens.
// A missing or malformed header is 401; a token that fails verification or
// whose session is gone is 403. A nil sessions validator skips the session lookup.
func AuthMiddleware(jwtSecret string, sessions SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("Authorization header missing")
			abortWithError(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			logger.Warn("Authorization header format invalid")
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		claims, err := utils.ParseAndValidateJWT(parts[1], jwtSecret)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			}
			logger.Warn("Invalid token", slog.String("error", err.Error()))
			abortWithError(c, http.StatusForbidden, msg)
			return
		}

		userID, sessionID := claims.Subject, claims.ID
		if userID == "" || sessionID == "" {
			logger.Warn("Token is missing subject or session id")
			abortWithError(c, http.StatusForbidden, "Invalid token claims")
			return
		}

		if sessions != nil {
			if err := sessions.ValidateSession(c.Request.Context(), sessionID, userID); err != nil {
				logger.Warn("Session rejected", slog.String("session_id", sessionID), slog.String("error", err.Error()))
				abortWithError(c, http.StatusForbidden, "Session is no longer valid")
				return
			}
		}

		enrichedLogger := logger.With(slog.String("user_id", userID))
		ctx := context.WithValue(c.Request.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, sessionIDKey, sessionID)
		ctx = context.WithValue(ctx, loggerCtxKey, enrichedLogger)
		c.Request = c.Request.WithContext(ctx)
		c.Set(string(userIDKey), userID)
		c.Set(string(sessionIDKey), sessionID)
		c.Set(string(loggerKey), enrichedLogger)

		c.Next()
	}
}

func abortWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, dto.Envelope{Success: false, Error: msg})
}
