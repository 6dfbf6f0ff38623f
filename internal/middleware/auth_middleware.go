package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"codegen-server/internal/domain"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserIDKey - ключ gin-контекста, под которым хранится UserID авторизованного
// пользователя.
const UserIDKey = "userID"

// TokenVerifier определяет функцию, которая проверяет строку токена и возвращает claims.
// Ошибки могут быть domain.ErrTokenInvalid, domain.ErrTokenExpired, domain.ErrTokenMalformed.
type TokenVerifier func(ctx context.Context, tokenString string) (*domain.Claims, error)

// AuthMiddleware создает Gin middleware для проверки JWT.
// Оно извлекает Bearer-токен, верифицирует его с помощью предоставленного
// verifier и кладет UserID в контекст запроса.
func AuthMiddleware(verifier TokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.With(zap.String("path", c.Request.URL.Path))

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Missing token"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Malformed Authorization header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Malformed token header"})
			return
		}
		tokenString := parts[1]

		claims, err := verifier(c.Request.Context(), tokenString)
		if err != nil {
			status := http.StatusUnauthorized
			msg := "Unauthorized: Invalid token"
			switch {
			case errors.Is(err, domain.ErrTokenExpired):
				msg = "Unauthorized: Token expired"
			case errors.Is(err, domain.ErrTokenMalformed), errors.Is(err, domain.ErrTokenInvalid):
				// Одинаковое сообщение для невалидного и некорректного токена.
			default:
				log.Error("Unexpected token verification error", zap.Error(err))
				status = http.StatusInternalServerError
				msg = "Internal server error during token verification"
			}
			log.Warn("Token verification failed", zap.Error(err))
			c.AbortWithStatusJSON(status, gin.H{"error": msg})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		log.Debug("User authorized", zap.String("userID", claims.UserID.String()))
		c.Next()
	}
}
