package domain

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims - полезная нагрузка JWT, выданного сервисом аутентификации.
type Claims struct {
	UserID uuid.UUID `json:"userId"`
	Roles  []string  `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// HasRole проверяет наличие роли в списке ролей.
func HasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
