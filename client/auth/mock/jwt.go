package mock

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// createJWT creates a signed JWT for userID with the given type and expiry
func (s *Service) createJWT(userID int, tokenType string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":        strconv.Itoa(userID),
		"user_id":    userID,
		"exp":        now.Add(expiry).Unix(),
		"iat":        now.Unix(),
		"jti":        uuid.NewString(),
		"token_type": tokenType,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.Secret)
}
