// Package auth issues and validates the HS256 session tokens the authority
// hands out on login.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"assettrack/internal/common"
)

// Claims carries the standard registered claims plus the authenticated
// operator's identity.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string
	Username string
}

// GenerateToken mints a signed session token for the given operator.
func GenerateToken(userID, username string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID:   userID,
		Username: username,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken validates a token string and returns its claims. Expired or
// tampered tokens yield common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
