package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// GenerateToken signs a token identifying the user with the given id.
func GenerateToken(userID uint, secret string, expiry time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": jwt.NewNumericDate(time.Now().Add(expiry)),
	})
	return token.SignedString([]byte(secret))
}

// ParseToken validates a token and returns the id of its user.
func ParseToken(tokenString, secret string) (uint, error) {
	token, err := jwt.ParseWithClaims(tokenString, jwt.MapClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, ErrInvalidToken
	}

	// JWT will parse a figure to float64
	sub, ok := token.Claims.(jwt.MapClaims)["sub"].(float64)
	if !ok || sub < 1 {
		return 0, ErrInvalidToken
	}
	return uint(sub), nil
}
