package util

import (
	"errors"

	"storefront-otp/dto"

	"github.com/golang-jwt/jwt/v5"
)

// ParseAdminToken validates an HS256 bearer token and returns its claims
func ParseAdminToken(tokenString string, secret []byte) (*dto.AuthClaims, error) {
	claims := &dto.AuthClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method, expected HS256")
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired access token")
	}

	return claims, nil
}
