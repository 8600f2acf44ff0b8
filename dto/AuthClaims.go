package dto

import (
	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims is what the storefront's identity service puts in admin bearer tokens
type AuthClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

func (c *AuthClaims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}
