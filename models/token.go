package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims, JWT access token'ın payload'ı.
// Server her request'te token'ı doğrular ve UserID ile çağıranı tanır.
type TokenClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
