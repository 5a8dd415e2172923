package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/akinalp/tepki/models"
	"github.com/akinalp/tepki/pkg"
)

// TokenService, access token'ları doğrular ve (geliştirme / test için) üretir.
// Token'lar kimlik sağlayıcı tarafından aynı HMAC secret ile imzalanır.
type TokenService interface {
	ValidateAccessToken(tokenString string) (*models.TokenClaims, error)
	IssueAccessToken(user *models.User, ttl time.Duration) (string, error)
}

type tokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService, constructor.
func NewTokenService(secret string) TokenService {
	return &tokenService{secret: []byte(secret), now: time.Now}
}

func (s *tokenService) ValidateAccessToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", pkg.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("%w: invalid token claims", pkg.ErrUnauthorized)
	}
	return claims, nil
}

func (s *tokenService) IssueAccessToken(user *models.User, ttl time.Duration) (string, error) {
	now := s.now()
	claims := models.TokenClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
