package auth

import (
	"fmt"

	"github.com/futig/lawgpt-backend/internal/entity"
	"github.com/golang-jwt/jwt/v5"
)

// Claims of an access token. Subject carries the user's email.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

func (uc *AuthUsecase) issueToken(user *entity.User) (string, error) {
	now := uc.now()
	claims := Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(uc.cfg.AccessTokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	return signed, nil
}

// ParseToken verifies an access token and returns its claims.
// Every verification failure is reported as entity.ErrInvalidToken.
func (uc *AuthUsecase) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return uc.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(uc.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, entity.ErrInvalidToken
	}

	return claims, nil
}
