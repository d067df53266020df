package auth

import (
	"errors"
	"fmt"
	"time"

	"campusevents/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "campusevents"

// ErrInvalidToken is returned by Verify for a malformed, forged or expired token.
var ErrInvalidToken = errors.New("invalid session token")

// JWTSessionTokens signs and verifies session tokens.
type JWTSessionTokens struct {
	secret []byte
}

// NewJWTSessionTokens returns a signer that wraps a session id in an HS256 JWT.
// The same value issues and verifies tokens.
func NewJWTSessionTokens(secret string) *JWTSessionTokens {
	return &JWTSessionTokens{secret: []byte(secret)}
}

var (
	_ domain.TokenIssuer   = (*JWTSessionTokens)(nil)
	_ domain.TokenVerifier = (*JWTSessionTokens)(nil)
)

func (j *JWTSessionTokens) Issue(sessionID string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (j *JWTSessionTokens) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
