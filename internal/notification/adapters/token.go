package adapters

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenSigner issues the short-lived bearer tokens the notification service
// expects: HS256, issued by the service id, signed with the secret key.
type TokenSigner struct {
	serviceID  string
	signingKey []byte
	now        func() time.Time
}

func NewTokenSigner(serviceID, secretKey string) *TokenSigner {
	return &TokenSigner{serviceID: serviceID, signingKey: []byte(secretKey), now: time.Now}
}

func (s *TokenSigner) Sign() (string, error) {
	if len(s.signingKey) == 0 {
		return "", errors.New("notify secret key is not configured")
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:   s.serviceID,
		IssuedAt: jwt.NewNumericDate(now),
		ID:       uuid.NewString(),
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign notify token: %w", err)
	}
	return signed, nil
}

// Verify parses a token signed with the same key. The notification service
// does this on its side; tests use it to check what was sent.
func (s *TokenSigner) Verify(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.serviceID))
	if err != nil {
		return nil, fmt.Errorf("verify notify token: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("verify notify token: invalid token")
	}
	return claims, nil
}
