package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the payload carried by an access token. Role is embedded so
// the auth middleware can gate admin routes without a user lookup.
type TokenClaims struct {
	UserID string `json:"userID"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type TokenService struct {
	accessTokenSecret       []byte
	accessTokenExpiryInSecs int64
}

func NewTokenService(accessTokenSecret string, accessTokenExpiryInSecs int64) *TokenService {
	return &TokenService{
		accessTokenSecret:       []byte(accessTokenSecret),
		accessTokenExpiryInSecs: accessTokenExpiryInSecs,
	}
}

func (ts *TokenService) SignAccessToken(userID, role string) (string, error) {
	now := time.Now()

	claims := &TokenClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(
				now.Add(time.Duration(ts.accessTokenExpiryInSecs) * time.Second),
			),
		},
	}

	token := jwt.NewWithClaims(
		jwt.SigningMethodHS256,
		claims,
	)

	signed, err := token.SignedString(ts.accessTokenSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return signed, nil
}

func (ts *TokenService) ValidateAccessToken(tokenStr string) (isValid bool, claims *TokenClaims, err error) {
	claims = &TokenClaims{}

	token, err := jwt.ParseWithClaims(
		tokenStr,
		claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf(
					"unexpected signing method: %v",
					t.Header["alg"],
				)
			}
			return ts.accessTokenSecret, nil
		},
	)
	if err != nil {
		return false, nil, nil
	}

	if !token.Valid {
		return false, nil, nil
	}

	return true, claims, nil
}
