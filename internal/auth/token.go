package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of a session token. The token is the sole
// carrier of authorization state: there is no server-side session table, so
// a token stays valid until it expires or the signing key rotates.
type SessionClaims struct {
	UserID        string `json:"userId"`
	WalletAddress string `json:"walletAddress"`
	IsAdmin       bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl}
}

func (t *TokenIssuer) Issue(userID, walletAddress string, isAdmin bool) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID:        userID,
		WalletAddress: walletAddress,
		IsAdmin:       isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify returns the token's claims if the signature is intact and the token
// has not expired, nil otherwise. Tampered or expired tokens get no partial
// trust.
func (t *TokenIssuer) Verify(tokenString string) *SessionClaims {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil
	}

	// Reject at exactly expiresAt too, not just after it.
	if claims.ExpiresAt == nil || !time.Now().Before(claims.ExpiresAt.Time) {
		return nil
	}
	return claims
}
