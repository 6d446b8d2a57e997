package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long a signed token stays valid.
const TokenTTL = time.Hour

var ErrEmptySecret = errors.New("jwt secret must not be empty")

// Claims is the identity claim set carried by admin tokens.
type Claims struct {
	Email    string `json:"email"`
	IsActive bool   `json:"isActive"`
	jwt.RegisteredClaims
}

// VerifyResult is the outcome of Verify. An invalid token is a normal result,
// not an error.
type VerifyResult struct {
	Valid  bool
	Claims *Claims
}

// TokenCodec signs and verifies HS256 tokens with one shared secret.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// NewTokenCodec builds a codec around secret. It is meant to be called once at
// startup; an error there is fatal.
func NewTokenCodec(secret string) (*TokenCodec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &TokenCodec{secret: []byte(secret), now: time.Now}, nil
}

// Sign issues a token for the admin, valid for TokenTTL from now.
func (tc *TokenCodec) Sign(user AdminUser) (string, error) {
	now := tc.now()
	claims := Claims{
		Email:    user.Email,
		IsActive: user.IsActive,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tc.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Verify checks the signature, algorithm and expiry of token. The issue time
// is not checked, so tokens from an instance whose clock runs ahead are
// accepted.
func (tc *TokenCodec) Verify(token string) VerifyResult {
	claims := new(Claims)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tc.now),
	)
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return tc.secret, nil
	})
	if err != nil || !parsed.Valid {
		return VerifyResult{}
	}
	return VerifyResult{Valid: true, Claims: claims}
}

// User converts verified claims back into the admin identity.
func (c *Claims) User() AdminUser {
	id, _ := strconv.Atoi(c.Subject)
	return AdminUser{ID: id, Email: c.Email, IsActive: c.IsActive}
}
