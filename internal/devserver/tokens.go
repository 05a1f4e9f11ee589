package devserver

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/dmitrijs2005/userdesk/internal/common"
)

// Claims carries the signed-in email next to the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Tokens issues and verifies bearer tokens. Revoked tokens are remembered
// until they would have expired anyway.
type Tokens struct {
	secret  []byte
	ttl     time.Duration
	revoked *cache.Cache
	now     func() time.Time
}

func NewTokens(secret []byte, ttl time.Duration) *Tokens {
	return &Tokens{
		secret:  secret,
		ttl:     ttl,
		revoked: cache.New(ttl, ttl),
		now:     time.Now,
	}
}

func (t *Tokens) Issue(email string) (string, error) {
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		Email: email,
	})
	return token.SignedString(t.secret)
}

// Verify returns the email the token was issued for.
func (t *Tokens) Verify(tokenString string) (string, error) {
	if _, revoked := t.revoked.Get(tokenString); revoked {
		return "", common.ErrTokenRevoked
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(tok *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", errors.Join(common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", common.ErrInvalidToken
	}
	return claims.Email, nil
}

// Revoke blocks tokenString for the rest of its lifetime.
func (t *Tokens) Revoke(tokenString string) {
	t.revoked.Set(tokenString, struct{}{}, cache.DefaultExpiration)
}
