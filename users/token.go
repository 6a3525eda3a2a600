package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTokenTTL = 100 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

//TokenIssuer mints and checks signed, time-limited bearer tokens. Verify
// reads back the account id carried by a token from Sign; it is kept for
// clients and tests since no route authenticates requests yet.
type TokenIssuer interface {
	Sign(ctx context.Context, id ID) (string, error)
	Verify(token string) (ID, error)
}

type tokenUser struct {
	ID ID `json:"id"`
}

type Claims struct {
	User tokenUser `json:"user"`
	jwt.RegisteredClaims
}

type jwtIssuer struct {
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

func NewJWTIssuer(signingKey []byte, ttl time.Duration) TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &jwtIssuer{signingKey: signingKey, ttl: ttl, now: time.Now}
}

func (j *jwtIssuer) Sign(ctx context.Context, id ID) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	now := j.now()
	claims := Claims{
		User: tokenUser{ID: id},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(id),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.signingKey)
	if err != nil {
		return "", fmt.Errorf("error signing token: %w", err)
	}
	return signed, nil
}

func (j *jwtIssuer) Verify(tokenString string) (ID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(j.now))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.User.ID == "" {
		return "", ErrInvalidToken
	}
	return claims.User.ID, nil
}
