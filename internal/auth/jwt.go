// Package auth verifies and mints the bearer tokens clients present on the
// websocket handshake.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

var ErrExpiredToken = errors.New("token has expired")

type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// Claims carries the user identity. "id" is the numeric user id issued by
// the account service.
type Claims struct {
	ID    int64  `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// JWTVerifier checks HMAC signed tokens against a shared secret.
type JWTVerifier struct {
	cfg    Config
	parser *jwt.Parser
}

func NewJWTVerifier(cfg Config) (*JWTVerifier, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth: empty jwt secret")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg()}),
		jwt.WithLeeway(5 * time.Second),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &JWTVerifier{cfg: cfg, parser: jwt.NewParser(opts...)}, nil
}

// Verify implements core.CredentialVerifier. Failures wrap domain.ErrAuth.
func (v *JWTVerifier) Verify(_ context.Context, token string) (domain.Identity, error) {
	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return []byte(v.cfg.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, fmt.Errorf("%w: %w", domain.ErrAuth, ErrExpiredToken)
		}
		return domain.Identity{}, fmt.Errorf("%w: %w", domain.ErrAuth, err)
	}
	id, err := domain.NewIdentity(domain.UserID(claims.ID), claims.Name, claims.Email)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %w", domain.ErrAuth, err)
	}
	return id, nil
}

// Sign mints a token for id. Used by the dev token tool and tests.
func (v *JWTVerifier) Sign(id domain.Identity) (string, error) {
	now := time.Now()
	claims := Claims{
		ID:    int64(id.UserID),
		Email: id.Email,
		Name:  id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.cfg.Issuer,
			Subject:   fmt.Sprint(int64(id.UserID)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.cfg.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(v.cfg.Secret))
}
