package service

import (
	"context"
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sumire/strava-bridge/internal/domain"
)

// IssuerConfig holds the claims shared by every issued custom token.
type IssuerConfig struct {
	Issuer   string
	Audience string
	TTL      time.Duration
}

// CustomClaims are the claims of an issued custom token.
type CustomClaims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies short-lived custom tokens bound to an
// internal user id.
type TokenIssuer struct {
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
	cfg       IssuerConfig
	now       func() time.Time
}

// NewHMACTokenIssuer creates a TokenIssuer signing with HS256.
func NewHMACTokenIssuer(secret []byte, cfg IssuerConfig) *TokenIssuer {
	return &TokenIssuer{
		method:    jwt.SigningMethodHS256,
		signKey:   secret,
		verifyKey: secret,
		cfg:       cfg,
		now:       time.Now,
	}
}

// NewRSATokenIssuer creates a TokenIssuer signing with RS256.
func NewRSATokenIssuer(key *rsa.PrivateKey, cfg IssuerConfig) *TokenIssuer {
	return &TokenIssuer{
		method:    jwt.SigningMethodRS256,
		signKey:   key,
		verifyKey: &key.PublicKey,
		cfg:       cfg,
		now:       time.Now,
	}
}

// NewRSATokenIssuerFromPEM parses a PEM encoded RSA private key and creates
// an RS256 TokenIssuer.
func NewRSATokenIssuerFromPEM(pemBytes []byte, cfg IssuerConfig) (*TokenIssuer, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("parse signing key: %w", err)
	}
	return NewRSATokenIssuer(key, cfg), nil
}

// CreateCustomToken signs a token whose subject is uid.
func (i *TokenIssuer) CreateCustomToken(_ context.Context, uid string) (string, error) {
	now := i.now()

	claims := CustomClaims{
		UID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.cfg.Issuer,
			Subject:   uid,
			Audience:  jwt.ClaimStrings{i.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.cfg.TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.signKey)
	if err != nil {
		return "", fmt.Errorf("sign custom token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies a custom token issued by this TokenIssuer and
// returns the internal user id it is bound to.
func (i *TokenIssuer) ValidateToken(tokenString string) (string, error) {
	var claims CustomClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims,
		func(t *jwt.Token) (any, error) {
			return i.verifyKey, nil
		},
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithIssuer(i.cfg.Issuer),
		jwt.WithAudience(i.cfg.Audience),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	if !token.Valid || claims.UID == "" || claims.UID != claims.Subject {
		return "", domain.ErrUnauthorized
	}
	return claims.UID, nil
}
