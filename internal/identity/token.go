package identity

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vendorly/vendorly-api/internal/config"
)

// TokenVerifier extracts the verified subject ID from a session token
// issued by the identity provider. Token signature and expiry are the
// provider's contract; everything past the subject is outside this core.
type TokenVerifier interface {
	Subject(token string) (string, error)
}

// JWTVerifier validates RS256 session tokens against the provider's
// public key.
type JWTVerifier struct {
	parser *jwt.Parser
	keyFn  jwt.Keyfunc
}

var _ TokenVerifier = (*JWTVerifier)(nil)

// NewJWTVerifier parses the PEM-encoded RSA public key from configuration.
func NewJWTVerifier(cfg config.Config) (*JWTVerifier, error) {
	if cfg.IdentityPublicKeyPEM == "" {
		return nil, fmt.Errorf("IDENTITY_JWT_PUBLIC_KEY is required")
	}
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.IdentityPublicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("parse identity public key: %w", err)
	}
	return &JWTVerifier{
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
		keyFn: func(*jwt.Token) (any, error) { return key, nil },
	}, nil
}

func (v *JWTVerifier) Subject(token string) (string, error) {
	claims := jwt.RegisteredClaims{}
	if _, err := v.parser.ParseWithClaims(token, &claims, v.keyFn); err != nil {
		return "", fmt.Errorf("parse session token: %w", err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("session token has no subject")
	}
	return claims.Subject, nil
}
