package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	issuer     = "catalog-chatbot"
	defaultKID = "default"
)

var (
	// ErrMissingToken means no bearer token was presented.
	ErrMissingToken = errors.New("authorization token missing")
	// ErrTokenExpired means the token was well formed but is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrInvalidToken covers every other verification failure.
	ErrInvalidToken = errors.New("invalid token")
)

// TokenManager signs and verifies HS256 bearer tokens
type TokenManager struct {
	signingKey []byte
	algorithm  string
	keyID      string
	tracer     trace.Tracer
}

// Claims carried by a chat token
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// NewTokenManager creates a token manager for secret
func NewTokenManager(secret string) (*TokenManager, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	return &TokenManager{
		signingKey: []byte(secret),
		algorithm:  jwt.SigningMethodHS256.Alg(),
		keyID:      defaultKID,
		tracer:     otel.Tracer("token-manager"),
	}, nil
}

// GenerateToken issues a token for subject valid for ttl
func (tm *TokenManager) GenerateToken(ctx context.Context, subject string, roles []string, ttl time.Duration) (string, error) {
	_, span := tm.tracer.Start(ctx, "jwt.generate_token")
	defer span.End()

	span.SetAttributes(attribute.String("jwt.subject", subject))

	now := time.Now()
	claims := &Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   subject,
			ID:        fmt.Sprintf("jwt-%d", now.UnixNano()),
		},
	}

	token := jwt.NewWithClaims(jwt.GetSigningMethod(tm.algorithm), claims)
	token.Header["kid"] = tm.keyID

	signed, err := token.SignedString(tm.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	span.SetAttributes(attribute.String("jwt.id", claims.ID))
	return signed, nil
}

// ValidateToken verifies tokenString and returns its claims. Errors wrap
// ErrMissingToken, ErrTokenExpired or ErrInvalidToken.
func (tm *TokenManager) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	_, span := tm.tracer.Start(ctx, "jwt.validate_token")
	defer span.End()

	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != tm.algorithm {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		if kid, ok := token.Header["kid"].(string); ok && kid != tm.keyID {
			span.SetAttributes(attribute.String("jwt.kid_mismatch", kid))
		}
		return tm.signingKey, nil
	})
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	span.SetAttributes(
		attribute.String("jwt.subject", claims.Subject),
		attribute.String("jwt.id", claims.ID),
	)
	return claims, nil
}
