package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"afterschool/internal/authz"
)

// Token is a signed access token.
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// Claims represents JWT payload.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issue signs an HS256 token for subject.
func Issue(subject uuid.UUID, role authz.Role, issuer, key string, ttl time.Duration) (Token, error) {
	now := time.Now()
	exp := now.Add(ttl)
	id := uuid.NewString()
	claims := Claims{
		Role: role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Issuer:    issuer,
			Subject:   subject.String(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, ID: id, ExpiresAt: exp}, nil
}

// Parse validates a token and returns the decoded claim and token id.
func Parse(tokenStr, key, issuer string) (authz.Claim, string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(key), nil
	}, opts...)
	if err != nil {
		return authz.Claim{}, "", err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return authz.Claim{}, "", errors.New("invalid token")
	}
	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return authz.Claim{}, "", fmt.Errorf("invalid subject: %w", err)
	}
	role, err := authz.ParseRole(claims.Role)
	if err != nil {
		return authz.Claim{}, "", err
	}
	return authz.Claim{Subject: subject, Role: role, Expiry: claims.ExpiresAt.Time}, claims.ID, nil
}
