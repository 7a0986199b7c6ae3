// Package auth issues and verifies access tokens for teachers.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"afterschool/internal/apperr"
	"afterschool/internal/authz"
)

const badLogin = "invalid username or password"

// CredentialStore finds the login material of a live teacher.
type CredentialStore interface {
	LookupCredential(ctx context.Context, username string) (uuid.UUID, authz.Role, string, error)
}

// Config holds token settings.
type Config struct {
	Issuer     string
	SigningKey string
	TTL        time.Duration
}

// Service logs teachers in and out.
type Service struct {
	creds   CredentialStore
	revoker Revoker
	cfg     Config
	log     *zap.Logger
}

// NewService creates a service.
func NewService(creds CredentialStore, revoker Revoker, cfg Config, log *zap.Logger) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &Service{creds: creds, revoker: revoker, cfg: cfg, log: log}
}

// Login checks a username and password and issues a token.
func (s *Service) Login(ctx context.Context, username, password string) (Token, authz.Claim, error) {
	if username == "" || password == "" {
		return Token{}, authz.Claim{}, apperr.Validationf("username and password are required")
	}
	subject, role, hash, err := s.creds.LookupCredential(ctx, username)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return Token{}, authz.Claim{}, apperr.Unauthenticatedf(badLogin)
		}
		return Token{}, authz.Claim{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		s.log.Info("login rejected", zap.String("username", username))
		return Token{}, authz.Claim{}, apperr.Unauthenticatedf(badLogin)
	}
	tok, err := Issue(subject, role, s.cfg.Issuer, s.cfg.SigningKey, s.cfg.TTL)
	if err != nil {
		return Token{}, authz.Claim{}, apperr.StorageErr(err)
	}
	s.log.Info("login", zap.String("member_id", subject.String()), zap.String("role", role.String()))
	return tok, authz.Claim{Subject: subject, Role: role, Expiry: tok.ExpiresAt}, nil
}

// Verify parses a token and rejects revoked ones.
func (s *Service) Verify(ctx context.Context, token string) (authz.Claim, string, error) {
	claim, id, err := Parse(token, s.cfg.SigningKey, s.cfg.Issuer)
	if err != nil {
		return authz.Claim{}, "", apperr.Unauthenticatedf("invalid token")
	}
	revoked, err := s.revoker.Revoked(ctx, id)
	if err != nil {
		return authz.Claim{}, "", apperr.StorageErr(err)
	}
	if revoked {
		return authz.Claim{}, "", apperr.Unauthenticatedf("token has been revoked")
	}
	return claim, id, nil
}

// Logout revokes a token until its expiry.
func (s *Service) Logout(ctx context.Context, tokenID string, expiry time.Time) error {
	if err := s.revoker.Revoke(ctx, tokenID, expiry); err != nil {
		return apperr.StorageErr(err)
	}
	return nil
}
