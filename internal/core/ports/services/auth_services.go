package services

import (
	"context"

	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	"github.com/KabriAcid/ammamricemill-sub002/internal/dto"
)

// AuthSvc signs staff in and out and validates sessions.
type AuthSvc interface {
	// Login checks the credentials and issues a session-backed token.
	Login(ctx context.Context, username, password string) (*dto.LoginResponse, error)

	// Logout revokes the session behind the current token.
	Logout(ctx context.Context, sessionID string) error

	// ValidateSession fails with ErrForbidden for unknown, revoked or expired sessions.
	ValidateSession(ctx context.Context, sessionID, userID string) error

	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// EnsureBootstrapAdmin creates the first user when none exist.
	EnsureBootstrapAdmin(ctx context.Context, username, password string) error
}
