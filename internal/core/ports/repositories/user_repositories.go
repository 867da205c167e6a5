package repositories

import (
	"context"
	"time"

	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByUsername retrieves a user by their login name.
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)

	CountUsers(ctx context.Context) (int, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user.
	SaveUser(ctx context.Context, user domain.User) error
}

// SessionRepository stores the sessions behind issued tokens
type SessionRepository interface {
	SaveSession(ctx context.Context, session domain.Session) error
	FindSessionByID(ctx context.Context, sessionID string) (*domain.Session, error)
	RevokeSession(ctx context.Context, sessionID string, revokedAt time.Time) error
}

// UserRepositoryFacade combines all user-related repository interfaces
// This is a facade for clients that need access to all operations
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
