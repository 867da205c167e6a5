package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KabriAcid/ammamricemill-sub002/internal/apperrors"
	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	portsrepo "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/repositories"
	portssvc "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/services"
	"github.com/KabriAcid/ammamricemill-sub002/internal/dto"
	"github.com/KabriAcid/ammamricemill-sub002/internal/platform/config"
	"github.com/KabriAcid/ammamricemill-sub002/internal/utils"
)

// authService signs staff in with a password and tracks every issued token
// as a session so logout can revoke it.
type authService struct {
	BaseService
	cfg         *config.Config
	userRepo    portsrepo.UserRepositoryFacade
	sessionRepo portsrepo.SessionRepository
	newID       func() string
	now         func() time.Time
}

// NewAuthService creates a new instance of authService.
func NewAuthService(cfg *config.Config, userRepo portsrepo.UserRepositoryFacade, sessionRepo portsrepo.SessionRepository) portssvc.AuthSvc {
	return &authService{
		cfg:         cfg,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		newID:       uuid.NewString,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.AuthSvc = (*authService)(nil)

var errBadCredentials = fmt.Errorf("%w: invalid username or password", apperrors.ErrUnauthorized)

func (s *authService) Login(ctx context.Context, username, password string) (*dto.LoginResponse, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, errBadCredentials
		}
		s.LogError(ctx, err, "Failed to look up user for login")
		return nil, err
	}
	// Inactive users get the same answer as a wrong password.
	if !user.IsActive || !utils.CheckPasswordHash(password, user.PasswordHash) {
		s.LogInfo(ctx, "Rejected login", slog.String("username", user.Username))
		return nil, errBadCredentials
	}

	now := s.now()
	session := domain.Session{
		SessionID: s.newID(),
		UserID:    user.UserID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.JWTExpiryDuration),
	}
	if err := s.sessionRepo.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	token, expiresAt, err := utils.GenerateJWT(user.UserID, session.SessionID, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer, now)
	if err != nil {
		s.LogError(ctx, err, "Failed to sign token", slog.String("user_id", user.UserID))
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to issue token", err)
	}

	s.LogInfo(ctx, "User logged in", slog.String("user_id", user.UserID), slog.String("session_id", session.SessionID))
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.ToUserResponse(*user),
	}, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessionRepo.RevokeSession(ctx, sessionID, s.now()); err != nil {
		return err
	}
	s.LogInfo(ctx, "Session revoked", slog.String("session_id", sessionID))
	return nil
}

func (s *authService) ValidateSession(ctx context.Context, sessionID, userID string) error {
	session, err := s.sessionRepo.FindSessionByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrForbidden
		}
		return err
	}
	if session.UserID != userID || !session.IsValidAt(s.now()) {
		return apperrors.ErrForbidden
	}
	return nil
}

func (s *authService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}

// EnsureBootstrapAdmin is a no-op once any user exists or when no password is configured.
func (s *authService) EnsureBootstrapAdmin(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		s.LogDebug(ctx, "Bootstrap admin not configured")
		return nil
	}
	count, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash bootstrap password: %w", err)
	}
	now := s.now()
	user := domain.User{
		UserID:       s.newID(),
		Username:     strings.TrimSpace(username),
		Name:         "Administrator",
		PasswordHash: hash,
		IsActive:     true,
		AuditFields:  domain.NewAuditFields("system", now),
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return err
	}

	s.LogInfo(ctx, "Bootstrap admin created", slog.String("username", user.Username))
	return nil
}
