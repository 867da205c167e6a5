package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/KabriAcid/ammamricemill-sub002/internal/apperrors"
	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	portsrepo "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/repositories"
	portssvc "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/services"
	"github.com/KabriAcid/ammamricemill-sub002/internal/core/services"
	"github.com/KabriAcid/ammamricemill-sub002/internal/platform/config"
	"github.com/KabriAcid/ammamricemill-sub002/internal/utils"
)

// MockUserRepository is a mock type for the user and session repositories
type MockUserRepository struct {
	mock.Mock
}

var (
	_ portsrepo.UserRepositoryFacade = (*MockUserRepository)(nil)
	_ portsrepo.SessionRepository    = (*MockUserRepository)(nil)
)

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) CountUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SaveSession(ctx context.Context, session domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockUserRepository) FindSessionByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockUserRepository) RevokeSession(ctx context.Context, sessionID string, revokedAt time.Time) error {
	args := m.Called(ctx, sessionID, revokedAt)
	return args.Error(0)
}

type AuthServiceTestSuite struct {
	suite.Suite
	repo    *MockUserRepository
	cfg     *config.Config
	service portssvc.AuthSvc
	ctx     context.Context
	user    *domain.User
}

func (suite *AuthServiceTestSuite) SetupTest() {
	suite.repo = new(MockUserRepository)
	suite.cfg = &config.Config{
		JWTSecret:         "test-secret",
		JWTExpiryDuration: time.Hour,
		JWTIssuer:         "ricemill-test",
	}
	suite.service = services.NewAuthService(suite.cfg, suite.repo, suite.repo)
	suite.ctx = context.Background()

	hash, err := utils.HashPassword("s3cret")
	suite.Require().NoError(err)
	suite.user = &domain.User{UserID: "user-1", Username: "manager", Name: "Mill Manager", PasswordHash: hash, IsActive: true}
}

func TestAuthService(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (suite *AuthServiceTestSuite) TestLogin_IssuesTokenBoundToSession() {
	var saved domain.Session
	suite.repo.On("FindUserByUsername", suite.ctx, "manager").Return(suite.user, nil).Once()
	suite.repo.On("SaveSession", suite.ctx, mock.AnythingOfType("domain.Session")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.Session) }).
		Return(nil).Once()

	resp, err := suite.service.Login(suite.ctx, " manager ", "s3cret")

	suite.Require().NoError(err)
	suite.Equal("user-1", resp.User.UserID)
	claims, err := utils.ParseAndValidateJWT(resp.Token, suite.cfg.JWTSecret)
	suite.Require().NoError(err)
	suite.Equal("user-1", claims.Subject)
	suite.Equal(saved.SessionID, claims.ID)
	suite.Equal("ricemill-test", claims.Issuer)
	suite.WithinDuration(saved.ExpiresAt, resp.ExpiresAt, time.Second)
}

func (suite *AuthServiceTestSuite) TestLogin_WrongPassword() {
	suite.repo.On("FindUserByUsername", suite.ctx, "manager").Return(suite.user, nil).Once()

	_, err := suite.service.Login(suite.ctx, "manager", "nope")

	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.repo.AssertNotCalled(suite.T(), "SaveSession", mock.Anything, mock.Anything)
}

func (suite *AuthServiceTestSuite) TestLogin_UnknownOrInactiveUserLooksTheSame() {
	suite.repo.On("FindUserByUsername", suite.ctx, "ghost").Return(nil, apperrors.NewNotFoundError("user ghost")).Once()
	_, errUnknown := suite.service.Login(suite.ctx, "ghost", "s3cret")

	inactive := *suite.user
	inactive.IsActive = false
	suite.repo.On("FindUserByUsername", suite.ctx, "manager").Return(&inactive, nil).Once()
	_, errInactive := suite.service.Login(suite.ctx, "manager", "s3cret")

	suite.ErrorIs(errUnknown, apperrors.ErrUnauthorized)
	suite.ErrorIs(errInactive, apperrors.ErrUnauthorized)
	suite.Equal(errUnknown.Error(), errInactive.Error())
}

func (suite *AuthServiceTestSuite) TestValidateSession() {
	now := time.Now().UTC()
	revokedAt := now.Add(-time.Minute)
	suite.repo.On("FindSessionByID", suite.ctx, "live").Return(&domain.Session{SessionID: "live", UserID: "user-1", ExpiresAt: now.Add(time.Hour)}, nil)
	suite.repo.On("FindSessionByID", suite.ctx, "revoked").Return(&domain.Session{SessionID: "revoked", UserID: "user-1", ExpiresAt: now.Add(time.Hour), RevokedAt: &revokedAt}, nil)
	suite.repo.On("FindSessionByID", suite.ctx, "expired").Return(&domain.Session{SessionID: "expired", UserID: "user-1", ExpiresAt: now.Add(-time.Hour)}, nil)
	suite.repo.On("FindSessionByID", suite.ctx, "missing").Return(nil, apperrors.NewNotFoundError("session"))

	suite.NoError(suite.service.ValidateSession(suite.ctx, "live", "user-1"))
	suite.ErrorIs(suite.service.ValidateSession(suite.ctx, "live", "user-2"), apperrors.ErrForbidden)
	suite.ErrorIs(suite.service.ValidateSession(suite.ctx, "revoked", "user-1"), apperrors.ErrForbidden)
	suite.ErrorIs(suite.service.ValidateSession(suite.ctx, "expired", "user-1"), apperrors.ErrForbidden)
	suite.ErrorIs(suite.service.ValidateSession(suite.ctx, "missing", "user-1"), apperrors.ErrForbidden)
}

func (suite *AuthServiceTestSuite) TestLogout_RevokesSession() {
	suite.repo.On("RevokeSession", suite.ctx, "sess-1", mock.AnythingOfType("time.Time")).Return(nil).Once()

	suite.NoError(suite.service.Logout(suite.ctx, "sess-1"))
	suite.repo.AssertExpectations(suite.T())
}

func (suite *AuthServiceTestSuite) TestEnsureBootstrapAdmin_OnlyWhenEmpty() {
	suite.repo.On("CountUsers", suite.ctx).Return(0, nil).Once()
	suite.repo.On("SaveUser", suite.ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Username == "admin" && u.IsActive && utils.CheckPasswordHash("bootstrap-pw", u.PasswordHash)
	})).Return(nil).Once()

	suite.NoError(suite.service.EnsureBootstrapAdmin(suite.ctx, "admin", "bootstrap-pw"))

	suite.repo.On("CountUsers", suite.ctx).Return(1, nil).Once()
	suite.NoError(suite.service.EnsureBootstrapAdmin(suite.ctx, "admin", "bootstrap-pw"))

	suite.repo.AssertNumberOfCalls(suite.T(), "SaveUser", 1)
}

func (suite *AuthServiceTestSuite) TestEnsureBootstrapAdmin_NoPasswordConfigured() {
	suite.NoError(suite.service.EnsureBootstrapAdmin(suite.ctx, "admin", ""))
	suite.repo.AssertNotCalled(suite.T(), "CountUsers", mock.Anything)
}
