package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*identity.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

const testPassword = "correct-horse"

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-for-jwt-testing-purposes",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "storefront-test",
	})
}

func newTestUser(t *testing.T) *identity.User {
	t.Helper()
	user, err := identity.NewUser("ana@example.com", testPassword, identity.RoleCustomer,
		identity.Person{FirstName: "Ana", LastName: "Gómez", Phone: "3001234567"})
	require.NoError(t, err)
	return user
}

func setupAuthService() (*AuthService, *MockUserRepository, *auth.InMemoryRefreshTokenStore) {
	userRepo := new(MockUserRepository)
	store := auth.NewInMemoryRefreshTokenStore()
	svc := NewAuthService(userRepo, store, newTestJWTService(), zap.NewNop())
	return svc, userRepo, store
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	de, ok := shared.AsDomainError(err)
	require.True(t, ok, "expected DomainError, got %v", err)
	assert.Equal(t, code, de.Code)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a customer", func(t *testing.T) {
		svc, userRepo, _ := setupAuthService()
		userRepo.On("ExistsByEmail", ctx, "new@example.com").Return(false, nil)
		userRepo.On("Save", ctx, mock.MatchedBy(func(u *identity.User) bool {
			return u.Email == "new@example.com" && u.Role == identity.RoleCustomer && u.PasswordHash != testPassword
		})).Return(nil)

		info, err := svc.Register(ctx, RegisterInput{
			Email:     "  New@Example.com ",
			Password:  testPassword,
			FirstName: "Luis",
			LastName:  "Pérez",
		})

		require.NoError(t, err)
		assert.Equal(t, "new@example.com", info.Email)
		assert.Equal(t, "customer", info.Role)
		assert.Equal(t, "Luis Pérez", info.DisplayName)
		userRepo.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, userRepo, _ := setupAuthService()
		userRepo.On("ExistsByEmail", ctx, "ana@example.com").Return(true, nil)

		_, err := svc.Register(ctx, RegisterInput{Email: "ana@example.com", Password: testPassword, FirstName: "Ana"})

		assertCode(t, err, CodeEmailTaken)
		userRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unique violation on save", func(t *testing.T) {
		svc, userRepo, _ := setupAuthService()
		userRepo.On("ExistsByEmail", ctx, "ana@example.com").Return(false, nil)
		userRepo.On("Save", ctx, mock.Anything).Return(shared.ErrAlreadyExists)

		_, err := svc.Register(ctx, RegisterInput{Email: "ana@example.com", Password: testPassword, FirstName: "Ana"})

		assertCode(t, err, CodeEmailTaken)
	})

	t.Run("short password", func(t *testing.T) {
		svc, userRepo, _ := setupAuthService()
		userRepo.On("ExistsByEmail", ctx, "ana@example.com").Return(false, nil)

		_, err := svc.Register(ctx, RegisterInput{Email: "ana@example.com", Password: "short", FirstName: "Ana"})

		assertCode(t, err, "INVALID_PASSWORD")
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success stores refresh token", func(t *testing.T) {
		svc, userRepo, store := setupAuthService()
		user := newTestUser(t)
		userRepo.On("FindByEmail", ctx, "ana@example.com").Return(user, nil)
		userRepo.On("Save", ctx, user).Return(nil)

		result, err := svc.Login(ctx, LoginInput{Email: "ANA@example.com", Password: testPassword})

		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.Equal(t, "Bearer", result.TokenType)
		assert.Equal(t, user.ID, result.User.ID)
		assert.NotNil(t, user.LastLoginAt)

		stored, err := store.Exists(ctx, result.RefreshToken)
		require.NoError(t, err)
		assert.True(t, stored)

		claims, err := newTestJWTService().ValidateAccessToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "customer", claims.Role)
		assert.Equal(t, "Ana Gómez", claims.Name)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, userRepo, _ := setupAuthService()
		userRepo.On("FindByEmail", ctx, "ghost@example.com").Return(nil, shared.ErrNotFound)

		_, err := svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: testPassword})

		assertCode(t, err, CodeInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, userRepo, store := setupAuthService()
		userRepo.On("FindByEmail", ctx, "ana@example.com").Return(newTestUser(t), nil)

		_, err := svc.Login(ctx, LoginInput{Email: "ana@example.com", Password: "wrong-password"})

		assertCode(t, err, CodeInvalidCredentials)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("inactive account", func(t *testing.T) {
		svc, userRepo, _ := setupAuthService()
		user := newTestUser(t)
		user.Status = identity.UserStatusInactive
		userRepo.On("FindByEmail", ctx, "ana@example.com").Return(user, nil)

		_, err := svc.Login(ctx, LoginInput{Email: "ana@example.com", Password: testPassword})

		assertCode(t, err, CodeAccountInactive)
	})

	t.Run("repository failure is not masked", func(t *testing.T) {
		svc, userRepo, _ := setupAuthService()
		dbErr := errors.New("connection refused")
		userRepo.On("FindByEmail", ctx, "ana@example.com").Return(nil, dbErr)

		_, err := svc.Login(ctx, LoginInput{Email: "ana@example.com", Password: testPassword})

		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("save failure after login is tolerated", func(t *testing.T) {
		svc, userRepo, _ := setupAuthService()
		user := newTestUser(t)
		userRepo.On("FindByEmail", ctx, "ana@example.com").Return(user, nil)
		userRepo.On("Save", ctx, user).Return(errors.New("write failed"))

		_, err := svc.Login(ctx, LoginInput{Email: "ana@example.com", Password: testPassword})

		assert.NoError(t, err)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()

	login := func(t *testing.T) (*AuthService, *MockUserRepository, *auth.InMemoryRefreshTokenStore, *identity.User, *LoginResult) {
		svc, userRepo, store := setupAuthService()
		user := newTestUser(t)
		userRepo.On("FindByEmail", ctx, "ana@example.com").Return(user, nil)
		userRepo.On("Save", ctx, user).Return(nil)
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		result, err := svc.Login(ctx, LoginInput{Email: "ana@example.com", Password: testPassword})
		require.NoError(t, err)
		return svc, userRepo, store, user, result
	}

	t.Run("rotates the refresh token", func(t *testing.T) {
		svc, _, store, _, loggedIn := login(t)

		refreshed, err := svc.Refresh(ctx, loggedIn.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, loggedIn.RefreshToken, refreshed.RefreshToken)

		oldStored, _ := store.Exists(ctx, loggedIn.RefreshToken)
		newStored, _ := store.Exists(ctx, refreshed.RefreshToken)
		assert.False(t, oldStored)
		assert.True(t, newStored)

		_, err = svc.Refresh(ctx, loggedIn.RefreshToken)
		assertCode(t, err, CodeTokenRevoked)
	})

	t.Run("access token is rejected", func(t *testing.T) {
		svc, _, _, _, loggedIn := login(t)

		_, err := svc.Refresh(ctx, loggedIn.AccessToken)
		assertCode(t, err, CodeTokenInvalid)
	})

	t.Run("garbage token", func(t *testing.T) {
		svc, _, _ := setupAuthService()

		_, err := svc.Refresh(ctx, "not-a-token")
		assertCode(t, err, CodeTokenInvalid)
	})

	t.Run("logged out token", func(t *testing.T) {
		svc, _, _, _, loggedIn := login(t)

		found, err := svc.Logout(ctx, loggedIn.RefreshToken)
		require.NoError(t, err)
		require.True(t, found)

		_, err = svc.Refresh(ctx, loggedIn.RefreshToken)
		assertCode(t, err, CodeTokenRevoked)
	})

	t.Run("deactivated user", func(t *testing.T) {
		svc, _, _, user, loggedIn := login(t)
		user.Status = identity.UserStatusInactive

		_, err := svc.Refresh(ctx, loggedIn.RefreshToken)
		assertCode(t, err, CodeAccountInactive)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	svc, _, store := setupAuthService()
	require.NoError(t, store.Save(ctx, "tok", uuid.New(), time.Hour))

	found, err := svc.Logout(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = svc.Logout(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		svc, userRepo, _ := setupAuthService()
		user := newTestUser(t)
		userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

		info, err := svc.Me(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", info.Email)
		assert.Equal(t, "3001234567", info.Phone)
	})

	t.Run("missing", func(t *testing.T) {
		svc, userRepo, _ := setupAuthService()
		id := uuid.New()
		userRepo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := svc.Me(ctx, id)
		assertCode(t, err, CodeUserNotFound)
	})
}
