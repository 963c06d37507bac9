package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// Auth error codes
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodeAccountInactive    = "ACCOUNT_INACTIVE"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeTokenInvalid       = "TOKEN_INVALID"
	CodeTokenRevoked       = "TOKEN_REVOKED"
	CodeUserNotFound       = "USER_NOT_FOUND"
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo   identity.UserRepository
	tokens     identity.RefreshTokenStore
	jwtService *auth.JWTService
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	tokens identity.RefreshTokenStore,
	jwtService *auth.JWTService,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:   userRepo,
		tokens:     tokens,
		jwtService: jwtService,
		logger:     logger,
		now:        time.Now,
	}
}

// Register creates a customer account. Publisher and administrator accounts
// are provisioned out of band.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*UserInfo, error) {
	email := identity.NormalizeEmail(input.Email)

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		s.logger.Error("Failed to check email availability", zap.Error(err))
		return nil, err
	}
	if exists {
		s.logger.Info("Registration with taken email", zap.String("email", email))
		return nil, shared.NewDomainError(CodeEmailTaken, "Email is already registered")
	}

	user, err := identity.NewUser(email, input.Password, identity.RoleCustomer, input.person())
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError(CodeEmailTaken, "Email is already registered")
		}
		s.logger.Error("Failed to save new user", zap.Error(err))
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	info := ToUserInfo(user)
	return &info, nil
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := identity.NormalizeEmail(input.Email)
	s.logger.Info("Login attempt", zap.String("email", email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Error("Failed to load user during login", zap.Error(err))
			return nil, err
		}
		s.logger.Warn("User not found during login", zap.String("email", email))
		return nil, invalidCredentials()
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("email", email))
		return nil, invalidCredentials()
	}

	if !user.CanLogin() {
		s.logger.Warn("Login attempt for inactive account", zap.String("email", email))
		return nil, shared.NewDomainError(CodeAccountInactive, "Account is not active")
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	user.RecordLogin(s.now())
	if err := s.userRepo.Save(ctx, user); err != nil {
		// Don't fail the login - just log the error
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	s.logger.Info("User logged in successfully",
		zap.String("email", email),
		zap.String("user_id", user.ID.String()))

	return &LoginResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  ToUserInfo(user),
	}, nil
}

// Refresh exchanges a stored refresh token for a new token pair. The old
// refresh token is revoked.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*RefreshTokenResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, mapTokenError(err)
	}

	stored, err := s.tokens.Exists(ctx, refreshToken)
	if err != nil {
		s.logger.Error("Failed to check refresh token", zap.Error(err))
		return nil, err
	}
	if !stored {
		s.logger.Warn("Refresh with revoked token", zap.String("user_id", claims.UserID))
		return nil, shared.NewDomainError(CodeTokenRevoked, "Refresh token has been revoked")
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError(CodeTokenInvalid, "Invalid user ID in token")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(CodeUserNotFound, "User not found")
		}
		return nil, err
	}
	if !user.CanLogin() {
		s.logger.Warn("Token refresh for inactive user", zap.String("user_id", userID.String()))
		return nil, shared.NewDomainError(CodeAccountInactive, "Account is no longer active")
	}

	// Revoke first so a token replayed concurrently loses the race.
	revoked, err := s.tokens.Revoke(ctx, refreshToken)
	if err != nil {
		s.logger.Error("Failed to revoke refresh token", zap.Error(err))
		return nil, err
	}
	if !revoked {
		return nil, shared.NewDomainError(CodeTokenRevoked, "Refresh token has been revoked")
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Token refreshed successfully", zap.String("user_id", userID.String()))

	return &RefreshTokenResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}, nil
}

// Logout revokes the refresh token and reports whether it was still active.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) (bool, error) {
	found, err := s.tokens.Revoke(ctx, refreshToken)
	if err != nil {
		s.logger.Error("Failed to revoke refresh token on logout", zap.Error(err))
		return false, err
	}
	s.logger.Info("User logout", zap.Bool("token_found", found))
	return found, nil
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(CodeUserNotFound, "User not found")
		}
		return nil, err
	}
	info := ToUserInfo(user)
	return &info, nil
}

func (s *AuthService) issue(ctx context.Context, user *identity.User) (*auth.TokenPair, error) {
	pair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role.String(),
		Name:   user.Person.FullName(),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}
	if err := s.tokens.Save(ctx, pair.RefreshToken, user.ID, s.jwtService.RefreshTokenExpiration()); err != nil {
		s.logger.Error("Failed to store refresh token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to store refresh token")
	}
	return pair, nil
}

func invalidCredentials() error {
	return shared.NewDomainError(CodeInvalidCredentials, "Invalid email or password")
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError(CodeTokenExpired, "Refresh token has expired")
	default:
		return shared.NewDomainError(CodeTokenInvalid, "Invalid refresh token")
	}
}
