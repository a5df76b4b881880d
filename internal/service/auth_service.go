package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/survey-service/internal/auth"
	"github.com/spec-kit/survey-service/internal/config"
	"github.com/spec-kit/survey-service/internal/domain"
	"github.com/spec-kit/survey-service/internal/repository"
	apperrors "github.com/spec-kit/survey-service/pkg/util/errorutil"
)

const invalidCredentials = "Invalid username or password"

// LoginResult is the profile returned by a successful login.
type LoginResult struct {
	User      *domain.User
	Role      string
	Token     string
	ExpiresAt time.Time
}

// ProvisionInput describes a user account to create.
type ProvisionInput struct {
	Username   string
	Name       string
	Email      string
	Department string
	Role       string
	Password   string
}

// AuthService verifies credentials and provisions accounts.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	roles      auth.RoleNormalizer
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		roles:      auth.NewRoleNormalizer(cfg.UserDashboardURL),
		bcryptCost: cfg.BcryptCost,
	}
}

// Login authenticates username/password and returns the profile with a
// normalized role and a bearer token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, apperrors.NewValidationError("Missing username or password", nil)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized(invalidCredentials)
		}
		return nil, apperrors.NewInternalError(err)
	}
	if !auth.VerifyPassword(password, user.HashedPassword) {
		return nil, apperrors.NewUnauthorized(invalidCredentials)
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{
		User:      user,
		Role:      s.roles.GetFrontendRole(user.Role),
		Token:     token,
		ExpiresAt: exp,
	}, nil
}

// ProvisionUser hashes the password and stores a new account.
func (s *AuthService) ProvisionUser(ctx context.Context, in ProvisionInput) (*domain.User, error) {
	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, apperrors.NewValidationError("username, email and password are required", nil)
	}
	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	role := in.Role
	if role == "" {
		role = "user"
	}
	name := in.Name
	if name == "" {
		name = in.Username
	}
	user := &domain.User{
		Username:       strings.TrimSpace(in.Username),
		Name:           name,
		Email:          strings.TrimSpace(in.Email),
		Department:     in.Department,
		HashedPassword: hash,
		Role:           role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("username or email already registered", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
