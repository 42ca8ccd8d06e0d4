package services

import (
	"context"

	"classroom-api/internal/auth"
	"classroom-api/internal/models"
	"classroom-api/internal/repositories"
	"classroom-api/pkg/errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	users        *repositories.UserRepository
	tokenService *auth.TokenService
}

func NewAuthService(users *repositories.UserRepository, tokenService *auth.TokenService) *AuthService {
	return &AuthService{
		users:        users,
		tokenService: tokenService,
	}
}

// Register creates a new account with a bcrypt password hash.
func (s *AuthService) Register(ctx context.Context, email, displayName, password string, role models.UserRole) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.WrapError(err, "INTERNAL_ERROR", "Failed to hash password", errors.ErrInternalServer.Status)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		DisplayName:  displayName,
		Role:         role,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a JWT access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, errors.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, errors.ErrUnauthorized
	}

	token, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return "", nil, errors.WrapError(err, "INTERNAL_ERROR", "Failed to generate token", errors.ErrInternalServer.Status)
	}

	return token, user, nil
}
