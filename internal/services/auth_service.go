package services

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/vizlab/dataviz-api/internal/auth"
	apierrors "github.com/vizlab/dataviz-api/internal/errors"
	"github.com/vizlab/dataviz-api/internal/models"
	"github.com/vizlab/dataviz-api/internal/repository"
)

const minPasswordLength = 8

// AuthService handles registration, credential checks, and token issuance.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenIssuer
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenIssuer) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	RoleNames []string
}

// Register creates a new user with hashed credentials and attached roles.
// Missing roles are created on the fly; without any requested role the user
// gets the standard "user" role.
func (s *AuthService) Register(input RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" || email == "" || input.Password == "" {
		return nil, &apierrors.ValidationError{Message: "Username, email, and password are required."}
	}
	if len(input.Password) < minPasswordLength {
		return nil, apierrors.Validationf("Password must be at least %d characters.", minPasswordLength)
	}

	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, &apierrors.ConflictError{Message: "Username already exists."}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, &apierrors.ConflictError{Message: "Email already registered."}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	roleNames := input.RoleNames
	if len(roleNames) == 0 {
		roleNames = []string{models.RoleUser}
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}

	if err := s.userRepo.CreateWithRoles(user, roleNames); err != nil {
		// The unique constraints catch the race a prior existence check
		// cannot close.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &apierrors.ConflictError{Message: "Username or email already registered."}
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	return user, nil
}

// LoginResult carries the authenticated user and the issued token pair.
type LoginResult struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// Login verifies credentials and issues an access/refresh token pair.
func (s *AuthService) Login(username, password string) (*LoginResult, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apierrors.AuthError{Message: "Invalid credentials."}
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, &apierrors.AuthError{Message: "Invalid credentials."}
	}

	accessToken, err := s.tokens.AccessToken(user.ID, user.RoleNames())
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refreshToken, err := s.tokens.RefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	return &LoginResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. Role claims
// are re-read from the store so revoked roles do not survive a refresh.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	claims, err := s.tokens.Parse(refreshToken)
	if err != nil {
		return "", &apierrors.AuthError{Message: "Invalid or expired refresh token."}
	}
	if claims.TokenType != auth.TokenTypeRefresh {
		return "", &apierrors.AuthError{Message: "Invalid or expired refresh token."}
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", &apierrors.AuthError{Message: "Invalid or expired refresh token."}
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	accessToken, err := s.tokens.AccessToken(user.ID, user.RoleNames())
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}
	return accessToken, nil
}

// GetUser retrieves a user by ID with roles attached.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apierrors.NotFoundError{Message: "User not found."}
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
