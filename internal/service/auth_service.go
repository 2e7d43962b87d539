package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/yourorg/swiftstore/internal/domain"
	"github.com/yourorg/swiftstore/internal/security/auth"
	"golang.org/x/crypto/bcrypt"
)

const tokenLifetime = 24 * time.Hour

// AuthService handles dashboard account registration and login.
type AuthService struct {
	userRepo domain.UserRepository
	tokens   *auth.TokenManager
	logger   *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(userRepo domain.UserRepository, tokens *auth.TokenManager, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// RegisterResult represents registration response
type RegisterResult struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// LoginResult represents login response
type LoginResult struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"` // seconds
	TokenType string `json:"tokenType"`
}

// Register creates a new user account
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*RegisterResult, error) {
	if email == "" || password == "" || username == "" {
		return nil, validationErr("email, username, and password are required")
	}
	if len(password) < 8 {
		return nil, validationErr("password must be at least 8 characters")
	}

	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, validationErr("email already registered")
	}
	if existing, err := s.userRepo.GetByUsername(ctx, username); err == nil && existing != nil {
		return nil, validationErr("username already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, errors.New("failed to register user")
	}

	user := &domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error("failed to create user", slog.String("error", err.Error()))
		return nil, errors.New("failed to register user")
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, tokenLifetime)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, errors.New("failed to register user")
	}

	return &RegisterResult{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		Token:    token,
	}, nil
}

// Login authenticates a user and returns a bearer token
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, validationErr("email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Info("login attempt with non-existent email", slog.String("email", email))
		return nil, errors.New("invalid credentials")
	}
	if !user.IsActive {
		return nil, errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login failed with wrong password", slog.String("email", email))
		return nil, errors.New("invalid credentials")
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, tokenLifetime)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, errors.New("failed to log in")
	}

	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return &LoginResult{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     token,
		ExpiresIn: int(tokenLifetime.Seconds()),
		TokenType: "Bearer",
	}, nil
}
