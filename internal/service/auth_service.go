package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/localore/localore-backend/internal/common"
	"github.com/localore/localore-backend/internal/domain"
	"github.com/localore/localore-backend/internal/repository"
	"github.com/localore/localore-backend/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService handles registration, login and credential updates
type AuthService struct {
	userRepo   repository.UserRepository
	jwtManager *jwt.Manager
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, jwtManager *jwt.Manager) *AuthService {
	return &AuthService{userRepo: userRepo, jwtManager: jwtManager}
}

// AuthResponse carries the user and a signed token
type AuthResponse struct {
	User  domain.PublicUser `json:"user"`
	Token string            `json:"token"`
}

// Register creates a contributor account and signs it in
func (s *AuthService) Register(username, email, password string) (*AuthResponse, error) {
	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, common.ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, common.ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		Role:     domain.RoleContributor,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwtManager.GenerateToken(strconv.FormatUint(user.ID, 10))
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &AuthResponse{User: user.ToPublic(), Token: token}, nil
}

// Login authenticates by username and password
func (s *AuthService) Login(username, password string) (*AuthResponse, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, common.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, common.ErrInvalidCredentials
	}

	if user.IsBanned {
		return nil, common.ErrAccountSuspended
	}

	if err := s.userRepo.UpdateLastLogin(user.ID, time.Now()); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}

	token, err := s.jwtManager.GenerateToken(strconv.FormatUint(user.ID, 10))
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &AuthResponse{User: user.ToPublic(), Token: token}, nil
}

// GetCurrentUser returns the account for the given id
func (s *AuthService) GetCurrentUser(userID uint64) (*domain.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateEmail changes the caller's email after a uniqueness check
func (s *AuthService) UpdateEmail(userID uint64, email string) error {
	if other, err := s.userRepo.FindByEmail(email); err == nil && other.ID != userID {
		return common.ErrEmailTaken
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check email: %w", err)
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return common.ErrUserNotFound
	}
	user.Email = email
	return s.userRepo.Update(user)
}

// UpdatePassword changes the caller's password after verifying the current one
func (s *AuthService) UpdatePassword(userID uint64, current, next string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return common.ErrUserNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)) != nil {
		return common.ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hashed)
	return s.userRepo.Update(user)
}
