package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"overtime-tracker/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 5

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Authenticate returns the user whose password matches, or
// ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user %q: %w", username, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *UserService) ByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}
	return &user, nil
}

// ChangePassword replaces the user's password hash after verifying the
// current password.
func (s *UserService) ChangePassword(ctx context.Context, user *models.User, current, newPassword, confirm string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return invalid("current_password", "Current password incorrect", nil)
	}
	if newPassword != confirm {
		return invalid("confirm_password", "New passwords do not match", nil)
	}
	if len(newPassword) < minPasswordLength {
		return invalid("new_password", fmt.Sprintf("Password must be at least %d characters", minPasswordLength), nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	err = s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"password_hash":        string(hashedPassword),
		"must_change_password": false,
	}).Error
	if err != nil {
		return fmt.Errorf("update password for %q: %w", user.Username, err)
	}
	user.PasswordHash = string(hashedPassword)
	user.MustChangePassword = false
	return nil
}

// CreateUser provisions an account. Usernames are unique.
func (s *UserService) CreateUser(ctx context.Context, username, password, role string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return nil, invalid("username", "Username must be at least 3 characters", nil)
	}
	r, ok := models.ParseRole(role)
	if !ok {
		return nil, invalid("role", fmt.Sprintf("Unknown role %q", role), nil)
	}
	if len(password) < minPasswordLength {
		return nil, invalid("password", fmt.Sprintf("Password must be at least %d characters", minPasswordLength), nil)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check username %q: %w", username, err)
	}
	if count > 0 {
		return nil, invalid("username", "Username already exists", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
		Role:         r,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user %q: %w", username, err)
	}
	return &user, nil
}
