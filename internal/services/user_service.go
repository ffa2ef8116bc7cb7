package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/rmatrack/backend/internal/logger"
	"github.com/rmatrack/backend/internal/models"
)

// UserService manages accounts and credentials.
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a new user service.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Authenticate verifies the credentials and stamps last_login. The caller
// turns the returned user into a token.
func (us *UserService) Authenticate(username, password string) (*models.User, error) {
	var user models.User
	err := us.db.Where("username = ? OR email = ?", username, username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrNotFound
	}

	now := time.Now()
	if err := us.db.Model(&user).Update("last_login", now).Error; err != nil {
		logger.WithUser(user.ID).Warn(fmt.Sprintf("Failed to stamp last login: %v", err))
	}
	user.LastLogin = &now
	return &user, nil
}

// CreateUserInput carries the fields for a new account.
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Role     models.UserRole
	IsOwner  bool
}

// Create adds a user with a bcrypt-hashed password.
func (us *UserService) Create(input CreateUserInput) (*models.User, error) {
	if strings.TrimSpace(input.Username) == "" {
		return nil, validationErr("username", "username is required")
	}
	if len(input.Password) < 6 {
		return nil, validationErr("password", "password must be at least 6 characters")
	}
	if input.Role == "" {
		input.Role = models.RoleUser
	}
	if input.Role != models.RoleAdmin && input.Role != models.RoleUser {
		return nil, validationErr("role", "unknown role")
	}

	var existing models.User
	err := us.db.Where("username = ? OR email = ?", input.Username, input.Email).First(&existing).Error
	if err == nil {
		return nil, validationErr("username", "username or email already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: string(hashed),
		FullName: input.FullName,
		Role:     input.Role,
		IsOwner:  input.IsOwner,
	}
	if err := us.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.WithUser(user.ID).Info("User created")
	return &user, nil
}

// Get loads one user.
func (us *UserService) Get(id uint) (*models.User, error) {
	var user models.User
	if err := us.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// List returns all users sorted by name.
func (us *UserService) List() ([]models.User, error) {
	var users []models.User
	if err := us.db.Order("full_name ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Owners returns the users eligible for RMA ownership.
func (us *UserService) Owners() ([]models.User, error) {
	var users []models.User
	if err := us.db.Where("is_owner = ?", true).Order("full_name ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	return users, nil
}

// ChangePassword replaces the user's password after verifying the current one.
func (us *UserService) ChangePassword(userID uint, current, next string) error {
	if len(next) < 6 {
		return validationErr("newPassword", "password must be at least 6 characters")
	}

	user, err := us.Get(userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return validationErr("currentPassword", "current password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := us.db.Model(user).Update("password", string(hashed)).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// SetRole changes a user's role. Demoting the last admin is blocked.
func (us *UserService) SetRole(userID uint, role models.UserRole) (*models.User, error) {
	if role != models.RoleAdmin && role != models.RoleUser {
		return nil, validationErr("role", "unknown role")
	}

	user, err := us.Get(userID)
	if err != nil {
		return nil, err
	}

	if user.Role == models.RoleAdmin && role != models.RoleAdmin {
		var admins int64
		if err := us.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins).Error; err != nil {
			return nil, fmt.Errorf("failed to count admins: %w", err)
		}
		if admins <= 1 {
			return nil, fmt.Errorf("cannot demote the last admin: %w", ErrPreconditionFailed)
		}
	}

	if err := us.db.Model(user).Update("role", role).Error; err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	return user, nil
}

// Delete soft-deletes a user. Blocked while the user created or owns RMAs.
func (us *UserService) Delete(userID uint) error {
	user, err := us.Get(userID)
	if err != nil {
		return err
	}

	var created int64
	if err := us.db.Model(&models.RMA{}).Where("created_by_user_id = ?", userID).Count(&created).Error; err != nil {
		return fmt.Errorf("failed to count created RMAs: %w", err)
	}
	var owned int64
	if err := us.db.Model(&models.RMAOwner{}).Where("user_id = ?", userID).Count(&owned).Error; err != nil {
		return fmt.Errorf("failed to count owned RMAs: %w", err)
	}
	if created > 0 || owned > 0 {
		return fmt.Errorf("user is referenced by %d RMAs: %w", created+owned, ErrPreconditionFailed)
	}

	if err := us.db.Delete(user).Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	logger.WithUser(userID).Warn("User deleted")
	return nil
}

// EnsureAdmin creates the bootstrap admin account when no admin exists.
func (us *UserService) EnsureAdmin(username, email, password string) (*models.User, error) {
	var admins int64
	if err := us.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&admins).Error; err != nil {
		return nil, fmt.Errorf("failed to count admins: %w", err)
	}
	if admins > 0 {
		return nil, nil
	}
	return us.Create(CreateUserInput{
		Username: username,
		Email:    email,
		Password: password,
		FullName: "Administrator",
		Role:     models.RoleAdmin,
		IsOwner:  true,
	})
}
