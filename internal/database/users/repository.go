// Package users provides database operations for user management.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetUserByEmail(ctx, "reader@example.com")
package users

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookcatalog/internal/apperrors"
	"github.com/mrlokans/bookcatalog/internal/database"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *database.Database
}

// NewRepository creates a new users repository.
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

// CreateUser stores a user with an already hashed password.
func (r *Repository) CreateUser(ctx context.Context, email, name, passwordHash string) (*entities.User, error) {
	user := &entities.User{
		Email:        NormalizeEmail(email),
		Name:         strings.TrimSpace(name),
		PasswordHash: passwordHash,
	}
	if user.Email == "" {
		return nil, apperrors.Validation("email is required")
	}

	err := r.db.Run(ctx, "users.create", func(db *gorm.DB) error {
		var count int64
		if err := db.Model(&entities.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperrors.Conflict("user %s already exists", user.Email)
		}
		return db.Create(user).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.Run(ctx, "users.get", func(db *gorm.DB) error {
		err := db.First(&user, id).Error
		if database.IsNotFound(err) {
			return apperrors.NotFound("user %d not found", id)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	err := r.db.Run(ctx, "users.get_by_email", func(db *gorm.DB) error {
		err := db.Where("email = ?", NormalizeEmail(email)).First(&user).Error
		if database.IsNotFound(err) {
			return apperrors.NotFound("user not found")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserExists reports whether a user with id exists.
func (r *Repository) UserExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.Run(ctx, "users.exists", func(db *gorm.DB) error {
		return db.Model(&entities.User{}).Where("id = ?", id).Count(&count).Error
	})
	return count > 0, err
}

// CountUsers returns the number of registered users.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.Run(ctx, "users.count", func(db *gorm.DB) error {
		return db.Model(&entities.User{}).Count(&count).Error
	})
	return count, err
}

// TouchLastLogin records a successful login.
func (r *Repository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.db.Run(ctx, "users.touch_login", func(db *gorm.DB) error {
		return db.Model(&entities.User{}).Where("id = ?", id).Update("last_login_at", at).Error
	})
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
