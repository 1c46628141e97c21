// Package currencies resolves currency reference data by short code.
package currencies

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookcatalog/internal/apperrors"
	"github.com/mrlokans/bookcatalog/internal/database"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

// Resolver looks up a currency by short code.
type Resolver interface {
	Resolve(ctx context.Context, shortCode string) (*entities.Currency, error)
}

type Repository struct {
	db *database.Database
}

var _ Resolver = (*Repository)(nil)

func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

// Resolve returns the currency for shortCode (case-insensitive) or a NotFound error.
func (r *Repository) Resolve(ctx context.Context, shortCode string) (*entities.Currency, error) {
	var currency entities.Currency
	err := r.db.Run(ctx, "currencies.resolve", func(db *gorm.DB) error {
		return ResolveWith(db, shortCode, &currency)
	})
	if err != nil {
		return nil, err
	}
	return &currency, nil
}

// ResolveWith performs the lookup on an existing session or transaction.
func ResolveWith(db *gorm.DB, shortCode string, out *entities.Currency) error {
	code := strings.ToUpper(strings.TrimSpace(shortCode))
	if code == "" {
		return apperrors.Validation("currency is required")
	}
	result := db.Where("short_name = ?", code).Limit(1).Find(out)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("currency %s not found", code)
	}
	return nil
}

// List returns all known currencies ordered by short code.
func (r *Repository) List(ctx context.Context) ([]entities.Currency, error) {
	var out []entities.Currency
	err := r.db.Run(ctx, "currencies.list", func(db *gorm.DB) error {
		return db.Order("short_name").Find(&out).Error
	})
	return out, err
}
