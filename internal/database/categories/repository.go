// Package categories provides database operations for categories and their
// book associations.
package categories

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookcatalog/internal/apperrors"
	"github.com/mrlokans/bookcatalog/internal/database"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

// Repository handles all category database operations.
type Repository struct {
	db *database.Database
}

// NewRepository creates a new categories repository.
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

// Create stores a new category and connects it to bookIDs, if any.
func (r *Repository) Create(ctx context.Context, name string, bookIDs []uint) (*entities.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("category name is required")
	}

	category := entities.Category{Name: name}
	err := r.db.Transaction(ctx, "categories.create", func(tx *gorm.DB) error {
		if err := ensureNameFree(tx, name, 0); err != nil {
			return err
		}
		if err := tx.Omit("Books").Create(&category).Error; err != nil {
			return err
		}
		if len(bookIDs) > 0 {
			if err := database.Mutate[entities.Book](tx, &category, "Books", database.Connect(bookIDs...)); err != nil {
				return err
			}
		}
		return tx.Preload("Books").First(&category, category.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Update renames the category. A non-nil bookIDs replaces its book set.
func (r *Repository) Update(ctx context.Context, id uint, name string, bookIDs []uint) (*entities.Category, error) {
	var category entities.Category
	err := r.db.Transaction(ctx, "categories.update", func(tx *gorm.DB) error {
		if err := findByID(tx, id, &category); err != nil {
			return err
		}

		name = strings.TrimSpace(name)
		if name == "" {
			return apperrors.Validation("category name is required")
		}
		if name != category.Name {
			if err := ensureNameFree(tx, name, category.ID); err != nil {
				return err
			}
			if err := tx.Model(&category).Update("name", name).Error; err != nil {
				return err
			}
		}

		if bookIDs != nil {
			if err := database.Mutate[entities.Book](tx, &category, "Books", database.Replace(bookIDs...)); err != nil {
				return err
			}
		}
		category.Books = nil
		return tx.Preload("Books").First(&category, category.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Delete removes every category in ids, in order, after detaching it from its
// books. Repeated ids are processed once.
func (r *Repository) Delete(ctx context.Context, ids []uint) ([]entities.Category, error) {
	if len(ids) == 0 {
		return nil, apperrors.Validation("at least one category id is required")
	}

	var deleted []entities.Category
	err := r.db.Run(ctx, "categories.delete", func(db *gorm.DB) error {
		if err := ensureAllExist(db, ids); err != nil {
			return err
		}

		for _, id := range ids {
			var category entities.Category
			result := db.Preload("Books").Where("id = ?", id).Limit(1).Find(&category)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				continue
			}

			err := database.Fanout(db, category.Books, func(db *gorm.DB, book *entities.Book) error {
				return database.Mutate[entities.Category](db, book, "Categories", database.Disconnect(category.ID))
			})
			if err != nil {
				return err
			}

			result = db.Delete(&entities.Category{}, category.ID)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected > 0 {
				deleted = append(deleted, category)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (r *Repository) FindOne(ctx context.Context, id uint) (*entities.Category, error) {
	var category entities.Category
	err := r.db.Run(ctx, "categories.find_one", func(db *gorm.DB) error {
		return findByID(db.Preload("Books"), id, &category)
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *Repository) FindAll(ctx context.Context, page, perPage int) ([]entities.Category, error) {
	categories := []entities.Category{}
	err := r.db.Run(ctx, "categories.find_all", func(db *gorm.DB) error {
		return db.Preload("Books").
			Order("categories.id ASC").
			Scopes(database.Paginate(page, perPage)).
			Find(&categories).Error
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func findByID(db *gorm.DB, id uint, out *entities.Category) error {
	if id == 0 {
		return apperrors.NotFound("category not found")
	}
	err := db.First(out, id).Error
	if database.IsNotFound(err) {
		return apperrors.NotFound("category %d not found", id)
	}
	return err
}

func ensureNameFree(db *gorm.DB, name string, exceptID uint) error {
	var count int64
	q := db.Model(&entities.Category{}).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperrors.Conflict("category %s already exists", name)
	}
	return nil
}

func ensureAllExist(db *gorm.DB, ids []uint) error {
	var found []uint
	if err := db.Model(&entities.Category{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return err
	}
	present := make(map[uint]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	var missing []uint
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return apperrors.NotFound("categories not found: %v", missing)
	}
	return nil
}
