// Package authors provides database operations for authors and their book
// associations.
package authors

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookcatalog/internal/apperrors"
	"github.com/mrlokans/bookcatalog/internal/database"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

// Repository handles all author database operations.
type Repository struct {
	db *database.Database
}

// NewRepository creates a new authors repository.
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

// Create stores a new author and connects it to bookIDs, if any.
func (r *Repository) Create(ctx context.Context, author entities.Author, bookIDs []uint) (*entities.Author, error) {
	author.Name = strings.TrimSpace(author.Name)
	if author.Name == "" {
		return nil, apperrors.Validation("author name is required")
	}
	if entities.IsZeroDate(author.Birth) {
		return nil, apperrors.Validation("author birth date is required")
	}

	created := entities.Author{Name: author.Name, Birth: author.Birth, Death: author.Death}
	err := r.db.Transaction(ctx, "authors.create", func(tx *gorm.DB) error {
		if err := ensureNameFree(tx, created.Name, 0); err != nil {
			return err
		}
		if err := tx.Omit("Books").Create(&created).Error; err != nil {
			return err
		}
		if len(bookIDs) > 0 {
			if err := database.Mutate[entities.Book](tx, &created, "Books", database.Connect(bookIDs...)); err != nil {
				return err
			}
		}
		return tx.Preload("Books").First(&created, created.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update merges author over the stored row identified by author.ID. A zero
// Birth or nil Death keeps the stored value. A non-nil bookIDs replaces the
// author's book set.
func (r *Repository) Update(ctx context.Context, author entities.Author, bookIDs []uint) (*entities.Author, error) {
	var existing entities.Author
	err := r.db.Transaction(ctx, "authors.update", func(tx *gorm.DB) error {
		if err := findByID(tx, author.ID, &existing); err != nil {
			return err
		}

		name := strings.TrimSpace(author.Name)
		if name == "" {
			return apperrors.Validation("author name is required")
		}
		if name != existing.Name {
			if err := ensureNameFree(tx, name, existing.ID); err != nil {
				return err
			}
		}

		existing.Name = name
		if !entities.IsZeroDate(author.Birth) {
			existing.Birth = author.Birth
		}
		if author.Death != nil {
			existing.Death = author.Death
		}
		if err := tx.Model(&existing).Select("Name", "Birth", "Death").Updates(&existing).Error; err != nil {
			return err
		}

		if bookIDs != nil {
			if err := database.Mutate[entities.Book](tx, &existing, "Books", database.Replace(bookIDs...)); err != nil {
				return err
			}
		}
		existing.Books = nil
		return tx.Preload("Books").First(&existing, existing.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

// Delete removes every author in ids, in order. Each author is first
// disassociated from all of its books, concurrently, and then deleted.
// Repeated ids are processed once; later passes are no-ops.
func (r *Repository) Delete(ctx context.Context, ids []uint) ([]entities.Author, error) {
	if len(ids) == 0 {
		return nil, apperrors.Validation("at least one author id is required")
	}

	var deleted []entities.Author
	err := r.db.Run(ctx, "authors.delete", func(db *gorm.DB) error {
		if err := ensureAllExist(db, ids); err != nil {
			return err
		}

		for _, id := range ids {
			var author entities.Author
			result := db.Preload("Books").Where("id = ?", id).Limit(1).Find(&author)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				continue
			}

			err := database.Fanout(db, author.Books, func(db *gorm.DB, book *entities.Book) error {
				return database.Mutate[entities.Author](db, book, "Authors", database.Disconnect(author.ID))
			})
			if err != nil {
				return err
			}

			result = db.Delete(&entities.Author{}, author.ID)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected > 0 {
				deleted = append(deleted, author)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// FindOne returns the author with its books.
func (r *Repository) FindOne(ctx context.Context, id uint) (*entities.Author, error) {
	var author entities.Author
	err := r.db.Run(ctx, "authors.find_one", func(db *gorm.DB) error {
		return findByID(db.Preload("Books"), id, &author)
	})
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// FindAll returns one page of authors in insertion order, with their books.
func (r *Repository) FindAll(ctx context.Context, page, perPage int) ([]entities.Author, error) {
	authors := []entities.Author{}
	err := r.db.Run(ctx, "authors.find_all", func(db *gorm.DB) error {
		return db.Preload("Books").
			Order("authors.id ASC").
			Scopes(database.Paginate(page, perPage)).
			Find(&authors).Error
	})
	if err != nil {
		return nil, err
	}
	return authors, nil
}

func findByID(db *gorm.DB, id uint, out *entities.Author) error {
	if id == 0 {
		return apperrors.NotFound("author not found")
	}
	err := db.First(out, id).Error
	if database.IsNotFound(err) {
		return apperrors.NotFound("author %d not found", id)
	}
	return err
}

func ensureNameFree(db *gorm.DB, name string, exceptID uint) error {
	var count int64
	q := db.Model(&entities.Author{}).Where("name = ?", name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return apperrors.Conflict("author %s already exists", name)
	}
	return nil
}

func ensureAllExist(db *gorm.DB, ids []uint) error {
	var found []uint
	if err := db.Model(&entities.Author{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return err
	}
	present := make(map[uint]bool, len(found))
	for _, id := range found {
		present[id] = true
	}
	var missing []uint
	for _, id := range ids {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return apperrors.NotFound("authors not found: %v", missing)
	}
	return nil
}
