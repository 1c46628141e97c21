// Package books provides database operations for books, their author and
// category associations, and their ratings.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.Create(ctx, &books.Payload{Title: "Dune", Currency: "USD", Language: "en"})
//	page, err := repo.FindAll(ctx, 2, 5, []string{"Fiction"})
package books

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookcatalog/internal/apperrors"
	"github.com/mrlokans/bookcatalog/internal/database"
	"github.com/mrlokans/bookcatalog/internal/database/currencies"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

// Payload carries the fields of a new book. Currency is a short code.
type Payload struct {
	Title       string
	Language    string
	Amount      float64
	Year        datatypes.Date
	Description string
	Currency    string
	AuthorIDs   []uint
	CategoryIDs []uint
}

// Patch holds the fields to change on an existing book. Nil fields keep the
// stored value.
type Patch struct {
	Title       *string
	Language    *string
	Amount      *float64
	Year        *datatypes.Date
	Description *string
	Currency    *string
}

// Confirmation is returned by Delete.
type Confirmation struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Repository handles all book database operations.
type Repository struct {
	db *database.Database
}

// NewRepository creates a new books repository.
func NewRepository(db *database.Database) *Repository {
	return &Repository{db: db}
}

// Create stores a new book and connects the payload's authors and categories.
// The returned book has its authors, categories, ratings and currency loaded.
func (r *Repository) Create(ctx context.Context, payload *Payload) (*entities.Book, error) {
	if payload == nil {
		return nil, apperrors.Validation("book payload is required")
	}
	title := strings.TrimSpace(payload.Title)
	if title == "" {
		return nil, apperrors.Validation("book title is required")
	}
	if payload.Amount < 0 {
		return nil, apperrors.Validation("book amount must not be negative")
	}

	book := entities.Book{
		Title:       title,
		Language:    strings.TrimSpace(payload.Language),
		Amount:      payload.Amount,
		Year:        payload.Year,
		Description: payload.Description,
	}
	err := r.db.Transaction(ctx, "books.create", func(tx *gorm.DB) error {
		var currency entities.Currency
		if err := currencies.ResolveWith(tx, payload.Currency, &currency); err != nil {
			return err
		}
		book.CurrencyID = currency.ID

		if err := tx.Omit(clause.Associations).Create(&book).Error; err != nil {
			return err
		}
		if err := database.Mutate[entities.Author](tx, &book, "Authors", database.Connect(payload.AuthorIDs...)); err != nil {
			return err
		}
		if err := database.Mutate[entities.Category](tx, &book, "Categories", database.Connect(payload.CategoryIDs...)); err != nil {
			return err
		}
		return loadExpanded(tx, book.ID, &book)
	})
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// Update merges patch over the stored book. Non-nil authorIDs or categoryIDs
// replace the respective association set; an empty non-nil slice clears it.
func (r *Repository) Update(ctx context.Context, id uint, patch Patch, authorIDs, categoryIDs []uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Transaction(ctx, "books.update", func(tx *gorm.DB) error {
		if err := findByID(tx, id, &book); err != nil {
			return err
		}
		if err := applyPatch(tx, &book, patch); err != nil {
			return err
		}
		err := tx.Model(&book).
			Select("Title", "Language", "Amount", "Year", "Description", "CurrencyID").
			Updates(&book).Error
		if err != nil {
			return err
		}

		if authorIDs != nil {
			if err := database.Mutate[entities.Author](tx, &book, "Authors", database.Replace(authorIDs...)); err != nil {
				return err
			}
		}
		if categoryIDs != nil {
			if err := database.Mutate[entities.Category](tx, &book, "Categories", database.Replace(categoryIDs...)); err != nil {
				return err
			}
		}
		return loadExpanded(tx, book.ID, &book)
	})
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func applyPatch(tx *gorm.DB, book *entities.Book, patch Patch) error {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return apperrors.Validation("book title must not be empty")
		}
		book.Title = title
	}
	if patch.Language != nil {
		book.Language = strings.TrimSpace(*patch.Language)
	}
	if patch.Amount != nil {
		if *patch.Amount < 0 {
			return apperrors.Validation("book amount must not be negative")
		}
		book.Amount = *patch.Amount
	}
	if patch.Year != nil {
		book.Year = *patch.Year
	}
	if patch.Description != nil {
		book.Description = *patch.Description
	}
	if patch.Currency != nil {
		var currency entities.Currency
		if err := currencies.ResolveWith(tx, *patch.Currency, &currency); err != nil {
			return err
		}
		book.CurrencyID = currency.ID
	}
	return nil
}

type link struct {
	owner    any
	relation string
}

// Delete detaches the book from every author and category it belongs to,
// concurrently, then removes its ratings and the book row itself.
func (r *Repository) Delete(ctx context.Context, id uint) (*Confirmation, error) {
	err := r.db.Run(ctx, "books.delete", func(db *gorm.DB) error {
		var book entities.Book
		if err := findByID(db.Preload("Authors").Preload("Categories"), id, &book); err != nil {
			return err
		}

		links := make([]link, 0, len(book.Authors)+len(book.Categories))
		for i := range book.Authors {
			links = append(links, link{owner: &book.Authors[i], relation: "Books"})
		}
		for i := range book.Categories {
			links = append(links, link{owner: &book.Categories[i], relation: "Books"})
		}
		err := database.Fanout(db, links, func(db *gorm.DB, l *link) error {
			return database.Mutate[entities.Book](db, l.owner, l.relation, database.Disconnect(book.ID))
		})
		if err != nil {
			return err
		}

		if err := db.Where("book_id = ?", book.ID).Delete(&entities.Rating{}).Error; err != nil {
			return err
		}
		return db.Delete(&entities.Book{}, book.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &Confirmation{
		Success: true,
		Message: fmt.Sprintf("Book %d and related data successfully deleted", id),
	}, nil
}

// FindOne returns the book row only; associations are not loaded.
func (r *Repository) FindOne(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Run(ctx, "books.find_one", func(db *gorm.DB) error {
		return findByID(db, id, &book)
	})
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// FindAll returns one page of books that belong to at least one of the named
// categories, in insertion order, with authors, categories and ratings
// loaded. No book matches an empty categoryNames.
func (r *Repository) FindAll(ctx context.Context, page, perPage int, categoryNames []string) ([]entities.Book, error) {
	names := cleanNames(categoryNames)

	books := []entities.Book{}
	if len(names) == 0 {
		return books, nil
	}
	err := r.db.Run(ctx, "books.find_all", func(db *gorm.DB) error {
		tagged := db.Table(entities.BookCategoriesTable).
			Select(entities.BookCategoriesTable+".book_id").
			Joins("JOIN categories ON categories.id = "+entities.BookCategoriesTable+".category_id").
			Where("categories.name IN ?", names)
		return db.Model(&entities.Book{}).
			Where("books.id IN (?)", tagged).
			Preload("Authors").
			Preload("Categories").
			Preload("Ratings").
			Order("books.id ASC").
			Scopes(database.Paginate(page, perPage)).
			Find(&books).Error
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}

func loadExpanded(db *gorm.DB, id uint, out *entities.Book) error {
	*out = entities.Book{}
	return db.Preload("Authors").
		Preload("Categories").
		Preload("Ratings").
		Preload("Currency").
		First(out, id).Error
}

func findByID(db *gorm.DB, id uint, out *entities.Book) error {
	if id == 0 {
		return apperrors.NotFound("book not found")
	}
	err := db.First(out, id).Error
	if database.IsNotFound(err) {
		return apperrors.NotFound("book %d not found", id)
	}
	return err
}

func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}
