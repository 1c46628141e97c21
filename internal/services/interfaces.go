package services

import (
	"context"

	"github.com/mrlokans/bookcatalog/internal/database/books"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

// BookStore is the persistence contract BookService depends on.
// books.Repository implements it.
type BookStore interface {
	Create(ctx context.Context, payload *books.Payload) (*entities.Book, error)
	Update(ctx context.Context, id uint, patch books.Patch, authorIDs, categoryIDs []uint) (*entities.Book, error)
	Delete(ctx context.Context, id uint) (*books.Confirmation, error)
	FindOne(ctx context.Context, id uint) (*entities.Book, error)
	FindAll(ctx context.Context, page, perPage int, categoryNames []string) ([]entities.Book, error)
	AddRating(ctx context.Context, bookID, userID uint, value int) (*entities.Rating, error)
	Ratings(ctx context.Context, bookID uint) ([]entities.Rating, error)
}

// AuthorStore is the persistence contract AuthorService depends on.
type AuthorStore interface {
	Create(ctx context.Context, author entities.Author, bookIDs []uint) (*entities.Author, error)
	Update(ctx context.Context, author entities.Author, bookIDs []uint) (*entities.Author, error)
	Delete(ctx context.Context, ids []uint) ([]entities.Author, error)
	FindOne(ctx context.Context, id uint) (*entities.Author, error)
	FindAll(ctx context.Context, page, perPage int) ([]entities.Author, error)
}

// CategoryStore is the persistence contract CategoryService depends on.
type CategoryStore interface {
	Create(ctx context.Context, name string, bookIDs []uint) (*entities.Category, error)
	Update(ctx context.Context, id uint, name string, bookIDs []uint) (*entities.Category, error)
	Delete(ctx context.Context, ids []uint) ([]entities.Category, error)
	FindOne(ctx context.Context, id uint) (*entities.Category, error)
	FindAll(ctx context.Context, page, perPage int) ([]entities.Category, error)
}

// Result is the envelope returned for every mutation.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
