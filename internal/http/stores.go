package http

import (
	"context"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/database/books"
	"github.com/mrlokans/bookcatalog/internal/database/maintenance"
	"github.com/mrlokans/bookcatalog/internal/entities"
	"github.com/mrlokans/bookcatalog/internal/services"
)

// This file consolidates the interfaces the controllers depend on.
// The services package provides the production implementations; tests use
// hand-written fakes.

// BookService is implemented by services.BookService.
type BookService interface {
	Create(ctx context.Context, payload *books.Payload) (*services.Result, error)
	Update(ctx context.Context, id uint, patch books.Patch, authorIDs, categoryIDs []uint) (*services.Result, error)
	Delete(ctx context.Context, id uint) (*services.Result, error)
	FindOne(ctx context.Context, id uint) (*entities.Book, error)
	FindAll(ctx context.Context, page, perPage int, categoryNames []string) ([]entities.Book, error)
	AddRating(ctx context.Context, bookID, userID uint, value int) (*entities.Rating, error)
	Ratings(ctx context.Context, bookID uint) ([]entities.Rating, error)
}

// AuthorService is implemented by services.AuthorService.
type AuthorService interface {
	Create(ctx context.Context, author entities.Author, bookIDs []uint) (*services.Result, error)
	Update(ctx context.Context, author entities.Author, bookIDs []uint) (*services.Result, error)
	Delete(ctx context.Context, ids []uint) (*services.Result, error)
	FindOne(ctx context.Context, id uint) (*entities.Author, error)
	FindAll(ctx context.Context, page, perPage int) ([]entities.Author, error)
}

// CategoryService is implemented by services.CategoryService.
type CategoryService interface {
	Create(ctx context.Context, name string, bookIDs []uint) (*services.Result, error)
	Update(ctx context.Context, id uint, name string, bookIDs []uint) (*services.Result, error)
	Delete(ctx context.Context, ids []uint) (*services.Result, error)
	FindOne(ctx context.Context, id uint) (*entities.Category, error)
	FindAll(ctx context.Context, page, perPage int) ([]entities.Category, error)
}

// CurrencyLister exposes the seeded currency reference data.
type CurrencyLister interface {
	List(ctx context.Context) ([]entities.Currency, error)
}

// AccountService is implemented by auth.Service.
type AccountService interface {
	Register(ctx context.Context, email, name, password string) (*entities.User, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	Logout(ctx context.Context, token string) error
}

// LoginLimiter tracks failed logins. auth.RateLimiter implements it.
type LoginLimiter interface {
	RecordFailure(ip, email string) (bool, time.Duration)
	RecordSuccess(ip, email string)
}

// TaskQueue enqueues background tasks and reports their status.
// tasks.Client implements it.
type TaskQueue interface {
	Enqueue(task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// LinkPruner runs the dangling link sweep inline when no queue is configured.
type LinkPruner interface {
	PruneDanglingLinks(ctx context.Context) (maintenance.Report, error)
}
