package services

import (
	"context"
	"fmt"

	"github.com/mrlokans/bookcatalog/internal/database/books"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

type BookService struct {
	store BookStore
}

func NewBookService(store BookStore) *BookService {
	return &BookService{store: store}
}

func (s *BookService) Create(ctx context.Context, payload *books.Payload) (*Result, error) {
	book, err := s.store.Create(ctx, payload)
	if err != nil {
		return nil, err
	}
	return &Result{
		Success: true,
		Message: fmt.Sprintf("Book %d and related data successfully created", book.ID),
	}, nil
}

// Update applies patch. A nil id slice leaves that association set untouched.
func (s *BookService) Update(ctx context.Context, id uint, patch books.Patch, authorIDs, categoryIDs []uint) (*Result, error) {
	book, err := s.store.Update(ctx, id, patch, authorIDs, categoryIDs)
	if err != nil {
		return nil, err
	}
	return &Result{
		Success: true,
		Message: fmt.Sprintf("Book %d and related data successfully updated", book.ID),
	}, nil
}

func (s *BookService) Delete(ctx context.Context, id uint) (*Result, error) {
	confirmation, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Result{Success: confirmation.Success, Message: confirmation.Message}, nil
}

func (s *BookService) FindOne(ctx context.Context, id uint) (*entities.Book, error) {
	return s.store.FindOne(ctx, id)
}

func (s *BookService) FindAll(ctx context.Context, page, perPage int, categoryNames []string) ([]entities.Book, error) {
	return s.store.FindAll(ctx, page, perPage, categoryNames)
}

func (s *BookService) AddRating(ctx context.Context, bookID, userID uint, value int) (*entities.Rating, error) {
	return s.store.AddRating(ctx, bookID, userID, value)
}

func (s *BookService) Ratings(ctx context.Context, bookID uint) ([]entities.Rating, error) {
	return s.store.Ratings(ctx, bookID)
}
