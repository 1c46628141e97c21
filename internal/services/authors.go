package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrlokans/bookcatalog/internal/entities"
)

type AuthorService struct {
	store AuthorStore
}

func NewAuthorService(store AuthorStore) *AuthorService {
	return &AuthorService{store: store}
}

func (s *AuthorService) Create(ctx context.Context, author entities.Author, bookIDs []uint) (*Result, error) {
	created, err := s.store.Create(ctx, author, bookIDs)
	if err != nil {
		return nil, err
	}
	return &Result{Success: true, Message: fmt.Sprintf("Author %d successfully created", created.ID)}, nil
}

func (s *AuthorService) Update(ctx context.Context, author entities.Author, bookIDs []uint) (*Result, error) {
	updated, err := s.store.Update(ctx, author, bookIDs)
	if err != nil {
		return nil, err
	}
	return &Result{Success: true, Message: fmt.Sprintf("Author %d successfully updated", updated.ID)}, nil
}

// Delete removes the authors and reports them by name.
func (s *AuthorService) Delete(ctx context.Context, ids []uint) (*Result, error) {
	deleted, err := s.store.Delete(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(deleted))
	for _, a := range deleted {
		names = append(names, a.Name)
	}
	return &Result{
		Success: true,
		Message: fmt.Sprintf("Author(s) %s successfully removed", strings.Join(names, ", ")),
	}, nil
}

func (s *AuthorService) FindOne(ctx context.Context, id uint) (*entities.Author, error) {
	return s.store.FindOne(ctx, id)
}

func (s *AuthorService) FindAll(ctx context.Context, page, perPage int) ([]entities.Author, error) {
	return s.store.FindAll(ctx, page, perPage)
}
