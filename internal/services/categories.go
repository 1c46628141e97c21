package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrlokans/bookcatalog/internal/entities"
)

type CategoryService struct {
	store CategoryStore
}

func NewCategoryService(store CategoryStore) *CategoryService {
	return &CategoryService{store: store}
}

func (s *CategoryService) Create(ctx context.Context, name string, bookIDs []uint) (*Result, error) {
	created, err := s.store.Create(ctx, name, bookIDs)
	if err != nil {
		return nil, err
	}
	return &Result{Success: true, Message: fmt.Sprintf("Category %d successfully created", created.ID)}, nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, name string, bookIDs []uint) (*Result, error) {
	updated, err := s.store.Update(ctx, id, name, bookIDs)
	if err != nil {
		return nil, err
	}
	return &Result{Success: true, Message: fmt.Sprintf("Category %d successfully updated", updated.ID)}, nil
}

func (s *CategoryService) Delete(ctx context.Context, ids []uint) (*Result, error) {
	deleted, err := s.store.Delete(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(deleted))
	for _, c := range deleted {
		names = append(names, c.Name)
	}
	return &Result{
		Success: true,
		Message: fmt.Sprintf("Category %s successfully removed", strings.Join(names, ", ")),
	}, nil
}

func (s *CategoryService) FindOne(ctx context.Context, id uint) (*entities.Category, error) {
	return s.store.FindOne(ctx, id)
}

func (s *CategoryService) FindAll(ctx context.Context, page, perPage int) ([]entities.Category, error) {
	return s.store.FindAll(ctx, page, perPage)
}
