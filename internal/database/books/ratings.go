package books

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/bookcatalog/internal/apperrors"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

const (
	MinRating = 1
	MaxRating = 5
)

// AddRating records userID's rating of bookID. A pair can be rated once;
// later attempts fail with a Conflict error and leave the first value intact.
func (r *Repository) AddRating(ctx context.Context, bookID, userID uint, value int) (*entities.Rating, error) {
	if bookID == 0 {
		return nil, apperrors.Validation("book id is required")
	}
	if userID == 0 {
		return nil, apperrors.Validation("user id is required")
	}
	if value < MinRating || value > MaxRating {
		return nil, apperrors.Validation("rating must be between %d and %d, got %d", MinRating, MaxRating, value)
	}

	rating := entities.Rating{BookID: bookID, UserID: userID, Value: value}
	err := r.db.Transaction(ctx, "books.add_rating", func(tx *gorm.DB) error {
		if err := mustExist(tx, &entities.Book{}, bookID, "book"); err != nil {
			return err
		}
		if err := mustExist(tx, &entities.User{}, userID, "user"); err != nil {
			return err
		}

		var count int64
		err := tx.Model(&entities.Rating{}).
			Where("book_id = ? AND user_id = ?", bookID, userID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.Conflict("book %d already rated by user %d", bookID, userID)
		}
		// A concurrent insert for the same pair still fails on the unique
		// index and is reported as a conflict by the gateway.
		return tx.Create(&rating).Error
	})
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// Ratings lists a book's ratings, oldest first.
func (r *Repository) Ratings(ctx context.Context, bookID uint) ([]entities.Rating, error) {
	ratings := []entities.Rating{}
	err := r.db.Run(ctx, "books.ratings", func(db *gorm.DB) error {
		if err := mustExist(db, &entities.Book{}, bookID, "book"); err != nil {
			return err
		}
		return db.Where("book_id = ?", bookID).Order("id ASC").Find(&ratings).Error
	})
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

func mustExist(db *gorm.DB, model any, id uint, name string) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperrors.NotFound("%s %d not found", name, id)
	}
	return nil
}
