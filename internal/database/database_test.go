package database_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/bookcatalog/internal/apperrors"
	"github.com/mrlokans/bookcatalog/internal/database"
	"github.com/mrlokans/bookcatalog/internal/database/dbtest"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

type recordingObserver struct {
	mu       sync.Mutex
	outcomes map[string][]string
}

func (o *recordingObserver) ObserveOperation(op, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcomes == nil {
		o.outcomes = make(map[string][]string)
	}
	o.outcomes[op] = append(o.outcomes[op], outcome)
}

func TestNewDatabaseSeedsCurrencies(t *testing.T) {
	db := dbtest.New(t)

	var currencies []entities.Currency
	require.NoError(t, db.DB.Order("id").Find(&currencies).Error)
	require.Len(t, currencies, 5)
	assert.Equal(t, "USD", currencies[0].ShortName)
	assert.Equal(t, "United States Dollar", currencies[0].Name)
	assert.Equal(t, database.DriverSQLite, db.Driver())
}

func TestNewDatabaseRejectsUnknownDriver(t *testing.T) {
	_, err := database.NewDatabase(database.Options{Driver: "oracle"})
	assert.Error(t, err)

	_, err = database.NewDatabase(database.Options{Driver: "postgres"})
	assert.ErrorContains(t, err, "DATABASE_DSN")
}

func TestRunTranslatesErrors(t *testing.T) {
	observer := &recordingObserver{}
	db := dbtest.New(t, observer)
	ctx := context.Background()

	t.Run("record not found", func(t *testing.T) {
		err := db.Run(ctx, "authors.find", func(tx *gorm.DB) error {
			var a entities.Author
			return tx.First(&a, 999).Error
		})
		assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	})

	t.Run("duplicate key", func(t *testing.T) {
		err := db.Run(ctx, "currencies.create", func(tx *gorm.DB) error {
			return tx.Create(&entities.Currency{ShortName: "USD", Name: "dup"}).Error
		})
		assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	})

	t.Run("typed errors pass through", func(t *testing.T) {
		err := db.Run(ctx, "authors.create", func(tx *gorm.DB) error {
			return apperrors.Validation("name is required")
		})
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
		assert.Equal(t, "name is required", apperrors.MessageOf(err))
	})

	t.Run("untyped errors become storage", func(t *testing.T) {
		err := db.Run(ctx, "books.find", func(tx *gorm.DB) error {
			return errors.New("connection reset")
		})
		assert.Equal(t, apperrors.KindStorage, apperrors.KindOf(err))
	})

	t.Run("cleanup runs on panic", func(t *testing.T) {
		assert.Panics(t, func() {
			_ = db.Run(ctx, "books.panic", func(tx *gorm.DB) error {
				panic("boom")
			})
		})
	})

	observer.mu.Lock()
	defer observer.mu.Unlock()
	assert.Equal(t, []string{"not_found"}, observer.outcomes["authors.find"])
	assert.Equal(t, []string{"conflict"}, observer.outcomes["currencies.create"])
	assert.Equal(t, []string{"storage"}, observer.outcomes["books.panic"])
}

func TestTransactionRollsBack(t *testing.T) {
	db := dbtest.New(t)

	err := db.Transaction(context.Background(), "categories.create", func(tx *gorm.DB) error {
		if err := tx.Create(&entities.Category{Name: "Fiction"}).Error; err != nil {
			return err
		}
		return apperrors.NotFound("books not found")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.DB.Model(&entities.Category{}).Count(&count).Error)
	assert.Zero(t, count)
}

func seedBookWithAuthors(t *testing.T, db *database.Database, names ...string) (entities.Book, []entities.Author) {
	t.Helper()
	authors := make([]entities.Author, 0, len(names))
	for _, name := range names {
		a := entities.Author{Name: name, Birth: entities.NewDate(time.Date(1828, 9, 9, 0, 0, 0, 0, time.UTC))}
		require.NoError(t, db.DB.Create(&a).Error)
		authors = append(authors, a)
	}
	book := entities.Book{Title: "War and Peace", Language: "ru", CurrencyID: 1}
	require.NoError(t, db.DB.Create(&book).Error)
	return book, authors
}

func authorIDs(t *testing.T, db *database.Database, bookID uint) []uint {
	t.Helper()
	var book entities.Book
	require.NoError(t, db.DB.Preload("Authors").First(&book, bookID).Error)
	ids := make([]uint, 0, len(book.Authors))
	for _, a := range book.Authors {
		ids = append(ids, a.ID)
	}
	return ids
}

func TestMutate(t *testing.T) {
	db := dbtest.New(t)
	book, authors := seedBookWithAuthors(t, db, "Tolstoy", "Chekhov", "Gogol")
	a1, a2, a3 := authors[0].ID, authors[1].ID, authors[2].ID

	t.Run("connect is additive and idempotent", func(t *testing.T) {
		require.NoError(t, database.Mutate[entities.Author](db.DB, &book, "Authors", database.Connect(a1)))
		require.NoError(t, database.Mutate[entities.Author](db.DB, &book, "Authors", database.Connect(a2, a1)))
		assert.ElementsMatch(t, []uint{a1, a2}, authorIDs(t, db, book.ID))
	})

	t.Run("replace drops members outside the new set", func(t *testing.T) {
		require.NoError(t, database.Mutate[entities.Author](db.DB, &book, "Authors", database.Replace(a3)))
		assert.ElementsMatch(t, []uint{a3}, authorIDs(t, db, book.ID))
	})

	t.Run("disconnect is a no-op on a second pass", func(t *testing.T) {
		require.NoError(t, database.Mutate[entities.Author](db.DB, &book, "Authors", database.Disconnect(a3)))
		require.NoError(t, database.Mutate[entities.Author](db.DB, &book, "Authors", database.Disconnect(a3)))
		assert.Empty(t, authorIDs(t, db, book.ID))
	})

	t.Run("replace with empty list clears", func(t *testing.T) {
		require.NoError(t, database.Mutate[entities.Author](db.DB, &book, "Authors", database.Connect(a1, a2)))
		require.NoError(t, database.Mutate[entities.Author](db.DB, &book, "Authors", database.Replace()))
		assert.Empty(t, authorIDs(t, db, book.ID))
	})

	t.Run("unknown ids are not found", func(t *testing.T) {
		err := database.Mutate[entities.Author](db.DB, &book, "Authors", database.Connect(a1, 4242))
		require.Error(t, err)
		assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
		assert.Contains(t, err.Error(), "4242")

		var count int64
		require.NoError(t, db.DB.Model(&entities.Author{}).Count(&count).Error)
		assert.Equal(t, int64(3), count, "no blank author rows inserted")
	})
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, database.Offset(1, 5))
	assert.Equal(t, 5, database.Offset(2, 5))
	assert.Equal(t, 40, database.Offset(5, 10))
	assert.Equal(t, 0, database.Offset(0, 10))
}

func TestIDListUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    database.IDList
		wantErr bool
	}{
		{"scalar", `7`, database.IDList{7}, false},
		{"numeric string", `"7"`, database.IDList{7}, false},
		{"array keeps order and duplicates", `[1, 1, 2]`, database.IDList{1, 1, 2}, false},
		{"mixed array", `[3, "4"]`, database.IDList{3, 4}, false},
		{"empty array", `[]`, database.IDList{}, false},
		{"null", `null`, nil, false},
		{"zero", `0`, nil, true},
		{"negative", `[-1]`, nil, true},
		{"fraction", `1.5`, nil, true},
		{"word", `"abc"`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got struct {
				IDs database.IDList `json:"ids"`
			}
			err := json.Unmarshal([]byte(`{"ids":`+tt.input+`}`), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.IDs)
		})
	}
}

func TestNewIDList(t *testing.T) {
	l, err := database.NewIDList(3)
	require.NoError(t, err)
	assert.Equal(t, database.IDList{3}, l)

	l, err = database.NewIDList([]int{2, 2, 1})
	require.NoError(t, err)
	assert.Equal(t, []uint{2, 2, 1}, l.Uints())

	_, err = database.NewIDList("nope")
	assert.Error(t, err)
}
