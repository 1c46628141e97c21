package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookcatalog/internal/database/dbtest"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

type recordingObserver struct {
	pruned map[string]int64
}

func (o *recordingObserver) ObservePruned(table string, rows int64) {
	if o.pruned == nil {
		o.pruned = map[string]int64{}
	}
	o.pruned[table] += rows
}

func TestPruner_PruneDanglingLinks(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	author := entities.Author{Name: "Herbert", Birth: entities.NewDate(time.Date(1920, 10, 8, 0, 0, 0, 0, time.UTC))}
	category := entities.Category{Name: "Fiction"}
	user := entities.User{Email: "reader@example.com", PasswordHash: "x"}
	require.NoError(t, db.DB.Create(&author).Error)
	require.NoError(t, db.DB.Create(&category).Error)
	require.NoError(t, db.DB.Create(&user).Error)

	kept := entities.Book{Title: "Dune", CurrencyID: 1, Authors: []entities.Author{author}, Categories: []entities.Category{category}}
	gone := entities.Book{Title: "Lost", CurrencyID: 1, Authors: []entities.Author{author}, Categories: []entities.Category{category}}
	require.NoError(t, db.DB.Create(&kept).Error)
	require.NoError(t, db.DB.Create(&gone).Error)
	require.NoError(t, db.DB.Create(&entities.Rating{BookID: kept.ID, UserID: user.ID, Value: 5}).Error)
	require.NoError(t, db.DB.Create(&entities.Rating{BookID: gone.ID, UserID: user.ID, Value: 1}).Error)

	// Remove the row behind the associations' back.
	require.NoError(t, db.DB.Exec("DELETE FROM books WHERE id = ?", gone.ID).Error)

	observer := &recordingObserver{}
	report, err := NewPruner(db, observer).PruneDanglingLinks(ctx)

	require.NoError(t, err)
	assert.Equal(t, Report{BookAuthors: 1, BookCategories: 1, Ratings: 1}, report)
	assert.Equal(t, int64(3), report.Total())
	assert.Equal(t, int64(1), observer.pruned[entities.BookAuthorsTable])
	assert.Equal(t, int64(1), observer.pruned[RatingsTable])

	var book entities.Book
	require.NoError(t, db.DB.Preload("Authors").Preload("Categories").Preload("Ratings").First(&book, kept.ID).Error)
	assert.Len(t, book.Authors, 1)
	assert.Len(t, book.Categories, 1)
	assert.Len(t, book.Ratings, 1)

	report, err = NewPruner(db, nil).PruneDanglingLinks(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Total(), "second sweep finds nothing")
}
