// Package maintenance removes rows that reference catalog entities which no
// longer exist.
//
// Regular deletes detach associations before removing a row, so dangling
// links only appear after an interrupted cascade or out-of-band edits to the
// store.
package maintenance

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/bookcatalog/internal/database"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

const RatingsTable = "ratings"

// PruneObserver receives the number of rows removed per table.
type PruneObserver interface {
	ObservePruned(table string, rows int64)
}

// Report holds per-table counts of pruned rows.
type Report struct {
	BookAuthors    int64 `json:"book_authors"`
	BookCategories int64 `json:"book_categories"`
	Ratings        int64 `json:"ratings"`
}

func (r Report) Total() int64 {
	return r.BookAuthors + r.BookCategories + r.Ratings
}

type Pruner struct {
	db       *database.Database
	observer PruneObserver
}

// NewPruner creates a pruner. observer may be nil.
func NewPruner(db *database.Database, observer PruneObserver) *Pruner {
	return &Pruner{db: db, observer: observer}
}

var pruneStatements = []struct {
	table string
	sql   string
}{
	{
		table: entities.BookAuthorsTable,
		sql: "DELETE FROM " + entities.BookAuthorsTable +
			" WHERE book_id NOT IN (SELECT id FROM books) OR author_id NOT IN (SELECT id FROM authors)",
	},
	{
		table: entities.BookCategoriesTable,
		sql: "DELETE FROM " + entities.BookCategoriesTable +
			" WHERE book_id NOT IN (SELECT id FROM books) OR category_id NOT IN (SELECT id FROM categories)",
	},
	{
		table: RatingsTable,
		sql: "DELETE FROM " + RatingsTable +
			" WHERE book_id NOT IN (SELECT id FROM books) OR user_id NOT IN (SELECT id FROM users)",
	},
}

// PruneDanglingLinks deletes join rows and ratings whose book, author,
// category or user is gone. All tables are swept in one transaction.
func (p *Pruner) PruneDanglingLinks(ctx context.Context) (Report, error) {
	counts := make(map[string]int64, len(pruneStatements))
	err := p.db.Transaction(ctx, "maintenance.prune_links", func(tx *gorm.DB) error {
		for _, stmt := range pruneStatements {
			result := tx.Exec(stmt.sql)
			if result.Error != nil {
				return result.Error
			}
			counts[stmt.table] = result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return Report{}, err
	}

	if p.observer != nil {
		for table, rows := range counts {
			p.observer.ObservePruned(table, rows)
		}
	}
	return Report{
		BookAuthors:    counts[entities.BookAuthorsTable],
		BookCategories: counts[entities.BookCategoriesTable],
		Ratings:        counts[RatingsTable],
	}, nil
}
