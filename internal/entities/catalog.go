package entities

import (
	"time"

	"gorm.io/datatypes"
)

// Currency is reference data seeded at startup and looked up by short code.
type Currency struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ShortName string `gorm:"uniqueIndex;size:3;not null" json:"short_name"` // e.g., "USD"
	Name      string `gorm:"size:100;not null" json:"name"`
}

type Book struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"size:512;not null" json:"title"`
	Language    string         `gorm:"size:64;not null" json:"language"`
	Amount      float64        `gorm:"not null;default:0;check:chk_books_amount,amount >= 0" json:"amount"`
	Year        datatypes.Date `json:"year"`
	Description string         `gorm:"type:text" json:"description"`
	CurrencyID  uint           `gorm:"index;not null" json:"currency_id"`
	Currency    *Currency      `gorm:"foreignKey:CurrencyID" json:"currency,omitempty"`
	Authors     []Author       `gorm:"many2many:book_authors;" json:"authors"`
	Categories  []Category     `gorm:"many2many:book_categories;" json:"categories"`
	Ratings     []Rating       `gorm:"foreignKey:BookID" json:"ratings"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type Author struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"uniqueIndex;size:256;not null" json:"name"`
	Birth     datatypes.Date  `gorm:"not null" json:"birth"`
	Death     *datatypes.Date `json:"death"` // nil while the author is alive
	Books     []Book          `gorm:"many2many:book_authors;" json:"books"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Books     []Book    `gorm:"many2many:book_categories;" json:"books"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Rating is a single user's score for a book. At most one per (book, user).
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BookID    uint      `gorm:"uniqueIndex:idx_ratings_book_user;not null" json:"book_id"`
	UserID    uint      `gorm:"uniqueIndex:idx_ratings_book_user;index;not null" json:"user_id"`
	Value     int       `gorm:"not null;check:chk_ratings_value,value >= 1 AND value <= 5" json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// Join table names shared by the repositories and the maintenance sweeper.
const (
	BookAuthorsTable    = "book_authors"
	BookCategoriesTable = "book_categories"
)

// NewDate truncates t to a calendar date.
func NewDate(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// ParseDate accepts either a plain date ("2006-01-02") or a full RFC 3339 timestamp.
func ParseDate(s string) (datatypes.Date, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return NewDate(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return datatypes.Date{}, err
	}
	return NewDate(t), nil
}

// IsZeroDate reports whether d was never set.
func IsZeroDate(d datatypes.Date) bool {
	return time.Time(d).IsZero()
}
