package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/database"
	"github.com/mrlokans/bookcatalog/internal/database/books"
	"github.com/mrlokans/bookcatalog/internal/entities"
	"github.com/mrlokans/bookcatalog/internal/logger"
)

type BooksController struct {
	service    BookService
	maxPerPage int
	log        *logger.Logger
}

func NewBooksController(service BookService, maxPerPage int, log *logger.Logger) *BooksController {
	if log == nil {
		log = logger.NewNop()
	}
	return &BooksController{service: service, maxPerPage: maxPerPage, log: log}
}

type bookFields struct {
	Title       string   `json:"title" binding:"required"`
	Language    string   `json:"language" binding:"required"`
	Amount      *float64 `json:"amount" binding:"required,gte=0"`
	Year        string   `json:"year" binding:"required"`
	Description string   `json:"description" binding:"required"`
}

type currencyRef struct {
	ShortName string `json:"shortName"`
}

// CreateBookRequest is the body of POST /books.
type CreateBookRequest struct {
	Book        bookFields      `json:"book"`
	AuthorIDs   database.IDList `json:"authorsIds"`
	CategoryIDs database.IDList `json:"categoriesIds"`
	Currency    currencyRef     `json:"currency"`
}

type bookPatch struct {
	Title       *string  `json:"title"`
	Language    *string  `json:"language"`
	Amount      *float64 `json:"amount" binding:"omitempty,gte=0"`
	Year        *string  `json:"year"`
	Description *string  `json:"description"`
	Currency    *string  `json:"currency"`
}

// UpdateBookRequest is the body of PUT /books/:id. Omitted id lists keep the
// current associations; an empty list clears them.
type UpdateBookRequest struct {
	UpdateData         bookPatch       `json:"updateData"`
	UpdatedAuthorIDs   database.IDList `json:"updatedAuthorIds"`
	UpdatedCategoryIDs database.IDList `json:"updatedCategoryIds"`
}

type ratingRequest struct {
	Value int `json:"value" binding:"required,min=1,max=5"`
}

// GetBooks handles GET /books?page=&perPage=&categories=
func (bc *BooksController) GetBooks(c *gin.Context) {
	page, perPage, ok := parsePagination(c, bc.maxPerPage)
	if !ok {
		return
	}
	categories := queryList(c, "categories")
	if len(categories) == 0 {
		respondBadRequest(c, "Category field is empty. Choose book category")
		return
	}

	list, err := bc.service.FindAll(c.Request.Context(), page, perPage, categories)
	if err != nil {
		respondAppError(c, bc.log, err, "books.find_all")
		return
	}
	c.JSON(http.StatusOK, ListResponse{Data: list, Page: page, PerPage: perPage, Count: len(list)})
}

// GetBook handles GET /books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	book, err := bc.service.FindOne(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, bc.log, err, "books.find_one")
		return
	}
	c.JSON(http.StatusOK, book)
}

// CreateBook handles POST /books
func (bc *BooksController) CreateBook(c *gin.Context) {
	var req CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	year, err := entities.ParseDate(req.Book.Year)
	if err != nil {
		respondBadRequest(c, "Invalid year format")
		return
	}

	result, err := bc.service.Create(c.Request.Context(), &books.Payload{
		Title:       req.Book.Title,
		Language:    req.Book.Language,
		Amount:      *req.Book.Amount,
		Year:        year,
		Description: req.Book.Description,
		Currency:    req.Currency.ShortName,
		AuthorIDs:   req.AuthorIDs.Uints(),
		CategoryIDs: req.CategoryIDs.Uints(),
	})
	if err != nil {
		respondAppError(c, bc.log, err, "books.create")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// UpdateBook handles PUT /books/:id
func (bc *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	patch := books.Patch{
		Title:       req.UpdateData.Title,
		Language:    req.UpdateData.Language,
		Amount:      req.UpdateData.Amount,
		Description: req.UpdateData.Description,
		Currency:    req.UpdateData.Currency,
	}
	if req.UpdateData.Year != nil {
		year, err := entities.ParseDate(strings.TrimSpace(*req.UpdateData.Year))
		if err != nil {
			respondBadRequest(c, "Invalid year format")
			return
		}
		patch.Year = &year
	}

	result, err := bc.service.Update(c.Request.Context(), id, patch,
		req.UpdatedAuthorIDs.Uints(), req.UpdatedCategoryIDs.Uints())
	if err != nil {
		respondAppError(c, bc.log, err, "books.update")
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteBook handles DELETE /books/:id
func (bc *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	result, err := bc.service.Delete(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, bc.log, err, "books.delete")
		return
	}
	c.JSON(http.StatusOK, result)
}

// AddRating handles POST /books/:id/ratings. The rating belongs to the
// authenticated user.
func (bc *BooksController) AddRating(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req ratingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	rating, err := bc.service.AddRating(c.Request.Context(), id, auth.GetUserID(c), req.Value)
	if err != nil {
		respondAppError(c, bc.log, err, "books.add_rating")
		return
	}
	c.JSON(http.StatusCreated, rating)
}

// GetRatings handles GET /books/:id/ratings
func (bc *BooksController) GetRatings(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ratings, err := bc.service.Ratings(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, bc.log, err, "books.ratings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ratings": ratings, "count": len(ratings)})
}
