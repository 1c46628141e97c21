package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/database"
	"github.com/mrlokans/bookcatalog/internal/entities"
	"github.com/mrlokans/bookcatalog/internal/logger"
)

type AuthorsController struct {
	service AuthorService
	log     *logger.Logger
}

func NewAuthorsController(service AuthorService, log *logger.Logger) *AuthorsController {
	if log == nil {
		log = logger.NewNop()
	}
	return &AuthorsController{service: service, log: log}
}

type authorFields struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name" binding:"required"`
	Birth string  `json:"birth"`
	Death *string `json:"death"`
}

// AuthorRequest is the body of POST /authors and PUT /authors/:id.
type AuthorRequest struct {
	Author  authorFields    `json:"author"`
	BookIDs database.IDList `json:"bookIds"`
}

// IDsRequest carries one id or a list of ids.
type IDsRequest struct {
	IDs database.IDList `json:"ids"`
}

// toEntity converts the request dates. requireBirth is set for creation.
func (f authorFields) toEntity(requireBirth bool) (entities.Author, string) {
	author := entities.Author{ID: f.ID, Name: f.Name}
	if f.Birth != "" {
		birth, err := entities.ParseDate(f.Birth)
		if err != nil {
			return author, "Invalid birth date"
		}
		author.Birth = birth
	} else if requireBirth {
		return author, "Invalid birth date"
	}
	if f.Death != nil && *f.Death != "" {
		death, err := entities.ParseDate(*f.Death)
		if err != nil {
			return author, "Invalid death date"
		}
		author.Death = &death
	}
	return author, ""
}

// GetAuthors handles GET /authors?page=&perPage=
func (ac *AuthorsController) GetAuthors(c *gin.Context) {
	page, perPage, ok := parsePagination(c, 0)
	if !ok {
		return
	}
	list, err := ac.service.FindAll(c.Request.Context(), page, perPage)
	if err != nil {
		respondAppError(c, ac.log, err, "authors.find_all")
		return
	}
	c.JSON(http.StatusOK, ListResponse{Data: list, Page: page, PerPage: perPage, Count: len(list)})
}

// GetAuthor handles GET /authors/:id
func (ac *AuthorsController) GetAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	author, err := ac.service.FindOne(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, ac.log, err, "authors.find_one")
		return
	}
	c.JSON(http.StatusOK, author)
}

// CreateAuthor handles POST /authors
func (ac *AuthorsController) CreateAuthor(c *gin.Context) {
	var req AuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	author, problem := req.Author.toEntity(true)
	if problem != "" {
		respondBadRequest(c, problem)
		return
	}

	result, err := ac.service.Create(c.Request.Context(), author, req.BookIDs.Uints())
	if err != nil {
		respondAppError(c, ac.log, err, "authors.create")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// UpdateAuthor handles PUT /authors/:id. A body id, when present, must match
// the path.
func (ac *AuthorsController) UpdateAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req AuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.Author.ID != 0 && req.Author.ID != id {
		respondBadRequest(c, "author id does not match path")
		return
	}
	req.Author.ID = id

	author, problem := req.Author.toEntity(false)
	if problem != "" {
		respondBadRequest(c, problem)
		return
	}

	result, err := ac.service.Update(c.Request.Context(), author, req.BookIDs.Uints())
	if err != nil {
		respondAppError(c, ac.log, err, "authors.update")
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteAuthors handles DELETE /authors/delete with {"ids": 1} or {"ids": [1, 2]}.
func (ac *AuthorsController) DeleteAuthors(c *gin.Context) {
	var req IDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := ac.service.Delete(c.Request.Context(), req.IDs.Uints())
	if err != nil {
		respondAppError(c, ac.log, err, "authors.delete")
		return
	}
	c.JSON(http.StatusOK, result)
}
