package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/database"
	"github.com/mrlokans/bookcatalog/internal/logger"
)

type CategoriesController struct {
	service CategoryService
	log     *logger.Logger
}

func NewCategoriesController(service CategoryService, log *logger.Logger) *CategoriesController {
	if log == nil {
		log = logger.NewNop()
	}
	return &CategoriesController{service: service, log: log}
}

// CreateCategoryRequest is the body of POST /categories.
type CreateCategoryRequest struct {
	CategoryName string          `json:"categoryName" binding:"required"`
	BookIDs      database.IDList `json:"bookIds"`
}

// UpdateCategoryRequest is the body of PUT /categories/:id.
type UpdateCategoryRequest struct {
	Category struct {
		ID   uint   `json:"id"`
		Name string `json:"name" binding:"required"`
	} `json:"category"`
	BookIDs database.IDList `json:"bookIds"`
}

// GetCategories handles GET /categories?page=&perPage=
func (cc *CategoriesController) GetCategories(c *gin.Context) {
	page, perPage, ok := parsePagination(c, 0)
	if !ok {
		return
	}
	list, err := cc.service.FindAll(c.Request.Context(), page, perPage)
	if err != nil {
		respondAppError(c, cc.log, err, "categories.find_all")
		return
	}
	c.JSON(http.StatusOK, ListResponse{Data: list, Page: page, PerPage: perPage, Count: len(list)})
}

// GetCategory handles GET /categories/:id
func (cc *CategoriesController) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	category, err := cc.service.FindOne(c.Request.Context(), id)
	if err != nil {
		respondAppError(c, cc.log, err, "categories.find_one")
		return
	}
	c.JSON(http.StatusOK, category)
}

// CreateCategory handles POST /categories
func (cc *CategoriesController) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := cc.service.Create(c.Request.Context(), req.CategoryName, req.BookIDs.Uints())
	if err != nil {
		respondAppError(c, cc.log, err, "categories.create")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// UpdateCategory handles PUT /categories/:id
func (cc *CategoriesController) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.Category.ID != 0 && req.Category.ID != id {
		respondBadRequest(c, "category id does not match path")
		return
	}

	result, err := cc.service.Update(c.Request.Context(), id, req.Category.Name, req.BookIDs.Uints())
	if err != nil {
		respondAppError(c, cc.log, err, "categories.update")
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteCategories handles PUT /categories/delete with {"ids": 1} or {"ids": [1, 2]}.
func (cc *CategoriesController) DeleteCategories(c *gin.Context) {
	var req IDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := cc.service.Delete(c.Request.Context(), req.IDs.Uints())
	if err != nil {
		respondAppError(c, cc.log, err, "categories.delete")
		return
	}
	c.JSON(http.StatusOK, result)
}

// CurrenciesController lists the seeded currencies.
type CurrenciesController struct {
	lister CurrencyLister
	log    *logger.Logger
}

func NewCurrenciesController(lister CurrencyLister, log *logger.Logger) *CurrenciesController {
	if log == nil {
		log = logger.NewNop()
	}
	return &CurrenciesController{lister: lister, log: log}
}

// GetCurrencies handles GET /currencies
func (cc *CurrenciesController) GetCurrencies(c *gin.Context) {
	list, err := cc.lister.List(c.Request.Context())
	if err != nil {
		respondAppError(c, cc.log, err, "currencies.list")
		return
	}
	c.JSON(http.StatusOK, gin.H{"currencies": list, "count": len(list)})
}
