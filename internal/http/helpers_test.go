package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/bookcatalog/internal/apperrors"
	"github.com/mrlokans/bookcatalog/internal/logger"
)

func TestStatusForKind(t *testing.T) {
	tests := []struct {
		kind apperrors.Kind
		want int
	}{
		{apperrors.KindValidation, http.StatusBadRequest},
		{apperrors.KindNotFound, http.StatusNotFound},
		{apperrors.KindConflict, http.StatusConflict},
		{apperrors.KindStorage, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, statusForKind(tt.kind))
		})
	}
}

func TestRespondAppError_HidesStorageDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondAppError(c, logger.NewNop(), apperrors.Storage(errors.New("database is locked"), "books.create failed"), "books.create")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "locked")
	assert.Contains(t, w.Body.String(), `"code":"storage"`)
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		max        int
		ok         bool
		page, size int
	}{
		{"valid", "page=3&perPage=7", 20, true, 3, 7},
		{"at max", "page=1&perPage=20", 20, true, 1, 20},
		{"above max", "page=1&perPage=21", 20, false, 0, 0},
		{"unbounded", "page=1&perPage=500", 0, true, 1, 500},
		{"negative page", "page=-1&perPage=5", 20, false, 0, 0},
		{"not a number", "page=one&perPage=5", 20, false, 0, 0},
		{"offset overflows", "page=3&perPage=4611686018427387904", 0, false, 0, 0},
		{"huge page", "page=9223372036854775807&perPage=2", 20, false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)

			page, perPage, ok := parsePagination(c, tt.max)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.page, page)
			assert.Equal(t, tt.size, perPage)
			if !ok {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}

func TestQueryList(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?c=Fiction&c[]=Poetry&c=Drama,%20Essays&c=", nil)

	assert.Equal(t, []string{"Fiction", "Drama", "Essays", "Poetry"}, queryList(c, "c"))
}

func TestRequestIDMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextKeyRequestID))
	})

	t.Run("generates an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Len(t, w.Header().Get(HeaderRequestID), 36)
		assert.Equal(t, w.Header().Get(HeaderRequestID), w.Body.String())
	})

	t.Run("keeps a valid caller id", func(t *testing.T) {
		const id = "7f1c7e5e-6a40-4d8a-9f57-3f4a1f6a2b10"
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, id)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, id, w.Header().Get(HeaderRequestID))
	})

	t.Run("replaces garbage", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "<script>")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.NotEqual(t, "<script>", w.Header().Get(HeaderRequestID))
	})
}
