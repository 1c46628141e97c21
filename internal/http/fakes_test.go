package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/database/books"
	"github.com/mrlokans/bookcatalog/internal/database/maintenance"
	"github.com/mrlokans/bookcatalog/internal/entities"
	"github.com/mrlokans/bookcatalog/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Compile-time checks that the production types satisfy the controller
// interfaces.
var (
	_ BookService     = (*services.BookService)(nil)
	_ AuthorService   = (*services.AuthorService)(nil)
	_ CategoryService = (*services.CategoryService)(nil)
	_ AccountService  = (*auth.Service)(nil)
	_ LoginLimiter    = (*auth.RateLimiter)(nil)
	_ LinkPruner      = (*maintenance.Pruner)(nil)
)

type fakeBooks struct {
	BookService

	err error

	createdPayload *books.Payload
	updatedID      uint
	patch          books.Patch
	authorIDs      []uint
	categoryIDs    []uint
	page, perPage  int
	categoryNames  []string
	ratedBy        uint
	ratedValue     int
}

func (f *fakeBooks) Create(_ context.Context, p *books.Payload) (*services.Result, error) {
	f.createdPayload = p
	if f.err != nil {
		return nil, f.err
	}
	return &services.Result{Success: true, Message: "Book 1 and related data successfully created"}, nil
}

func (f *fakeBooks) Update(_ context.Context, id uint, patch books.Patch, authorIDs, categoryIDs []uint) (*services.Result, error) {
	f.updatedID, f.patch, f.authorIDs, f.categoryIDs = id, patch, authorIDs, categoryIDs
	if f.err != nil {
		return nil, f.err
	}
	return &services.Result{Success: true, Message: "Book 1 and related data successfully updated"}, nil
}

func (f *fakeBooks) Delete(_ context.Context, id uint) (*services.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.Result{Success: true, Message: "Book 1 and related data successfully deleted"}, nil
}

func (f *fakeBooks) FindOne(_ context.Context, id uint) (*entities.Book, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &entities.Book{ID: id, Title: "Dune"}, nil
}

func (f *fakeBooks) FindAll(_ context.Context, page, perPage int, names []string) ([]entities.Book, error) {
	f.page, f.perPage, f.categoryNames = page, perPage, names
	if f.err != nil {
		return nil, f.err
	}
	return []entities.Book{{ID: 1, Title: "Dune"}, {ID: 2, Title: "Emma"}}, nil
}

func (f *fakeBooks) AddRating(_ context.Context, bookID, userID uint, value int) (*entities.Rating, error) {
	f.ratedBy, f.ratedValue = userID, value
	if f.err != nil {
		return nil, f.err
	}
	return &entities.Rating{ID: 1, BookID: bookID, UserID: userID, Value: value}, nil
}

func (f *fakeBooks) Ratings(_ context.Context, bookID uint) ([]entities.Rating, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []entities.Rating{{ID: 1, BookID: bookID, UserID: 3, Value: 4}}, nil
}

type fakeAuthors struct {
	AuthorService

	err     error
	author  entities.Author
	bookIDs []uint
	ids     []uint
}

func (f *fakeAuthors) Create(_ context.Context, a entities.Author, bookIDs []uint) (*services.Result, error) {
	f.author, f.bookIDs = a, bookIDs
	if f.err != nil {
		return nil, f.err
	}
	return &services.Result{Success: true, Message: "Author 1 successfully created"}, nil
}

func (f *fakeAuthors) Update(_ context.Context, a entities.Author, bookIDs []uint) (*services.Result, error) {
	f.author, f.bookIDs = a, bookIDs
	if f.err != nil {
		return nil, f.err
	}
	return &services.Result{Success: true, Message: "Author 1 successfully updated"}, nil
}

func (f *fakeAuthors) Delete(_ context.Context, ids []uint) (*services.Result, error) {
	f.ids = ids
	if f.err != nil {
		return nil, f.err
	}
	return &services.Result{Success: true, Message: "Author(s) Leo Tolstoy successfully removed"}, nil
}

func (f *fakeAuthors) FindOne(_ context.Context, id uint) (*entities.Author, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &entities.Author{ID: id, Name: "Leo Tolstoy"}, nil
}

func (f *fakeAuthors) FindAll(_ context.Context, page, perPage int) ([]entities.Author, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []entities.Author{{ID: 1, Name: "Leo Tolstoy"}}, nil
}

type fakeCategories struct {
	CategoryService

	err     error
	id      uint
	name    string
	bookIDs []uint
	ids     []uint
}

func (f *fakeCategories) Create(_ context.Context, name string, bookIDs []uint) (*services.Result, error) {
	f.name, f.bookIDs = name, bookIDs
	if f.err != nil {
		return nil, f.err
	}
	return &services.Result{Success: true, Message: "Category 1 successfully created"}, nil
}

func (f *fakeCategories) Update(_ context.Context, id uint, name string, bookIDs []uint) (*services.Result, error) {
	f.id, f.name, f.bookIDs = id, name, bookIDs
	if f.err != nil {
		return nil, f.err
	}
	return &services.Result{Success: true, Message: "Category 1 successfully updated"}, nil
}

func (f *fakeCategories) Delete(_ context.Context, ids []uint) (*services.Result, error) {
	f.ids = ids
	if f.err != nil {
		return nil, f.err
	}
	return &services.Result{Success: true, Message: "Category Fiction successfully removed"}, nil
}

func (f *fakeCategories) FindOne(_ context.Context, id uint) (*entities.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &entities.Category{ID: id, Name: "Fiction"}, nil
}

func (f *fakeCategories) FindAll(_ context.Context, page, perPage int) ([]entities.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []entities.Category{{ID: 1, Name: "Fiction"}}, nil
}

type fakeQueue struct {
	mu     sync.Mutex
	tasks  []backlite.Task
	status backlite.TaskStatus
	err    error
}

func (q *fakeQueue) Enqueue(task backlite.Task) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return "", q.err
	}
	q.tasks = append(q.tasks, task)
	return "task-1", nil
}

func (q *fakeQueue) Status(_ context.Context, _ string) (backlite.TaskStatus, error) {
	return q.status, q.err
}

type fakePruner struct {
	report maintenance.Report
	err    error
	calls  int
}

func (p *fakePruner) PruneDanglingLinks(_ context.Context) (maintenance.Report, error) {
	p.calls++
	return p.report, p.err
}

type fakeLimiter struct {
	failures  int
	successes int
	lockAfter int
}

func (l *fakeLimiter) RecordFailure(_, _ string) (bool, time.Duration) {
	l.failures++
	if l.lockAfter > 0 && l.failures >= l.lockAfter {
		return true, 30 * time.Second
	}
	return false, 0
}

func (l *fakeLimiter) RecordSuccess(_, _ string) {
	l.successes++
}

// withUser pretends the request was authenticated as userID.
func withUser(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(auth.ContextKeyUserID, userID)
		c.Set(auth.ContextKeyAuthType, auth.AuthTypeBearer)
		c.Next()
	}
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func doJSONWithToken(t *testing.T, router http.Handler, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
