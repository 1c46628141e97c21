package http

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/apperrors"
	"github.com/mrlokans/bookcatalog/internal/logger"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// ListResponse wraps one page of results.
type ListResponse struct {
	Data    any `json:"data"`
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
	Count   int `json:"count"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: string(apperrors.KindValidation)})
}

// respondBindError reports a request body that failed to decode or validate.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "invalid request body",
		Code:    string(apperrors.KindValidation),
		Details: err.Error(),
	})
}

// respondAppError maps an error's Kind to a status code. Storage failures
// are logged; the client only sees a generic message.
func respondAppError(c *gin.Context, log *logger.Logger, err error, op string) {
	kind := apperrors.KindOf(err)
	status := statusForKind(kind)
	if status == http.StatusInternalServerError {
		log.Error("request failed",
			"op", op,
			"path", c.FullPath(),
			"request_id", c.GetString(ContextKeyRequestID),
			"error", err,
		)
	}
	c.JSON(status, ErrorResponse{Error: apperrors.MessageOf(err), Code: string(kind)})
}

func statusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parsePagination reads the required page and perPage query parameters.
// maxPerPage of zero disables the upper bound.
func parsePagination(c *gin.Context, maxPerPage int) (page, perPage int, ok bool) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		respondBadRequest(c, "Invalid page number")
		return 0, 0, false
	}
	perPage, err = strconv.Atoi(c.Query("perPage"))
	if err != nil || perPage < 1 || (maxPerPage > 0 && perPage > maxPerPage) {
		respondBadRequest(c, "Invalid perPage value")
		return 0, 0, false
	}
	// The row offset (page-1)*perPage must fit in an int.
	if page-1 > math.MaxInt/perPage {
		respondBadRequest(c, "Invalid page number")
		return 0, 0, false
	}
	return page, perPage, true
}

// queryList collects a repeated query parameter. It accepts "k=a&k=b",
// "k[]=a&k[]=b" and "k=a,b".
func queryList(c *gin.Context, key string) []string {
	raw := append(c.QueryArray(key), c.QueryArray(key+"[]")...)
	var out []string
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
