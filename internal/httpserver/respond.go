package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"clientdesk/internal/domain"
)

// writeError maps the domain error taxonomy onto HTTP statuses. Unmapped
// errors surface as a bare 500 so internals never leak to the client.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// listQuery is the shared paging/filter query shape of list endpoints.
type listQuery struct {
	Page   int
	Limit  int
	Search string
	Sort   string
}

func parseListQuery(c *gin.Context) listQuery {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return listQuery{
		Page:   page,
		Limit:  limit,
		Search: c.Query("search"),
		Sort:   c.Query("sort"),
	}
}

// listResponse wraps a page of items with the unpaged total.
type listResponse struct {
	Items any `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}
