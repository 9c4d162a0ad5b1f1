package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// listResponse is the envelope every paginated admin listing returns.
type listResponse[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// pageParams reads ?page and ?page_size with 1-based pages. Invalid input
// gets a 400 and ok=false; page_size is capped, never rejected.
func pageParams(c *gin.Context, defaultSize, maxSize int) (page, pageSize int, ok bool) {
	page = 1
	if p := c.Query("page"); p != "" {
		var err error
		page, err = strconv.Atoi(p)
		if err != nil || page < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'page' parameter"})
			return 0, 0, false
		}
	}

	pageSize = defaultSize
	if s := c.Query("page_size"); s != "" {
		var err error
		pageSize, err = strconv.Atoi(s)
		if err != nil || pageSize < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'page_size' parameter"})
			return 0, 0, false
		}
		if pageSize > maxSize {
			pageSize = maxSize
		}
	}

	return page, pageSize, true
}
