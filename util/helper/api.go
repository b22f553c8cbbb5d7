package helper_util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

func GetPaginationParams(c *gin.Context) (limit int, offset int, err error) {
	limit, err = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil {
		return 0, 0, err
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

// Page is the limit/offset envelope list endpoints serialize. Count is the
// total before slicing, so clients can page.
type Page[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

// Paginate slices items by limit/offset. A non-positive limit returns the
// whole remainder; results is never nil so the envelope always serializes
// with a results array.
func Paginate[T any](items []T, limit, offset int) Page[T] {
	page := Page[T]{Count: len(items), Results: []T{}}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return page
	}
	rest := items[offset:]
	if limit > 0 && limit < len(rest) {
		rest = rest[:limit]
	}
	page.Results = append(page.Results, rest...)
	return page
}
