package dto

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxPageSize = 100

// PageResponse is the envelope every list endpoint returns.
type PageResponse struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// PageParams reads page/page_size query parameters, clamping bad input to
// sane values instead of rejecting it.
func PageParams(c *gin.Context, defaultSize int) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultSize)))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultSize
	}
	return page, pageSize
}

// NewPageResponse wraps one page of results with absolute next/previous
// links rebuilt from the inbound request.
func NewPageResponse(c *gin.Context, count int64, page, pageSize int, results interface{}) *PageResponse {
	resp := &PageResponse{
		Count:   count,
		Results: results,
	}

	if int64(page*pageSize) < count {
		next := pageURL(c, page+1, pageSize)
		resp.Next = &next
	}
	if page > 1 {
		prev := pageURL(c, page-1, pageSize)
		resp.Previous = &prev
	}
	return resp
}

// pageURL rebuilds the request URL with the page parameter swapped,
// preserving any filter parameters already present. Behind a
// TLS-terminating proxy the forwarded proto header names the real scheme.
func pageURL(c *gin.Context, page, pageSize int) string {
	r := c.Request
	scheme := "http"
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if r.TLS != nil {
		scheme = "https"
	}

	query := r.URL.Query()
	query.Set("page", strconv.Itoa(page))
	query.Set("page_size", strconv.Itoa(pageSize))

	return scheme + "://" + r.Host + r.URL.Path + "?" + query.Encode()
}
