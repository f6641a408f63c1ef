package api

import (
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rpupo63/blog-backend/errs"
)

const (
	defaultPageSize = 5
	maxPageSize     = 25
	defaultLimit    = 10
	maxLimit        = 50

	// keeps offset arithmetic far from overflow
	maxOffset = math.MaxInt32
	maxPage   = maxOffset / maxPageSize
)

// PageResponse is a page-number paginated listing.
type PageResponse[T any] struct {
	Count       int64   `json:"count"`
	TotalPages  int     `json:"total_pages"`
	CurrentPage int     `json:"current_page"`
	Next        *string `json:"next"`
	Previous    *string `json:"previous"`
	Results     []T     `json:"results"`
}

// OffsetResponse is a limit/offset paginated listing.
type OffsetResponse[T any] struct {
	Count    int64   `json:"count"`
	Offset   int     `json:"offset"`
	Limit    int     `json:"limit"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

type pageParams struct {
	page     int
	pageSize int
}

func (p pageParams) offset() int {
	return (p.page - 1) * p.pageSize
}

func parsePageParams(r *http.Request) (pageParams, error) {
	q := r.URL.Query()
	params := pageParams{
		page:     1,
		pageSize: positiveIntParam(q, "page_size", defaultPageSize, maxPageSize),
	}
	// the upper bound is checked by newPageResponse once the count is known
	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 || page > maxPage {
			return params, errs.NewNotFoundError("Invalid page.")
		}
		params.page = page
	}
	return params, nil
}

func newPageResponse[T any](r *http.Request, p pageParams, count int64, results []T) (PageResponse[T], error) {
	totalPages := int((count + int64(p.pageSize) - 1) / int64(p.pageSize))
	if totalPages < 1 {
		totalPages = 1
	}
	if p.page > totalPages {
		return PageResponse[T]{}, errs.NewNotFoundError("Invalid page.")
	}

	resp := PageResponse[T]{
		Count:       count,
		TotalPages:  totalPages,
		CurrentPage: p.page,
		Results:     results,
	}
	if resp.Results == nil {
		resp.Results = []T{}
	}
	if p.page < totalPages {
		resp.Next = pageURL(r, func(q url.Values) {
			q.Set("page", strconv.Itoa(p.page+1))
		})
	}
	if p.page > 1 {
		resp.Previous = pageURL(r, func(q url.Values) {
			if p.page-1 == 1 {
				q.Del("page")
				return
			}
			q.Set("page", strconv.Itoa(p.page-1))
		})
	}
	return resp, nil
}

type offsetParams struct {
	limit  int
	offset int
}

func parseOffsetParams(r *http.Request) offsetParams {
	q := r.URL.Query()
	params := offsetParams{
		limit: positiveIntParam(q, "limit", defaultLimit, maxLimit),
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil && offset > 0 {
		params.offset = min(offset, maxOffset)
	}
	return params
}

func newOffsetResponse[T any](r *http.Request, p offsetParams, count int64, results []T) OffsetResponse[T] {
	resp := OffsetResponse[T]{
		Count:   count,
		Offset:  p.offset,
		Limit:   p.limit,
		Results: results,
	}
	if resp.Results == nil {
		resp.Results = []T{}
	}
	if int64(p.offset) < count-int64(p.limit) {
		resp.Next = pageURL(r, func(q url.Values) {
			q.Set("limit", strconv.Itoa(p.limit))
			q.Set("offset", strconv.Itoa(p.offset+p.limit))
		})
	}
	if p.offset > 0 {
		resp.Previous = pageURL(r, func(q url.Values) {
			q.Set("limit", strconv.Itoa(p.limit))
			if p.offset-p.limit <= 0 {
				q.Del("offset")
				return
			}
			q.Set("offset", strconv.Itoa(p.offset-p.limit))
		})
	}
	return resp
}

// positiveIntParam reads a strictly positive integer, falling back to def
// when missing or invalid and clamping to ceiling.
func positiveIntParam(q url.Values, key string, def, ceiling int) int {
	v, err := strconv.Atoi(q.Get(key))
	if err != nil || v <= 0 {
		return def
	}
	return min(v, ceiling)
}

// pageURL builds an absolute link to the current request with its query
// rewritten by edit.
func pageURL(r *http.Request, edit func(url.Values)) *string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	q := r.URL.Query()
	edit(q)
	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: q.Encode(),
	}
	s := u.String()
	return &s
}
