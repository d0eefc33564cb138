package pagination

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Defaults applied when a request carries no pagination parameters.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params holds 1-based page and page-size parameters.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// DefaultParams returns the default pagination window.
func DefaultParams() Params {
	return Params{Page: DefaultPage, Limit: DefaultLimit}
}

// Normalize replaces non-positive values with the defaults.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	return p
}

// Offset returns the number of items to skip: (page-1) × limit. It saturates
// at math.MaxInt instead of overflowing.
func (p Params) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	if p.overflows() {
		return math.MaxInt
	}
	return (p.Page - 1) * p.Limit
}

func (p Params) overflows() bool {
	return p.Limit > 0 && p.Page-1 > math.MaxInt/p.Limit
}

// ParseQuery reads "page" and "limit" from query values. Absent or empty
// values fall back to defaults; malformed or out-of-range values are errors.
func ParseQuery(q url.Values) (Params, error) {
	p := DefaultParams()

	if v := strings.TrimSpace(q.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return p, fmt.Errorf("page must be a valid positive integer")
		}
		p.Page = page
	}

	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > MaxLimit {
			return p, fmt.Errorf("limit must be a valid integer between 1 and %d", MaxLimit)
		}
		p.Limit = limit
	}

	if p.overflows() {
		return p, fmt.Errorf("page is out of range")
	}

	return p, nil
}

// Page describes where a result window sits in the full result set.
type Page struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalItems  int  `json:"totalItems"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// NewPage computes the page envelope for totalItems matches:
// totalPages = ceil(totalItems / limit).
func NewPage(totalItems int, p Params) Page {
	p = p.Normalize()

	totalPages := totalItems / p.Limit
	if totalItems%p.Limit > 0 {
		totalPages++
	}

	return Page{
		CurrentPage: p.Page,
		TotalPages:  totalPages,
		TotalItems:  totalItems,
		HasNextPage: p.Page < totalPages,
		HasPrevPage: p.Page > 1,
	}
}
