// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination turns ?page=&limit= into a LIMIT/OFFSET window and
// describes the window back to the client.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is a 1-indexed page request.
type Params struct {
	Page  int
	Limit int
}

// Offset is the number of rows skipped before Page.
func (p Params) Offset() int {
	return (max(p.Page, 1) - 1) * p.Limit
}

// Meta is the "meta" block of a paginated response.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta describes page of a collection holding total rows.
func NewMeta(page, limit, total int) Meta {
	meta := Meta{Page: page, Limit: limit, Total: total}
	if limit > 0 {
		meta.TotalPages = (total + limit - 1) / limit
	}
	return meta
}

// FromRequest reads page and limit. A value that is missing, malformed, or
// out of range falls back to its default rather than failing the request.
func FromRequest(request *http.Request) Params {
	values := request.URL.Query()

	page := positive(values.Get("page"), DefaultPage)
	limit := positive(values.Get("limit"), DefaultLimit)
	if limit > MaxLimit {
		limit = DefaultLimit
	}

	return Params{Page: page, Limit: limit}
}

func positive(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
