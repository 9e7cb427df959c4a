// Copyright (c) 2026 Pokedex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared types and helpers for API list endpoints.
//
// # Overview
//
// It standardizes how offset-based navigation is requested via query parameters
// and how the resulting metadata is delivered in the API response envelope.
// The upstream catalog paginates with limit/offset and so does this API; the
// metadata block mirrors the upstream's count/next/previous triple, with
// next/previous carrying the neighbouring offsets as opaque string tokens.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is the number of items per page if not specified.
	DefaultLimit = 20
	// MaxLimit is the upper bound for items per page to prevent system abuse.
	MaxLimit = 50
	// DefaultOffset is the starting offset.
	DefaultOffset = 0
)

// Params holds the parsed limit and offset from a request's query string.
type Params struct {
	Limit  int
	Offset int
}

// Meta is the pagination metadata included in API list responses.
//
// Count is the total number of items: authoritative for unfiltered queries,
// a never-underestimating approximation for filtered ones. Next and Previous
// are the offsets of the adjacent pages, or null when no such page exists.
type Meta struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

// NewMeta constructs pagination metadata for a response.
//
// The previous token is present whenever offset > 0; the next token is
// controlled by the caller, who knows whether more data exists.
func NewMeta(count, limit, offset int, hasNext bool) Meta {
	meta := Meta{Count: count}

	if hasNext {
		token := strconv.Itoa(offset + limit)
		meta.Next = &token
	}

	if offset > 0 {
		previous := offset - limit
		if previous < 0 {
			previous = 0
		}
		token := strconv.Itoa(previous)
		meta.Previous = &token
	}

	return meta
}

// FromRequest parses "limit" and "offset" query parameters from an HTTP request.
//
// # Clamping
//
// Invalid, negative, or excessive values are automatically clamped to
// [DefaultLimit], [MaxLimit], or [DefaultOffset].
func FromRequest(r *http.Request) Params {
	limit := parseIntParam(r, "limit", DefaultLimit)
	offset := parseIntParam(r, "offset", DefaultOffset)

	if limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}

	if offset < 0 {
		offset = DefaultOffset
	}

	return Params{Limit: limit, Offset: offset}
}

// parseIntParam parses a single integer query parameter with a fallback default.
func parseIntParam(r *http.Request, key string, defaultVal int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultVal
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}

	return n
}
