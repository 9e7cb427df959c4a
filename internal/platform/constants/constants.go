// Copyright (c) 2026 Pokedex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and the upstream aggregation tuning
knobs that are shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Aggregation: Upstream batch sizes and enrichment concurrency.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "pokedex-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	//
	// Filtered list queries fan out to hundreds of upstream fetches on a cold
	// cache, so writes are given more headroom than a database-backed API.
	DefaultWriteTimeout = 60 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 60 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Aggregation Tuning

// The upstream catalog offers no server-side filtering or search, so filtered
// queries fetch a wide slice of the catalog and filter in memory. The batch
// sizes below trade result completeness against upstream load; none of them
// approaches the full catalog size (thousands of entries).
const (
	// SearchBatchSize is how many listing stubs are scanned for a name search.
	SearchBatchSize = 400

	// TypeBatchSize is how many stubs are fetched when only a type filter is set.
	TypeBatchSize = 600

	// GenerationBatchSize is how many stubs are fetched when a generation
	// filter is set. Generations are not encoded in the listing at all, so
	// this is the widest scan.
	GenerationBatchSize = 1000

	// EnrichConcurrency caps in-flight upstream requests during enrichment.
	EnrichConcurrency = 15
)

// # Detail Cache

const (
	// DetailCacheTTL is how long an enriched listing entry stays valid.
	DetailCacheTTL = 5 * time.Minute
)

// # Evolution Traversal

const (
	// MaxEvolutionDepth bounds the recursive chain walk. Real chains have at
	// most three stages; the bound protects against malformed upstream data.
	MaxEvolutionDepth = 16
)

// # HTTP Header Identifiers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)
