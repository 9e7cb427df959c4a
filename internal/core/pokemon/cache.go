// Copyright (c) 2026 Pokedex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pokemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/pokedex/pkg/slice"
)

// cacheEntry is one memoized enrichment keyed by stub name.
type cacheEntry struct {
	item      ListItem
	expiresAt time.Time
}

// Cache memoizes the entity+species join behind [ListItem] for a short TTL.
//
// Enrichment never fails from the caller's perspective: when either upstream
// fetch errors, the cache returns (and stores) a degraded placeholder so a
// handful of broken records cannot take down a whole listing page. Entries
// expire lazily on read, with an explicit sweep hook the engine runs at the
// start of each aggregation call.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry

	ttl     time.Duration
	fetcher Fetcher
	logger  *slog.Logger
	now     func() time.Time
}

// NewCache constructs an enrichment cache over the given fetcher.
func NewCache(fetcher Fetcher, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
}

// GetOrEnrich returns the enriched listing item for a stub, fetching and
// memoizing it on a miss. Concurrent misses for the same stub may fetch
// redundantly; last write wins, which is harmless for idempotent reads.
func (c *Cache) GetOrEnrich(ctx context.Context, stub ListStub) ListItem {
	c.mu.Lock()
	entry, ok := c.entries[stub.Name]
	if ok && c.now().Before(entry.expiresAt) {
		c.mu.Unlock()
		return entry.item
	}
	c.mu.Unlock()

	item, err := c.enrich(ctx, stub)
	if err != nil {
		c.logger.Warn("pokemon_enrichment_degraded",
			slog.String("name", stub.Name),
			slog.String("error", err.Error()),
		)
		item = c.degraded(stub)

		// A caller abort is not an upstream verdict; memoizing it would serve
		// placeholders to healthy callers for the full TTL.
		if ctx.Err() != nil {
			return item
		}
	}

	c.mu.Lock()
	c.entries[stub.Name] = cacheEntry{item: item, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()

	return item
}

// SweepExpired removes every expired entry. The engine calls it at the start
// of each aggregation pass so the map cannot grow without bound between reads.
func (c *Cache) SweepExpired() {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for name, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, name)
		}
	}
}

// Size returns the number of cached entries, expired or not.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// enrich performs the two-fetch join producing a full listing item.
func (c *Cache) enrich(ctx context.Context, stub ListStub) (ListItem, error) {
	record, err := c.fetcher.FetchRecord(ctx, stub.URL)
	if err != nil {
		return ListItem{}, err
	}

	species, err := c.fetcher.FetchSpecies(ctx, record.Species.URL)
	if err != nil {
		return ListItem{}, err
	}

	return ListItem{
		ID:   record.ID,
		Name: record.Name,
		Types: slice.Map(record.Types, func(slot TypeSlot) string {
			return slot.Type.Name
		}),
		Generation: GenerationDisplayName(species.Generation.Name),
		Sprite:     record.Sprites.Preferred(),
	}, nil
}

// degraded builds the placeholder item for a stub whose enrichment failed.
// The id is recovered from the stub URL when possible.
func (c *Cache) degraded(stub ListStub) ListItem {
	return ListItem{
		ID:         extractIDFromURL(stub.URL),
		Name:       stub.Name,
		Types:      []string{},
		Generation: "Unknown",
		Sprite:     nil,
	}
}
