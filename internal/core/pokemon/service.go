// Copyright (c) 2026 Pokedex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pokemon

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/pokedex/internal/platform/apperr"
	"github.com/taibuivan/pokedex/internal/platform/breaker"
	"github.com/taibuivan/pokedex/internal/platform/constants"
	"github.com/taibuivan/pokedex/internal/platform/validate"
	"github.com/taibuivan/pokedex/pkg/pagination"
	"github.com/taibuivan/pokedex/pkg/slice"
	"github.com/taibuivan/pokedex/pkg/slug"
)

// ListQuery is the full set of listing parameters after HTTP parsing.
type ListQuery struct {
	Limit  int
	Offset int

	// Type filters by type token, case-insensitive (e.g. "fire").
	Type string

	// Generation filters by display label, exact (e.g. "Generation I (Kanto)").
	Generation string

	// Search filters by normalized substring match on the name, then expands
	// every match to its full evolution family.
	Search string
}

// filtered reports whether any in-memory filter is active. Filtered queries
// scan a wide upstream batch; unfiltered ones map directly to upstream pages.
func (q ListQuery) filtered() bool {
	return q.Type != "" || q.Generation != "" || q.Search != ""
}

// Page is one page of listing results with enough context for the transport
// layer to build pagination metadata.
type Page struct {
	Items []ListItem

	// Count is the total result count: authoritative for unfiltered queries,
	// a never-underestimating approximation for filtered ones.
	Count int

	// Authoritative reports whether Count came from the upstream catalog
	// verbatim or was approximated over a partial scan. The wire format
	// exposes only the integer; the tag keeps the estimation policy testable.
	Authoritative bool

	// HasNext reports whether a subsequent page may exist.
	HasNext bool
}

// Service orchestrates listing, filtering, search and detail aggregation over
// the upstream catalog.
type Service struct {
	fetcher  Fetcher
	cache    *Cache
	resolver *Resolver
	logger   *slog.Logger
}

// NewService constructs the aggregation service.
func NewService(fetcher Fetcher, cache *Cache, resolver *Resolver, logger *slog.Logger) *Service {
	return &Service{
		fetcher:  fetcher,
		cache:    cache,
		resolver: resolver,
		logger:   logger,
	}
}

/*
List returns one page of enriched listing items.

Unfiltered queries translate directly into a single upstream page of the
requested size. Filtered queries fetch a wide batch (sized by which filter is
active), enrich it with bounded concurrency, filter in memory, optionally
expand search matches to their evolution families, and then slice the
requested window out of the combined result.

Parameters:
  - ctx: Request-scoped context; cancellation aborts in-flight upstream calls.
  - query: Parsed listing parameters.

Returns:
  - *Page: The requested window plus count/next-page context.
  - error: An [apperr.AppError] (validation, upstream failure, or open circuit).
*/
func (service *Service) List(ctx context.Context, query ListQuery) (*Page, error) {
	// 1. Validate query parameters
	validator := &validate.Validator{}
	validator.
		Range("limit", query.Limit, 1, pagination.MaxLimit).
		Min("offset", query.Offset, 0).
		MaxLen("search", query.Search, 100)
	if query.Type != "" {
		validator.OneOf("type", strings.ToLower(query.Type), typeNames...)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// 2. Fold the search term to the catalog's kebab-case form. A non-empty
	// term that folds to nothing (pure punctuation) can match no name, so the
	// scan is skipped entirely.
	searchTerm := slug.From(query.Search)
	if query.Search != "" && searchTerm == "" {
		return &Page{Items: []ListItem{}}, nil
	}

	// 3. Evict stale cache entries before a potentially large write burst
	service.cache.SweepExpired()

	// 4. Size the upstream fetch to the active filter
	batchLimit, batchOffset := query.Limit, query.Offset
	switch {
	case query.Search != "":
		batchLimit, batchOffset = constants.SearchBatchSize, 0
	case query.Generation != "":
		batchLimit, batchOffset = constants.GenerationBatchSize, 0
	case query.Type != "":
		batchLimit, batchOffset = constants.TypeBatchSize, 0
	}

	listPage, err := service.fetcher.FetchList(ctx, batchLimit, batchOffset)
	if err != nil {
		service.logger.Error("pokemon_list_fetch_failed",
			slog.String("error", err.Error()),
			slog.Bool("has_search", query.Search != ""),
			slog.String("type", query.Type),
		)
		return nil, service.upstreamFailure("Failed to fetch Pokemon list", err)
	}

	// 5. Narrow by search term before paying the enrichment cost
	stubs := listPage.Results
	if searchTerm != "" {
		stubs = slice.Filter(stubs, func(stub ListStub) bool {
			return strings.Contains(stub.Name, searchTerm)
		})
	}

	// 6. Enrich, restore deterministic order, and apply the in-memory filters
	items := service.enrichAll(ctx, stubs)
	sortByID(items)
	items = applyFilters(items, query)

	// 7. Expand search matches to their evolution families
	if searchTerm != "" {
		items = service.expandFamilies(ctx, items)
	}

	// 8. Unfiltered queries are already exactly one page
	if !query.filtered() {
		return &Page{
			Items:         items,
			Count:         listPage.Count,
			Authoritative: true,
			HasNext:       listPage.Next != nil,
		}, nil
	}

	// 9. Slice the requested window out of the full filtered result
	sortByID(items)
	total := len(items)

	start := min(query.Offset, total)
	end := min(start+query.Limit, total)
	window := items[start:end]
	returned := len(window)

	// The true filtered total is unknowable without scanning the entire
	// catalog, so the count never underestimates: when the window came back
	// full, assume at least one more page exists.
	count := total
	if estimate := query.Offset + returned + boundaryBonus(returned, query.Limit); estimate > count {
		count = estimate
	}

	hasNext := total > end ||
		(returned == query.Limit && len(listPage.Results) == batchLimit)

	return &Page{Items: window, Count: count, HasNext: hasNext}, nil
}

/*
GetDetailed returns the full detail projection for a single Pokemon.

The identifier is folded to the upstream's kebab-case form first, so display
names ("Mr. Mime") and numeric ids both resolve. Evolution data is resolved
best-effort: its failure degrades the response to an empty family rather than
failing the request.

Parameters:
  - ctx: Request-scoped context.
  - nameOrID: Pokemon name (any casing/punctuation) or numeric id.

Returns:
  - *Detailed: The aggregated detail projection.
  - error: An [apperr.AppError]; NOT_FOUND when the upstream has no such entry.
*/
func (service *Service) GetDetailed(ctx context.Context, nameOrID string) (*Detailed, error) {
	// 1. Normalize and validate the identifier
	normalized := slug.From(nameOrID)

	validator := &validate.Validator{}
	if err := validator.Required("name", normalized).MaxLen("name", normalized, 100).Err(); err != nil {
		return nil, err
	}

	service.cache.SweepExpired()

	// 2. Entity record
	record, err := service.fetcher.FetchRecord(ctx, normalized)
	if err != nil {
		if IsNotFound(err) {
			return nil, apperr.NotFound("Pokemon")
		}
		service.logger.Error("pokemon_detail_fetch_failed",
			slog.String("name", truncate(normalized, 50)),
			slog.String("error", err.Error()),
		)
		return nil, service.upstreamFailure("Failed to fetch Pokemon with details", err)
	}

	// 3. Species record (generation)
	species, err := service.fetcher.FetchSpecies(ctx, record.Species.URL)
	if err != nil {
		service.logger.Error("pokemon_species_fetch_failed",
			slog.String("name", truncate(normalized, 50)),
			slog.String("error", err.Error()),
		)
		return nil, service.upstreamFailure("Failed to fetch Pokemon with details", err)
	}

	// 4. Evolution family, best-effort
	evolutions := service.resolver.ResolveDetailed(ctx, record.Species.URL)

	// 5. Project
	var artwork *string
	if record.Sprites.Other != nil {
		artwork = record.Sprites.Other.OfficialArtwork.FrontDefault
	}

	return &Detailed{
		ID:             record.ID,
		Name:           record.Name,
		Height:         record.Height,
		Weight:         record.Weight,
		BaseExperience: record.BaseExperience,
		Types: slice.Map(record.Types, func(slot TypeSlot) string {
			return slot.Type.Name
		}),
		Generation: GenerationDisplayName(species.Generation.Name),
		Sprite:     record.Sprites.Preferred(),
		Sprites: SpriteBundle{
			FrontDefault:    record.Sprites.FrontDefault,
			FrontShiny:      record.Sprites.FrontShiny,
			BackDefault:     record.Sprites.BackDefault,
			BackShiny:       record.Sprites.BackShiny,
			OfficialArtwork: artwork,
		},
		Stats: slice.Map(record.Stats, func(slot StatSlot) Stat {
			return Stat{Name: slot.Stat.Name, BaseStat: slot.BaseStat}
		}),
		Abilities: slice.Map(record.Abilities, func(slot AbilitySlot) Ability {
			return Ability{Name: slot.Ability.Name, IsHidden: slot.IsHidden}
		}),
		Evolutions: evolutions,
	}, nil
}

// enrichAll resolves every stub through the cache with bounded concurrency.
// Enrichment cannot fail (misses degrade), so the group error is ignored.
func (service *Service) enrichAll(ctx context.Context, stubs []ListStub) []ListItem {
	items := make([]ListItem, len(stubs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(constants.EnrichConcurrency)

	for i, stub := range stubs {
		i, stub := i, stub
		group.Go(func() error {
			items[i] = service.cache.GetOrEnrich(groupCtx, stub)
			return nil
		})
	}
	_ = group.Wait()

	return items
}

/*
expandFamilies widens a set of search matches to their full evolution
families: searching "char" returns charmander's whole line, not just the
names containing the term.

Family members already present are kept as-is; missing ones are fetched
individually (entity+species join) and skipped on failure. The result is
deduplicated by id.
*/
func (service *Service) expandFamilies(ctx context.Context, matches []ListItem) []ListItem {
	if len(matches) == 0 {
		return matches
	}

	// 1. Collect the union of family names across all matches
	var (
		mu     sync.Mutex
		family = make(map[string]struct{})
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(constants.EnrichConcurrency)

	for _, match := range matches {
		match := match
		group.Go(func() error {
			record, err := service.fetcher.FetchRecord(groupCtx, match.Name)
			if err != nil {
				service.logger.Warn("family_record_fetch_failed",
					slog.String("name", match.Name),
					slog.String("error", err.Error()),
				)
				return nil
			}

			names := service.resolver.ResolveNames(groupCtx, record.Species.URL)

			mu.Lock()
			for _, name := range names {
				family[name] = struct{}{}
			}
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	// 2. Determine which family members the match set is missing
	present := make(map[string]struct{}, len(matches))
	for _, match := range matches {
		present[match.Name] = struct{}{}
	}

	var missing []string
	for name := range family {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}

	// 3. Fetch missing members individually
	extra := make([]ListItem, 0, len(missing))

	group, groupCtx = errgroup.WithContext(ctx)
	group.SetLimit(constants.EnrichConcurrency)

	for _, name := range missing {
		name := name
		group.Go(func() error {
			record, err := service.fetcher.FetchRecord(groupCtx, name)
			if err != nil {
				return nil
			}
			species, err := service.fetcher.FetchSpecies(groupCtx, record.Species.URL)
			if err != nil {
				return nil
			}

			item := ListItem{
				ID:   record.ID,
				Name: record.Name,
				Types: slice.Map(record.Types, func(slot TypeSlot) string {
					return slot.Type.Name
				}),
				Generation: GenerationDisplayName(species.Generation.Name),
				Sprite:     record.Sprites.Preferred(),
			}

			mu.Lock()
			extra = append(extra, item)
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()

	// 4. Merge and deduplicate by id
	merged := make([]ListItem, 0, len(matches)+len(extra))
	seen := make(map[int]struct{}, len(matches)+len(extra))

	for _, item := range append(matches, extra...) {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		merged = append(merged, item)
	}

	return merged
}

// upstreamFailure maps a non-404 upstream error to its client-facing form.
func (service *Service) upstreamFailure(message string, err error) error {
	if errors.Is(err, breaker.ErrOpen) {
		return apperr.ServiceUnavailable("Upstream catalog temporarily unavailable")
	}
	return apperr.BadGateway(message, err)
}

// applyFilters narrows items by the type and generation filters.
func applyFilters(items []ListItem, query ListQuery) []ListItem {
	if query.Type != "" {
		items = slice.Filter(items, func(item ListItem) bool {
			for _, typeName := range item.Types {
				if strings.EqualFold(typeName, query.Type) {
					return true
				}
			}
			return false
		})
	}

	if query.Generation != "" {
		items = slice.Filter(items, func(item ListItem) bool {
			return item.Generation == query.Generation
		})
	}

	return items
}

// sortByID orders items ascending by id.
func sortByID(items []ListItem) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})
}

// boundaryBonus adds one presumed extra page when the returned window is
// exactly full, so the count estimate never underestimates.
func boundaryBonus(returned, limit int) int {
	if returned == limit {
		return limit
	}
	return 0
}

// truncate caps a string for log output.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
