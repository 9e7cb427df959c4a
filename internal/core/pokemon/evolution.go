// Copyright (c) 2026 Pokedex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pokemon

import (
	"context"
	"log/slog"
	"sort"

	"github.com/taibuivan/pokedex/internal/platform/constants"
)

// Resolver walks evolution chains into flat family listings.
//
// Resolution is best-effort everywhere: any upstream failure yields an empty
// (or partial) family rather than an error, because evolution data decorates
// responses and never gates them.
type Resolver struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// NewResolver constructs an evolution resolver over the given fetcher.
func NewResolver(fetcher Fetcher, logger *slog.Logger) *Resolver {
	return &Resolver{fetcher: fetcher, logger: logger}
}

// ResolveNames returns every species name in the evolution family reachable
// from the given species URL, in pre-order (base form first, then each branch
// depth-first in upstream order). It returns nil when the chain cannot be
// resolved.
func (r *Resolver) ResolveNames(ctx context.Context, speciesURL string) []string {
	species, err := r.fetcher.FetchSpecies(ctx, speciesURL)
	if err != nil {
		r.logger.Warn("evolution_species_fetch_failed",
			slog.String("url", speciesURL),
			slog.String("error", err.Error()),
		)
		return nil
	}

	if species.EvolutionChain.URL == "" {
		return nil
	}

	chain, err := r.fetcher.FetchEvolutionChain(ctx, species.EvolutionChain.URL)
	if err != nil {
		r.logger.Warn("evolution_chain_fetch_failed",
			slog.String("url", species.EvolutionChain.URL),
			slog.String("error", err.Error()),
		)
		return nil
	}

	var names []string
	collectNames(chain, 0, &names)
	return names
}

// ResolveDetailed resolves the family for the detail projection: each member
// fetched for its id and sprite, failures skipped, result sorted by id.
func (r *Resolver) ResolveDetailed(ctx context.Context, speciesURL string) []EvolutionItem {
	names := r.ResolveNames(ctx, speciesURL)
	if len(names) == 0 {
		return []EvolutionItem{}
	}

	items := make([]EvolutionItem, 0, len(names))
	for _, name := range names {
		record, err := r.fetcher.FetchRecord(ctx, name)
		if err != nil {
			r.logger.Warn("evolution_member_fetch_failed",
				slog.String("name", name),
				slog.String("error", err.Error()),
			)
			continue
		}

		items = append(items, EvolutionItem{
			ID:     record.ID,
			Name:   record.Name,
			Sprite: record.Sprites.Preferred(),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})

	return items
}

// collectNames walks the chain tree in pre-order. Depth is bounded so a
// malformed (cyclic or absurdly deep) upstream payload cannot recurse forever;
// real chains are at most three levels.
func collectNames(node *EvolutionNode, depth int, names *[]string) {
	if depth > constants.MaxEvolutionDepth {
		return
	}

	if node.Species.Name != "" {
		*names = append(*names, node.Species.Name)
	}

	for i := range node.EvolvesTo {
		collectNames(&node.EvolvesTo[i], depth+1, names)
	}
}
