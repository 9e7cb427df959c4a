// Copyright (c) 2026 Pokedex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package pokemon implements the catalog aggregation and search engine.

The upstream catalog (PokeAPI) offers no filtering or full-text search, so this
package fans out to it, joins entity and species records per Pokemon, builds
in-memory evolution families, and fabricates pagination metadata over result
sets whose true size is unknown until fully fetched.

Core Responsibility:

  - Client: fetches and shape-checks individual upstream resources.
  - Cache: short-lived memoization of the entity+species join.
  - Resolver: walks evolution chains into flat family listings.
  - Service: batch sizing, bounded-concurrency enrichment, filtering,
    name search with family expansion, approximate pagination.

This package acts as the source of truth for all catalog-related data models.
*/
package pokemon

import (
	"regexp"

	"github.com/taibuivan/pokedex/pkg/convert"
)

// # Upstream Shapes
//
// These mirror the upstream JSON exactly; they are decoded, shape-checked,
// projected, and discarded. Only the projections below them leave the package.

// NamedRef is the upstream's ubiquitous {name, url} reference pair.
type NamedRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ListStub is one minimal listing reference from the upstream list endpoint.
type ListStub struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ListPage is the upstream's paginated listing envelope.
type ListPage struct {
	Count    int        `json:"count"`
	Next     *string    `json:"next"`
	Previous *string    `json:"previous"`
	Results  []ListStub `json:"results"`
}

// Record is the full upstream entity record for a single Pokemon.
type Record struct {
	ID             int           `json:"id"`
	Name           string        `json:"name"`
	Height         int           `json:"height"`
	Weight         int           `json:"weight"`
	BaseExperience *int          `json:"base_experience"`
	Species        NamedRef      `json:"species"`
	Sprites        SpriteSheet   `json:"sprites"`
	Types          []TypeSlot    `json:"types"`
	Stats          []StatSlot    `json:"stats"`
	Abilities      []AbilitySlot `json:"abilities"`
}

// SpriteSheet is the upstream sprite URL collection for a [Record].
type SpriteSheet struct {
	FrontDefault *string `json:"front_default"`
	FrontShiny   *string `json:"front_shiny"`
	BackDefault  *string `json:"back_default"`
	BackShiny    *string `json:"back_shiny"`
	Other        *struct {
		OfficialArtwork struct {
			FrontDefault *string `json:"front_default"`
		} `json:"official-artwork"`
	} `json:"other"`
}

// Preferred returns the display sprite: official artwork when present,
// otherwise the default front sprite, otherwise nil.
func (s SpriteSheet) Preferred() *string {
	if s.Other != nil && s.Other.OfficialArtwork.FrontDefault != nil {
		return s.Other.OfficialArtwork.FrontDefault
	}
	return s.FrontDefault
}

// TypeSlot is one entry of a record's ordered type list.
type TypeSlot struct {
	Type NamedRef `json:"type"`
}

// StatSlot is one entry of a record's ordered stat list.
type StatSlot struct {
	BaseStat int `json:"base_stat"`
	Stat     struct {
		Name string `json:"name"`
	} `json:"stat"`
}

// AbilitySlot is one entry of a record's ordered ability list.
type AbilitySlot struct {
	Ability  NamedRef `json:"ability"`
	IsHidden bool     `json:"is_hidden"`
}

// Species links an entity to its generation and evolution chain.
type Species struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	Generation     NamedRef `json:"generation"`
	EvolutionChain struct {
		URL string `json:"url"`
	} `json:"evolution_chain"`
}

// EvolutionNode mirrors the upstream evolution-chain tree. It is traversed,
// never mutated or persisted.
type EvolutionNode struct {
	Species struct {
		Name string `json:"name"`
	} `json:"species"`
	EvolvesTo []EvolutionNode `json:"evolves_to"`
}

// chainEnvelope is the upstream wrapper around the evolution tree root.
type chainEnvelope struct {
	Chain EvolutionNode `json:"chain"`
}

// # Shape Validation
//
// The upstream is external and unauthenticated; payloads that decode but do
// not carry the minimum viable shape are rejected as schema mismatches.

// validate reports whether the record carries a usable shape.
func (r *Record) validate() error {
	if r.ID <= 0 {
		return &SchemaError{Resource: "pokemon", Reason: "missing or non-positive id"}
	}
	if r.Name == "" {
		return &SchemaError{Resource: "pokemon", Reason: "missing name"}
	}
	if r.Species.URL == "" {
		return &SchemaError{Resource: "pokemon", Reason: "missing species reference"}
	}
	return nil
}

// validate reports whether the species carries a usable shape.
func (s *Species) validate() error {
	if s.Name == "" {
		return &SchemaError{Resource: "pokemon-species", Reason: "missing name"}
	}
	if s.Generation.Name == "" {
		return &SchemaError{Resource: "pokemon-species", Reason: "missing generation reference"}
	}
	return nil
}

// validate reports whether the listing page carries a usable shape.
func (p *ListPage) validate() error {
	if p.Count < 0 {
		return &SchemaError{Resource: "pokemon-list", Reason: "negative count"}
	}
	for _, stub := range p.Results {
		if stub.Name == "" || stub.URL == "" {
			return &SchemaError{Resource: "pokemon-list", Reason: "listing entry missing name or url"}
		}
	}
	return nil
}

// # API Projections

// ListItem is the enriched listing projection: the entity+species join that
// the cache stores and list responses return.
type ListItem struct {
	ID         int      `json:"id"`
	Name       string   `json:"name"`
	Types      []string `json:"types"`
	Generation string   `json:"generation"`
	Sprite     *string  `json:"sprite"`
}

// EvolutionItem is the detail-page projection of one evolution family member.
type EvolutionItem struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Sprite *string `json:"sprite"`
}

// SpriteBundle is the normalized sprite set on the detail projection.
type SpriteBundle struct {
	FrontDefault    *string `json:"front_default"`
	FrontShiny      *string `json:"front_shiny"`
	BackDefault     *string `json:"back_default"`
	BackShiny       *string `json:"back_shiny"`
	OfficialArtwork *string `json:"official_artwork"`
}

// Stat is a named base-stat value on the detail projection.
type Stat struct {
	Name     string `json:"name"`
	BaseStat int    `json:"base_stat"`
}

// Ability is a named ability flag pair on the detail projection.
type Ability struct {
	Name     string `json:"name"`
	IsHidden bool   `json:"is_hidden"`
}

// Detailed is the full detail-page projection: entity + species + evolution
// family + normalized sprites.
type Detailed struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	Height         int             `json:"height"`
	Weight         int             `json:"weight"`
	BaseExperience *int            `json:"base_experience"`
	Types          []string        `json:"types"`
	Generation     string          `json:"generation"`
	Sprite         *string         `json:"sprite"`
	Sprites        SpriteBundle    `json:"sprites"`
	Stats          []Stat          `json:"stats"`
	Abilities      []Ability       `json:"abilities"`
	Evolutions     []EvolutionItem `json:"evolutions"`
}

// FilterOption is a selectable filter value exposed by the reference endpoints.
type FilterOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// # Generations

// generationLabels maps upstream generation identifiers to display labels.
var generationLabels = map[string]string{
	"generation-i":    "Generation I (Kanto)",
	"generation-ii":   "Generation II (Johto)",
	"generation-iii":  "Generation III (Hoenn)",
	"generation-iv":   "Generation IV (Sinnoh)",
	"generation-v":    "Generation V (Unova)",
	"generation-vi":   "Generation VI (Kalos)",
	"generation-vii":  "Generation VII (Alola)",
	"generation-viii": "Generation VIII (Galar)",
	"generation-ix":   "Generation IX (Paldea)",
}

// generationOrder keeps the reference endpoint output stable.
var generationOrder = []string{
	"generation-i", "generation-ii", "generation-iii", "generation-iv",
	"generation-v", "generation-vi", "generation-vii", "generation-viii",
	"generation-ix",
}

// GenerationDisplayName resolves an upstream generation identifier to its
// display label. Unknown identifiers pass through unchanged so that new
// generations appear verbatim rather than vanishing.
func GenerationDisplayName(generationName string) string {
	if label, ok := generationLabels[generationName]; ok {
		return label
	}
	return generationName
}

// GenerationOptions returns the selectable generation filter values.
func GenerationOptions() []FilterOption {
	options := make([]FilterOption, 0, len(generationOrder))
	for i, name := range generationOrder {
		options = append(options, FilterOption{
			ID:    "gen" + convert.FromInt(i+1),
			Name:  generationLabels[name],
			Value: generationLabels[name],
		})
	}
	return options
}

// # Types

// typeNames is the closed set of type tokens the upstream uses.
var typeNames = []string{
	"normal", "fire", "water", "electric", "grass", "ice", "fighting",
	"poison", "ground", "flying", "psychic", "bug", "rock", "ghost",
	"dragon", "dark", "steel", "fairy",
}

// TypeOptions returns the selectable type filter values.
func TypeOptions() []FilterOption {
	options := make([]FilterOption, 0, len(typeNames))
	for _, name := range typeNames {
		options = append(options, FilterOption{
			ID:    name,
			Name:  titleCase(name),
			Value: name,
		})
	}
	return options
}

// titleCase uppercases the first ASCII letter of a type token.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}

// # URL Helpers

// trailingIDPattern matches the numeric identifier segment terminating every
// upstream resource URL (e.g. ".../pokemon/25/").
var trailingIDPattern = regexp.MustCompile(`/(\d+)/$`)

// extractIDFromURL pulls the trailing numeric identifier out of an upstream
// resource URL. It returns 0 when the URL carries no trailing id — the
// degraded-item path tolerates the zero value.
func extractIDFromURL(url string) int {
	matches := trailingIDPattern.FindStringSubmatch(url)
	if matches == nil {
		return 0
	}
	return convert.ToInt(matches[1])
}
