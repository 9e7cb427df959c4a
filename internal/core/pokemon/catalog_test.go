// Copyright (c) 2026 Pokedex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pokemon_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/taibuivan/pokedex/internal/core/pokemon"
	"github.com/taibuivan/pokedex/pkg/pointer"
	"github.com/taibuivan/pokedex/pkg/slice"
)

// fakeCatalog is an in-memory [pokemon.Fetcher] with call counting and
// per-resource fault injection, shared by the cache, resolver, and service
// tests.

const upstreamBase = "https://pokeapi.test/api/v2"

func pokemonURL(id int) string { return fmt.Sprintf("%s/pokemon/%d/", upstreamBase, id) }
func speciesURL(id int) string { return fmt.Sprintf("%s/pokemon-species/%d/", upstreamBase, id) }
func chainURL(id int) string   { return fmt.Sprintf("%s/evolution-chain/%d/", upstreamBase, id) }
func spriteURL(id int) string  { return fmt.Sprintf("https://sprites.test/%d.png", id) }

type fakeCatalog struct {
	mu sync.Mutex

	stubs   []pokemon.ListStub
	records map[string]*pokemon.Record
	species map[string]*pokemon.Species
	chains  map[string]*pokemon.EvolutionNode

	// countOverride fakes a catalog larger than the registered fixtures.
	countOverride int

	listErr    error
	recordErr  map[string]error
	speciesErr map[string]error

	listCalls      int
	lastListLimit  int
	lastListOffset int
	recordCalls    map[string]int
	speciesCalls   int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		records:     make(map[string]*pokemon.Record),
		species:     make(map[string]*pokemon.Species),
		chains:      make(map[string]*pokemon.EvolutionNode),
		recordErr:   make(map[string]error),
		speciesErr:  make(map[string]error),
		recordCalls: make(map[string]int),
	}
}

// add registers one Pokemon: listing stub, entity record (reachable by name,
// numeric id, and URL), and species record.
func (f *fakeCatalog) add(id int, name, generation string, types ...string) {
	f.stubs = append(f.stubs, pokemon.ListStub{Name: name, URL: pokemonURL(id)})

	record := &pokemon.Record{
		ID:             id,
		Name:           name,
		Height:         7,
		Weight:         69,
		BaseExperience: pointer.To(64),
		Species:        pokemon.NamedRef{Name: name, URL: speciesURL(id)},
		Sprites:        pokemon.SpriteSheet{FrontDefault: pointer.To(spriteURL(id))},
		Types: slice.Map(types, func(typeName string) pokemon.TypeSlot {
			return pokemon.TypeSlot{Type: pokemon.NamedRef{Name: typeName}}
		}),
	}
	f.records[name] = record
	f.records[strconv.Itoa(id)] = record
	f.records[pokemonURL(id)] = record

	species := &pokemon.Species{
		ID:         id,
		Name:       name,
		Generation: pokemon.NamedRef{Name: generation},
	}
	f.species[name] = species
	f.species[speciesURL(id)] = species
}

// linkChain builds a linear evolution chain over the named Pokemon, in order,
// and points each of their species at it.
func (f *fakeCatalog) linkChain(chainID int, names ...string) {
	var root pokemon.EvolutionNode
	node := &root
	for i, name := range names {
		node.Species.Name = name
		if i < len(names)-1 {
			node.EvolvesTo = []pokemon.EvolutionNode{{}}
			node = &node.EvolvesTo[0]
		}
	}

	f.chains[chainURL(chainID)] = &root
	for _, name := range names {
		f.species[name].EvolutionChain.URL = chainURL(chainID)
	}
}

// stubFor returns the registered listing stub for a name.
func (f *fakeCatalog) stubFor(name string) pokemon.ListStub {
	for _, stub := range f.stubs {
		if stub.Name == name {
			return stub
		}
	}
	panic("unregistered stub: " + name)
}

// calls returns how often the entity record for name was fetched.
func (f *fakeCatalog) calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recordCalls[name]
}

func (f *fakeCatalog) totalRecordCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.recordCalls {
		total += n
	}
	return total
}

// # Fetcher Implementation

func (f *fakeCatalog) FetchList(ctx context.Context, limit, offset int) (*pokemon.ListPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++
	f.lastListLimit = limit
	f.lastListOffset = offset

	if f.listErr != nil {
		return nil, f.listErr
	}

	count := len(f.stubs)
	if f.countOverride > 0 {
		count = f.countOverride
	}

	start := min(offset, len(f.stubs))
	end := min(start+limit, len(f.stubs))

	page := &pokemon.ListPage{
		Count:   count,
		Results: append([]pokemon.ListStub(nil), f.stubs[start:end]...),
	}
	if end < count {
		page.Next = pointer.To("next")
	}
	if offset > 0 {
		page.Previous = pointer.To("previous")
	}
	return page, nil
}

func (f *fakeCatalog) FetchRecord(ctx context.Context, nameOrURL string) (*pokemon.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	key := nameOrURL
	record, ok := f.records[nameOrURL]
	if ok {
		key = record.Name
	}
	f.recordCalls[key]++

	if err := f.recordErr[key]; err != nil {
		return nil, err
	}
	if !ok {
		return nil, pokemon.ErrNotFound
	}
	return record, nil
}

func (f *fakeCatalog) FetchSpecies(ctx context.Context, nameOrURL string) (*pokemon.Species, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.speciesCalls++

	species, ok := f.species[nameOrURL]
	if ok {
		if err := f.speciesErr[species.Name]; err != nil {
			return nil, err
		}
		return species, nil
	}
	if err := f.speciesErr[nameOrURL]; err != nil {
		return nil, err
	}
	return nil, pokemon.ErrNotFound
}

func (f *fakeCatalog) FetchEvolutionChain(ctx context.Context, url string) (*pokemon.EvolutionNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	chain, ok := f.chains[url]
	if !ok {
		return nil, pokemon.ErrNotFound
	}
	return chain, nil
}

// discardLogger silences log output in tests.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
