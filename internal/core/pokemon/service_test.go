// Copyright (c) 2026 Pokedex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pokemon_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/pokedex/internal/core/pokemon"
	"github.com/taibuivan/pokedex/internal/platform/apperr"
	"github.com/taibuivan/pokedex/internal/platform/breaker"
	"github.com/taibuivan/pokedex/internal/platform/constants"
	"github.com/taibuivan/pokedex/pkg/slice"
)

func newService(catalog *fakeCatalog) *pokemon.Service {
	logger := discardLogger()
	cache := pokemon.NewCache(catalog, time.Minute, logger)
	resolver := pokemon.NewResolver(catalog, logger)
	return pokemon.NewService(catalog, cache, resolver, logger)
}

// seedGrassLine registers the bulbasaur evolution line.
func seedGrassLine(catalog *fakeCatalog) {
	catalog.add(1, "bulbasaur", "generation-i", "grass", "poison")
	catalog.add(2, "ivysaur", "generation-i", "grass", "poison")
	catalog.add(3, "venusaur", "generation-i", "grass", "poison")
	catalog.linkChain(1, "bulbasaur", "ivysaur", "venusaur")
}

/*
TestService_List_UnfilteredPage verifies an unfiltered query maps one-to-one
onto an upstream page: exact window, authoritative count, next-page signal
taken from the upstream.
*/
func TestService_List_UnfilteredPage(t *testing.T) {
	catalog := newFakeCatalog()
	for i := 1; i <= 25; i++ {
		catalog.add(i, fmt.Sprintf("pokemon-%03d", i), "generation-i", "normal")
	}
	catalog.countOverride = 1302

	service := newService(catalog)

	page, err := service.List(context.Background(), pokemon.ListQuery{Limit: 20, Offset: 0})

	require.NoError(t, err)
	require.Len(t, page.Items, 20)
	assert.Equal(t, 1, page.Items[0].ID)
	assert.Equal(t, 20, page.Items[19].ID)
	assert.Equal(t, 1302, page.Count)
	assert.True(t, page.Authoritative)
	assert.True(t, page.HasNext)

	// Exactly one upstream page of the requested size was fetched.
	assert.Equal(t, 1, catalog.listCalls)
	assert.Equal(t, 20, catalog.lastListLimit)
	assert.Equal(t, 0, catalog.lastListOffset)
	assert.Equal(t, 20, catalog.totalRecordCalls())
}

/*
TestService_List_Validation exercises the parameter validation rules.
*/
func TestService_List_Validation(t *testing.T) {
	tests := []struct {
		name  string
		query pokemon.ListQuery
	}{
		{"zero_limit", pokemon.ListQuery{Limit: 0, Offset: 0}},
		{"limit_above_max", pokemon.ListQuery{Limit: 51, Offset: 0}},
		{"negative_offset", pokemon.ListQuery{Limit: 20, Offset: -1}},
		{"unknown_type", pokemon.ListQuery{Limit: 20, Offset: 0, Type: "lava"}},
	}

	service := newService(newFakeCatalog())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.List(context.Background(), tt.query)

			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, "VALIDATION_ERROR", appError.Code)
		})
	}
}

/*
TestService_List_TypeFilter verifies the type filter is case-insensitive,
fetches the wide type batch, and returns only matching items.
*/
func TestService_List_TypeFilter(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.add(4, "charmander", "generation-i", "fire")
	catalog.add(7, "squirtle", "generation-i", "water")
	catalog.add(37, "vulpix", "generation-i", "fire")
	catalog.add(1, "bulbasaur", "generation-i", "grass", "poison")

	service := newService(catalog)

	page, err := service.List(context.Background(), pokemon.ListQuery{
		Limit: 20, Offset: 0, Type: "Fire",
	})

	require.NoError(t, err)
	assert.Equal(t, []int{4, 37}, slice.Map(page.Items, func(item pokemon.ListItem) int {
		return item.ID
	}))
	assert.Equal(t, 2, page.Count)
	assert.False(t, page.Authoritative)
	assert.False(t, page.HasNext)

	assert.Equal(t, constants.TypeBatchSize, catalog.lastListLimit)
	assert.Equal(t, 0, catalog.lastListOffset)
}

/*
TestService_List_GenerationFilter verifies exact matching on the generation
display label over the widest batch.
*/
func TestService_List_GenerationFilter(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.add(1, "bulbasaur", "generation-i", "grass")
	catalog.add(152, "chikorita", "generation-ii", "grass")
	catalog.add(252, "treecko", "generation-iii", "grass")

	service := newService(catalog)

	page, err := service.List(context.Background(), pokemon.ListQuery{
		Limit: 20, Offset: 0, Generation: "Generation II (Johto)",
	})

	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "chikorita", page.Items[0].Name)
	assert.Equal(t, constants.GenerationBatchSize, catalog.lastListLimit)
}

/*
TestService_List_SearchExpandsFamily verifies that a search hit pulls in the
whole evolution family, deduplicated and sorted by id, even when only one
member matches the term.
*/
func TestService_List_SearchExpandsFamily(t *testing.T) {
	catalog := newFakeCatalog()
	seedGrassLine(catalog)
	catalog.add(25, "pikachu", "generation-i", "electric")

	service := newService(catalog)

	page, err := service.List(context.Background(), pokemon.ListQuery{
		Limit: 20, Offset: 0, Search: "venusaur",
	})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, slice.Map(page.Items, func(item pokemon.ListItem) int {
		return item.ID
	}))
	assert.Equal(t, constants.SearchBatchSize, catalog.lastListLimit)

	// Family members added by expansion carry full enrichment, not placeholders.
	assert.Equal(t, "Generation I (Kanto)", page.Items[0].Generation)
	assert.NotNil(t, page.Items[0].Sprite)
}

/*
TestService_List_SearchFamilyClosure verifies searching for any member of a
family yields the same id set: the expansion closes over the whole line no
matter which member matched.
*/
func TestService_List_SearchFamilyClosure(t *testing.T) {
	ids := func(items []pokemon.ListItem) []int {
		return slice.Map(items, func(item pokemon.ListItem) int { return item.ID })
	}

	for _, term := range []string{"bulbasaur", "ivysaur", "venusaur"} {
		catalog := newFakeCatalog()
		seedGrassLine(catalog)

		page, err := newService(catalog).List(context.Background(), pokemon.ListQuery{
			Limit: 20, Offset: 0, Search: term,
		})

		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, ids(page.Items), "search term %q", term)
	}
}

/*
TestService_List_SearchFoldsToEmpty verifies a punctuation-only search term
can match no catalog name: the engine returns an empty page without scanning
or enriching anything.
*/
func TestService_List_SearchFoldsToEmpty(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.add(1, "bulbasaur", "generation-i", "grass", "poison")
	catalog.add(25, "pikachu", "generation-i", "electric")

	page, err := newService(catalog).List(context.Background(), pokemon.ListQuery{
		Limit: 20, Offset: 0, Search: "!!!",
	})

	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Count)
	assert.False(t, page.HasNext)
	assert.Equal(t, 0, catalog.listCalls)
	assert.Equal(t, 0, catalog.totalRecordCalls())
}

/*
TestService_List_SearchDeduplicates verifies a term matching several family
members yields each Pokemon exactly once.
*/
func TestService_List_SearchDeduplicates(t *testing.T) {
	catalog := newFakeCatalog()
	seedGrassLine(catalog)

	service := newService(catalog)

	page, err := service.List(context.Background(), pokemon.ListQuery{
		Limit: 20, Offset: 0, Search: "saur",
	})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, slice.Map(page.Items, func(item pokemon.ListItem) int {
		return item.ID
	}))
}

/*
TestService_List_SearchFiltersBeforeEnrichment verifies non-matching stubs
are never enriched: the substring cut happens on the cheap listing stubs.
*/
func TestService_List_SearchFiltersBeforeEnrichment(t *testing.T) {
	catalog := newFakeCatalog()
	seedGrassLine(catalog)
	catalog.add(25, "pikachu", "generation-i", "electric")

	service := newService(catalog)

	_, err := service.List(context.Background(), pokemon.ListQuery{
		Limit: 20, Offset: 0, Search: "ivysaur",
	})

	require.NoError(t, err)
	assert.Equal(t, 0, catalog.calls("pikachu"))
}

/*
TestService_List_FilteredWindowAndCount verifies window slicing and the
never-underestimating count over a filtered result set.
*/
func TestService_List_FilteredWindowAndCount(t *testing.T) {
	catalog := newFakeCatalog()
	for i := 1; i <= 12; i++ {
		catalog.add(i, fmt.Sprintf("ember-%03d", i), "generation-i", "fire")
	}
	catalog.add(100, "voltorb", "generation-i", "electric")

	service := newService(catalog)

	// Middle page: full window, so the count assumes at least one more page.
	page, err := service.List(context.Background(), pokemon.ListQuery{
		Limit: 5, Offset: 5, Type: "fire",
	})
	require.NoError(t, err)
	assert.Equal(t, []int{6, 7, 8, 9, 10}, slice.Map(page.Items, func(item pokemon.ListItem) int {
		return item.ID
	}))
	assert.Equal(t, 15, page.Count)
	assert.True(t, page.HasNext)

	// Final page: partial window, so the count settles on the real total.
	page, err = service.List(context.Background(), pokemon.ListQuery{
		Limit: 5, Offset: 10, Type: "fire",
	})
	require.NoError(t, err)
	assert.Equal(t, []int{11, 12}, slice.Map(page.Items, func(item pokemon.ListItem) int {
		return item.ID
	}))
	assert.Equal(t, 12, page.Count)
	assert.False(t, page.HasNext)

	// Offset beyond the result set yields an empty page, not an error.
	page, err = service.List(context.Background(), pokemon.ListQuery{
		Limit: 5, Offset: 40, Type: "fire",
	})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

/*
TestService_List_UpstreamFailures verifies error mapping: open circuit maps
to 503, any other upstream failure to 502.
*/
func TestService_List_UpstreamFailures(t *testing.T) {
	t.Run("upstream_error", func(t *testing.T) {
		catalog := newFakeCatalog()
		catalog.listErr = &pokemon.UpstreamError{URL: "x", StatusCode: 500}

		_, err := newService(catalog).List(context.Background(), pokemon.ListQuery{Limit: 20})

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "UPSTREAM_ERROR", appError.Code)
		assert.Equal(t, 502, appError.HTTPStatus)
	})

	t.Run("circuit_open", func(t *testing.T) {
		catalog := newFakeCatalog()
		catalog.listErr = breaker.ErrOpen

		_, err := newService(catalog).List(context.Background(), pokemon.ListQuery{Limit: 20})

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "SERVICE_UNAVAILABLE", appError.Code)
		assert.Equal(t, 503, appError.HTTPStatus)
	})
}

/*
TestService_GetDetailed_Success verifies the full detail aggregation: display
name folding, generation label, sprite preference, and the sorted evolution
family.
*/
func TestService_GetDetailed_Success(t *testing.T) {
	catalog := newFakeCatalog()
	seedGrassLine(catalog)

	service := newService(catalog)

	// Display-name casing folds down to the upstream identifier.
	detailed, err := service.GetDetailed(context.Background(), "Bulbasaur")

	require.NoError(t, err)
	assert.Equal(t, 1, detailed.ID)
	assert.Equal(t, "bulbasaur", detailed.Name)
	assert.Equal(t, []string{"grass", "poison"}, detailed.Types)
	assert.Equal(t, "Generation I (Kanto)", detailed.Generation)
	require.NotNil(t, detailed.Sprite)
	assert.Equal(t, spriteURL(1), *detailed.Sprite)

	require.Len(t, detailed.Evolutions, 3)
	assert.Equal(t, []int{1, 2, 3}, slice.Map(detailed.Evolutions, func(item pokemon.EvolutionItem) int {
		return item.ID
	}))
}

/*
TestService_GetDetailed_NumericID verifies lookups by numeric identifier.
*/
func TestService_GetDetailed_NumericID(t *testing.T) {
	catalog := newFakeCatalog()
	seedGrassLine(catalog)

	detailed, err := newService(catalog).GetDetailed(context.Background(), "3")

	require.NoError(t, err)
	assert.Equal(t, "venusaur", detailed.Name)
}

/*
TestService_GetDetailed_Errors covers not-found, empty identifier, and
upstream failure mapping on the detail path.
*/
func TestService_GetDetailed_Errors(t *testing.T) {
	t.Run("not_found", func(t *testing.T) {
		catalog := newFakeCatalog()
		seedGrassLine(catalog)

		_, err := newService(catalog).GetDetailed(context.Background(), "missingno")

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "NOT_FOUND", appError.Code)
		assert.Equal(t, 404, appError.HTTPStatus)
	})

	t.Run("identifier_normalizes_to_empty", func(t *testing.T) {
		_, err := newService(newFakeCatalog()).GetDetailed(context.Background(), "!!!")

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	})

	t.Run("circuit_open", func(t *testing.T) {
		catalog := newFakeCatalog()
		seedGrassLine(catalog)
		catalog.recordErr["bulbasaur"] = breaker.ErrOpen

		_, err := newService(catalog).GetDetailed(context.Background(), "bulbasaur")

		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "SERVICE_UNAVAILABLE", appError.Code)
	})
}

/*
TestService_GetDetailed_EvolutionDegrades verifies a broken evolution chain
degrades to an empty family instead of failing the detail request.
*/
func TestService_GetDetailed_EvolutionDegrades(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.add(132, "ditto", "generation-i", "normal")

	detailed, err := newService(catalog).GetDetailed(context.Background(), "ditto")

	require.NoError(t, err)
	assert.Empty(t, detailed.Evolutions)
}
