// Copyright (c) 2026 Pokedex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pokemon

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/pokedex/internal/platform/respond"
	"github.com/taibuivan/pokedex/pkg/pagination"
)

// Handler exposes the catalog over HTTP.
type Handler struct {
	service *Service
}

// NewHandler constructs the catalog HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for the /pokemon resource.
func (h *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", h.list)
	router.Get("/{nameOrID}", h.getDetailed)

	return router
}

// ReferenceRoutes returns the router for the static filter-value endpoints.
func (h *Handler) ReferenceRoutes() chi.Router {
	router := chi.NewRouter()

	router.Get("/types", h.listTypes)
	router.Get("/generations", h.listGenerations)

	return router
}

// list handles GET /api/v1/pokemon.
//
// Query parameters: limit, offset (clamped), type, generation, search.
func (h *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	queryValues := request.URL.Query()

	query := ListQuery{
		Limit:      params.Limit,
		Offset:     params.Offset,
		Type:       strings.TrimSpace(queryValues.Get("type")),
		Generation: strings.TrimSpace(queryValues.Get("generation")),
		Search:     strings.TrimSpace(queryValues.Get("search")),
	}

	page, err := h.service.List(request.Context(), query)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	metadata := pagination.NewMeta(page.Count, query.Limit, query.Offset, page.HasNext)
	respond.Paginated(writer, page.Items, metadata)
}

// getDetailed handles GET /api/v1/pokemon/{nameOrID}.
func (h *Handler) getDetailed(writer http.ResponseWriter, request *http.Request) {
	nameOrID := chi.URLParam(request, "nameOrID")

	detailed, err := h.service.GetDetailed(request.Context(), nameOrID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, detailed)
}

// listTypes handles GET /api/v1/types.
func (h *Handler) listTypes(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, TypeOptions())
}

// listGenerations handles GET /api/v1/generations.
func (h *Handler) listGenerations(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, GenerationOptions())
}
