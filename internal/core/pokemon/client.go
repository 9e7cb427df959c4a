// Copyright (c) 2026 Pokedex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pokemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/taibuivan/pokedex/internal/platform/breaker"
)

// Fetcher is the upstream catalog access contract the engine depends on.
// [Client] is the production implementation; tests substitute fakes.
type Fetcher interface {
	// FetchList retrieves one page of minimal listing stubs.
	FetchList(ctx context.Context, limit, offset int) (*ListPage, error)

	// FetchRecord retrieves a full entity record by name, numeric id, or
	// absolute upstream URL.
	FetchRecord(ctx context.Context, nameOrURL string) (*Record, error)

	// FetchSpecies retrieves a species record by name or absolute URL.
	FetchSpecies(ctx context.Context, nameOrURL string) (*Species, error)

	// FetchEvolutionChain retrieves the evolution tree at the given URL.
	FetchEvolutionChain(ctx context.Context, url string) (*EvolutionNode, error)
}

// Client fetches upstream catalog resources over HTTP.
//
// Every request passes through a shared circuit breaker; when the circuit is
// open, calls fail fast with [breaker.ErrOpen] without touching the network.
// A 404 is a successful conversation with the upstream and neither trips the
// breaker nor counts against it.
type Client struct {
	baseURL    string
	httpClient *http.Client
	circuit    *breaker.Breaker
	logger     *slog.Logger
}

// NewClient constructs a catalog client rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration, circuit *breaker.Breaker, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		circuit:    circuit,
		logger:     logger,
	}
}

// FetchList retrieves one page of minimal listing stubs.
func (c *Client) FetchList(ctx context.Context, limit, offset int) (*ListPage, error) {
	url := fmt.Sprintf("%s/pokemon?limit=%d&offset=%d", c.baseURL, limit, offset)

	var page ListPage
	if err := c.getJSON(ctx, url, &page); err != nil {
		return nil, err
	}

	if err := page.validate(); err != nil {
		return nil, err
	}

	return &page, nil
}

// FetchRecord retrieves a full entity record by name, numeric id, or URL.
func (c *Client) FetchRecord(ctx context.Context, nameOrURL string) (*Record, error) {
	url := c.resolveURL("pokemon", nameOrURL)

	var record Record
	if err := c.getJSON(ctx, url, &record); err != nil {
		return nil, err
	}

	if err := record.validate(); err != nil {
		return nil, err
	}

	return &record, nil
}

// FetchSpecies retrieves a species record by name or URL.
func (c *Client) FetchSpecies(ctx context.Context, nameOrURL string) (*Species, error) {
	url := c.resolveURL("pokemon-species", nameOrURL)

	var species Species
	if err := c.getJSON(ctx, url, &species); err != nil {
		return nil, err
	}

	if err := species.validate(); err != nil {
		return nil, err
	}

	return &species, nil
}

// FetchEvolutionChain retrieves the evolution tree rooted at the given URL.
func (c *Client) FetchEvolutionChain(ctx context.Context, url string) (*EvolutionNode, error) {
	var envelope chainEnvelope
	if err := c.getJSON(ctx, url, &envelope); err != nil {
		return nil, err
	}

	if envelope.Chain.Species.Name == "" {
		return nil, &SchemaError{Resource: "evolution-chain", Reason: "missing chain root"}
	}

	return &envelope.Chain, nil
}

// resolveURL accepts either an absolute upstream URL (returned inside other
// payloads) or a bare identifier to append under the given resource path.
func (c *Client) resolveURL(resource, nameOrURL string) string {
	if strings.HasPrefix(nameOrURL, "http://") || strings.HasPrefix(nameOrURL, "https://") {
		return nameOrURL
	}
	return c.baseURL + "/" + resource + "/" + nameOrURL
}

// getJSON performs a breaker-guarded GET and decodes the body into target.
//
// Error taxonomy:
//   - [breaker.ErrOpen]: rejected without a network call.
//   - [ErrNotFound]: upstream 404 (does not count as a breaker failure).
//   - [*UpstreamError]: network failure or non-2xx status.
//   - [*SchemaError]: body is not valid JSON for the target shape.
func (c *Client) getJSON(ctx context.Context, url string, target any) error {
	var (
		body     []byte
		notFound bool
	)

	err := c.circuit.Do(func() error {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return &UpstreamError{URL: url, Err: err}
		}
		request.Header.Set("Accept", "application/json")

		response, err := c.httpClient.Do(request)
		if err != nil {
			return &UpstreamError{URL: url, Err: err}
		}
		defer response.Body.Close()

		if response.StatusCode == http.StatusNotFound {
			// Drain so the connection can be reused.
			_, _ = io.Copy(io.Discard, response.Body)
			notFound = true
			return nil
		}

		if response.StatusCode < 200 || response.StatusCode > 299 {
			_, _ = io.Copy(io.Discard, response.Body)
			return &UpstreamError{URL: url, StatusCode: response.StatusCode}
		}

		body, err = io.ReadAll(response.Body)
		if err != nil {
			return &UpstreamError{URL: url, Err: err}
		}

		return nil
	})
	if err != nil {
		if !errors.Is(err, breaker.ErrOpen) {
			c.logger.Debug("upstream_request_failed",
				slog.String("url", url),
				slog.String("error", err.Error()),
			)
		}
		return err
	}

	if notFound {
		return fmt.Errorf("%w: %s", ErrNotFound, url)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return &SchemaError{Resource: url, Reason: "invalid JSON: " + err.Error()}
	}

	return nil
}
