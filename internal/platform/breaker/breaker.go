// Copyright (c) 2026 Pokedex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package breaker wraps sony/gobreaker to protect the upstream catalog from
request storms and the API from cascading upstream failures.

States:

  - Closed: normal operation, requests pass through.
  - Open: after consecutive failures, requests are rejected immediately.
  - Half-Open: after a cooldown, a limited number of probe requests are allowed.

The breaker never retries — it only fails fast. Degradation of individual
enrichment items is handled at the domain layer, not here.
*/
package breaker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// ErrOpen is returned when the circuit is open and the call was rejected
// without reaching the upstream.
var ErrOpen = errors.New("breaker: circuit is open")

// Settings tunes the trip and recovery behavior of a [Breaker].
type Settings struct {
	// Name identifies the breaker in logs.
	Name string

	// MaxFailures is the number of consecutive failures required to trip.
	MaxFailures uint32

	// Cooldown is how long the circuit stays open before probing again.
	Cooldown time.Duration

	// HalfOpenProbes is how many requests may pass while half-open.
	HalfOpenProbes uint32
}

// DefaultSettings returns the settings used for the upstream catalog client.
func DefaultSettings() Settings {
	return Settings{
		Name:           "pokeapi",
		MaxFailures:    5,
		Cooldown:       30 * time.Second,
		HalfOpenProbes: 2,
	}
}

// Breaker is a thin, logging circuit breaker around [gobreaker.CircuitBreaker].
type Breaker struct {
	inner *gobreaker.CircuitBreaker
}

// New constructs a [Breaker] with the given settings and logger.
func New(settings Settings, logger *slog.Logger) *Breaker {
	inner := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.HalfOpenProbes,
		Timeout:     settings.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.MaxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("breaker_state_changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return &Breaker{inner: inner}
}

// Do runs fn through the circuit breaker.
//
// If the circuit is open, it returns [ErrOpen] immediately without invoking fn.
// Otherwise it returns fn's error verbatim so callers can keep their own
// error taxonomy.
func (b *Breaker) Do(fn func() error) error {
	_, err := b.inner.Execute(func() (interface{}, error) {
		return nil, fn()
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrOpen
	}

	return err
}

// State returns the current breaker state as a string ("closed", "open", "half-open").
func (b *Breaker) State() string {
	return b.inner.State().String()
}
