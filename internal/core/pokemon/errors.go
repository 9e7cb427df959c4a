// Copyright (c) 2026 Pokedex. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pokemon

import (
	"errors"
	"fmt"
)

// ErrNotFound signals that the upstream catalog has no resource under the
// requested identifier. It is the only upstream outcome the API surfaces to
// clients as their own mistake rather than an infrastructure failure.
var ErrNotFound = errors.New("pokemon: resource not found")

// UpstreamError wraps a transport-level or server-side upstream failure:
// network errors, timeouts and non-2xx responses other than 404.
type UpstreamError struct {
	URL        string
	StatusCode int // 0 when the request never produced a response
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("pokemon: upstream returned %d for %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("pokemon: upstream request to %s failed: %v", e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// SchemaError signals that an upstream payload decoded (or failed to decode)
// into something that does not carry the minimum shape this package relies on.
type SchemaError struct {
	Resource string
	Reason   string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("pokemon: %s payload mismatch: %s", e.Resource, e.Reason)
}

// IsNotFound reports whether err represents a missing upstream resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
