// Package llm provides clients for remote completion services.
package llm

import (
	"context"
	"errors"
)

// Client issues a single synchronous completion request.
type Client interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}

var (
	// ErrRateLimited indicates the upstream rejected the request with 429.
	ErrRateLimited = errors.New("llm: rate limited")
	// ErrUnavailable indicates an upstream 5xx or timeout.
	ErrUnavailable = errors.New("llm: upstream unavailable")
	// ErrEmptyCompletion indicates a 2xx response with no usable text.
	ErrEmptyCompletion = errors.New("llm: empty completion")
)
