// provider.go defines the interface all AI backend clients implement
// and the shared request/response/error types.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
)

// ObjectRequest asks a client for one structured response constrained
// to the closed response contract (see contract.go).
type ObjectRequest struct {
	System      string
	Prompt      string
	Temperature float64
}

// TextRequest asks a client for a short plain-text completion. Used by
// the API key validator, which only needs proof the credentials work.
type TextRequest struct {
	System    string
	Prompt    string
	MaxTokens int
}

// Client is the interface all AI backends implement.
type Client interface {
	// GenerateObject issues one generation call constrained to the
	// structured response contract and returns the raw JSON object.
	GenerateObject(ctx context.Context, req ObjectRequest) (json.RawMessage, error)

	// GenerateText issues one unconstrained generation call.
	GenerateText(ctx context.Context, req TextRequest) (string, error)

	// Name returns the provider name for display and logging.
	Name() string
}

// LegacyConfig is the simplified single-provider view derived from the
// multi-provider configuration. It is always recomputed, never stored
// as truth.
type LegacyConfig struct {
	Provider ProviderID `json:"provider"`
	APIKey   string     `json:"apiKey,omitempty"`
	Model    string     `json:"model"`
	BaseURL  string     `json:"baseUrl,omitempty"`
}

// Settings carries the per-call credentials and endpoint for Resolve.
type Settings struct {
	APIKey  string
	Model   string
	BaseURL string
}

// APIError is a non-2xx response from a provider API. The status code
// lets the validator categorize failures without string matching.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Body)
}
