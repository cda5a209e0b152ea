// validate.go checks configured credentials with one minimal live call
// and maps known failure signatures to user-facing categories. All
// paths resolve to a ValidationResult — nothing throws past here.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
)

// ValidationResult reports whether a provider configuration works.
type ValidationResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// validateMaxTokens keeps the probe call as cheap as possible.
const validateMaxTokens = 8

// ValidateKey issues one short generation call against the configured
// provider to confirm the credentials work.
func ValidateKey(ctx context.Context, cfg LegacyConfig) ValidationResult {
	client, err := Resolve(cfg.Provider, Settings{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL})
	if err != nil {
		return ValidationResult{Valid: false, Error: err.Error()}
	}

	text, err := client.GenerateText(ctx, TextRequest{
		Prompt:    "Reply with the single word OK.",
		MaxTokens: validateMaxTokens,
	})
	if err != nil {
		logResponse(client.Name(), nil, err)
		return ValidationResult{Valid: false, Error: categorize(err)}
	}
	logResponse(client.Name(), json.RawMessage(text), nil)
	return ValidationResult{Valid: true}
}

// categorize maps known failure signatures to user-facing messages;
// anything unrecognized passes through as-is.
func categorize(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized:
			return "Invalid API key"
		case http.StatusForbidden:
			return "API key has insufficient permissions"
		case http.StatusTooManyRequests:
			return "Rate limit exceeded, retry later"
		}
		return apiErr.Error()
	}

	var dnsErr *net.DNSError
	var opErr *net.OpError
	if errors.As(err, &dnsErr) || errors.As(err, &opErr) ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "no such host") {
		return "Could not connect to provider, check network"
	}

	return err.Error()
}
