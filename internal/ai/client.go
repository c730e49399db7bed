// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package ai

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrUnavailable is returned when no completion backend is configured
	ErrUnavailable = errors.New("ai completion unavailable")

	// ErrMalformed is returned when a response is not valid for the requested schema
	ErrMalformed = errors.New("ai response malformed")

	// ErrBreakerOpen is returned while the circuit breaker rejects calls
	ErrBreakerOpen = errors.New("ai circuit breaker open")
)

// ObjectRequest asks the model for one JSON object matching Schema
type ObjectRequest struct {
	System string
	Prompt string
	Schema Schema
}

// Completer is the interface for structured completion providers
type Completer interface {
	// GenerateObject returns the raw JSON object produced by the model
	GenerateObject(ctx context.Context, req ObjectRequest) (json.RawMessage, error)

	// Available reports whether calls can succeed at all
	Available() bool
}

// Unavailable is the Completer used when no provider is configured
type Unavailable struct{}

func (Unavailable) GenerateObject(context.Context, ObjectRequest) (json.RawMessage, error) {
	return nil, ErrUnavailable
}

func (Unavailable) Available() bool { return false }

// DecodeObject validates raw against schema and unmarshals it into out
func DecodeObject(raw json.RawMessage, schema Schema, out any) error {
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return errors.Join(ErrMalformed, err)
	}
	if err := schema.Validate(generic); err != nil {
		return errors.Join(ErrMalformed, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Join(ErrMalformed, err)
	}
	return nil
}
