/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package ai abstracts the external large-language-model dependency behind a
// single text-generation capability. Failures are classified so callers can
// log quota exhaustion and overload distinctly, but control flow treats every
// failure the same way: AI unavailable, fall back.
package ai

import (
	"context"
	"errors"
)

// Client generates free-form text for a prompt.
type Client interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// FailureClass buckets provider errors for logging granularity.
type FailureClass string

const (
	FailureQuota    FailureClass = "quota"
	FailureOverload FailureClass = "overload"
	FailureOther    FailureClass = "other"
)

// ProviderError carries the HTTP status behind a failed generation call.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return e.Message
}

// Class maps a provider error to its failure class.
func (e *ProviderError) Class() FailureClass {
	switch e.StatusCode {
	case 429:
		return FailureQuota
	case 503:
		return FailureOverload
	default:
		return FailureOther
	}
}

// Classify returns the failure class for any error from a Client call.
func Classify(err error) FailureClass {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Class()
	}
	return FailureOther
}
