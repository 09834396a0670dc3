/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package recommend

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError reports a request parameter the caller must correct.
// It carries the accepted values so the caller can react without guessing.
type ValidationError struct {
	Field       string
	Message     string
	ValidValues []string
}

func (e *ValidationError) Error() string {
	if len(e.ValidValues) == 0 {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s (valid: %s)", e.Field, e.Message, strings.Join(e.ValidValues, ", "))
}

// QuotaExhaustedError signals that the forced-AI entry was invoked with no
// AI budget left. RetryAfter tells the caller when budget frees up.
type QuotaExhaustedError struct {
	RetryAfter time.Duration
}

func (e *QuotaExhaustedError) Error() string {
	return fmt.Sprintf("AI request quota exhausted, retry in %s", e.RetryAfter.Round(time.Second))
}
