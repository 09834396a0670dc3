/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGenerateContentReturnsFirstCandidate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "hello there"}]}}]}`))
	}))
	defer server.Close()

	client := NewGemini("key", "gemini-2.0-flash", server.URL, time.Second)
	text, err := client.GenerateContent(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "hello there" {
		t.Fatalf("text = %q", text)
	}
}

func TestGenerateContentClassifiesStatuses(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected FailureClass
	}{
		{"quota exhausted", http.StatusTooManyRequests, FailureQuota},
		{"overloaded", http.StatusServiceUnavailable, FailureOverload},
		{"server error", http.StatusInternalServerError, FailureOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewGemini("key", "gemini-2.0-flash", server.URL, time.Second)
			_, err := client.GenerateContent(context.Background(), "prompt")
			if err == nil {
				t.Fatal("expected error")
			}
			var provErr *ProviderError
			if !errors.As(err, &provErr) {
				t.Fatalf("expected ProviderError, got %T", err)
			}
			if got := Classify(err); got != tt.expected {
				t.Fatalf("class = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestGenerateContentRejectsEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	client := NewGemini("key", "gemini-2.0-flash", server.URL, time.Second)
	if _, err := client.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error on empty candidates")
	}
}
