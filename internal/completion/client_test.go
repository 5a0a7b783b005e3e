// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package completion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCompleteSSE(t *testing.T) {
	var gotBody chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Errorf("request body not JSON: %v", err)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hello \"}}]}\n\n")
		io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"world\"}}]}\n\n")
		io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	got, err := client.Complete(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "Hello world" {
		t.Errorf("reply = %q, want %q", got, "Hello world")
	}
	if len(gotBody.Messages) != 1 || gotBody.Messages[0].Role != "user" {
		t.Errorf("unexpected request messages: %+v", gotBody.Messages)
	}
}

func TestCompleteSingleJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"choices":[{"message":{"content":"full reply"}}]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	got, err := client.Complete(context.Background(), nil)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "full reply" {
		t.Errorf("reply = %q, want %q", got, "full reply")
	}
}

func TestCompleteNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream exploded")
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Complete(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Status != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", apiErr.Status)
	}
	if !strings.Contains(apiErr.Body, "upstream exploded") {
		t.Errorf("body detail lost: %q", apiErr.Body)
	}
	if IsCancellation(err) {
		t.Error("API error must not read as cancellation")
	}
}

func TestCompleteEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Complete(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error for empty body")
	}
}

func TestCompleteCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	client := NewClient(srv.URL)
	_, err := client.Complete(ctx, nil)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if !IsCancellation(err) {
		t.Errorf("IsCancellation = false for %v", err)
	}
}

func TestCompleteNotConfigured(t *testing.T) {
	client := NewClient("")
	_, err := client.Complete(context.Background(), nil)
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestCompleteStreamCallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"one\"}}]}\n")
		io.WriteString(w, "data: {\"choices\":[{\"delta\":{\"content\":\"two\"}}]}\n")
	}))
	defer srv.Close()

	var fragments []string
	client := NewClient(srv.URL)
	got, err := client.CompleteStream(context.Background(), nil, func(s string) {
		fragments = append(fragments, s)
	})
	if err != nil {
		t.Fatalf("CompleteStream failed: %v", err)
	}
	if got != "onetwo" {
		t.Errorf("reply = %q, want %q", got, "onetwo")
	}
	if strings.Join(fragments, "") != "onetwo" {
		t.Errorf("callback fragments = %v, want concatenation onetwo", fragments)
	}
}
