// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package completion

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MaxResponseSize is the maximum allowed response body size.
// SECURITY: Response size limit prevents memory exhaustion attacks.
const MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
// Shared streaming client for all completion requests. No client timeout:
// lifetime is controlled via the request context, since a healthy stream
// may legitimately run for minutes.
var sharedStreamingClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the completion endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a client for the given endpoint URL.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint:   endpoint,
		httpClient: sharedStreamingClient,
	}
}

// IsConfigured reports whether an endpoint URL is set.
func (c *Client) IsConfigured() bool {
	return c.endpoint != ""
}

// chatRequest is the request body: just the message list. The endpoint
// injects the system prompt and credentials itself.
type chatRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// singleResponse is the non-streaming response shape.
type singleResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the messages and returns the full aggregated reply.
// Supports context cancellation; use IsCancellation to tell a cancelled
// request from a failed one.
func (c *Client) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	return c.complete(ctx, messages, nil)
}

// CompleteStream is Complete with a per-fragment callback, for callers
// that display text as it arrives.
func (c *Client) CompleteStream(ctx context.Context, messages []ChatMessage, onFragment func(string)) (string, error) {
	return c.complete(ctx, messages, onFragment)
}

func (c *Client) complete(ctx context.Context, messages []ChatMessage, onFragment func(string)) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	bodyBytes, err := json.Marshal(chatRequest{Messages: messages})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Context cancellation surfaces here wrapped in a *url.Error;
		// unwrap so IsCancellation keeps working.
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
		return "", &APIError{Status: resp.StatusCode, Body: string(bytes.TrimSpace(detail))}
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return "", ErrEmptyReply
	}

	return c.readBody(ctx, resp.Body, onFragment)
}

// readBody consumes the response body, handling both the SSE and the
// single-JSON shapes.
func (c *Client) readBody(ctx context.Context, body io.Reader, onFragment func(string)) (string, error) {
	reader := NewStreamReader()
	var raw bytes.Buffer
	buf := make([]byte, 4096)
	emitted := 0

	emit := func() {
		if onFragment == nil {
			return
		}
		text := reader.Text()
		if len(text) > emitted {
			onFragment(text[emitted:])
			emitted = len(text)
		}
	}

	limited := io.LimitReader(body, MaxResponseSize)
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := limited.Read(buf)
		if n > 0 {
			reader.Feed(buf[:n])
			raw.Write(buf[:n])
			emit()
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", fmt.Errorf("stream read failed: %w", err)
		}
	}

	reader.Flush()
	emit()

	if reader.SawData() {
		if reader.Text() == "" {
			return "", ErrEmptyReply
		}
		return reader.Text(), nil
	}

	// No data lines: the endpoint answered with a single JSON object.
	var single singleResponse
	if err := json.Unmarshal(raw.Bytes(), &single); err != nil {
		return "", fmt.Errorf("unrecognized response body: %w", err)
	}
	if len(single.Choices) == 0 || single.Choices[0].Message.Content == "" {
		return "", ErrEmptyReply
	}
	if onFragment != nil {
		onFragment(single.Choices[0].Message.Content)
	}
	return single.Choices[0].Message.Content, nil
}
