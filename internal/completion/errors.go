// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package completion

import (
	"context"
	"errors"
	"fmt"
)

// Error variables for common completion failures.
var (
	// ErrNotConfigured indicates no endpoint URL is set.
	ErrNotConfigured = errors.New("completion endpoint not configured")

	// ErrEmptyReply indicates the endpoint answered 2xx but produced no
	// reply text at all.
	ErrEmptyReply = errors.New("empty reply from completion endpoint")
)

// APIError represents a non-2xx response from the completion endpoint.
// The response body is kept as detail for the log; it is never shown in
// the chat.
type APIError struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("completion request failed: status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("completion request failed: status %d", e.Status)
}

// IsCancellation reports whether err is the result of the caller
// cancelling the request, as opposed to a genuine failure. Cancelled
// requests are swallowed; failures produce a synthetic error message.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}
