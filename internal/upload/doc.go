// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package upload implements the attachment relay client.
//
// Before a send, an attached image is decoded from its data URI,
// downscaled so its longer edge is at most 1024 pixels, re-encoded as
// JPEG, and posted to the relay as {image, name} with the extension
// renamed to .jpg. The relay answers {url} on success or {error}
// otherwise. Upload failures never block a send: the orchestrator logs
// them and falls back to text-only.
package upload
