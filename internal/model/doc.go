// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions, messages,
// and attachments.
//
// # Contents
//
//   - Role: the sender of a message (user or model)
//   - Attachment: an image carried by a message as a data URI
//   - Message: a single immutable chat message
//   - ChatSession: an append-only sequence of messages with a derived title
//
// Messages are immutable once appended to a session; sessions only ever
// grow. The session title is derived exactly once, from the first message,
// and never changes afterwards.
package model
