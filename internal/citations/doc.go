// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package citations extracts the source block the assistant appends to
// its replies.
//
// A reply may end with a block of the form
//
//	[[SOURCES_START]]
//	1. Title of the first source
//	2. Title of the second source
//	[[SOURCES_END]]
//
// Extract splits such a reply into display text (with the block removed)
// and the list of source titles. Inline "(N)" markers in the body refer
// to entries in that list by position and are left untouched; rendering
// them is the caller's concern.
package citations
