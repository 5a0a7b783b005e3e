// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system shared by the TUI
// and the CLI commands. All colors use Lip Gloss AdaptiveColor so
// light and dark terminals both get readable output; the configured
// theme preference can force either variant.
package styles
