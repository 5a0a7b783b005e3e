// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-TUI command surface of scribe.
//
// Commands:
//
//	scribe              launch the TUI (default)
//	scribe ask "..."    one-shot question, answer to stdout
//	scribe chat         interactive REPL with line editing and history
//	scribe serve        run the local app-shell gateway
//	scribe version      print the version
//
// ask and chat share the TUI's session store, rate limiter, and
// completion client, so the 24-hour message quota is enforced across
// all three surfaces.
package cli
