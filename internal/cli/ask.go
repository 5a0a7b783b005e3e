// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command.
//
// Command: ask [question]
//
// Examples:
//   scribe ask "What is a sliding window rate limit?"
//   echo "Summarize this" | scribe ask
//   scribe ask --plain "question"    # skip markdown rendering
//
// The question counts against the same 24-hour quota as the TUI.

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/scribe-tui/internal/citations"
	"github.com/jeranaias/scribe-tui/internal/completion"
	"github.com/jeranaias/scribe-tui/internal/config"
	"github.com/jeranaias/scribe-tui/internal/ratelimit"
	"github.com/jeranaias/scribe-tui/internal/ui/styles"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fall back to plain text when the renderer cannot initialize.
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown for terminal display, returning the
// original content when rendering is unavailable.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// isStdoutTTY reports whether stdout is a terminal. Markdown rendering
// is skipped for pipes so downstream tools get clean text.
func isStdoutTTY() bool {
	stat, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// =============================================================================
// ASK HANDLER
// =============================================================================

// HandleAsk handles the "ask" command: one question, one answer on
// stdout, sources listed after the body.
func HandleAsk(cfg *config.Config, args *Args) error {
	question := args.RestJoined()

	// Piped stdin can supply the question.
	if question == "" {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) == 0 {
			data, err := io.ReadAll(bufio.NewReader(os.Stdin))
			if err == nil {
				question = strings.TrimSpace(string(data))
			}
		}
	}
	if question == "" {
		return fmt.Errorf("no question provided. Usage: scribe ask \"your question\"")
	}

	blobs, err := OpenBlobStore(cfg)
	if err != nil {
		return err
	}
	defer blobs.Close()

	limiter := ratelimit.NewLimiter(blobs)
	if res := limiter.Check(); !res.Allowed {
		return fmt.Errorf("message limit reached, try again in %s",
			res.TimeRemaining.Round(time.Minute))
	}
	limiter.Record()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := completion.NewClient(cfg.API.CompletionURL)
	reply, err := client.Complete(ctx, []completion.ChatMessage{
		{Role: "user", Content: question},
	})
	if err != nil {
		if completion.IsCancellation(err) {
			return nil
		}
		return fmt.Errorf("completion failed: %w", err)
	}

	extracted := citations.Extract(reply)

	if isStdoutTTY() && !args.BoolFlag("plain") && cfg.UI.Markdown {
		fmt.Print(renderMarkdown(extracted.Display))
	} else {
		fmt.Println(extracted.Display)
	}

	printSources(extracted.Sources)
	return nil
}

// printSources prints the numbered source list after the answer body.
func printSources(sources []string) {
	if len(sources) == 0 {
		return
	}
	fmt.Println()
	fmt.Println(styles.RenderInfo("Sources"))
	for i, src := range sources {
		fmt.Printf("  %d. %s\n", i+1, src)
	}
}
