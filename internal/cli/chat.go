// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat REPL.
//
// Command: chat
//
// Interactive commands:
//   /help, /h          Show available commands
//   /new               Start a new session
//   /sessions          List sessions
//   /switch N          Switch to session N
//   /delete N          Delete session N
//   /usage             Show quota usage
//   /quit, /q          Exit
//   Ctrl+C             Cancel the in-flight request
//   Ctrl+D             Exit
//
// The REPL drives the same orchestrator as the TUI, so sessions and
// quota are shared.

package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/scribe-tui/internal/citations"
	"github.com/jeranaias/scribe-tui/internal/config"
	"github.com/jeranaias/scribe-tui/internal/model"
	"github.com/jeranaias/scribe-tui/internal/orchestrator"
	"github.com/jeranaias/scribe-tui/internal/ratelimit"
	"github.com/jeranaias/scribe-tui/internal/ui/styles"
	"github.com/jeranaias/scribe-tui/internal/util"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	commandStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// chatInput wraps liner with persistent input history.
type chatInput struct {
	line        *liner.State
	historyFile string
}

func newChatInput(dataDir string) *chatInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	in := &chatInput{
		line:        line,
		historyFile: filepath.Join(dataDir, "chat_history"),
	}
	if f, err := os.Open(in.historyFile); err == nil {
		in.line.ReadHistory(f)
		f.Close()
	}
	return in
}

// read reads one line, recording non-empty input in the history.
func (c *chatInput) read(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// close saves history and restores the terminal.
func (c *chatInput) close() {
	if f, err := os.Create(c.historyFile); err == nil {
		c.line.WriteHistory(f)
		f.Close()
	}
	c.line.Close()
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChat runs the interactive REPL.
func HandleChat(cfg *config.Config, args *Args) error {
	blobs, err := OpenBlobStore(cfg)
	if err != nil {
		return err
	}
	defer blobs.Close()

	orch := BuildOrchestrator(cfg, blobs)
	defer orch.Shutdown()

	in := newChatInput(cfg.Storage.Dir)
	defer in.close()

	// Ctrl+C while a reply is pending cancels the request instead of
	// killing the process.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	printWelcome(orch)

	for {
		input, err := in.read(promptStyle.Render("you> "))
		if err != nil {
			if err == liner.ErrPromptAborted {
				continue
			}
			// io.EOF on Ctrl+D.
			fmt.Println()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if quit := handleReplCommand(orch, input); quit {
				return nil
			}
			continue
		}

		if err := orch.SendMessage(input, nil); err != nil {
			switch err {
			case orchestrator.ErrRateLimited:
				// The denial message is already in the transcript.
			case orchestrator.ErrRequestInFlight:
				fmt.Println(errorStyle.Render("still waiting on the previous reply"))
				continue
			default:
				fmt.Println(errorStyle.Render(err.Error()))
				continue
			}
		}

		waitForReply(orch, sigCh)
		printLastReply(orch, cfg)
	}
}

// waitForReply blocks until the pending request settles. Ctrl+C
// cancels it.
func waitForReply(orch *orchestrator.Orchestrator, sigCh <-chan os.Signal) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			orch.CancelPending()
		case <-ticker.C:
			if !orch.InFlight() {
				return
			}
		}
	}
}

// printLastReply prints the newest model message of the active session.
func printLastReply(orch *orchestrator.Orchestrator, cfg *config.Config) {
	active := orch.Active()
	if active == nil {
		return
	}
	last, ok := active.Last()
	if !ok || last.Role != model.RoleModel {
		// Cancellation appends nothing.
		fmt.Println(infoStyle.Render("(cancelled)"))
		return
	}

	if last.IsError {
		fmt.Println(errorStyle.Render(last.Text))
		return
	}

	extracted := citations.Extract(last.Text)
	if isStdoutTTY() && cfg.UI.Markdown {
		fmt.Print(renderMarkdown(extracted.Display))
	} else {
		fmt.Println(extracted.Display)
	}
	printSources(extracted.Sources)
}

// =============================================================================
// REPL COMMANDS
// =============================================================================

// handleReplCommand executes one slash command. Returns true to exit.
func handleReplCommand(orch *orchestrator.Orchestrator, input string) bool {
	fields := strings.Fields(input)
	cmd := fields[0]

	switch cmd {
	case "/quit", "/q", "/exit":
		return true

	case "/help", "/h":
		printReplHelp()

	case "/new":
		orch.NewSession()
		fmt.Println(infoStyle.Render("started a new chat"))

	case "/sessions":
		printSessions(orch)

	case "/switch":
		withSessionArg(orch, fields, func(id string) error {
			if err := orch.SetActive(id); err != nil {
				return err
			}
			fmt.Println(infoStyle.Render("switched to: " + orch.Active().Title))
			return nil
		})

	case "/delete":
		withSessionArg(orch, fields, func(id string) error {
			return orch.DeleteSession(id)
		})

	case "/usage":
		fmt.Println(infoStyle.Render(fmt.Sprintf("messages used: %d/%d in the last 24h",
			orch.UsageCount(), ratelimit.MaxMessages)))

	default:
		fmt.Println(errorStyle.Render("unknown command: " + cmd + " (try /help)"))
	}
	return false
}

// withSessionArg resolves a 1-based session index argument and applies fn.
func withSessionArg(orch *orchestrator.Orchestrator, fields []string, fn func(id string) error) {
	if len(fields) < 2 {
		fmt.Println(errorStyle.Render("usage: " + fields[0] + " N"))
		return
	}
	n, err := strconv.Atoi(fields[1])
	sessions := orch.Sessions()
	if err != nil || n < 1 || n > len(sessions) {
		fmt.Println(errorStyle.Render("no such session: " + fields[1]))
		return
	}
	if err := fn(sessions[n-1].ID); err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
	}
}

func printSessions(orch *orchestrator.Orchestrator) {
	activeID := orch.ActiveID()
	for i, s := range orch.Sessions() {
		marker := " "
		if s.ID == activeID {
			marker = "*"
		}
		fmt.Printf("%s %2d. %s %s\n",
			marker, i+1,
			util.TruncateRunes(s.Title, 40),
			infoStyle.Render(fmt.Sprintf("(%d messages)", s.MessageCount())))
	}
}

func printWelcome(orch *orchestrator.Orchestrator) {
	fmt.Println(welcomeStyle.Render("scribe chat"))
	fmt.Printf("%s %s\n",
		infoStyle.Render("session:"),
		orch.Active().Title)
	fmt.Println(infoStyle.Render("type a message, or /help for commands"))
	fmt.Println()
}

func printReplHelp() {
	help := [][2]string{
		{"/new", "start a new session"},
		{"/sessions", "list sessions"},
		{"/switch N", "switch to session N"},
		{"/delete N", "delete session N"},
		{"/usage", "show quota usage"},
		{"/quit", "exit"},
	}
	for _, h := range help {
		fmt.Printf("  %s  %s\n",
			commandStyle.Render(fmt.Sprintf("%-11s", h[0])),
			infoStyle.Render(h[1]))
	}
}
