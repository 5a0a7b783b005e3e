// scribe - A conversational chat client for the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/scribe-tui/internal/cli"
	"github.com/jeranaias/scribe-tui/internal/config"
	"github.com/jeranaias/scribe-tui/internal/gateway"
	"github.com/jeranaias/scribe-tui/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	args := cli.ParseArgs(os.Args[1:])

	if args.BoolFlag("help") || args.BoolFlag("h") {
		printUsage()
		return
	}
	if args.BoolFlag("version") {
		fmt.Printf("scribe %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch args.Command {
	case "":
		if err := runTUI(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "ask":
		if err := cli.HandleAsk(cfg, args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "chat":
		if err := cli.HandleChat(cfg, args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "serve":
		if err := runServe(cfg, args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "version":
		fmt.Printf("scribe %s (%s, built %s)\n", Version, GitCommit, BuildDate)

	case "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args.Command)
		printUsage()
		os.Exit(1)
	}
}

// runTUI launches the chat surface.
func runTUI(cfg *config.Config) error {
	blobs, err := cli.OpenBlobStore(cfg)
	if err != nil {
		return err
	}
	defer blobs.Close()

	orch := cli.BuildOrchestrator(cfg, blobs)
	defer orch.Shutdown()

	p := tea.NewProgram(ui.New(cfg, orch), tea.WithAltScreen())

	// Live reload is delivered into the program so the swap happens on
	// the update loop. Theme and markdown settings take effect
	// immediately; endpoint changes apply on the next launch, since
	// the clients capture their URLs at construction.
	watcher, werr := config.NewWatcher(config.DefaultPath(), func(next *config.Config) {
		p.Send(ui.ConfigChangedMsg{Config: next})
	})
	if werr == nil {
		if werr := watcher.Watch(); werr != nil {
			log.Printf("[main] config watch failed: %v", werr)
		}
		defer watcher.Close()
	}

	_, err = p.Run()
	return err
}

// runServe runs the local app-shell gateway until interrupted.
func runServe(cfg *config.Config, args *cli.Args) error {
	listen := args.FlagOrDefault("listen", cfg.Gateway.Listen)
	upstream := args.FlagOrDefault("upstream", cfg.Gateway.Upstream)
	if upstream == "" {
		return fmt.Errorf("no upstream configured: set [gateway] upstream or pass --upstream")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return gateway.New(upstream).ListenAndServe(ctx, listen)
}

func printUsage() {
	fmt.Print(`scribe - conversational chat client

Usage:
  scribe                 launch the TUI
  scribe ask "..."       one-shot question, answer to stdout
  scribe chat            interactive REPL
  scribe serve           run the local app-shell gateway
  scribe version         print the version

Flags:
  ask:    --plain              skip markdown rendering
  serve:  --listen ADDR        bind address (default from config)
          --upstream URL       upstream origin

Configuration lives at ~/.scribe/config.toml; SCRIBE_* environment
variables override it.
`)
}
