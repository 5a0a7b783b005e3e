// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "testing"

func TestParseArgsCommandAndRest(t *testing.T) {
	a := ParseArgs([]string{"ask", "what", "is", "go"})
	if a.Command != "ask" {
		t.Errorf("command = %q", a.Command)
	}
	if got := a.RestJoined(); got != "what is go" {
		t.Errorf("rest = %q", got)
	}
}

func TestParseArgsFlags(t *testing.T) {
	a := ParseArgs([]string{"serve", "--listen", "127.0.0.1:9000", "--upstream=https://x.test"})
	if a.Command != "serve" {
		t.Errorf("command = %q", a.Command)
	}
	if a.Flag("listen") != "127.0.0.1:9000" {
		t.Errorf("listen = %q", a.Flag("listen"))
	}
	if a.Flag("upstream") != "https://x.test" {
		t.Errorf("upstream = %q", a.Flag("upstream"))
	}
}

func TestParseArgsBoolFlags(t *testing.T) {
	a := ParseArgs([]string{"ask", "--plain", "hello"})
	if !a.BoolFlag("plain") {
		t.Error("plain flag lost")
	}
	// --plain never takes a value, so "hello" stays positional.
	if got := a.RestJoined(); got != "hello" {
		t.Errorf("rest = %q", got)
	}
}

func TestParseArgsExplicitBool(t *testing.T) {
	a := ParseArgs([]string{"ask", "--plain=false", "hi"})
	if a.BoolFlag("plain") {
		t.Error("plain=false parsed as true")
	}
}

func TestParseArgsEmpty(t *testing.T) {
	a := ParseArgs(nil)
	if a.Command != "" {
		t.Errorf("command = %q, want empty", a.Command)
	}
	if len(a.Rest()) != 0 {
		t.Errorf("rest = %v", a.Rest())
	}
}

func TestFlagOrDefault(t *testing.T) {
	a := ParseArgs([]string{"serve"})
	if got := a.FlagOrDefault("listen", "127.0.0.1:8787"); got != "127.0.0.1:8787" {
		t.Errorf("default = %q", got)
	}
}
