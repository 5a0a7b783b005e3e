// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// args.go - Argument parsing shared by all scribe commands.

package cli

import "strings"

// =============================================================================
// ARG PARSER
// =============================================================================

// Args is the parsed command line. The first positional argument is the
// command; everything after it belongs to that command.
type Args struct {
	Command    string
	positional []string
	flags      map[string]string
	boolFlags  map[string]bool
}

// ParseArgs parses raw arguments (os.Args[1:]) into Args.
//
// Supported flag formats:
//
//	--flag value     long flag with space-separated value
//	--flag=value     long flag with equals sign
//	--flag           boolean flag
//	-f value         short flag with space-separated value
func ParseArgs(raw []string) *Args {
	a := &Args{
		flags:     make(map[string]string),
		boolFlags: make(map[string]bool),
	}

	i := 0
	for i < len(raw) {
		arg := raw[i]

		if !strings.HasPrefix(arg, "-") {
			a.positional = append(a.positional, arg)
			i++
			continue
		}

		if strings.Contains(arg, "=") {
			parts := strings.SplitN(arg, "=", 2)
			name := strings.TrimLeft(parts[0], "-")
			if parts[1] == "true" || parts[1] == "false" {
				a.boolFlags[name] = parts[1] == "true"
			} else {
				a.flags[name] = parts[1]
			}
			i++
			continue
		}

		name := strings.TrimLeft(arg, "-")
		if i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") && !isBoolFlag(name) {
			a.flags[name] = raw[i+1]
			i += 2
		} else {
			a.boolFlags[name] = true
			i++
		}
	}

	if len(a.positional) > 0 {
		a.Command = a.positional[0]
	}
	return a
}

// boolOnlyFlags never take a value, so a positional argument after one
// of them is not swallowed as its value.
var boolOnlyFlags = map[string]bool{
	"plain":   true,
	"q":       true,
	"quiet":   true,
	"help":    true,
	"h":       true,
	"version": true,
	"v":       true,
}

func isBoolFlag(name string) bool {
	return boolOnlyFlags[name]
}

// Flag returns the value of a string flag, or "" when absent.
func (a *Args) Flag(name string) string {
	return a.flags[strings.TrimLeft(name, "-")]
}

// FlagOrDefault returns the flag value or a default when absent.
func (a *Args) FlagOrDefault(name, def string) string {
	if v := a.Flag(name); v != "" {
		return v
	}
	return def
}

// BoolFlag reports whether a boolean flag was given.
func (a *Args) BoolFlag(name string) bool {
	return a.boolFlags[strings.TrimLeft(name, "-")]
}

// Rest returns the positional arguments after the command.
func (a *Args) Rest() []string {
	if len(a.positional) <= 1 {
		return nil
	}
	return a.positional[1:]
}

// RestJoined joins the positional arguments after the command into one
// string. ask uses this so quoting the question is optional.
func (a *Args) RestJoined() string {
	return strings.Join(a.Rest(), " ")
}
