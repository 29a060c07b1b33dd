// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdSnapshot
	CmdPublish
	CmdPorts
	CmdServe
	CmdHistory
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string
	Feed       string
	BPM        int
	Seed       int64
	LogFile    string
	Verbose    bool
	JSON       bool

	// Command-specific
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Options holds command-specific named options (e.g., --seconds, --auto)
	Options map[string]string

	// Raw args (remaining after flag parsing)
	Raw []string

	// Errors collects malformed flag values.
	Errors []error
}

// Option returns a command option or def when unset.
func (a Args) Option(name, def string) string {
	if v, ok := a.Options[name]; ok && v != "" {
		return v
	}
	return def
}

const usageText = `# heartline

A simulated heart-rate strip chart for the terminal. The trace is procedural
and **not medical data**.

## Usage

    heartline                      Start the monitor (default)
    heartline tui                  Start the monitor
    heartline snapshot             Simulate headless and export the strip
    heartline publish              Publish beats to NATS
    heartline ports                List serial ports
    heartline serve                Serve the monitor over HTTP
    heartline history [subcommand] Past sessions
    heartline config [subcommand]  Configuration
    heartline version [--json]     Version information
    heartline help                 This help

## Snapshot

    heartline snapshot --seconds 10 --format png --out ./shots

Formats: png, html, json. The run is deterministic for a given --seed.

## Publish

    heartline publish --auto 72              Publish a beat every 60/72 s
    heartline publish                        Prompt for BPM values
    heartline publish --url nats://host:4222 --subject heartline.beats

## Serve

    heartline serve --addr 127.0.0.1:8787

Endpoints: /health, /bpm, /stats, /snapshot?format=png|html|json and
/events (server-sent events, one per beat). Set serve.token to require
a bearer token.

## History

    heartline history [--limit 20]   List recorded sessions, newest first
    heartline history show ID        One session (any unique id prefix)
    heartline history delete ID      Remove one session
    heartline history clear          Remove every session
    heartline history path           Show the database path

## Config

    heartline config show [--json]   Show the active configuration
    heartline config path            Show the configuration file path
    heartline config get KEY         Print one value (monitor.bpm_max)
    heartline config set KEY VALUE   Change one value and save
    heartline config init [--force]  Write the default configuration
    heartline config keys            List all keys

## Global flags

    --config PATH    Use this configuration file
    --feed SOURCE    simulated, nats or serial
    --bpm N          Initial heart rate
    --seed N         Fix the drift sequence
    --log FILE       Write the event log to FILE
    -v, --verbose    Verbose output
    --json           JSON output where supported

## Keys in the monitor

    p  pause    s  snapshot    c  copy reading    +/-  nudge BPM
    t  stats    ?  help        q  quit

Version: %s
`

// UsageMarkdown returns the usage text as markdown.
func UsageMarkdown() string {
	return fmt.Sprintf(usageText, Version)
}

// PrintUsage prints the usage/help text, rendered on a terminal.
func PrintUsage(w io.Writer) {
	md := UsageMarkdown()
	if IsStdoutTTY() {
		md = renderMarkdown(md)
	}
	fmt.Fprint(w, md)
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "heartline version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "  Go version: %s\n", runtime.Version())
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses command-line arguments and returns the command and args.
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui", "monitor":
		return CmdTUI, parsedArgs

	case "snapshot", "snap":
		parseOptions(&parsedArgs, remaining, "seconds", "format", "out", "width")
		return CmdSnapshot, parsedArgs

	case "publish", "pub":
		parseOptions(&parsedArgs, remaining, "auto", "url", "subject", "count")
		return CmdPublish, parsedArgs

	case "ports":
		return CmdPorts, parsedArgs

	case "serve", "server":
		parseOptions(&parsedArgs, remaining, "addr")
		return CmdServe, parsedArgs

	case "history", "hist":
		parseOptions(&parsedArgs, remaining, "limit")
		if len(parsedArgs.Raw) > 0 {
			parsedArgs.Subcommand = strings.ToLower(parsedArgs.Raw[0])
		}
		return CmdHistory, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "version", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		parsedArgs.Subcommand = cmd
		return CmdUnknown, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	parsedArgs := Args{
		Options: make(map[string]string),
	}

	value := func(i *int, arg, name string) (string, bool) {
		if v, ok := strings.CutPrefix(arg, name+"="); ok {
			return v, true
		}
		if arg == name && *i+1 < len(args) {
			*i++
			return args[*i], true
		}
		return "", false
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-v", "--verbose":
			parsedArgs.Verbose = true
			continue
		case "--json":
			parsedArgs.JSON = true
			continue
		}

		if v, ok := value(&i, arg, "--config"); ok {
			parsedArgs.ConfigPath = v
		} else if v, ok := value(&i, arg, "--feed"); ok {
			parsedArgs.Feed = strings.ToLower(v)
		} else if v, ok := value(&i, arg, "--log"); ok {
			parsedArgs.LogFile = v
		} else if v, ok := value(&i, arg, "--bpm"); ok {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				parsedArgs.Errors = append(parsedArgs.Errors,
					NewValidationErrorWithExample("--bpm", v, "must be a positive integer", "--bpm 72"))
				continue
			}
			parsedArgs.BPM = n
		} else if v, ok := value(&i, arg, "--seed"); ok {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				parsedArgs.Errors = append(parsedArgs.Errors,
					NewValidationErrorWithExample("--seed", v, "must be an integer", "--seed 42"))
				continue
			}
			parsedArgs.Seed = n
		} else {
			remaining = append(remaining, arg)
		}
	}

	return remaining, parsedArgs
}

// parseOptions collects --name value and --name=value pairs for the given
// names. Bare words are left in Raw.
func parseOptions(args *Args, remaining []string, names ...string) {
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	var rest []string
	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]
		name, ok := strings.CutPrefix(arg, "--")
		if !ok {
			rest = append(rest, arg)
			continue
		}
		if k, v, found := strings.Cut(name, "="); found && known[k] {
			args.Options[k] = v
			continue
		}
		if known[name] && i+1 < len(remaining) {
			args.Options[name] = remaining[i+1]
			i++
			continue
		}
		if name == "force" {
			args.Options["force"] = "true"
			continue
		}
		rest = append(rest, arg)
	}
	args.Raw = rest
}

// parseConfigArgs parses config command specific arguments.
func parseConfigArgs(args *Args, remaining []string) {
	parseOptions(args, remaining)
	if len(args.Raw) > 0 {
		args.Subcommand = strings.ToLower(args.Raw[0])
		if len(args.Raw) > 1 {
			args.ConfigKey = args.Raw[1]
		}
		if len(args.Raw) > 2 {
			args.ConfigVal = strings.Join(args.Raw[2:], " ")
		}
	}
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// HandleVersion handles the "version" command with JSON output support.
func HandleVersion(args Args) error {
	if args.JSON {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).Print()
	}
	PrintVersion(os.Stdout)
	return nil
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage(os.Stdout)
}
