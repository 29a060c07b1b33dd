// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation for heartline.
//
// Command: config [subcommand]
//
// Subcommands:
//   show (default)      Display the active configuration
//   path                Show the configuration file path
//   get <key>           Print one value
//   set <key> <value>   Set a value and save
//   init [--force]      Write the default configuration
//   keys                List every key
//
// Examples:
//   heartline config set monitor.bpm_max 90
//   heartline config set palette.line "#ef4444"
//   heartline config set feed.source nats

package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/jeranaias/heartline/internal/config"
)

// =============================================================================
// LOADING
// =============================================================================

// LoadConfig loads the configuration named by args (or the default file)
// and applies the command-line overrides.
func LoadConfig(args Args) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if args.Feed != "" {
		cfg.Feed.Source = args.Feed
	}
	if args.BPM > 0 {
		cfg.Monitor.BPMDefault = args.BPM
	}
	if args.Seed != 0 {
		cfg.Monitor.Seed = args.Seed
	}
	if args.LogFile != "" {
		cfg.UI.LogFile = args.LogFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	return cfg, nil
}

// configPath returns the file the config command reads and writes.
func configPath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ActivePath()
}

func saveConfig(cfg *config.Config, path string) error {
	if strings.HasSuffix(path, ".json") {
		return config.SaveJSON(cfg, path)
	}
	return config.SaveTOML(cfg, path)
}

// =============================================================================
// HANDLE CONFIG
// =============================================================================

// HandleConfig handles the "config" command.
func HandleConfig(args Args) error {
	return handleConfig(args, os.Stdout)
}

func handleConfig(args Args, w io.Writer) error {
	switch args.Subcommand {
	case "", "show":
		return handleConfigShow(args, w)
	case "path":
		return handleConfigPath(args, w)
	case "get":
		return handleConfigGet(args, w)
	case "set":
		return handleConfigSet(args, w)
	case "init":
		return handleConfigInit(args, w)
	case "keys":
		return handleConfigKeys(args, w)
	default:
		return NewValidationErrorWithExample("config", args.Subcommand,
			"unknown subcommand", "heartline config show")
	}
}

func handleConfigShow(args Args, w io.Writer) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	if args.JSON {
		return NewJSONResponse("config show", cfg).Write(w)
	}
	data, err := config.EncodeTOML(cfg)
	if err != nil {
		return err
	}
	out := string(data)
	if ColorsEnabled() {
		out = highlightTOML(out)
	}
	fmt.Fprint(w, out)
	return nil
}

func handleConfigPath(args Args, w io.Writer) error {
	path, err := configPath(args)
	if err != nil {
		return err
	}
	_, statErr := os.Stat(path)
	exists := statErr == nil
	if args.JSON {
		return NewJSONResponse("config path", map[string]interface{}{
			"path":   path,
			"exists": exists,
		}).Write(w)
	}
	fmt.Fprintln(w, path)
	if !exists && args.Verbose {
		fmt.Fprintln(w, DimStyle.Render("(not created yet; run: heartline config init)"))
	}
	return nil
}

func handleConfigGet(args Args, w io.Writer) error {
	if args.ConfigKey == "" {
		return NewValidationErrorWithExample("key", "", "config get needs a key", "heartline config get monitor.bpm_max")
	}
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}
	val, err := cfg.Get(args.ConfigKey)
	if err != nil {
		return NewValidationError("key", args.ConfigKey, err.Error())
	}
	if args.JSON {
		return NewJSONResponse("config get", map[string]interface{}{
			"key":   args.ConfigKey,
			"value": val,
		}).Write(w)
	}
	fmt.Fprintln(w, val)
	return nil
}

func handleConfigSet(args Args, w io.Writer) error {
	if args.ConfigKey == "" || args.ConfigVal == "" {
		return NewValidationErrorWithExample("key", args.ConfigKey, "config set needs a key and a value",
			"heartline config set monitor.bpm_max 90")
	}
	path, err := configPath(args)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if _, statErr := os.Stat(path); statErr == nil {
		cfg, err = config.LoadFromPath(path)
		if err != nil {
			return err
		}
	}
	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return NewValidationError(args.ConfigKey, args.ConfigVal, err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	if err := saveConfig(cfg, path); err != nil {
		return NewCommandError("config", "set", "could not save", err)
	}

	fmt.Fprintf(w, "%s %s = %s\n", SuccessStyle.Render("Set"), args.ConfigKey, args.ConfigVal)
	return nil
}

func handleConfigInit(args Args, w io.Writer) error {
	path, err := configPath(args)
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(path); statErr == nil && args.Option("force", "") == "" {
		return NewCommandError("config", "init", path+" already exists (use --force)", nil)
	}
	if err := saveConfig(config.Default(), path); err != nil {
		return NewCommandError("config", "init", "could not write", err)
	}
	fmt.Fprintf(w, "%s %s\n", SuccessStyle.Render("Wrote"), path)
	return nil
}

func handleConfigKeys(args Args, w io.Writer) error {
	keys := config.GetAllKeys()
	if args.JSON {
		return NewJSONResponse("config keys", keys).Write(w)
	}
	cfg := config.Default()
	for _, k := range keys {
		v, _ := cfg.Get(k)
		fmt.Fprintf(w, "%s %v\n", RenderLabel(k), v)
	}
	return nil
}

// =============================================================================
// HIGHLIGHTING
// =============================================================================

// highlightTOML colours a TOML document for the terminal. It returns the
// input unchanged when highlighting fails.
func highlightTOML(src string) string {
	lexer := lexers.Get("toml")
	if lexer == nil {
		lexer = lexers.Analyse(src)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, src)
	if err != nil {
		return src
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return src
	}
	return buf.String()
}
