// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation.
//
// Command: config [subcommand]
//
// Subcommands:
//   show (default)      Display every setting
//   get <key>           Print one setting
//   set <key> <value>   Change a setting and save the file
//   path                Show the configuration file location
//
// Examples:
//   orderdesk config
//   orderdesk config get gateway.base_url
//   orderdesk config set gateway.timeout_secs 15
//   orderdesk config set ui.theme mono
//   orderdesk config show --json

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/orderdesk/internal/config"
)

// HandleConfig handles the "config" command.
func (e *Env) HandleConfig(args Args) error {
	p := NewArgParser(args.Raw)
	path, err := configPath(args)
	if err != nil {
		return err
	}

	switch sub := p.Subcommand(); sub {
	case "", "show", "list":
		settings := make(map[string]interface{})
		for _, key := range config.Keys() {
			v, err := e.Config.Get(key)
			if err != nil {
				continue
			}
			settings[key] = v
		}
		return e.emit("config", ConfigData{Path: path, Settings: settings}, func() {
			fmt.Fprintln(e.Out, TitleStyle.Render("Configuration"))
			fmt.Fprintln(e.Out, DimStyle.Render(path))
			fmt.Fprintln(e.Out)
			section := ""
			for _, key := range config.Keys() {
				v, ok := settings[key]
				if !ok {
					continue
				}
				head, name, _ := strings.Cut(key, ".")
				if head != section {
					if section != "" {
						fmt.Fprintln(e.Out)
					}
					section = head
					fmt.Fprintln(e.Out, HeaderStyle.Render("["+head+"]"))
				}
				fmt.Fprintf(e.Out, "  %s%v\n", RenderLabel(name), v)
			}
		})

	case "get":
		key := p.Positional(1)
		if key == "" {
			return ErrMissingArgument("key", "orderdesk config get gateway.base_url")
		}
		v, err := e.Config.Get(key)
		if err != nil {
			return &ValidationError{Field: "key", Value: key, Reason: err.Error()}
		}
		return e.emit("config", map[string]interface{}{key: v}, func() {
			fmt.Fprintln(e.Out, v)
		})

	case "set":
		key, value := p.Positional(1), strings.Join(p.PositionalFrom(2), " ")
		if key == "" || value == "" {
			return ErrMissingArgument("key and value", "orderdesk config set ui.theme dark")
		}
		// Edit the file's own contents; env and --gateway overrides stay off disk.
		onDisk, err := config.LoadFile(path)
		if err != nil {
			return NewCommandError("config", "set", "could not read "+path, err)
		}
		if err := onDisk.Set(key, value); err != nil {
			return &ValidationError{Field: "key", Value: key, Reason: err.Error()}
		}
		if err := onDisk.Validate(); err != nil {
			return err
		}
		if err := save(onDisk, path); err != nil {
			return NewCommandError("config", "set", "could not write "+path, err)
		}
		_ = e.Config.Set(key, value)
		v, _ := onDisk.Get(key)
		return e.emit("config", map[string]interface{}{key: v}, func() {
			fmt.Fprintf(e.Out, "%s %s = %v\n", SuccessStyle.Render("[OK]"), key, v)
		})

	case "path":
		return e.emit("config", ConfigData{Path: path}, func() {
			fmt.Fprintln(e.Out, path)
		})

	default:
		return ErrUnknownSubcommand("config", sub, []string{"show", "get", "set", "path"})
	}
}

func configPath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	tomlPath, err := config.ConfigPathTOML()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath, nil
	}
	jsonPath, err := config.ConfigPathJSON()
	if err == nil {
		if _, serr := os.Stat(jsonPath); serr == nil {
			return jsonPath, nil
		}
	}
	return tomlPath, nil
}

func save(cfg *config.Config, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return config.SaveJSON(cfg, path)
	}
	return config.SaveTOML(cfg, path)
}
