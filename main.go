// docchat - a terminal client for document chat with knowledge graphs.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"docchat/internal/api"
	"docchat/internal/auth"
	"docchat/internal/cli"
	"docchat/internal/config"
	"docchat/internal/files"
	"docchat/internal/history"
	"docchat/internal/logging"
	"docchat/internal/session"
	"docchat/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := config.EnsureConfigDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	configDir, _ := config.ConfigDir()
	logging.Init(configDir, cfg.Logging.Debug)
	defer logging.Sync()

	client := api.NewClientWithConfig(&api.ClientConfig{
		BaseURL:        cfg.API.BaseURL,
		Timeout:        cfg.Timeout(),
		RequestsPerSec: cfg.API.RequestsPerSec,
	})
	tokens := auth.NewStore(configDir)

	cmd := ""
	args := os.Args[1:]
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	ctx := context.Background()

	switch cmd {
	case "", "tui":
		runTUI(cfg, client, tokens)

	case "login":
		exitOnError(cli.Login(ctx, client, tokens))

	case "register":
		exitOnError(cli.Register(ctx, client, tokens))

	case "logout":
		exitOnError(cli.Logout(tokens))

	case "ask":
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "Usage: docchat ask <chat name>")
			os.Exit(2)
		}
		archive := openArchive(cfg)
		ctrl := session.New(client, tokens, archiverOrNil(archive))
		exitOnError(cli.Ask(ctx, ctrl, strings.Join(args, " ")))
		if archive != nil {
			archive.Close()
		}

	case "history":
		archive := openArchive(cfg)
		if archive == nil {
			fmt.Fprintln(os.Stderr, "Error: history archive is disabled in config")
			os.Exit(1)
		}
		defer archive.Close()
		exitOnError(cli.History(archive, strings.Join(args, " "), 20))

	case "version", "--version", "-v":
		fmt.Printf("docchat %s (%s, built %s)\n", Version, GitCommit, BuildDate)

	case "help", "--help", "-h":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", cmd)
		printUsage()
		os.Exit(2)
	}
}

// runTUI starts the full-screen interface.
func runTUI(cfg *config.Config, client *api.Client, tokens *auth.Store) {
	archive := openArchive(cfg)
	if archive != nil {
		defer archive.Close()
	}
	ctrl := session.New(client, tokens, archiverOrNil(archive))

	var inbox <-chan string
	if cfg.Files.InboxDir != "" {
		watcher, err := files.NewWatcher(cfg.Files.InboxDir, cfg.WatchDebounce())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: inbox watcher unavailable: %v\n", err)
		} else if err := watcher.Watch(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot watch %s: %v\n", cfg.Files.InboxDir, err)
			watcher.Close()
		} else {
			defer watcher.Close()
			inbox = watcher.Events()
		}
	}

	app := ui.NewApp(cfg.UI.Theme, ctrl, client, inbox)
	program := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openArchive opens the local history store, or returns nil when disabled
// or unavailable.
func openArchive(cfg *config.Config) *history.Store {
	if !cfg.History.Enabled {
		return nil
	}
	path, err := cfg.HistoryPath()
	if err != nil {
		return nil
	}
	store, err := history.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: history archive unavailable: %v\n", err)
		return nil
	}
	return store
}

// archiverOrNil avoids handing the controller a typed nil.
func archiverOrNil(store *history.Store) session.Archiver {
	if store == nil {
		return nil
	}
	return store
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`docchat - document chat with knowledge graphs

Usage:
  docchat              Start the TUI
  docchat login        Sign in and store tokens
  docchat register     Create an account
  docchat logout       Erase stored tokens
  docchat ask <chat>   Chat from the command line
  docchat history [q]  Search the local message archive
  docchat version      Print version information

Environment:
  DOCCHAT_API_URL       Override the backend URL
  DOCCHAT_THEME         dark, light, or auto
  DOCCHAT_DEBUG         1 enables debug logging
`)
}
