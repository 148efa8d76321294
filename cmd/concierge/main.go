// Cappi - Safety-Aware Travel Concierge
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cappi

// Package main is the entry point of the Cappi concierge.
//
// Cappi recommends places and experiences in Latin-American cities with
// personal safety weighted above everything else, and assembles the context
// a conversational assistant needs about a traveler.
//
// # Modes
//
//	concierge [serve]                          run the daemon under the supervisor tree
//	concierge recommend -user U -city C [...]  generate, persist and print one recommendation
//	concierge enrich -user U [-city C] [-trip T]
//	concierge history -user U [-limit N]
//	concierge check -lat LAT -lng LNG          classify a coordinate against the zones
//
// The daemon refreshes safety zones on SAFETY_REFRESH_SCHEDULE, consumes
// recommendation events when EVENTS_BACKEND=memory and serves Prometheus
// metrics on METRICS_ADDR.
//
// # Configuration
//
// Configuration is layered with koanf (highest priority wins):
//   - Environment variables, optionally from a .env file
//   - Config file (CONFIG_PATH, config.yaml, /etc/cappi/config.yaml)
//   - Built-in defaults
//
// See internal/config for the full variable list.
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The supervisor stops its
// services, then the record store and DuckDB are closed.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tomtom215/cappi/internal/config"
	"github.com/tomtom215/cappi/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		return 1
	}

	cfg, err := config.LoadWithKoanf()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}
	initLogging(&cfg.Logging)

	command := "serve"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := dispatch(ctx, cfg, command, args, stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		logging.Error().Err(err).Str("command", command).Msg("Command failed")
		return 1
	}
	return 0
}

func initLogging(cfg *config.LoggingConfig) {
	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Level
	logCfg.Format = cfg.Format
	logCfg.Caller = cfg.Caller
	logging.Init(logCfg)
}
