/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"sitecanvas/internal/backend"
	"sitecanvas/internal/cache"
	"sitecanvas/internal/config"
	"sitecanvas/internal/crash"
	"sitecanvas/internal/export"
	applog "sitecanvas/internal/log"
	"sitecanvas/internal/persist"
	"sitecanvas/internal/server"
	"sitecanvas/internal/store"
	"sitecanvas/internal/telemetry"
	"sitecanvas/internal/version"
)

func usage() {
	fmt.Println("SiteCanvas — visual page editor storage and tooling")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  sitecanvas version|-v|--version     Show version")
	fmt.Println("  sitecanvas serve                    Run the storage service (Postgres when DATABASE_URL is set)")
	fmt.Println("  sitecanvas export [<out.pdf>]       Export the portfolio as a PDF summary")
	fmt.Println("  sitecanvas reset                    Clear all locally and remotely saved content")
	fmt.Println("  sitecanvas token set <token>        Store the backend API token in the OS keyring")
	fmt.Println("  sitecanvas token clear              Remove the backend API token from the OS keyring")
}

// stderrNotifier surfaces coordinator warnings on the terminal.
type stderrNotifier struct{}

func (stderrNotifier) Warn(msg string) { fmt.Fprintln(os.Stderr, "Warning:", msg) }

// stdinConfirmer asks before destructive flows.
type stdinConfirmer struct{}

func (stdinConfirmer) Confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	s := strings.ToLower(strings.TrimSpace(line))
	return s == "y" || s == "yes"
}

func main() {
	cfg, token, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	l := applog.WithComponent("cli")
	if cfg.General.TelemetryOptIn {
		// telemetry reads env; bridge the config opt-in before first use
		_ = os.Setenv(config.EnvTelemetryOptIn, "1")
	}

	var flusher crash.Flusher
	reportDir := filepath.Join(filepath.Dir(cfg.Storage.CacheDir), "crash")
	defer func() { crash.Recover(flusher, reportDir) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println(version.String())
		return
	case "serve":
		if err := runServe(ctx, cfg, token); err != nil {
			l.Error("serve failed", slog.Any("err", err))
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		return
	case "export":
		out := filepath.Join(".", "exports", "portfolio.pdf")
		if len(args) >= 3 {
			out = args[2]
		}
		if err := runExport(ctx, cfg, token, out, &flusher); err != nil {
			l.Error("export failed", slog.Any("err", err))
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		fmt.Println("Exported portfolio to", out)
		return
	case "reset":
		done, err := runReset(ctx, cfg, token, &flusher)
		if err != nil {
			l.Error("reset failed", slog.Any("err", err))
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		if done {
			fmt.Println("All saved content cleared.")
		} else {
			fmt.Println("Reset cancelled.")
		}
		return
	case "token":
		if len(args) < 3 {
			usage()
			os.Exit(2)
		}
		switch args[2] {
		case "set":
			if len(args) < 4 {
				fmt.Println("token set requires a value")
				os.Exit(2)
			}
			if err := config.Save(cfg, args[3]); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
			fmt.Println("Token stored in the OS keyring.")
		case "clear":
			if err := config.ClearToken(); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
			fmt.Println("Token removed from the OS keyring.")
		default:
			usage()
			os.Exit(2)
		}
		return
	}

	usage()
}

func runServe(ctx context.Context, cfg config.AppConfig, token string) error {
	l := applog.WithComponent("cli")
	var blobs server.BlobStore
	if cfg.Server.DBURL != "" {
		pg, err := server.NewPGStore(ctx, cfg.Server.DBURL)
		if err != nil {
			return fmt.Errorf("open postgres blob store: %w", err)
		}
		defer pg.Close()
		blobs = pg
		l.Info("using postgres blob store")
	} else {
		fs, err := server.NewFSStore(cfg.Server.BlobDir)
		if err != nil {
			return fmt.Errorf("open filesystem blob store: %w", err)
		}
		blobs = fs
		l.Info("using filesystem blob store", slog.String("dir", cfg.Server.BlobDir))
	}
	srv := server.New(blobs, server.Options{
		Addr:          cfg.Server.Addr,
		Token:         token,
		PublicBaseURL: cfg.Server.PublicBaseURL,
	})
	return srv.Run(ctx)
}

// openCoordinator wires the store, local cache, and remote client into a
// persistence coordinator and loads the saved document.
func openCoordinator(ctx context.Context, cfg config.AppConfig, token string) (*store.Store, *persist.Coordinator, func(), error) {
	kv, err := cache.Open(cfg.Storage.CacheDir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open local cache: %w", err)
	}
	remote := backend.NewClient(cfg.Backend.BaseURL, token)
	st := store.New()
	coord := persist.New(st, kv, remote, stderrNotifier{}, persist.Options{
		StaticDir: cfg.Storage.StaticDir,
		DevMode:   cfg.General.DevMode,
	})
	if err := coord.Load(ctx); err != nil {
		_ = kv.Close()
		return nil, nil, nil, err
	}
	return st, coord, func() { _ = kv.Close() }, nil
}

func runExport(ctx context.Context, cfg config.AppConfig, token, out string, flusher *crash.Flusher) error {
	st, coord, closeFn, err := openCoordinator(ctx, cfg, token)
	if err != nil {
		return err
	}
	defer closeFn()
	*flusher = coord

	snap := st.Snapshot()
	if err := export.ExportPortfolioPDF(snap.Projects, out, export.PDFOptions{
		Title:       "Portfolio",
		IncludeURLs: true,
	}); err != nil {
		return err
	}
	telemetry.ExportCompleted(len(snap.Projects))
	return nil
}

func runReset(ctx context.Context, cfg config.AppConfig, token string, flusher *crash.Flusher) (bool, error) {
	_, coord, closeFn, err := openCoordinator(ctx, cfg, token)
	if err != nil {
		return false, err
	}
	defer closeFn()
	*flusher = coord

	done, err := coord.Reset(ctx, stdinConfirmer{})
	if err == nil && done {
		telemetry.ResetPerformed()
	}
	return done, err
}
