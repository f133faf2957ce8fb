package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/plotline-io/plotline/internal/httpserver"
	"github.com/plotline-io/plotline/internal/summarycache"
	"github.com/plotline-io/plotline/internal/warehouse"
)

// runServer connects to the warehouse and serves the summary API.
func runServer(cfg appConfig) error {
	cleanupLogger := configureRuntimeLogger()
	defer cleanupLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := warehouse.NewStore(ctx, cfg.WarehouseDSN, cfg.QueryTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to warehouse: %w", err)
	}
	defer store.Close()
	store.SetMaxConcurrentQueries(cfg.MaxConcurrentReads)

	var serverOpts []httpserver.Option
	if cfg.CacheEnabled {
		cache, err := summarycache.NewStore(cfg.CachePath, cfg.QueryTimeout)
		if err != nil {
			return fmt.Errorf("failed to open summary cache: %w", err)
		}
		defer cache.Close()

		cacheBuf := summarycache.NewWriteBuffer(cache, summarycache.WriteBufferConfig{
			BatchSize:     cfg.CacheBatchSize,
			FlushInterval: cfg.CacheFlushInterval,
			TTL:           cfg.CacheTTL,
		})
		defer cacheBuf.Stop()

		cleaner := summarycache.NewRetentionCleaner(cache, summarycache.RetentionConfig{
			Interval: cfg.CacheSweep,
		})
		if cleaner != nil {
			defer cleaner.Stop()
		}

		serverOpts = append(serverOpts, httpserver.WithCache(cache, cacheBuf))
	}
	if cfg.JWTSecret != "" {
		serverOpts = append(serverOpts, httpserver.WithJWTSecret(cfg.JWTSecret))
	}

	if cfg.APIEnabled {
		apiServer := httpserver.NewServer(cfg.APIAddr, store, serverOpts...)
		if err := apiServer.Start(); err != nil {
			return fmt.Errorf("failed to start API server: %w", err)
		}
		defer apiServer.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down gracefully... (press Ctrl+C again to force)")
		cancel()

		// Shutdown deadline starts now — not at boot.
		deadline := time.NewTimer(10 * time.Second)
		defer deadline.Stop()

		select {
		case <-sigCh:
			fmt.Println("\nForce shutdown.")
		case <-deadline.C:
			fmt.Println("Shutdown timed out, forcing exit.")
		}
		os.Exit(1)
	}()

	printStartupBanner(cfg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Printf("server: errgroup exited with error: %v", err)
	}

	signal.Stop(sigCh)
	return nil
}

func configureRuntimeLogger() func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	home, err := os.UserHomeDir()
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	logDir := filepath.Join(home, ".local", "state", "plotline")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	logPath := filepath.Join(logDir, "plotline.log")
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	log.SetOutput(f)
	return func() {
		_ = f.Close()
	}
}

func printStartupBanner(cfg appConfig) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")

	logo := cyan.Bold(true).Render(`
    ╔═╗╦  ╔═╗╔╦╗╦  ╦╔╗╔╔═╗
    ╠═╝║  ║ ║ ║ ║  ║║║║║╣
    ╩  ╩═╝╚═╝ ╩ ╩═╝╩╝╚╝╚═╝`)

	ver := dim.Render("v" + version)

	var lines []string
	lines = append(lines, "")
	lines = append(lines, logo)
	lines = append(lines, "    "+ver)
	lines = append(lines, "")

	separator := dim.Render("    ─────────────────────────────────")
	lines = append(lines, separator)
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Gateway"))
	lines = append(lines, "")
	if cfg.APIEnabled {
		lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", check, cyan.Render(cfg.APIAddr)))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", dot, dim.Render("disabled")))
	}
	if cfg.JWTSecret != "" {
		lines = append(lines, fmt.Sprintf("    %s  Auth           %s", check, dim.Render("bearer token")))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Auth           %s", dot, dim.Render("open")))
	}
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Storage"))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("    %s  Warehouse      %s", check, dim.Render(redactDSN(cfg.WarehouseDSN))))
	if cfg.CacheEnabled {
		lines = append(lines, fmt.Sprintf("    %s  Summary Cache  %s", check, dim.Render(shortenPath(cfg.CachePath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Summary Cache  %s", dot, dim.Render("disabled")))
	}
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Config"))
	lines = append(lines, "")
	if cfg.ConfigPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", check, dim.Render(shortenPath(cfg.ConfigPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", dot, dim.Render("default (no file)")))
	}

	lines = append(lines, "")
	lines = append(lines, separator)
	lines = append(lines, "")
	lines = append(lines, "    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"))
	lines = append(lines, "")

	fmt.Println(strings.Join(lines, "\n"))
}

// redactDSN hides credentials when echoing the warehouse DSN at startup.
func redactDSN(dsn string) string {
	if at := strings.LastIndex(dsn, "@"); at != -1 {
		if scheme := strings.Index(dsn, "://"); scheme != -1 && scheme+3 < at {
			return dsn[:scheme+3] + "***" + dsn[at:]
		}
	}
	return dsn
}

func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
