package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/plotline-io/plotline/internal/model"
	"github.com/plotline-io/plotline/internal/tui"
	"github.com/plotline-io/plotline/internal/warehouse"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath string
	var tableArg string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/plotline/config.yml)")
	flag.StringVar(&tableArg, "table", "", "warehouse table to watch (overrides config)")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("Plotline CLI - Dashboard Client\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadCLIConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if tableArg != "" {
		cfg.Table = tableArg
	}

	if err := runTUI(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(cfg cliConfig) error {
	if cfg.WarehouseDSN == "" {
		return fmt.Errorf("warehouse-dsn is required (config file or PLOTLINE_WAREHOUSE_DSN)")
	}
	if cfg.Table == "" {
		return fmt.Errorf("no table selected; pass -table or set it in the config")
	}

	store, err := warehouse.NewStore(context.Background(), cfg.WarehouseDSN, cfg.QueryTimeout)
	if err != nil {
		return fmt.Errorf("cannot connect to warehouse: %w", err)
	}
	defer store.Close()

	table := model.TableRef{Schema: cfg.Schema, Table: cfg.Table}
	if schema, name, ok := strings.Cut(cfg.Table, "."); ok {
		table = model.TableRef{Schema: schema, Table: name}
	}

	dashboard := tui.NewDashboardModel(store, table, cfg.Refresh)

	p := tea.NewProgram(dashboard, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
