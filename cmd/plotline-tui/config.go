package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/plotline-io/plotline/internal/model"
)

// cliConfig holds only TUI-relevant configuration.
type cliConfig struct {
	WarehouseDSN string        `mapstructure:"warehouse-dsn"`
	Schema       string        `mapstructure:"schema"`
	Table        string        `mapstructure:"table"`
	Refresh      time.Duration `mapstructure:"refresh"`
	QueryTimeout time.Duration `mapstructure:"query-timeout"`
}

func loadCLIConfig(configPath string) (cliConfig, error) {
	var cfg cliConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("PLOTLINE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("warehouse-dsn", "")
	v.SetDefault("schema", "public")
	v.SetDefault("table", "")
	v.SetDefault("refresh", model.DefaultRefresh)
	v.SetDefault("query-timeout", 60*time.Second)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "plotline", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
