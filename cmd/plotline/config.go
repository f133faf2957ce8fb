package main

import "time"

const (
	defaultBindHost           = "127.0.0.1"
	defaultAPIPort            = 3000
	defaultQueryTimeout       = 60 * time.Second
	defaultMaxConcurrentReads = 8
	defaultCacheTTL           = 15 * time.Minute
	defaultCacheSweep         = 1 * time.Hour
	defaultCacheBatchSize     = 64
	defaultCacheFlushInterval = 250 * time.Millisecond
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	WarehouseDSN       string        `mapstructure:"warehouse-dsn"`
	Schema             string        `mapstructure:"schema"`
	QueryTimeout       time.Duration `mapstructure:"query-timeout"`
	MaxConcurrentReads int           `mapstructure:"max-concurrent-queries"`
	APIEnabled         bool          `mapstructure:"api-enabled"`
	APIPort            int           `mapstructure:"api-port"`
	APIAddr            string        `mapstructure:"api-addr"`
	JWTSecret          string        `mapstructure:"jwt-secret"`
	CacheEnabled       bool          `mapstructure:"cache-enabled"`
	CachePath          string        `mapstructure:"cache-path"`
	CacheTTL           time.Duration `mapstructure:"cache-ttl"`
	CacheSweep         time.Duration `mapstructure:"cache-sweep-interval"`
	CacheBatchSize     int           `mapstructure:"cache-batch-size"`
	CacheFlushInterval time.Duration `mapstructure:"cache-flush-interval"`
	ConfigPath         string        `mapstructure:"-"` // not from config file
}
