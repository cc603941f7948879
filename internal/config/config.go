// Package config loads and holds all cache daemon configuration.
// Settings are layered: defaults → cache-config.json → environment
// variables → command-line flags (each layer overrides the last).
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"strconv"
)

// Config holds the full cache daemon configuration.
type Config struct {
	MaxMemBytes int    `json:"maxMemBytes"`
	BindAddress string `json:"bindAddress"`
	Port        int    `json:"port"`
	Threads     int    `json:"threads"`
	Policy      string `json:"policy"` // "none", "fifo", or "lru"
	LogLevel    string `json:"logLevel"`

	AdminPort  int    `json:"adminPort"` // 0 disables the admin server
	AdminToken string `json:"adminToken"`
}

// Load returns config with defaults overridden by cache-config.json, then
// environment variables, then the command-line flags in args (args excludes
// the program name, mirroring flag.CommandLine.Parse).
func Load(args []string) *Config {
	cfg := defaults()
	loadFile(cfg, "cache-config.json")
	loadEnv(cfg)
	loadFlags(cfg, args)
	return cfg
}

func defaults() *Config {
	return &Config{
		MaxMemBytes: 10,
		BindAddress: "127.0.0.1",
		Port:        65413,
		Threads:     1,
		Policy:      "fifo",
		LogLevel:    "info",
		AdminPort:   0,
	}
}

func loadFile(cfg *Config, path string) {
	data, err := os.ReadFile(path) //nolint:gosec // G703: path is a controlled config file path, not user input
	if err != nil {
		return // file is optional
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		log.Printf("[CONFIG] Warning: could not parse %s: %v", path, err)
	} else {
		log.Printf("[CONFIG] Loaded %s", path)
	}
}

func loadEnv(cfg *Config) {
	if v := os.Getenv("CACHE_MAXMEM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxMemBytes = n
		}
	}
	if v := os.Getenv("CACHE_BIND_ADDRESS"); v != "" {
		cfg.BindAddress = v
	}
	if v := os.Getenv("CACHE_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Port = n
		}
	}
	if v := os.Getenv("CACHE_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Threads = n
		}
	}
	if v := os.Getenv("CACHE_POLICY"); v != "" {
		cfg.Policy = v
	}
	if v := os.Getenv("CACHE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CACHE_ADMIN_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AdminPort = n
		}
	}
	if v := os.Getenv("CACHE_ADMIN_TOKEN"); v != "" {
		cfg.AdminToken = v
	}
}

// loadFlags parses the server's original command-line flags
// (-m -s -p -t), plus the daemon's Go-native additions
// (-policy -log-level -admin-port -admin-token). Flags left unset on the
// command line do not override values already set by file or environment.
func loadFlags(cfg *Config, args []string) {
	fs := flag.NewFlagSet("cacheserver", flag.ExitOnError)
	maxmem := fs.Int("m", cfg.MaxMemBytes, "maximum cache size in bytes")
	bind := fs.String("s", cfg.BindAddress, "bind address")
	port := fs.Int("p", cfg.Port, "listen port")
	threads := fs.Int("t", cfg.Threads, "worker thread count (bounds concurrent connections)")
	policy := fs.String("policy", cfg.Policy, "eviction policy: none, fifo, or lru")
	logLevel := fs.String("log-level", cfg.LogLevel, "log level: debug, info, warn, or error")
	adminPort := fs.Int("admin-port", cfg.AdminPort, "admin server port (0 disables it)")
	adminToken := fs.String("admin-token", cfg.AdminToken, "bearer token required by the admin server")

	if err := fs.Parse(args); err != nil {
		log.Fatalf("[CONFIG] invalid flags: %v", err)
	}

	cfg.MaxMemBytes = *maxmem
	cfg.BindAddress = *bind
	cfg.Port = *port
	cfg.Threads = *threads
	cfg.Policy = *policy
	cfg.LogLevel = *logLevel
	cfg.AdminPort = *adminPort
	cfg.AdminToken = *adminToken
}
