package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Source kinds accepted in source.kind.
var sourceKinds = []string{"generated", "sqlite", "jsonl", "s3", "postgres"}

var pageSizes = []int{10, 25, 50, 100}

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Transport TransportConfig `yaml:"transport"`
	Auth      AuthConfig      `yaml:"auth"`
	Source    SourceConfig    `yaml:"source"`
	View      ViewConfig      `yaml:"view"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"`
}

// AuthConfig maps bearer tokens to client ids.
type AuthConfig struct {
	Enabled bool              `yaml:"enabled"`
	Tokens  map[string]string `yaml:"tokens"`
}

type SourceConfig struct {
	Kind     string         `yaml:"kind"`
	Path     string         `yaml:"path"`
	Count    int            `yaml:"count"`
	Seed     uint64         `yaml:"seed"`
	Latency  time.Duration  `yaml:"latency"`
	S3       S3Config       `yaml:"s3"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Key       string `yaml:"key"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// ViewConfig holds explorer defaults.
type ViewConfig struct {
	PageSize int    `yaml:"page_size"`
	Location string `yaml:"location"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "geodash.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		Source: SourceConfig{
			Kind:    "generated",
			Count:   5000,
			Seed:    1,
			Latency: 200 * time.Millisecond,
		},
		View: ViewConfig{
			PageSize: 10,
			Location: "Local",
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("GEODASH_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("GEODASH_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("GEODASH_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid GEODASH_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("GEODASH_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("GEODASH_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("GEODASH_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if mode := os.Getenv("GEODASH_TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	if tokens := os.Getenv("GEODASH_AUTH_TOKENS"); tokens != "" {
		parsed, err := parseTokens(tokens)
		if err != nil {
			return fmt.Errorf("invalid GEODASH_AUTH_TOKENS: %w", err)
		}
		cfg.Auth.Enabled = true
		cfg.Auth.Tokens = parsed
	}

	if kind := os.Getenv("GEODASH_SOURCE_KIND"); kind != "" {
		cfg.Source.Kind = kind
	}
	if path := os.Getenv("GEODASH_SOURCE_PATH"); path != "" {
		cfg.Source.Path = path
	}
	if countStr := os.Getenv("GEODASH_SOURCE_COUNT"); countStr != "" {
		count, err := strconv.Atoi(countStr)
		if err != nil {
			return fmt.Errorf("invalid GEODASH_SOURCE_COUNT: %w", err)
		}
		cfg.Source.Count = count
	}
	if seedStr := os.Getenv("GEODASH_SOURCE_SEED"); seedStr != "" {
		seed, err := strconv.ParseUint(seedStr, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid GEODASH_SOURCE_SEED: %w", err)
		}
		cfg.Source.Seed = seed
	}
	if latencyStr := os.Getenv("GEODASH_SOURCE_LATENCY"); latencyStr != "" {
		latency, err := time.ParseDuration(latencyStr)
		if err != nil {
			return fmt.Errorf("invalid GEODASH_SOURCE_LATENCY: %w", err)
		}
		cfg.Source.Latency = latency
	}
	if bucket := os.Getenv("GEODASH_S3_BUCKET"); bucket != "" {
		cfg.Source.S3.Bucket = bucket
	}
	if key := os.Getenv("GEODASH_S3_KEY"); key != "" {
		cfg.Source.S3.Key = key
	}
	if region := os.Getenv("GEODASH_S3_REGION"); region != "" {
		cfg.Source.S3.Region = region
	}
	if endpoint := os.Getenv("GEODASH_S3_ENDPOINT"); endpoint != "" {
		cfg.Source.S3.Endpoint = endpoint
	}
	if pathStyle := os.Getenv("GEODASH_S3_PATH_STYLE"); pathStyle != "" {
		cfg.Source.S3.PathStyle = strings.EqualFold(pathStyle, "true")
	}
	if dsn := os.Getenv("GEODASH_POSTGRES_DSN"); dsn != "" {
		cfg.Source.Postgres.DSN = dsn
	}

	if sizeStr := os.Getenv("GEODASH_VIEW_PAGE_SIZE"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil {
			return fmt.Errorf("invalid GEODASH_VIEW_PAGE_SIZE: %w", err)
		}
		cfg.View.PageSize = size
	}
	if loc := os.Getenv("GEODASH_VIEW_LOCATION"); loc != "" {
		cfg.View.Location = loc
	}
	return nil
}

// parseTokens reads "token=client" pairs separated by commas.
func parseTokens(value string) (map[string]string, error) {
	tokens := make(map[string]string)
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, client, ok := strings.Cut(pair, "=")
		if !ok || token == "" || client == "" {
			return nil, fmt.Errorf("expected token=client, got %q", pair)
		}
		tokens[token] = client
	}
	return tokens, nil
}

// Validate checks the settings that cannot be corrected at runtime.
func (c Config) Validate() error {
	if c.Transport.Mode != "stdio" && c.Transport.Mode != "http" {
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	if !slices.Contains(sourceKinds, c.Source.Kind) {
		return fmt.Errorf("invalid source kind %q", c.Source.Kind)
	}
	if c.Source.Count < 0 {
		return fmt.Errorf("invalid source count %d", c.Source.Count)
	}
	if !slices.Contains(pageSizes, c.View.PageSize) {
		return fmt.Errorf("invalid page size %d", c.View.PageSize)
	}
	if _, err := c.View.TimeLocation(); err != nil {
		return err
	}
	if c.Auth.Enabled && len(c.Auth.Tokens) == 0 {
		return fmt.Errorf("auth enabled without tokens")
	}
	return nil
}

// TimeLocation resolves the configured location.
func (v ViewConfig) TimeLocation() (*time.Location, error) {
	if v.Location == "" || v.Location == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(v.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid view location %q: %w", v.Location, err)
	}
	return loc, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
