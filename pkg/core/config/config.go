package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	mdwerror "github.com/msto63/frege/foundation/core/error"
	"github.com/msto63/frege/foundation/expr/grammar"
)

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general"`
	Grammar GrammarConfig `toml:"grammar"`
	Server  ServerConfig  `toml:"server"`
	HTTP    HTTPConfig    `toml:"http"`
	Cache   CacheConfig   `toml:"cache"`
	Store   StoreConfig   `toml:"store"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name        string `toml:"name"`
	Environment string `toml:"environment"`
	DataDir     string `toml:"data_dir"`
	LogLevel    string `toml:"log_level"`
	LogFormat   string `toml:"log_format"`
}

// GrammarConfig holds expression engine settings
type GrammarConfig struct {
	Assoc           string `toml:"assoc"`
	RequireComplete bool   `toml:"require_complete"`
	MaxInputLength  int    `toml:"max_input_length"`
}

// ServerConfig holds gRPC server configuration
type ServerConfig struct {
	Port              int      `toml:"port"`
	Host              string   `toml:"host"`
	MaxRecvMsgSize    int      `toml:"max_recv_msg_size"`
	MaxSendMsgSize    int      `toml:"max_send_msg_size"`
	ConnectionTimeout Duration `toml:"connection_timeout"`
	EnableReflection  bool     `toml:"enable_reflection"`
}

// HTTPConfig holds HTTP gateway configuration
type HTTPConfig struct {
	Enabled      bool       `toml:"enabled"`
	Port         int        `toml:"port"`
	Host         string     `toml:"host"`
	ReadTimeout  Duration   `toml:"read_timeout"`
	WriteTimeout Duration   `toml:"write_timeout"`
	CORS         CORSConfig `toml:"cors"`
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	Enabled        bool     `toml:"enabled"`
	AllowedOrigins []string `toml:"allowed_origins"`
	AllowedMethods []string `toml:"allowed_methods"`
}

// CacheConfig holds parse result cache settings
type CacheConfig struct {
	Enabled bool     `toml:"enabled"`
	MaxSize int      `toml:"max_size"`
	TTL     Duration `toml:"ttl"`
}

// StoreConfig holds parse history settings
type StoreConfig struct {
	Enabled   bool     `toml:"enabled"`
	Path      string   `toml:"path"`
	Retention Duration `toml:"retention"`
}

// Duration wraps time.Duration for TOML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a configuration with all defaults applied
func Default() *Config {
	cfg := &Config{}
	cfg.Cache.Enabled = true
	cfg.Store.Enabled = true
	cfg.HTTP.Enabled = true
	cfg.applyDefaults()
	cfg.expandEnvVars()
	return cfg
}

// Load loads configuration from a TOML file
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, mdwerror.Newf("config file not found: %s", path).
			WithCode(mdwerror.CodeMissingConfig).
			WithOperation("config.Load")
	}

	cfg := &Config{}
	cfg.Cache.Enabled = true
	cfg.Store.Enabled = true
	cfg.HTTP.Enabled = true

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, mdwerror.Wrap(err, "failed to parse config").
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("config.Load").
			WithDetail("path", path)
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv loads configuration from the FREGE_CONFIG environment variable
// or the first default location that exists
func LoadFromEnv() (*Config, error) {
	path := os.Getenv("FREGE_CONFIG")
	if path == "" {
		defaultPaths := []string{
			"./configs/frege.toml",
			"./frege.toml",
			filepath.Join(os.Getenv("HOME"), ".config/frege/config.toml"),
		}
		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return nil, mdwerror.New("no config file found, set FREGE_CONFIG or create configs/frege.toml").
			WithCode(mdwerror.CodeMissingConfig).
			WithOperation("config.LoadFromEnv")
	}

	return Load(path)
}

// LoadOrDefault loads path if given, otherwise tries LoadFromEnv and falls
// back to Default when no file exists anywhere
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	cfg, err := LoadFromEnv()
	if mdwerror.HasCode(err, mdwerror.CodeMissingConfig) {
		return Default(), nil
	}
	return cfg, err
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "frege"
	}
	if c.General.Environment == "" {
		c.General.Environment = "development"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}

	// Grammar
	if c.Grammar.Assoc == "" {
		c.Grammar.Assoc = "right"
	}
	if c.Grammar.MaxInputLength == 0 {
		c.Grammar.MaxInputLength = 4096
	}

	// Server
	if c.Server.Port == 0 {
		c.Server.Port = 9300
	}
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.MaxRecvMsgSize == 0 {
		c.Server.MaxRecvMsgSize = 4 * 1024 * 1024
	}
	if c.Server.MaxSendMsgSize == 0 {
		c.Server.MaxSendMsgSize = 4 * 1024 * 1024
	}
	if c.Server.ConnectionTimeout.Duration == 0 {
		c.Server.ConnectionTimeout.Duration = 120 * time.Second
	}

	// HTTP
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8300
	}
	if c.HTTP.Host == "" {
		c.HTTP.Host = "0.0.0.0"
	}
	if c.HTTP.ReadTimeout.Duration == 0 {
		c.HTTP.ReadTimeout.Duration = 30 * time.Second
	}
	if c.HTTP.WriteTimeout.Duration == 0 {
		c.HTTP.WriteTimeout.Duration = 30 * time.Second
	}
	if len(c.HTTP.CORS.AllowedMethods) == 0 {
		c.HTTP.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}

	// Cache
	if c.Cache.MaxSize == 0 {
		c.Cache.MaxSize = 1024
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = 10 * time.Minute
	}

	// Store
	if c.Store.Path == "" {
		c.Store.Path = filepath.Join(c.General.DataDir, "history.db")
	}
	if c.Store.Retention.Duration == 0 {
		c.Store.Retention.Duration = 30 * 24 * time.Hour
	}
}

// expandEnvVars expands environment variables in configuration values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.Store.Path = os.ExpandEnv(c.Store.Path)
}

// Validate checks values that defaults cannot repair
func (c *Config) Validate() error {
	if _, ok := grammar.ParseAssoc(c.Grammar.Assoc); !ok {
		return invalid("grammar.assoc must be 'left' or 'right'", "grammar.assoc", c.Grammar.Assoc)
	}
	if c.Grammar.MaxInputLength < 0 {
		return invalid("grammar.max_input_length must be positive", "grammar.max_input_length", c.Grammar.MaxInputLength)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return invalid("server.port out of range", "server.port", c.Server.Port)
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return invalid("http.port out of range", "http.port", c.HTTP.Port)
	}
	if c.Cache.MaxSize < 0 {
		return invalid("cache.max_size must be positive", "cache.max_size", c.Cache.MaxSize)
	}
	return nil
}

func invalid(message, key string, value interface{}) error {
	return mdwerror.New(message).
		WithCode(mdwerror.CodeInvalidConfig).
		WithOperation("config.Validate").
		WithDetail("key", key).
		WithDetail("value", value)
}

// Assoc returns the configured associativity
func (c *Config) Assoc() grammar.Assoc {
	a, _ := grammar.ParseAssoc(c.Grammar.Assoc)
	return a
}

// GetServiceAddress returns the listen address of "grpc" or "http"
func (c *Config) GetServiceAddress(service string) string {
	switch service {
	case "grpc":
		return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
	case "http":
		return fmt.Sprintf("%s:%d", c.HTTP.Host, c.HTTP.Port)
	default:
		return ""
	}
}
