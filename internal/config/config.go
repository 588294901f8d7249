package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/spendsync/spendsync/internal/model"
	"github.com/spendsync/spendsync/internal/parser"
)

// FileName is the workspace config file.
const FileName = "spendsync.yaml"

// Config represents the top-level spendsync.yaml configuration.
type Config struct {
	Log          LogConfig          `yaml:"log"`
	Server       ServerConfig       `yaml:"server"`
	Ingest       IngestConfig       `yaml:"ingest"`
	Git          GitConfig          `yaml:"git"`
	TestOverride TestOverrideConfig `yaml:"test_override"`
	Rules        []RuleConfig       `yaml:"rules,omitempty"`
}

// LogConfig sets the logger verbosity.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn or error
}

// ServerConfig controls the HTTP parse endpoint.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// IngestConfig controls inbox processing.
type IngestConfig struct {
	Workers int `yaml:"workers"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// TestOverrideConfig routes synthetic test emails to one bank's rule.
type TestOverrideConfig struct {
	Marker string `yaml:"marker"` // empty disables the override
	Bank   string `yaml:"bank"`
}

// RuleConfig is one row of a custom rule table. Rows are dispatched in file order.
type RuleConfig struct {
	Bank     string   `yaml:"bank"`
	Markers  []string `yaml:"markers"`
	Amount   string   `yaml:"amount"`
	Merchant string   `yaml:"merchant"`
}

// Load reads a spendsync.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadRepo loads <repoRoot>/spendsync.yaml, falling back to defaults when it does not exist,
// then applies environment overrides from <repoRoot>/.env and the process environment.
func LoadRepo(repoRoot string) (*Config, error) {
	cfg, err := Load(filepath.Join(repoRoot, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}

	envFile := filepath.Join(repoRoot, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with SPENDSYNC_LOG_LEVEL, SPENDSYNC_ADDR and SPENDSYNC_WORKERS.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv("SPENDSYNC_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("SPENDSYNC_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SPENDSYNC_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing SPENDSYNC_WORKERS %q: %w", v, err)
		}
		cfg.Ingest.Workers = n
	}
	return nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new workspace.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		Ingest: IngestConfig{
			Workers: 4,
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "spendsync",
			AuthorEmail: "spendsync@localhost",
		},
		TestOverride: TestOverrideConfig{
			Marker: parser.DefaultTestMarker,
			Bank:   string(model.BankDBS),
		},
	}
}

// ParserRules compiles the configured rule table, or returns the built-in table when no
// rules are configured.
func (c *Config) ParserRules() ([]parser.Rule, error) {
	if len(c.Rules) == 0 {
		return parser.DefaultRules(), nil
	}
	rules := make([]parser.Rule, 0, len(c.Rules))
	for i, rc := range c.Rules {
		bank, err := model.ParseBank(rc.Bank)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		r, err := parser.Compile(bank, rc.Markers, rc.Amount, rc.Merchant)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// ParserOptions returns the parser options implied by the config.
func (c *Config) ParserOptions() ([]parser.Option, error) {
	if c.TestOverride.Marker == "" {
		return []parser.Option{parser.WithTestOverride("", model.BankUnknown)}, nil
	}
	bank, err := model.ParseBank(c.TestOverride.Bank)
	if err != nil {
		return nil, fmt.Errorf("test_override: %w", err)
	}
	return []parser.Option{parser.WithTestOverride(c.TestOverride.Marker, bank)}, nil
}

// NewParser builds the parser described by the config.
func (c *Config) NewParser(extra ...parser.Option) (*parser.Parser, error) {
	rules, err := c.ParserRules()
	if err != nil {
		return nil, err
	}
	opts, err := c.ParserOptions()
	if err != nil {
		return nil, err
	}
	return parser.New(rules, append(opts, extra...)...), nil
}
