package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
)

// CloneConfig holds the full TOML-driven clone configuration.
type CloneConfig struct {
	Source SourceConfig `toml:"source"`
	Target TargetConfig `toml:"target"`

	SchemaNames string `toml:"schema_names"` // delimiter-separated schema list
	TableNames  string `toml:"table_names"`  // delimiter-separated table list
	Delimiter   string `toml:"delimiter"`    // single character separating list entries

	DryRun              bool `toml:"dry_run"`
	ContinueOnError     bool `toml:"continue_on_error"`
	TranslateUserTypes  bool `toml:"translate_user_types"`
	PreserveCollation   bool `toml:"preserve_collation"`
	CreateMissingSchema bool `toml:"create_missing_schema"`

	Hooks HooksConfig `toml:"hooks"`

	// configDir is the directory containing the TOML file, used to resolve
	// relative hook-script paths.
	configDir string
}

// SourceConfig identifies the source SQL Server database.
type SourceConfig struct {
	DSN string `toml:"dsn"`
}

// TargetConfig identifies the destination. An empty DSN clones within the
// source database.
type TargetConfig struct {
	DSN string `toml:"dsn"`
}

// HooksConfig lists SQL script files run around the clone phases.
type HooksConfig struct {
	BeforeDDL []string `toml:"before_ddl"`
	AfterAll  []string `toml:"after_all"`
}

// loadConfig reads a TOML config file and returns a CloneConfig with defaults
// applied.
func loadConfig(path string) (*CloneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := CloneConfig{
		Delimiter:           ";",
		CreateMissingSchema: true,
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if unknown := md.Undecoded(); len(unknown) > 0 {
		keys := make([]string, len(unknown))
		for i, k := range unknown {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	cfg.configDir = filepath.Dir(absPath)

	if cfg.Source.DSN == "" {
		return nil, fmt.Errorf("source.dsn is required")
	}
	if strings.TrimSpace(cfg.SchemaNames) == "" {
		return nil, fmt.Errorf("schema_names is required")
	}
	if strings.TrimSpace(cfg.TableNames) == "" {
		return nil, fmt.Errorf("table_names is required")
	}
	if utf8.RuneCountInString(cfg.Delimiter) != 1 {
		return nil, fmt.Errorf("delimiter must be exactly one character, got %q", cfg.Delimiter)
	}

	return &cfg, nil
}

// delimiterRune returns the configured delimiter as a rune. Valid after
// loadConfig has enforced the single-character rule.
func (c *CloneConfig) delimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

// resolvePath resolves a path relative to the config file directory.
func (c *CloneConfig) resolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.configDir, p)
}
