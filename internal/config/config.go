package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcncl/terse/internal/batch"
	"github.com/mcncl/terse/internal/bridge"
	"github.com/mcncl/terse/internal/errors"
	"github.com/mcncl/terse/internal/formatter"
	"github.com/mcncl/terse/internal/parser"
	"gopkg.in/yaml.v3"
)

// MaxIndent bounds the pretty-print indent width.
const MaxIndent = 16

// Diagnostic output formats.
const (
	DiagnosticsText = "text"
	DiagnosticsJSON = "json"
)

// Config represents the complete configuration for terse
type Config struct {
	Encode EncodeConfig `yaml:"encode"`
	Decode DecodeConfig `yaml:"decode"`
	Bridge BridgeConfig `yaml:"bridge"`
	Batch  BatchConfig  `yaml:"batch"`
	Output OutputConfig `yaml:"output"`
	Dev    DevConfig    `yaml:"dev"`
}

// EncodeConfig controls the layout of emitted terse text
type EncodeConfig struct {
	Pretty bool `yaml:"pretty"`
	Indent int  `yaml:"indent"`
}

// DecodeConfig controls parsing
type DecodeConfig struct {
	PreserveComments bool `yaml:"preserve_comments"`
	MaxDepth         int  `yaml:"max_depth"`
}

// BridgeConfig controls JSON import
type BridgeConfig struct {
	KeyStyle      string `yaml:"key_style"`
	AllowComments bool   `yaml:"allow_comments"`
}

// BatchConfig controls line-delimited processing
type BatchConfig struct {
	MaxLineBytes int  `yaml:"max_line_bytes"`
	StopOnError  bool `yaml:"stop_on_error"`
}

// OutputConfig controls how results and diagnostics are reported
type OutputConfig struct {
	Diagnostics string `yaml:"diagnostics"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Encode: EncodeConfig{
			Pretty: false,
			Indent: formatter.DefaultIndent,
		},
		Decode: DecodeConfig{
			PreserveComments: false,
			MaxDepth:         parser.DefaultMaxDepth,
		},
		Bridge: BridgeConfig{
			KeyStyle:      string(bridge.KeyStylePreserve),
			AllowComments: true,
		},
		Batch: BatchConfig{
			MaxLineBytes: batch.DefaultMaxLineBytes,
			StopOnError:  false,
		},
		Output: OutputConfig{
			Diagnostics: DiagnosticsText,
		},
		Dev: DevConfig{
			Debug: false,
		},
	}
}

// Validate checks value ranges and enumerations
func (c *Config) Validate() error {
	if c.Encode.Indent < 0 || c.Encode.Indent > MaxIndent {
		return errors.NewConfigError(
			fmt.Sprintf("encode.indent must be between 0 and %d, got %d", MaxIndent, c.Encode.Indent),
			nil,
		)
	}
	if c.Decode.MaxDepth < 0 {
		return errors.NewConfigError(
			fmt.Sprintf("decode.max_depth must not be negative, got %d", c.Decode.MaxDepth),
			nil,
		)
	}
	if !bridge.IsKeyStyle(c.Bridge.KeyStyle) {
		styles := make([]string, len(bridge.KeyStyles))
		for i, s := range bridge.KeyStyles {
			styles[i] = string(s)
		}
		return errors.NewConfigError(
			fmt.Sprintf("unknown bridge.key_style %q (want one of %s)", c.Bridge.KeyStyle, strings.Join(styles, ", ")),
			nil,
		)
	}
	if c.Batch.MaxLineBytes < 0 {
		return errors.NewConfigError(
			fmt.Sprintf("batch.max_line_bytes must not be negative, got %d", c.Batch.MaxLineBytes),
			nil,
		)
	}
	switch c.Output.Diagnostics {
	case DiagnosticsText, DiagnosticsJSON:
	default:
		return errors.NewConfigError(
			fmt.Sprintf("unknown output.diagnostics %q (want text or json)", c.Output.Diagnostics),
			nil,
		)
	}
	return nil
}

// ParseOptions returns the decoder options for this config
func (c *Config) ParseOptions() parser.Options {
	return parser.Options{
		PreserveComments: c.Decode.PreserveComments,
		MaxDepth:         c.Decode.MaxDepth,
	}
}

// FormatOptions returns the encoder options for this config
func (c *Config) FormatOptions() formatter.Options {
	return formatter.Options{Pretty: c.Encode.Pretty, Indent: c.Encode.Indent}
}

// BridgeOptions returns the JSON import options for this config
func (c *Config) BridgeOptions() bridge.Options {
	return bridge.Options{
		AllowComments: c.Bridge.AllowComments,
		KeyStyle:      bridge.KeyStyle(c.Bridge.KeyStyle),
	}
}

// BatchOptions returns the line-delimited processing options for this config
func (c *Config) BatchOptions() batch.Options {
	return batch.Options{
		MaxLineBytes: c.Batch.MaxLineBytes,
		StopOnError:  c.Batch.StopOnError,
		Parse:        c.ParseOptions(),
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".terse.yml", ".terse.yaml", "terse.yml", "terse.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Overrides holds values given explicitly on the command line. Nil pointers
// and empty strings mean the flag was not set.
type Overrides struct {
	Pretty           *bool
	Indent           *int
	PreserveComments *bool
	KeyStyle         string
	AllowComments    *bool
	StopOnError      *bool
	Diagnostics      string
	Debug            *bool
}

// MergeConfigs applies the explicitly set overrides on top of a copy of base
func MergeConfigs(base *Config, override Overrides) *Config {
	merged := *base

	if override.Pretty != nil {
		merged.Encode.Pretty = *override.Pretty
	}
	if override.Indent != nil {
		merged.Encode.Indent = *override.Indent
	}
	if override.PreserveComments != nil {
		merged.Decode.PreserveComments = *override.PreserveComments
	}
	if override.KeyStyle != "" {
		merged.Bridge.KeyStyle = override.KeyStyle
	}
	if override.AllowComments != nil {
		merged.Bridge.AllowComments = *override.AllowComments
	}
	if override.StopOnError != nil {
		merged.Batch.StopOnError = *override.StopOnError
	}
	if override.Diagnostics != "" {
		merged.Output.Diagnostics = override.Diagnostics
	}
	if override.Debug != nil {
		merged.Dev.Debug = *override.Debug
	}

	return &merged
}

// LoadConfigWithCLI loads config with CLI argument precedence:
// CLI > config file > defaults. An empty configPath skips the file.
func LoadConfigWithCLI(configPath string, override Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	merged := MergeConfigs(cfg, override)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}
