// Copyright 2026 The Infopath Extractor Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"filippo.io/age"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the config file for [Load].
const EnvironmentVariable = "INFOPATH_CONFIG"

// Config is the complete extractor configuration.
type Config struct {
	// Source is a directory searched recursively for .xml files, or a
	// single XML file.
	Source string `yaml:"source"`

	// Destination receives one subdirectory per processed document.
	Destination string `yaml:"destination"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Selector SelectorConfig `yaml:"selector"`
	Decoder  DecoderConfig  `yaml:"decoder"`
	Output   OutputConfig   `yaml:"output"`
}

// SelectorConfig selects candidate attachment elements.
type SelectorConfig struct {
	// FieldPattern is a regular expression matched against element
	// local names. Default: ^felt\d+
	FieldPattern string `yaml:"field_pattern"`

	// Namespace restricts matches to one namespace URI. Default: any.
	Namespace string `yaml:"namespace"`
}

// DecoderConfig configures container decoding.
type DecoderConfig struct {
	// StrictHeaderSize rejects containers whose header size field is
	// not 24 instead of logging a warning. Default: false
	StrictHeaderSize bool `yaml:"strict_header_size"`
}

// OutputConfig configures what is written.
type OutputConfig struct {
	// PrefixDocumentName names attachments "<document> - <filename>".
	// Default: true
	PrefixDocumentName bool `yaml:"prefix_document_name"`

	// CopySource copies each XML file into its output directory.
	// Default: true
	CopySource bool `yaml:"copy_source"`

	// Manifest writes "<document>.manifest.cbor" per document.
	// Default: false
	Manifest bool `yaml:"manifest"`

	// Compression is none, zstd, or lz4. Default: none
	Compression string `yaml:"compression"`

	// Recipients are age public keys (age1...). When set, every
	// attachment is encrypted to all of them.
	Recipients []string `yaml:"recipients"`

	// Workers is the number of documents processed concurrently.
	// Default: 4
	Workers int `yaml:"workers"`
}

// Default returns the configuration used before any file is applied.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Selector: SelectorConfig{
			FieldPattern: `^felt\d+`,
		},
		Output: OutputConfig{
			PrefixDocumentName: true,
			CopySource:         true,
			Compression:        "none",
			Workers:            4,
		},
	}
}

// Load loads the file named by INFOPATH_CONFIG.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your config file, or use --config", EnvironmentVariable)
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path on top of [Default].
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// JSON is read by the YAML decoder. YAML rejects tab
		// indentation, and a tab can only appear between JSON tokens
		// (never inside a string), so tabs are blanked.
		data = bytes.ReplaceAll(jsonc.ToJSON(data), []byte("\t"), []byte(" "))
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) expandVariables() {
	c.Source = expandVars(c.Source)
	c.Destination = expandVars(c.Destination)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} from the environment.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var errs []error

	if c.Source == "" {
		errs = append(errs, errors.New("source is required"))
	}
	if c.Destination == "" {
		errs = append(errs, errors.New("destination is required"))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log_level %q (want debug, info, warn, or error)", c.LogLevel))
	}

	if _, err := regexp.Compile(c.Selector.FieldPattern); err != nil {
		errs = append(errs, fmt.Errorf("selector.field_pattern: %w", err))
	}

	switch c.Output.Compression {
	case "", "none", "zstd", "lz4":
	default:
		errs = append(errs, fmt.Errorf("invalid output.compression %q (want none, zstd, or lz4)", c.Output.Compression))
	}

	for _, key := range c.Output.Recipients {
		if _, err := age.ParseX25519Recipient(strings.TrimSpace(key)); err != nil {
			errs = append(errs, fmt.Errorf("output.recipients: %q: %w", key, err))
		}
	}

	if c.Output.Workers < 1 {
		errs = append(errs, fmt.Errorf("output.workers must be at least 1, got %d", c.Output.Workers))
	}

	return errors.Join(errs...)
}
