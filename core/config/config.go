// Package config holds the configuration surface of csvexec: the command
// template, the CSV dialect and the placeholder pattern. Everything here is
// parsed and validated once, before the first record is read.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Flag defaults, mirrored in the CLI help text.
const (
	DefaultDelimiter     = ","
	DefaultQuote         = `"`
	DefaultArgRegex      = `\$([0-9]+)`
	DefaultNewColumnName = "Result"
)

// Config describes one run. Flags write into it directly; a YAML file may
// supply values for any field, with flags taking precedence.
type Config struct {
	Input         string `json:"input"`
	Output        string `json:"output"`
	Exec          string `json:"exec" validate:"required"`
	NoHeader      bool   `json:"no_header"`
	Delimiter     string `json:"delimiter" validate:"required"`
	Quote         string `json:"quote" validate:"required"`
	ArgRegex      string `json:"arg_regex" validate:"required"`
	NewColumnName string `json:"new_column_name" validate:"required"`
}

// Validate the configuration for basic semantic errors.
func (c *Config) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// DelimiterByte returns the delimiter as a single ASCII byte. The
// two-character escape `\t` is accepted for tab.
func (c *Config) DelimiterByte() (byte, error) {
	if c.Delimiter == `\t` {
		return '\t', nil
	}
	b, err := oneASCIIByte(c.Delimiter)
	if err != nil {
		return 0, fmt.Errorf("invalid delimiter: %w", err)
	}
	return b, nil
}

// QuoteByte returns the quote character as a single ASCII byte.
func (c *Config) QuoteByte() (byte, error) {
	b, err := oneASCIIByte(c.Quote)
	if err != nil {
		return 0, fmt.Errorf("invalid quote: %w", err)
	}
	return b, nil
}

func oneASCIIByte(value string) (byte, error) {
	if value == "" {
		return 0, errors.New("missing value")
	}
	if len(value) > 1 || value[0] > 0x7f {
		return 0, fmt.Errorf("value %s must be 1 ASCII character", value)
	}
	return value[0], nil
}

// Load reads a configuration file. Unknown fields are rejected so typos
// don't silently fall back to defaults.
func Load(fs afero.Fs, path string) (*Config, error) {
	contents, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}

	var out Config
	if err := yaml.UnmarshalStrict(contents, &out); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &out, nil
}
