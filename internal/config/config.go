// Package config loads the optional datmerge.yaml project file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/vvka-141/datmerge/pkg/datmerge"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ProjectConfig mirrors the merge flags. Zero values mean "not set".
type ProjectConfig struct {
	Delimiter     string `yaml:"delimiter"`
	HasHeader     bool   `yaml:"has_header"`
	KeyColumn     int    `yaml:"key_column"`
	SalaryColumns []int  `yaml:"salary_columns"`
	Output        string `yaml:"output"`
	RequireInput  bool   `yaml:"require_input"`
	Report        string `yaml:"report"`
	DatabaseURL   string `yaml:"database_url"`
	Table         string `yaml:"table"`
	Timeout       string `yaml:"timeout"`
}

const ConfigFileName = "datmerge.yaml"

// Load reads ConfigFileName from dir.
func Load(dir string) (*ProjectConfig, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads a config file. Unknown keys are rejected so that typos
// do not silently fall back to defaults.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %v: %w", path, err, datmerge.ErrInvalidConfig)
	}
	return &cfg, nil
}

var delimiterNames = map[string]rune{
	"comma":     ',',
	"tab":       '\t',
	`\t`:        '\t',
	"pipe":      '|',
	"semicolon": ';',
	"space":     ' ',
}

// ParseDelimiter accepts a single character or one of the names
// comma, tab, pipe, semicolon and space.
func ParseDelimiter(s string) (rune, error) {
	if r, ok := delimiterNames[s]; ok {
		return r, nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter %q must be a single character: %w", s, datmerge.ErrInvalidConfig)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
