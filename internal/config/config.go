// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultDatabaseURL = "resumes.db"
	DefaultModelDir    = "models"
	DefaultAddr        = ":8080"
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults, environment variables
// or CLI flags.
type Config struct {
	// Inputs
	JobDescription string `json:"job_description,omitempty"` // Path to job description file
	JobURL         string `json:"job_url,omitempty" validate:"omitempty,url"`
	Corpus         string `json:"corpus,omitempty"` // Labelled CSV used for training
	Taxonomy       string `json:"taxonomy,omitempty"` // Skill taxonomy YAML; empty uses the built-in one

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // SQLite path or postgres:// URL
	ModelDir    string `json:"model_dir,omitempty"`    // Classifier bundle directory

	// Ranking
	TopN    int `json:"top_n,omitempty" validate:"gte=0"` // 0 returns every candidate
	Workers int `json:"workers,omitempty" validate:"gte=0,lte=256"`

	// Training
	TestFraction float64 `json:"test_fraction,omitempty" validate:"gte=0,lt=1"`
	Seed         uint64  `json:"seed,omitempty"`
	NEstimators  int     `json:"n_estimators,omitempty" validate:"gte=0,lte=10000"`

	// Serving
	Addr string `json:"addr,omitempty" validate:"omitempty,hostname_port"`

	// Behavior
	LogLevel   string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	LogFormat  string `json:"log_format,omitempty" validate:"omitempty,oneof=text json"`
	UseBrowser bool   `json:"use_browser,omitempty"` // Render JD pages in a headless browser when static fetch is too thin
	Verbose    bool   `json:"verbose,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		DatabaseURL: DefaultDatabaseURL,
		ModelDir:    DefaultModelDir,
		Addr:        DefaultAddr,
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required inputs are checked by the commands that need them.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config error: '%s' failed '%s' check (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.JobDescription != "" && c.JobURL != "" {
		return fmt.Errorf("config error: 'job_description' and 'job_url' are mutually exclusive")
	}

	if c.JobDescription != "" {
		if _, err := os.Stat(c.JobDescription); os.IsNotExist(err) {
			return fmt.Errorf("config error: job description file not found: %s", c.JobDescription)
		}
	}
	if c.Corpus != "" {
		if _, err := os.Stat(c.Corpus); os.IsNotExist(err) {
			return fmt.Errorf("config error: corpus file not found: %s", c.Corpus)
		}
	}
	if c.Taxonomy != "" {
		if _, err := os.Stat(c.Taxonomy); os.IsNotExist(err) {
			return fmt.Errorf("config error: taxonomy file not found: %s", c.Taxonomy)
		}
	}

	return nil
}

// ApplyEnv overrides fields from SCREENER_* environment variables. DATABASE_URL
// is honoured when SCREENER_DATABASE_URL is unset.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}
	str(&c.DatabaseURL, "SCREENER_DATABASE_URL", "DATABASE_URL")
	str(&c.ModelDir, "SCREENER_MODEL_DIR")
	str(&c.Taxonomy, "SCREENER_TAXONOMY")
	str(&c.Addr, "SCREENER_ADDR")
	str(&c.LogLevel, "SCREENER_LOG_LEVEL")
	str(&c.LogFormat, "SCREENER_LOG_FORMAT")

	if v, ok := lookup("SCREENER_WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SCREENER_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v, ok := lookup("SCREENER_USE_BROWSER"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SCREENER_USE_BROWSER: %w", err)
		}
		c.UseBrowser = b
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.JobDescription == "" {
		result.JobDescription = defaults.JobDescription
	}
	if result.JobURL == "" {
		result.JobURL = defaults.JobURL
	}
	if result.Corpus == "" {
		result.Corpus = defaults.Corpus
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.ModelDir == "" {
		result.ModelDir = defaults.ModelDir
	}
	if result.Addr == "" {
		result.Addr = defaults.Addr
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}

	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if result.NEstimators == 0 {
		result.NEstimators = defaults.NEstimators
	}
	if result.Seed == 0 {
		result.Seed = defaults.Seed
	}
	if result.TestFraction == 0 {
		result.TestFraction = defaults.TestFraction
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Resolve builds the effective configuration: the optional file at path,
// overridden by the environment, with remaining gaps filled from Defaults.
func Resolve(path string) (Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}

	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return Config{}, err
	}
	return merged, nil
}
