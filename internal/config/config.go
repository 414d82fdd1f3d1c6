// Package config defines the data structures related to configuration and
// includes functions for loading the calculation request file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/iwvelando/property-finance/internal/analysis"
	"github.com/iwvelando/property-finance/internal/calculator"
	"github.com/iwvelando/property-finance/pkg/constants"
	"github.com/iwvelando/property-finance/pkg/validation"
	"github.com/spf13/viper"
)

// DefaultAPIKeyEnv names the environment variable holding the analysis API key.
const DefaultAPIKeyEnv = "OPENAI_API_KEY"

// EnvPrefix prefixes environment overrides, e.g. PROPCALC_ANALYSIS_PROVIDER.
const EnvPrefix = "PROPCALC"

// Configuration holds one calculation request for propcalc.
type Configuration struct {
	Calculator string            `yaml:"calculator"`
	Inputs     map[string]string `yaml:"inputs,omitempty"`
	Analyze    bool              `yaml:"analyze,omitempty"`
	Deal       DealConfig        `yaml:"deal,omitempty"`
	Logging    LoggingConfig     `yaml:"logging,omitempty"`
	Output     OutputConfig      `yaml:"output,omitempty"`
	Analysis   AnalysisConfig    `yaml:"analysis,omitempty"`
	Cache      CacheConfig       `yaml:"cache,omitempty"`
	Store      StoreConfig       `yaml:"store,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// DealConfig names the deal a calculation is saved against. An ID selects an
// existing deal; a name alone creates a new one.
type DealConfig struct {
	ID   string `yaml:"id,omitempty"`
	Name string `yaml:"name,omitempty"`
}

// AnalysisConfig selects the AI analysis provider.
type AnalysisConfig struct {
	Provider   string        `yaml:"provider,omitempty"` // none, endpoint, openai
	Endpoint   string        `yaml:"endpoint,omitempty"`
	BaseURL    string        `yaml:"baseURL,omitempty"`
	Model      string        `yaml:"model,omitempty"`
	APIKeyEnv  string        `yaml:"apiKeyEnv,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
	MaxRetries int           `yaml:"maxRetries,omitempty"`
}

// CacheConfig holds analysis cache options.
type CacheConfig struct {
	RedisAddr string        `yaml:"redisAddr,omitempty"`
	TTL       time.Duration `yaml:"ttl,omitempty"`
}

// StoreConfig locates the deal database.
type StoreConfig struct {
	Path string `yaml:"path,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// request there. Keys may be overridden from PROPCALC_* environment variables.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("analysis.provider", analysis.ProviderNone)
	v.SetDefault("analysis.apiKeyEnv", DefaultAPIKeyEnv)
	v.SetDefault("analysis.timeout", analysis.DefaultTimeout)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if configuration.Calculator == "" {
		return nil, fmt.Errorf("config file %s does not name a calculator", configPath)
	}

	return &configuration, nil
}

// AnalyzerConfig resolves the analysis settings, reading the API key from the
// environment variable named by APIKeyEnv.
func (conf *Configuration) AnalyzerConfig() analysis.Config {
	return conf.Analysis.Resolve(conf.Cache, os.Getenv)
}

// Resolve turns file settings into an analysis.Config using getenv to look up
// the API key.
func (a AnalysisConfig) Resolve(cache CacheConfig, getenv func(string) string) analysis.Config {
	keyEnv := a.APIKeyEnv
	if keyEnv == "" {
		keyEnv = DefaultAPIKeyEnv
	}
	return analysis.Config{
		Provider:   a.Provider,
		Endpoint:   a.Endpoint,
		BaseURL:    a.BaseURL,
		Model:      a.Model,
		APIKey:     getenv(keyEnv),
		Timeout:    a.Timeout,
		MaxRetries: a.MaxRetries,
		RedisAddr:  cache.RedisAddr,
		CacheTTL:   cache.TTL,
	}
}

// ValidateConfiguration checks the request inputs against the calculator and
// returns warnings. Calculators accept any input so none of these are fatal.
func (conf *Configuration) ValidateConfiguration(calc calculator.Calculator) []string {
	rv := validation.RequestValidator{
		Calculator: calc.Name(),
		After:      map[string]string{},
		Choices:    map[string][]string{},
		Inputs:     conf.Inputs,
	}
	for _, input := range calc.Inputs() {
		rv.Known = append(rv.Known, input.Key)
		switch input.Kind {
		case calculator.KindMonth:
			rv.Months = append(rv.Months, input.Key)
			if input.After != "" {
				rv.After[input.Key] = input.After
			}
		case calculator.KindChoice:
			rv.Choices[input.Key] = input.Options
		}
	}

	warnings := rv.ValidateAll()
	if conf.Analyze && (conf.Analysis.Provider == "" || conf.Analysis.Provider == analysis.ProviderNone) {
		warnings = append(warnings, "Analysis requested but no analysis provider is configured - a placeholder analysis will be shown")
	}
	if (conf.Deal.ID != "" || conf.Deal.Name != "") && conf.Store.Path == "" {
		warnings = append(warnings, "Deal given without store.path - the calculation will not be saved")
	}
	return warnings
}
