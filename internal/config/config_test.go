package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/property-finance/internal/analysis"
	"github.com/iwvelando/property-finance/internal/calculator"
	"github.com/iwvelando/property-finance/pkg/constants"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "request.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:      "Missing calculator",
			content:   "inputs:\n  purchasePrice: 250000\n",
			wantError: true,
		},
		{
			name:      "Malformed YAML",
			content:   "calculator: [stamp-duty\n",
			wantError: true,
		},
		{
			name:    "Minimal request",
			content: "calculator: stamp-duty\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.configPath
			if path == "" {
				path = writeConfig(t, tt.content)
			}
			config, err := LoadConfiguration(path)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadConfiguration() error = %v", err)
			}
			if config == nil {
				t.Fatal("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationStructure(t *testing.T) {
	path := writeConfig(t, `calculator: stamp-duty
analyze: true
inputs:
  purchasePrice: 295000
  buyerType: additional
  nonResident: false
  rate: 5.5
deal:
  name: Flat 3, 12 High Street
logging:
  level: debug
  format: console
  outputFile: logs/propcalc.log
output:
  format: csv
analysis:
  provider: openai
  model: gpt-4o
  apiKeyEnv: TEST_PROPCALC_KEY
  timeout: 15s
  maxRetries: 4
cache:
  redisAddr: localhost:6379
  ttl: 1h
store:
  path: deals.db
`)

	config, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if config.Calculator != "stamp-duty" || !config.Analyze {
		t.Errorf("calculator = %s analyze = %v", config.Calculator, config.Analyze)
	}

	result := calculator.StampDuty.Derive(config.Inputs)
	metrics := calculator.Values(result)
	if metrics["stampDuty"] != 19500 {
		t.Errorf("stamp duty from decoded inputs = %v, want 19500 (inputs %v)", metrics["stampDuty"], config.Inputs)
	}
	if v := config.Inputs["rate"]; v != "5.5" {
		t.Errorf("rate input = %q, want 5.5", v)
	}

	if config.Deal.Name != "Flat 3, 12 High Street" {
		t.Errorf("deal name = %q", config.Deal.Name)
	}
	if config.Logging.Level != "debug" || config.Logging.Format != "console" || config.Logging.OutputFile != "logs/propcalc.log" {
		t.Errorf("logging = %+v", config.Logging)
	}
	if config.Output.Format != constants.OutputFormatCSV {
		t.Errorf("output format = %s, want csv", config.Output.Format)
	}
	if config.Analysis.Provider != analysis.ProviderOpenAI || config.Analysis.Model != "gpt-4o" {
		t.Errorf("analysis = %+v", config.Analysis)
	}
	if config.Analysis.Timeout != 15*time.Second || config.Analysis.MaxRetries != 4 {
		t.Errorf("analysis timeout = %v retries = %d", config.Analysis.Timeout, config.Analysis.MaxRetries)
	}
	if config.Analysis.APIKeyEnv != "TEST_PROPCALC_KEY" {
		t.Errorf("api key env = %q", config.Analysis.APIKeyEnv)
	}
	if config.Cache.RedisAddr != "localhost:6379" || config.Cache.TTL != time.Hour {
		t.Errorf("cache = %+v", config.Cache)
	}
	if config.Store.Path != "deals.db" {
		t.Errorf("store path = %q", config.Store.Path)
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	config, err := LoadConfiguration(writeConfig(t, "calculator: rental-yield\n"))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if config.Output.Format != constants.OutputFormatPretty {
		t.Errorf("default output format = %q", config.Output.Format)
	}
	if config.Analysis.Provider != analysis.ProviderNone {
		t.Errorf("default provider = %q", config.Analysis.Provider)
	}
	if config.Analysis.APIKeyEnv != DefaultAPIKeyEnv {
		t.Errorf("default api key env = %q", config.Analysis.APIKeyEnv)
	}
	if config.Analysis.Timeout != analysis.DefaultTimeout {
		t.Errorf("default timeout = %v", config.Analysis.Timeout)
	}
}

func TestLoadConfigurationEnvOverride(t *testing.T) {
	t.Setenv("PROPCALC_ANALYSIS_PROVIDER", "endpoint")
	t.Setenv("PROPCALC_OUTPUT_FORMAT", "json")

	config, err := LoadConfiguration(writeConfig(t, "calculator: rental-yield\nanalysis:\n  provider: none\n"))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if config.Analysis.Provider != analysis.ProviderEndpoint {
		t.Errorf("provider = %q, want endpoint from environment", config.Analysis.Provider)
	}
	if config.Output.Format != constants.OutputFormatJSON {
		t.Errorf("output format = %q, want json from environment", config.Output.Format)
	}
}

func TestAnalysisConfigResolve(t *testing.T) {
	env := map[string]string{
		DefaultAPIKeyEnv: "sk-default",
		"OTHER_KEY":      "sk-other",
	}
	getenv := func(key string) string { return env[key] }
	cache := CacheConfig{RedisAddr: "redis:6379", TTL: time.Minute}

	cfg := AnalysisConfig{Provider: analysis.ProviderOpenAI, Model: "gpt-4o-mini", MaxRetries: 3}.Resolve(cache, getenv)
	if cfg.APIKey != "sk-default" {
		t.Errorf("APIKey = %q, want sk-default", cfg.APIKey)
	}
	if cfg.RedisAddr != "redis:6379" || cfg.CacheTTL != time.Minute || cfg.MaxRetries != 3 {
		t.Errorf("resolved config = %+v", cfg)
	}

	cfg = AnalysisConfig{APIKeyEnv: "OTHER_KEY"}.Resolve(CacheConfig{}, getenv)
	if cfg.APIKey != "sk-other" {
		t.Errorf("APIKey = %q, want sk-other", cfg.APIKey)
	}
}

func TestValidateConfiguration(t *testing.T) {
	tests := []struct {
		name     string
		config   Configuration
		calc     calculator.Calculator
		expected []string
	}{
		{
			name: "Clean request",
			config: Configuration{
				Inputs: map[string]string{"purchasePrice": "250000", "buyerType": "first-time"},
			},
			calc: calculator.StampDuty,
		},
		{
			name: "Unknown input and bad choice",
			config: Configuration{
				Inputs: map[string]string{"purchaseprice": "250000", "buyertype": "investor", "postcode": "SW1"},
			},
			calc:     calculator.StampDuty,
			expected: []string{"postcode", "buyerType"},
		},
		{
			name: "Bad lease date",
			config: Configuration{
				Inputs: map[string]string{"leaseEndDate": "2087"},
			},
			calc:     calculator.LeaseExtension,
			expected: []string{"leaseEndDate"},
		},
		{
			name: "Lease ends before valuation",
			config: Configuration{
				Inputs: map[string]string{"leaseEndDate": "2019-06", "valuationDate": "2025-03"},
			},
			calc:     calculator.LeaseExtension,
			expected: []string{"before 'valuationDate'"},
		},
		{
			name: "Analysis without provider",
			config: Configuration{
				Analyze: true,
			},
			calc:     calculator.Yield,
			expected: []string{"no analysis provider"},
		},
		{
			name: "Deal without store",
			config: Configuration{
				Deal: DealConfig{Name: "Flat 3"},
			},
			calc:     calculator.Yield,
			expected: []string{"store.path"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := tt.config.ValidateConfiguration(tt.calc)
			if len(warnings) != len(tt.expected) {
				t.Fatalf("ValidateConfiguration() = %v, want %d warnings", warnings, len(tt.expected))
			}
			for i, fragment := range tt.expected {
				if !strings.Contains(warnings[i], fragment) {
					t.Errorf("warning %d = %q, want it to mention %q", i, warnings[i], fragment)
				}
			}
		})
	}
}

func TestLoggingConfiguration(t *testing.T) {
	config := Configuration{
		Logging: LoggingConfig{
			Level:  "debug",
			Format: "console",
		},
	}

	if config.Logging.Level != "debug" {
		t.Errorf("Expected logging level 'debug', got '%s'", config.Logging.Level)
	}
	if config.Logging.Format != "console" {
		t.Errorf("Expected logging format 'console', got '%s'", config.Logging.Format)
	}

	emptyConfig := Configuration{}
	if emptyConfig.Logging.Level != "" || emptyConfig.Logging.Format != "" {
		t.Errorf("Expected empty logging config, got %+v", emptyConfig.Logging)
	}
}
