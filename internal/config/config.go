package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/salesmind/engine/internal/app/temperature"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

type Config struct {
	Mode Mode

	Port string

	GCPProjectID string
	GCPLocation  string
	ModelName    string

	StorageBackend string // "memory" or "firestore"
	UseMockLLM     bool   // true = use the mock collaborators even on GCP

	// Optional YAML file overriding the built-in temperature keyword tables.
	KeywordTablesPath string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "TRUE"
}

// Load reads all env vars and builds the config.
func Load() *Config {
	modeStr := getEnv("SALESMIND_MODE", "local")
	var mode Mode
	switch modeStr {
	case "gcp":
		mode = ModeGCP
	default:
		mode = ModeLocal
	}

	cfg := &Config{
		Mode: mode,

		Port: getEnv("SALESMIND_PORT", "8080"),

		GCPProjectID: getEnv("SALESMIND_GCP_PROJECT", ""),
		GCPLocation:  getEnv("SALESMIND_GCP_LOCATION", "us-central1"),
		ModelName:    getEnv("SALESMIND_MODEL_NAME", "gemini-2.5-flash"),

		StorageBackend: getEnv("SALESMIND_STORAGE_BACKEND", "memory"),
		UseMockLLM:     getBoolEnv("SALESMIND_USE_MOCK_LLM", mode == ModeLocal),

		KeywordTablesPath: getEnv("SALESMIND_KEYWORD_TABLES", ""),
	}

	if cfg.Mode == ModeGCP && cfg.GCPProjectID == "" {
		log.Fatal("SALESMIND_GCP_PROJECT must be set in gcp mode")
	}

	return cfg
}

// LoadTables returns the temperature keyword tables: the built-in defaults,
// or the YAML file at KeywordTablesPath when set. Tables present in the file
// replace the default table wholesale; absent tables keep the default.
func (c *Config) LoadTables() (temperature.Tables, error) {
	tables := temperature.DefaultTables()
	if c.KeywordTablesPath == "" {
		return tables, nil
	}

	data, err := os.ReadFile(c.KeywordTablesPath)
	if err != nil {
		return tables, fmt.Errorf("reading keyword tables %s: %w", c.KeywordTablesPath, err)
	}

	var override temperature.Tables
	if err := yaml.Unmarshal(data, &override); err != nil {
		return tables, fmt.Errorf("parsing keyword tables %s: %w", c.KeywordTablesPath, err)
	}

	if override.BuyingPositive != nil {
		tables.BuyingPositive = override.BuyingPositive
	}
	if override.BuyingNegative != nil {
		tables.BuyingNegative = override.BuyingNegative
	}
	if override.PositiveResponses != nil {
		tables.PositiveResponses = override.PositiveResponses
	}
	if override.InternalApproval != nil {
		tables.InternalApproval = override.InternalApproval
	}
	if override.CognitiveNegative != nil {
		tables.CognitiveNegative = override.CognitiveNegative
	}
	if override.CognitivePositive != nil {
		tables.CognitivePositive = override.CognitivePositive
	}

	return tables, nil
}
