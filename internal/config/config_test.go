package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTablesDefaults(t *testing.T) {
	cfg := &Config{}

	tables, err := cfg.LoadTables()
	if err != nil {
		t.Fatalf("LoadTables failed: %v", err)
	}
	if len(tables.BuyingPositive) == 0 {
		t.Fatal("expected built-in buying keywords")
	}
}

func TestLoadTablesOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables.yaml")
	content := []byte("buying_positive:\n  \"purchase\": 25\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg := &Config{KeywordTablesPath: path}
	tables, err := cfg.LoadTables()
	if err != nil {
		t.Fatalf("LoadTables failed: %v", err)
	}

	// The file replaces the buying table wholesale.
	if got := tables.BuyingPositive["purchase"]; got != 25 {
		t.Fatalf("expected override weight 25, got %v", got)
	}
	if len(tables.BuyingPositive) != 1 {
		t.Fatalf("expected 1 override keyword, got %d", len(tables.BuyingPositive))
	}
	// Tables absent from the file keep the defaults.
	if len(tables.PositiveResponses) == 0 {
		t.Fatal("expected default positive responses to survive")
	}
}

func TestLoadTablesMissingFile(t *testing.T) {
	cfg := &Config{KeywordTablesPath: filepath.Join(t.TempDir(), "missing.yaml")}

	if _, err := cfg.LoadTables(); err == nil {
		t.Fatal("expected error for missing file")
	}
}
