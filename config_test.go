package ptar

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileIsZeroValue(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.NThreads != 0 || cfg.BlockingFactor != 0 {
		t.Fatalf("expected zero-value config, got %+v", cfg)
	}
}

func TestLoadConfigEmptyPathIsZeroValue(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.NThreads != 0 || cfg.BlockingFactor != 0 {
		t.Fatalf("expected zero-value config, got %+v", cfg)
	}
}

func TestLoadConfigParsesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	must(t, os.WriteFile(path, []byte(`{"nthreads": 8, "blocking-factor": 500}`), 0o644))

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.NThreads != 8 || cfg.BlockingFactor != 500 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
