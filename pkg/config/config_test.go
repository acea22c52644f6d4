package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want default 8080", cfg.Server.Port)
	}
	if cfg.LLM.ExtractionModel == "" || cfg.LLM.ChatModel == "" {
		t.Error("model defaults must be set")
	}
	if cfg.Storage.RegistryPath == "" {
		t.Error("registry path default must be set")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server:\n  port: 9090\nllm:\n  timeout: 45s\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	// Keys absent from the file keep their defaults.
	if cfg.LLM.ExtractionModel != "gemini-3-flash-preview" {
		t.Errorf("extraction model = %q, default lost", cfg.LLM.ExtractionModel)
	}

	d, err := cfg.TimeoutDuration()
	if err != nil {
		t.Fatalf("TimeoutDuration: %v", err)
	}
	if d != 45*time.Second {
		t.Errorf("timeout = %v, want 45s", d)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed yaml must be an error, not silently defaulted")
	}
}

func TestTimeoutDurationEmpty(t *testing.T) {
	cfg := Config{}
	d, err := cfg.TimeoutDuration()
	if err != nil || d != 0 {
		t.Errorf("empty timeout = (%v, %v), want (0, nil)", d, err)
	}
}
