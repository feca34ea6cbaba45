package config

import (
	"os"
	"testing"
)

func TestDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	// Run from a directory with no config/config.json so only defaults apply.
	wd, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(wd) })
	os.Chdir(t.TempDir())

	cfg := Load()
	if cfg.APIBaseURL != "http://localhost:8000/api" {
		t.Fatalf("base URL %q", cfg.APIBaseURL)
	}
	if cfg.ConnectTimeoutSec != 10 || cfg.RequestTimeoutSec != 120 {
		t.Fatalf("timeouts %d/%d", cfg.ConnectTimeoutSec, cfg.RequestTimeoutSec)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("log level %q", cfg.LogLevel)
	}
}

func TestEnvOverrides(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	wd, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(wd) })
	os.Chdir(t.TempDir())

	t.Setenv("API_BASE_URL", "http://api.example.com/api")
	t.Setenv("API_REQUEST_TIMEOUT_SEC", "30")
	t.Setenv("LOG_COMPRESS", "true")

	cfg := Load()
	if cfg.APIBaseURL != "http://api.example.com/api" {
		t.Fatalf("base URL %q", cfg.APIBaseURL)
	}
	if cfg.RequestTimeoutSec != 30 {
		t.Fatalf("request timeout %d", cfg.RequestTimeoutSec)
	}
	if !cfg.LogCompress {
		t.Fatal("LOG_COMPRESS=true not applied")
	}
}

func TestJSONConfig(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	wd, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(wd) })
	dir := t.TempDir()
	os.Chdir(dir)

	if err := os.Mkdir("config", 0o755); err != nil {
		t.Fatal(err)
	}
	body := `{"api":{"BaseURL":"http://json.example.com/api","ConnectTimeoutSec":5},"export":{"Dir":"/tmp/exports"}}`
	if err := os.WriteFile("config/config.json", []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load()
	if cfg.APIBaseURL != "http://json.example.com/api" || cfg.ConnectTimeoutSec != 5 {
		t.Fatalf("json values not applied: %+v", cfg)
	}
	if cfg.ExportDir != "/tmp/exports" {
		t.Fatalf("export dir %q", cfg.ExportDir)
	}
	// Unset fields still get defaults.
	if cfg.RequestTimeoutSec != 120 {
		t.Fatalf("request timeout %d", cfg.RequestTimeoutSec)
	}
}
