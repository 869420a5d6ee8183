package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pkgconfig "github.com/starford/imgbackup/pkg/config"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled || cfg.AuthEnabled() {
		t.Errorf("mode = %q, enabled = %v", cfg.Mode, cfg.AuthEnabled())
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: AuthModeToken}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStorageConfig_UnknownDriver(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Storage.Driver = "ftp"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown driver should fail validation")
	}
}

func TestStorageConfig_HTTPRequiresBaseURL(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Storage.Driver = DriverHTTP
	if err := cfg.Validate(); err == nil {
		t.Fatal("http driver without base_url should fail")
	}
	cfg.Storage.HTTP.BaseURL = "http://localhost:8000"
	cfg.Storage.HTTP.Mode = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("http driver with base_url should pass: %v", err)
	}
	if cfg.Storage.HTTP.Mode != "multipart" {
		t.Errorf("mode = %q, want multipart", cfg.Storage.HTTP.Mode)
	}
}

func TestStorageConfig_MinioRequiresBucket(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Storage.Driver = DriverMinio
	cfg.Storage.Minio = MinioConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("minio driver without bucket should fail")
	}
}

func TestLoadYAMLWithEnv(t *testing.T) {
	t.Setenv("IMGBACKUP_TEST_TOKEN", "s3cret")
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
app:
  log_level: debug
  http:
    port: 9090
catalog:
  cards_dir: ./cards
  sqlite_path: ./test.db
storage:
  driver: http
  http:
    base_url: http://127.0.0.1:8000
    mode: json
    token: ${IMGBACKUP_TEST_TOKEN}
fetch:
  timeout: 5s
auth:
  mode: disabled
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.HTTP.Port != 9090 {
		t.Errorf("port = %d", cfg.App.HTTP.Port)
	}
	if cfg.Storage.HTTP.Token != "s3cret" {
		t.Errorf("token = %q", cfg.Storage.HTTP.Token)
	}
	if cfg.Fetch.Timeout != 5*time.Second {
		t.Errorf("timeout = %v", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.MaxBytes != 50<<20 {
		t.Errorf("max_bytes default lost: %d", cfg.Fetch.MaxBytes)
	}
}
