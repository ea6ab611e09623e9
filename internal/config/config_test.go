package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runtime.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_overridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  handler_timeout: 5s
store:
  driver: file
  sqlite_path: /tmp/records.db
observability:
  log_level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.HandlerTimeout != 5*time.Second {
		t.Errorf("handler_timeout = %v", cfg.Server.HandlerTimeout)
	}
	if cfg.Store.Driver != "file" || cfg.Store.SQLitePath != "/tmp/records.db" {
		t.Errorf("store = %+v", cfg.Store)
	}
	// Untouched fields keep their defaults.
	if cfg.Identity.Issuer != "oneshot-runtime" || cfg.Identity.TokenTTL != 12*time.Hour {
		t.Errorf("identity = %+v", cfg.Identity)
	}
	if cfg.Wizard.SessionTTL != time.Hour {
		t.Errorf("wizard = %+v", cfg.Wizard)
	}
}

func TestLoad_envOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n")
	t.Setenv("ONESHOT_SERVER_PORT", "7070")
	t.Setenv("ONESHOT_STORE_DRIVER", "memory")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want env override 7070", cfg.Server.Port)
	}
	if cfg.Store.Driver != "memory" {
		t.Errorf("driver = %q, want memory", cfg.Store.Driver)
	}
}

func TestLoad_invalidDriverRejected(t *testing.T) {
	path := writeConfig(t, "store:\n  driver: cassandra\n")

	if _, err := Load(path); err == nil {
		t.Error("expected validation error for unknown driver")
	}
}

func TestLoad_remoteSourceRequiresProjectID(t *testing.T) {
	path := writeConfig(t, "app_config:\n  remote_base_url: http://localhost:9000\n")

	if _, err := Load(path); err == nil {
		t.Error("expected validation error for missing project_id")
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
