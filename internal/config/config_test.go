package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
bot:
  token: "123:abc"
  owner_id: 42
redis:
  url: "localhost:6379"
`)
	cfg, err := LoadConfig(path, false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Redis.QueueKey != "media:jobs" {
		t.Errorf("queue key default = %q", cfg.Redis.QueueKey)
	}
	if cfg.Worker.PollInterval != 2*time.Second {
		t.Errorf("poll interval default = %v", cfg.Worker.PollInterval)
	}
	if cfg.Worker.MaxAttempts != 3 {
		t.Errorf("max attempts default = %d", cfg.Worker.MaxAttempts)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("log defaults = %q/%q", cfg.Log.Level, cfg.Log.Format)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing token", "bot:\n  owner_id: 42\nredis:\n  url: x\n"},
		{"missing owner", "bot:\n  token: t\nredis:\n  url: x\n"},
		{"missing redis", "bot:\n  token: t\n  owner_id: 42\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tc.body), false); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadConfigExpandsEnvSecrets(t *testing.T) {
	t.Setenv("TMP_BOT_TOKEN", "999:zzz")
	path := writeConfig(t, `
bot:
  token: "${TMP_BOT_TOKEN}"
  owner_id: 42
redis:
  url: "localhost:6379"
`)
	cfg, err := LoadConfig(path, false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Bot.Token != "999:zzz" {
		t.Errorf("token = %q, want expanded env value", cfg.Bot.Token)
	}
}
