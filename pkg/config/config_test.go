package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigSuccess(t *testing.T) {
	original := AppConfig
	t.Cleanup(func() {
		AppConfig = original
	})

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")
	content := `{
		"server": {
			"listen_addr": ":9100"
		},
		"database": {
			"driver": "postgres",
			"host": "localhost",
			"user": "test-user",
			"password": "test-pass",
			"dbname": "testdb",
			"port": 5433,
			"sslmode": "disable"
		},
		"translation": {
			"source_lang": "en",
			"target_lang": "de",
			"timeout_seconds": 5
		},
		"telegram": {
			"token": "test-token",
			"chat_id": 42
		}
	}`

	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config fixture: %v", err)
	}

	if err := LoadConfig(configPath); err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if AppConfig.Server.ListenAddr != ":9100" {
		t.Errorf("expected listen addr :9100, got %q", AppConfig.Server.ListenAddr)
	}
	if AppConfig.Database.Driver != "postgres" {
		t.Errorf("expected postgres driver, got %q", AppConfig.Database.Driver)
	}
	if AppConfig.Database.Port != 5433 {
		t.Errorf("expected port 5433, got %d", AppConfig.Database.Port)
	}
	if AppConfig.Translation.TargetLang != "de" {
		t.Errorf("expected target lang de, got %q", AppConfig.Translation.TargetLang)
	}
	if AppConfig.Telegram.ChatID != 42 {
		t.Errorf("expected chat id 42, got %d", AppConfig.Telegram.ChatID)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	original := AppConfig
	t.Cleanup(func() {
		AppConfig = original
	})
	AppConfig = Config{}

	configPath := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(configPath, []byte(`{}`), 0o600); err != nil {
		t.Fatalf("failed to write config fixture: %v", err)
	}

	if err := LoadConfig(configPath); err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if AppConfig.Server.ListenAddr != ":8000" {
		t.Errorf("expected default listen addr :8000, got %q", AppConfig.Server.ListenAddr)
	}
	if AppConfig.Database.Driver != "sqlite" {
		t.Errorf("expected default sqlite driver, got %q", AppConfig.Database.Driver)
	}
	if AppConfig.Database.Path != "words.db" {
		t.Errorf("expected default sqlite path words.db, got %q", AppConfig.Database.Path)
	}
	if AppConfig.Translation.SourceLang != "en" || AppConfig.Translation.TargetLang != "ru" {
		t.Errorf("expected default en->ru languages, got %q->%q", AppConfig.Translation.SourceLang, AppConfig.Translation.TargetLang)
	}
	if AppConfig.Translation.TimeoutSeconds != 10 {
		t.Errorf("expected default timeout 10s, got %d", AppConfig.Translation.TimeoutSeconds)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	original := AppConfig
	t.Cleanup(func() {
		AppConfig = original
	})

	if err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected an error when loading a missing config file")
	}
}
