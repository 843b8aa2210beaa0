package config

import (
	"encoding/json"
	"os"

	"github.com/readlex/readlex/pkg/logger"
)

type Config struct {
	Server      ServerConfig      `json:"server"`
	Database    DatabaseConfig    `json:"database"`
	Translation TranslationConfig `json:"translation"`
	Telegram    TelegramConfig    `json:"telegram"`
	Logging     LoggingConfig     `json:"logging"`
}

type ServerConfig struct {
	ListenAddr string `json:"listen_addr"`
}

type DatabaseConfig struct {
	Driver   string `json:"driver"` // "postgres" or "sqlite"
	Path     string `json:"path"`   // sqlite only
	Host     string `json:"host"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	Port     int    `json:"port"`
	SSLMode  string `json:"sslmode"`
}

type TranslationConfig struct {
	SourceLang     string `json:"source_lang"`
	TargetLang     string `json:"target_lang"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// TelegramConfig enables the due-words reminder when both fields are set.
type TelegramConfig struct {
	Token  string `json:"token"`
	ChatID int64  `json:"chat_id"`
}

type LoggingConfig struct {
	Level     string `json:"level"`
	File      string `json:"file"`
	GormLevel string `json:"gorm_level"`
}

var AppConfig Config

func LoadConfig(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		logger.Error("failed to open config file", "error", err)
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&AppConfig); err != nil {
		logger.Error("failed to decode config file", "error", err)
		return err
	}

	applyDefaults(&AppConfig)
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8000"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Driver == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "words.db"
	}
	if cfg.Translation.SourceLang == "" {
		cfg.Translation.SourceLang = "en"
	}
	if cfg.Translation.TargetLang == "" {
		cfg.Translation.TargetLang = "ru"
	}
	if cfg.Translation.TimeoutSeconds <= 0 {
		cfg.Translation.TimeoutSeconds = 10
	}
}
