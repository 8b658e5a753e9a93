package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port           int              `json:"port"`
	DBPath         string           `json:"db_path"`
	UILocale       string           `json:"ui_locale"`
	DevToolsURL    string           `json:"devtools_url"`
	GeminiEndpoint string           `json:"gemini_endpoint"`
	StopSentinel   string           `json:"stop_sentinel"`
	MailboxTTLMin  int              `json:"mailbox_ttl_minutes"`
	CORSOrigins    []string         `json:"cors_origins"`
	LogConfig      logger.LogConfig `json:"log_config"`
	ExportStore    ExportStoreConfig `json:"export_store"`
}

type ExportStoreConfig struct {
	Type string   `json:"type"`
	Dir  string   `json:"dir"`
	S3   S3Config `json:"s3"`
}

type S3Config struct {
	Endpoint  string `json:"endpoint"`
	SecretID  string `json:"secret_id"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	Prefix    string `json:"prefix"`
	UseSSL    bool   `json:"use_ssl"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db_path is required")
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.UILocale == "" {
		cfg.UILocale = "en"
	}
	if cfg.DevToolsURL == "" {
		cfg.DevToolsURL = "http://127.0.0.1:9222"
	}
	if cfg.MailboxTTLMin == 0 {
		cfg.MailboxTTLMin = 10
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.ExportStore.Type == "" {
		cfg.ExportStore.Type = "local"
	}
	switch cfg.ExportStore.Type {
	case "local":
		if cfg.ExportStore.Dir == "" {
			cfg.ExportStore.Dir = "exports"
		}
	case "s3":
		if cfg.ExportStore.S3.Endpoint == "" || cfg.ExportStore.S3.Bucket == "" || cfg.ExportStore.S3.SecretID == "" || cfg.ExportStore.S3.SecretKey == "" {
			return nil, fmt.Errorf("export_store.s3 endpoint/bucket/secret_id/secret_key are required for s3 store")
		}
		if cfg.ExportStore.S3.Region == "" {
			cfg.ExportStore.S3.Region = "us-east-1"
		}
	default:
		return nil, fmt.Errorf("export_store.type must be local or s3")
	}
	return &cfg, nil
}
