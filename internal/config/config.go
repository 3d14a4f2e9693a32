// Package config loads and validates the halewell TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Site     SiteConfig     `toml:"site"`
	DB       DBConfig       `toml:"db"`
	Mail     MailConfig     `toml:"mail"`
	Generate GenerateConfig `toml:"generate"`
}

type SiteConfig struct {
	Title       string   `toml:"title"`
	BaseURL     string   `toml:"base_url"`
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
	AdminToken  string   `toml:"admin_token"`
	PageSize    int      `toml:"page_size"`
	MediaDir    string   `toml:"media_dir"`
	Author      string   `toml:"author"`
}

type DBConfig struct {
	Path string `toml:"path"`
}

type MailConfig struct {
	Enabled  bool   `toml:"enabled"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
	AdminTo  string `toml:"admin_to"`
}

type GenerateConfig struct {
	Timezone            string  `toml:"timezone"`
	DailyCron           string  `toml:"daily_cron"`
	ReportCron          string  `toml:"report_cron"`
	Count               int     `toml:"count"`
	RecentDays          int     `toml:"recent_days"`
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	Publish             bool    `toml:"publish"`
}

// Default returns the configuration used when a key is absent from
// the config file.
func Default() Config {
	return Config{
		Site: SiteConfig{
			Title:    "Halewell",
			BaseURL:  "http://localhost:8080/",
			Addr:     ":8080",
			PageSize: 6,
			MediaDir: "local/media",
			Author:   "Halewell",
		},
		DB: DBConfig{
			Path: "local/halewell.db",
		},
		Mail: MailConfig{
			Enabled: false,
			Host:    "localhost",
			Port:    587,
		},
		Generate: GenerateConfig{
			Timezone:            "Europe/London",
			DailyCron:           "0 7 * * *",
			ReportCron:          "0 8 * * 1",
			Count:               1,
			RecentDays:          30,
			SimilarityThreshold: 0.4,
			Publish:             true,
		},
	}
}

// Load reads a TOML config file over the defaults and validates the
// result. Keys absent from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	// publish=false is a deliberate setting, but an absent key means
	// the default (true) and DecodeFile cannot tell those apart on a
	// pre-filled struct.
	if !meta.IsDefined("generate", "publish") {
		cfg.Generate.Publish = true
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Site.Addr) == "" {
		return fmt.Errorf("site config missing addr")
	}
	if strings.TrimSpace(cfg.Site.BaseURL) == "" {
		return fmt.Errorf("site config missing base_url")
	}
	if cfg.Site.PageSize < 1 {
		return fmt.Errorf("site config page_size must be positive, got %d", cfg.Site.PageSize)
	}
	if strings.TrimSpace(cfg.DB.Path) == "" {
		return fmt.Errorf("db config missing path")
	}
	if cfg.Mail.Enabled {
		if strings.TrimSpace(cfg.Mail.Host) == "" {
			return fmt.Errorf("mail config missing host")
		}
		if cfg.Mail.Port < 1 || cfg.Mail.Port > 65535 {
			return fmt.Errorf("mail config port out of range: %d", cfg.Mail.Port)
		}
		if strings.TrimSpace(cfg.Mail.From) == "" {
			return fmt.Errorf("mail config missing from address")
		}
		if strings.TrimSpace(cfg.Mail.AdminTo) == "" {
			return fmt.Errorf("mail config missing admin_to address")
		}
	}
	if err := validateGenerate(cfg.Generate); err != nil {
		return err
	}
	return nil
}

func validateGenerate(gen GenerateConfig) error {
	if _, err := time.LoadLocation(strings.TrimSpace(gen.Timezone)); err != nil {
		return fmt.Errorf("generate config invalid timezone %q: %w", gen.Timezone, err)
	}
	if strings.TrimSpace(gen.DailyCron) == "" {
		return fmt.Errorf("generate config missing daily_cron")
	}
	if strings.TrimSpace(gen.ReportCron) == "" {
		return fmt.Errorf("generate config missing report_cron")
	}
	if gen.Count < 1 {
		return fmt.Errorf("generate config count must be positive, got %d", gen.Count)
	}
	if gen.RecentDays < 1 {
		return fmt.Errorf("generate config recent_days must be positive, got %d", gen.RecentDays)
	}
	if gen.SimilarityThreshold <= 0 || gen.SimilarityThreshold > 1 {
		return fmt.Errorf("generate config similarity_threshold must be in (0, 1], got %v", gen.SimilarityThreshold)
	}
	return nil
}

// Location resolves the configured generation timezone.
func (g GenerateConfig) Location() (*time.Location, error) {
	return time.LoadLocation(strings.TrimSpace(g.Timezone))
}

// EnsureDirs creates the directories the configured paths live in.
func EnsureDirs(cfg Config) error {
	for _, dir := range []string{filepath.Dir(cfg.DB.Path), cfg.Site.MediaDir} {
		if strings.TrimSpace(dir) == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config ensure dirs: %w", err)
		}
	}
	return nil
}
