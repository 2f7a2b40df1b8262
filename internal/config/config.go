// Package config loads bot configuration from an optional TOML file, a .env
// file and SOMMELIER_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/abhisek/sommelier/internal/llm"
)

// Config is the full process configuration.
type Config struct {
	Bot      BotConfig      `toml:"bot"`
	HTTP     HTTPConfig     `toml:"http"`
	DB       DBConfig       `toml:"db"`
	Sheets   SheetsConfig   `toml:"sheets"`
	Cache    CacheConfig    `toml:"cache"`
	Log      LogConfig      `toml:"log"`
	Learning LearningConfig `toml:"learning"`

	// LLM comes from the environment only, so API keys stay out of files.
	LLM llm.Config `toml:"-"`
}

type BotConfig struct {
	Token         string  `toml:"token"`
	WebhookURL    string  `toml:"webhook_url"`
	WebhookSecret string  `toml:"webhook_secret"`
	WebAppURL     string  `toml:"webapp_url"`
	AdminChatIDs  []int64 `toml:"admin_chat_ids"`
	// SendRate is the outbound message budget per second.
	SendRate float64 `toml:"send_rate"`
}

type HTTPConfig struct {
	Addr           string   `toml:"addr"`
	AdminSecret    string   `toml:"admin_secret"`
	AllowedOrigins []string `toml:"allowed_origins"`
	// RequestsPerMinute limits each chat id on the web API.
	RequestsPerMinute int `toml:"requests_per_minute"`
}

type DBConfig struct {
	Path string `toml:"path"`
}

type SheetsConfig struct {
	SpreadsheetID string   `toml:"spreadsheet_id"`
	APIKey        string   `toml:"api_key"`
	Ranges        []string `toml:"ranges"`
	BaseURL       string   `toml:"base_url"`
}

// Enabled reports whether a sheet source is configured.
func (s SheetsConfig) Enabled() bool {
	return s.SpreadsheetID != "" && s.APIKey != ""
}

type CacheConfig struct {
	CatalogueTTL     Duration `toml:"catalogue_ttl"`
	FallbackTTL      Duration `toml:"fallback_ttl"`
	CatalogueSize    int      `toml:"catalogue_size"`
	SessionTTL       Duration `toml:"session_ttl"`
	ConsultationTTL  Duration `toml:"consultation_ttl"`
	ConsultationSize int      `toml:"consultation_size"`
	AnalyticsSize    int      `toml:"analytics_size"`
}

type LogConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"` // text or json
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

type LearningConfig struct {
	// Timezone decides where a day starts for streaks and daily challenges.
	Timezone string `toml:"timezone"`
}

// Duration is a time.Duration written as "90s" or "2h" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns a Config with every optional field set.
func Default() *Config {
	return &Config{
		Bot:  BotConfig{SendRate: 25},
		HTTP: HTTPConfig{Addr: ":8080", AllowedOrigins: []string{"*"}, RequestsPerMinute: 60},
		DB:   DBConfig{}, // empty resolves to store.DefaultDBPath
		Sheets: SheetsConfig{
			Ranges: []string{"Wine!A1:Z", "Sparkling!A1:Z", "Spirits!A1:Z", "Beer!A1:Z", "Cocktails!A1:Z"},
		},
		Cache: CacheConfig{
			CatalogueTTL:     Duration{time.Hour},
			FallbackTTL:      Duration{5 * time.Minute},
			CatalogueSize:    128,
			SessionTTL:       Duration{2 * time.Hour},
			ConsultationTTL:  Duration{6 * time.Hour},
			ConsultationSize: 256,
			AnalyticsSize:    1024,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Learning: LearningConfig{Timezone: "UTC"},
		LLM:      llm.DefaultConfig(),
	}
}

// Load reads path (optional), then .env in the working directory, then the
// environment. A missing .env is not an error; a missing path is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("SOMMELIER_CONFIG")
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := toml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.LLM = llm.ConfigFromEnv()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v := os.Getenv(key); v != "" {
			*dst = splitList(v)
		}
	}

	str("SOMMELIER_BOT_TOKEN", &c.Bot.Token)
	str("SOMMELIER_WEBHOOK_URL", &c.Bot.WebhookURL)
	str("SOMMELIER_WEBHOOK_SECRET", &c.Bot.WebhookSecret)
	str("SOMMELIER_WEBAPP_URL", &c.Bot.WebAppURL)
	str("SOMMELIER_HTTP_ADDR", &c.HTTP.Addr)
	str("SOMMELIER_ADMIN_SECRET", &c.HTTP.AdminSecret)
	list("SOMMELIER_ALLOWED_ORIGINS", &c.HTTP.AllowedOrigins)
	str("SOMMELIER_DB", &c.DB.Path)
	str("SOMMELIER_SHEET_ID", &c.Sheets.SpreadsheetID)
	str("SOMMELIER_SHEET_API_KEY", &c.Sheets.APIKey)
	list("SOMMELIER_SHEET_RANGES", &c.Sheets.Ranges)
	str("SOMMELIER_LOG_LEVEL", &c.Log.Level)
	str("SOMMELIER_LOG_FORMAT", &c.Log.Format)
	str("SOMMELIER_LOG_FILE", &c.Log.File)
	str("SOMMELIER_TIMEZONE", &c.Learning.Timezone)

	if v := os.Getenv("SOMMELIER_ADMIN_CHAT_IDS"); v != "" {
		ids, err := parseIDs(v)
		if err != nil {
			return fmt.Errorf("SOMMELIER_ADMIN_CHAT_IDS: %w", err)
		}
		c.Bot.AdminChatIDs = ids
	}
	return nil
}

// Validate reports configuration that prevents the bot from serving.
func (c *Config) Validate() error {
	var errs []error
	if c.Bot.Token == "" {
		errs = append(errs, errors.New("bot token is required (SOMMELIER_BOT_TOKEN or [bot] token)"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q: %w", c.Learning.Timezone, err))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log format %q: want text or json", c.Log.Format))
	}
	if c.LLM.Enabled() {
		if err := c.LLM.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Location returns the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Learning.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Learning.Timezone)
}

// IsAdmin reports whether chatID may use admin bot commands.
func (c *Config) IsAdmin(chatID int64) bool {
	for _, id := range c.Bot.AdminChatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseIDs(s string) ([]int64, error) {
	var ids []int64
	for _, p := range splitList(s) {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
