package common

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	OCR      OCRConfig
	LLM      LLMConfig
	Geo      GeoConfig
	Log      LogConfig
	UserID   string
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds the watch daemon configuration
type ServerConfig struct {
	GRPCAddr    string
	WatchDir    string
	Workers     int
	ScanOnStart bool
	Debounce    time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	TessdataDir string
	Language    string
	DPI         int
	MaxPages    int
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Enabled       bool
	Provider      string
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiKey     string
	GeminiModel   string
	Timeout       time.Duration
}

// GeoConfig holds geocoder and router settings
type GeoConfig struct {
	Enabled     bool
	GeocoderURL string
	UserAgent   string
	MinInterval time.Duration
	RouterURL   string
	Timeout     time.Duration
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string
}

// LLM provider names.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// envKeys maps viper keys to their environment variables. Keys with several variables
// take the first one set.
var envKeys = map[string][]string{
	"db.url":                {"DB_URL"},
	"db.max_conns":          {"DB_MAX_CONNS"},
	"db.min_conns":          {"DB_MIN_CONNS"},
	"db.max_conn_lifetime":  {"DB_MAX_CONN_LIFETIME"},
	"db.max_conn_idle_time": {"DB_MAX_CONN_IDLE_TIME"},
	"db.dial_timeout":       {"DB_DIAL_TIMEOUT"},
	"db.statement_timeout":  {"DB_STATEMENT_TIMEOUT"},
	"server.grpc_addr":      {"GRPC_ADDR"},
	"server.watch_dir":      {"WATCH_DIR"},
	"server.workers":        {"WATCH_WORKERS"},
	"server.scan_on_start":  {"WATCH_SCAN_ON_START"},
	"server.debounce":       {"WATCH_DEBOUNCE"},
	"ocr.tessdata_dir":      {"TESSDATA_PREFIX"},
	"ocr.lang":              {"OCR_LANG"},
	"ocr.dpi":               {"OCR_DPI"},
	"ocr.max_pages":         {"OCR_MAX_PAGES"},
	"llm.enabled":           {"EXTRACT_USE_LLM"},
	"llm.provider":          {"LLM_PROVIDER"},
	"llm.openai_key":        {"OPENAI_API_KEY"},
	"llm.openai_model":      {"OPENAI_MODEL"},
	"llm.openai_base_url":   {"OPENAI_BASE_URL"},
	"llm.gemini_key":        {"GOOGLE_API_KEY", "GEMINI_API_KEY"},
	"llm.gemini_model":      {"GEMINI_MODEL"},
	"llm.timeout":           {"LLM_TIMEOUT"},
	"geo.enabled":           {"GEO_ENABLED"},
	"geo.geocoder_url":      {"GEOCODER_URL"},
	"geo.user_agent":        {"GEOCODER_USER_AGENT"},
	"geo.min_interval":      {"GEOCODER_MIN_INTERVAL"},
	"geo.router_url":        {"ROUTER_URL"},
	"geo.timeout":           {"GEO_TIMEOUT"},
	"log.level":             {"LOG_LEVEL"},
	"log.format":            {"LOG_FORMAT"},
	"user_id":               {"USER_ID"},
}

// NewViper returns a viper instance with defaults and environment bindings. A config
// file named by FREIGHT_CONFIG (yaml, json or toml) is read when present.
func NewViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault("db.max_conns", 20)
	v.SetDefault("db.min_conns", 2)
	v.SetDefault("db.max_conn_lifetime", 30*time.Minute)
	v.SetDefault("db.max_conn_idle_time", 5*time.Minute)
	v.SetDefault("db.dial_timeout", 3*time.Second)
	v.SetDefault("db.statement_timeout", time.Duration(0))
	v.SetDefault("server.grpc_addr", ":8080")
	v.SetDefault("server.workers", 1)
	v.SetDefault("server.scan_on_start", true)
	v.SetDefault("server.debounce", 500*time.Millisecond)
	v.SetDefault("ocr.lang", "eng")
	v.SetDefault("ocr.dpi", 300)
	v.SetDefault("llm.provider", ProviderOpenAI)
	v.SetDefault("llm.openai_model", "gpt-4o-mini")
	v.SetDefault("llm.timeout", 45*time.Second)
	v.SetDefault("geo.enabled", true)
	v.SetDefault("geo.user_agent", "freightbite-pdf-extract")
	v.SetDefault("geo.min_interval", time.Second)
	v.SetDefault("geo.timeout", 15*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	for key, envs := range envKeys {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := readConfigFile(v, os.Getenv("FREIGHT_CONFIG")); err != nil {
		return nil, err
	}
	return v, nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// LoadConfig builds a Config from v (defaults, environment, config file and any flags
// bound into it).
func LoadConfig(v *viper.Viper) *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              v.GetString("db.url"),
			MaxConns:         v.GetInt32("db.max_conns"),
			MinConns:         v.GetInt32("db.min_conns"),
			MaxConnLifetime:  v.GetDuration("db.max_conn_lifetime"),
			MaxConnIdleTime:  v.GetDuration("db.max_conn_idle_time"),
			DialTimeout:      v.GetDuration("db.dial_timeout"),
			StatementTimeout: v.GetDuration("db.statement_timeout"),
		},
		Server: ServerConfig{
			GRPCAddr:    v.GetString("server.grpc_addr"),
			WatchDir:    v.GetString("server.watch_dir"),
			Workers:     v.GetInt("server.workers"),
			ScanOnStart: v.GetBool("server.scan_on_start"),
			Debounce:    v.GetDuration("server.debounce"),
		},
		OCR: OCRConfig{
			TessdataDir: v.GetString("ocr.tessdata_dir"),
			Language:    v.GetString("ocr.lang"),
			DPI:         v.GetInt("ocr.dpi"),
			MaxPages:    v.GetInt("ocr.max_pages"),
		},
		LLM: LLMConfig{
			Enabled:       v.GetBool("llm.enabled"),
			Provider:      strings.ToLower(strings.TrimSpace(v.GetString("llm.provider"))),
			OpenAIKey:     v.GetString("llm.openai_key"),
			OpenAIModel:   v.GetString("llm.openai_model"),
			OpenAIBaseURL: v.GetString("llm.openai_base_url"),
			GeminiKey:     v.GetString("llm.gemini_key"),
			GeminiModel:   v.GetString("llm.gemini_model"),
			Timeout:       v.GetDuration("llm.timeout"),
		},
		Geo: GeoConfig{
			Enabled:     v.GetBool("geo.enabled"),
			GeocoderURL: v.GetString("geo.geocoder_url"),
			UserAgent:   v.GetString("geo.user_agent"),
			MinInterval: v.GetDuration("geo.min_interval"),
			RouterURL:   v.GetString("geo.router_url"),
			Timeout:     v.GetDuration("geo.timeout"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
		UserID: strings.TrimSpace(v.GetString("user_id")),
	}
}

// Validate checks enumerations and ranges. Missing API keys are not an error: the
// LLM strategy is simply left out.
func (c *Config) Validate() error {
	return NewValidator().
		Field("llm.provider", c.LLM.Provider, OneOf(ProviderOpenAI, ProviderGemini)).
		Field("log.level", c.Log.Level, OneOf("debug", "info", "warn", "error")).
		Field("log.format", c.Log.Format, OneOf("json", "text")).
		Field("server.workers", c.Server.Workers, Positive).
		Field("db.max_conns", int(c.Database.MaxConns), Positive).
		Field("user_id", c.UserID, MaxLength(200)).
		Error()
}

// LLMKey returns the API key for the configured provider.
func (c *Config) LLMKey() string {
	if c.LLM.Provider == ProviderGemini {
		return c.LLM.GeminiKey
	}
	return c.LLM.OpenAIKey
}

// UseLLM reports whether the LLM strategy should run: enabled and a key is present.
func (c *Config) UseLLM() bool {
	return c.LLM.Enabled && c.LLMKey() != ""
}

// SlogLevel maps Log.Level onto slog.
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
