package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all neura configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Model    ModelConfig    `toml:"model"`
	Google   GoogleConfig   `toml:"google"`
	Auth     AuthConfig     `toml:"auth"`
	Agent    AgentConfig    `toml:"agent"`
	Cache    CacheConfig    `toml:"cache"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	BaseURL      string   `toml:"base_url"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// DatabaseConfig selects the store. Driver is "sqlite" or "postgres"; an
// empty sqlite DSN means neura.db under DataDir.
type DatabaseConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

type ModelConfig struct {
	APIKey    string `toml:"api_key"`
	Model     string `toml:"model"`
	MaxTokens int    `toml:"max_tokens"`
	BaseURL   string `toml:"base_url"`
}

// GoogleConfig holds the OAuth client used for Gmail access.
type GoogleConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURL  string `toml:"redirect_url"`
}

type AuthConfig struct {
	JWTSecret  string   `toml:"jwt_secret"`
	SessionTTL Duration `toml:"session_ttl"`
}

// AgentConfig tunes the chat agent and the email pipeline.
type AgentConfig struct {
	MaxSteps            int `toml:"max_steps"`
	ClassifyConcurrency int `toml:"classify_concurrency"`
	DefaultMaxResults   int `toml:"default_max_results"`
}

// CacheConfig enables the Redis classification cache when RedisAddr is set.
type CacheConfig struct {
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	TTL           Duration `toml:"ttl"`
}

type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Duration is a time.Duration written as a string ("30s", "24h") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":8080",
			BaseURL:      "http://localhost:8080",
			ReadTimeout:  Duration{15 * time.Second},
			WriteTimeout: Duration{5 * time.Minute},
		},
		Database: DatabaseConfig{Driver: "sqlite"},
		Model: ModelConfig{
			Model:     "claude-sonnet-4-5-20250929",
			MaxTokens: 4096,
			BaseURL:   "https://api.anthropic.com",
		},
		Auth: AuthConfig{SessionTTL: Duration{7 * 24 * time.Hour}},
		Agent: AgentConfig{
			MaxSteps:            10,
			ClassifyConcurrency: 4,
			DefaultMaxResults:   10,
		},
		Cache: CacheConfig{TTL: Duration{24 * time.Hour}},
		Log:   LogConfig{Level: "info"},
	}
}

// Load reads config from path. If path is empty, returns defaults.
// Environment overrides are not applied; call ApplyEnv for that.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path == "" {
		return &cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// LoadDotEnv loads KEY=value pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from the environment. Unset variables leave
// the current value alone.
func (c *Config) ApplyEnv() error {
	str := map[string]*string{
		"NEURA_ADDR":           &c.Server.Addr,
		"NEURA_BASE_URL":       &c.Server.BaseURL,
		"NEURA_DB_DRIVER":      &c.Database.Driver,
		"DATABASE_URL":         &c.Database.DSN,
		"ANTHROPIC_API_KEY":    &c.Model.APIKey,
		"NEURA_MODEL":          &c.Model.Model,
		"ANTHROPIC_BASE_URL":   &c.Model.BaseURL,
		"GOOGLE_CLIENT_ID":     &c.Google.ClientID,
		"GOOGLE_CLIENT_SECRET": &c.Google.ClientSecret,
		"GOOGLE_REDIRECT_URL":  &c.Google.RedirectURL,
		"NEURA_JWT_SECRET":     &c.Auth.JWTSecret,
		"REDIS_ADDR":           &c.Cache.RedisAddr,
		"REDIS_PASSWORD":       &c.Cache.RedisPassword,
		"NEURA_LOG_LEVEL":      &c.Log.Level,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"NEURA_MAX_TOKENS":           &c.Model.MaxTokens,
		"NEURA_MAX_STEPS":            &c.Agent.MaxSteps,
		"NEURA_CLASSIFY_CONCURRENCY": &c.Agent.ClassifyConcurrency,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		*dst = n
	}

	if v := os.Getenv("NEURA_LOG_DEV"); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid NEURA_LOG_DEV: %w", err)
		}
		c.Log.Development = dev
	}
	return nil
}

// SecretGetter reads a named secret; store.KeyringSecretStore satisfies it.
type SecretGetter interface {
	Get(name string) (string, error)
}

// Secret names looked up by FillSecrets.
const (
	SecretAnthropicKey       = "anthropic_api_key"
	SecretGoogleClientSecret = "google_client_secret"
	SecretJWT                = "jwt_secret"
)

// FillSecrets fills secrets still empty after the file and environment from
// secrets. Lookup failures leave the field empty.
func (c *Config) FillSecrets(secrets SecretGetter) {
	fill := map[string]*string{
		SecretAnthropicKey:       &c.Model.APIKey,
		SecretGoogleClientSecret: &c.Google.ClientSecret,
		SecretJWT:                &c.Auth.JWTSecret,
	}
	for name, dst := range fill {
		if *dst != "" {
			continue
		}
		if v, err := secrets.Get(name); err == nil {
			*dst = v
		}
	}
}

// RedirectURL returns the OAuth callback URL, derived from the server base
// URL unless set explicitly.
func (c *Config) RedirectURL() string {
	if c.Google.RedirectURL != "" {
		return c.Google.RedirectURL
	}
	return c.Server.BaseURL + "/auth/google/callback"
}

// DSN returns the database DSN, defaulting sqlite to a file under DataDir.
func (c *Config) DSN() string {
	if c.Database.DSN == "" && c.Database.Driver == "sqlite" {
		return filepath.Join(DataDir(), "neura.db")
	}
	return c.Database.DSN
}

// DefaultPath returns the config file path used when --config is not given.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// ConfigDir returns the neura config directory path.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "neura")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "neura")
}

// DataDir returns the neura data directory path.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "neura")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "neura")
}
