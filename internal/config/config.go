package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "FINNEWS_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	openAIAPIKeyEnv   = "OPENAI_API_KEY"
	openAIModelEnv    = "OPENAI_MODEL"
	newsAPIKeyEnv     = "NEWS_API_KEY"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	redisAddrEnv      = "REDIS_ADDR"
	s3BucketEnv       = "S3_BUCKET"
	logLevelEnv       = "LOG_LEVEL"
)

// Backend names accepted by Config.Backend.
const (
	BackendML     = "ml"
	BackendOpenAI = "openai"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Backend       string             `yaml:"backend"`
	ML            MLConfig           `yaml:"ml"`
	OpenAI        OpenAIConfig       `yaml:"openai"`
	NewsAPI       NewsAPIConfig      `yaml:"newsApi"`
	Sites         []SiteConfig       `yaml:"sites"`
	Storage       StorageConfig      `yaml:"storage"`
	Redis         RedisConfig        `yaml:"redis"`
	Notifications NotificationConfig `yaml:"notifications"`
	Metrics       MetricsConfig      `yaml:"metrics"`
	Labels        LabelsConfig       `yaml:"labels"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
}

// LoggingConfig selects slog level and handler format (text or json).
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// PipelineConfig tunes the per-article processing stages.
type PipelineConfig struct {
	BatchSize   int      `yaml:"batchSize"`
	Concurrency int      `yaml:"concurrency"`
	MaxLength   int      `yaml:"maxLength"`
	MinLength   int      `yaml:"minLength"`
	Keywords    []string `yaml:"keywords"`
}

// MLConfig describes neural-service integration parameters.
type MLConfig struct {
	InferenceURL      string  `yaml:"inferenceUrl"`
	APIKey            string  `yaml:"apiKey"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
}

// OpenAIConfig defines how to contact an OpenAI compatible API.
type OpenAIConfig struct {
	BaseURL      string        `yaml:"baseUrl"`
	Model        string        `yaml:"model"`
	APIKey       string        `yaml:"apiKey"`
	SystemPrompt string        `yaml:"systemPrompt"`
	Timeout      time.Duration `yaml:"timeout"`
}

// NewsAPIConfig configures the newsapi scanner.
type NewsAPIConfig struct {
	BaseURL string `yaml:"baseUrl"`
	APIKey  string `yaml:"apiKey"`
}

// SiteConfig describes a single site with its scanner strategy.
type SiteConfig struct {
	Name    string            `yaml:"name"`
	Scanner string            `yaml:"scanner"`
	Targets []TargetConfig    `yaml:"targets"`
	Options map[string]string `yaml:"options"`
}

// TargetConfig holds a concrete endpoint to crawl.
type TargetConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// StorageConfig groups result destinations. Empty values disable a sink.
type StorageConfig struct {
	ResultsDir string         `yaml:"resultsDir"`
	S3         S3Config       `yaml:"s3"`
	Database   DatabaseConfig `yaml:"database"`
}

// S3Config names the bucket for uploaded artifacts.
type S3Config struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig points at the processed-ID index.
type RedisConfig struct {
	Addr string        `yaml:"addr"`
	Key  string        `yaml:"key"`
	TTL  time.Duration `yaml:"ttl"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// MetricsConfig sets the listen address of the serve command.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// LabelsConfig points at a reference label file.
type LabelsConfig struct {
	Path string `yaml:"path"`
}

// SchedulerConfig defines when batches run and which window each covers.
type SchedulerConfig struct {
	Interval time.Duration  `yaml:"interval"`
	Window   time.Duration  `yaml:"window"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if cfg, err = parse(raw, cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parse decodes a YAML document over base; keys absent from the document
// keep their base values.
func parse(raw []byte, base Config) (Config, error) {
	if err := yaml.Unmarshal(raw, &base); err != nil {
		return Config{}, err
	}
	return base, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	var errs []error
	p := c.Pipeline
	if p.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.batchSize must be positive, got %d", p.BatchSize))
	}
	if p.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("pipeline.concurrency must be positive, got %d", p.Concurrency))
	}
	if p.MaxLength <= 0 || p.MinLength <= 0 {
		errs = append(errs, fmt.Errorf("pipeline lengths must be positive, got max=%d min=%d", p.MaxLength, p.MinLength))
	}
	if p.MinLength > p.MaxLength {
		errs = append(errs, fmt.Errorf("pipeline.minLength %d exceeds maxLength %d", p.MinLength, p.MaxLength))
	}
	switch c.Backend {
	case BackendML, BackendOpenAI:
	default:
		errs = append(errs, fmt.Errorf("backend must be %q or %q, got %q", BackendML, BackendOpenAI, c.Backend))
	}
	if c.Scheduler.Interval <= 0 {
		errs = append(errs, fmt.Errorf("scheduler.interval must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env    string
		target *string
	}{
		{databaseDSNEnv, &c.Storage.Database.DSN},
		{openAIAPIKeyEnv, &c.OpenAI.APIKey},
		{openAIModelEnv, &c.OpenAI.Model},
		{newsAPIKeyEnv, &c.NewsAPI.APIKey},
		{telegramTokenEnv, &c.Notifications.Telegram.BotToken},
		{telegramChatIDEnv, &c.Notifications.Telegram.ChatID},
		{redisAddrEnv, &c.Redis.Addr},
		{s3BucketEnv, &c.Storage.S3.Bucket},
		{logLevelEnv, &c.Logging.Level},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.env)); v != "" {
			*o.target = v
		}
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		slog.Warn("config: unknown timezone, reverting to default", "timezone", tz, "default", defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Pipeline: PipelineConfig{
			BatchSize:   16,
			Concurrency: 1,
			MaxLength:   150,
			MinLength:   40,
		},
		Backend: BackendML,
		ML:      MLConfig{InferenceURL: "http://localhost:8000", RequestsPerSecond: 5},
		OpenAI: OpenAIConfig{
			Model:        "gpt-4o-mini",
			SystemPrompt: "You summarize financial news and classify its market sentiment.",
			Timeout:      60 * time.Second,
		},
		NewsAPI: NewsAPIConfig{BaseURL: "https://newsapi.org/v2"},
		Sites: []SiteConfig{
			{
				Name:    "newsapi-business",
				Scanner: "newsapi",
				Options: map[string]string{"query": "stocks OR earnings OR inflation", "language": "en"},
			},
		},
		Storage: StorageConfig{
			ResultsDir: "results",
			S3:         S3Config{Prefix: "finnews", Region: "us-east-1"},
		},
		Redis:     RedisConfig{Key: "finnews:processed", TTL: 30 * 24 * time.Hour},
		Metrics:   MetricsConfig{Addr: ":9090"},
		Scheduler: SchedulerConfig{Interval: 24 * time.Hour, Window: 24 * time.Hour, Timezone: defaultTimezone, location: tz},
	}
}
