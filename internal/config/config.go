package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/keshon/zoomer-grok/internal/mind"
)

// Config is read from the environment, optionally seeded from a .env file.
type Config struct {
	DiscordToken   string   `env:"DISCORD_TOKEN" validate:"required"`
	GuildBlacklist []string `env:"DISCORD_GUILD_BLACKLIST" envSeparator:","`
	CommandPrefix  string   `env:"COMMAND_PREFIX" envDefault:"!" validate:"required,max=3"`

	AIProvider        string        `env:"AI_PROVIDER" envDefault:"gemini" validate:"oneof=gemini pollinations"`
	GeminiAPIKey      string        `env:"GEMINI_API_KEY"`
	GeminiModel       string        `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	AITimeout         time.Duration `env:"AI_TIMEOUT" envDefault:"25s" validate:"min=1s,max=5m"`
	AITemperature     float32       `env:"AI_TEMPERATURE" envDefault:"0.9" validate:"min=0,max=2"`
	AIMaxOutputTokens int32         `env:"AI_MAX_OUTPUT_TOKENS" envDefault:"150" validate:"min=16,max=8192"`
	PersonaPath       string        `env:"PERSONA_PATH"`
	PollinationsURL   string        `env:"POLLINATIONS_URL" envDefault:"https://text.pollinations.ai/openai" validate:"url"`

	GiphyAPIKey      string        `env:"GIPHY_API_KEY"`
	GiphyRating      string        `env:"GIPHY_RATING" envDefault:"pg-13" validate:"oneof=g pg pg-13 r"`
	MediaHourlyLimit int           `env:"MEDIA_HOURLY_LIMIT" envDefault:"90" validate:"min=0"`
	MediaWindow      time.Duration `env:"MEDIA_WINDOW" envDefault:"1h" validate:"min=1s"`

	StoragePath string `env:"STORAGE_PATH" envDefault:"datastore.json" validate:"required"`

	Keywords              []string `env:"KEYWORDS" envSeparator:","`
	KeywordProbability    float64  `env:"KEYWORD_PROBABILITY" envDefault:"0.25" validate:"min=0,max=1"`
	ReplyChainProbability float64  `env:"REPLY_CHAIN_PROBABILITY" envDefault:"0.8" validate:"min=0,max=1"`
	InflightScope         string   `env:"INFLIGHT_SCOPE" envDefault:"channel" validate:"oneof=channel global"`

	WatchChannelID    string        `env:"WATCH_CHANNEL_ID"`
	ReviveRoleName    string        `env:"REVIVE_ROLE_NAME" envDefault:"chat revive"`
	IdleThreshold     time.Duration `env:"IDLE_THRESHOLD" envDefault:"40m" validate:"min=1m"`
	IdleCheckInterval time.Duration `env:"IDLE_CHECK_INTERVAL" envDefault:"5m" validate:"min=10s"`
	RechargeInterval  time.Duration `env:"RECHARGE_INTERVAL" envDefault:"10m" validate:"min=10s"`
	RechargeAmount    int           `env:"RECHARGE_AMOUNT" envDefault:"15" validate:"min=0,max=100"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=trace debug info warn error"`
	LogFile  string `env:"LOG_FILE"`
}

// Load reads .env (if present), parses the environment and validates the result.
func Load() (*Config, error) {
	// A missing .env is normal in containers.
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment without touching .env.
func Parse() (*Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := validator.New().Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &c, nil
}

// Mind maps the configuration onto the pipeline settings.
func (c *Config) Mind() (mind.Settings, error) {
	s := mind.DefaultSettings()
	s.CommandPrefix = c.CommandPrefix
	if kw := trimAll(c.Keywords); len(kw) > 0 {
		s.Keywords = kw
	}

	persona, err := mind.LoadPersona(c.PersonaPath)
	if err != nil {
		return s, err
	}
	s.Persona = persona

	scope, err := mind.ParseInflightScope(c.InflightScope)
	if err != nil {
		return s, err
	}
	s.Scope = scope

	s.Decision.KeywordProbability = c.KeywordProbability
	s.Decision.ReplyChainProbability = c.ReplyChainProbability
	s.Fatigue.RechargeInterval = c.RechargeInterval
	s.Fatigue.RechargeAmount = c.RechargeAmount

	s.Watchdog.ChannelID = c.WatchChannelID
	s.Watchdog.RoleName = c.ReviveRoleName
	s.Watchdog.Threshold = c.IdleThreshold
	s.Watchdog.CheckInterval = c.IdleCheckInterval
	return s, nil
}

// Blacklisted reports whether guildID is ignored.
func (c *Config) Blacklisted(guildID string) bool {
	for _, id := range c.GuildBlacklist {
		if strings.TrimSpace(id) == guildID {
			return true
		}
	}
	return false
}

// Redacted returns the configuration with secrets masked, for printing.
func (c Config) Redacted() Config {
	c.DiscordToken = mask(c.DiscordToken)
	c.GeminiAPIKey = mask(c.GeminiAPIKey)
	c.GiphyAPIKey = mask(c.GiphyAPIKey)
	return c
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "****"
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
