package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultPath is where the module looks for its configuration file, relative
// to the Nakama working directory.
const DefaultPath = "data/tictactoe.yml"

// Runtime env keys that override file values.
const (
	EnvTickRate    = "tictactoe_tick_rate"
	EnvVoiceIssuer = "tictactoe_voice_issuer"
	EnvVoiceSecret = "tictactoe_voice_secret"
	EnvVoiceDomain = "tictactoe_voice_domain"
)

// Config holds module settings.
type Config struct {
	TickRate            int    `yaml:"tick-rate" env:"TICTACTOE_TICK_RATE" env-default:"5"`
	TickReportInterval  int64  `yaml:"tick-report-interval" env:"TICTACTOE_TICK_REPORT_INTERVAL" env-default:"60"`
	FinishedLingerTicks int64  `yaml:"finished-linger-ticks" env:"TICTACTOE_FINISHED_LINGER_TICKS" env-default:"25"`
	LeaderboardID       string `yaml:"leaderboard-id" env:"TICTACTOE_LEADERBOARD_ID" env-default:"tictactoe_global"`
	ResultCollection    string `yaml:"result-collection" env:"TICTACTOE_RESULT_COLLECTION" env-default:"match_results"`
	LabelGame           string `yaml:"label-game" env:"TICTACTOE_LABEL_GAME" env-default:"tictactoe"`
	Voice               Voice  `yaml:"voice"`
}

// Voice holds credentials for the voice channel token service.
type Voice struct {
	Issuer   string        `yaml:"issuer" env:"TICTACTOE_VOICE_ISSUER"`
	Secret   string        `yaml:"secret" env:"TICTACTOE_VOICE_SECRET"`
	Domain   string        `yaml:"domain" env:"TICTACTOE_VOICE_DOMAIN"`
	TokenTTL time.Duration `yaml:"token-ttl" env:"TICTACTOE_VOICE_TOKEN_TTL" env-default:"90s"`
}

var (
	cfg      *Config
	loadOnce sync.Once
	loadErr  error
)

// Load reads the configuration once. Later calls return the first result.
func Load(path string) (*Config, error) {
	loadOnce.Do(func() {
		cfg, loadErr = Parse(path)
	})
	return cfg, loadErr
}

// Parse reads the file at path, falling back to process environment and
// defaults when the file does not exist.
func Parse(path string) (*Config, error) {
	c := &Config{}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := cleanenv.ReadEnv(c); err != nil {
			return nil, fmt.Errorf("failed to read config from env: %w", err)
		}
		return c.normalize(), nil
	}
	if err := cleanenv.ReadConfig(path, c); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return c.normalize(), nil
}

// Default returns the configuration built from defaults and process env only.
func Default() *Config {
	c := &Config{}
	if err := cleanenv.ReadEnv(c); err != nil {
		c = &Config{
			TickRate:            5,
			TickReportInterval:  60,
			FinishedLingerTicks: 25,
			LeaderboardID:       "tictactoe_global",
			ResultCollection:    "match_results",
			LabelGame:           "tictactoe",
			Voice:               Voice{TokenTTL: 90 * time.Second},
		}
	}
	return c.normalize()
}

// WithRuntimeEnv returns a copy with Nakama runtime env overrides applied.
func (c *Config) WithRuntimeEnv(env map[string]string) *Config {
	out := *c
	if v, ok := env[EnvTickRate]; ok {
		if i, err := strconv.Atoi(v); err == nil {
			out.TickRate = i
		}
	}
	if v := env[EnvVoiceIssuer]; v != "" {
		out.Voice.Issuer = v
	}
	if v := env[EnvVoiceSecret]; v != "" {
		out.Voice.Secret = v
	}
	if v := env[EnvVoiceDomain]; v != "" {
		out.Voice.Domain = v
	}
	return out.normalize()
}

// normalize clamps values to what the runtime accepts.
func (c *Config) normalize() *Config {
	if c.TickRate < 1 {
		c.TickRate = 1
	}
	if c.TickRate > 60 {
		c.TickRate = 60
	}
	if c.TickReportInterval < 1 {
		c.TickReportInterval = 1
	}
	if c.FinishedLingerTicks < 0 {
		c.FinishedLingerTicks = 0
	}
	return c
}
