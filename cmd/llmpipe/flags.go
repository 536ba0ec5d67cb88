package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/metalagman/llmpipe"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const envPrefix = "LLMPIPE"

// providerKeyEnv maps providers to the conventional variable holding their key.
var providerKeyEnv = map[string]string{
	llmpipe.ProviderOpenAI: "OPENAI_API_KEY",
	llmpipe.ProviderGemini: "GEMINI_API_KEY",
}

func addConfigFlags(cmd *cobra.Command, a *app) {
	def := llmpipe.DefaultConfig()
	f := cmd.PersistentFlags()

	f.StringVar(&a.configFile, "config", "", "path to a YAML config file")
	f.String("provider", def.Provider, "completion provider: openai or gemini")
	f.String("model", "", "model identifier (default depends on provider)")
	f.String("base-url", "", "custom API base URL")
	f.Int("max-tokens", def.MaxTokens, "maximum output tokens per answer")
	f.Float64("temperature", def.Temperature, "sampling temperature")
	f.Duration("timeout", 0, "timeout per remote call (0 disables)")
	f.Int("rate-limit", 0, "maximum remote calls per minute (0 disables)")
	f.StringVar(&a.logLevel, "log-level", "warn", "log level: trace, debug, info, warn, error, disabled")
	f.StringVar(&a.logFormat, "log-format", "console", "log format: console or json")

	bind := map[string]string{
		"provider":            "provider",
		"model":               "model",
		"base_url":            "base-url",
		"max_tokens":          "max-tokens",
		"temperature":         "temperature",
		"timeout":             "timeout",
		"requests_per_minute": "rate-limit",
	}
	for key, flag := range bind {
		if err := a.v.BindPFlag(key, f.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

// loadConfig merges defaults, .env, the config file, LLMPIPE_* variables and flags.
func (a *app) loadConfig() (llmpipe.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return llmpipe.Config{}, fmt.Errorf("load .env: %w", err)
	}

	def := llmpipe.DefaultConfig()
	a.v.SetDefault("api_key", "")
	a.v.SetDefault("match", def.Match)
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if a.configFile != "" {
		a.v.SetConfigFile(a.configFile)

		if err := a.v.ReadInConfig(); err != nil {
			return llmpipe.Config{}, fmt.Errorf("read config %s: %w", a.configFile, err)
		}
	}

	cfg := def
	if err := a.v.Unmarshal(&cfg); err != nil {
		return llmpipe.Config{}, fmt.Errorf("decode config: %w", err)
	}

	if cfg.APIKey == "" {
		if name, ok := providerKeyEnv[cfg.Provider]; ok {
			cfg.APIKey = os.Getenv(name)
		}
	}

	if err := cfg.Validate(); err != nil {
		return llmpipe.Config{}, err
	}

	return cfg, nil
}

func newLogger(level, format string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parse log level: %w", err)
	}

	var out io.Writer

	switch format {
	case "console":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	case "json":
		out = w
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
