// Package config resolves modtl settings from flags, MODTL_* environment
// variables, an optional modtl.yaml file and a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/ZaguanLabs/modtl"
	"github.com/ZaguanLabs/modtl/cache"
	"github.com/ZaguanLabs/modtl/runner"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override (MODTL_TGT, MODTL_JOBS, ...).
const EnvPrefix = "MODTL"

// Providers
const (
	ProviderDeepL  = "deepl"
	ProviderOpenAI = "openai"
)

// Config is the resolved run configuration.
type Config struct {
	SourceLang     string
	TargetLang     string
	Backup         bool
	APIKey         string
	SkipRegex      string
	Delay          time.Duration
	Provider       string
	Endpoint       string
	Model          string
	CachePath      string
	CacheURL       string
	NoCacheFile    bool
	LogPath        string
	Jobs           int
	Retries        int
	SkipTargetLang bool
	DryRun         bool
	Quiet          bool
	Verbose        bool
	Progress       bool
	ConfigFile     string
}

// RegisterFlags adds every run flag to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("src", "EN", "Source language code")
	fs.String("tgt", "JA", "Target language code")
	fs.Bool("backup", false, "Back up files before overwriting")
	fs.String("api-key", "", "Provider API key (default: DEEPL_API_KEY or OPENAI_API_KEY env)")
	fs.String("skip-regex", "", "Skip strings matching this regular expression")
	fs.Float64("delay", modtl.DefaultDelay.Seconds(), "Delay between API calls in seconds")
	fs.String("provider", ProviderDeepL, "Translation provider: deepl or openai")
	fs.String("endpoint", "", "Override the provider endpoint URL")
	fs.String("model", "gpt-4o-mini", "Model for the openai provider")
	fs.String("cache", cache.DefaultPath, "Translation memory file")
	fs.String("cache-url", "", "Use a Redis translation memory (redis://host:port/db)")
	fs.Bool("no-cache-file", false, "Keep the translation memory in memory only")
	fs.String("log", runner.DefaultLogPath, "CSV run log path")
	fs.Int("jobs", 1, "Files processed concurrently")
	fs.Int("retries", 0, "Retries for retryable provider errors")
	fs.Bool("skip-target-lang", false, "Skip strings already in the target language")
	fs.Bool("dry-run", false, "List candidates without calling the provider or writing files")
	fs.BoolP("quiet", "q", false, "Only print warnings and errors")
	fs.BoolP("verbose", "v", false, "Print debug output")
	fs.Bool("progress", false, "Show a progress bar")
	fs.String("config", "", "Config file (default: ./modtl.yaml if present)")
}

// Load resolves the configuration. Flags set on the command line win over
// MODTL_* variables, which win over the config file, which wins over flag
// defaults. A .env file in the working directory is loaded first and never
// overrides variables already set.
func Load(fs *pflag.FlagSet) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, &modtl.ConfigError{Field: ".env", Message: "cannot load", Cause: err}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, &modtl.ConfigError{Message: "binding flags", Cause: err}
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, &modtl.ConfigError{Field: "config", Message: "cannot read " + path, Cause: err}
		}
	} else {
		v.SetConfigName("modtl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, &modtl.ConfigError{Field: "config", Message: "cannot read modtl.yaml", Cause: err}
			}
		}
	}

	cfg := &Config{
		SourceLang:     v.GetString("src"),
		TargetLang:     v.GetString("tgt"),
		Backup:         v.GetBool("backup"),
		APIKey:         v.GetString("api-key"),
		SkipRegex:      v.GetString("skip-regex"),
		Delay:          time.Duration(v.GetFloat64("delay") * float64(time.Second)),
		Provider:       strings.ToLower(v.GetString("provider")),
		Endpoint:       v.GetString("endpoint"),
		Model:          v.GetString("model"),
		CachePath:      v.GetString("cache"),
		CacheURL:       v.GetString("cache-url"),
		NoCacheFile:    v.GetBool("no-cache-file"),
		LogPath:        v.GetString("log"),
		Jobs:           v.GetInt("jobs"),
		Retries:        v.GetInt("retries"),
		SkipTargetLang: v.GetBool("skip-target-lang"),
		DryRun:         v.GetBool("dry-run"),
		Quiet:          v.GetBool("quiet"),
		Verbose:        v.GetBool("verbose"),
		Progress:       v.GetBool("progress"),
		ConfigFile:     v.ConfigFileUsed(),
	}

	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(cfg.APIKeyEnv())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// APIKeyEnv returns the environment variable holding the provider key.
func (c *Config) APIKeyEnv() string {
	if c.Provider == ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "DEEPL_API_KEY"
}

// Validate checks every field that would otherwise fail mid-run.
func (c *Config) Validate() error {
	if _, err := modtl.ParseLanguage(c.SourceLang); err != nil {
		return &modtl.ConfigError{Field: "src", Message: fmt.Sprintf("invalid language code %q", c.SourceLang), Cause: err}
	}
	if _, err := modtl.ParseLanguage(c.TargetLang); err != nil {
		return &modtl.ConfigError{Field: "tgt", Message: fmt.Sprintf("invalid language code %q", c.TargetLang), Cause: err}
	}
	if c.Provider != ProviderDeepL && c.Provider != ProviderOpenAI {
		return &modtl.ConfigError{Field: "provider", Message: fmt.Sprintf("unknown provider %q", c.Provider)}
	}
	if _, err := c.SkipPattern(); err != nil {
		return err
	}
	if c.Delay < 0 {
		return &modtl.ConfigError{Field: "delay", Message: "must not be negative"}
	}
	if c.Jobs < 1 {
		return &modtl.ConfigError{Field: "jobs", Message: "must be at least 1"}
	}
	if c.Retries < 0 {
		return &modtl.ConfigError{Field: "retries", Message: "must not be negative"}
	}
	return nil
}

// RequireAPIKey fails when no key is resolvable. Dry runs need none.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" && !c.DryRun {
		return &modtl.ConfigError{
			Field:   "api-key",
			Message: fmt.Sprintf("%s API key required (env %s or --api-key)", c.Provider, c.APIKeyEnv()),
		}
	}
	return nil
}

// SkipPattern compiles the skip regular expression, or returns nil when none
// is set.
func (c *Config) SkipPattern() (*regexp.Regexp, error) {
	if c.SkipRegex == "" {
		return nil, nil
	}
	re, err := regexp.Compile(c.SkipRegex)
	if err != nil {
		return nil, &modtl.ConfigError{Field: "skip-regex", Message: "invalid pattern", Cause: err}
	}
	return re, nil
}
