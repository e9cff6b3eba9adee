package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/michaelbrown/icebreaker/internal/profile"
	"github.com/michaelbrown/icebreaker/internal/tools"
)

type ProviderConfig struct {
	Kind        string            `mapstructure:"kind"` // openai (any compatible API) or anthropic
	BaseURL     string            `mapstructure:"base_url"`
	APIKey      string            `mapstructure:"api_key"`
	Models      map[string]string `mapstructure:"models"`
	Temperature *float64          `mapstructure:"temperature"`
}

type AgentConfig struct {
	MaxIterations int    `mapstructure:"max_iterations"`
	ProfilesDir   string `mapstructure:"profiles_dir"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

type LogConfig struct {
	Level          string `mapstructure:"level"`
	Format         string `mapstructure:"format"`
	File           string `mapstructure:"file"`
	FileTimeFormat string `mapstructure:"file_time_format"`
}

// ScraperConfig holds the credentials of a remote profile API.
type ScraperConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	APIKey        string `mapstructure:"api_key"`
	ActorID       string `mapstructure:"actor_id"`
	TweetsDesired int    `mapstructure:"tweets_desired"`
	TimeoutSecs   int    `mapstructure:"timeout_secs"`
}

type ScrapersConfig struct {
	LinkedIn ScraperConfig `mapstructure:"linkedin"`
	Twitter  ScraperConfig `mapstructure:"twitter"`
}

type SearchConfig struct {
	Backend    string `mapstructure:"backend"` // tavily or duckduckgo
	APIKey     string `mapstructure:"api_key"`
	Endpoint   string `mapstructure:"endpoint"`
	MaxResults int    `mapstructure:"max_results"`
}

type LookupConfig struct {
	CacheSize int `mapstructure:"cache_size"`
}

type Config struct {
	Mode            string                            `mapstructure:"mode"`
	ProfilesPath    string                            `mapstructure:"profiles_path"`
	Samples         map[string]string                 `mapstructure:"samples"`
	Log             LogConfig                         `mapstructure:"log"`
	Providers       map[string]ProviderConfig         `mapstructure:"providers"`
	DefaultProvider string                            `mapstructure:"default_provider"`
	Agent           AgentConfig                       `mapstructure:"agent"`
	Scrapers        ScrapersConfig                    `mapstructure:"scrapers"`
	Search          SearchConfig                      `mapstructure:"search"`
	Lookup          LookupConfig                      `mapstructure:"lookup"`
	Server          ServerConfig                      `mapstructure:"server"`
	Storage         StorageConfig                     `mapstructure:"storage"`
	Tools           map[string]tools.ToolServerConfig `mapstructure:"tools"`
}

// Load reads icebreaker.yaml from path, or from . and $HOME/.icebreaker when
// path is empty. A missing config file is fine; defaults and environment
// variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("icebreaker")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.icebreaker")
	}

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.expandEnv()

	if _, err := profile.ParseMode(cfg.Mode); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	home := os.Getenv("HOME")

	v.SetDefault("mode", "development")
	v.SetDefault("profiles_path", filepath.Join("data", "profiles"))
	v.SetDefault("samples.linkedin", filepath.Join("testdata", "linkedin_sample_profile.json"))
	v.SetDefault("samples.twitter", filepath.Join("testdata", "twitter_sample_profile.json"))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file_time_format", "2006-01-02_15")

	v.SetDefault("default_provider", "openai")
	v.SetDefault("providers.openai.kind", "openai")
	v.SetDefault("providers.openai.base_url", "https://api.openai.com/v1/")
	v.SetDefault("providers.openai.api_key", "${OPENAI_API_KEY}")
	v.SetDefault("providers.openai.models.default", "gpt-3.5-turbo")
	v.SetDefault("providers.openai.models.lookup", "gpt-3.5-turbo")

	v.SetDefault("agent.max_iterations", 10)
	v.SetDefault("agent.profiles_dir", filepath.Join(home, ".icebreaker", "agents"))

	v.SetDefault("scrapers.linkedin.endpoint", "https://nubela.co/proxycurl/api/v2/linkedin")
	v.SetDefault("scrapers.linkedin.timeout_secs", 30)
	v.SetDefault("scrapers.twitter.endpoint", "https://api.apify.com/v2")
	v.SetDefault("scrapers.twitter.actor_id", "quacker~twitter-scraper")
	v.SetDefault("scrapers.twitter.tweets_desired", 10)
	v.SetDefault("scrapers.twitter.timeout_secs", 120)

	v.SetDefault("search.backend", "tavily")
	v.SetDefault("search.max_results", 5)

	v.SetDefault("lookup.cache_size", 128)

	v.SetDefault("server.port", 8080)
	v.SetDefault("storage.db_path", filepath.Join(home, ".icebreaker", "icebreaker.db"))
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("mode", "ICEBREAKER_MODE", "ENVIRONMENT")
	v.BindEnv("profiles_path", "ICEBREAKER_PROFILES_PATH")
	v.BindEnv("log.level", "ICEBREAKER_LOG_LEVEL")
	v.BindEnv("scrapers.linkedin.endpoint", "PROXYCURL_API_ENDPOINT")
	v.BindEnv("scrapers.linkedin.api_key", "PROXYCURL_API_KEY")
	v.BindEnv("scrapers.twitter.api_key", "APIFY_API_KEY")
	v.BindEnv("scrapers.twitter.actor_id", "APIFY_TWITTER_ACTOR_ID")
	v.BindEnv("search.api_key", "TAVILY_API_KEY")
}

// expandEnv resolves ${VAR} references in secrets.
func (c *Config) expandEnv() {
	for name, p := range c.Providers {
		p.APIKey = expand(p.APIKey)
		c.Providers[name] = p
	}
	c.Scrapers.LinkedIn.APIKey = expand(c.Scrapers.LinkedIn.APIKey)
	c.Scrapers.Twitter.APIKey = expand(c.Scrapers.Twitter.APIKey)
	c.Search.APIKey = expand(c.Search.APIKey)
}

func expand(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	return s
}

// AcquisitionMode returns the parsed profile acquisition mode.
func (c *Config) AcquisitionMode() (profile.Mode, error) {
	return profile.ParseMode(c.Mode)
}

// IsAnthropic reports whether the provider should use the native Anthropic API.
func (p ProviderConfig) IsAnthropic() bool {
	return strings.EqualFold(p.Kind, "anthropic")
}

// Model returns the model configured for role, falling back to "default".
func (p ProviderConfig) Model(role string) string {
	if m := p.Models[role]; m != "" {
		return m
	}
	return p.Models["default"]
}

// Provider returns the config for a named provider, falling back to the default.
func (c *Config) Provider(name string) (ProviderConfig, error) {
	if name == "" {
		name = c.DefaultProvider
	}
	p, ok := c.Providers[name]
	if !ok {
		return ProviderConfig{}, fmt.Errorf("unknown provider: %s", name)
	}
	return p, nil
}
